package service

import (
	"time"

	"studio-schedule-bot/internal/models"
	"studio-schedule-bot/internal/repository"
	"studio-schedule-bot/pkg/dates"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// RosterMark is the teacher's input for one student of a class being
// submitted. Present left nil means the student was not marked either way.
type RosterMark struct {
	StudentID       uint
	Present         *bool
	NotifiedAbsence bool
	Observation     string
}

// SubmitInput describes one class submission.
type SubmitInput struct {
	SlotID      uint
	Date        string // YYYY-MM-DD
	Marks       []RosterMark
	SubmittedBy int64
}

type AttendanceService struct {
	db             *gorm.DB
	attendanceRepo repository.AttendanceRepository
	enrollmentRepo repository.EnrollmentRepository
	noticeRepo     repository.AbsenceNoticeRepository
	rescheduleRepo repository.RescheduleRepository
	slotRepo       repository.SlotRepository
	logger         *logrus.Logger

	// Now is the injected clock; tests pin it.
	Now func() time.Time
}

func NewAttendanceService(
	db *gorm.DB,
	attendanceRepo repository.AttendanceRepository,
	enrollmentRepo repository.EnrollmentRepository,
	noticeRepo repository.AbsenceNoticeRepository,
	rescheduleRepo repository.RescheduleRepository,
	slotRepo repository.SlotRepository,
) *AttendanceService {
	return &AttendanceService{
		db:             db,
		attendanceRepo: attendanceRepo,
		enrollmentRepo: enrollmentRepo,
		noticeRepo:     noticeRepo,
		rescheduleRepo: rescheduleRepo,
		slotRepo:       slotRepo,
		logger:         logrus.New(),
		Now:            time.Now,
	}
}

// Submit records a realized class for (slot, date). The roster is built by
// merging the slot's current enrollments (with their pause-state snapshot)
// with approved reschedule guests targeting that exact occurrence; the
// teacher's marks are applied on top. In one transaction it deletes any
// pending placeholder for the key, inserts the submitted record, confirms
// matching pending absence notices, and resolves guest reschedule
// outcomes. Resubmission for the same key replaces the previous record.
//
// An empty roster (slot with no enrollments) is legal and produces a
// zero-aggregate record that still counts as done for reconciliation.
func (s *AttendanceService) Submit(input SubmitInput) (*models.AttendanceRecord, error) {
	if !dates.IsISO(input.Date) {
		return nil, validationErrorf("invalid date %q", input.Date)
	}

	slot, err := s.slotRepo.GetByID(input.SlotID)
	if err != nil {
		return nil, err
	}
	if slot == nil {
		return nil, ErrNotFound
	}

	s.logger.WithFields(logrus.Fields{
		"slot_id": input.SlotID,
		"date":    input.Date,
	}).Info("Submitting attendance")

	enrollments, err := s.enrollmentRepo.GetActiveBySlot(input.SlotID)
	if err != nil {
		return nil, err
	}
	guests, err := s.rescheduleRepo.GetApprovedForTarget(input.SlotID, input.Date)
	if err != nil {
		return nil, err
	}

	marks := make(map[uint]RosterMark, len(input.Marks))
	for _, m := range input.Marks {
		marks[m.StudentID] = m
	}

	weekday, _ := dates.Weekday(input.Date)
	record := &models.AttendanceRecord{
		SlotID:       input.SlotID,
		Date:         input.Date,
		Weekday:      weekday,
		ModalityName: slot.Modality.Name,
		StartTime:    slot.StartTime,
		EndTime:      slot.EndTime,
		Status:       models.AttendanceSubmitted,
		SubmittedBy:  input.SubmittedBy,
		SubmittedAt:  s.Now(),
	}

	position := 0
	for _, enrollment := range enrollments {
		entry := models.RosterEntry{
			Position:       position,
			StudentID:      enrollment.StudentID,
			StudentName:    enrollment.Student.Name,
			StatusSnapshot: enrollment.PauseState,
		}
		if mark, ok := marks[enrollment.StudentID]; ok {
			entry.Present = mark.Present
			entry.NotifiedAbsence = mark.NotifiedAbsence
			entry.ObservationTag = mark.Observation
		}
		record.Entries = append(record.Entries, entry)
		position++
	}
	for _, guest := range guests {
		requestID := guest.ID
		entry := models.RosterEntry{
			Position:            position,
			StudentID:           guest.StudentID,
			StudentName:         guest.Student.Name,
			StatusSnapshot:      models.PauseNone,
			IsRescheduleGuest:   true,
			RescheduleRequestID: &requestID,
		}
		if mark, ok := marks[guest.StudentID]; ok {
			entry.Present = mark.Present
			entry.ObservationTag = mark.Observation
		}
		record.Entries = append(record.Entries, entry)
		position++
	}

	record.RecomputeAggregates()

	err = s.db.Transaction(func(tx *gorm.DB) error {
		attendanceTx := s.attendanceRepo.WithTx(tx)

		// At most one live record per key: drop any placeholder, and on
		// resubmission drop the earlier submitted record too.
		if existing, err := attendanceTx.GetBySlotAndDate(input.SlotID, input.Date); err != nil {
			return err
		} else if existing != nil {
			if err := tx.Where("record_id = ?", existing.ID).Delete(&models.RosterEntry{}).Error; err != nil {
				return err
			}
			if err := tx.Delete(&models.AttendanceRecord{}, existing.ID).Error; err != nil {
				return err
			}
		}
		if err := attendanceTx.DeletePendingBySlotAndDate(input.SlotID, input.Date); err != nil {
			return err
		}

		if err := attendanceTx.Create(record); err != nil {
			return err
		}

		if err := s.confirmNotices(tx, record); err != nil {
			return err
		}
		return s.resolveGuestOutcomes(tx, record)
	})
	if err != nil {
		s.logger.WithError(err).Error("Attendance submission rolled back")
		return nil, &TransactionError{Op: "submit attendance", Err: err}
	}

	s.logger.WithFields(logrus.Fields{
		"id":        record.ID,
		"presences": record.Presences,
		"absences":  record.Absences,
		"guests":    record.GuestCount,
	}).Info("Attendance submitted")
	return record, nil
}

// confirmNotices settles absence notices for every roster entry marked
// absent with advance notice. This is the only path that confirms a
// notice, so a notice can never be confirmed without a matching real
// absence on record.
func (s *AttendanceService) confirmNotices(tx *gorm.DB, record *models.AttendanceRecord) error {
	noticeTx := s.noticeRepo.WithTx(tx)
	for _, entry := range record.Entries {
		if entry.Present != nil && !*entry.Present && entry.NotifiedAbsence {
			notice, err := noticeTx.GetByKey(entry.StudentID, record.SlotID, record.Date)
			if err != nil {
				return err
			}
			if notice == nil || notice.Status != models.NoticePending {
				continue
			}
			if err := noticeTx.Confirm(notice.ID, s.Now()); err != nil {
				return err
			}
			s.logger.WithFields(logrus.Fields{
				"notice_id":  notice.ID,
				"student_id": entry.StudentID,
			}).Info("Absence notice confirmed")
		}
	}
	return nil
}

// resolveGuestOutcomes classifies what happened to each reschedule guest of
// the submitted occurrence: realizado when present, falta_registrada when
// absent, left pendente when unmarked.
func (s *AttendanceService) resolveGuestOutcomes(tx *gorm.DB, record *models.AttendanceRecord) error {
	rescheduleTx := s.rescheduleRepo.WithTx(tx)
	now := s.Now()
	for _, entry := range record.Entries {
		if !entry.IsRescheduleGuest || entry.RescheduleRequestID == nil {
			continue
		}

		outcome, err := rescheduleTx.GetOutcomeByRequest(*entry.RescheduleRequestID)
		if err != nil {
			return err
		}
		if outcome == nil {
			outcome = &models.RescheduleOutcome{
				RequestID: *entry.RescheduleRequestID,
				Status:    models.OutcomePendente,
			}
		}

		if entry.Present != nil {
			if *entry.Present {
				outcome.Status = models.OutcomeRealizado
			} else {
				outcome.Status = models.OutcomeFaltaRegistrada
			}
			outcome.ResolvedAt = &now
		}

		if err := rescheduleTx.SaveOutcome(outcome); err != nil {
			return err
		}
	}
	return nil
}

// Amend applies corrected marks to an already submitted record. Aggregates
// are recomputed and the status becomes corrected; submittedBy/submittedAt
// are preserved.
func (s *AttendanceService) Amend(recordID uint, marks []RosterMark) (*models.AttendanceRecord, error) {
	record, err := s.attendanceRepo.GetByID(recordID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, ErrNotFound
	}

	byStudent := make(map[uint]RosterMark, len(marks))
	for _, m := range marks {
		byStudent[m.StudentID] = m
	}

	for i := range record.Entries {
		if mark, ok := byStudent[record.Entries[i].StudentID]; ok {
			record.Entries[i].Present = mark.Present
			record.Entries[i].NotifiedAbsence = mark.NotifiedAbsence
			record.Entries[i].ObservationTag = mark.Observation
		}
	}

	record.Status = models.AttendanceCorrected
	record.RecomputeAggregates()

	if err := s.attendanceRepo.Update(record); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"id":        record.ID,
		"presences": record.Presences,
		"absences":  record.Absences,
	}).Info("Attendance record corrected")
	return record, nil
}

// Status returns the live record for (slot, date), or nil when the
// occurrence has no record at all.
func (s *AttendanceService) Status(slotID uint, date string) (*models.AttendanceRecord, error) {
	if !dates.IsISO(date) {
		return nil, validationErrorf("invalid date %q", date)
	}
	return s.attendanceRepo.GetBySlotAndDate(slotID, date)
}
