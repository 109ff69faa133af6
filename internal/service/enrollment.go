package service

import (
	"errors"
	"fmt"
	"time"

	"studio-schedule-bot/internal/models"
	"studio-schedule-bot/internal/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ResumeResult reports whether a paused enrollment could be resumed. When
// OK is false, Substitutes lists the active enrollments occupying the seat
// and the caller must pick a resolution (force, reclaim or abort).
type ResumeResult struct {
	OK          bool
	Enrollment  *models.Enrollment
	Substitutes []*models.Enrollment
}

type EnrollmentService struct {
	db             *gorm.DB
	enrollmentRepo repository.EnrollmentRepository
	studentRepo    repository.StudentRepository
	slotRepo       repository.SlotRepository
	logger         *logrus.Logger

	Now func() time.Time
}

func NewEnrollmentService(
	db *gorm.DB,
	enrollmentRepo repository.EnrollmentRepository,
	studentRepo repository.StudentRepository,
	slotRepo repository.SlotRepository,
) *EnrollmentService {
	return &EnrollmentService{
		db:             db,
		enrollmentRepo: enrollmentRepo,
		studentRepo:    studentRepo,
		slotRepo:       slotRepo,
		logger:         logrus.New(),
		Now:            time.Now,
	}
}

// Enroll creates a regular enrollment for a student on a slot.
func (s *EnrollmentService) Enroll(studentID, slotID uint) (*models.Enrollment, error) {
	student, err := s.studentRepo.GetByID(studentID)
	if err != nil {
		return nil, err
	}
	if student == nil {
		return nil, ErrNotFound
	}

	slot, err := s.slotRepo.GetByID(slotID)
	if err != nil {
		return nil, err
	}
	if slot == nil || !slot.Active {
		return nil, ErrNotFound
	}

	enrollment := &models.Enrollment{
		StudentID:  studentID,
		SlotID:     slotID,
		Active:     true,
		PauseState: models.PauseNone,
	}
	if err := s.enrollmentRepo.Create(enrollment); err != nil {
		return nil, err
	}
	return enrollment, nil
}

// EnrollSubstitute seats a student on the freed seat of a paused
// enrollment. Capacity discipline: at most one active substitute may
// reference a given enrollment.
func (s *EnrollmentService) EnrollSubstitute(originalEnrollmentID, studentID uint) (*models.Enrollment, error) {
	original, err := s.enrollmentRepo.GetByID(originalEnrollmentID)
	if err != nil {
		return nil, err
	}
	if original == nil {
		return nil, ErrNotFound
	}
	if !original.IsPaused() {
		return nil, &StateConflictError{
			Msg:           fmt.Sprintf("enrollment %d is not paused, its seat is not free", originalEnrollmentID),
			CurrentStatus: original.PauseState,
		}
	}

	existing, err := s.enrollmentRepo.GetActiveSubstitutesFor(originalEnrollmentID)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return nil, &StateConflictError{
			Msg:         fmt.Sprintf("enrollment %d already has a substitute", originalEnrollmentID),
			Substitutes: existing,
		}
	}

	substitute := &models.Enrollment{
		StudentID:            studentID,
		SlotID:               original.SlotID,
		Active:               true,
		PauseState:           models.PauseNone,
		ReplacesEnrollmentID: &originalEnrollmentID,
	}
	if err := s.enrollmentRepo.Create(substitute); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"substitute_id": substitute.ID,
		"replaces":      originalEnrollmentID,
	}).Info("Substitute enrolled")
	return substitute, nil
}

// SetPauseState pauses or unpauses an enrollment. The paused variants are
// mutually exclusive by construction: the state is a single field, so
// setting one clears the others. Unpausing goes through Resume so seat
// conflicts are never skipped.
func (s *EnrollmentService) SetPauseState(enrollmentID uint, state string) (*models.Enrollment, error) {
	if !models.ValidPauseState(state) {
		return nil, validationErrorf("unknown pause state %q", state)
	}
	if state == models.PauseNone {
		return nil, validationErrorf("use Resume to clear a pause state")
	}

	enrollment, err := s.enrollmentRepo.GetByID(enrollmentID)
	if err != nil {
		return nil, err
	}
	if enrollment == nil {
		return nil, ErrNotFound
	}

	enrollment.PauseState = state
	if err := s.enrollmentRepo.Update(enrollment); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"id":    enrollmentID,
		"state": state,
	}).Info("Enrollment paused")
	return enrollment, nil
}

// Resume attempts to clear an enrollment's pause state. If an active
// substitute occupies the seat the conflict is surfaced instead of
// silently resuming.
func (s *EnrollmentService) Resume(enrollmentID uint) (*ResumeResult, error) {
	enrollment, err := s.enrollmentRepo.GetByID(enrollmentID)
	if err != nil {
		return nil, err
	}
	if enrollment == nil {
		return nil, ErrNotFound
	}
	if !enrollment.IsPaused() {
		return &ResumeResult{OK: true, Enrollment: enrollment}, nil
	}

	substitutes, err := s.enrollmentRepo.GetActiveSubstitutesFor(enrollmentID)
	if err != nil {
		return nil, err
	}
	if len(substitutes) > 0 {
		s.logger.WithFields(logrus.Fields{
			"id":          enrollmentID,
			"substitutes": len(substitutes),
		}).Info("Resume blocked by seat conflict")
		return &ResumeResult{OK: false, Enrollment: enrollment, Substitutes: substitutes}, nil
	}

	enrollment.PauseState = models.PauseNone
	if err := s.enrollmentRepo.Update(enrollment); err != nil {
		return nil, err
	}
	return &ResumeResult{OK: true, Enrollment: enrollment}, nil
}

// ForceResume resumes the original student while leaving the substitute
// active; the caller accepts running over capacity.
func (s *EnrollmentService) ForceResume(enrollmentID uint) (*models.Enrollment, error) {
	enrollment, err := s.enrollmentRepo.GetByID(enrollmentID)
	if err != nil {
		return nil, err
	}
	if enrollment == nil {
		return nil, ErrNotFound
	}

	enrollment.PauseState = models.PauseNone
	if err := s.enrollmentRepo.Update(enrollment); err != nil {
		return nil, err
	}

	s.logger.WithField("id", enrollmentID).Warn("Enrollment force-resumed over an occupied seat")
	return enrollment, nil
}

// ReclaimSeat deactivates the substitute and resumes the original in one
// transaction, so a crash can never leave two active seats nor zero.
func (s *EnrollmentService) ReclaimSeat(originalID, substituteID uint) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		enrollmentTx := s.enrollmentRepo.WithTx(tx)

		original, err := enrollmentTx.GetByID(originalID)
		if err != nil {
			return err
		}
		if original == nil {
			return ErrNotFound
		}

		substitute, err := enrollmentTx.GetByID(substituteID)
		if err != nil {
			return err
		}
		if substitute == nil {
			return ErrNotFound
		}
		if substitute.ReplacesEnrollmentID == nil || *substitute.ReplacesEnrollmentID != originalID {
			return &StateConflictError{
				Msg: fmt.Sprintf("enrollment %d is not the substitute of %d", substituteID, originalID),
			}
		}

		substitute.Active = false
		if err := enrollmentTx.Update(substitute); err != nil {
			return err
		}

		original.PauseState = models.PauseNone
		return enrollmentTx.Update(original)
	})
	if err != nil {
		var conflict *StateConflictError
		if errors.As(err, &conflict) || errors.Is(err, ErrNotFound) {
			return err
		}
		return &TransactionError{Op: "reclaim seat", Err: err}
	}

	s.logger.WithFields(logrus.Fields{
		"original_id":   originalID,
		"substitute_id": substituteID,
	}).Info("Seat reclaimed, substitute deactivated")
	return nil
}
