package service

import (
	"time"

	"studio-schedule-bot/internal/models"
	"studio-schedule-bot/internal/repository"
	"studio-schedule-bot/pkg/dates"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

// MakeupWindowDays is how long a confirmed absence keeps its makeup right.
const MakeupWindowDays = 7

// Makeup eligibility statuses derived for a notice.
const (
	MakeupDisponivel = "disponivel"
	MakeupPendente   = "pendente"
	MakeupAprovada   = "aprovada"
	MakeupRejeitada  = "rejeitada"
	MakeupExpirada   = "expirada"
)

// NotifyInput pre-registers a student's absence for a future occurrence.
type NotifyInput struct {
	StudentID uint   `validate:"required"`
	SlotID    uint   `validate:"required"`
	Date      string `validate:"required,datetime=2006-01-02"`
}

// AbsenceView is a notice enriched with its makeup eligibility for display.
type AbsenceView struct {
	Notice          *models.AbsenceNotice
	StatusReposicao string
	DiasRestantes   int // meaningful only while disponivel
}

type AbsenceService struct {
	noticeRepo     repository.AbsenceNoticeRepository
	rescheduleRepo repository.RescheduleRepository
	validate       *validator.Validate
	logger         *logrus.Logger

	Now func() time.Time
}

func NewAbsenceService(
	noticeRepo repository.AbsenceNoticeRepository,
	rescheduleRepo repository.RescheduleRepository,
) *AbsenceService {
	return &AbsenceService{
		noticeRepo:     noticeRepo,
		rescheduleRepo: rescheduleRepo,
		validate:       validator.New(),
		logger:         logrus.New(),
		Now:            time.Now,
	}
}

// Notify records an advance absence warning. Idempotent per (student, slot,
// date): re-notifying an existing notice returns it unchanged. There is no
// direct confirm API: confirmation happens only when the class is
// submitted with the student marked absent and flagged as notified.
func (s *AbsenceService) Notify(input NotifyInput) (*models.AbsenceNotice, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, &ValidationError{Msg: err.Error()}
	}

	existing, err := s.noticeRepo.GetByKey(input.StudentID, input.SlotID, input.Date)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		s.logger.WithFields(logrus.Fields{
			"notice_id":  existing.ID,
			"student_id": input.StudentID,
		}).Debug("Absence already notified")
		return existing, nil
	}

	notice := &models.AbsenceNotice{
		StudentID: input.StudentID,
		SlotID:    input.SlotID,
		Date:      input.Date,
		Status:    models.NoticePending,
	}
	if err := s.noticeRepo.Create(notice); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"id":         notice.ID,
		"student_id": input.StudentID,
		"date":       input.Date,
	}).Info("Absence notice recorded")
	return notice, nil
}

// AbsencesFor lists a student's notices with their derived makeup status:
// pendente until the class is submitted, then disponivel inside the
// eligibility window, expirada after it, or the status of the reschedule
// request that consumed the notice.
func (s *AbsenceService) AbsencesFor(studentID uint) ([]AbsenceView, error) {
	notices, err := s.noticeRepo.GetByStudent(studentID)
	if err != nil {
		return nil, err
	}

	views := make([]AbsenceView, 0, len(notices))
	for _, notice := range notices {
		view := AbsenceView{Notice: notice}
		view.StatusReposicao, view.DiasRestantes, err = s.makeupStatus(notice)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

func (s *AbsenceService) makeupStatus(notice *models.AbsenceNotice) (string, int, error) {
	if notice.Status != models.NoticeConfirmed || notice.ConfirmedAt == nil {
		return MakeupPendente, 0, nil
	}

	request, err := s.rescheduleRepo.GetRequestByNotice(notice.ID)
	if err != nil {
		return "", 0, err
	}
	if request != nil {
		switch request.Status {
		case models.RequestAprovado:
			return MakeupAprovada, 0, nil
		case models.RequestRejeitado:
			return MakeupRejeitada, 0, nil
		default:
			return MakeupPendente, 0, nil
		}
	}

	deadline := dates.AddDays(dates.ToISO(*notice.ConfirmedAt), MakeupWindowDays)
	today := dates.ToISO(s.Now())
	if today > deadline {
		return MakeupExpirada, 0, nil
	}
	remaining, _ := dates.DaysBetween(today, deadline)
	return MakeupDisponivel, remaining, nil
}

// ConfirmedNotice returns the confirmed notice for a key, or nil. Used by
// the reschedule workflow to check eligibility before authorizing a
// justified move.
func (s *AbsenceService) ConfirmedNotice(studentID, slotID uint, date string) (*models.AbsenceNotice, error) {
	notice, err := s.noticeRepo.GetByKey(studentID, slotID, date)
	if err != nil {
		return nil, err
	}
	if notice == nil || notice.Status != models.NoticeConfirmed {
		return nil, nil
	}
	return notice, nil
}
