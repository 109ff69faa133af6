package service

import (
	"fmt"
	"time"

	"studio-schedule-bot/internal/models"
	"studio-schedule-bot/internal/repository"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// CreateRescheduleInput opens a temporary one-off move request.
type CreateRescheduleInput struct {
	StudentID      uint   `validate:"required"`
	EnrollmentID   uint   `validate:"required"`
	OriginalSlotID uint   `validate:"required"`
	OriginalDate   string `validate:"required,datetime=2006-01-02"`
	NewSlotID      uint   `validate:"required"`
	NewDate        string `validate:"required,datetime=2006-01-02"`
	Reason         string `validate:"max=200"`

	// AbsenceNoticeID justifies the move with a confirmed absence;
	// CreditID pays for it with a makeup-credit unit. Either, both or
	// neither may be set.
	AbsenceNoticeID *uint
	CreditID        *uint

	RequestedBy int64
}

// CreateChangeInput opens a permanent slot change request.
type CreateChangeInput struct {
	StudentID    uint   `validate:"required"`
	EnrollmentID uint   `validate:"required"`
	NewSlotID    uint   `validate:"required"`
	Reason       string `validate:"max=200"`
}

type RescheduleService struct {
	db             *gorm.DB
	rescheduleRepo repository.RescheduleRepository
	enrollmentRepo repository.EnrollmentRepository
	slotRepo       repository.SlotRepository
	creditService  *CreditService
	validate       *validator.Validate
	logger         *logrus.Logger

	// Auto-approval toggles from configuration. When set, requests skip
	// pendente and are approved synchronously at creation.
	AutoApproveReschedule bool
	AutoApproveChange     bool

	Now func() time.Time
}

func NewRescheduleService(
	db *gorm.DB,
	rescheduleRepo repository.RescheduleRepository,
	enrollmentRepo repository.EnrollmentRepository,
	slotRepo repository.SlotRepository,
	creditService *CreditService,
) *RescheduleService {
	return &RescheduleService{
		db:             db,
		rescheduleRepo: rescheduleRepo,
		enrollmentRepo: enrollmentRepo,
		slotRepo:       slotRepo,
		creditService:  creditService,
		validate:       validator.New(),
		logger:         logrus.New(),
		Now:            time.Now,
	}
}

// CreateTemporary opens a Reagendamento: the student keeps the enrollment
// and, once approved, appears as a guest in the target occurrence. When a
// credit pays for the move, the unit is consumed in the same transaction
// that creates the request.
func (s *RescheduleService) CreateTemporary(input CreateRescheduleInput) (*models.RescheduleRequest, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, &ValidationError{Msg: err.Error()}
	}

	enrollment, err := s.enrollmentRepo.GetByID(input.EnrollmentID)
	if err != nil {
		return nil, err
	}
	if enrollment == nil {
		return nil, ErrNotFound
	}
	if enrollment.StudentID != input.StudentID {
		return nil, validationErrorf("enrollment %d does not belong to student %d", input.EnrollmentID, input.StudentID)
	}

	newSlot, err := s.slotRepo.GetByID(input.NewSlotID)
	if err != nil {
		return nil, err
	}
	if newSlot == nil || !newSlot.Active {
		return nil, ErrNotFound
	}

	request := &models.RescheduleRequest{
		StudentID:       input.StudentID,
		EnrollmentID:    input.EnrollmentID,
		OriginalSlotID:  input.OriginalSlotID,
		OriginalDate:    input.OriginalDate,
		NewSlotID:       input.NewSlotID,
		NewDate:         input.NewDate,
		Reason:          input.Reason,
		Status:          models.RequestPendente,
		AbsenceNoticeID: input.AbsenceNoticeID,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		rescheduleTx := s.rescheduleRepo.WithTx(tx)
		if err := rescheduleTx.CreateRequest(request); err != nil {
			return err
		}

		if input.CreditID != nil {
			usage, err := s.creditService.UseWithTx(tx, UseInput{
				CreditID:          *input.CreditID,
				BookingID:         request.ID,
				BookingType:       models.BookingReagendamento,
				BookingModalityID: &newSlot.ModalityID,
				Observation:       fmt.Sprintf("reagendamento para %s", input.NewDate),
			})
			if err != nil {
				return err
			}
			request.CreditUsageID = &usage.ID
			if err := rescheduleTx.UpdateRequest(request); err != nil {
				return err
			}
		}

		if s.AutoApproveReschedule {
			return s.approveTx(tx, request, input.RequestedBy)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"id":     request.ID,
		"status": request.Status,
	}).Info("Reschedule request created")
	return request, nil
}

// Approve moves a pending request to aprovado and opens its outcome
// tracker. Only pendente requests can be decided.
func (s *RescheduleService) Approve(requestID uint, decidedBy int64) (*models.RescheduleRequest, error) {
	request, err := s.rescheduleRepo.GetRequestByID(requestID)
	if err != nil {
		return nil, err
	}
	if request == nil {
		return nil, ErrNotFound
	}
	if !request.IsPendente() {
		return nil, &StateConflictError{
			Msg:           fmt.Sprintf("reschedule request %d is %s, not pendente", requestID, request.Status),
			CurrentStatus: request.Status,
		}
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		return s.approveTx(tx, request, decidedBy)
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithField("id", requestID).Info("Reschedule request approved")
	return request, nil
}

func (s *RescheduleService) approveTx(tx *gorm.DB, request *models.RescheduleRequest, decidedBy int64) error {
	rescheduleTx := s.rescheduleRepo.WithTx(tx)

	now := s.Now()
	request.Status = models.RequestAprovado
	request.DecidedAt = &now
	request.DecidedBy = &decidedBy
	if err := rescheduleTx.UpdateRequest(request); err != nil {
		return err
	}

	return rescheduleTx.SaveOutcome(&models.RescheduleOutcome{
		RequestID: request.ID,
		Status:    models.OutcomePendente,
	})
}

// Reject moves a pending request to rejeitado. A credit unit consumed by
// the request is refunded in the same transaction; staff rejecting a
// request must not burn the student's credit.
func (s *RescheduleService) Reject(requestID uint, reason string, decidedBy int64) (*models.RescheduleRequest, error) {
	request, err := s.rescheduleRepo.GetRequestByID(requestID)
	if err != nil {
		return nil, err
	}
	if request == nil {
		return nil, ErrNotFound
	}
	if !request.IsPendente() {
		return nil, &StateConflictError{
			Msg:           fmt.Sprintf("reschedule request %d is %s, not pendente", requestID, request.Status),
			CurrentStatus: request.Status,
		}
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		rescheduleTx := s.rescheduleRepo.WithTx(tx)

		now := s.Now()
		request.Status = models.RequestRejeitado
		request.RejectReason = reason
		request.DecidedAt = &now
		request.DecidedBy = &decidedBy

		// The refund deletes the usage row, so the request must stop
		// pointing at it.
		if request.CreditUsageID != nil {
			usageID := *request.CreditUsageID
			request.CreditUsageID = nil
			if err := s.creditService.RefundUsageWithTx(tx, usageID); err != nil {
				return err
			}
		}

		return rescheduleTx.UpdateRequest(request)
	})
	if err != nil {
		return nil, &TransactionError{Op: "reject reschedule", Err: err}
	}

	s.logger.WithFields(logrus.Fields{
		"id":     requestID,
		"reason": reason,
	}).Info("Reschedule request rejected")
	return request, nil
}

func (s *RescheduleService) PendingRequests() ([]*models.RescheduleRequest, error) {
	return s.rescheduleRepo.GetPendingRequests()
}

func (s *RescheduleService) OutcomeFor(requestID uint) (*models.RescheduleOutcome, error) {
	return s.rescheduleRepo.GetOutcomeByRequest(requestID)
}

// CreatePermanentChange opens an AlteracaoHorario: approval will re-point
// the standing enrollment at the new slot.
func (s *RescheduleService) CreatePermanentChange(input CreateChangeInput) (*models.PermanentChangeRequest, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, &ValidationError{Msg: err.Error()}
	}

	enrollment, err := s.enrollmentRepo.GetByID(input.EnrollmentID)
	if err != nil {
		return nil, err
	}
	if enrollment == nil {
		return nil, ErrNotFound
	}
	if enrollment.StudentID != input.StudentID {
		return nil, validationErrorf("enrollment %d does not belong to student %d", input.EnrollmentID, input.StudentID)
	}

	newSlot, err := s.slotRepo.GetByID(input.NewSlotID)
	if err != nil {
		return nil, err
	}
	if newSlot == nil || !newSlot.Active {
		return nil, ErrNotFound
	}
	if enrollment.SlotID == input.NewSlotID {
		return nil, validationErrorf("enrollment %d is already on slot %d", input.EnrollmentID, input.NewSlotID)
	}

	change := &models.PermanentChangeRequest{
		StudentID:     input.StudentID,
		EnrollmentID:  input.EnrollmentID,
		CurrentSlotID: enrollment.SlotID,
		NewSlotID:     input.NewSlotID,
		Reason:        input.Reason,
		Status:        models.RequestPendente,
	}
	if err := s.rescheduleRepo.CreateChange(change); err != nil {
		return nil, err
	}

	if s.AutoApproveChange {
		return s.ApproveChange(change.ID, 0)
	}
	return change, nil
}

// ApproveChange decides a pending permanent change and mutates the
// enrollment to the new slot, atomically.
func (s *RescheduleService) ApproveChange(changeID uint, decidedBy int64) (*models.PermanentChangeRequest, error) {
	change, err := s.rescheduleRepo.GetChangeByID(changeID)
	if err != nil {
		return nil, err
	}
	if change == nil {
		return nil, ErrNotFound
	}
	if !change.IsPendente() {
		return nil, &StateConflictError{
			Msg:           fmt.Sprintf("change request %d is %s, not pendente", changeID, change.Status),
			CurrentStatus: change.Status,
		}
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		enrollmentTx := s.enrollmentRepo.WithTx(tx)
		enrollment, err := enrollmentTx.GetByID(change.EnrollmentID)
		if err != nil {
			return err
		}
		if enrollment == nil {
			return ErrNotFound
		}

		enrollment.SlotID = change.NewSlotID
		if err := enrollmentTx.Update(enrollment); err != nil {
			return err
		}

		now := s.Now()
		change.Status = models.RequestAprovado
		change.DecidedAt = &now
		change.DecidedBy = &decidedBy
		return s.rescheduleRepo.WithTx(tx).UpdateChange(change)
	})
	if err != nil {
		return nil, &TransactionError{Op: "approve permanent change", Err: err}
	}

	s.logger.WithFields(logrus.Fields{
		"id":          changeID,
		"new_slot_id": change.NewSlotID,
	}).Info("Permanent change approved, enrollment moved")
	return change, nil
}

// RejectChange decides a pending permanent change without touching the
// enrollment.
func (s *RescheduleService) RejectChange(changeID uint, reason string, decidedBy int64) (*models.PermanentChangeRequest, error) {
	change, err := s.rescheduleRepo.GetChangeByID(changeID)
	if err != nil {
		return nil, err
	}
	if change == nil {
		return nil, ErrNotFound
	}
	if !change.IsPendente() {
		return nil, &StateConflictError{
			Msg:           fmt.Sprintf("change request %d is %s, not pendente", changeID, change.Status),
			CurrentStatus: change.Status,
		}
	}

	now := s.Now()
	change.Status = models.RequestRejeitado
	change.RejectReason = reason
	change.DecidedAt = &now
	change.DecidedBy = &decidedBy
	if err := s.rescheduleRepo.UpdateChange(change); err != nil {
		return nil, err
	}
	return change, nil
}

func (s *RescheduleService) PendingChanges() ([]*models.PermanentChangeRequest, error) {
	return s.rescheduleRepo.GetPendingChanges()
}

// ClearResolvedHistory bulk-deletes decided requests of both variants.
// Pendente requests are never touched.
func (s *RescheduleService) ClearResolvedHistory() (int64, error) {
	requests, err := s.rescheduleRepo.DeleteResolvedRequests()
	if err != nil {
		return 0, err
	}
	changes, err := s.rescheduleRepo.DeleteResolvedChanges()
	if err != nil {
		return requests, err
	}

	total := requests + changes
	s.logger.WithField("deleted", total).Info("Resolved reschedule history cleared")
	return total, nil
}
