package service

import (
	"errors"
	"time"

	"studio-schedule-bot/internal/models"
	"studio-schedule-bot/internal/repository"
	"studio-schedule-bot/pkg/dates"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// GrantInput creates a new makeup credit.
type GrantInput struct {
	StudentID  uint `validate:"required"`
	Quantity   int  `validate:"required,min=1"`
	ModalityID *uint
	Reason     string `validate:"max=200"`
	ValidUntil string `validate:"required,datetime=2006-01-02"`
	GrantedBy  int64  `validate:"required"`
}

// UseInput consumes one unit of a credit for a concrete booking.
type UseInput struct {
	CreditID          uint   `validate:"required"`
	BookingID         uint   `validate:"required"`
	BookingType       string `validate:"required,oneof=reagendamento aula_extra"`
	BookingModalityID *uint
	Observation       string `validate:"max=200"`
}

// CreditUnit is the state of one ordinal of a credit for display.
type CreditUnit struct {
	Ordinal     int
	Used        bool
	BookingID   uint
	BookingType string
	UsedAt      *time.Time
}

// CreditView is a credit enriched with its per-ordinal usage state.
type CreditView struct {
	Credit    *models.MakeupCredit
	Available int
	Units     []CreditUnit
}

type CreditService struct {
	db             *gorm.DB
	creditRepo     repository.CreditRepository
	rescheduleRepo repository.RescheduleRepository
	validate       *validator.Validate
	logger         *logrus.Logger

	Now func() time.Time
}

func NewCreditService(
	db *gorm.DB,
	creditRepo repository.CreditRepository,
	rescheduleRepo repository.RescheduleRepository,
) *CreditService {
	return &CreditService{
		db:             db,
		creditRepo:     creditRepo,
		rescheduleRepo: rescheduleRepo,
		validate:       validator.New(),
		logger:         logrus.New(),
		Now:            time.Now,
	}
}

// Grant creates a credit of Quantity independently redeemable units.
func (s *CreditService) Grant(input GrantInput) (*models.MakeupCredit, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, &ValidationError{Msg: err.Error()}
	}
	if input.ValidUntil <= dates.ToISO(s.Now()) {
		return nil, validationErrorf("validity date %s must be after today", input.ValidUntil)
	}

	credit := &models.MakeupCredit{
		StudentID:  input.StudentID,
		Quantity:   input.Quantity,
		ModalityID: input.ModalityID,
		Reason:     input.Reason,
		ValidUntil: input.ValidUntil,
		GrantedBy:  input.GrantedBy,
		Active:     true,
	}
	if err := s.creditRepo.Create(credit); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"id":          credit.ID,
		"student_id":  credit.StudentID,
		"quantity":    credit.Quantity,
		"valid_until": credit.ValidUntil,
	}).Info("Makeup credit granted")
	return credit, nil
}

// Use consumes the next free unit of a credit for a booking, in its own
// transaction. Callers that create the booking themselves (the reschedule
// workflow) use UseWithTx inside their transaction instead, so the unit is
// never decremented without its booking existing.
func (s *CreditService) Use(input UseInput) (*models.CreditUsage, error) {
	var usage *models.CreditUsage
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		usage, err = s.UseWithTx(tx, input)
		return err
	})
	if err != nil {
		return nil, err
	}
	return usage, nil
}

// UseWithTx is Use bound to the caller's transaction.
func (s *CreditService) UseWithTx(tx *gorm.DB, input UseInput) (*models.CreditUsage, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, &ValidationError{Msg: err.Error()}
	}

	creditTx := s.creditRepo.WithTx(tx)
	credit, err := creditTx.GetByID(input.CreditID)
	if err != nil {
		return nil, err
	}
	if credit == nil || !credit.Active {
		return nil, ErrNotFound
	}

	if credit.Expired(s.Now()) {
		return nil, ErrCreditExpired
	}
	if credit.Available() <= 0 {
		return nil, ErrCreditExhausted
	}
	if credit.ModalityID != nil {
		if input.BookingModalityID == nil || *input.BookingModalityID != *credit.ModalityID {
			return nil, ErrScopeMismatch
		}
	}

	usage := &models.CreditUsage{
		CreditID:    credit.ID,
		Ordinal:     nextFreeOrdinal(credit),
		StudentID:   credit.StudentID,
		BookingID:   input.BookingID,
		BookingType: input.BookingType,
		Observation: input.Observation,
		UsedAt:      s.Now(),
	}
	if err := creditTx.CreateUsage(usage); err != nil {
		return nil, err
	}

	credit.QuantityUsed++
	if err := creditTx.Update(credit); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"credit_id": credit.ID,
		"ordinal":   usage.Ordinal,
		"booking":   input.BookingID,
	}).Info("Credit unit consumed")
	return usage, nil
}

// nextFreeOrdinal picks the lowest ordinal not occupied by a usage row.
func nextFreeOrdinal(credit *models.MakeupCredit) int {
	taken := make(map[int]bool, len(credit.Usages))
	for _, u := range credit.Usages {
		taken[u.Ordinal] = true
	}
	for i := 0; i < credit.Quantity; i++ {
		if !taken[i] {
			return i
		}
	}
	return credit.Quantity // unreachable while Available() > 0
}

// CancelUsage refunds a consumed unit and removes its dependent booking in
// the same transaction: a reschedule booking is deleted along with its
// outcome. This is the only path that decrements QuantityUsed.
func (s *CreditService) CancelUsage(usageID uint) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		creditTx := s.creditRepo.WithTx(tx)

		usage, err := creditTx.GetUsageByID(usageID)
		if err != nil {
			return err
		}
		if usage == nil {
			return ErrNotFound
		}

		if err := s.refundUsageTx(tx, usage); err != nil {
			return err
		}

		if usage.BookingType == models.BookingReagendamento {
			rescheduleTx := s.rescheduleRepo.WithTx(tx)
			request, err := rescheduleTx.GetRequestByID(usage.BookingID)
			if err != nil {
				return err
			}
			if request != nil {
				if outcome, err := rescheduleTx.GetOutcomeByRequest(request.ID); err != nil {
					return err
				} else if outcome != nil {
					if err := tx.Delete(&models.RescheduleOutcome{}, outcome.ID).Error; err != nil {
						return err
					}
				}
				if err := tx.Delete(&models.RescheduleRequest{}, request.ID).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return &TransactionError{Op: "cancel credit usage", Err: err}
	}

	s.logger.WithField("usage_id", usageID).Info("Credit usage cancelled and unit refunded")
	return nil
}

// RefundUsageWithTx releases a usage inside the caller's transaction
// without touching the booking; the reschedule workflow uses it when a
// request is rejected, returning the unit to available.
func (s *CreditService) RefundUsageWithTx(tx *gorm.DB, usageID uint) error {
	creditTx := s.creditRepo.WithTx(tx)
	usage, err := creditTx.GetUsageByID(usageID)
	if err != nil {
		return err
	}
	if usage == nil {
		return nil // already refunded
	}
	return s.refundUsageTx(tx, usage)
}

func (s *CreditService) refundUsageTx(tx *gorm.DB, usage *models.CreditUsage) error {
	creditTx := s.creditRepo.WithTx(tx)

	if err := creditTx.DeleteUsage(usage.ID); err != nil {
		return err
	}

	credit, err := creditTx.GetByID(usage.CreditID)
	if err != nil {
		return err
	}
	if credit == nil {
		return ErrNotFound
	}
	credit.QuantityUsed--
	return creditTx.Update(credit)
}

// Revoke removes a credit: hard-delete when nothing was consumed, otherwise
// soft-deactivate so usage evidence is never lost.
func (s *CreditService) Revoke(creditID uint) error {
	credit, err := s.creditRepo.GetByID(creditID)
	if err != nil {
		return err
	}
	if credit == nil {
		return ErrNotFound
	}

	if credit.QuantityUsed == 0 {
		s.logger.WithField("id", creditID).Info("Revoking unused credit (hard delete)")
		return s.creditRepo.Delete(creditID)
	}

	credit.Active = false
	s.logger.WithFields(logrus.Fields{
		"id":   creditID,
		"used": credit.QuantityUsed,
	}).Info("Revoking used credit (deactivated, history kept)")
	return s.creditRepo.Update(credit)
}

// AvailableCredits lists the student's redeemable credits (active,
// unexpired, with free units) with per-ordinal state for display.
func (s *CreditService) AvailableCredits(studentID uint) ([]CreditView, error) {
	credits, err := s.creditRepo.GetActiveByStudent(studentID)
	if err != nil {
		return nil, err
	}

	now := s.Now()
	views := []CreditView{}
	for _, credit := range credits {
		if credit.Expired(now) || credit.Available() <= 0 {
			continue
		}

		byOrdinal := make(map[int]*models.CreditUsage, len(credit.Usages))
		for i := range credit.Usages {
			byOrdinal[credit.Usages[i].Ordinal] = &credit.Usages[i]
		}

		view := CreditView{Credit: credit, Available: credit.Available()}
		for i := 0; i < credit.Quantity; i++ {
			unit := CreditUnit{Ordinal: i}
			if usage, ok := byOrdinal[i]; ok {
				usedAt := usage.UsedAt
				unit.Used = true
				unit.BookingID = usage.BookingID
				unit.BookingType = usage.BookingType
				unit.UsedAt = &usedAt
			}
			view.Units = append(view.Units, unit)
		}
		views = append(views, view)
	}
	return views, nil
}
