package repository

import (
	"errors"
	"studio-schedule-bot/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type RescheduleRepository interface {
	CreateRequest(request *models.RescheduleRequest) error
	UpdateRequest(request *models.RescheduleRequest) error
	GetRequestByID(id uint) (*models.RescheduleRequest, error)
	GetRequestByNotice(noticeID uint) (*models.RescheduleRequest, error)
	GetPendingRequests() ([]*models.RescheduleRequest, error)
	GetApprovedForTarget(slotID uint, date string) ([]*models.RescheduleRequest, error)
	DeleteResolvedRequests() (int64, error)

	GetOutcomeByRequest(requestID uint) (*models.RescheduleOutcome, error)
	SaveOutcome(outcome *models.RescheduleOutcome) error

	CreateChange(change *models.PermanentChangeRequest) error
	UpdateChange(change *models.PermanentChangeRequest) error
	GetChangeByID(id uint) (*models.PermanentChangeRequest, error)
	GetPendingChanges() ([]*models.PermanentChangeRequest, error)
	DeleteResolvedChanges() (int64, error)

	WithTx(tx *gorm.DB) RescheduleRepository
}

type GormRescheduleRepository struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewGormRescheduleRepository(db *gorm.DB) (*GormRescheduleRepository, error) {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	if err := db.AutoMigrate(
		&models.RescheduleRequest{},
		&models.RescheduleOutcome{},
		&models.PermanentChangeRequest{},
	); err != nil {
		logger.WithError(err).Error("Failed to auto-migrate reschedule tables")
		return nil, err
	}

	return &GormRescheduleRepository{db: db, logger: logger}, nil
}

func (r *GormRescheduleRepository) WithTx(tx *gorm.DB) RescheduleRepository {
	return &GormRescheduleRepository{db: tx, logger: r.logger}
}

func (r *GormRescheduleRepository) CreateRequest(request *models.RescheduleRequest) error {
	if !request.IsValid() {
		r.logger.WithFields(logrus.Fields{
			"student_id": request.StudentID,
			"new_date":   request.NewDate,
		}).Warn("Invalid reschedule request data")
		return errors.New("invalid reschedule request data")
	}

	if err := r.db.Create(request).Error; err != nil {
		r.logger.WithError(err).Error("Failed to create reschedule request")
		return err
	}

	r.logger.WithFields(logrus.Fields{
		"id":         request.ID,
		"student_id": request.StudentID,
		"status":     request.Status,
	}).Info("Reschedule request created")
	return nil
}

func (r *GormRescheduleRepository) UpdateRequest(request *models.RescheduleRequest) error {
	if !request.IsValid() {
		return errors.New("invalid reschedule request data")
	}
	if err := r.db.Save(request).Error; err != nil {
		r.logger.WithError(err).Error("Failed to update reschedule request")
		return err
	}
	return nil
}

func (r *GormRescheduleRepository) GetRequestByID(id uint) (*models.RescheduleRequest, error) {
	var request models.RescheduleRequest
	result := r.db.Preload("Student").Preload("NewSlot").First(&request, id)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to get reschedule request by ID")
		return nil, result.Error
	}

	return &request, nil
}

// GetRequestByNotice finds the request justified by an absence notice, the
// newest one when the notice was reused after a rejection.
func (r *GormRescheduleRepository) GetRequestByNotice(noticeID uint) (*models.RescheduleRequest, error) {
	var request models.RescheduleRequest
	err := r.db.Where("absence_notice_id = ?", noticeID).
		Order("id DESC").
		First(&request).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *GormRescheduleRepository) GetPendingRequests() ([]*models.RescheduleRequest, error) {
	var requests []*models.RescheduleRequest
	result := r.db.Preload("Student").Preload("NewSlot").
		Where("status = ?", models.RequestPendente).
		Order("created_at ASC").
		Find(&requests)
	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to get pending reschedule requests")
		return nil, result.Error
	}
	return requests, nil
}

// GetApprovedForTarget returns approved requests whose target occurrence is
// the given (slot, date); these students join that roster as guests.
func (r *GormRescheduleRepository) GetApprovedForTarget(slotID uint, date string) ([]*models.RescheduleRequest, error) {
	var requests []*models.RescheduleRequest
	result := r.db.Preload("Student").
		Where("new_slot_id = ? AND new_date = ? AND status = ?", slotID, date, models.RequestAprovado).
		Order("id ASC").
		Find(&requests)
	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to get approved reschedules for target")
		return nil, result.Error
	}
	return requests, nil
}

func (r *GormRescheduleRepository) DeleteResolvedRequests() (int64, error) {
	result := r.db.Where("status <> ?", models.RequestPendente).Delete(&models.RescheduleRequest{})
	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to delete resolved reschedule requests")
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *GormRescheduleRepository) GetOutcomeByRequest(requestID uint) (*models.RescheduleOutcome, error) {
	var outcome models.RescheduleOutcome
	err := r.db.Where("request_id = ?", requestID).First(&outcome).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &outcome, nil
}

func (r *GormRescheduleRepository) SaveOutcome(outcome *models.RescheduleOutcome) error {
	return r.db.Save(outcome).Error
}

func (r *GormRescheduleRepository) CreateChange(change *models.PermanentChangeRequest) error {
	if !change.IsValid() {
		r.logger.WithFields(logrus.Fields{
			"student_id":  change.StudentID,
			"new_slot_id": change.NewSlotID,
		}).Warn("Invalid permanent change request data")
		return errors.New("invalid permanent change request data")
	}

	if err := r.db.Create(change).Error; err != nil {
		r.logger.WithError(err).Error("Failed to create permanent change request")
		return err
	}
	return nil
}

func (r *GormRescheduleRepository) UpdateChange(change *models.PermanentChangeRequest) error {
	if !change.IsValid() {
		return errors.New("invalid permanent change request data")
	}
	if err := r.db.Save(change).Error; err != nil {
		r.logger.WithError(err).Error("Failed to update permanent change request")
		return err
	}
	return nil
}

func (r *GormRescheduleRepository) GetChangeByID(id uint) (*models.PermanentChangeRequest, error) {
	var change models.PermanentChangeRequest
	err := r.db.First(&change, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &change, nil
}

func (r *GormRescheduleRepository) GetPendingChanges() ([]*models.PermanentChangeRequest, error) {
	var changes []*models.PermanentChangeRequest
	err := r.db.Where("status = ?", models.RequestPendente).
		Order("created_at ASC").
		Find(&changes).Error
	return changes, err
}

func (r *GormRescheduleRepository) DeleteResolvedChanges() (int64, error) {
	result := r.db.Where("status <> ?", models.RequestPendente).Delete(&models.PermanentChangeRequest{})
	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to delete resolved permanent change requests")
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
