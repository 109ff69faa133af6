package repository

import (
	"errors"
	"studio-schedule-bot/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// SlotFilter narrows active-slot listings for reconciliation.
type SlotFilter struct {
	TeacherID  *uint
	ModalityID *uint
}

type SlotRepository interface {
	Create(slot *models.RecurringSlot) error
	Update(slot *models.RecurringSlot) error
	Deactivate(id uint) error
	GetByID(id uint) (*models.RecurringSlot, error)
	GetActive(filter SlotFilter) ([]*models.RecurringSlot, error)
	GetAll() ([]*models.RecurringSlot, error)
}

type GormSlotRepository struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewGormSlotRepository(db *gorm.DB) (*GormSlotRepository, error) {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	if err := db.AutoMigrate(&models.Modality{}, &models.Teacher{}, &models.RecurringSlot{}); err != nil {
		logger.WithError(err).Error("Failed to auto-migrate recurring_slots tables")
		return nil, err
	}

	return &GormSlotRepository{db: db, logger: logger}, nil
}

func (r *GormSlotRepository) Create(slot *models.RecurringSlot) error {
	if !slot.IsValid() {
		r.logger.WithFields(logrus.Fields{
			"weekday":    slot.Weekday,
			"start_time": slot.StartTime,
		}).Warn("Invalid recurring slot data")
		return errors.New("invalid recurring slot data")
	}

	if err := r.db.Create(slot).Error; err != nil {
		r.logger.WithError(err).Error("Failed to create recurring slot")
		return err
	}

	r.logger.WithFields(logrus.Fields{
		"id":      slot.ID,
		"weekday": slot.Weekday,
	}).Info("Recurring slot created")
	return nil
}

func (r *GormSlotRepository) Update(slot *models.RecurringSlot) error {
	if !slot.IsValid() {
		return errors.New("invalid recurring slot data")
	}

	existing, err := r.GetByID(slot.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		return errors.New("recurring slot not found")
	}

	if err := r.db.Save(slot).Error; err != nil {
		r.logger.WithError(err).Error("Failed to update recurring slot")
		return err
	}
	return nil
}

func (r *GormSlotRepository) Deactivate(id uint) error {
	result := r.db.Model(&models.RecurringSlot{}).Where("id = ?", id).Update("active", false)
	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to deactivate recurring slot")
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.New("recurring slot not found")
	}

	r.logger.WithField("id", id).Info("Recurring slot deactivated")
	return nil
}

func (r *GormSlotRepository) GetByID(id uint) (*models.RecurringSlot, error) {
	var slot models.RecurringSlot
	result := r.db.Preload("Modality").Preload("Teacher").First(&slot, id)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to get recurring slot by ID")
		return nil, result.Error
	}

	return &slot, nil
}

func (r *GormSlotRepository) GetActive(filter SlotFilter) ([]*models.RecurringSlot, error) {
	var slots []*models.RecurringSlot

	query := r.db.Preload("Modality").Preload("Teacher").Where("active = ?", true)
	if filter.TeacherID != nil {
		query = query.Where("teacher_id = ?", *filter.TeacherID)
	}
	if filter.ModalityID != nil {
		query = query.Where("modality_id = ?", *filter.ModalityID)
	}

	result := query.Order("weekday ASC, start_time ASC, id ASC").Find(&slots)
	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to get active recurring slots")
		return nil, result.Error
	}

	return slots, nil
}

func (r *GormSlotRepository) GetAll() ([]*models.RecurringSlot, error) {
	var slots []*models.RecurringSlot
	result := r.db.Preload("Modality").Preload("Teacher").
		Order("weekday ASC, start_time ASC, id ASC").Find(&slots)
	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to get recurring slots")
		return nil, result.Error
	}
	return slots, nil
}
