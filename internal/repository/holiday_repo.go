package repository

import (
	"errors"
	"studio-schedule-bot/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type HolidayRepository interface {
	Create(holiday *models.Holiday) error
	BulkCreate(holidays []models.Holiday) error
	DeleteByDate(date string) error
	GetByDate(date string) (*models.Holiday, error)
	GetBetween(startDate, endDate string) ([]models.Holiday, error)
	GetAll() ([]models.Holiday, error)
}

type GormHolidayRepository struct {
	db *gorm.DB
}

func NewGormHolidayRepository(db *gorm.DB) (*GormHolidayRepository, error) {
	if err := db.AutoMigrate(&models.Holiday{}); err != nil {
		return nil, err
	}
	return &GormHolidayRepository{db: db}, nil
}

func (r *GormHolidayRepository) Create(holiday *models.Holiday) error {
	return r.db.Create(holiday).Error
}

func (r *GormHolidayRepository) BulkCreate(holidays []models.Holiday) error {
	if len(holidays) == 0 {
		return nil
	}
	// Seeding runs on every start; already-present dates are skipped.
	return r.db.
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "date"}},
			DoNothing: true,
		}).
		Create(&holidays).Error
}

func (r *GormHolidayRepository) DeleteByDate(date string) error {
	result := r.db.Where("date = ?", date).Delete(&models.Holiday{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.New("holiday not found")
	}
	return nil
}

func (r *GormHolidayRepository) GetByDate(date string) (*models.Holiday, error) {
	var holiday models.Holiday
	err := r.db.Where("date = ?", date).First(&holiday).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &holiday, nil
}

func (r *GormHolidayRepository) GetBetween(startDate, endDate string) ([]models.Holiday, error) {
	var holidays []models.Holiday
	err := r.db.Where("date BETWEEN ? AND ?", startDate, endDate).
		Order("date ASC").
		Find(&holidays).Error
	return holidays, err
}

func (r *GormHolidayRepository) GetAll() ([]models.Holiday, error) {
	var holidays []models.Holiday
	err := r.db.Order("date ASC").Find(&holidays).Error
	return holidays, err
}
