package repository

import (
	"errors"
	"studio-schedule-bot/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type AttendanceRepository interface {
	Create(record *models.AttendanceRecord) error
	Update(record *models.AttendanceRecord) error
	GetByID(id uint) (*models.AttendanceRecord, error)
	GetBySlotAndDate(slotID uint, date string) (*models.AttendanceRecord, error)
	DeletePendingBySlotAndDate(slotID uint, date string) error
	GetSubmittedDates(slotID uint, startDate, endDate string) ([]string, error)
	GetByDateRange(startDate, endDate string) ([]*models.AttendanceRecord, error)
	WithTx(tx *gorm.DB) AttendanceRepository
}

type GormAttendanceRepository struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewGormAttendanceRepository(db *gorm.DB) (*GormAttendanceRepository, error) {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	if err := db.AutoMigrate(&models.AttendanceRecord{}, &models.RosterEntry{}); err != nil {
		logger.WithError(err).Error("Failed to auto-migrate attendance tables")
		return nil, err
	}

	return &GormAttendanceRepository{db: db, logger: logger}, nil
}

func (r *GormAttendanceRepository) WithTx(tx *gorm.DB) AttendanceRepository {
	return &GormAttendanceRepository{db: tx, logger: r.logger}
}

func (r *GormAttendanceRepository) Create(record *models.AttendanceRecord) error {
	if !record.IsValid() {
		r.logger.WithFields(logrus.Fields{
			"slot_id": record.SlotID,
			"date":    record.Date,
		}).Warn("Invalid attendance record data")
		return errors.New("invalid attendance record data")
	}

	if err := r.db.Create(record).Error; err != nil {
		r.logger.WithError(err).Error("Failed to create attendance record")
		return err
	}

	r.logger.WithFields(logrus.Fields{
		"id":      record.ID,
		"slot_id": record.SlotID,
		"date":    record.Date,
		"status":  record.Status,
	}).Info("Attendance record created")
	return nil
}

func (r *GormAttendanceRepository) Update(record *models.AttendanceRecord) error {
	if !record.IsValid() {
		return errors.New("invalid attendance record data")
	}

	// Entries are replaced wholesale on amendment; Save alone would only
	// upsert the ones still carrying IDs.
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("record_id = ?", record.ID).Delete(&models.RosterEntry{}).Error; err != nil {
			return err
		}
		return tx.Session(&gorm.Session{FullSaveAssociations: true}).Save(record).Error
	})
	if err != nil {
		r.logger.WithError(err).Error("Failed to update attendance record")
		return err
	}

	r.logger.WithFields(logrus.Fields{
		"id":     record.ID,
		"status": record.Status,
	}).Info("Attendance record updated")
	return nil
}

func (r *GormAttendanceRepository) GetByID(id uint) (*models.AttendanceRecord, error) {
	var record models.AttendanceRecord
	result := r.db.Preload("Entries", func(db *gorm.DB) *gorm.DB {
		return db.Order("roster_entries.position ASC")
	}).First(&record, id)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to get attendance record by ID")
		return nil, result.Error
	}

	return &record, nil
}

func (r *GormAttendanceRepository) GetBySlotAndDate(slotID uint, date string) (*models.AttendanceRecord, error) {
	var record models.AttendanceRecord
	result := r.db.Preload("Entries", func(db *gorm.DB) *gorm.DB {
		return db.Order("roster_entries.position ASC")
	}).Where("slot_id = ? AND date = ?", slotID, date).First(&record)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to get attendance record by slot/date")
		return nil, result.Error
	}

	return &record, nil
}

func (r *GormAttendanceRepository) DeletePendingBySlotAndDate(slotID uint, date string) error {
	var pending []models.AttendanceRecord
	if err := r.db.Where("slot_id = ? AND date = ? AND status = ?",
		slotID, date, models.AttendancePending).Find(&pending).Error; err != nil {
		return err
	}

	for _, record := range pending {
		if err := r.db.Where("record_id = ?", record.ID).Delete(&models.RosterEntry{}).Error; err != nil {
			return err
		}
		if err := r.db.Delete(&models.AttendanceRecord{}, record.ID).Error; err != nil {
			return err
		}
	}

	if len(pending) > 0 {
		r.logger.WithFields(logrus.Fields{
			"slot_id": slotID,
			"date":    date,
			"count":   len(pending),
		}).Debug("Deleted pending attendance placeholders")
	}
	return nil
}

func (r *GormAttendanceRepository) GetSubmittedDates(slotID uint, startDate, endDate string) ([]string, error) {
	var submitted []string
	result := r.db.Model(&models.AttendanceRecord{}).
		Where("slot_id = ? AND date BETWEEN ? AND ? AND status IN ?",
			slotID, startDate, endDate,
			[]string{models.AttendanceSubmitted, models.AttendanceCorrected}).
		Order("date ASC").
		Pluck("date", &submitted)
	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to get submitted dates")
		return nil, result.Error
	}
	return submitted, nil
}

func (r *GormAttendanceRepository) GetByDateRange(startDate, endDate string) ([]*models.AttendanceRecord, error) {
	var records []*models.AttendanceRecord
	result := r.db.Where("date BETWEEN ? AND ?", startDate, endDate).
		Order("date DESC, slot_id ASC").
		Find(&records)
	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to get attendance records by range")
		return nil, result.Error
	}
	return records, nil
}
