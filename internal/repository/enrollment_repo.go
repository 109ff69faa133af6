package repository

import (
	"errors"
	"studio-schedule-bot/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type EnrollmentRepository interface {
	Create(enrollment *models.Enrollment) error
	Update(enrollment *models.Enrollment) error
	GetByID(id uint) (*models.Enrollment, error)
	GetActiveBySlot(slotID uint) ([]*models.Enrollment, error)
	GetByStudent(studentID uint) ([]*models.Enrollment, error)
	GetActiveSubstitutesFor(enrollmentID uint) ([]*models.Enrollment, error)
	WithTx(tx *gorm.DB) EnrollmentRepository
}

type GormEnrollmentRepository struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewGormEnrollmentRepository(db *gorm.DB) (*GormEnrollmentRepository, error) {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	if err := db.AutoMigrate(&models.Student{}, &models.Enrollment{}); err != nil {
		logger.WithError(err).Error("Failed to auto-migrate enrollments table")
		return nil, err
	}

	return &GormEnrollmentRepository{db: db, logger: logger}, nil
}

func (r *GormEnrollmentRepository) WithTx(tx *gorm.DB) EnrollmentRepository {
	return &GormEnrollmentRepository{db: tx, logger: r.logger}
}

func (r *GormEnrollmentRepository) Create(enrollment *models.Enrollment) error {
	if !enrollment.IsValid() {
		r.logger.WithFields(logrus.Fields{
			"student_id": enrollment.StudentID,
			"slot_id":    enrollment.SlotID,
		}).Warn("Invalid enrollment data")
		return errors.New("invalid enrollment data")
	}

	if err := r.db.Create(enrollment).Error; err != nil {
		r.logger.WithError(err).Error("Failed to create enrollment")
		return err
	}

	r.logger.WithFields(logrus.Fields{
		"id":         enrollment.ID,
		"student_id": enrollment.StudentID,
		"slot_id":    enrollment.SlotID,
	}).Info("Enrollment created")
	return nil
}

func (r *GormEnrollmentRepository) Update(enrollment *models.Enrollment) error {
	if !enrollment.IsValid() {
		return errors.New("invalid enrollment data")
	}

	if err := r.db.Save(enrollment).Error; err != nil {
		r.logger.WithError(err).Error("Failed to update enrollment")
		return err
	}
	return nil
}

func (r *GormEnrollmentRepository) GetByID(id uint) (*models.Enrollment, error) {
	var enrollment models.Enrollment
	result := r.db.Preload("Student").Preload("Slot").First(&enrollment, id)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to get enrollment by ID")
		return nil, result.Error
	}

	return &enrollment, nil
}

func (r *GormEnrollmentRepository) GetActiveBySlot(slotID uint) ([]*models.Enrollment, error) {
	var enrollments []*models.Enrollment
	result := r.db.Preload("Student").
		Where("slot_id = ? AND active = ?", slotID, true).
		Order("id ASC").
		Find(&enrollments)
	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to get enrollments by slot")
		return nil, result.Error
	}
	return enrollments, nil
}

func (r *GormEnrollmentRepository) GetByStudent(studentID uint) ([]*models.Enrollment, error) {
	var enrollments []*models.Enrollment
	result := r.db.Preload("Slot").
		Where("student_id = ?", studentID).
		Order("id ASC").
		Find(&enrollments)
	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to get enrollments by student")
		return nil, result.Error
	}
	return enrollments, nil
}

func (r *GormEnrollmentRepository) GetActiveSubstitutesFor(enrollmentID uint) ([]*models.Enrollment, error) {
	var substitutes []*models.Enrollment
	result := r.db.Preload("Student").
		Where("replaces_enrollment_id = ? AND active = ?", enrollmentID, true).
		Find(&substitutes)
	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to get substitutes for enrollment")
		return nil, result.Error
	}
	return substitutes, nil
}
