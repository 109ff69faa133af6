package repository

import (
	"errors"
	"studio-schedule-bot/internal/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type CreditRepository interface {
	Create(credit *models.MakeupCredit) error
	Update(credit *models.MakeupCredit) error
	Delete(id uint) error
	GetByID(id uint) (*models.MakeupCredit, error)
	GetActiveByStudent(studentID uint) ([]*models.MakeupCredit, error)
	CreateUsage(usage *models.CreditUsage) error
	DeleteUsage(id uint) error
	GetUsageByID(id uint) (*models.CreditUsage, error)
	GetUsagesByCredit(creditID uint) ([]*models.CreditUsage, error)
	WithTx(tx *gorm.DB) CreditRepository
}

type GormCreditRepository struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewGormCreditRepository(db *gorm.DB) (*GormCreditRepository, error) {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	if err := db.AutoMigrate(&models.MakeupCredit{}, &models.CreditUsage{}); err != nil {
		logger.WithError(err).Error("Failed to auto-migrate makeup credit tables")
		return nil, err
	}

	return &GormCreditRepository{db: db, logger: logger}, nil
}

func (r *GormCreditRepository) WithTx(tx *gorm.DB) CreditRepository {
	return &GormCreditRepository{db: tx, logger: r.logger}
}

func (r *GormCreditRepository) Create(credit *models.MakeupCredit) error {
	if !credit.IsValid() {
		r.logger.WithFields(logrus.Fields{
			"student_id": credit.StudentID,
			"quantity":   credit.Quantity,
		}).Warn("Invalid makeup credit data")
		return errors.New("invalid makeup credit data")
	}

	if err := r.db.Create(credit).Error; err != nil {
		r.logger.WithError(err).Error("Failed to create makeup credit")
		return err
	}

	r.logger.WithFields(logrus.Fields{
		"id":         credit.ID,
		"student_id": credit.StudentID,
		"quantity":   credit.Quantity,
	}).Info("Makeup credit created")
	return nil
}

func (r *GormCreditRepository) Update(credit *models.MakeupCredit) error {
	if !credit.IsValid() {
		return errors.New("invalid makeup credit data")
	}
	if err := r.db.Save(credit).Error; err != nil {
		r.logger.WithError(err).Error("Failed to update makeup credit")
		return err
	}
	return nil
}

func (r *GormCreditRepository) Delete(id uint) error {
	result := r.db.Delete(&models.MakeupCredit{}, id)
	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to delete makeup credit")
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.New("makeup credit not found")
	}

	r.logger.WithField("id", id).Info("Makeup credit deleted")
	return nil
}

func (r *GormCreditRepository) GetByID(id uint) (*models.MakeupCredit, error) {
	var credit models.MakeupCredit
	result := r.db.Preload("Usages", func(db *gorm.DB) *gorm.DB {
		return db.Order("credit_usages.ordinal ASC")
	}).First(&credit, id)

	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to get makeup credit by ID")
		return nil, result.Error
	}

	return &credit, nil
}

func (r *GormCreditRepository) GetActiveByStudent(studentID uint) ([]*models.MakeupCredit, error) {
	var credits []*models.MakeupCredit
	result := r.db.Preload("Usages", func(db *gorm.DB) *gorm.DB {
		return db.Order("credit_usages.ordinal ASC")
	}).Where("student_id = ? AND active = ?", studentID, true).
		Order("valid_until ASC, id ASC").
		Find(&credits)
	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to get makeup credits by student")
		return nil, result.Error
	}
	return credits, nil
}

func (r *GormCreditRepository) CreateUsage(usage *models.CreditUsage) error {
	if err := r.db.Create(usage).Error; err != nil {
		r.logger.WithError(err).Error("Failed to create credit usage")
		return err
	}

	r.logger.WithFields(logrus.Fields{
		"id":        usage.ID,
		"credit_id": usage.CreditID,
		"ordinal":   usage.Ordinal,
	}).Info("Credit usage created")
	return nil
}

func (r *GormCreditRepository) DeleteUsage(id uint) error {
	result := r.db.Delete(&models.CreditUsage{}, id)
	if result.Error != nil {
		r.logger.WithError(result.Error).Error("Failed to delete credit usage")
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.New("credit usage not found")
	}
	return nil
}

func (r *GormCreditRepository) GetUsageByID(id uint) (*models.CreditUsage, error) {
	var usage models.CreditUsage
	err := r.db.First(&usage, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &usage, nil
}

func (r *GormCreditRepository) GetUsagesByCredit(creditID uint) ([]*models.CreditUsage, error) {
	var usages []*models.CreditUsage
	err := r.db.Where("credit_id = ?", creditID).Order("ordinal ASC").Find(&usages).Error
	return usages, err
}
