package repository

import (
	"errors"
	"time"

	"studio-schedule-bot/internal/models"

	"gorm.io/gorm"
)

type AbsenceNoticeRepository interface {
	Create(notice *models.AbsenceNotice) error
	GetByID(id uint) (*models.AbsenceNotice, error)
	GetByKey(studentID, slotID uint, date string) (*models.AbsenceNotice, error)
	GetByStudent(studentID uint) ([]*models.AbsenceNotice, error)
	Confirm(id uint, at time.Time) error
	WithTx(tx *gorm.DB) AbsenceNoticeRepository
}

type GormAbsenceNoticeRepository struct {
	db *gorm.DB
}

func NewGormAbsenceNoticeRepository(db *gorm.DB) (*GormAbsenceNoticeRepository, error) {
	if err := db.AutoMigrate(&models.AbsenceNotice{}); err != nil {
		return nil, err
	}
	return &GormAbsenceNoticeRepository{db: db}, nil
}

func (r *GormAbsenceNoticeRepository) WithTx(tx *gorm.DB) AbsenceNoticeRepository {
	return &GormAbsenceNoticeRepository{db: tx}
}

func (r *GormAbsenceNoticeRepository) Create(notice *models.AbsenceNotice) error {
	if !notice.IsValid() {
		return errors.New("invalid absence notice data")
	}
	return r.db.Create(notice).Error
}

func (r *GormAbsenceNoticeRepository) GetByID(id uint) (*models.AbsenceNotice, error) {
	var notice models.AbsenceNotice
	err := r.db.First(&notice, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &notice, nil
}

func (r *GormAbsenceNoticeRepository) GetByKey(studentID, slotID uint, date string) (*models.AbsenceNotice, error) {
	var notice models.AbsenceNotice
	err := r.db.Where("student_id = ? AND slot_id = ? AND date = ?", studentID, slotID, date).
		First(&notice).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &notice, nil
}

func (r *GormAbsenceNoticeRepository) GetByStudent(studentID uint) ([]*models.AbsenceNotice, error) {
	var notices []*models.AbsenceNotice
	err := r.db.Where("student_id = ?", studentID).
		Order("date DESC").
		Find(&notices).Error
	return notices, err
}

// Confirm transitions a pending notice to confirmed. Confirming an already
// confirmed notice is a no-op so resubmitting the same class stays safe.
func (r *GormAbsenceNoticeRepository) Confirm(id uint, at time.Time) error {
	return r.db.Model(&models.AbsenceNotice{}).
		Where("id = ? AND status = ?", id, models.NoticePending).
		Updates(map[string]interface{}{
			"status":       models.NoticeConfirmed,
			"confirmed_at": at,
		}).Error
}
