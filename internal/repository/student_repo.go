package repository

import (
	"errors"
	"studio-schedule-bot/internal/models"

	"gorm.io/gorm"
)

type StudentRepository interface {
	Create(student *models.Student) error
	Update(student *models.Student) error
	GetByID(id uint) (*models.Student, error)
	GetByIDs(ids []uint) ([]*models.Student, error)
	GetAllActive() ([]*models.Student, error)
}

type GormStudentRepository struct {
	db *gorm.DB
}

func NewGormStudentRepository(db *gorm.DB) (*GormStudentRepository, error) {
	if err := db.AutoMigrate(&models.Student{}); err != nil {
		return nil, err
	}
	return &GormStudentRepository{db: db}, nil
}

func (r *GormStudentRepository) Create(student *models.Student) error {
	if student.Name == "" {
		return errors.New("student name is required")
	}
	return r.db.Create(student).Error
}

func (r *GormStudentRepository) Update(student *models.Student) error {
	return r.db.Save(student).Error
}

func (r *GormStudentRepository) GetByID(id uint) (*models.Student, error) {
	var student models.Student
	err := r.db.First(&student, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &student, nil
}

func (r *GormStudentRepository) GetByIDs(ids []uint) ([]*models.Student, error) {
	var students []*models.Student
	if len(ids) == 0 {
		return students, nil
	}
	err := r.db.Where("id IN ?", ids).Find(&students).Error
	return students, err
}

func (r *GormStudentRepository) GetAllActive() ([]*models.Student, error) {
	var students []*models.Student
	err := r.db.Where("active = ?", true).Order("name ASC").Find(&students).Error
	return students, err
}
