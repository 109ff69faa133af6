package service

import (
	"errors"

	"studio-schedule-bot/internal/models"
	"studio-schedule-bot/internal/repository"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// CreateSlotInput defines a new weekly class time.
type CreateSlotInput struct {
	Weekday    int    `validate:"min=0,max=6"`
	StartTime  string `validate:"required"`
	EndTime    string `validate:"required"`
	ModalityID uint   `validate:"required"`
	TeacherID  *uint
}

// ScheduleService manages the catalog: modalities, teachers and the weekly
// slot grid. Modalities and teachers are plain rows without repository
// ceremony.
type ScheduleService struct {
	db       *gorm.DB
	slotRepo repository.SlotRepository
	validate *validator.Validate
	logger   *logrus.Logger
}

func NewScheduleService(db *gorm.DB, slotRepo repository.SlotRepository) *ScheduleService {
	return &ScheduleService{
		db:       db,
		slotRepo: slotRepo,
		validate: validator.New(),
		logger:   logrus.New(),
	}
}

func (s *ScheduleService) CreateModality(name string) (*models.Modality, error) {
	if name == "" {
		return nil, validationErrorf("modality name must not be empty")
	}
	modality := &models.Modality{Name: name, Active: true}
	if err := s.db.Create(modality).Error; err != nil {
		return nil, err
	}
	s.logger.WithField("name", name).Info("Modality created")
	return modality, nil
}

func (s *ScheduleService) CreateTeacher(name string, chatID *int64) (*models.Teacher, error) {
	if name == "" {
		return nil, validationErrorf("teacher name must not be empty")
	}
	teacher := &models.Teacher{Name: name, ChatID: chatID, Active: true}
	if err := s.db.Create(teacher).Error; err != nil {
		return nil, err
	}
	s.logger.WithField("name", name).Info("Teacher created")
	return teacher, nil
}

// TeacherByChatID resolves a Telegram chat to an active teacher, or nil.
func (s *ScheduleService) TeacherByChatID(chatID int64) (*models.Teacher, error) {
	var teacher models.Teacher
	err := s.db.Where("chat_id = ? AND active = ?", chatID, true).First(&teacher).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &teacher, nil
}

func (s *ScheduleService) CreateSlot(input CreateSlotInput) (*models.RecurringSlot, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, &ValidationError{Msg: err.Error()}
	}

	slot := &models.RecurringSlot{
		Weekday:    input.Weekday,
		StartTime:  input.StartTime,
		EndTime:    input.EndTime,
		ModalityID: input.ModalityID,
		TeacherID:  input.TeacherID,
		Active:     true,
	}
	if !slot.IsValid() {
		return nil, validationErrorf("invalid slot definition: weekday %d, %s-%s", input.Weekday, input.StartTime, input.EndTime)
	}

	var modality models.Modality
	if err := s.db.First(&modality, input.ModalityID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if err := s.slotRepo.Create(slot); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"id":      slot.ID,
		"weekday": slot.Weekday,
		"start":   slot.StartTime,
	}).Info("Recurring slot created")
	return slot, nil
}

// UpdateSlotTimes changes a slot's time range. The weekday stays fixed;
// moving a class to another day is a permanent-change request, not an edit.
func (s *ScheduleService) UpdateSlotTimes(slotID uint, startTime, endTime string) (*models.RecurringSlot, error) {
	slot, err := s.slotRepo.GetByID(slotID)
	if err != nil {
		return nil, err
	}
	if slot == nil {
		return nil, ErrNotFound
	}

	slot.StartTime = startTime
	slot.EndTime = endTime
	if !slot.IsValid() {
		return nil, validationErrorf("invalid time range %s-%s", startTime, endTime)
	}

	if err := s.slotRepo.Update(slot); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"id":    slot.ID,
		"start": slot.StartTime,
		"end":   slot.EndTime,
	}).Info("Recurring slot updated")
	return slot, nil
}

// DeactivateSlot stops future occurrence generation. Historic attendance
// records keep their reference.
func (s *ScheduleService) DeactivateSlot(slotID uint) error {
	slot, err := s.slotRepo.GetByID(slotID)
	if err != nil {
		return err
	}
	if slot == nil {
		return ErrNotFound
	}
	return s.slotRepo.Deactivate(slotID)
}

func (s *ScheduleService) ActiveSlots() ([]*models.RecurringSlot, error) {
	return s.slotRepo.GetActive(repository.SlotFilter{})
}

// AllSlots includes deactivated slots, for auditing the full grid.
func (s *ScheduleService) AllSlots() ([]*models.RecurringSlot, error) {
	return s.slotRepo.GetAll()
}
