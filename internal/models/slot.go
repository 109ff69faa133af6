package models

import (
	"time"

	"studio-schedule-bot/pkg/dates"
)

// RecurringSlot is a weekly class time: day of week plus a local time range.
// Deactivating a slot stops future occurrence generation; historic
// attendance records keep pointing at it.
type RecurringSlot struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Weekday    int       `gorm:"not null;check:weekday >= 0 AND weekday <= 6;index" json:"weekday"` // 0=Sunday..6=Saturday
	StartTime  string    `gorm:"size:5;not null" json:"start_time"`                                 // "HH:MM"
	EndTime    string    `gorm:"size:5;not null" json:"end_time"`
	ModalityID uint      `gorm:"not null;index" json:"modality_id"`
	TeacherID  *uint     `gorm:"index" json:"teacher_id"` // nil means "no teacher assigned"
	Active     bool      `gorm:"not null;default:true;index" json:"active"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Modality Modality `gorm:"foreignKey:ModalityID" json:"modality"`
	Teacher  *Teacher `gorm:"foreignKey:TeacherID" json:"teacher,omitempty"`
}

func (RecurringSlot) TableName() string {
	return "recurring_slots"
}

// IsValid checks the slot definition itself, not its references.
func (s *RecurringSlot) IsValid() bool {
	if s.Weekday < 0 || s.Weekday > 6 {
		return false
	}
	if !dates.ValidClock(s.StartTime) || !dates.ValidClock(s.EndTime) {
		return false
	}
	if s.ModalityID == 0 {
		return false
	}
	return true
}
