package models

import "time"

// Modality is a class type offered by the studio (pilates, yoga, ...).
type Modality struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:80;not null;uniqueIndex" json:"name"`
	Active    bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Modality) TableName() string {
	return "modalities"
}

// Teacher is a staff member that can be assigned to slots.
type Teacher struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:120;not null" json:"name"`
	ChatID    *int64    `gorm:"uniqueIndex" json:"chat_id,omitempty"` // Telegram chat, when the teacher uses the bot
	Active    bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Teacher) TableName() string {
	return "teachers"
}
