package models

import "time"

// Holiday sources.
const (
	HolidaySourceNational = "national"
	HolidaySourceCustom   = "custom"
)

// Holiday is a date on which no class occurs. National holidays are seeded
// from a fixed table; custom rows are studio-specific closures.
type Holiday struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Date      string    `gorm:"size:10;not null;uniqueIndex" json:"date"` // YYYY-MM-DD
	Name      string    `gorm:"size:120;not null" json:"name"`
	Source    string    `gorm:"size:10;not null;default:'custom'" json:"source"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Holiday) TableName() string {
	return "holidays"
}
