package models

import (
	"time"

	"studio-schedule-bot/pkg/dates"
)

// Absence notice statuses.
const (
	NoticePending   = "pending"
	NoticeConfirmed = "confirmed"
)

// AbsenceNotice records a student's advance warning of an upcoming absence.
// It is confirmed only when the class is actually submitted with that
// student marked absent and flagged as notified; the confirmation is what
// unlocks makeup eligibility. Notices never expire on their own; callers
// evaluate eligibility windows against ConfirmedAt.
type AbsenceNotice struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	StudentID   uint       `gorm:"not null;index:idx_notice_key" json:"student_id"`
	SlotID      uint       `gorm:"not null;index:idx_notice_key" json:"slot_id"`
	Date        string     `gorm:"size:10;not null;index:idx_notice_key" json:"date"` // YYYY-MM-DD
	Status      string     `gorm:"size:10;not null;default:'pending';index" json:"status"`
	ConfirmedAt *time.Time `json:"confirmed_at,omitempty"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (AbsenceNotice) TableName() string {
	return "absence_notices"
}

func (n *AbsenceNotice) IsValid() bool {
	if n.StudentID == 0 || n.SlotID == 0 || !dates.IsISO(n.Date) {
		return false
	}
	return n.Status == NoticePending || n.Status == NoticeConfirmed
}
