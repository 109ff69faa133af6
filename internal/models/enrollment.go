package models

import "time"

// Pause states for an enrollment. A paused student keeps the enrollment row
// but stops counting against attendance; the freed seat may be taken by a
// substitute. The three paused variants are mutually exclusive, which is why
// they live in a single field instead of three booleans.
const (
	PauseNone       = "none"
	PauseFrozen     = "frozen"
	PauseAbsent     = "absent"
	PauseWaitlisted = "waitlisted"
)

// Enrollment links a student to a recurring slot. When it stands in for a
// paused student's seat, ReplacesEnrollmentID points at the paused
// enrollment; at most one active substitute may reference a given
// enrollment at a time.
type Enrollment struct {
	ID                   uint      `gorm:"primaryKey" json:"id"`
	StudentID            uint      `gorm:"not null;index" json:"student_id"`
	SlotID               uint      `gorm:"not null;index" json:"slot_id"`
	Active               bool      `gorm:"not null;default:true;index" json:"active"`
	PauseState           string    `gorm:"size:12;not null;default:'none'" json:"pause_state"`
	ReplacesEnrollmentID *uint     `gorm:"index" json:"replaces_enrollment_id,omitempty"`
	CreatedAt            time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Student Student       `gorm:"foreignKey:StudentID" json:"student"`
	Slot    RecurringSlot `gorm:"foreignKey:SlotID" json:"slot"`
}

func (Enrollment) TableName() string {
	return "enrollments"
}

// IsPaused reports whether the enrollment is in any paused state.
func (e *Enrollment) IsPaused() bool {
	return e.PauseState != "" && e.PauseState != PauseNone
}

// IsSubstitute reports whether this enrollment occupies another one's seat.
func (e *Enrollment) IsSubstitute() bool {
	return e.ReplacesEnrollmentID != nil
}

// ValidPauseState reports whether s is a known pause state.
func ValidPauseState(s string) bool {
	switch s {
	case PauseNone, PauseFrozen, PauseAbsent, PauseWaitlisted:
		return true
	default:
		return false
	}
}

func (e *Enrollment) IsValid() bool {
	if e.StudentID == 0 || e.SlotID == 0 {
		return false
	}
	return ValidPauseState(e.PauseState)
}
