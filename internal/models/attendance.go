package models

import (
	"time"

	"studio-schedule-bot/pkg/dates"
)

// Attendance record statuses.
const (
	AttendancePending   = "pending"   // placeholder, no real submission yet
	AttendanceSubmitted = "submitted" // first real submission
	AttendanceCorrected = "corrected" // roster amended after submission
)

// AttendanceRecord is the realized instance of a slot on one calendar date.
// At most one live record exists per (slot, date); a pending placeholder is
// deleted whenever a real submission arrives for the same key.
type AttendanceRecord struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	SlotID       uint      `gorm:"not null;index:idx_attendance_key" json:"slot_id"`
	Date         string    `gorm:"size:10;not null;index:idx_attendance_key" json:"date"` // YYYY-MM-DD
	Weekday      int       `gorm:"not null" json:"weekday"`
	ModalityName string    `gorm:"size:80;not null" json:"modality_name"`
	StartTime    string    `gorm:"size:5;not null" json:"start_time"`
	EndTime      string    `gorm:"size:5;not null" json:"end_time"`
	Status       string    `gorm:"size:12;not null;default:'submitted';index" json:"status"`
	SubmittedBy  int64     `gorm:"not null" json:"submitted_by"`
	SubmittedAt  time.Time `gorm:"not null" json:"submitted_at"`

	// Aggregates over the roster. Students paused at submission time are
	// carried in the roster for reference but excluded from the counts.
	TotalActive int `gorm:"not null;default:0" json:"total_active"`
	Presences   int `gorm:"not null;default:0" json:"presences"`
	Absences    int `gorm:"not null;default:0" json:"absences"`
	GuestCount  int `gorm:"not null;default:0" json:"guest_count"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Entries []RosterEntry `gorm:"foreignKey:RecordID" json:"entries"`
}

func (AttendanceRecord) TableName() string {
	return "attendance_records"
}

func (r *AttendanceRecord) IsValid() bool {
	if r.SlotID == 0 || !dates.IsISO(r.Date) {
		return false
	}
	switch r.Status {
	case AttendancePending, AttendanceSubmitted, AttendanceCorrected:
	default:
		return false
	}
	return true
}

// IsSubmitted reports whether the record counts as "done" for
// reconciliation (a pending placeholder does not).
func (r *AttendanceRecord) IsSubmitted() bool {
	return r.Status == AttendanceSubmitted || r.Status == AttendanceCorrected
}

// RecomputeAggregates recalculates the counters from the roster entries.
func (r *AttendanceRecord) RecomputeAggregates() {
	r.TotalActive = 0
	r.Presences = 0
	r.Absences = 0
	r.GuestCount = 0
	for _, e := range r.Entries {
		if e.IsRescheduleGuest {
			r.GuestCount++
		}
		if e.CountsForAttendance() {
			r.TotalActive++
			if e.Present != nil {
				if *e.Present {
					r.Presences++
				} else {
					r.Absences++
				}
			}
		}
	}
}

// RosterEntry is one line of the roster snapshot taken at submission time.
// Regular enrollees and reschedule guests share the row shape; guests carry
// the originating request id.
type RosterEntry struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	RecordID    uint   `gorm:"not null;index" json:"record_id"`
	Position    int    `gorm:"not null" json:"position"`
	StudentID   uint   `gorm:"not null;index" json:"student_id"`
	StudentName string `gorm:"size:120;not null" json:"student_name"`

	// Present is tri-state: nil means the teacher left the student unmarked.
	Present *bool `json:"present"`

	// StatusSnapshot records the enrollment pause state at submission time.
	StatusSnapshot string `gorm:"size:12;not null;default:'none'" json:"status_snapshot"`

	IsRescheduleGuest    bool   `gorm:"not null;default:false" json:"is_reschedule_guest"`
	RescheduleRequestID  *uint  `gorm:"index" json:"reschedule_request_id,omitempty"`
	NotifiedAbsence      bool   `gorm:"not null;default:false" json:"notified_absence"`
	ObservationTag       string `gorm:"size:120" json:"observation_tag"`
}

func (RosterEntry) TableName() string {
	return "roster_entries"
}

// CountsForAttendance reports whether the entry participates in the
// aggregate counts. Paused students are informational only.
func (e *RosterEntry) CountsForAttendance() bool {
	switch e.StatusSnapshot {
	case PauseFrozen, PauseAbsent, PauseWaitlisted:
		return false
	default:
		return true
	}
}
