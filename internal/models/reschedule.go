package models

import (
	"time"

	"studio-schedule-bot/pkg/dates"
)

// Request statuses shared by both reschedule variants.
const (
	RequestPendente  = "pendente"
	RequestAprovado  = "aprovado"
	RequestRejeitado = "rejeitado"
)

// Outcome statuses for an approved temporary reschedule.
const (
	OutcomePendente       = "pendente"
	OutcomeRealizado      = "realizado"
	OutcomeFaltaRegistrada = "falta_registrada"
)

// RescheduleRequest is a one-off temporary move: the student skips the
// original occurrence and appears as a guest in the target occurrence's
// roster. Approval does not touch the enrollment.
type RescheduleRequest struct {
	ID              uint   `gorm:"primaryKey" json:"id"`
	StudentID       uint   `gorm:"not null;index" json:"student_id"`
	EnrollmentID    uint   `gorm:"not null;index" json:"enrollment_id"`
	OriginalSlotID  uint   `gorm:"not null" json:"original_slot_id"`
	OriginalDate    string `gorm:"size:10;not null" json:"original_date"` // YYYY-MM-DD
	NewSlotID       uint   `gorm:"not null;index:idx_reschedule_target" json:"new_slot_id"`
	NewDate         string `gorm:"size:10;not null;index:idx_reschedule_target" json:"new_date"`
	Reason          string `gorm:"size:200" json:"reason"`
	Status          string `gorm:"size:10;not null;default:'pendente';index" json:"status"`
	RejectReason    string `gorm:"size:200" json:"reject_reason"`
	AbsenceNoticeID *uint  `gorm:"index" json:"absence_notice_id,omitempty"` // set when justified by a confirmed notice
	CreditUsageID   *uint  `gorm:"index" json:"credit_usage_id,omitempty"`   // set when paid with a makeup-credit unit

	DecidedAt *time.Time `json:"decided_at,omitempty"`
	DecidedBy *int64     `json:"decided_by,omitempty"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	Student Student       `gorm:"foreignKey:StudentID" json:"student"`
	NewSlot RecurringSlot `gorm:"foreignKey:NewSlotID" json:"new_slot"`
}

func (RescheduleRequest) TableName() string {
	return "reschedule_requests"
}

func (r *RescheduleRequest) IsValid() bool {
	if r.StudentID == 0 || r.EnrollmentID == 0 || r.OriginalSlotID == 0 || r.NewSlotID == 0 {
		return false
	}
	if !dates.IsISO(r.OriginalDate) || !dates.IsISO(r.NewDate) {
		return false
	}
	return ValidRequestStatus(r.Status)
}

// IsPendente reports whether the request can still be decided.
func (r *RescheduleRequest) IsPendente() bool {
	return r.Status == RequestPendente
}

// RescheduleOutcome tracks what actually happened at the target occurrence
// of an approved temporary reschedule. It stays pendente until that class
// is submitted.
type RescheduleOutcome struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	RequestID  uint       `gorm:"not null;uniqueIndex" json:"request_id"`
	Status     string     `gorm:"size:20;not null;default:'pendente'" json:"status"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
	CreatedAt  time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (RescheduleOutcome) TableName() string {
	return "reschedule_outcomes"
}

// PermanentChangeRequest asks to move the student's standing enrollment to
// a different recurring slot. Approval mutates the enrollment; rejection
// leaves it untouched.
type PermanentChangeRequest struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	StudentID     uint   `gorm:"not null;index" json:"student_id"`
	EnrollmentID  uint   `gorm:"not null;index" json:"enrollment_id"`
	CurrentSlotID uint   `gorm:"not null" json:"current_slot_id"`
	NewSlotID     uint   `gorm:"not null" json:"new_slot_id"`
	Reason        string `gorm:"size:200" json:"reason"`
	Status        string `gorm:"size:10;not null;default:'pendente';index" json:"status"`
	RejectReason  string `gorm:"size:200" json:"reject_reason"`

	DecidedAt *time.Time `json:"decided_at,omitempty"`
	DecidedBy *int64     `json:"decided_by,omitempty"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (PermanentChangeRequest) TableName() string {
	return "permanent_change_requests"
}

func (r *PermanentChangeRequest) IsValid() bool {
	if r.StudentID == 0 || r.EnrollmentID == 0 || r.CurrentSlotID == 0 || r.NewSlotID == 0 {
		return false
	}
	if r.CurrentSlotID == r.NewSlotID {
		return false
	}
	return ValidRequestStatus(r.Status)
}

func (r *PermanentChangeRequest) IsPendente() bool {
	return r.Status == RequestPendente
}

// ValidRequestStatus reports whether s is a known request status.
func ValidRequestStatus(s string) bool {
	switch s {
	case RequestPendente, RequestAprovado, RequestRejeitado:
		return true
	default:
		return false
	}
}
