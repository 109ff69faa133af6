package models

import (
	"time"

	"studio-schedule-bot/pkg/dates"
)

// Booking types a credit unit can be spent on.
const (
	BookingReagendamento = "reagendamento" // one-off move to another slot/date
	BookingAulaExtra     = "aula_extra"    // extra class on top of the enrollment
)

// MakeupCredit is a grant of N independently redeemable class units, each
// addressable by ordinal 0..Quantity-1, all sharing one validity date and
// an optional modality scope. QuantityUsed only ever changes together with
// the CreditUsage rows that occupy the ordinals.
type MakeupCredit struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	StudentID    uint      `gorm:"not null;index" json:"student_id"`
	Quantity     int       `gorm:"not null;check:quantity >= 1" json:"quantity"`
	QuantityUsed int       `gorm:"not null;default:0" json:"quantity_used"`
	ModalityID   *uint     `gorm:"index" json:"modality_id,omitempty"` // nil means any modality
	Reason       string    `gorm:"size:200" json:"reason"`
	ValidUntil   string    `gorm:"size:10;not null" json:"valid_until"` // YYYY-MM-DD
	GrantedBy    int64     `gorm:"not null" json:"granted_by"`
	Active       bool      `gorm:"not null;default:true;index" json:"active"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Usages []CreditUsage `gorm:"foreignKey:CreditID" json:"usages"`
}

func (MakeupCredit) TableName() string {
	return "makeup_credits"
}

// Available returns how many units remain redeemable.
func (c *MakeupCredit) Available() int {
	return c.Quantity - c.QuantityUsed
}

// Expired reports whether the credit is no longer redeemable. The validity
// date itself already counts as expired; the last redeemable day is the one
// before it.
func (c *MakeupCredit) Expired(now time.Time) bool {
	return c.ValidUntil <= dates.ToISO(now)
}

func (c *MakeupCredit) IsValid() bool {
	if c.StudentID == 0 || c.Quantity < 1 {
		return false
	}
	if c.QuantityUsed < 0 || c.QuantityUsed > c.Quantity {
		return false
	}
	return dates.IsISO(c.ValidUntil)
}

// CreditUsage binds one credit unit (by ordinal) to a concrete booking.
// Deleting a usage is the only way QuantityUsed decreases.
type CreditUsage struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CreditID    uint      `gorm:"not null;uniqueIndex:idx_credit_ordinal" json:"credit_id"`
	Ordinal     int       `gorm:"not null;uniqueIndex:idx_credit_ordinal" json:"ordinal"`
	StudentID   uint      `gorm:"not null;index" json:"student_id"`
	BookingID   uint      `gorm:"not null;index" json:"booking_id"`
	BookingType string    `gorm:"size:20;not null" json:"booking_type"`
	Observation string    `gorm:"size:200" json:"observation"`
	UsedAt      time.Time `gorm:"not null" json:"used_at"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (CreditUsage) TableName() string {
	return "credit_usages"
}
