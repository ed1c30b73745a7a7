// Package domain contains billing history records. A record enters as
// PENDING and moves exactly once into a terminal state; refund-after-paid
// is modeled as a fresh record, never a revisit.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Status represents the settlement state of a billing record.
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusPaid     Status = "PAID"
	StatusFailed   Status = "FAILED"
	StatusRefunded Status = "REFUNDED"
	StatusCanceled Status = "CANCELED"
)

// IsTerminal reports whether s permits no further transitions.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusPaid, StatusFailed, StatusRefunded, StatusCanceled:
		return true
	default:
		return false
	}
}

// BillingRecord is one charge attempt against a subscription period.
type BillingRecord struct {
	ID              snowflake.ID      `gorm:"primaryKey"`
	UserID          snowflake.ID      `gorm:"not null;index"`
	SubscriptionID  snowflake.ID      `gorm:"not null;index"`
	PaymentMethodID *snowflake.ID     `gorm:"index"`
	Amount          float64           `gorm:"not null"`
	Currency        string            `gorm:"type:text;not null"`
	Status          Status            `gorm:"type:text;not null;default:'PENDING'"`
	PeriodStart     time.Time         `gorm:"not null"`
	PeriodEnd       time.Time         `gorm:"not null"`
	PaidAt          *time.Time        `gorm:""`
	FailedAt        *time.Time        `gorm:""`
	RefundedAt      *time.Time        `gorm:""`
	FailureReason   *string           `gorm:"type:text"`
	InvoiceURL      *string           `gorm:"type:text"`
	Metadata        datatypes.JSONMap `gorm:"type:jsonb"`
	CreatedAt       time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt       time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (BillingRecord) TableName() string { return "billing_records" }
