// Package domain contains the subscription record and its lifecycle
// contracts. One subscription row exists per user for the lifetime of the
// account; cancellation is a status change, never a delete.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/tuanemuy/kissa/internal/plan"
	"gorm.io/datatypes"
)

// Status represents lifecycle states for a subscription. The absence of a
// row is the implicit "none" state.
type Status string

const (
	StatusTrialing Status = "TRIALING"
	StatusActive   Status = "ACTIVE"
	StatusExpired  Status = "EXPIRED"
	StatusCanceled Status = "CANCELED"
)

// Subscription captures a user's plan agreement and current billing period.
type Subscription struct {
	ID                 snowflake.ID      `gorm:"primaryKey"`
	UserID             snowflake.ID      `gorm:"not null;uniqueIndex"`
	Plan               plan.Plan         `gorm:"type:text;not null"`
	Status             Status            `gorm:"type:text;not null"`
	CurrentPeriodStart time.Time         `gorm:"not null"`
	CurrentPeriodEnd   time.Time         `gorm:"not null"`
	CancelAtPeriodEnd  bool              `gorm:"not null;default:false"`
	CanceledAt         *time.Time        `gorm:""`
	Metadata           datatypes.JSONMap `gorm:"type:jsonb"`
	CreatedAt          time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt          time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Subscription) TableName() string { return "subscriptions" }
