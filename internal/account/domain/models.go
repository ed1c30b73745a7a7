// Package domain contains persistence models for user accounts and
// payment methods. The subscription core only reads these; account
// lifecycle itself is owned by the outer platform.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// UserRole represents the access level of an account.
type UserRole string

const (
	UserRoleVisitor UserRole = "visitor"
	UserRoleEditor  UserRole = "editor"
	UserRoleAdmin   UserRole = "admin"
)

// UserStatus represents account standing.
type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
	UserStatusDeleted   UserStatus = "deleted"
)

// User is the account identity consumed by ownership and permission checks.
type User struct {
	ID          snowflake.ID `gorm:"primaryKey"`
	Email       string       `gorm:"type:text;not null;uniqueIndex"`
	DisplayName string       `gorm:"type:text;not null"`
	Role        UserRole     `gorm:"type:text;not null;default:'visitor'"`
	Status      UserStatus   `gorm:"type:text;not null;default:'active'"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (User) TableName() string { return "users" }

// PaymentMethod is a stored payment instrument. The core only checks
// ownership; capture flows live with the payment provider.
type PaymentMethod struct {
	ID        snowflake.ID `gorm:"primaryKey"`
	UserID    snowflake.ID `gorm:"not null;index"`
	Type      string       `gorm:"type:text;not null"`
	Brand     *string      `gorm:"type:text"`
	Last4     *string      `gorm:"type:text"`
	IsDefault bool         `gorm:"not null;default:false"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (PaymentMethod) TableName() string { return "payment_methods" }
