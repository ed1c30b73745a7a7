package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound          = errors.New("user_not_found")
	ErrPaymentMethodNotFound = errors.New("payment_method_not_found")
)

type Repository interface {
	InsertUser(ctx context.Context, db *gorm.DB, user *User) error
	FindUserByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*User, error)
	InsertPaymentMethod(ctx context.Context, db *gorm.DB, method *PaymentMethod) error
	FindPaymentMethodByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*PaymentMethod, error)
}
