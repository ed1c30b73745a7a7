package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
)

type CreateRequest struct {
	UserID          snowflake.ID
	SubscriptionID  snowflake.ID
	PaymentMethodID *snowflake.ID
	Amount          float64
	Currency        string
	PeriodStart     time.Time
	PeriodEnd       time.Time
}

// UpdateStatusRequest is the user-scoped transition: the record must
// belong to the caller.
type UpdateStatusRequest struct {
	UserID        snowflake.ID
	RecordID      snowflake.ID
	Status        Status
	FailureReason *string
	InvoiceURL    *string
}

// ProcessPaymentRequest is the admin override path used by back-office
// reconciliation; ownership is replaced by the admin check.
type ProcessPaymentRequest struct {
	AdminUserID   snowflake.ID
	RecordID      snowflake.ID
	Status        Status
	FailureReason *string
	InvoiceURL    *string
}

type ListRequest struct {
	UserID snowflake.ID
	Status *Status
	// Limit defaults to 20, capped at 100.
	Limit int
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (BillingRecord, error)
	UpdateStatus(ctx context.Context, req UpdateStatusRequest) (BillingRecord, error)
	ProcessPayment(ctx context.Context, req ProcessPaymentRequest) (BillingRecord, error)
	List(ctx context.Context, req ListRequest) ([]BillingRecord, error)
}

var (
	ErrBillingRecordNotFound = errors.New("billing_record_not_found")
	ErrForbiddenOwnership    = errors.New("forbidden_ownership")
	ErrInvalidTransition     = errors.New("invalid_transition")
	ErrInvalidStatus         = errors.New("invalid_status")
	ErrInvalidAmount         = errors.New("invalid_amount")
	ErrInvalidCurrency       = errors.New("invalid_currency")
	ErrInvalidPeriod         = errors.New("invalid_period")
)
