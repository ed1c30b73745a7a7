package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/tuanemuy/kissa/internal/plan"
)

const (
	// MinPeriodDays and MaxPeriodDays bound every period length and
	// extension accepted by the service.
	MinPeriodDays = 1
	MaxPeriodDays = 365

	// DefaultRenewalDays is the period applied when a renewal does not
	// specify one.
	DefaultRenewalDays = 30
)

type CreateRequest struct {
	UserID snowflake.ID
	Plan   plan.Plan
	// Status defaults to TRIALING when empty.
	Status           Status
	PeriodLengthDays int
}

// UpdateRequest is a partial update; nil fields are left untouched.
// ExtendDays adds to the existing period end, so a single call can switch
// plan and extend runway atomically.
type UpdateRequest struct {
	UserID            snowflake.ID
	Plan              *plan.Plan
	Status            *Status
	CancelAtPeriodEnd *bool
	ExtendDays        *int
}

type CancelRequest struct {
	UserID snowflake.ID
	// Immediate ends access now instead of at period end.
	Immediate bool
}

type RenewRequest struct {
	UserID snowflake.ID
	// PeriodLengthDays defaults to DefaultRenewalDays when zero.
	PeriodLengthDays int
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (Subscription, error)
	Update(ctx context.Context, req UpdateRequest) (Subscription, error)
	Cancel(ctx context.Context, req CancelRequest) (Subscription, error)
	Renew(ctx context.Context, req RenewRequest) (Subscription, error)
	GetByUserID(ctx context.Context, userID snowflake.ID) (Subscription, error)
}

var (
	ErrSubscriptionNotFound        = errors.New("subscription_not_found")
	ErrSubscriptionAlreadyExists   = errors.New("subscription_already_exists")
	ErrSubscriptionAlreadyCanceled = errors.New("subscription_already_canceled")
	ErrInvalidStatus               = errors.New("invalid_status")
	ErrInvalidPeriodLength         = errors.New("invalid_period_length")
	ErrInvalidExtendDays           = errors.New("invalid_extend_days")
)
