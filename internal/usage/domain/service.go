package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/tuanemuy/kissa/internal/plan"
)

const (
	// MinYear is the earliest year the ledger accepts.
	MinYear = 2000

	// DefaultHistoryMonths is the History window when the caller
	// does not pass a limit.
	DefaultHistoryMonths = 12

	// MaxHistoryMonths caps the History window.
	MaxHistoryMonths = 60
)

var (
	ErrInvalidMonth  = errors.New("invalid_month")
	ErrInvalidYear   = errors.New("invalid_year")
	ErrInvalidEvent  = errors.New("invalid_event")
	ErrNegativeDelta = errors.New("negative_delta")
	ErrInvalidRange  = errors.New("invalid_range")
)

type RecordRequest struct {
	UserID snowflake.ID `json:"user_id"`
	Delta  Delta        `json:"delta"`
}

type AutoRecordRequest struct {
	UserID snowflake.ID `json:"user_id"`
	Event  EventType    `json:"event"`

	// SizeKB is only read for EventImageUploaded.
	SizeKB float64 `json:"size_kb"`
}

type GetMonthRequest struct {
	UserID snowflake.ID `json:"user_id"`
	Year   int          `json:"year"`
	Month  int          `json:"month"`
}

type HistoryRequest struct {
	UserID snowflake.ID `json:"user_id"`
	Limit  int          `json:"limit"`
}

type AggregateRequest struct {
	AdminUserID snowflake.ID `json:"admin_user_id"`
	Plan        plan.Plan    `json:"plan"`
	From        time.Time    `json:"from"`
	To          time.Time    `json:"to"`
}

// Aggregate is the admin-facing usage rollup for one plan tier over a
// month range.
type Aggregate struct {
	Plan   plan.Plan `json:"plan"`
	From   time.Time `json:"from"`
	To     time.Time `json:"to"`
	Totals Totals    `json:"totals"`
}

type Service interface {
	// Record atomically adds a delta to the caller's current-month
	// entry, creating the row on first use within the month.
	Record(ctx context.Context, req RecordRequest) (*Entry, error)

	// AutoRecord translates a platform event into a delta and records
	// it. Failures are logged and counted, never returned; a usage
	// write must not fail the action that triggered it.
	AutoRecord(ctx context.Context, req AutoRecordRequest)

	GetCurrentMonth(ctx context.Context, userID snowflake.ID) (*Entry, error)
	GetMonth(ctx context.Context, req GetMonthRequest) (*Entry, error)
	GetYear(ctx context.Context, userID snowflake.ID, year int) ([]Entry, error)
	History(ctx context.Context, req HistoryRequest) ([]Entry, error)

	// AggregateByPlan sums usage across every user subscribed to the
	// given plan. Admin only.
	AggregateByPlan(ctx context.Context, req AggregateRequest) (*Aggregate, error)
}
