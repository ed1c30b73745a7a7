package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	// Increment applies the delta in place with a single UPDATE.
	// Returns false when no row exists yet for the period.
	Increment(ctx context.Context, db *gorm.DB, userID snowflake.ID, year, month int, delta Delta, now time.Time) (bool, error)

	Insert(ctx context.Context, db *gorm.DB, entry *Entry) error
	FindByUserPeriod(ctx context.Context, db *gorm.DB, userID snowflake.ID, year, month int) (*Entry, error)
	ListByUserYear(ctx context.Context, db *gorm.DB, userID snowflake.ID, year int) ([]Entry, error)
	ListHistory(ctx context.Context, db *gorm.DB, userID snowflake.ID, limit int) ([]Entry, error)

	// SumByPlan totals counters over entries whose period key
	// (year*100+month) falls in [fromKey, toKey], restricted to users
	// currently on the given plan.
	SumByPlan(ctx context.Context, db *gorm.DB, planID string, fromKey, toKey int) (*Totals, error)
}
