package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	// GetUserLimits resolves the caller's effective plan limits and
	// evaluates the current month's usage against them. Users with no
	// subscription row evaluate on the free tier.
	GetUserLimits(ctx context.Context, userID snowflake.ID) (*Report, error)
}
