package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/tuanemuy/kissa/internal/plan"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, subscription *Subscription) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Subscription, error)
	FindByUserID(ctx context.Context, db *gorm.DB, userID snowflake.ID) (*Subscription, error)
	FindByUserIDForUpdate(ctx context.Context, db *gorm.DB, userID snowflake.ID) (*Subscription, error)
	Update(ctx context.Context, db *gorm.DB, subscription *Subscription) error
	ListByPlan(ctx context.Context, db *gorm.DB, p plan.Plan) ([]Subscription, error)
}
