package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, record *BillingRecord) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*BillingRecord, error)
	FindByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*BillingRecord, error)
	Update(ctx context.Context, db *gorm.DB, record *BillingRecord) error
	ListByUserID(ctx context.Context, db *gorm.DB, userID snowflake.ID, status *Status, limit int) ([]BillingRecord, error)
}
