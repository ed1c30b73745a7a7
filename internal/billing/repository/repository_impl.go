package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	billingdomain "github.com/tuanemuy/kissa/internal/billing/domain"
	"github.com/tuanemuy/kissa/pkg/db/option"
	pkgrepository "github.com/tuanemuy/kissa/pkg/repository"
	"gorm.io/gorm"
)

const billingColumns = `id, user_id, subscription_id, payment_method_id, amount, currency, status,
	 period_start, period_end, paid_at, failed_at, refunded_at, failure_reason, invoice_url,
	 metadata, created_at, updated_at`

type repo struct{}

func Provide() billingdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, record *billingdomain.BillingRecord) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO billing_records (
			id, user_id, subscription_id, payment_method_id, amount, currency, status,
			period_start, period_end, paid_at, failed_at, refunded_at, failure_reason,
			invoice_url, metadata, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID,
		record.UserID,
		record.SubscriptionID,
		record.PaymentMethodID,
		record.Amount,
		record.Currency,
		record.Status,
		record.PeriodStart,
		record.PeriodEnd,
		record.PaidAt,
		record.FailedAt,
		record.RefundedAt,
		record.FailureReason,
		record.InvoiceURL,
		record.Metadata,
		record.CreatedAt,
		record.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*billingdomain.BillingRecord, error) {
	var record billingdomain.BillingRecord
	err := db.WithContext(ctx).Raw(
		`SELECT `+billingColumns+` FROM billing_records WHERE id = ?`,
		id,
	).Scan(&record).Error
	if err != nil {
		return nil, err
	}
	if record.ID == 0 {
		return nil, nil
	}
	return &record, nil
}

func (r *repo) FindByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*billingdomain.BillingRecord, error) {
	var record billingdomain.BillingRecord
	err := db.WithContext(ctx).Raw(
		`SELECT `+billingColumns+` FROM billing_records WHERE id = ? FOR UPDATE`,
		id,
	).Scan(&record).Error
	if err != nil {
		return nil, err
	}
	if record.ID == 0 {
		return nil, nil
	}
	return &record, nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, record *billingdomain.BillingRecord) error {
	return db.WithContext(ctx).Exec(
		`UPDATE billing_records
		 SET status = ?, paid_at = ?, failed_at = ?, refunded_at = ?, failure_reason = ?,
		     invoice_url = ?, updated_at = ?
		 WHERE id = ?`,
		record.Status,
		record.PaidAt,
		record.FailedAt,
		record.RefundedAt,
		record.FailureReason,
		record.InvoiceURL,
		record.UpdatedAt,
		record.ID,
	).Error
}

func (r *repo) ListByUserID(ctx context.Context, db *gorm.DB, userID snowflake.ID, status *billingdomain.Status, limit int) ([]billingdomain.BillingRecord, error) {
	opts := []option.QueryOption{
		option.ApplyOperator(option.Condition{Field: "user_id", Operator: option.EQ, Value: userID}),
		option.WithSortBy("created_at", "desc"),
		option.WithLimit(limit),
	}
	if status != nil {
		opts = append(opts, option.ApplyOperator(option.Condition{Field: "status", Operator: option.EQ, Value: *status}))
	}

	rows, err := pkgrepository.ProvideStore[billingdomain.BillingRecord](db).Find(ctx, &billingdomain.BillingRecord{}, opts...)
	if err != nil {
		return nil, err
	}

	records := make([]billingdomain.BillingRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, *row)
	}
	return records, nil
}
