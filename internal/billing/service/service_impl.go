package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	accountdomain "github.com/tuanemuy/kissa/internal/account/domain"
	"github.com/tuanemuy/kissa/internal/authorization"
	billingdomain "github.com/tuanemuy/kissa/internal/billing/domain"
	"github.com/tuanemuy/kissa/internal/clock"
	"github.com/tuanemuy/kissa/internal/observability/metrics"
	subscriptiondomain "github.com/tuanemuy/kissa/internal/subscription/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	genID            *snowflake.Node
	clock            clock.Clock
	repo             billingdomain.Repository
	subscriptionRepo subscriptiondomain.Repository
	accountRepo      accountdomain.Repository
	guard            *authorization.Guard
	metrics          *metrics.Metrics
}

type ServiceParam struct {
	fx.In

	DB               *gorm.DB
	Log              *zap.Logger
	GenID            *snowflake.Node
	Clock            clock.Clock
	Repo             billingdomain.Repository
	SubscriptionRepo subscriptiondomain.Repository
	AccountRepo      accountdomain.Repository
	Guard            *authorization.Guard
	Metrics          *metrics.Metrics `optional:"true"`
}

func NewService(p ServiceParam) billingdomain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("billing.service"),

		genID:            p.GenID,
		clock:            p.Clock,
		repo:             p.Repo,
		subscriptionRepo: p.SubscriptionRepo,
		accountRepo:      p.AccountRepo,
		guard:            p.Guard,
		metrics:          p.Metrics,
	}
}

// Create opens a PENDING record for a charge attempt against the user's
// subscription period.
func (s *Service) Create(ctx context.Context, req billingdomain.CreateRequest) (billingdomain.BillingRecord, error) {
	if req.Amount <= 0 {
		return billingdomain.BillingRecord{}, billingdomain.ErrInvalidAmount
	}
	if len(req.Currency) != 3 {
		return billingdomain.BillingRecord{}, billingdomain.ErrInvalidCurrency
	}
	if !req.PeriodEnd.After(req.PeriodStart) {
		return billingdomain.BillingRecord{}, billingdomain.ErrInvalidPeriod
	}

	if _, err := s.guard.RequireActiveUser(ctx, req.UserID); err != nil {
		return billingdomain.BillingRecord{}, err
	}

	subscription, err := s.subscriptionRepo.FindByID(ctx, s.db, req.SubscriptionID)
	if err != nil {
		return billingdomain.BillingRecord{}, err
	}
	if subscription == nil {
		return billingdomain.BillingRecord{}, subscriptiondomain.ErrSubscriptionNotFound
	}
	if subscription.UserID != req.UserID {
		return billingdomain.BillingRecord{}, billingdomain.ErrForbiddenOwnership
	}

	if req.PaymentMethodID != nil {
		method, err := s.accountRepo.FindPaymentMethodByID(ctx, s.db, *req.PaymentMethodID)
		if err != nil {
			return billingdomain.BillingRecord{}, err
		}
		if method == nil {
			return billingdomain.BillingRecord{}, accountdomain.ErrPaymentMethodNotFound
		}
		if method.UserID != req.UserID {
			return billingdomain.BillingRecord{}, billingdomain.ErrForbiddenOwnership
		}
	}

	now := s.clock.Now()
	record := billingdomain.BillingRecord{
		ID:              s.genID.Generate(),
		UserID:          req.UserID,
		SubscriptionID:  req.SubscriptionID,
		PaymentMethodID: req.PaymentMethodID,
		Amount:          req.Amount,
		Currency:        req.Currency,
		Status:          billingdomain.StatusPending,
		PeriodStart:     req.PeriodStart,
		PeriodEnd:       req.PeriodEnd,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.repo.Insert(ctx, tx, &record)
	}); err != nil {
		return billingdomain.BillingRecord{}, err
	}

	s.metrics.RecordBillingTransition(ctx, string(billingdomain.StatusPending))
	s.log.Info("billing record created",
		zap.String("user_id", req.UserID.String()),
		zap.String("record_id", record.ID.String()),
		zap.Float64("amount", req.Amount),
		zap.String("currency", req.Currency),
	)
	return record, nil
}

// UpdateStatus moves a caller-owned record out of PENDING. Terminal states
// are one-way; a second transition is rejected.
func (s *Service) UpdateStatus(ctx context.Context, req billingdomain.UpdateStatusRequest) (billingdomain.BillingRecord, error) {
	return s.transition(ctx, req.RecordID, req.Status, req.FailureReason, req.InvoiceURL, func(record *billingdomain.BillingRecord) error {
		if record.UserID != req.UserID {
			return billingdomain.ErrForbiddenOwnership
		}
		return nil
	})
}

// ProcessPayment is the admin override: ownership is skipped in favor of
// the admin-role check, for webhook-driven reconciliation.
func (s *Service) ProcessPayment(ctx context.Context, req billingdomain.ProcessPaymentRequest) (billingdomain.BillingRecord, error) {
	if _, err := s.guard.RequireAdmin(ctx, req.AdminUserID); err != nil {
		return billingdomain.BillingRecord{}, err
	}
	return s.transition(ctx, req.RecordID, req.Status, req.FailureReason, req.InvoiceURL, func(*billingdomain.BillingRecord) error {
		return nil
	})
}

func (s *Service) List(ctx context.Context, req billingdomain.ListRequest) ([]billingdomain.BillingRecord, error) {
	if req.Status != nil && !req.Status.IsTerminal() && *req.Status != billingdomain.StatusPending {
		return nil, billingdomain.ErrInvalidStatus
	}

	limit := req.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	return s.repo.ListByUserID(ctx, s.db, req.UserID, req.Status, limit)
}

func (s *Service) transition(
	ctx context.Context,
	recordID snowflake.ID,
	target billingdomain.Status,
	failureReason, invoiceURL *string,
	authorize func(*billingdomain.BillingRecord) error,
) (billingdomain.BillingRecord, error) {
	if !target.IsTerminal() {
		return billingdomain.BillingRecord{}, billingdomain.ErrInvalidStatus
	}

	var updated billingdomain.BillingRecord
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		record, err := s.repo.FindByIDForUpdate(ctx, tx, recordID)
		if err != nil {
			return err
		}
		if record == nil {
			return billingdomain.ErrBillingRecordNotFound
		}
		if err := authorize(record); err != nil {
			return err
		}
		if record.Status != billingdomain.StatusPending {
			return billingdomain.ErrInvalidTransition
		}

		now := s.clock.Now()
		switch target {
		case billingdomain.StatusPaid:
			record.PaidAt = &now
		case billingdomain.StatusFailed:
			record.FailedAt = &now
			record.FailureReason = failureReason
		case billingdomain.StatusRefunded:
			record.RefundedAt = &now
		case billingdomain.StatusCanceled:
			// no timestamp beyond updated_at
		}
		if invoiceURL != nil {
			record.InvoiceURL = invoiceURL
		}
		record.Status = target
		record.UpdatedAt = now

		if err := s.repo.Update(ctx, tx, record); err != nil {
			return err
		}
		updated = *record
		return nil
	})
	if err != nil {
		return billingdomain.BillingRecord{}, err
	}

	s.metrics.RecordBillingTransition(ctx, string(target))
	return updated, nil
}
