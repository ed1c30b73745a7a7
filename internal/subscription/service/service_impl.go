package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/tuanemuy/kissa/internal/authorization"
	"github.com/tuanemuy/kissa/internal/clock"
	"github.com/tuanemuy/kissa/internal/observability/metrics"
	"github.com/tuanemuy/kissa/internal/plan"
	subscriptiondomain "github.com/tuanemuy/kissa/internal/subscription/domain"
	"github.com/tuanemuy/kissa/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	genID   *snowflake.Node
	clock   clock.Clock
	repo    subscriptiondomain.Repository
	guard   *authorization.Guard
	metrics *metrics.Metrics
}

type ServiceParam struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Clock   clock.Clock
	Repo    subscriptiondomain.Repository
	Guard   *authorization.Guard
	Metrics *metrics.Metrics `optional:"true"`
}

func NewService(p ServiceParam) subscriptiondomain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("subscription.service"),

		genID:   p.GenID,
		clock:   p.Clock,
		repo:    p.Repo,
		guard:   p.Guard,
		metrics: p.Metrics,
	}
}

// Create opens the user's lifetime subscription slot. A row in any status,
// expired and canceled included, blocks further creates; revival goes
// through Renew instead.
func (s *Service) Create(ctx context.Context, req subscriptiondomain.CreateRequest) (subscriptiondomain.Subscription, error) {
	if !req.Plan.IsValid() {
		return subscriptiondomain.Subscription{}, plan.ErrInvalidPlan
	}

	status := req.Status
	if status == "" {
		status = subscriptiondomain.StatusTrialing
	}
	if !isValidStatus(status) {
		return subscriptiondomain.Subscription{}, subscriptiondomain.ErrInvalidStatus
	}

	if req.PeriodLengthDays < subscriptiondomain.MinPeriodDays || req.PeriodLengthDays > subscriptiondomain.MaxPeriodDays {
		return subscriptiondomain.Subscription{}, subscriptiondomain.ErrInvalidPeriodLength
	}

	if _, err := s.guard.RequireActiveUser(ctx, req.UserID); err != nil {
		return subscriptiondomain.Subscription{}, err
	}

	existing, err := s.repo.FindByUserID(ctx, s.db, req.UserID)
	if err != nil {
		return subscriptiondomain.Subscription{}, err
	}
	if existing != nil {
		return subscriptiondomain.Subscription{}, subscriptiondomain.ErrSubscriptionAlreadyExists
	}

	now := s.clock.Now()
	subscription := subscriptiondomain.Subscription{
		ID:                 s.genID.Generate(),
		UserID:             req.UserID,
		Plan:               req.Plan,
		Status:             status,
		CurrentPeriodStart: now,
		CurrentPeriodEnd:   now.AddDate(0, 0, req.PeriodLengthDays),
		CancelAtPeriodEnd:  false,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.repo.Insert(ctx, tx, &subscription)
	}); err != nil {
		// The unique user index resolves concurrent create races: the
		// loser observes the existing slot.
		if db.IsDuplicateKeyErr(err) {
			return subscriptiondomain.Subscription{}, subscriptiondomain.ErrSubscriptionAlreadyExists
		}
		return subscriptiondomain.Subscription{}, err
	}

	s.metrics.RecordSubscriptionTransition(ctx, "create", string(status))
	s.log.Info("subscription created",
		zap.String("user_id", req.UserID.String()),
		zap.String("plan", string(req.Plan)),
		zap.String("status", string(status)),
	)
	return subscription, nil
}

// Update applies a partial update. ExtendDays adds to the stored period
// end, not to now.
func (s *Service) Update(ctx context.Context, req subscriptiondomain.UpdateRequest) (subscriptiondomain.Subscription, error) {
	if req.Plan != nil && !req.Plan.IsValid() {
		return subscriptiondomain.Subscription{}, plan.ErrInvalidPlan
	}
	if req.Status != nil && !isValidStatus(*req.Status) {
		return subscriptiondomain.Subscription{}, subscriptiondomain.ErrInvalidStatus
	}
	if req.ExtendDays != nil &&
		(*req.ExtendDays < subscriptiondomain.MinPeriodDays || *req.ExtendDays > subscriptiondomain.MaxPeriodDays) {
		return subscriptiondomain.Subscription{}, subscriptiondomain.ErrInvalidExtendDays
	}

	var updated subscriptiondomain.Subscription
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		subscription, err := s.repo.FindByUserIDForUpdate(ctx, tx, req.UserID)
		if err != nil {
			return err
		}
		if subscription == nil {
			return subscriptiondomain.ErrSubscriptionNotFound
		}

		if req.Plan != nil {
			subscription.Plan = *req.Plan
		}
		if req.Status != nil {
			subscription.Status = *req.Status
		}
		if req.CancelAtPeriodEnd != nil {
			subscription.CancelAtPeriodEnd = *req.CancelAtPeriodEnd
		}
		if req.ExtendDays != nil {
			subscription.CurrentPeriodEnd = subscription.CurrentPeriodEnd.AddDate(0, 0, *req.ExtendDays)
		}
		subscription.UpdatedAt = s.clock.Now()

		if err := s.repo.Update(ctx, tx, subscription); err != nil {
			return err
		}
		updated = *subscription
		return nil
	})
	if err != nil {
		return subscriptiondomain.Subscription{}, err
	}

	s.metrics.RecordSubscriptionTransition(ctx, "update", string(updated.Status))
	return updated, nil
}

// Cancel ends the subscription. Deferred mode flags the period end and
// leaves access untouched; immediate mode closes the period now.
func (s *Service) Cancel(ctx context.Context, req subscriptiondomain.CancelRequest) (subscriptiondomain.Subscription, error) {
	var updated subscriptiondomain.Subscription
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		subscription, err := s.repo.FindByUserIDForUpdate(ctx, tx, req.UserID)
		if err != nil {
			return err
		}
		if subscription == nil {
			return subscriptiondomain.ErrSubscriptionNotFound
		}

		now := s.clock.Now()
		if req.Immediate {
			if subscription.Status == subscriptiondomain.StatusCanceled {
				return subscriptiondomain.ErrSubscriptionAlreadyCanceled
			}
			subscription.Status = subscriptiondomain.StatusCanceled
			subscription.CurrentPeriodEnd = now
			subscription.CancelAtPeriodEnd = false
			subscription.CanceledAt = &now
		} else {
			subscription.CancelAtPeriodEnd = true
		}
		subscription.UpdatedAt = now

		if err := s.repo.Update(ctx, tx, subscription); err != nil {
			return err
		}
		updated = *subscription
		return nil
	})
	if err != nil {
		return subscriptiondomain.Subscription{}, err
	}

	mode := "deferred"
	if req.Immediate {
		mode = "immediate"
	}
	s.metrics.RecordSubscriptionTransition(ctx, "cancel_"+mode, string(updated.Status))
	s.log.Info("subscription canceled",
		zap.String("user_id", req.UserID.String()),
		zap.String("mode", mode),
	)
	return updated, nil
}

// Renew computes the next period and forces the subscription active,
// reviving expired or canceled rows. A lapsed period restarts from now so
// renewals are never back-dated.
func (s *Service) Renew(ctx context.Context, req subscriptiondomain.RenewRequest) (subscriptiondomain.Subscription, error) {
	days := req.PeriodLengthDays
	if days == 0 {
		days = subscriptiondomain.DefaultRenewalDays
	}
	if days < subscriptiondomain.MinPeriodDays || days > subscriptiondomain.MaxPeriodDays {
		return subscriptiondomain.Subscription{}, subscriptiondomain.ErrInvalidPeriodLength
	}

	var updated subscriptiondomain.Subscription
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		subscription, err := s.repo.FindByUserIDForUpdate(ctx, tx, req.UserID)
		if err != nil {
			return err
		}
		if subscription == nil {
			return subscriptiondomain.ErrSubscriptionNotFound
		}

		now := s.clock.Now()
		newStart := subscription.CurrentPeriodEnd
		if now.After(newStart) {
			newStart = now
		}

		subscription.CurrentPeriodStart = newStart
		subscription.CurrentPeriodEnd = newStart.AddDate(0, 0, days)
		subscription.Status = subscriptiondomain.StatusActive
		subscription.CancelAtPeriodEnd = false
		subscription.CanceledAt = nil
		subscription.UpdatedAt = now

		if err := s.repo.Update(ctx, tx, subscription); err != nil {
			return err
		}
		updated = *subscription
		return nil
	})
	if err != nil {
		return subscriptiondomain.Subscription{}, err
	}

	s.metrics.RecordSubscriptionTransition(ctx, "renew", string(updated.Status))
	return updated, nil
}

func (s *Service) GetByUserID(ctx context.Context, userID snowflake.ID) (subscriptiondomain.Subscription, error) {
	subscription, err := s.repo.FindByUserID(ctx, s.db, userID)
	if err != nil {
		return subscriptiondomain.Subscription{}, err
	}
	if subscription == nil {
		return subscriptiondomain.Subscription{}, subscriptiondomain.ErrSubscriptionNotFound
	}
	return *subscription, nil
}

func isValidStatus(status subscriptiondomain.Status) bool {
	switch status {
	case subscriptiondomain.StatusTrialing,
		subscriptiondomain.StatusActive,
		subscriptiondomain.StatusExpired,
		subscriptiondomain.StatusCanceled:
		return true
	default:
		return false
	}
}
