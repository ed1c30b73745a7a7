package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/tuanemuy/kissa/internal/clock"
	"github.com/tuanemuy/kissa/internal/entitlement/domain"
	"github.com/tuanemuy/kissa/internal/plan"
	subscriptiondomain "github.com/tuanemuy/kissa/internal/subscription/domain"
	usagedomain "github.com/tuanemuy/kissa/internal/usage/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type entitlementService struct {
	db               *gorm.DB
	log              *zap.Logger
	clock            clock.Clock
	catalog          *plan.Catalog
	subscriptionRepo subscriptiondomain.Repository
	usageRepo        usagedomain.Repository
}

type ServiceParam struct {
	fx.In

	DB               *gorm.DB
	Log              *zap.Logger
	Clock            clock.Clock
	Catalog          *plan.Catalog
	SubscriptionRepo subscriptiondomain.Repository
	UsageRepo        usagedomain.Repository
}

func NewService(p ServiceParam) domain.Service {
	return &entitlementService{
		db:               p.DB,
		log:              p.Log.Named("entitlement.service"),
		clock:            p.Clock,
		catalog:          p.Catalog,
		subscriptionRepo: p.SubscriptionRepo,
		usageRepo:        p.UsageRepo,
	}
}

func (s *entitlementService) GetUserLimits(ctx context.Context, userID snowflake.ID) (*domain.Report, error) {
	p := plan.Free
	sub, err := s.subscriptionRepo.FindByUserID(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	if sub != nil {
		p = sub.Plan
	}

	now := s.clock.Now()
	entry, err := s.usageRepo.FindByUserPeriod(ctx, s.db, userID, now.Year(), int(now.Month()))
	if err != nil {
		return nil, err
	}
	if entry == nil {
		entry = &usagedomain.Entry{
			UserID: userID,
			Year:   now.Year(),
			Month:  int(now.Month()),
		}
	}

	report := domain.Evaluate(p, s.catalog.LimitsFor(p), *entry)

	return &report, nil
}
