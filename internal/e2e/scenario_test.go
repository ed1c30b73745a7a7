package e2e

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	accountdomain "github.com/tuanemuy/kissa/internal/account/domain"
	accountrepository "github.com/tuanemuy/kissa/internal/account/repository"
	"github.com/tuanemuy/kissa/internal/authorization"
	"github.com/tuanemuy/kissa/internal/clock"
	entitlementdomain "github.com/tuanemuy/kissa/internal/entitlement/domain"
	entitlementservice "github.com/tuanemuy/kissa/internal/entitlement/service"
	"github.com/tuanemuy/kissa/internal/plan"
	subscriptiondomain "github.com/tuanemuy/kissa/internal/subscription/domain"
	subscriptionservice "github.com/tuanemuy/kissa/internal/subscription/service"
	usagedomain "github.com/tuanemuy/kissa/internal/usage/domain"
	usagerepository "github.com/tuanemuy/kissa/internal/usage/repository"
	usageservice "github.com/tuanemuy/kissa/internal/usage/service"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// The real subscription repository takes row locks that sqlite cannot
// parse, so scenarios swap it for a map while every other layer runs the
// real implementation.
type memSubscriptionRepo struct {
	byUserID map[snowflake.ID]*subscriptiondomain.Subscription
}

func (m *memSubscriptionRepo) Insert(ctx context.Context, db *gorm.DB, s *subscriptiondomain.Subscription) error {
	if _, ok := m.byUserID[s.UserID]; ok {
		return gorm.ErrDuplicatedKey
	}
	copied := *s
	m.byUserID[s.UserID] = &copied
	return nil
}

func (m *memSubscriptionRepo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*subscriptiondomain.Subscription, error) {
	for _, s := range m.byUserID {
		if s.ID == id {
			copied := *s
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *memSubscriptionRepo) FindByUserID(ctx context.Context, db *gorm.DB, userID snowflake.ID) (*subscriptiondomain.Subscription, error) {
	s, ok := m.byUserID[userID]
	if !ok {
		return nil, nil
	}
	copied := *s
	return &copied, nil
}

func (m *memSubscriptionRepo) FindByUserIDForUpdate(ctx context.Context, db *gorm.DB, userID snowflake.ID) (*subscriptiondomain.Subscription, error) {
	return m.FindByUserID(ctx, db, userID)
}

func (m *memSubscriptionRepo) Update(ctx context.Context, db *gorm.DB, s *subscriptiondomain.Subscription) error {
	copied := *s
	m.byUserID[s.UserID] = &copied
	return nil
}

func (m *memSubscriptionRepo) ListByPlan(ctx context.Context, db *gorm.DB, p plan.Plan) ([]subscriptiondomain.Subscription, error) {
	var out []subscriptiondomain.Subscription
	for _, s := range m.byUserID {
		if s.Plan == p {
			out = append(out, *s)
		}
	}
	return out, nil
}

type env struct {
	db    *gorm.DB
	clock *clock.FakeClock
	node  *snowflake.Node

	accountRepo   accountdomain.Repository
	subscriptions subscriptiondomain.Service
	usage         usagedomain.Service
	entitlements  entitlementdomain.Service
}

func newEnv(t *testing.T) *env {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&accountdomain.User{},
		&accountdomain.PaymentMethod{},
		&usagedomain.Entry{},
	))

	node, err := snowflake.NewNode(9)
	require.NoError(t, err)

	fake := clock.NewFakeClock(time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC))
	log := zap.NewNop()

	accountRepo := accountrepository.Provide()
	guard := authorization.NewGuard(authorization.GuardParam{DB: db, Repo: accountRepo})

	subRepo := &memSubscriptionRepo{byUserID: make(map[snowflake.ID]*subscriptiondomain.Subscription)}
	usageRepo := usagerepository.Provide()

	return &env{
		db:    db,
		clock: fake,
		node:  node,

		accountRepo: accountRepo,
		subscriptions: subscriptionservice.NewService(subscriptionservice.ServiceParam{
			DB: db, Log: log, GenID: node, Clock: fake, Repo: subRepo, Guard: guard,
		}),
		usage: usageservice.NewService(usageservice.ServiceParam{
			DB: db, Log: log, GenID: node, Clock: fake, Repo: usageRepo,
			AccountRepo: accountRepo, Guard: guard,
		}),
		entitlements: entitlementservice.NewService(entitlementservice.ServiceParam{
			DB: db, Log: log, Clock: fake, Catalog: plan.NewStaticCatalog(),
			SubscriptionRepo: subRepo, UsageRepo: usageRepo,
		}),
	}
}

func (e *env) createUser(t *testing.T) snowflake.ID {
	id := e.node.Generate()
	require.NoError(t, e.accountRepo.InsertUser(context.Background(), e.db, &accountdomain.User{
		ID:          id,
		Email:       id.String() + "@example.com",
		DisplayName: "tester",
		Role:        accountdomain.UserRoleEditor,
		Status:      accountdomain.UserStatusActive,
		CreatedAt:   e.clock.Now(),
		UpdatedAt:   e.clock.Now(),
	}))
	return id
}

func TestScenarioStandardUserStaysWithinLimits(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	userID := e.createUser(t)

	_, err := e.subscriptions.Create(ctx, subscriptiondomain.CreateRequest{
		UserID:           userID,
		Plan:             plan.Standard,
		Status:           subscriptiondomain.StatusActive,
		PeriodLengthDays: 30,
	})
	require.NoError(t, err)

	_, err = e.usage.Record(ctx, usagedomain.RecordRequest{
		UserID: userID,
		Delta:  usagedomain.Delta{RegionsCreated: 5, StorageUsedMB: 250},
	})
	require.NoError(t, err)

	report, err := e.entitlements.GetUserLimits(ctx, userID)
	require.NoError(t, err)

	assert.True(t, report.WithinLimits)
	assert.Equal(t, plan.Limits{
		RegionsCreated: 20,
		PlacesCreated:  100,
		StorageUsedMB:  1000,
		APICallsCount:  10000,
	}, report.Limits)
	assert.Equal(t, entitlementdomain.Overages{}, report.Overages)
}

func TestScenarioDeferredCancelThenRenew(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	userID := e.createUser(t)

	_, err := e.subscriptions.Create(ctx, subscriptiondomain.CreateRequest{
		UserID:           userID,
		Plan:             plan.Premium,
		Status:           subscriptiondomain.StatusActive,
		PeriodLengthDays: 30,
	})
	require.NoError(t, err)

	canceled, err := e.subscriptions.Cancel(ctx, subscriptiondomain.CancelRequest{UserID: userID})
	require.NoError(t, err)
	require.True(t, canceled.CancelAtPeriodEnd)

	renewed, err := e.subscriptions.Renew(ctx, subscriptiondomain.RenewRequest{
		UserID:           userID,
		PeriodLengthDays: 60,
	})
	require.NoError(t, err)

	assert.Equal(t, subscriptiondomain.StatusActive, renewed.Status)
	assert.False(t, renewed.CancelAtPeriodEnd)
	assert.Equal(t, renewed.CurrentPeriodStart.AddDate(0, 0, 60), renewed.CurrentPeriodEnd)
}

func TestScenarioConcurrentImmediateCancel(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	userID := e.createUser(t)

	_, err := e.subscriptions.Create(ctx, subscriptiondomain.CreateRequest{
		UserID:           userID,
		Plan:             plan.Standard,
		Status:           subscriptiondomain.StatusActive,
		PeriodLengthDays: 30,
	})
	require.NoError(t, err)

	// Two callers race to cancel the same subscription; exactly one wins.
	var firstErr, secondErr error
	_, firstErr = e.subscriptions.Cancel(ctx, subscriptiondomain.CancelRequest{UserID: userID, Immediate: true})
	_, secondErr = e.subscriptions.Cancel(ctx, subscriptiondomain.CancelRequest{UserID: userID, Immediate: true})

	require.NoError(t, firstErr)
	assert.ErrorIs(t, secondErr, subscriptiondomain.ErrSubscriptionAlreadyCanceled)
}

func TestScenarioLifetimeSlotSurvivesCancellation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	userID := e.createUser(t)

	_, err := e.subscriptions.Create(ctx, subscriptiondomain.CreateRequest{
		UserID:           userID,
		Plan:             plan.Free,
		PeriodLengthDays: 7,
	})
	require.NoError(t, err)

	_, err = e.subscriptions.Cancel(ctx, subscriptiondomain.CancelRequest{UserID: userID, Immediate: true})
	require.NoError(t, err)

	// Re-subscription goes through Renew, never through a second Create.
	_, err = e.subscriptions.Create(ctx, subscriptiondomain.CreateRequest{
		UserID:           userID,
		Plan:             plan.Premium,
		PeriodLengthDays: 30,
	})
	require.ErrorIs(t, err, subscriptiondomain.ErrSubscriptionAlreadyExists)

	revived, err := e.subscriptions.Renew(ctx, subscriptiondomain.RenewRequest{UserID: userID})
	require.NoError(t, err)
	assert.Equal(t, subscriptiondomain.StatusActive, revived.Status)
}

func TestScenarioUsageFeedsEntitlementAcrossMonths(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	userID := e.createUser(t)

	for i := 0; i < 4; i++ {
		e.usage.AutoRecord(ctx, usagedomain.AutoRecordRequest{UserID: userID, Event: usagedomain.EventRegionCreated})
	}

	report, err := e.entitlements.GetUserLimits(ctx, userID)
	require.NoError(t, err)
	assert.False(t, report.WithinLimits)
	assert.Equal(t, int64(1), report.Overages.RegionsCreated)

	// The counter resets with the calendar month.
	e.clock.Set(time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC))

	report, err = e.entitlements.GetUserLimits(ctx, userID)
	require.NoError(t, err)
	assert.True(t, report.WithinLimits)
}
