package service

import (
	"context"
	"fmt"

	"github.com/bwmarrin/snowflake"
	accountdomain "github.com/tuanemuy/kissa/internal/account/domain"
	"github.com/tuanemuy/kissa/internal/authorization"
	"github.com/tuanemuy/kissa/internal/clock"
	"github.com/tuanemuy/kissa/internal/observability/metrics"
	"github.com/tuanemuy/kissa/internal/plan"
	"github.com/tuanemuy/kissa/internal/usage/domain"
	pkgdb "github.com/tuanemuy/kissa/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type usageService struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	clock       clock.Clock
	repo        domain.Repository
	accountRepo accountdomain.Repository
	guard       *authorization.Guard
	metrics     *metrics.Metrics
}

type ServiceParam struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Clock       clock.Clock
	Repo        domain.Repository
	AccountRepo accountdomain.Repository
	Guard       *authorization.Guard
	Metrics     *metrics.Metrics `optional:"true"`
}

func NewService(p ServiceParam) domain.Service {
	return &usageService{
		db:          p.DB,
		log:         p.Log.Named("usage.service"),
		genID:       p.GenID,
		clock:       p.Clock,
		repo:        p.Repo,
		accountRepo: p.AccountRepo,
		guard:       p.Guard,
		metrics:     p.Metrics,
	}
}

func validateDelta(d domain.Delta) error {
	if d.RegionsCreated < 0 ||
		d.PlacesCreated < 0 ||
		d.CheckinsCount < 0 ||
		d.ImagesUploaded < 0 ||
		d.StorageUsedMB < 0 ||
		d.APICallsCount < 0 {
		return domain.ErrNegativeDelta
	}

	return nil
}

func validatePeriod(year, month int) error {
	if month < 1 || month > 12 {
		return domain.ErrInvalidMonth
	}

	if year < domain.MinYear {
		return domain.ErrInvalidYear
	}

	return nil
}

func (s *usageService) Record(ctx context.Context, req domain.RecordRequest) (*domain.Entry, error) {
	return s.record(ctx, req.UserID, req.Delta, "manual")
}

func (s *usageService) record(ctx context.Context, userID snowflake.ID, delta domain.Delta, event string) (*domain.Entry, error) {
	if err := validateDelta(delta); err != nil {
		return nil, err
	}

	user, err := s.accountRepo.FindUserByID(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, accountdomain.ErrUserNotFound
	}

	now := s.clock.Now()
	year, month := now.Year(), int(now.Month())

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		applied, err := s.repo.Increment(ctx, tx, userID, year, month, delta, now)
		if err != nil {
			return err
		}
		if applied {
			return nil
		}

		entry := &domain.Entry{
			ID:             s.genID.Generate(),
			UserID:         userID,
			Year:           year,
			Month:          month,
			RegionsCreated: delta.RegionsCreated,
			PlacesCreated:  delta.PlacesCreated,
			CheckinsCount:  delta.CheckinsCount,
			ImagesUploaded: delta.ImagesUploaded,
			StorageUsedMB:  delta.StorageUsedMB,
			APICallsCount:  delta.APICallsCount,
			CreatedAt:      now,
			UpdatedAt:      now,
		}

		if err := s.repo.Insert(ctx, tx, entry); err != nil {
			if pkgdb.IsDuplicateKeyErr(err) {
				// Lost the first-write race. The row exists now,
				// so the increment must land.
				applied, err := s.repo.Increment(ctx, tx, userID, year, month, delta, now)
				if err != nil {
					return err
				}
				if !applied {
					return fmt.Errorf("usage entry vanished during upsert for user %s", userID)
				}
				return nil
			}
			return err
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordUsage(ctx, event)

	entry, err := s.repo.FindByUserPeriod(ctx, s.db, userID, year, month)
	if err != nil {
		return nil, err
	}

	s.log.Debug("usage recorded",
		zap.String("user_id", userID.String()),
		zap.Int("year", year),
		zap.Int("month", month),
	)

	return entry, nil
}

func deltaForEvent(event domain.EventType, sizeKB float64) (domain.Delta, error) {
	switch event {
	case domain.EventRegionCreated:
		return domain.Delta{RegionsCreated: 1}, nil
	case domain.EventPlaceCreated:
		return domain.Delta{PlacesCreated: 1}, nil
	case domain.EventCheckinCreated:
		return domain.Delta{CheckinsCount: 1}, nil
	case domain.EventImageUploaded:
		return domain.Delta{ImagesUploaded: 1, StorageUsedMB: sizeKB / 1024}, nil
	case domain.EventAPICall:
		return domain.Delta{APICallsCount: 1}, nil
	default:
		return domain.Delta{}, domain.ErrInvalidEvent
	}
}

func (s *usageService) AutoRecord(ctx context.Context, req domain.AutoRecordRequest) {
	delta, err := deltaForEvent(req.Event, req.SizeKB)
	if err == nil {
		_, err = s.record(ctx, req.UserID, delta, string(req.Event))
	}

	if err != nil {
		s.metrics.RecordUsageFailure(ctx, string(req.Event))
		s.log.Warn("auto usage record failed",
			zap.String("user_id", req.UserID.String()),
			zap.String("event", string(req.Event)),
			zap.Error(err),
		)
	}
}

func (s *usageService) GetCurrentMonth(ctx context.Context, userID snowflake.ID) (*domain.Entry, error) {
	now := s.clock.Now()

	return s.GetMonth(ctx, domain.GetMonthRequest{
		UserID: userID,
		Year:   now.Year(),
		Month:  int(now.Month()),
	})
}

func (s *usageService) GetMonth(ctx context.Context, req domain.GetMonthRequest) (*domain.Entry, error) {
	if err := validatePeriod(req.Year, req.Month); err != nil {
		return nil, err
	}

	entry, err := s.repo.FindByUserPeriod(ctx, s.db, req.UserID, req.Year, req.Month)
	if err != nil {
		return nil, err
	}

	if entry == nil {
		// A month with no recorded activity reads as all zeros.
		return &domain.Entry{
			UserID: req.UserID,
			Year:   req.Year,
			Month:  req.Month,
		}, nil
	}

	return entry, nil
}

func (s *usageService) GetYear(ctx context.Context, userID snowflake.ID, year int) ([]domain.Entry, error) {
	if year < domain.MinYear {
		return nil, domain.ErrInvalidYear
	}

	return s.repo.ListByUserYear(ctx, s.db, userID, year)
}

func (s *usageService) History(ctx context.Context, req domain.HistoryRequest) ([]domain.Entry, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = domain.DefaultHistoryMonths
	}
	if limit > domain.MaxHistoryMonths {
		limit = domain.MaxHistoryMonths
	}

	return s.repo.ListHistory(ctx, s.db, req.UserID, limit)
}

func (s *usageService) AggregateByPlan(ctx context.Context, req domain.AggregateRequest) (*domain.Aggregate, error) {
	if _, err := s.guard.RequireAdmin(ctx, req.AdminUserID); err != nil {
		return nil, err
	}

	if !req.Plan.IsValid() {
		return nil, plan.ErrInvalidPlan
	}

	if req.To.Before(req.From) {
		return nil, domain.ErrInvalidRange
	}

	fromKey := req.From.Year()*100 + int(req.From.Month())
	toKey := req.To.Year()*100 + int(req.To.Month())

	totals, err := s.repo.SumByPlan(ctx, s.db, string(req.Plan), fromKey, toKey)
	if err != nil {
		return nil, err
	}

	return &domain.Aggregate{
		Plan:   req.Plan,
		From:   req.From,
		To:     req.To,
		Totals: *totals,
	}, nil
}
