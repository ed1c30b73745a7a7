package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/tuanemuy/kissa/internal/usage/domain"
	"gorm.io/gorm"
)

const entryColumns = `id, user_id, year, month, regions_created, places_created, checkins_count, images_uploaded, storage_used_mb, api_calls_count, created_at, updated_at`

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Increment(ctx context.Context, db *gorm.DB, userID snowflake.ID, year, month int, delta domain.Delta, now time.Time) (bool, error) {
	res := db.WithContext(ctx).Exec(`
		UPDATE usage_entries SET
			regions_created = regions_created + ?,
			places_created = places_created + ?,
			checkins_count = checkins_count + ?,
			images_uploaded = images_uploaded + ?,
			storage_used_mb = storage_used_mb + ?,
			api_calls_count = api_calls_count + ?,
			updated_at = ?
		WHERE user_id = ? AND year = ? AND month = ?`,
		delta.RegionsCreated,
		delta.PlacesCreated,
		delta.CheckinsCount,
		delta.ImagesUploaded,
		delta.StorageUsedMB,
		delta.APICallsCount,
		now,
		userID, year, month,
	)
	if res.Error != nil {
		return false, res.Error
	}

	return res.RowsAffected > 0, nil
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, entry *domain.Entry) error {
	return db.WithContext(ctx).Exec(`
		INSERT INTO usage_entries (`+entryColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.UserID,
		entry.Year,
		entry.Month,
		entry.RegionsCreated,
		entry.PlacesCreated,
		entry.CheckinsCount,
		entry.ImagesUploaded,
		entry.StorageUsedMB,
		entry.APICallsCount,
		entry.CreatedAt,
		entry.UpdatedAt,
	).Error
}

func (r *repo) FindByUserPeriod(ctx context.Context, db *gorm.DB, userID snowflake.ID, year, month int) (*domain.Entry, error) {
	var entry domain.Entry
	err := db.WithContext(ctx).Raw(`
		SELECT `+entryColumns+`
		FROM usage_entries
		WHERE user_id = ? AND year = ? AND month = ?`,
		userID, year, month,
	).Scan(&entry).Error
	if err != nil {
		return nil, err
	}

	if entry.ID == 0 {
		return nil, nil
	}

	return &entry, nil
}

func (r *repo) ListByUserYear(ctx context.Context, db *gorm.DB, userID snowflake.ID, year int) ([]domain.Entry, error) {
	var entries []domain.Entry
	err := db.WithContext(ctx).Raw(`
		SELECT `+entryColumns+`
		FROM usage_entries
		WHERE user_id = ? AND year = ?
		ORDER BY month ASC`,
		userID, year,
	).Scan(&entries).Error
	if err != nil {
		return nil, err
	}

	return entries, nil
}

func (r *repo) ListHistory(ctx context.Context, db *gorm.DB, userID snowflake.ID, limit int) ([]domain.Entry, error) {
	var entries []domain.Entry
	err := db.WithContext(ctx).Raw(`
		SELECT `+entryColumns+`
		FROM usage_entries
		WHERE user_id = ?
		ORDER BY year DESC, month DESC
		LIMIT ?`,
		userID, limit,
	).Scan(&entries).Error
	if err != nil {
		return nil, err
	}

	return entries, nil
}

func (r *repo) SumByPlan(ctx context.Context, db *gorm.DB, planID string, fromKey, toKey int) (*domain.Totals, error) {
	var totals domain.Totals
	err := db.WithContext(ctx).Raw(`
		SELECT
			COALESCE(SUM(u.regions_created), 0) AS regions_created,
			COALESCE(SUM(u.places_created), 0) AS places_created,
			COALESCE(SUM(u.checkins_count), 0) AS checkins_count,
			COALESCE(SUM(u.images_uploaded), 0) AS images_uploaded,
			COALESCE(SUM(u.storage_used_mb), 0) AS storage_used_mb,
			COALESCE(SUM(u.api_calls_count), 0) AS api_calls_count,
			COUNT(u.id) AS entry_count
		FROM usage_entries u
		INNER JOIN subscriptions s ON s.user_id = u.user_id
		WHERE s.plan = ?
		  AND (u.year * 100 + u.month) BETWEEN ? AND ?`,
		planID, fromKey, toKey,
	).Scan(&totals).Error
	if err != nil {
		return nil, err
	}

	return &totals, nil
}
