package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Entry is the per-user usage counter row for one calendar month.
// Counters only grow; there is at most one row per (user, year, month).
type Entry struct {
	ID             snowflake.ID `json:"id" gorm:"primaryKey"`
	UserID         snowflake.ID `json:"user_id" gorm:"index;uniqueIndex:idx_usage_user_period"`
	Year           int          `json:"year" gorm:"uniqueIndex:idx_usage_user_period"`
	Month          int          `json:"month" gorm:"uniqueIndex:idx_usage_user_period"`
	RegionsCreated int64        `json:"regions_created"`
	PlacesCreated  int64        `json:"places_created"`
	CheckinsCount  int64        `json:"checkins_count"`
	ImagesUploaded int64        `json:"images_uploaded"`
	StorageUsedMB  float64      `json:"storage_used_mb"`
	APICallsCount  int64        `json:"api_calls_count"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

func (Entry) TableName() string {
	return "usage_entries"
}

// Delta is the increment applied to an Entry. All fields are additive
// and must be non-negative.
type Delta struct {
	RegionsCreated int64   `json:"regions_created"`
	PlacesCreated  int64   `json:"places_created"`
	CheckinsCount  int64   `json:"checkins_count"`
	ImagesUploaded int64   `json:"images_uploaded"`
	StorageUsedMB  float64 `json:"storage_used_mb"`
	APICallsCount  int64   `json:"api_calls_count"`
}

func (d Delta) IsZero() bool {
	return d.RegionsCreated == 0 &&
		d.PlacesCreated == 0 &&
		d.CheckinsCount == 0 &&
		d.ImagesUploaded == 0 &&
		d.StorageUsedMB == 0 &&
		d.APICallsCount == 0
}

// Totals is a cross-user sum of counters, used by aggregate reports.
type Totals struct {
	RegionsCreated int64   `json:"regions_created"`
	PlacesCreated  int64   `json:"places_created"`
	CheckinsCount  int64   `json:"checkins_count"`
	ImagesUploaded int64   `json:"images_uploaded"`
	StorageUsedMB  float64 `json:"storage_used_mb"`
	APICallsCount  int64   `json:"api_calls_count"`
	EntryCount     int64   `json:"entry_count"`
}

// EventType names a single platform action that maps to a fixed Delta.
type EventType string

const (
	EventRegionCreated  EventType = "region_created"
	EventPlaceCreated   EventType = "place_created"
	EventCheckinCreated EventType = "checkin_created"
	EventImageUploaded  EventType = "image_uploaded"
	EventAPICall        EventType = "api_call"
)
