// Package plan holds the static plan catalog: plan identifiers and their
// per-month resource caps.
package plan

import "errors"

// Plan identifies a subscription tier.
type Plan string

const (
	Free     Plan = "free"
	Standard Plan = "standard"
	Premium  Plan = "premium"
)

// Unlimited marks a cap that is never enforced.
const Unlimited int64 = -1

var ErrInvalidPlan = errors.New("invalid_plan")

// Parse validates a plan identifier.
func Parse(value string) (Plan, error) {
	switch Plan(value) {
	case Free, Standard, Premium:
		return Plan(value), nil
	default:
		return "", ErrInvalidPlan
	}
}

// IsValid reports whether p is a known plan.
func (p Plan) IsValid() bool {
	switch p {
	case Free, Standard, Premium:
		return true
	default:
		return false
	}
}

// Limits are the monthly caps enforced for a plan. A value of Unlimited
// (-1) disables the cap.
type Limits struct {
	RegionsCreated int64   `mapstructure:"regionsCreated" json:"regions_created"`
	PlacesCreated  int64   `mapstructure:"placesCreated" json:"places_created"`
	StorageUsedMB  float64 `mapstructure:"storageUsedMB" json:"storage_used_mb"`
	APICallsCount  int64   `mapstructure:"apiCallsCount" json:"api_calls_count"`
}

// DefaultLimits returns the built-in catalog. Premium keeps finite storage
// and API caps even though entity creation is uncapped.
func DefaultLimits() map[Plan]Limits {
	return map[Plan]Limits{
		Free: {
			RegionsCreated: 3,
			PlacesCreated:  10,
			StorageUsedMB:  100,
			APICallsCount:  1000,
		},
		Standard: {
			RegionsCreated: 20,
			PlacesCreated:  100,
			StorageUsedMB:  1000,
			APICallsCount:  10000,
		},
		Premium: {
			RegionsCreated: Unlimited,
			PlacesCreated:  Unlimited,
			StorageUsedMB:  102400,
			APICallsCount:  1000000,
		},
	}
}
