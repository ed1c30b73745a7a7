package domain

import (
	"github.com/tuanemuy/kissa/internal/plan"
	usagedomain "github.com/tuanemuy/kissa/internal/usage/domain"
)

// Overages holds how far each counter sits above its cap. A counter at
// or under its cap, or on an unlimited cap, reports zero.
type Overages struct {
	RegionsCreated int64   `json:"regions_created"`
	PlacesCreated  int64   `json:"places_created"`
	StorageUsedMB  float64 `json:"storage_used_mb"`
	APICallsCount  int64   `json:"api_calls_count"`
}

// Report is the outcome of checking one month of usage against a plan.
type Report struct {
	Plan         plan.Plan         `json:"plan"`
	Limits       plan.Limits       `json:"limits"`
	Usage        usagedomain.Entry `json:"usage"`
	Overages     Overages          `json:"overages"`
	WithinLimits bool              `json:"within_limits"`
}

func overageInt(used, cap int64) int64 {
	if cap == plan.Unlimited {
		return 0
	}
	if used <= cap {
		return 0
	}
	return used - cap
}

func overageFloat(used, cap float64) float64 {
	if int64(cap) == plan.Unlimited {
		return 0
	}
	if used <= cap {
		return 0
	}
	return used - cap
}

// Evaluate compares a usage entry against plan limits. Pure function;
// callers supply the limits resolved for the user's current plan.
func Evaluate(p plan.Plan, limits plan.Limits, entry usagedomain.Entry) Report {
	overages := Overages{
		RegionsCreated: overageInt(entry.RegionsCreated, limits.RegionsCreated),
		PlacesCreated:  overageInt(entry.PlacesCreated, limits.PlacesCreated),
		StorageUsedMB:  overageFloat(entry.StorageUsedMB, limits.StorageUsedMB),
		APICallsCount:  overageInt(entry.APICallsCount, limits.APICallsCount),
	}

	withinLimits := overages.RegionsCreated == 0 &&
		overages.PlacesCreated == 0 &&
		overages.StorageUsedMB == 0 &&
		overages.APICallsCount == 0

	return Report{
		Plan:         p,
		Limits:       limits,
		Usage:        entry,
		Overages:     overages,
		WithinLimits: withinLimits,
	}
}
