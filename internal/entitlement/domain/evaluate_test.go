package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tuanemuy/kissa/internal/plan"
	usagedomain "github.com/tuanemuy/kissa/internal/usage/domain"
)

func TestEvaluatePremiumUnlimitedNeverOverages(t *testing.T) {
	limits := plan.DefaultLimits()[plan.Premium]

	report := Evaluate(plan.Premium, limits, usagedomain.Entry{
		RegionsCreated: 100000,
		PlacesCreated:  100000,
		StorageUsedMB:  50000,
		APICallsCount:  500000,
	})

	assert.True(t, report.WithinLimits)
	assert.Equal(t, int64(0), report.Overages.RegionsCreated)
	assert.Equal(t, int64(0), report.Overages.PlacesCreated)
	assert.Equal(t, float64(0), report.Overages.StorageUsedMB)
	assert.Equal(t, int64(0), report.Overages.APICallsCount)
}

func TestEvaluateFreeTierOverEveryCap(t *testing.T) {
	limits := plan.DefaultLimits()[plan.Free]

	report := Evaluate(plan.Free, limits, usagedomain.Entry{
		RegionsCreated: 5,
		PlacesCreated:  15,
		StorageUsedMB:  150,
		APICallsCount:  1500,
	})

	assert.False(t, report.WithinLimits)
	assert.Equal(t, int64(2), report.Overages.RegionsCreated)
	assert.Equal(t, int64(5), report.Overages.PlacesCreated)
	assert.Equal(t, float64(50), report.Overages.StorageUsedMB)
	assert.Equal(t, int64(500), report.Overages.APICallsCount)
}

func TestEvaluateAtCapIsWithinLimits(t *testing.T) {
	limits := plan.DefaultLimits()[plan.Standard]

	report := Evaluate(plan.Standard, limits, usagedomain.Entry{
		RegionsCreated: limits.RegionsCreated,
		PlacesCreated:  limits.PlacesCreated,
		StorageUsedMB:  limits.StorageUsedMB,
		APICallsCount:  limits.APICallsCount,
	})

	assert.True(t, report.WithinLimits)
}

func TestEvaluateZeroUsage(t *testing.T) {
	limits := plan.DefaultLimits()[plan.Free]

	report := Evaluate(plan.Free, limits, usagedomain.Entry{})
	assert.True(t, report.WithinLimits)
}
