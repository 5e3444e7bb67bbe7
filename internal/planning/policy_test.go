package planning

import (
	"context"
	"testing"

	"github.com/andresuchdata/demandcast/internal/domain"
	"github.com/andresuchdata/demandcast/internal/faults"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(v float64) *float64 { return &v }

func TestResolveDemandStatsPrecedence(t *testing.T) {
	item := domain.PlanningItem{
		ForecastMeanDaily: floatPtr(12.0),
		ForecastStdDaily:  floatPtr(3.0),
		DemandForecast:    []float64{100, 100, 100},
		DemandHistory:     []float64{1, 1, 1},
	}

	stats, err := ResolveDemandStats(item)
	require.NoError(t, err)
	assert.Equal(t, 12.0, stats.MeanDailyDemand)
	assert.Equal(t, 3.0, stats.StdDailyDemand)
	assert.InDelta(t, 0.25, stats.CV, 1e-9)
}

func TestResolveDemandStatsFromSeries(t *testing.T) {
	item := domain.PlanningItem{DemandHistory: []float64{8, 10, 12}}

	stats, err := ResolveDemandStats(item)
	require.NoError(t, err)
	assert.InDelta(t, 10.0, stats.MeanDailyDemand, 1e-9)
	// Population std over {8,10,12}.
	assert.InDelta(t, 1.632993, stats.StdDailyDemand, 1e-5)
}

func TestResolveDemandStatsDefaultStd(t *testing.T) {
	item := domain.PlanningItem{ForecastMeanDaily: floatPtr(20.0)}

	stats, err := ResolveDemandStats(item)
	require.NoError(t, err)
	assert.InDelta(t, 5.0, stats.StdDailyDemand, 1e-9)
}

func TestResolveDemandStatsRejectsNonPositiveMean(t *testing.T) {
	for _, item := range []domain.PlanningItem{
		{ProductID: "P1", WarehouseID: "W1"},
		{ProductID: "P1", WarehouseID: "W1", ForecastMeanDaily: floatPtr(0.0)},
		{ProductID: "P1", WarehouseID: "W1", ForecastMeanDaily: floatPtr(-4.0)},
	} {
		_, err := ResolveDemandStats(item)
		require.Error(t, err)
		assert.True(t, faults.IsKind(err, faults.InputValidation))
	}
}

func TestPolicyForInvariant(t *testing.T) {
	item := domain.PlanningItem{
		LeadTimeDays:     3,
		ReviewPeriodDays: 7,
		ServiceLevel:     0.95,
	}
	stats := domain.DemandStats{MeanDailyDemand: 10.0, StdDailyDemand: 4.0}

	policy, err := PolicyFor(item, stats)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, policy.TargetStockLevel, policy.ReorderPoint)
	assert.GreaterOrEqual(t, policy.ReorderPoint, policy.SafetyStock)
	assert.GreaterOrEqual(t, policy.SafetyStock, 0.0)
}

func TestPolicyForZeroStd(t *testing.T) {
	item := domain.PlanningItem{LeadTimeDays: 2, ReviewPeriodDays: 5, ServiceLevel: 0.95}
	stats := domain.DemandStats{MeanDailyDemand: 10.0, StdDailyDemand: 0.0}

	policy, err := PolicyFor(item, stats)
	require.NoError(t, err)
	assert.Equal(t, 0.0, policy.SafetyStock)
	assert.InDelta(t, 20.0, policy.ReorderPoint, 1e-9)
	assert.InDelta(t, 70.0, policy.TargetStockLevel, 1e-9)
}

func TestApplyOrderConstraints(t *testing.T) {
	item := domain.PlanningItem{
		MinOrderQuantity: 20,
		OrderMultiple:    floatPtr(10),
		MaxOrderQuantity: floatPtr(100),
	}

	// Minimum floor, then rounded to the multiple.
	assert.Equal(t, 20.0, ApplyOrderConstraints(15, item))
	// Rounded up to the next multiple.
	assert.Equal(t, 100.0, ApplyOrderConstraints(95, item))
	// Capped at the maximum.
	assert.Equal(t, 100.0, ApplyOrderConstraints(250, item))
	// Non-positive proposals stay zero.
	assert.Equal(t, 0.0, ApplyOrderConstraints(0, item))
	assert.Equal(t, 0.0, ApplyOrderConstraints(-5, item))
}

func TestApplyOrderConstraintsUnconstrained(t *testing.T) {
	assert.Equal(t, 37.5, ApplyOrderConstraints(37.5, domain.PlanningItem{}))
}

func TestNormalizeItemDefaults(t *testing.T) {
	item := domain.PlanningItem{}
	require.NoError(t, NormalizeItem(&item))
	assert.Equal(t, 1, item.LeadTimeDays)
	assert.Equal(t, 7, item.ReviewPeriodDays)
	assert.Equal(t, 0.95, item.ServiceLevel)
}

func TestNormalizeItemServiceLevelRange(t *testing.T) {
	for _, level := range []float64{0.50, 0.95, 0.999} {
		item := domain.PlanningItem{ServiceLevel: level}
		require.NoError(t, NormalizeItem(&item))
		assert.Equal(t, level, item.ServiceLevel)
	}

	for _, level := range []float64{0.30, 0.499, 0.9999, 1.0, -0.5} {
		item := domain.PlanningItem{ServiceLevel: level}
		err := NormalizeItem(&item)
		require.Error(t, err, "serviceLevel %v", level)
		assert.True(t, faults.IsKind(err, faults.InputValidation))
	}
}

func TestReplenishmentRejectsLowServiceLevel(t *testing.T) {
	mean := 10.0
	std := 4.0
	_, err := BuildReplenishmentPlan(context.Background(), domain.ReplenishmentPlanRequest{
		Items: []domain.PlanningItem{{
			ProductID:         "SKU-1",
			WarehouseID:       "W1",
			ServiceLevel:      0.30,
			ForecastMeanDaily: &mean,
			ForecastStdDaily:  &std,
		}},
	})
	require.Error(t, err)
	assert.True(t, faults.IsKind(err, faults.InputValidation))
}
