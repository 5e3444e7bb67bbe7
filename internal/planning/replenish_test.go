package planning

import (
	"context"
	"testing"

	"github.com/andresuchdata/demandcast/internal/domain"
	"github.com/andresuchdata/demandcast/internal/faults"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildReplenishmentPlanOrdersBelowTarget(t *testing.T) {
	req := domain.ReplenishmentPlanRequest{
		Items: []domain.PlanningItem{{
			ProductID:         "P1",
			WarehouseID:       "W1",
			CurrentInventory:  5,
			LeadTimeDays:      2,
			ReviewPeriodDays:  7,
			ServiceLevel:      0.95,
			ForecastMeanDaily: floatPtr(10.0),
			ForecastStdDaily:  floatPtr(0.0),
		}},
	}

	plan, err := BuildReplenishmentPlan(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, plan.Items, 1)

	item := plan.Items[0]
	// mean 10, std 0, protection 9 days: target 90, reorder 20.
	assert.InDelta(t, 90.0, item.TargetStockLevel, 1e-9)
	assert.InDelta(t, 20.0, item.ReorderPoint, 1e-9)
	assert.InDelta(t, 85.0, item.RecommendedOrderQuantity, 1e-9)
	assert.InDelta(t, 0.5, item.ProjectedCoverDays, 1e-9)
	// Inventory position of 5 against reorder 20.
	assert.InDelta(t, 0.75, item.StockoutRiskScore, 1e-9)
	assert.Equal(t, domain.RiskHigh, item.RiskLevel)
	assert.Equal(t, 1, plan.Summary.HighRiskItems)
	assert.InDelta(t, 85.0, plan.Summary.TotalRecommendedOrderQty, 1e-9)
}

func TestBuildReplenishmentPlanOverstocked(t *testing.T) {
	req := domain.ReplenishmentPlanRequest{
		OverstockFactor: 1.5,
		Items: []domain.PlanningItem{{
			ProductID:         "P2",
			WarehouseID:       "W1",
			CurrentInventory:  500,
			LeadTimeDays:      1,
			ReviewPeriodDays:  7,
			ServiceLevel:      0.95,
			ForecastMeanDaily: floatPtr(10.0),
			ForecastStdDaily:  floatPtr(0.0),
		}},
	}

	plan, err := BuildReplenishmentPlan(context.Background(), req)
	require.NoError(t, err)
	item := plan.Items[0]

	assert.Equal(t, 0.0, item.RecommendedOrderQuantity)
	assert.Equal(t, 0.0, item.StockoutRiskScore)
	assert.Greater(t, item.OverstockRiskScore, 0.0)
}

func TestBuildReplenishmentPlanPreservesItemOrder(t *testing.T) {
	items := make([]domain.PlanningItem, 8)
	for i := range items {
		items[i] = domain.PlanningItem{
			ProductID:         string(rune('A' + i)),
			WarehouseID:       "W1",
			ForecastMeanDaily: floatPtr(float64(i + 1)),
		}
	}

	plan, err := BuildReplenishmentPlan(context.Background(), domain.ReplenishmentPlanRequest{Items: items})
	require.NoError(t, err)
	require.Len(t, plan.Items, len(items))
	for i, p := range plan.Items {
		assert.Equal(t, items[i].ProductID, p.ProductID)
	}
}

func TestBuildReplenishmentPlanFailsOnBadItem(t *testing.T) {
	req := domain.ReplenishmentPlanRequest{
		Items: []domain.PlanningItem{
			{ProductID: "OK", WarehouseID: "W1", ForecastMeanDaily: floatPtr(5.0)},
			{ProductID: "BAD", WarehouseID: "W1"},
		},
	}

	_, err := BuildReplenishmentPlan(context.Background(), req)
	require.Error(t, err)
	assert.True(t, faults.IsKind(err, faults.InputValidation))
	assert.Contains(t, err.Error(), "BAD@W1")
}
