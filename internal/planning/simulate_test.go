package planning

import (
	"context"
	"testing"

	"github.com/andresuchdata/demandcast/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulateOrdersOnReviewDays(t *testing.T) {
	req := domain.PurchasePlanRequest{
		HorizonDays: 14,
		Items: []domain.PlanningItem{{
			ProductID:         "P1",
			WarehouseID:       "W1",
			CurrentInventory:  100,
			LeadTimeDays:      2,
			ReviewPeriodDays:  7,
			ServiceLevel:      0.95,
			ForecastMeanDaily: floatPtr(10.0),
			ForecastStdDaily:  floatPtr(0.0),
		}},
	}

	plan, err := BuildPurchasePlan(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, plan.Items, 1)

	item := plan.Items[0]
	assert.InDelta(t, 140.0, item.TotalForecastDemand, 1e-9)
	for _, order := range item.Orders {
		assert.Equal(t, 0, order.OrderDay%7)
		assert.Equal(t, order.OrderDay+2, order.ArrivalDay)
		assert.Equal(t, "Inventory position below reorder point", order.Reason)
	}
	assert.Equal(t, plan.HorizonDays, 14)
}

func TestSimulateEmptyInventoryStocksOutUntilFirstArrival(t *testing.T) {
	req := domain.PurchasePlanRequest{
		HorizonDays: 10,
		Items: []domain.PlanningItem{{
			ProductID:         "P1",
			WarehouseID:       "W1",
			CurrentInventory:  0,
			LeadTimeDays:      3,
			ReviewPeriodDays:  1,
			ServiceLevel:      0.95,
			ForecastMeanDaily: floatPtr(10.0),
			ForecastStdDaily:  floatPtr(0.0),
		}},
	}

	plan, err := BuildPurchasePlan(context.Background(), req)
	require.NoError(t, err)
	item := plan.Items[0]

	// Demand hits before the first order can land on day 3.
	assert.GreaterOrEqual(t, item.StockoutDays, 3)
	assert.Greater(t, item.ProjectedStockoutUnits, 0.0)
	assert.Less(t, item.ServiceLevelEstimate, 1.0)
	require.NotEmpty(t, item.Orders)
	assert.Equal(t, 0, item.Orders[0].OrderDay)
	assert.Equal(t, 3, item.Orders[0].ArrivalDay)
}

func TestSimulateRespectsMaxOrders(t *testing.T) {
	req := domain.PurchasePlanRequest{
		HorizonDays:      30,
		MaxOrdersPerItem: 2,
		Items: []domain.PlanningItem{{
			ProductID:         "P1",
			WarehouseID:       "W1",
			CurrentInventory:  0,
			LeadTimeDays:      1,
			ReviewPeriodDays:  1,
			ServiceLevel:      0.95,
			ForecastMeanDaily: floatPtr(50.0),
			ForecastStdDaily:  floatPtr(0.0),
			MaxOrderQuantity:  floatPtr(10.0),
		}},
	}

	plan, err := BuildPurchasePlan(context.Background(), req)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(plan.Items[0].Orders), 2)
}

func TestSimulateOnOrderInventoryArrivesEarly(t *testing.T) {
	req := domain.PurchasePlanRequest{
		HorizonDays: 5,
		Items: []domain.PlanningItem{{
			ProductID:         "P1",
			WarehouseID:       "W1",
			CurrentInventory:  0,
			OnOrderInventory:  100,
			LeadTimeDays:      1,
			ReviewPeriodDays:  7,
			ServiceLevel:      0.95,
			ForecastMeanDaily: floatPtr(10.0),
			ForecastStdDaily:  floatPtr(0.0),
		}},
	}

	plan, err := BuildPurchasePlan(context.Background(), req)
	require.NoError(t, err)
	item := plan.Items[0]

	// On-order stock lands on day 0 and covers the whole horizon.
	assert.Equal(t, 0, item.StockoutDays)
	assert.InDelta(t, 50.0, item.ProjectedEndingInventory, 1e-9)
}

func TestSimulateUsesDefaultsForZeroRequestFields(t *testing.T) {
	req := domain.PurchasePlanRequest{
		Items: []domain.PlanningItem{{
			ProductID:         "P1",
			WarehouseID:       "W1",
			CurrentInventory:  300,
			ForecastMeanDaily: floatPtr(10.0),
		}},
	}

	plan, err := BuildPurchasePlan(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, DefaultHorizonDays, plan.HorizonDays)
	assert.InDelta(t, 300.0, plan.Items[0].TotalForecastDemand, 1e-9)
}

func TestSimulateForecastSeriesPadsAndTruncates(t *testing.T) {
	item := domain.PlanningItem{DemandForecast: []float64{1, 2, 3}}

	padded := buildForecastSeries(item, 5, 9.0)
	assert.Equal(t, []float64{1, 2, 3, 9, 9}, padded)

	truncated := buildForecastSeries(item, 2, 9.0)
	assert.Equal(t, []float64{1, 2}, truncated)
}
