package planning

import (
	"context"
	"math"
	"time"

	"github.com/andresuchdata/demandcast/internal/domain"
	"golang.org/x/sync/errgroup"
)

// BuildPurchasePlan runs a day-by-day review-period simulation per item
// and produces the resulting order schedule. Items are independent and
// simulated in parallel; output order matches input order.
func BuildPurchasePlan(ctx context.Context, req domain.PurchasePlanRequest) (*domain.PurchasePlan, error) {
	horizon := req.HorizonDays
	if horizon < 1 {
		horizon = DefaultHorizonDays
	}
	maxOrders := req.MaxOrdersPerItem
	if maxOrders < 1 {
		maxOrders = DefaultMaxOrdersPerItem
	}
	overstockFactor := req.OverstockFactor
	if overstockFactor < 1.0 {
		overstockFactor = DefaultOverstockFactor
	}

	plans := make([]domain.PurchaseItemPlan, len(req.Items))
	g, _ := errgroup.WithContext(ctx)
	for i, item := range req.Items {
		i, item := i, item
		g.Go(func() error {
			plan, err := simulateItem(item, horizon, maxOrders, overstockFactor)
			if err != nil {
				return err
			}
			plans[i] = plan
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	summary := domain.PurchasePlanSummary{}
	for _, p := range plans {
		summary.TotalPlannedOrderQty += p.TotalPlannedOrderQty
		summary.TotalProjectedStockoutUnits += p.ProjectedStockoutUnits
		summary.TotalStockoutDays += p.StockoutDays
	}
	summary.TotalPlannedOrderQty = domain.Round(summary.TotalPlannedOrderQty)
	summary.TotalProjectedStockoutUnits = domain.Round(summary.TotalProjectedStockoutUnits)

	return &domain.PurchasePlan{
		GeneratedAt: time.Now().UTC(),
		HorizonDays: horizon,
		ItemCount:   len(plans),
		Summary:     summary,
		Items:       plans,
	}, nil
}

func simulateItem(item domain.PlanningItem, horizon, maxOrders int, overstockFactor float64) (domain.PurchaseItemPlan, error) {
	if err := NormalizeItem(&item); err != nil {
		return domain.PurchaseItemPlan{}, err
	}
	stats, err := ResolveDemandStats(item)
	if err != nil {
		return domain.PurchaseItemPlan{}, err
	}
	policy, err := PolicyFor(item, stats)
	if err != nil {
		return domain.PurchaseItemPlan{}, err
	}

	forecast := buildForecastSeries(item, horizon, stats.MeanDailyDemand)

	// Scheduled receipts by arrival day. The quantity already on order
	// lands at max(0, leadTimeDays-1).
	receipts := map[int]float64{}
	if item.OnOrderInventory > 0 {
		inboundDay := max(0, item.LeadTimeDays-1)
		receipts[inboundDay] += item.OnOrderInventory
	}

	inventory := item.CurrentInventory
	orders := []domain.OrderLine{}
	totalForecastDemand := 0.0
	totalPlannedOrderQty := 0.0
	stockoutUnits := 0.0
	stockoutDays := 0
	overstockDays := 0

	for day := 0; day < horizon; day++ {
		inventory += receipts[day]
		dailyDemand := forecast[day]
		totalForecastDemand += dailyDemand
		inventory -= dailyDemand
		if inventory < 0 {
			stockoutUnits += -inventory
			stockoutDays++
			inventory = 0.0
		}
		if inventory > policy.TargetStockLevel*overstockFactor {
			overstockDays++
		}

		reviewDay := day%max(1, item.ReviewPeriodDays) == 0
		if !reviewDay || len(orders) >= maxOrders {
			continue
		}

		// Pipeline position: on hand plus everything still inbound.
		pipeline := inventory
		for arrivalDay, qty := range receipts {
			if arrivalDay > day {
				pipeline += qty
			}
		}

		if pipeline < policy.ReorderPoint {
			orderQty := ApplyOrderConstraints(policy.TargetStockLevel-pipeline, item)
			if orderQty > 0 {
				arrivalDay := day + item.LeadTimeDays
				receipts[arrivalDay] += orderQty
				totalPlannedOrderQty += orderQty
				orders = append(orders, domain.OrderLine{
					OrderDay:   day,
					ArrivalDay: arrivalDay,
					Quantity:   domain.Round(orderQty),
					Reason:     "Inventory position below reorder point",
				})
			}
		}
	}

	serviceLevelEstimate := clamp(1.0-float64(stockoutDays)/math.Max(1.0, float64(horizon)), 0.0, 1.0)
	riskScore := math.Max(
		clamp(stockoutUnits/math.Max(totalForecastDemand, 1.0), 0.0, 1.0),
		clamp(float64(overstockDays)/math.Max(1.0, float64(horizon)), 0.0, 1.0),
	)

	return domain.PurchaseItemPlan{
		ProductID:                item.ProductID,
		WarehouseID:              item.WarehouseID,
		TotalForecastDemand:      domain.Round(totalForecastDemand),
		TotalPlannedOrderQty:     domain.Round(totalPlannedOrderQty),
		ProjectedEndingInventory: domain.Round(inventory),
		ProjectedStockoutUnits:   domain.Round(stockoutUnits),
		StockoutDays:             stockoutDays,
		OverstockDays:            overstockDays,
		ServiceLevelEstimate:     domain.Round(serviceLevelEstimate),
		RiskLevel:                domain.RiskLevelFor(riskScore),
		Orders:                   orders,
	}, nil
}

// buildForecastSeries fits the supplied forecast to the horizon: use the
// values in order, pad with the resolved mean when shorter, truncate
// when longer.
func buildForecastSeries(item domain.PlanningItem, horizon int, fallbackMean float64) []float64 {
	series := make([]float64, horizon)
	for i := range series {
		if i < len(item.DemandForecast) {
			series[i] = item.DemandForecast[i]
		} else {
			series[i] = fallbackMean
		}
	}
	return series
}
