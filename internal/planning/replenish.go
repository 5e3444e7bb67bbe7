package planning

import (
	"context"
	"math"
	"time"

	"github.com/andresuchdata/demandcast/internal/domain"
	"golang.org/x/sync/errgroup"
)

// BuildReplenishmentPlan produces a single-snapshot policy and risk
// scoring per item. Items are independent and evaluated in parallel;
// output order matches input order.
func BuildReplenishmentPlan(ctx context.Context, req domain.ReplenishmentPlanRequest) (*domain.ReplenishmentPlan, error) {
	overstockFactor := req.OverstockFactor
	if overstockFactor < 1.0 {
		overstockFactor = DefaultOverstockFactor
	}

	plans := make([]domain.ReplenishmentItemPlan, len(req.Items))
	g, _ := errgroup.WithContext(ctx)
	for i, item := range req.Items {
		i, item := i, item
		g.Go(func() error {
			plan, err := buildReplenishmentItem(item, overstockFactor)
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

	summary := domain.ReplenishmentSummary{}
	totalQty := 0.0
	for _, p := range plans {
		totalQty += p.RecommendedOrderQuantity
		switch p.RiskLevel {
		case domain.RiskHigh:
			summary.HighRiskItems++
		case domain.RiskMedium:
			summary.MediumRiskItems++
		default:
			summary.LowRiskItems++
		}
	}
	summary.TotalRecommendedOrderQty = domain.Round(totalQty)

	return &domain.ReplenishmentPlan{
		GeneratedAt: time.Now().UTC(),
		ItemCount:   len(plans),
		Summary:     summary,
		Items:       plans,
	}, nil
}

func buildReplenishmentItem(item domain.PlanningItem, overstockFactor float64) (domain.ReplenishmentItemPlan, error) {
	if err := NormalizeItem(&item); err != nil {
		return domain.ReplenishmentItemPlan{}, err
	}
	stats, err := ResolveDemandStats(item)
	if err != nil {
		return domain.ReplenishmentItemPlan{}, err
	}
	policy, err := PolicyFor(item, stats)
	if err != nil {
		return domain.ReplenishmentItemPlan{}, err
	}

	inventoryPosition := item.CurrentInventory + item.OnOrderInventory
	recommended := ApplyOrderConstraints(math.Max(0.0, policy.TargetStockLevel-inventoryPosition), item)
	projectedCover := inventoryPosition / math.Max(eps, stats.MeanDailyDemand)

	stockoutRisk := clamp((policy.ReorderPoint-inventoryPosition)/math.Max(policy.ReorderPoint, 1.0), 0.0, 1.0)
	overstockCeiling := policy.TargetStockLevel * overstockFactor
	overstockRisk := clamp((inventoryPosition-overstockCeiling)/math.Max(overstockCeiling, 1.0), 0.0, 1.0)

	return domain.ReplenishmentItemPlan{
		ProductID:                item.ProductID,
		WarehouseID:              item.WarehouseID,
		MeanDailyDemand:          domain.Round(stats.MeanDailyDemand),
		DemandStdDev:             domain.Round(stats.StdDailyDemand),
		DemandCV:                 domain.Round(stats.CV),
		SafetyStock:              domain.Round(policy.SafetyStock),
		ReorderPoint:             domain.Round(policy.ReorderPoint),
		TargetStockLevel:         domain.Round(policy.TargetStockLevel),
		InventoryPosition:        domain.Round(inventoryPosition),
		ProjectedCoverDays:       domain.Round(projectedCover),
		RecommendedOrderQuantity: domain.Round(recommended),
		RiskLevel:                domain.RiskLevelFor(math.Max(stockoutRisk, overstockRisk)),
		StockoutRiskScore:        domain.Round(stockoutRisk),
		OverstockRiskScore:       domain.Round(overstockRisk),
	}, nil
}
