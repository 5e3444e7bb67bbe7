package planning

import (
	"math"

	"github.com/andresuchdata/demandcast/internal/domain"
	"github.com/andresuchdata/demandcast/internal/faults"
)

// Request defaults match the documented API contract; zero values on
// incoming JSON mean "use the default".
const (
	DefaultOverstockFactor  = 1.8
	DefaultHorizonDays      = 30
	DefaultMaxOrdersPerItem = 12
	defaultLeadTimeDays     = 1
	defaultReviewPeriodDays = 7
	defaultServiceLevel     = 0.95
)

const (
	minServiceLevel = 0.50
	maxServiceLevel = 0.999
)

// NormalizeItem fills per-item defaults in place. A service level below
// 0.50 would produce a negative safety stock, so explicit values are
// held to the [0.50, 0.999] contract range.
func NormalizeItem(item *domain.PlanningItem) error {
	if item.LeadTimeDays < 1 {
		item.LeadTimeDays = defaultLeadTimeDays
	}
	if item.ReviewPeriodDays < 1 {
		item.ReviewPeriodDays = defaultReviewPeriodDays
	}
	if item.ServiceLevel == 0 {
		item.ServiceLevel = defaultServiceLevel
	}
	if item.ServiceLevel < minServiceLevel || item.ServiceLevel > maxServiceLevel {
		return faults.New(faults.InputValidation,
			"serviceLevel for item %s must be between %.2f and %.3f", item.ProductID, minServiceLevel, maxServiceLevel)
	}
	return nil
}

// PolicyFor computes the replenishment policy for one item. The result
// satisfies targetStockLevel >= reorderPoint >= safetyStock >= 0.
func PolicyFor(item domain.PlanningItem, stats domain.DemandStats) (domain.InventoryPolicy, error) {
	z, err := InverseNormalCDF(item.ServiceLevel)
	if err != nil {
		return domain.InventoryPolicy{}, err
	}
	protectionDays := float64(item.LeadTimeDays + item.ReviewPeriodDays)
	safetyStock := z * stats.StdDailyDemand * math.Sqrt(math.Max(1.0, protectionDays))
	reorderPoint := stats.MeanDailyDemand*float64(item.LeadTimeDays) + safetyStock
	targetStock := stats.MeanDailyDemand*protectionDays + safetyStock
	return domain.InventoryPolicy{
		SafetyStock:      safetyStock,
		ReorderPoint:     reorderPoint,
		TargetStockLevel: targetStock,
	}, nil
}

// ApplyOrderConstraints clamps a proposed order quantity to the item's
// business constraints, in fixed order: minimum floor, round up to the
// order multiple, cap at the maximum.
func ApplyOrderConstraints(proposedQty float64, item domain.PlanningItem) float64 {
	if proposedQty <= 0.0 {
		return 0.0
	}
	qty := proposedQty
	if item.MinOrderQuantity > 0.0 && qty < item.MinOrderQuantity {
		qty = item.MinOrderQuantity
	}
	if item.OrderMultiple != nil && *item.OrderMultiple > 0.0 {
		multiple := *item.OrderMultiple
		qty = math.Ceil(qty/multiple) * multiple
	}
	if item.MaxOrderQuantity != nil && *item.MaxOrderQuantity > 0.0 {
		qty = math.Min(qty, *item.MaxOrderQuantity)
	}
	return qty
}

func clamp(value, min, max float64) float64 {
	return math.Max(min, math.Min(max, value))
}
