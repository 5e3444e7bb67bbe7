package planning

import (
	"math"
	"sort"
	"time"

	"github.com/andresuchdata/demandcast/internal/domain"
	"github.com/andresuchdata/demandcast/internal/faults"
)

const (
	stockoutRecommendation  = "Increase replenishment frequency or expedite inbound supply."
	overstockRecommendation = "Reduce order quantity or rebalance inventory across warehouses."
)

// ValidateExceptionScan checks the scan parameters. Rejection happens
// before any record is touched.
func ValidateExceptionScan(params domain.ExceptionScanParams) error {
	if params.From.After(params.To) {
		return faults.New(faults.InputValidation, "fromDate must be before or equal to toDate")
	}
	if params.StockoutCoverageDays < 1 || params.OverstockCoverageDays < 1 || params.Limit < 1 {
		return faults.New(faults.InputValidation, "coverage thresholds and limit must be >= 1")
	}
	return nil
}

// DetectExceptions scans forecast records for stockout and overstock
// risk. A record may emit zero, one, or both exception types. Results
// are sorted by descending risk score and truncated to the limit.
func DetectExceptions(records []domain.ForecastRecord, params domain.ExceptionScanParams) (*domain.InventoryExceptionReport, error) {
	if err := ValidateExceptionScan(params); err != nil {
		return nil, err
	}

	exceptions := []domain.ExceptionItem{}
	for _, record := range records {
		inventoryPosition := float64(record.InventoryLevel + record.UnitsOrdered)

		worstDemand := record.PredictedDemand
		if record.UpperBound != nil {
			worstDemand = *record.UpperBound
		}
		worstDemand = math.Max(eps, worstDemand)

		bestDemand := record.PredictedDemand
		if record.LowerBound != nil {
			bestDemand = *record.LowerBound
		}
		bestDemand = math.Max(eps, bestDemand)

		stockoutCoverage := inventoryPosition / worstDemand
		overstockCoverage := inventoryPosition / bestDemand

		stockoutThreshold := float64(params.StockoutCoverageDays)
		if stockoutCoverage < stockoutThreshold {
			score := clamp((stockoutThreshold-stockoutCoverage)/stockoutThreshold, 0.0, 1.0)
			exceptions = append(exceptions, toException(record, inventoryPosition, stockoutCoverage,
				score, domain.StockoutRisk, stockoutRecommendation))
		}

		overstockThreshold := float64(params.OverstockCoverageDays)
		if overstockCoverage > overstockThreshold {
			score := clamp((overstockCoverage-overstockThreshold)/overstockThreshold, 0.0, 1.0)
			exceptions = append(exceptions, toException(record, inventoryPosition, overstockCoverage,
				score, domain.OverstockRisk, overstockRecommendation))
		}
	}

	sort.SliceStable(exceptions, func(i, j int) bool {
		return exceptions[i].RiskScore > exceptions[j].RiskScore
	})
	if len(exceptions) > params.Limit {
		exceptions = exceptions[:params.Limit]
	}

	return &domain.InventoryExceptionReport{
		GeneratedAt:    time.Now().UTC(),
		FromDate:       params.From,
		ToDate:         params.To,
		ExceptionCount: len(exceptions),
		Exceptions:     exceptions,
	}, nil
}

func toException(record domain.ForecastRecord, inventoryPosition, coverageDays, riskScore float64,
	exceptionType domain.ExceptionType, recommendation string) domain.ExceptionItem {
	return domain.ExceptionItem{
		PredictionID:      record.ID,
		ProductID:         record.Category,
		WarehouseID:       record.Region,
		Category:          record.Category,
		Region:            record.Region,
		ForecastDate:      record.ForecastDate,
		Type:              exceptionType,
		RiskLevel:         domain.RiskLevelFor(riskScore),
		PredictedDemand:   domain.Round(record.PredictedDemand),
		InventoryPosition: domain.Round(inventoryPosition),
		CoverageDays:      domain.Round(coverageDays),
		RiskScore:         domain.Round(riskScore),
		Recommendation:    recommendation,
	}
}
