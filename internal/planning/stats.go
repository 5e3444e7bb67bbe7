// Package planning is the deterministic demand-planning engine: demand
// statistics, inventory policies, replenishment plans, purchase-plan
// simulation, and inventory exception detection. Everything here is
// stateless; all inputs arrive per call.
package planning

import (
	"math"

	"github.com/andresuchdata/demandcast/internal/domain"
	"github.com/andresuchdata/demandcast/internal/faults"
)

const eps = 1e-9

// ResolveDemandStats derives mean/std/CV of daily demand for an item.
// Explicit forecastMeanDaily/forecastStdDaily win over the forecast
// series, which wins over the history series. Statistics are population
// statistics (divide by n).
func ResolveDemandStats(item domain.PlanningItem) (domain.DemandStats, error) {
	var meanPtr, stdPtr *float64
	if item.ForecastMeanDaily != nil {
		v := *item.ForecastMeanDaily
		meanPtr = &v
	}
	if item.ForecastStdDaily != nil {
		v := *item.ForecastStdDaily
		stdPtr = &v
	}

	var source []float64
	if len(item.DemandForecast) > 0 {
		source = item.DemandForecast
	} else if len(item.DemandHistory) > 0 {
		source = item.DemandHistory
	}

	if meanPtr == nil && source != nil {
		m := mean(source)
		meanPtr = &m
	}
	if stdPtr == nil && source != nil {
		s := populationStd(source)
		stdPtr = &s
	}

	if meanPtr == nil || *meanPtr <= 0.0 {
		return domain.DemandStats{}, faults.New(faults.InputValidation,
			"item [%s@%s] requires a positive forecastMeanDaily or demand history",
			item.ProductID, item.WarehouseID)
	}

	m := *meanPtr
	var s float64
	if stdPtr == nil || *stdPtr < 0.0 {
		s = math.Max(0.0, m*0.25)
	} else {
		s = *stdPtr
	}

	cv := 0.0
	if m > eps {
		cv = s / m
	}
	return domain.DemandStats{MeanDailyDemand: m, StdDailyDemand: s, CV: cv}, nil
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0.0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func populationStd(values []float64) float64 {
	if len(values) == 0 {
		return 0.0
	}
	avg := mean(values)
	variance := 0.0
	for _, v := range values {
		variance += (v - avg) * (v - avg)
	}
	return math.Sqrt(variance / float64(len(values)))
}
