// Package insights holds the analytics computed over historical
// forecast records: accuracy and backtest metrics, drift detection,
// feature-attribution explanations, and what-if scenario evaluation.
// Like the planning engine, everything is stateless and deterministic
// given its inputs.
package insights

import (
	"math"
	"sort"

	"github.com/andresuchdata/demandcast/internal/domain"
	"github.com/andresuchdata/demandcast/internal/faults"
)

// ComputeMetrics derives MAE/RMSE/MAPE over records with a recorded
// actual. MAPE averages only records with a non-zero actual; with no
// qualifying record it stays nil.
func ComputeMetrics(records []domain.ForecastRecord) domain.Metrics {
	absErrorSum := 0.0
	squaredErrorSum := 0.0
	apeSum := 0.0
	apeCount := 0
	sampleCount := 0

	for _, r := range records {
		if r.ActualDemand == nil {
			continue
		}
		actual := *r.ActualDemand
		err := r.PredictedDemand - actual
		absErrorSum += math.Abs(err)
		squaredErrorSum += err * err
		if actual != 0.0 {
			apeSum += math.Abs(err / actual)
			apeCount++
		}
		sampleCount++
	}

	if sampleCount == 0 {
		return domain.Metrics{SampleCount: 0}
	}

	n := float64(sampleCount)
	mae := domain.Round(absErrorSum / n)
	rmse := domain.Round(math.Sqrt(squaredErrorSum / n))
	metrics := domain.Metrics{SampleCount: sampleCount, MAE: &mae, RMSE: &rmse}
	if apeCount > 0 {
		mape := domain.Round((apeSum / float64(apeCount)) * 100.0)
		metrics.MAPE = &mape
	}
	return metrics
}

// BuildBacktestReport computes overall metrics plus per-segment metrics
// partitioned by (category, region), sorted by category then region.
func BuildBacktestReport(records []domain.ForecastRecord, req domain.BacktestRequest) (*domain.BacktestReport, error) {
	if req.FromDate.After(req.ToDate) {
		return nil, faults.New(faults.InputValidation, "fromDate must be before or equal to toDate")
	}

	type segmentKey struct {
		category string
		region   string
	}
	grouped := map[segmentKey][]domain.ForecastRecord{}
	for _, r := range records {
		key := segmentKey{category: r.Category, region: r.Region}
		grouped[key] = append(grouped[key], r)
	}

	segments := make([]domain.SegmentMetrics, 0, len(grouped))
	for key, group := range grouped {
		segments = append(segments, domain.SegmentMetrics{
			Category: key.category,
			Region:   key.region,
			Metrics:  ComputeMetrics(group),
		})
	}
	sort.Slice(segments, func(i, j int) bool {
		if segments[i].Category != segments[j].Category {
			return segments[i].Category < segments[j].Category
		}
		return segments[i].Region < segments[j].Region
	})

	return &domain.BacktestReport{
		Metrics:  ComputeMetrics(records),
		FromDate: req.FromDate,
		ToDate:   req.ToDate,
		Category: req.Category,
		Region:   req.Region,
		Segments: segments,
	}, nil
}
