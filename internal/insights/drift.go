package insights

import (
	"math"
	"sort"

	"github.com/andresuchdata/demandcast/internal/domain"
)

const driftThreshold = 1.0

// DriftWindows are the two non-overlapping calendar windows compared by
// the drift detector; the baseline window immediately precedes the
// recent one.
type DriftWindows struct {
	BaselineFrom domain.Date
	BaselineTo   domain.Date
	RecentFrom   domain.Date
	RecentTo     domain.Date
}

// ComputeDriftWindows anchors the recent window at today. Non-positive
// day counts fall back to 30 baseline / 7 recent days.
func ComputeDriftWindows(today domain.Date, baselineDays, recentDays int) DriftWindows {
	if baselineDays < 1 {
		baselineDays = 30
	}
	if recentDays < 1 {
		recentDays = 7
	}
	recentTo := today
	recentFrom := recentTo.AddDays(-(recentDays - 1))
	baselineTo := recentFrom.AddDays(-1)
	baselineFrom := baselineTo.AddDays(-(baselineDays - 1))
	return DriftWindows{
		BaselineFrom: baselineFrom,
		BaselineTo:   baselineTo,
		RecentFrom:   recentFrom,
		RecentTo:     recentTo,
	}
}

type featureExtractor struct {
	name    string
	extract func(domain.ForecastRecord) float64
}

func driftExtractors() []featureExtractor {
	return []featureExtractor{
		{"inventoryLevel", func(r domain.ForecastRecord) float64 { return float64(r.InventoryLevel) }},
		{"unitsOrdered", func(r domain.ForecastRecord) float64 { return float64(r.UnitsOrdered) }},
		{"price", func(r domain.ForecastRecord) float64 { return r.Price }},
		{"discount", func(r domain.ForecastRecord) float64 { return r.Discount }},
		{"competitorPricing", func(r domain.ForecastRecord) float64 { return r.CompetitorPricing }},
		{"promotion", func(r domain.ForecastRecord) float64 { return boolFeature(r.Promotion) }},
		{"epidemic", func(r domain.ForecastRecord) float64 { return boolFeature(r.Epidemic) }},
	}
}

// BuildDriftSummary scores the standardized mean shift of the
// prediction and each tracked feature between the two windows. An empty
// window yields score 0 and no detection.
func BuildDriftSummary(baseline, recent []domain.ForecastRecord, windows DriftWindows) *domain.DriftSummary {
	predScore := driftScore(baseline, recent, func(r domain.ForecastRecord) float64 { return r.PredictedDemand })

	featureDrift := make([]domain.FeatureDrift, 0, len(driftExtractors()))
	for _, extractor := range driftExtractors() {
		score := driftScore(baseline, recent, extractor.extract)
		featureDrift = append(featureDrift, domain.FeatureDrift{
			Feature:       extractor.name,
			BaselineMean:  domain.Round(recordMean(baseline, extractor.extract)),
			RecentMean:    domain.Round(recordMean(recent, extractor.extract)),
			DriftScore:    domain.Round(score),
			DriftDetected: score >= driftThreshold,
		})
	}
	sort.SliceStable(featureDrift, func(i, j int) bool {
		return featureDrift[i].DriftScore > featureDrift[j].DriftScore
	})

	return &domain.DriftSummary{
		BaselineFrom:            windows.BaselineFrom,
		BaselineTo:              windows.BaselineTo,
		RecentFrom:              windows.RecentFrom,
		RecentTo:                windows.RecentTo,
		BaselineSampleSize:      len(baseline),
		RecentSampleSize:        len(recent),
		PredictionDriftScore:    domain.Round(predScore),
		PredictionDriftDetected: predScore >= driftThreshold,
		FeatureDrift:            featureDrift,
	}
}

func driftScore(baseline, recent []domain.ForecastRecord, extract func(domain.ForecastRecord) float64) float64 {
	if len(baseline) == 0 || len(recent) == 0 {
		return 0.0
	}
	baselineMean := recordMean(baseline, extract)
	baselineStd := recordStd(baseline, extract)
	recentMean := recordMean(recent, extract)
	denom := 1.0
	if baselineStd > 1e-9 {
		denom = baselineStd
	}
	return math.Abs(recentMean-baselineMean) / denom
}

func recordMean(records []domain.ForecastRecord, extract func(domain.ForecastRecord) float64) float64 {
	if len(records) == 0 {
		return 0.0
	}
	sum := 0.0
	for _, r := range records {
		sum += extract(r)
	}
	return sum / float64(len(records))
}

// recordStd is the population standard deviation; fewer than two
// records have no spread.
func recordStd(records []domain.ForecastRecord, extract func(domain.ForecastRecord) float64) float64 {
	if len(records) < 2 {
		return 0.0
	}
	avg := recordMean(records, extract)
	variance := 0.0
	for _, r := range records {
		v := extract(r)
		variance += (v - avg) * (v - avg)
	}
	return math.Sqrt(variance / float64(len(records)))
}

func boolFeature(b bool) float64 {
	if b {
		return 1.0
	}
	return 0.0
}
