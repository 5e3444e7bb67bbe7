package insights

import (
	"math"
	"sort"
	"time"

	"github.com/andresuchdata/demandcast/internal/domain"
)

const explanationMethod = "surrogate_importance_weighted_delta"

const maxContributions = 12

// explanationExtractors covers the seven raw model inputs plus five
// date-derived features, matching the surrogate model's feature set.
func explanationExtractors() []featureExtractor {
	return []featureExtractor{
		{"Inventory Level", func(r domain.ForecastRecord) float64 { return float64(r.InventoryLevel) }},
		{"Units Ordered", func(r domain.ForecastRecord) float64 { return float64(r.UnitsOrdered) }},
		{"Price", func(r domain.ForecastRecord) float64 { return r.Price }},
		{"Discount", func(r domain.ForecastRecord) float64 { return r.Discount }},
		{"Promotion", func(r domain.ForecastRecord) float64 { return boolFeature(r.Promotion) }},
		{"Competitor Pricing", func(r domain.ForecastRecord) float64 { return r.CompetitorPricing }},
		{"Epidemic", func(r domain.ForecastRecord) float64 { return boolFeature(r.Epidemic) }},
		{"year", func(r domain.ForecastRecord) float64 { return float64(r.ForecastDate.Year()) }},
		{"month", func(r domain.ForecastRecord) float64 { return float64(r.ForecastDate.Month()) }},
		{"day", func(r domain.ForecastRecord) float64 { return float64(r.ForecastDate.Day()) }},
		{"week", func(r domain.ForecastRecord) float64 {
			_, week := r.ForecastDate.ISOWeek()
			return float64(week)
		}},
		{"dayofweek", func(r domain.ForecastRecord) float64 { return float64(isoWeekday(r.ForecastDate)) }},
		{"quarter", func(r domain.ForecastRecord) float64 { return float64((int(r.ForecastDate.Month())-1)/3 + 1) }},
	}
}

// BuildExplanation attributes a single prediction to its features via
// importance-weighted standardized deltas against the historical
// baseline. Missing importances default to zero, which degrades the
// attribution but never fails it.
func BuildExplanation(record domain.ForecastRecord, history []domain.ForecastRecord, importances map[string]float64) *domain.Explanation {
	contributions := make([]domain.FeatureContribution, 0, len(explanationExtractors()))
	for _, extractor := range explanationExtractors() {
		value := extractor.extract(record)
		baseline := recordMean(history, extractor.extract)
		std := recordStd(history, extractor.extract)
		importance := importances[extractor.name]

		normalizedDelta := value - baseline
		if std > 0 {
			normalizedDelta = (value - baseline) / std
		}
		contribution := importance * normalizedDelta

		contributions = append(contributions, domain.FeatureContribution{
			Feature:      extractor.name,
			Value:        domain.Round(value),
			Baseline:     domain.Round(baseline),
			Importance:   domain.Round(importance),
			Contribution: domain.Round(contribution),
		})
	}

	sort.SliceStable(contributions, func(i, j int) bool {
		return math.Abs(contributions[i].Contribution) > math.Abs(contributions[j].Contribution)
	})
	if len(contributions) > maxContributions {
		contributions = contributions[:maxContributions]
	}

	return &domain.Explanation{
		PredictionID:  record.ID,
		Demand:        record.PredictedDemand,
		Method:        explanationMethod,
		GeneratedAt:   time.Now().UTC(),
		Contributions: contributions,
	}
}

// isoWeekday maps Sunday=0..Saturday=6 onto Monday=1..Sunday=7.
func isoWeekday(d domain.Date) int {
	return (int(d.Weekday())+6)%7 + 1
}
