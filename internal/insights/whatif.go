package insights

import (
	"context"
	"fmt"
	"strings"

	"github.com/andresuchdata/demandcast/internal/domain"
)

// Predictor is the slice of the prediction provider the what-if
// evaluator needs.
type Predictor interface {
	Predict(ctx context.Context, input domain.ForecastInput) (domain.Prediction, error)
}

// RunWhatIf calls the provider once for the base input and once per
// scenario, in declaration order. Each scenario inherits unset fields
// from the base. Any provider failure aborts the whole evaluation; no
// partial scenario list is returned.
func RunWhatIf(ctx context.Context, predictor Predictor, req domain.WhatIfRequest) (*domain.WhatIfResult, error) {
	basePrediction, err := predictor.Predict(ctx, req.Base)
	if err != nil {
		return nil, err
	}

	results := make([]domain.ScenarioResult, 0, len(req.Scenarios))
	for i, scenario := range req.Scenarios {
		variant := applyScenario(req.Base, scenario)
		name := strings.TrimSpace(scenario.Name)
		if name == "" {
			name = fmt.Sprintf("scenario-%d", i+1)
		}

		prediction, err := predictor.Predict(ctx, variant)
		if err != nil {
			return nil, err
		}
		results = append(results, domain.ScenarioResult{
			Name:        name,
			Demand:      prediction.Demand,
			LowerBound:  prediction.LowerBound,
			UpperBound:  prediction.UpperBound,
			DemandDelta: domain.Round(prediction.Demand - basePrediction.Demand),
		})
	}

	return &domain.WhatIfResult{
		BaseDemand:     basePrediction.Demand,
		BaseLowerBound: basePrediction.LowerBound,
		BaseUpperBound: basePrediction.UpperBound,
		Scenarios:      results,
	}, nil
}

func applyScenario(base domain.ForecastInput, scenario domain.ScenarioOverride) domain.ForecastInput {
	variant := base
	if scenario.Date != nil {
		variant.Date = *scenario.Date
	}
	if scenario.Category != nil {
		variant.Category = *scenario.Category
	}
	if scenario.Region != nil {
		variant.Region = *scenario.Region
	}
	if scenario.InventoryLevel != nil {
		variant.InventoryLevel = *scenario.InventoryLevel
	}
	if scenario.UnitsSold != nil {
		variant.UnitsSold = *scenario.UnitsSold
	}
	if scenario.UnitsOrdered != nil {
		variant.UnitsOrdered = *scenario.UnitsOrdered
	}
	if scenario.Price != nil {
		variant.Price = *scenario.Price
	}
	if scenario.Discount != nil {
		variant.Discount = *scenario.Discount
	}
	if scenario.WeatherCondition != nil {
		variant.WeatherCondition = *scenario.WeatherCondition
	}
	if scenario.Promotion != nil {
		variant.Promotion = *scenario.Promotion
	}
	if scenario.CompetitorPricing != nil {
		variant.CompetitorPricing = *scenario.CompetitorPricing
	}
	if scenario.Seasonality != nil {
		variant.Seasonality = *scenario.Seasonality
	}
	if scenario.Epidemic != nil {
		variant.Epidemic = *scenario.Epidemic
	}
	return variant
}
