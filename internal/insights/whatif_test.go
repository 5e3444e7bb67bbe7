package insights

import (
	"context"
	"testing"

	"github.com/andresuchdata/demandcast/internal/domain"
	"github.com/andresuchdata/demandcast/internal/faults"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedPredictor returns canned demands keyed by price, recording
// call order.
type scriptedPredictor struct {
	demandByPrice map[float64]float64
	calls         []float64
	failOnPrice   *float64
}

func (p *scriptedPredictor) Predict(_ context.Context, input domain.ForecastInput) (domain.Prediction, error) {
	p.calls = append(p.calls, input.Price)
	if p.failOnPrice != nil && input.Price == *p.failOnPrice {
		return domain.Prediction{}, faults.New(faults.ProviderUnavailable, "prediction service timeout")
	}
	return domain.Prediction{Demand: p.demandByPrice[input.Price]}, nil
}

func pricePtr(v float64) *float64 { return &v }

func baseInput() domain.ForecastInput {
	date, _ := domain.ParseDate("2026-06-01")
	return domain.ForecastInput{
		Date:     date,
		Category: "Electronics",
		Region:   "North",
		Price:    10,
	}
}

func TestRunWhatIfDeltasAgainstBase(t *testing.T) {
	predictor := &scriptedPredictor{demandByPrice: map[float64]float64{
		10: 100.0,
		8:  120.5,
		12: 80.25,
	}}

	result, err := RunWhatIf(context.Background(), predictor, domain.WhatIfRequest{
		Base: baseInput(),
		Scenarios: []domain.ScenarioOverride{
			{Name: "discounted", Price: pricePtr(8)},
			{Name: "premium", Price: pricePtr(12)},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 100.0, result.BaseDemand)
	require.Len(t, result.Scenarios, 2)
	assert.Equal(t, "discounted", result.Scenarios[0].Name)
	assert.InDelta(t, 20.5, result.Scenarios[0].DemandDelta, 1e-9)
	assert.Equal(t, "premium", result.Scenarios[1].Name)
	assert.InDelta(t, -19.75, result.Scenarios[1].DemandDelta, 1e-9)

	// Base first, then scenarios in declaration order.
	assert.Equal(t, []float64{10, 8, 12}, predictor.calls)
}

func TestRunWhatIfNamesBlankScenarios(t *testing.T) {
	predictor := &scriptedPredictor{demandByPrice: map[float64]float64{10: 100, 8: 90}}

	result, err := RunWhatIf(context.Background(), predictor, domain.WhatIfRequest{
		Base: baseInput(),
		Scenarios: []domain.ScenarioOverride{
			{Name: "  ", Price: pricePtr(8)},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "scenario-1", result.Scenarios[0].Name)
}

func TestRunWhatIfScenarioInheritsBase(t *testing.T) {
	promo := true
	base := baseInput()
	variant := applyScenario(base, domain.ScenarioOverride{Promotion: &promo})

	assert.Equal(t, base.Category, variant.Category)
	assert.Equal(t, base.Region, variant.Region)
	assert.Equal(t, base.Price, variant.Price)
	assert.True(t, variant.Promotion)
}

func TestRunWhatIfAbortsOnProviderFailure(t *testing.T) {
	predictor := &scriptedPredictor{
		demandByPrice: map[float64]float64{10: 100},
		failOnPrice:   pricePtr(8),
	}

	_, err := RunWhatIf(context.Background(), predictor, domain.WhatIfRequest{
		Base: baseInput(),
		Scenarios: []domain.ScenarioOverride{
			{Price: pricePtr(8)},
			{Price: pricePtr(12)},
		},
	})
	require.Error(t, err)
	assert.True(t, faults.IsKind(err, faults.ProviderUnavailable))
	// The failing scenario stops the evaluation.
	assert.Equal(t, []float64{10, 8}, predictor.calls)
}
