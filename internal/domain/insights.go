package domain

import (
	"time"

	"github.com/google/uuid"
)

// Metrics are forecast accuracy metrics over a record set. All values
// are nil when SampleCount is zero; MAPE is additionally nil when no
// record has a non-zero actual.
type Metrics struct {
	SampleCount int      `json:"sampleCount"`
	MAE         *float64 `json:"mae"`
	RMSE        *float64 `json:"rmse"`
	MAPE        *float64 `json:"mape"`
}

type AccuracyReport struct {
	Metrics
	FromDate *Date   `json:"fromDate,omitempty"`
	ToDate   *Date   `json:"toDate,omitempty"`
	Category *string `json:"category,omitempty"`
	Region   *string `json:"region,omitempty"`
}

type BacktestRequest struct {
	FromDate Date    `json:"fromDate" binding:"required"`
	ToDate   Date    `json:"toDate" binding:"required"`
	Category *string `json:"category,omitempty"`
	Region   *string `json:"region,omitempty"`
}

type SegmentMetrics struct {
	Category string `json:"category"`
	Region   string `json:"region"`
	Metrics
}

type BacktestReport struct {
	Metrics
	FromDate Date             `json:"fromDate"`
	ToDate   Date             `json:"toDate"`
	Category *string          `json:"category,omitempty"`
	Region   *string          `json:"region,omitempty"`
	Segments []SegmentMetrics `json:"segments"`
}

// FeatureDrift is the windowed mean-shift result for one feature.
type FeatureDrift struct {
	Feature       string  `json:"feature"`
	BaselineMean  float64 `json:"baselineMean"`
	RecentMean    float64 `json:"recentMean"`
	DriftScore    float64 `json:"driftScore"`
	DriftDetected bool    `json:"driftDetected"`
}

type DriftSummary struct {
	BaselineFrom            Date           `json:"baselineFrom"`
	BaselineTo              Date           `json:"baselineTo"`
	RecentFrom              Date           `json:"recentFrom"`
	RecentTo                Date           `json:"recentTo"`
	BaselineSampleSize      int            `json:"baselineSampleSize"`
	RecentSampleSize        int            `json:"recentSampleSize"`
	PredictionDriftScore    float64        `json:"predictionDriftScore"`
	PredictionDriftDetected bool           `json:"predictionDriftDetected"`
	FeatureDrift            []FeatureDrift `json:"featureDrift"`
}

// FeatureContribution is one feature's share of a surrogate explanation.
type FeatureContribution struct {
	Feature      string  `json:"feature"`
	Value        float64 `json:"value"`
	Baseline     float64 `json:"baseline"`
	Importance   float64 `json:"importance"`
	Contribution float64 `json:"contribution"`
}

type Explanation struct {
	PredictionID  uuid.UUID             `json:"predictionId"`
	Demand        float64               `json:"demand"`
	Method        string                `json:"method"`
	GeneratedAt   time.Time             `json:"generatedAt"`
	Contributions []FeatureContribution `json:"contributions"`
}

// ScenarioOverride holds per-scenario field overrides; nil fields
// inherit the base input.
type ScenarioOverride struct {
	Name              string   `json:"name"`
	Date              *Date    `json:"date,omitempty"`
	Category          *string  `json:"category,omitempty"`
	Region            *string  `json:"region,omitempty"`
	InventoryLevel    *int     `json:"inventoryLevel,omitempty"`
	UnitsSold         *int     `json:"unitsSold,omitempty"`
	UnitsOrdered      *int     `json:"unitsOrdered,omitempty"`
	Price             *float64 `json:"price,omitempty"`
	Discount          *float64 `json:"discount,omitempty"`
	WeatherCondition  *string  `json:"weatherCondition,omitempty"`
	Promotion         *bool    `json:"promotion,omitempty"`
	CompetitorPricing *float64 `json:"competitorPricing,omitempty"`
	Seasonality       *string  `json:"seasonality,omitempty"`
	Epidemic          *bool    `json:"epidemic,omitempty"`
}

type WhatIfRequest struct {
	Base      ForecastInput      `json:"base" binding:"required"`
	Scenarios []ScenarioOverride `json:"scenarios" binding:"required,min=1"`
}

type ScenarioResult struct {
	Name        string   `json:"name"`
	Demand      float64  `json:"demand"`
	LowerBound  *float64 `json:"lowerBound,omitempty"`
	UpperBound  *float64 `json:"upperBound,omitempty"`
	DemandDelta float64  `json:"demandDelta"`
}

type WhatIfResult struct {
	BaseDemand     float64          `json:"baseDemand"`
	BaseLowerBound *float64         `json:"baseLowerBound,omitempty"`
	BaseUpperBound *float64         `json:"baseUpperBound,omitempty"`
	Scenarios      []ScenarioResult `json:"scenarios"`
}
