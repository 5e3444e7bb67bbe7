// backend internal/domain: core entities shared across services.
package domain

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// ForecastRecord is a persisted demand prediction together with the
// inputs that produced it. Records are read-only to the analytics
// engine; actualDemand is the only field ever updated, exactly once.
type ForecastRecord struct {
	ID                uuid.UUID `json:"predictionId" db:"id"`
	ForecastDate      Date      `json:"forecastDate" db:"forecast_date"`
	Category          string    `json:"category" db:"category"`
	Region            string    `json:"region" db:"region"`
	InventoryLevel    int       `json:"inventoryLevel" db:"inventory_level"`
	UnitsOrdered      int       `json:"unitsOrdered" db:"units_ordered"`
	Price             float64   `json:"price" db:"price"`
	Discount          float64   `json:"discount" db:"discount"`
	WeatherCondition  string    `json:"weatherCondition" db:"weather_condition"`
	Promotion         bool      `json:"promotion" db:"promotion"`
	CompetitorPricing float64   `json:"competitorPricing" db:"competitor_pricing"`
	Seasonality       string    `json:"seasonality" db:"seasonality"`
	Epidemic          bool      `json:"epidemic" db:"epidemic"`
	PredictedDemand   float64   `json:"predictedDemand" db:"predicted_demand"`
	LowerBound        *float64  `json:"lowerBound,omitempty" db:"lower_bound"`
	UpperBound        *float64  `json:"upperBound,omitempty" db:"upper_bound"`
	ActualDemand      *float64  `json:"actualDemand,omitempty" db:"actual_demand"`
	CreatedAt         time.Time `json:"createdAt" db:"created_at"`
	RequestID         string    `json:"requestId" db:"request_id"`
}

// ForecastInput is the raw feature vector sent to the prediction
// provider. UnitsSold feeds the model but is not persisted.
type ForecastInput struct {
	Date              Date    `json:"date" binding:"required"`
	Category          string  `json:"category" binding:"required"`
	Region            string  `json:"region" binding:"required"`
	InventoryLevel    int     `json:"inventoryLevel"`
	UnitsSold         int     `json:"unitsSold"`
	UnitsOrdered      int     `json:"unitsOrdered"`
	Price             float64 `json:"price"`
	Discount          float64 `json:"discount"`
	WeatherCondition  string  `json:"weatherCondition"`
	Promotion         bool    `json:"promotion"`
	CompetitorPricing float64 `json:"competitorPricing"`
	Seasonality       string  `json:"seasonality"`
	Epidemic          bool    `json:"epidemic"`
}

// RecordFilter narrows record lookups for accuracy and history queries.
// Nil fields mean "no constraint".
type RecordFilter struct {
	Category *string
	Region   *string
	From     *Date
	To       *Date
}

// Round truncates a computed value to 4 decimal places. Applied at
// response construction only, never mid-calculation.
func Round(v float64) float64 {
	return math.Round(v*10000.0) / 10000.0
}

func RoundPtr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	r := Round(*v)
	return &r
}
