package domain

import (
	"time"

	"github.com/google/uuid"
)

// RiskLevel buckets a [0,1] risk score.
type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

// RiskLevelFor maps a risk score to its bucket.
func RiskLevelFor(score float64) RiskLevel {
	switch {
	case score >= 0.66:
		return RiskHigh
	case score >= 0.33:
		return RiskMedium
	default:
		return RiskLow
	}
}

// PlanningItem describes one product/warehouse position to plan for.
// Constructed per call, never persisted.
type PlanningItem struct {
	ProductID         string    `json:"productId" binding:"required"`
	WarehouseID       string    `json:"warehouseId" binding:"required"`
	CurrentInventory  float64   `json:"currentInventory"`
	OnOrderInventory  float64   `json:"onOrderInventory"`
	LeadTimeDays      int       `json:"leadTimeDays"`
	ReviewPeriodDays  int       `json:"reviewPeriodDays"`
	ServiceLevel      float64   `json:"serviceLevel"`
	MinOrderQuantity  float64   `json:"minOrderQuantity"`
	MaxOrderQuantity  *float64  `json:"maxOrderQuantity,omitempty"`
	OrderMultiple     *float64  `json:"orderMultiple,omitempty"`
	DemandHistory     []float64 `json:"demandHistory,omitempty"`
	DemandForecast    []float64 `json:"demandForecast,omitempty"`
	ForecastMeanDaily *float64  `json:"forecastMeanDaily,omitempty"`
	ForecastStdDaily  *float64  `json:"forecastStdDaily,omitempty"`
}

// DemandStats are population statistics of daily demand for one item.
type DemandStats struct {
	MeanDailyDemand float64
	StdDailyDemand  float64
	CV              float64
}

// InventoryPolicy is the derived replenishment policy.
// Invariant: TargetStockLevel >= ReorderPoint >= SafetyStock >= 0.
type InventoryPolicy struct {
	SafetyStock      float64
	ReorderPoint     float64
	TargetStockLevel float64
}

// ReplenishmentPlanRequest is a single-snapshot planning request.
type ReplenishmentPlanRequest struct {
	Items           []PlanningItem `json:"items" binding:"required,min=1,dive"`
	OverstockFactor float64        `json:"overstockFactor"`
}

type ReplenishmentItemPlan struct {
	ProductID                string    `json:"productId"`
	WarehouseID              string    `json:"warehouseId"`
	MeanDailyDemand          float64   `json:"meanDailyDemand"`
	DemandStdDev             float64   `json:"demandStdDev"`
	DemandCV                 float64   `json:"demandCv"`
	SafetyStock              float64   `json:"safetyStock"`
	ReorderPoint             float64   `json:"reorderPoint"`
	TargetStockLevel         float64   `json:"targetStockLevel"`
	InventoryPosition        float64   `json:"inventoryPosition"`
	ProjectedCoverDays       float64   `json:"projectedCoverDays"`
	RecommendedOrderQuantity float64   `json:"recommendedOrderQuantity"`
	RiskLevel                RiskLevel `json:"riskLevel"`
	StockoutRiskScore        float64   `json:"stockoutRiskScore"`
	OverstockRiskScore       float64   `json:"overstockRiskScore"`
}

type ReplenishmentSummary struct {
	TotalRecommendedOrderQty float64 `json:"totalRecommendedOrderQty"`
	HighRiskItems            int     `json:"highRiskItems"`
	MediumRiskItems          int     `json:"mediumRiskItems"`
	LowRiskItems             int     `json:"lowRiskItems"`
}

type ReplenishmentPlan struct {
	GeneratedAt time.Time               `json:"generatedAt"`
	ItemCount   int                     `json:"itemCount"`
	Summary     ReplenishmentSummary    `json:"summary"`
	Items       []ReplenishmentItemPlan `json:"items"`
}

// PurchasePlanRequest drives the multi-day order schedule simulation.
type PurchasePlanRequest struct {
	Items            []PlanningItem `json:"items" binding:"required,min=1,dive"`
	HorizonDays      int            `json:"horizonDays"`
	OverstockFactor  float64        `json:"overstockFactor"`
	MaxOrdersPerItem int            `json:"maxOrdersPerItem"`
}

// OrderLine is one planned order in the simulated schedule.
type OrderLine struct {
	OrderDay   int     `json:"orderDay"`
	ArrivalDay int     `json:"arrivalDay"`
	Quantity   float64 `json:"quantity"`
	Reason     string  `json:"reason"`
}

type PurchaseItemPlan struct {
	ProductID                string      `json:"productId"`
	WarehouseID              string      `json:"warehouseId"`
	TotalForecastDemand      float64     `json:"totalForecastDemand"`
	TotalPlannedOrderQty     float64     `json:"totalPlannedOrderQty"`
	ProjectedEndingInventory float64     `json:"projectedEndingInventory"`
	ProjectedStockoutUnits   float64     `json:"projectedStockoutUnits"`
	StockoutDays             int         `json:"stockoutDays"`
	OverstockDays            int         `json:"overstockDays"`
	ServiceLevelEstimate     float64     `json:"serviceLevelEstimate"`
	RiskLevel                RiskLevel   `json:"riskLevel"`
	Orders                   []OrderLine `json:"orders"`
}

type PurchasePlanSummary struct {
	TotalPlannedOrderQty        float64 `json:"totalPlannedOrderQty"`
	TotalProjectedStockoutUnits float64 `json:"totalProjectedStockoutUnits"`
	TotalStockoutDays           int     `json:"totalStockoutDays"`
}

type PurchasePlan struct {
	GeneratedAt time.Time           `json:"generatedAt"`
	HorizonDays int                 `json:"horizonDays"`
	ItemCount   int                 `json:"itemCount"`
	Summary     PurchasePlanSummary `json:"summary"`
	Items       []PurchaseItemPlan  `json:"items"`
}

// ExceptionType tags a detected inventory exception.
type ExceptionType string

const (
	StockoutRisk  ExceptionType = "STOCKOUT_RISK"
	OverstockRisk ExceptionType = "OVERSTOCK_RISK"
)

// ExceptionItem references the source record that triggered it. The
// product/warehouse identifiers alias category/region: forecast records
// carry no SKU or warehouse linkage, so the category/region pair is the
// finest grain the data supports.
type ExceptionItem struct {
	PredictionID      uuid.UUID     `json:"predictionId"`
	ProductID         string        `json:"productId"`
	WarehouseID       string        `json:"warehouseId"`
	Category          string        `json:"category"`
	Region            string        `json:"region"`
	ForecastDate      Date          `json:"forecastDate"`
	Type              ExceptionType `json:"type"`
	RiskLevel         RiskLevel     `json:"riskLevel"`
	PredictedDemand   float64       `json:"predictedDemand"`
	InventoryPosition float64       `json:"inventoryPosition"`
	CoverageDays      float64       `json:"coverageDays"`
	RiskScore         float64       `json:"riskScore"`
	Recommendation    string        `json:"recommendation"`
}

type InventoryExceptionReport struct {
	GeneratedAt    time.Time       `json:"generatedAt"`
	FromDate       Date            `json:"fromDate"`
	ToDate         Date            `json:"toDate"`
	ExceptionCount int             `json:"exceptionCount"`
	Exceptions     []ExceptionItem `json:"exceptions"`
}

// ExceptionScanParams are the validated inputs of an exception scan.
type ExceptionScanParams struct {
	From                  Date
	To                    Date
	StockoutCoverageDays  int
	OverstockCoverageDays int
	Limit                 int
}
