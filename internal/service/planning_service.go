package service

import (
	"context"

	"github.com/andresuchdata/demandcast/internal/cache"
	"github.com/andresuchdata/demandcast/internal/domain"
	"github.com/andresuchdata/demandcast/internal/planning"
	"github.com/andresuchdata/demandcast/internal/repository"
	"github.com/andresuchdata/demandcast/pkg/logger"
)

const (
	// Query-parameter defaults for the exception scan.
	DefaultStockoutCoverageDays  = 7
	DefaultOverstockCoverageDays = 45
	DefaultExceptionLimit        = 200

	exceptionLookbackDays = 30
)

type PlanningService struct {
	store repository.RecordStore
	cache cache.InsightsCache
}

func NewPlanningService(store repository.RecordStore, insightsCache cache.InsightsCache) *PlanningService {
	return &PlanningService{store: store, cache: insightsCache}
}

// Replenishment builds per-item order recommendations.
func (s *PlanningService) Replenishment(ctx context.Context, req domain.ReplenishmentPlanRequest) (*domain.ReplenishmentPlan, error) {
	return planning.BuildReplenishmentPlan(ctx, req)
}

// PurchasePlan simulates the horizon day by day and schedules orders.
func (s *PlanningService) PurchasePlan(ctx context.Context, req domain.PurchasePlanRequest) (*domain.PurchasePlan, error) {
	return planning.BuildPurchasePlan(ctx, req)
}

// DetectExceptions scans stored records in the date range for stockout
// and overstock risk. The date range defaults to the last 30 days.
// Results are cached per parameter set; cache failures only log.
func (s *PlanningService) DetectExceptions(ctx context.Context, params domain.ExceptionScanParams) (*domain.InventoryExceptionReport, error) {
	if params.To.IsZero() {
		params.To = domain.Today()
	}
	if params.From.IsZero() {
		params.From = params.To.AddDays(-exceptionLookbackDays)
	}
	if err := planning.ValidateExceptionScan(params); err != nil {
		return nil, err
	}

	if cached, found, err := s.cache.GetExceptionReport(ctx, params); err != nil {
		logger.Log.Warn().Err(err).Msg("exception cache read failed")
	} else if found {
		return cached, nil
	}

	records, err := s.store.FindByDateRange(ctx, params.From, params.To)
	if err != nil {
		return nil, err
	}

	report, err := planning.DetectExceptions(records, params)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetExceptionReport(ctx, params, report); err != nil {
		logger.Log.Warn().Err(err).Msg("exception cache write failed")
	}
	return report, nil
}
