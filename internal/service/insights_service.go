package service

import (
	"context"

	"github.com/andresuchdata/demandcast/internal/cache"
	"github.com/andresuchdata/demandcast/internal/domain"
	"github.com/andresuchdata/demandcast/internal/faults"
	"github.com/andresuchdata/demandcast/internal/insights"
	"github.com/andresuchdata/demandcast/internal/repository"
	"github.com/andresuchdata/demandcast/internal/storage"
	"github.com/andresuchdata/demandcast/pkg/logger"
	"github.com/google/uuid"
)

// ModelClient is the slice of the prediction provider the insights
// operations need.
type ModelClient interface {
	Predict(ctx context.Context, input domain.ForecastInput) (domain.Prediction, error)
	FeatureImportance(ctx context.Context) (map[string]float64, error)
}

type InsightsService struct {
	store   repository.RecordStore
	model   ModelClient
	cache   cache.InsightsCache
	archive *storage.ReportArchive
}

// NewInsightsService builds the service. archive may be nil, in which
// case backtest reports are only retained by the job manager.
func NewInsightsService(store repository.RecordStore, model ModelClient,
	insightsCache cache.InsightsCache, archive *storage.ReportArchive) *InsightsService {
	return &InsightsService{store: store, model: model, cache: insightsCache, archive: archive}
}

// Backtest replays stored predictions with recorded actuals over a
// date range and reports overall and per-segment accuracy.
func (s *InsightsService) Backtest(ctx context.Context, req domain.BacktestRequest) (*domain.BacktestReport, error) {
	records, err := s.store.FindAccuracyRecords(ctx, domain.RecordFilter{
		Category: req.Category,
		Region:   req.Region,
		From:     &req.FromDate,
		To:       &req.ToDate,
	})
	if err != nil {
		return nil, err
	}
	return insights.BuildBacktestReport(records, req)
}

// ArchiveBacktest writes a completed backtest report to object storage
// keyed by its job id. Without a configured archive it is a no-op, and
// archival failure never fails the job that produced the report.
func (s *InsightsService) ArchiveBacktest(ctx context.Context, jobID string, report *domain.BacktestReport) {
	if s.archive == nil {
		return
	}
	if err := s.archive.SaveBacktest(ctx, jobID, report); err != nil {
		logger.Log.Warn().Err(err).Str("job_id", jobID).Msg("backtest archive failed")
	}
}

// ArchivedBacktest retrieves a report from the archive after the job
// that produced it has been evicted.
func (s *InsightsService) ArchivedBacktest(ctx context.Context, jobID string) (*domain.BacktestReport, error) {
	if s.archive == nil {
		return nil, faults.New(faults.NotFound, "backtest %s not found", jobID)
	}
	report, err := s.archive.LoadBacktest(ctx, jobID)
	if err != nil {
		return nil, faults.Wrap(faults.NotFound, err, "backtest %s not found", jobID)
	}
	return report, nil
}

// Drift compares the recent window against the preceding baseline
// window for the prediction and each tracked feature. Window sizes
// below 1 fall back to 30 baseline / 7 recent days.
func (s *InsightsService) Drift(ctx context.Context, baselineDays, recentDays int) (*domain.DriftSummary, error) {
	if baselineDays < 1 {
		baselineDays = 30
	}
	if recentDays < 1 {
		recentDays = 7
	}

	if cached, found, err := s.cache.GetDriftSummary(ctx, baselineDays, recentDays); err != nil {
		logger.Log.Warn().Err(err).Msg("drift cache read failed")
	} else if found {
		return cached, nil
	}

	windows := insights.ComputeDriftWindows(domain.Today(), baselineDays, recentDays)

	baseline, err := s.store.FindByDateRange(ctx, windows.BaselineFrom, windows.BaselineTo)
	if err != nil {
		return nil, err
	}
	recent, err := s.store.FindByDateRange(ctx, windows.RecentFrom, windows.RecentTo)
	if err != nil {
		return nil, err
	}

	summary := insights.BuildDriftSummary(baseline, recent, windows)

	if err := s.cache.SetDriftSummary(ctx, baselineDays, recentDays, summary); err != nil {
		logger.Log.Warn().Err(err).Msg("drift cache write failed")
	}
	return summary, nil
}

// Explain attributes a stored prediction to its features. A feature
// importance fetch failure degrades to zero importances rather than
// failing the explanation.
func (s *InsightsService) Explain(ctx context.Context, id uuid.UUID) (*domain.Explanation, error) {
	record, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	history, err := s.store.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	importances, err := s.model.FeatureImportance(ctx)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("feature importances unavailable")
		importances = map[string]float64{}
	}

	return insights.BuildExplanation(*record, history, importances), nil
}

// WhatIf evaluates scenario overrides against a base input, keying
// every delta off the single base prediction.
func (s *InsightsService) WhatIf(ctx context.Context, req domain.WhatIfRequest) (*domain.WhatIfResult, error) {
	return insights.RunWhatIf(ctx, s.model, req)
}
