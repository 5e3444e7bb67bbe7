// Package service composes the stateless engines with persistence, the
// prediction provider, caching, and job handling. Handlers talk to
// services only.
package service

import (
	"context"
	"time"

	"github.com/andresuchdata/demandcast/internal/domain"
	"github.com/andresuchdata/demandcast/internal/faults"
	"github.com/andresuchdata/demandcast/internal/insights"
	"github.com/andresuchdata/demandcast/internal/repository"
	"github.com/andresuchdata/demandcast/internal/requestid"
	"github.com/google/uuid"
)

const (
	defaultHistoryPageSize = 20
	maxHistoryPageSize     = 100
)

// HistoryPage is one page of forecast history, newest first.
type HistoryPage struct {
	Items      []domain.ForecastRecord `json:"items"`
	Page       int                     `json:"page"`
	Size       int                     `json:"size"`
	TotalItems int                     `json:"totalItems"`
	TotalPages int                     `json:"totalPages"`
}

// Predictor is the external demand model as the forecast path needs it.
type Predictor interface {
	Predict(ctx context.Context, input domain.ForecastInput) (domain.Prediction, error)
	PredictBatch(ctx context.Context, inputs []domain.ForecastInput) ([]domain.Prediction, error)
}

type ForecastService struct {
	store        repository.RecordStore
	predictor    Predictor
	maxBatchSize int
}

func NewForecastService(store repository.RecordStore, predictor Predictor, maxBatchSize int) *ForecastService {
	if maxBatchSize <= 0 {
		maxBatchSize = 256
	}
	return &ForecastService{store: store, predictor: predictor, maxBatchSize: maxBatchSize}
}

// Forecast requests a prediction for one input and persists the result.
func (s *ForecastService) Forecast(ctx context.Context, input domain.ForecastInput) (*domain.ForecastRecord, error) {
	prediction, err := s.predictor.Predict(ctx, input)
	if err != nil {
		return nil, err
	}

	record := buildRecord(ctx, input, prediction)
	if err := s.store.Save(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

// ForecastBatch predicts and persists a batch. Batch size is capped to
// protect the prediction provider; results keep the input order.
func (s *ForecastService) ForecastBatch(ctx context.Context, inputs []domain.ForecastInput) ([]domain.ForecastRecord, error) {
	if len(inputs) == 0 {
		return nil, faults.New(faults.InputValidation, "batch must contain at least one input")
	}
	if len(inputs) > s.maxBatchSize {
		return nil, faults.New(faults.InputValidation,
			"batch size %d exceeds the maximum of %d", len(inputs), s.maxBatchSize)
	}

	predictions, err := s.predictor.PredictBatch(ctx, inputs)
	if err != nil {
		return nil, err
	}

	batch := make([]*domain.ForecastRecord, len(inputs))
	for i, input := range inputs {
		batch[i] = buildRecord(ctx, input, predictions[i])
	}
	// One transaction, so a provider batch persists all-or-nothing.
	if err := s.store.SaveAll(ctx, batch); err != nil {
		return nil, err
	}

	records := make([]domain.ForecastRecord, len(batch))
	for i, record := range batch {
		records[i] = *record
	}
	return records, nil
}

// RecordActual backfills the observed demand for a prediction. The
// actual can be recorded exactly once; later attempts are rejected.
func (s *ForecastService) RecordActual(ctx context.Context, id uuid.UUID, actualDemand float64) (*domain.ForecastRecord, error) {
	if actualDemand < 0 {
		return nil, faults.New(faults.InputValidation, "actualDemand must be >= 0")
	}

	existing, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.ActualDemand != nil {
		return nil, faults.New(faults.InputValidation,
			"actual demand already recorded for prediction %s", id)
	}

	return s.store.UpdateActualDemand(ctx, id, actualDemand)
}

// History pages stored records for a category/region, newest first.
func (s *ForecastService) History(ctx context.Context, category, region string, page, size int) (*HistoryPage, error) {
	if category == "" || region == "" {
		return nil, faults.New(faults.InputValidation, "category and region are required")
	}
	if page < 0 {
		page = 0
	}
	if size < 1 {
		size = defaultHistoryPageSize
	}
	if size > maxHistoryPageSize {
		size = maxHistoryPageSize
	}

	items, total, err := s.store.FindHistory(ctx, category, region, page, size)
	if err != nil {
		return nil, err
	}

	totalPages := 0
	if total > 0 {
		totalPages = (total + size - 1) / size
	}

	return &HistoryPage{
		Items:      items,
		Page:       page,
		Size:       size,
		TotalItems: total,
		TotalPages: totalPages,
	}, nil
}

// Accuracy computes MAE/RMSE/MAPE over records with a recorded actual,
// narrowed by the optional filter.
func (s *ForecastService) Accuracy(ctx context.Context, filter domain.RecordFilter) (*domain.AccuracyReport, error) {
	if filter.From != nil && filter.To != nil && filter.From.After(*filter.To) {
		return nil, faults.New(faults.InputValidation, "fromDate must be before or equal to toDate")
	}

	records, err := s.store.FindAccuracyRecords(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &domain.AccuracyReport{
		Metrics:  insights.ComputeMetrics(records),
		FromDate: filter.From,
		ToDate:   filter.To,
		Category: filter.Category,
		Region:   filter.Region,
	}, nil
}

func buildRecord(ctx context.Context, input domain.ForecastInput, prediction domain.Prediction) *domain.ForecastRecord {
	return &domain.ForecastRecord{
		ID:                uuid.New(),
		ForecastDate:      input.Date,
		Category:          input.Category,
		Region:            input.Region,
		InventoryLevel:    input.InventoryLevel,
		UnitsOrdered:      input.UnitsOrdered,
		Price:             input.Price,
		Discount:          input.Discount,
		WeatherCondition:  input.WeatherCondition,
		Promotion:         input.Promotion,
		CompetitorPricing: input.CompetitorPricing,
		Seasonality:       input.Seasonality,
		Epidemic:          input.Epidemic,
		PredictedDemand:   domain.Round(prediction.Demand),
		LowerBound:        domain.RoundPtr(prediction.LowerBound),
		UpperBound:        domain.RoundPtr(prediction.UpperBound),
		CreatedAt:         time.Now().UTC(),
		RequestID:         requestid.FromContext(ctx),
	}
}
