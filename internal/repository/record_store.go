package repository

import (
	"context"

	"github.com/andresuchdata/demandcast/internal/domain"
	"github.com/google/uuid"
)

// RecordStore is the forecast-record persistence boundary. The
// analytics engine only ever reads; Save and UpdateActualDemand exist
// for the intake path and the one-shot actuals backfill.
type RecordStore interface {
	Save(ctx context.Context, record *domain.ForecastRecord) error
	// SaveAll persists a batch atomically.
	SaveAll(ctx context.Context, records []*domain.ForecastRecord) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.ForecastRecord, error)
	FindAll(ctx context.Context) ([]domain.ForecastRecord, error)
	// FindByDateRange returns records in [from, to] ordered by forecast
	// date ascending.
	FindByDateRange(ctx context.Context, from, to domain.Date) ([]domain.ForecastRecord, error)
	// FindAccuracyRecords returns records with a recorded actual,
	// narrowed by the filter, ordered by forecast date ascending.
	FindAccuracyRecords(ctx context.Context, filter domain.RecordFilter) ([]domain.ForecastRecord, error)
	// FindHistory pages records for a category/region ordered by
	// createdAt descending and reports the total match count.
	FindHistory(ctx context.Context, category, region string, page, size int) ([]domain.ForecastRecord, int, error)
	UpdateActualDemand(ctx context.Context, id uuid.UUID, actualDemand float64) (*domain.ForecastRecord, error)
}
