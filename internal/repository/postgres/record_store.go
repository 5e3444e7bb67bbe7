package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/andresuchdata/demandcast/internal/domain"
	"github.com/andresuchdata/demandcast/internal/faults"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const recordColumns = `id, forecast_date, category, region, inventory_level, units_ordered,
	price, discount, weather_condition, promotion, competitor_pricing, seasonality, epidemic,
	predicted_demand, lower_bound, upper_bound, actual_demand, created_at, request_id`

// RecordStore is the Postgres-backed forecast record store.
type RecordStore struct {
	db *DB
}

func NewRecordStore(db *DB) *RecordStore {
	return &RecordStore{db: db}
}

const insertRecordQuery = `
	INSERT INTO forecast_records (` + recordColumns + `)
	VALUES (:id, :forecast_date, :category, :region, :inventory_level, :units_ordered,
		:price, :discount, :weather_condition, :promotion, :competitor_pricing, :seasonality, :epidemic,
		:predicted_demand, :lower_bound, :upper_bound, :actual_demand, :created_at, :request_id)`

func (s *RecordStore) Save(ctx context.Context, record *domain.ForecastRecord) error {
	prepareRecord(record)
	if _, err := s.db.NamedExecContext(ctx, insertRecordQuery, record); err != nil {
		return fmt.Errorf("insert forecast record: %w", err)
	}
	return nil
}

// SaveAll inserts a batch of records in one transaction, so a provider
// batch persists all-or-nothing.
func (s *RecordStore) SaveAll(ctx context.Context, records []*domain.ForecastRecord) error {
	if len(records) == 0 {
		return nil
	}
	return s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		for _, record := range records {
			prepareRecord(record)
			if _, err := tx.NamedExecContext(ctx, insertRecordQuery, record); err != nil {
				return fmt.Errorf("insert forecast record: %w", err)
			}
		}
		return nil
	})
}

func prepareRecord(record *domain.ForecastRecord) {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
}

func (s *RecordStore) FindByID(ctx context.Context, id uuid.UUID) (*domain.ForecastRecord, error) {
	var record domain.ForecastRecord
	query := `SELECT ` + recordColumns + ` FROM forecast_records WHERE id = $1`
	if err := s.db.GetContext(ctx, &record, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, faults.New(faults.NotFound, "forecast record %s not found", id)
		}
		return nil, fmt.Errorf("select forecast record: %w", err)
	}
	return &record, nil
}

func (s *RecordStore) FindAll(ctx context.Context) ([]domain.ForecastRecord, error) {
	records := []domain.ForecastRecord{}
	query := `SELECT ` + recordColumns + ` FROM forecast_records ORDER BY forecast_date ASC`
	if err := s.db.SelectContext(ctx, &records, query); err != nil {
		return nil, fmt.Errorf("select forecast records: %w", err)
	}
	return records, nil
}

func (s *RecordStore) FindByDateRange(ctx context.Context, from, to domain.Date) ([]domain.ForecastRecord, error) {
	records := []domain.ForecastRecord{}
	query := `SELECT ` + recordColumns + ` FROM forecast_records
		WHERE forecast_date BETWEEN $1 AND $2
		ORDER BY forecast_date ASC`
	if err := s.db.SelectContext(ctx, &records, query, from, to); err != nil {
		return nil, fmt.Errorf("select forecast records by date range: %w", err)
	}
	return records, nil
}

func (s *RecordStore) FindAccuracyRecords(ctx context.Context, filter domain.RecordFilter) ([]domain.ForecastRecord, error) {
	conditions := []string{"actual_demand IS NOT NULL"}
	args := []any{}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Category != nil {
		conditions = append(conditions, "category = "+arg(*filter.Category))
	}
	if filter.Region != nil {
		conditions = append(conditions, "region = "+arg(*filter.Region))
	}
	if filter.From != nil {
		conditions = append(conditions, "forecast_date >= "+arg(*filter.From))
	}
	if filter.To != nil {
		conditions = append(conditions, "forecast_date <= "+arg(*filter.To))
	}

	records := []domain.ForecastRecord{}
	query := `SELECT ` + recordColumns + ` FROM forecast_records
		WHERE ` + strings.Join(conditions, " AND ") + `
		ORDER BY forecast_date ASC`
	if err := s.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, fmt.Errorf("select accuracy records: %w", err)
	}
	return records, nil
}

func (s *RecordStore) FindHistory(ctx context.Context, category, region string, page, size int) ([]domain.ForecastRecord, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM forecast_records WHERE category = $1 AND region = $2`
	if err := s.db.GetContext(ctx, &total, countQuery, category, region); err != nil {
		return nil, 0, fmt.Errorf("count forecast history: %w", err)
	}

	records := []domain.ForecastRecord{}
	query := `SELECT ` + recordColumns + ` FROM forecast_records
		WHERE category = $1 AND region = $2
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4`
	if err := s.db.SelectContext(ctx, &records, query, category, region, size, page*size); err != nil {
		return nil, 0, fmt.Errorf("select forecast history: %w", err)
	}
	return records, total, nil
}

func (s *RecordStore) UpdateActualDemand(ctx context.Context, id uuid.UUID, actualDemand float64) (*domain.ForecastRecord, error) {
	result, err := s.db.ExecContext(ctx,
		`UPDATE forecast_records SET actual_demand = $1 WHERE id = $2`, actualDemand, id)
	if err != nil {
		return nil, fmt.Errorf("update actual demand: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("update actual demand: %w", err)
	}
	if affected == 0 {
		return nil, faults.New(faults.NotFound, "forecast record %s not found", id)
	}
	return s.FindByID(ctx, id)
}
