// Package memory provides an in-memory RecordStore used by tests and
// local development without a database.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/andresuchdata/demandcast/internal/domain"
	"github.com/andresuchdata/demandcast/internal/faults"
	"github.com/google/uuid"
)

type RecordStore struct {
	mu      sync.RWMutex
	records map[uuid.UUID]domain.ForecastRecord
	order   []uuid.UUID
}

func NewRecordStore() *RecordStore {
	return &RecordStore{records: map[uuid.UUID]domain.ForecastRecord{}}
}

func (s *RecordStore) Save(_ context.Context, record *domain.ForecastRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	if _, exists := s.records[record.ID]; !exists {
		s.order = append(s.order, record.ID)
	}
	s.records[record.ID] = *record
	return nil
}

func (s *RecordStore) SaveAll(ctx context.Context, records []*domain.ForecastRecord) error {
	for _, record := range records {
		if err := s.Save(ctx, record); err != nil {
			return err
		}
	}
	return nil
}

func (s *RecordStore) FindByID(_ context.Context, id uuid.UUID) (*domain.ForecastRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[id]
	if !ok {
		return nil, faults.New(faults.NotFound, "forecast record %s not found", id)
	}
	return &record, nil
}

func (s *RecordStore) FindAll(_ context.Context) ([]domain.ForecastRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	records := s.snapshot()
	sortByForecastDate(records)
	return records, nil
}

func (s *RecordStore) FindByDateRange(_ context.Context, from, to domain.Date) ([]domain.ForecastRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	records := []domain.ForecastRecord{}
	for _, record := range s.snapshot() {
		if record.ForecastDate.Before(from) || record.ForecastDate.After(to) {
			continue
		}
		records = append(records, record)
	}
	sortByForecastDate(records)
	return records, nil
}

func (s *RecordStore) FindAccuracyRecords(_ context.Context, filter domain.RecordFilter) ([]domain.ForecastRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	records := []domain.ForecastRecord{}
	for _, record := range s.snapshot() {
		if record.ActualDemand == nil {
			continue
		}
		if filter.Category != nil && record.Category != *filter.Category {
			continue
		}
		if filter.Region != nil && record.Region != *filter.Region {
			continue
		}
		if filter.From != nil && record.ForecastDate.Before(*filter.From) {
			continue
		}
		if filter.To != nil && record.ForecastDate.After(*filter.To) {
			continue
		}
		records = append(records, record)
	}
	sortByForecastDate(records)
	return records, nil
}

func (s *RecordStore) FindHistory(_ context.Context, category, region string, page, size int) ([]domain.ForecastRecord, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	matches := []domain.ForecastRecord{}
	for _, record := range s.snapshot() {
		if record.Category == category && record.Region == region {
			matches = append(matches, record)
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})

	total := len(matches)
	start := page * size
	if start >= total {
		return []domain.ForecastRecord{}, total, nil
	}
	end := min(start+size, total)
	return matches[start:end], total, nil
}

func (s *RecordStore) UpdateActualDemand(_ context.Context, id uuid.UUID, actualDemand float64) (*domain.ForecastRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[id]
	if !ok {
		return nil, faults.New(faults.NotFound, "forecast record %s not found", id)
	}
	record.ActualDemand = &actualDemand
	s.records[id] = record
	return &record, nil
}

func (s *RecordStore) snapshot() []domain.ForecastRecord {
	records := make([]domain.ForecastRecord, 0, len(s.order))
	for _, id := range s.order {
		records = append(records, s.records[id])
	}
	return records
}

func sortByForecastDate(records []domain.ForecastRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].ForecastDate.Before(records[j].ForecastDate)
	})
}
