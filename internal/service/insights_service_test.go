package service

import (
	"context"
	"testing"

	"github.com/andresuchdata/demandcast/internal/cache"
	"github.com/andresuchdata/demandcast/internal/domain"
	"github.com/andresuchdata/demandcast/internal/faults"
	"github.com/andresuchdata/demandcast/internal/repository/memory"
	"github.com/andresuchdata/demandcast/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubObjectStorage struct {
	objects map[string][]byte
}

func (s *stubObjectStorage) ListObjects(_ context.Context, _ string) ([]storage.ObjectInfo, error) {
	return nil, nil
}

func (s *stubObjectStorage) DownloadObject(_ context.Context, key string) ([]byte, error) {
	data, ok := s.objects[key]
	if !ok {
		return nil, faults.New(faults.NotFound, "object %s does not exist", key)
	}
	return data, nil
}

func (s *stubObjectStorage) UploadObject(_ context.Context, key string, data []byte) error {
	if s.objects == nil {
		s.objects = map[string][]byte{}
	}
	s.objects[key] = data
	return nil
}

func TestArchivedBacktestWithoutArchive(t *testing.T) {
	svc := NewInsightsService(memory.NewRecordStore(), nil, cache.NewNoopInsightsCache(), nil)

	_, err := svc.ArchivedBacktest(context.Background(), "job-1")
	require.Error(t, err)
	assert.True(t, faults.IsKind(err, faults.NotFound))
}

func TestArchivedBacktestAfterEviction(t *testing.T) {
	archive := storage.NewReportArchive(&stubObjectStorage{})
	svc := NewInsightsService(memory.NewRecordStore(), nil, cache.NewNoopInsightsCache(), archive)

	from, err := domain.ParseDate("2026-03-01")
	require.NoError(t, err)
	to, err := domain.ParseDate("2026-03-31")
	require.NoError(t, err)
	svc.ArchiveBacktest(context.Background(), "job-1", &domain.BacktestReport{FromDate: from, ToDate: to})

	report, err := svc.ArchivedBacktest(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Equal(t, from, report.FromDate)

	_, err = svc.ArchivedBacktest(context.Background(), "other-job")
	require.Error(t, err)
	assert.True(t, faults.IsKind(err, faults.NotFound))
}
