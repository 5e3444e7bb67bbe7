package storage

import (
	"context"
	"fmt"
	"testing"

	"github.com/andresuchdata/demandcast/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeObjectStorage struct {
	objects map[string][]byte
}

func newFakeObjectStorage() *fakeObjectStorage {
	return &fakeObjectStorage{objects: map[string][]byte{}}
}

func (f *fakeObjectStorage) ListObjects(_ context.Context, prefix string) ([]ObjectInfo, error) {
	infos := []ObjectInfo{}
	for key, data := range f.objects {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			infos = append(infos, ObjectInfo{Key: key, Size: int64(len(data))})
		}
	}
	return infos, nil
}

func (f *fakeObjectStorage) DownloadObject(_ context.Context, key string) ([]byte, error) {
	data, ok := f.objects[key]
	if !ok {
		return nil, fmt.Errorf("object %s does not exist", key)
	}
	return data, nil
}

func (f *fakeObjectStorage) UploadObject(_ context.Context, key string, data []byte) error {
	f.objects[key] = data
	return nil
}

func TestReportArchiveRoundTrip(t *testing.T) {
	store := newFakeObjectStorage()
	archive := NewReportArchive(store)

	from, err := domain.ParseDate("2026-01-01")
	require.NoError(t, err)
	to, err := domain.ParseDate("2026-01-31")
	require.NoError(t, err)
	report := &domain.BacktestReport{FromDate: from, ToDate: to}

	require.NoError(t, archive.SaveBacktest(context.Background(), "job-1", report))
	assert.Contains(t, store.objects, "backtests/job-1.json")

	loaded, err := archive.LoadBacktest(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Equal(t, report.FromDate, loaded.FromDate)
	assert.Equal(t, report.ToDate, loaded.ToDate)
}

func TestLoadBacktestMissingObject(t *testing.T) {
	archive := NewReportArchive(newFakeObjectStorage())
	_, err := archive.LoadBacktest(context.Background(), "gone")
	assert.Error(t, err)
}
