package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/andresuchdata/demandcast/internal/domain"
)

const backtestPrefix = "backtests/"

// ReportArchive persists completed backtest reports to object storage so
// they survive job eviction.
type ReportArchive struct {
	store ObjectStorage
}

func NewReportArchive(store ObjectStorage) *ReportArchive {
	return &ReportArchive{store: store}
}

func backtestKey(jobID string) string {
	return backtestPrefix + jobID + ".json"
}

// SaveBacktest archives the report under backtests/<jobID>.json.
func (a *ReportArchive) SaveBacktest(ctx context.Context, jobID string, report *domain.BacktestReport) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encode backtest report: %w", err)
	}
	return a.store.UploadObject(ctx, backtestKey(jobID), payload)
}

// LoadBacktest retrieves a previously archived report.
func (a *ReportArchive) LoadBacktest(ctx context.Context, jobID string) (*domain.BacktestReport, error) {
	data, err := a.store.DownloadObject(ctx, backtestKey(jobID))
	if err != nil {
		return nil, err
	}

	var report domain.BacktestReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("decode backtest report: %w", err)
	}
	return &report, nil
}
