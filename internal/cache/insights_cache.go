package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/andresuchdata/demandcast/internal/config"
	"github.com/andresuchdata/demandcast/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	exceptionKeyPrefix = "insights:exceptions"
	driftKeyPrefix     = "insights:drift"
)

// InsightsCache shortcuts repeated exception scans and drift summaries
// over the same parameters. A cache failure only costs a recompute.
type InsightsCache interface {
	GetExceptionReport(ctx context.Context, params domain.ExceptionScanParams) (*domain.InventoryExceptionReport, bool, error)
	SetExceptionReport(ctx context.Context, params domain.ExceptionScanParams, report *domain.InventoryExceptionReport) error
	GetDriftSummary(ctx context.Context, baselineDays, recentDays int) (*domain.DriftSummary, bool, error)
	SetDriftSummary(ctx context.Context, baselineDays, recentDays int, summary *domain.DriftSummary) error
}

type redisInsightsCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopInsightsCache struct{}

func NewInsightsCache(cfg config.CacheConfig) (InsightsCache, error) {
	if !cfg.Enabled {
		return &noopInsightsCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return &redisInsightsCache{client: client, ttl: ttl}, nil
}

func NewNoopInsightsCache() InsightsCache {
	return &noopInsightsCache{}
}

func (c *redisInsightsCache) GetExceptionReport(ctx context.Context, params domain.ExceptionScanParams) (*domain.InventoryExceptionReport, bool, error) {
	var report domain.InventoryExceptionReport
	found, err := c.get(ctx, exceptionKey(params), &report)
	if err != nil || !found {
		return nil, false, err
	}
	return &report, true, nil
}

func (c *redisInsightsCache) SetExceptionReport(ctx context.Context, params domain.ExceptionScanParams, report *domain.InventoryExceptionReport) error {
	return c.set(ctx, exceptionKey(params), report)
}

func (c *redisInsightsCache) GetDriftSummary(ctx context.Context, baselineDays, recentDays int) (*domain.DriftSummary, bool, error) {
	var summary domain.DriftSummary
	found, err := c.get(ctx, driftKey(baselineDays, recentDays), &summary)
	if err != nil || !found {
		return nil, false, err
	}
	return &summary, true, nil
}

func (c *redisInsightsCache) SetDriftSummary(ctx context.Context, baselineDays, recentDays int, summary *domain.DriftSummary) error {
	return c.set(ctx, driftKey(baselineDays, recentDays), summary)
}

func (c *redisInsightsCache) get(ctx context.Context, key string, dest any) (bool, error) {
	payload, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get failed: %w", err)
	}
	if err := json.Unmarshal(payload, dest); err != nil {
		return false, fmt.Errorf("decode insights cache entry: %w", err)
	}
	return true, nil
}

func (c *redisInsightsCache) set(ctx context.Context, key string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode insights cache entry: %w", err)
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func exceptionKey(params domain.ExceptionScanParams) string {
	raw := fmt.Sprintf("%s|%s|%d|%d|%d",
		params.From, params.To,
		params.StockoutCoverageDays, params.OverstockCoverageDays, params.Limit)
	sum := sha1.Sum([]byte(raw))
	return exceptionKeyPrefix + ":" + hex.EncodeToString(sum[:])
}

func driftKey(baselineDays, recentDays int) string {
	return fmt.Sprintf("%s:%d:%d", driftKeyPrefix, baselineDays, recentDays)
}

func (noopInsightsCache) GetExceptionReport(context.Context, domain.ExceptionScanParams) (*domain.InventoryExceptionReport, bool, error) {
	return nil, false, nil
}

func (noopInsightsCache) SetExceptionReport(context.Context, domain.ExceptionScanParams, *domain.InventoryExceptionReport) error {
	return nil
}

func (noopInsightsCache) GetDriftSummary(context.Context, int, int) (*domain.DriftSummary, bool, error) {
	return nil, false, nil
}

func (noopInsightsCache) SetDriftSummary(context.Context, int, int, *domain.DriftSummary) error {
	return nil
}
