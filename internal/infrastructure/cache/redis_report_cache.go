package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	appfinance "github.com/ledgerline/backend/internal/application/finance"
	"github.com/ledgerline/backend/internal/domain/finance"
)

// RedisReportCache caches cash-flow reports in Redis so multiple instances
// share one cache. Reports are stored as JSON with a TTL.
type RedisReportCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisReportCache creates a new Redis-backed report cache
func NewRedisReportCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisReportCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisReportCache{client: client, ttl: ttl, logger: logger}
}

// Get returns the cached report for the key, if present. Redis failures are
// treated as misses.
func (c *RedisReportCache) Get(ctx context.Context, key string) (*finance.CashFlowReport, bool) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("report cache read failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}

	var report finance.CashFlowReport
	if err := json.Unmarshal(data, &report); err != nil {
		c.logger.Warn("report cache entry corrupt", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return &report, true
}

// Set stores the report under the key with the configured TTL
func (c *RedisReportCache) Set(ctx context.Context, key string, report *finance.CashFlowReport) {
	data, err := json.Marshal(report)
	if err != nil {
		c.logger.Warn("report cache encode failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("report cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// InvalidateTenant drops every cached report for the tenant
func (c *RedisReportCache) InvalidateTenant(ctx context.Context, tenantID uuid.UUID) {
	pattern := "cashflow:" + tenantID.String() + ":*"
	iter := c.client.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			c.logger.Warn("report cache invalidation failed",
				zap.String("key", iter.Val()),
				zap.Error(err),
			)
		}
	}
	if err := iter.Err(); err != nil {
		c.logger.Warn("report cache scan failed",
			zap.String("tenant_id", tenantID.String()),
			zap.Error(err),
		)
	}
}

// Ensure RedisReportCache implements ReportCache
var _ appfinance.ReportCache = (*RedisReportCache)(nil)
