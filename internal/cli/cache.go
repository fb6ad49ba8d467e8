package cli

import (
	"context"
	"fmt"

	"fintrack/internal/cache"
	"fintrack/internal/config"
	applog "fintrack/internal/log"
	"fintrack/internal/report"
)

const dashboardNamespace = "fintrack:dashboard"

// DashboardCache is the dashboard cache chosen by configuration: Redis when
// REDIS_URL is set so the API and the worker share entries, an in-process
// LRU otherwise.
type DashboardCache struct {
	Cache cache.Cache[report.Dashboard]
	// Ready is nil for the in-process cache.
	Ready func(ctx context.Context) error
	close func()
}

func NewDashboardCache(ctx context.Context, cfg *config.Config, logger *applog.Logger) (*DashboardCache, error) {
	logger = logger.WithComponent(applog.ComponentCache)

	if cfg.RedisURL != "" {
		client, err := cache.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		logger.Info("Using Redis dashboard cache", "ttl", cfg.CacheTTL)
		return &DashboardCache{
			Cache: cache.NewRedisCache[report.Dashboard](client, dashboardNamespace, cfg.CacheTTL, logger.Slog()),
			Ready: func(ctx context.Context) error { return client.Ping(ctx).Err() },
			close: func() { _ = client.Close() },
		}, nil
	}

	lru := cache.NewLRUCache[report.Dashboard](cfg.CacheSize, cfg.CacheTTL)
	manager := cache.NewManager(logger.Slog())
	manager.Register(lru)
	manager.StartCleanup(cfg.CacheTTL)
	logger.Info("Using in-process dashboard cache", "size", cfg.CacheSize, "ttl", cfg.CacheTTL)
	return &DashboardCache{Cache: lru, close: manager.Stop}, nil
}

// Close stops the cleanup routine or the Redis client.
func (d *DashboardCache) Close() {
	if d != nil && d.close != nil {
		d.close()
	}
}
