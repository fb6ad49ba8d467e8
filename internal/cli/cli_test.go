package cli

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"fintrack/internal/cache"
	"fintrack/internal/config"
	applog "fintrack/internal/log"
	"fintrack/internal/report"
)

func TestSetupLogger_LevelFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "json")
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	logger := SetupLogger(applog.ComponentWorker)
	if logger.Component() != applog.ComponentWorker {
		t.Errorf("component = %s", logger.Component())
	}
	if !logger.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("debug level should be enabled")
	}
}

func TestSetupLogger_UnknownLevelFallsBackToInfo(t *testing.T) {
	t.Setenv("LOG_LEVEL", "chatty")
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	logger := SetupLogger(applog.ComponentApp)
	if logger.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("debug should be disabled")
	}
	if !logger.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("info should be enabled")
	}
}

func TestNewDashboardCache_InProcess(t *testing.T) {
	cfg := &config.Config{CacheSize: 4, CacheTTL: time.Minute}
	dc, err := NewDashboardCache(context.Background(), cfg, applog.New(applog.DefaultConfig()))
	if err != nil {
		t.Fatal(err)
	}
	defer dc.Close()

	if dc.Ready != nil {
		t.Error("in-process cache has no readiness check")
	}
	if _, ok := dc.Cache.(*cache.LRUCache[report.Dashboard]); !ok {
		t.Fatalf("expected LRU cache, got %T", dc.Cache)
	}
	dc.Cache.Set(context.Background(), "k", report.Dashboard{})
	if dc.Cache.Size(context.Background()) != 1 {
		t.Error("value not stored")
	}
}
