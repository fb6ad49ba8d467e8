package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func counterValue(t *testing.T, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
	metricLoop:
		for _, m := range f.GetMetric() {
			for _, lp := range m.GetLabel() {
				if want, ok := labels[lp.GetName()]; ok && want != lp.GetValue() {
					continue metricLoop
				}
			}
			return m.GetCounter().GetValue()
		}
	}
	return 0
}

func TestHelpersAreSafeBeforeInit(t *testing.T) {
	// Package state may already be initialized by another test; either way
	// these must not panic.
	ObserveReport("dashboard", "", time.Millisecond)
	CacheHit()
	IncPublish(ResultError)
}

func TestInitAndObserve(t *testing.T) {
	Init(nil)
	Init(nil) // idempotent

	before := counterValue(t, "fintrack_data_integrity_errors_total", nil)
	ObserveReport("dashboard", ResultIntegrity, 5*time.Millisecond)
	if got := counterValue(t, "fintrack_data_integrity_errors_total", nil); got != before+1 {
		t.Fatalf("integrity counter = %v, want %v", got, before+1)
	}

	hits := counterValue(t, "fintrack_cache_lookups_total", map[string]string{"outcome": "hit"})
	CacheHit()
	CacheMiss()
	if got := counterValue(t, "fintrack_cache_lookups_total", map[string]string{"outcome": "hit"}); got != hits+1 {
		t.Fatalf("cache hits = %v, want %v", got, hits+1)
	}
}

func TestObserveHTTP(t *testing.T) {
	Init(nil)

	labels := map[string]string{"method": "GET", "code": "200"}
	before := counterValue(t, "fintrack_http_requests_total", labels)
	ObserveHTTP("GET", 200, time.Millisecond)
	if got := counterValue(t, "fintrack_http_requests_total", labels); got != before+1 {
		t.Fatalf("http requests = %v, want %v", got, before+1)
	}

	limited := counterValue(t, "fintrack_rate_limited_total", nil)
	IncRateLimited()
	if got := counterValue(t, "fintrack_rate_limited_total", nil); got != limited+1 {
		t.Fatalf("rate limited = %v, want %v", got, limited+1)
	}
}
