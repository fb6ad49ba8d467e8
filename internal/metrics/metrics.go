// Package metrics registers the Prometheus instruments of the service. All
// helpers are safe to call before Init; they do nothing until then.
package metrics

import (
	"database/sql"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const (
	metricPrefix = "fintrack_"

	ResultSuccess   = "success"
	ResultError     = "error"
	ResultIntegrity = "integrity"
)

var (
	registerOnce sync.Once

	reportTotal     *prometheus.CounterVec
	reportLatency   *prometheus.HistogramVec
	integrityErrors prometheus.Counter
	cacheLookups    *prometheus.CounterVec
	publishTotal    *prometheus.CounterVec
	exportTotal     *prometheus.CounterVec
	ledgerWrites    *prometheus.CounterVec
	httpRequests    *prometheus.CounterVec
	httpLatency     *prometheus.HistogramVec
	rateLimited     prometheus.Counter
)

// Init registers every instrument with the default registry. db may be nil;
// when set, connection pool statistics are exported too.
func Init(db *sql.DB) {
	registerOnce.Do(func() {
		reportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "report_total",
				Help: "Total report computations by operation and result",
			},
			[]string{"operation", "result"},
		)
		reportLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "report_latency_seconds",
				Help:    "Report computation latency in seconds, including fetches",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		)
		integrityErrors = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "data_integrity_errors_total",
				Help: "Total rows rejected for violating ledger invariants",
			},
		)
		cacheLookups = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "cache_lookups_total",
				Help: "Dashboard cache lookups by outcome",
			},
			[]string{"outcome"},
		)
		publishTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "amqp_publish_total",
				Help: "Total ledger-changed messages published by result",
			},
			[]string{"result"},
		)
		exportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "export_total",
				Help: "Total dashboard exports by format and result",
			},
			[]string{"format", "result"},
		)
		ledgerWrites = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "ledger_writes_total",
				Help: "Total ledger writes by entity and result",
			},
			[]string{"entity", "result"},
		)

		httpRequests = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "http_requests_total",
				Help: "Total HTTP requests by method and status code",
			},
			[]string{"method", "code"},
		)
		httpLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method"},
		)
		rateLimited = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "rate_limited_total",
				Help: "Total requests rejected by the rate limiter",
			},
		)

		prometheus.MustRegister(
			reportTotal,
			reportLatency,
			integrityErrors,
			cacheLookups,
			publishTotal,
			exportTotal,
			ledgerWrites,
			httpRequests,
			httpLatency,
			rateLimited,
		)

		if db != nil {
			prometheus.MustRegister(collectors.NewDBStatsCollector(db, "fintrack"))
		}
	})
}

// ObserveReport records one report computation.
func ObserveReport(operation, result string, duration time.Duration) {
	if result == "" {
		result = ResultSuccess
	}
	if reportTotal != nil {
		reportTotal.WithLabelValues(operation, result).Inc()
	}
	if reportLatency != nil {
		reportLatency.WithLabelValues(operation).Observe(duration.Seconds())
	}
	if result == ResultIntegrity && integrityErrors != nil {
		integrityErrors.Inc()
	}
}

// CacheHit and CacheMiss count dashboard cache lookups.
func CacheHit() {
	if cacheLookups != nil {
		cacheLookups.WithLabelValues("hit").Inc()
	}
}

func CacheMiss() {
	if cacheLookups != nil {
		cacheLookups.WithLabelValues("miss").Inc()
	}
}

// IncPublish counts a publish attempt.
func IncPublish(result string) {
	if publishTotal != nil {
		publishTotal.WithLabelValues(result).Inc()
	}
}

// IncExport counts an export by format.
func IncExport(format, result string) {
	if exportTotal != nil {
		exportTotal.WithLabelValues(format, result).Inc()
	}
}

// IncLedgerWrite counts a write by entity.
func IncLedgerWrite(entity, result string) {
	if ledgerWrites != nil {
		ledgerWrites.WithLabelValues(entity, result).Inc()
	}
}

// ObserveHTTP records one served request.
func ObserveHTTP(method string, code int, duration time.Duration) {
	if httpRequests != nil {
		httpRequests.WithLabelValues(method, strconv.Itoa(code)).Inc()
	}
	if httpLatency != nil {
		httpLatency.WithLabelValues(method).Observe(duration.Seconds())
	}
}

// IncRateLimited counts a request rejected by the rate limiter.
func IncRateLimited() {
	if rateLimited != nil {
		rateLimited.Inc()
	}
}
