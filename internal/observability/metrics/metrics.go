package metrics

import (
	"database/sql"
	"log"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "meterdash_"

	resultSuccess = "success"
	resultError   = "error"
)

var (
	registerOnce sync.Once

	recomputeTotal   *prometheus.CounterVec
	recomputeLatency *prometheus.HistogramVec

	refreshTotal   *prometheus.CounterVec
	refreshLatency *prometheus.HistogramVec

	exportTotal   *prometheus.CounterVec
	exportLatency *prometheus.HistogramVec
)

// Init registers observability metrics and DB-backed gauges.
func Init(db *sql.DB, logger *log.Logger) {
	registerOnce.Do(func() {
		recomputeTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "recompute_total",
				Help: "Total aggregate recomputes by domain and result",
			},
			[]string{"domain", "result"},
		)
		recomputeLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "recompute_latency_seconds",
				Help:    "Aggregate recompute latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"domain", "result"},
		)

		refreshTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "snapshot_refresh_total",
				Help: "Total record snapshot refreshes by domain and result",
			},
			[]string{"domain", "result"},
		)
		refreshLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "snapshot_refresh_latency_seconds",
				Help:    "Record snapshot refresh latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"domain", "result"},
		)

		exportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "export_total",
				Help: "Total report exports by domain, format and result",
			},
			[]string{"domain", "format", "result"},
		)
		exportLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "export_latency_seconds",
				Help:    "Report export latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"domain", "format", "result"},
		)

		prometheus.MustRegister(
			recomputeTotal,
			recomputeLatency,
			refreshTotal,
			refreshLatency,
			exportTotal,
			exportLatency,
		)

		if db != nil {
			registerDBMetrics(db, logger)
		}
	})
}

// ObserveRecompute records recompute latency and result for a domain.
func ObserveRecompute(domain string, err error, duration time.Duration) {
	result := resultFor(err)
	if recomputeTotal != nil {
		recomputeTotal.WithLabelValues(domain, result).Inc()
	}
	if recomputeLatency != nil {
		recomputeLatency.WithLabelValues(domain, result).Observe(duration.Seconds())
	}
}

// ObserveRefresh records snapshot refresh latency and result for a domain.
func ObserveRefresh(domain string, err error, duration time.Duration) {
	result := resultFor(err)
	if refreshTotal != nil {
		refreshTotal.WithLabelValues(domain, result).Inc()
	}
	if refreshLatency != nil {
		refreshLatency.WithLabelValues(domain, result).Observe(duration.Seconds())
	}
}

// ObserveExport records export latency and result by domain and format.
func ObserveExport(domain, format string, err error, duration time.Duration) {
	if format == "" {
		format = "unknown"
	}
	result := resultFor(err)
	if exportTotal != nil {
		exportTotal.WithLabelValues(domain, format, result).Inc()
	}
	if exportLatency != nil {
		exportLatency.WithLabelValues(domain, format, result).Observe(duration.Seconds())
	}
}

func resultFor(err error) string {
	if err != nil {
		return resultError
	}
	return resultSuccess
}
