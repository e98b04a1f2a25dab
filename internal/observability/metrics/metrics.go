package metrics

import (
	"database/sql"
	"log"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "dashboard_"

	resultSuccess = "success"
	resultError   = "error"

	sourceLoaded  = "loaded"
	sourceSkipped = "skipped"

	cacheHit        = "hit"
	cacheMiss       = "miss"
	cacheReload     = "reload"
	cacheUnchanged  = "unchanged"
	cacheInvalidate = "invalidate"
)

var (
	registerOnce sync.Once

	sourcesTotal      *prometheus.CounterVec
	sourceRowsDropped *prometheus.CounterVec

	loadTotal   *prometheus.CounterVec
	loadLatency *prometheus.HistogramVec

	tableRows    prometheus.Gauge
	tableRegions prometheus.Gauge

	cacheEvents *prometheus.CounterVec

	dashboardTotal   *prometheus.CounterVec
	dashboardLatency *prometheus.HistogramVec

	exportTotal   *prometheus.CounterVec
	exportLatency *prometheus.HistogramVec
)

// Init registers dashboard metrics. When db is set, a gauge over the readings
// table is registered as well.
func Init(db *sql.DB, readingsTable string, logger *log.Logger) {
	registerOnce.Do(func() {
		sourcesTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "sources_total",
				Help: "Region sources processed by result",
			},
			[]string{"result"},
		)
		sourceRowsDropped = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "source_rows_rejected_total",
				Help: "Source rows dropped or nulled during canonicalization by reason",
			},
			[]string{"reason"},
		)

		loadTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "load_total",
				Help: "Table loads by result",
			},
			[]string{"result"},
		)
		loadLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "load_latency_seconds",
				Help:    "Table load latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)

		tableRows = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: metricPrefix + "table_rows",
			Help: "Rows of the cached normalized table",
		})
		tableRegions = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: metricPrefix + "table_regions",
			Help: "Region columns of the cached normalized table",
		})

		cacheEvents = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "cache_events_total",
				Help: "Snapshot cache events",
			},
			[]string{"event"},
		)

		dashboardTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "compute_total",
				Help: "Dashboard computations by result",
			},
			[]string{"result"},
		)
		dashboardLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "compute_latency_seconds",
				Help:    "Dashboard computation latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)

		exportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "export_total",
				Help: "Report exports by format and result",
			},
			[]string{"format", "result"},
		)
		exportLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "export_latency_seconds",
				Help:    "Report export latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format", "result"},
		)

		prometheus.MustRegister(
			sourcesTotal,
			sourceRowsDropped,
			loadTotal,
			loadLatency,
			tableRows,
			tableRegions,
			cacheEvents,
			dashboardTotal,
			dashboardLatency,
			exportTotal,
			exportLatency,
		)

		if db != nil {
			registerDBMetrics(db, readingsTable, logger)
		}
	})
}

// IncSourceLoaded counts a source that made it into the table.
func IncSourceLoaded() {
	if sourcesTotal != nil {
		sourcesTotal.WithLabelValues(sourceLoaded).Inc()
	}
}

// IncSourceSkipped counts a source that was reported and excluded.
func IncSourceSkipped() {
	if sourcesTotal != nil {
		sourcesTotal.WithLabelValues(sourceSkipped).Inc()
	}
}

// AddRowsRejected adds rejected source rows for reason.
func AddRowsRejected(reason string, count int) {
	if count <= 0 {
		return
	}
	if reason == "" {
		reason = "unknown"
	}
	if sourceRowsDropped != nil {
		sourceRowsDropped.WithLabelValues(reason).Add(float64(count))
	}
}

// ObserveLoad records a table load and, on success, the table shape.
func ObserveLoad(result string, duration time.Duration, rows, regions int) {
	if result == "" {
		result = resultSuccess
	}
	if loadTotal != nil {
		loadTotal.WithLabelValues(result).Inc()
	}
	if loadLatency != nil {
		loadLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
	if result != resultSuccess {
		return
	}
	if tableRows != nil {
		tableRows.Set(float64(rows))
	}
	if tableRegions != nil {
		tableRegions.Set(float64(regions))
	}
}

// IncCacheEvent increments the snapshot cache counter for event.
func IncCacheEvent(event string) {
	if event == "" {
		event = "unknown"
	}
	if cacheEvents != nil {
		cacheEvents.WithLabelValues(event).Inc()
	}
}

// ObserveDashboard records dashboard computation latency and result.
func ObserveDashboard(result string, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if dashboardTotal != nil {
		dashboardTotal.WithLabelValues(result).Inc()
	}
	if dashboardLatency != nil {
		dashboardLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// ObserveExport records report export latency and result.
func ObserveExport(format, result string, duration time.Duration) {
	if format == "" {
		format = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if exportTotal != nil {
		exportTotal.WithLabelValues(format, result).Inc()
	}
	if exportLatency != nil {
		exportLatency.WithLabelValues(format, result).Observe(duration.Seconds())
	}
}

// WriteTextfile dumps the default registry in the node exporter textfile format.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}

// Exported constants for callers.
const (
	ResultSuccess = resultSuccess
	ResultError   = resultError

	CacheHit        = cacheHit
	CacheMiss       = cacheMiss
	CacheReload     = cacheReload
	CacheUnchanged  = cacheUnchanged
	CacheInvalidate = cacheInvalidate
)
