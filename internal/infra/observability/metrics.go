package observability

import (
	"time"

	"github.com/apexfin/cardcycle/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Metrics holds all Prometheus metrics for the cycle service.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	operationDuration  *prometheus.HistogramVec
	regenerations      *prometheus.CounterVec
	cyclesCreated      prometheus.Counter
	openDateFixes      prometheus.Counter
	sparseHistoryFlags prometheus.Counter
	externalErrors     *prometheus.CounterVec
	cacheHits          *prometheus.CounterVec
	cacheMisses        *prometheus.CounterVec
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		operationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cardcycle_operation_duration_seconds",
				Help:    "Duration of operations by name.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		regenerations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cardcycle_regenerations_total",
				Help: "Total billing-cycle regenerations by outcome.",
			},
			[]string{"status"},
		),
		cyclesCreated: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "cardcycle_cycles_created_total",
				Help: "Total billing-cycle rows written by regenerations.",
			},
		),
		openDateFixes: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "cardcycle_open_date_corrections_total",
				Help: "Total implausible open dates corrected.",
			},
		),
		sparseHistoryFlags: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "cardcycle_sparse_history_flags_total",
				Help: "Regenerations that produced suspiciously few historical cycles.",
			},
		),
		externalErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cardcycle_external_errors_total",
				Help: "Total errors from external services.",
			},
			[]string{"service"},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cardcycle_cache_hits_total",
				Help: "Total cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cardcycle_cache_misses_total",
				Help: "Total cache misses.",
			},
			[]string{"cache"},
		),
	}
}

// RecordOperationDuration records the duration of an operation.
func (m *Metrics) RecordOperationDuration(operation string, d time.Duration) {
	m.operationDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrRegeneration increments the regeneration counter with an outcome label.
func (m *Metrics) IncrRegeneration(status string) {
	m.regenerations.WithLabelValues(status).Inc()
}

// AddCyclesCreated records how many cycle rows a regeneration wrote.
func (m *Metrics) AddCyclesCreated(n int) {
	m.cyclesCreated.Add(float64(n))
}

// IncrOpenDateFix increments the open-date correction counter.
func (m *Metrics) IncrOpenDateFix() {
	m.openDateFixes.Inc()
}

// IncrSparseHistoryFlag increments the sparse-history flag counter.
func (m *Metrics) IncrSparseHistoryFlag() {
	m.sparseHistoryFlags.Inc()
}

// IncrExternalError increments the external error counter.
func (m *Metrics) IncrExternalError(service string) {
	m.externalErrors.WithLabelValues(service).Inc()
}

// IncrCacheHit increments the cache hit counter.
func (m *Metrics) IncrCacheHit(cache string) {
	m.cacheHits.WithLabelValues(cache).Inc()
}

// IncrCacheMiss increments the cache miss counter.
func (m *Metrics) IncrCacheMiss(cache string) {
	m.cacheMisses.WithLabelValues(cache).Inc()
}

// GetDerivationSnapshot returns a snapshot of the regeneration counters
// suitable for the GET /v1/metrics/derivation endpoint.
func (m *Metrics) GetDerivationSnapshot() *domain.DerivationMetrics {
	success := getCounterValue(m.regenerations, "success")
	failed := getCounterValue(m.regenerations, "error")
	total := success + failed

	errorRate := float64(0)
	if total > 0 {
		errorRate = failed / total
	}

	hits := getCounterValue(m.cacheHits, "cycles")
	misses := getCounterValue(m.cacheMisses, "cycles")
	cacheHitRate := float64(0)
	if hits+misses > 0 {
		cacheHitRate = hits / (hits + misses)
	}

	return &domain.DerivationMetrics{
		TotalRegenerations: int64(total),
		ErrorRate:          errorRate,
		CyclesCreated:      int64(readCounter(m.cyclesCreated)),
		OpenDateFixes:      int64(readCounter(m.openDateFixes)),
		SparseHistoryFlags: int64(readCounter(m.sparseHistoryFlags)),
		CacheHitRate:       cacheHitRate,
		Period:             "all_time",
	}
}

// getCounterValue extracts the current float64 value from a CounterVec for a given label.
func getCounterValue(cv *prometheus.CounterVec, label string) float64 {
	counter := cv.WithLabelValues(label)
	return readCounter(counter.(prometheus.Metric))
}

func readCounter(c prometheus.Metric) float64 {
	m := &dto.Metric{}
	if err := c.Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}
