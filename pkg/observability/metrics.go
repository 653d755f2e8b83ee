package observability

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics implements every hook interface on a private Prometheus registry.
// One instance is registered for all four hook categories at startup and its
// [Metrics.Handler] is served on the metrics address.
type Metrics struct {
	registry *prometheus.Registry

	bestLength      prometheus.Gauge
	bestUpdates     prometheus.Counter
	candidatesTotal *prometheus.CounterVec

	tasksSubmitted prometheus.Counter
	tasksQueued    prometheus.Gauge
	taskDuration   *prometheus.HistogramVec
	workerFailures prometheus.Counter

	cacheOps   *prometheus.CounterVec
	cacheBytes prometheus.Counter

	treesEnumerated *prometheus.CounterVec
	enumDuration    prometheus.Histogram
	largestSize     *prometheus.GaugeVec
}

// NewMetrics creates the collectors on a fresh registry, together with the
// standard Go runtime and process collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewGoCollector(), prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,

		bestLength: f.NewGauge(prometheus.GaugeOpts{
			Name: "treeseq_best_length",
			Help: "Length of the longest bad sequence found so far",
		}),
		bestUpdates: f.NewCounter(prometheus.CounterOpts{
			Name: "treeseq_best_updates_total",
			Help: "Number of times the best length increased",
		}),
		candidatesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "treeseq_candidates_total",
			Help: "Candidate trees checked against the current sequence, by outcome",
		}, []string{"outcome"}),

		tasksSubmitted: f.NewCounter(prometheus.CounterOpts{
			Name: "treeseq_pool_tasks_submitted_total",
			Help: "Embedding tests submitted to the worker pool",
		}),
		tasksQueued: f.NewGauge(prometheus.GaugeOpts{
			Name: "treeseq_pool_tasks_queued",
			Help: "Embedding tests waiting for an idle worker at last submission",
		}),
		taskDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "treeseq_pool_task_duration_seconds",
			Help:    "Embedding test evaluation time in seconds, by result",
			Buckets: prometheus.ExponentialBuckets(0.000001, 4, 12), // 1µs to ~4s
		}, []string{"result"}),
		workerFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "treeseq_pool_worker_failures_total",
			Help: "Embedding tests whose evaluation panicked",
		}),

		cacheOps: f.NewCounterVec(prometheus.CounterOpts{
			Name: "treeseq_cache_operations_total",
			Help: "Tree cache operations by key type and outcome",
		}, []string{"key_type", "op"}),
		cacheBytes: f.NewCounter(prometheus.CounterOpts{
			Name: "treeseq_cache_written_bytes_total",
			Help: "Bytes written to the tree cache",
		}),

		treesEnumerated: f.NewCounterVec(prometheus.CounterOpts{
			Name: "treeseq_trees_enumerated_total",
			Help: "Trees produced by the enumerator, by label count",
		}, []string{"labels"}),
		enumDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "treeseq_enum_size_duration_seconds",
			Help:    "Time to produce all trees of one size",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 12),
		}),
		largestSize: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "treeseq_enum_largest_size",
			Help: "Largest tree size enumerated so far, by label count",
		}, []string{"labels"}),
	}
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler returns an HTTP handler exposing the registry in the Prometheus
// text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) OnBest(_ context.Context, length int, _ time.Duration) {
	m.bestLength.Set(float64(length))
	m.bestUpdates.Inc()
}

func (m *Metrics) OnCandidate(_ context.Context, _ int, accepted bool) {
	outcome := "rejected"
	if accepted {
		outcome = "accepted"
	}
	m.candidatesTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) OnSubmit(_ context.Context, queued int) {
	m.tasksSubmitted.Inc()
	m.tasksQueued.Set(float64(queued))
}

func (m *Metrics) OnComplete(_ context.Context, result bool, d time.Duration) {
	m.taskDuration.WithLabelValues(strconv.FormatBool(result)).Observe(d.Seconds())
}

func (m *Metrics) OnWorkerFailure(context.Context, uint64, error) {
	m.workerFailures.Inc()
}

func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.cacheOps.WithLabelValues(keyType, "hit").Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.cacheOps.WithLabelValues(keyType, "miss").Inc()
}

func (m *Metrics) OnCacheSet(_ context.Context, keyType string, size int) {
	m.cacheOps.WithLabelValues(keyType, "set").Inc()
	m.cacheBytes.Add(float64(size))
}

func (m *Metrics) OnSizeEnumerated(_ context.Context, size, labels, count int, _ bool, d time.Duration) {
	l := strconv.Itoa(labels)
	m.treesEnumerated.WithLabelValues(l).Add(float64(count))
	m.enumDuration.Observe(d.Seconds())
	g := m.largestSize.WithLabelValues(l)
	// Gauges have no max operation; sizes are produced in increasing order per
	// label count, so the last write is the largest.
	g.Set(float64(size))
}

var (
	_ SearchHooks = (*Metrics)(nil)
	_ PoolHooks   = (*Metrics)(nil)
	_ CacheHooks  = (*Metrics)(nil)
	_ EnumHooks   = (*Metrics)(nil)
)
