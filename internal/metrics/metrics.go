// Package metrics exports editor activity as Prometheus metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/JonMunkholm/dexedit/internal/core"
)

const namespace = "dexedit"

// Recorder owns the editor's collectors. A nil *Recorder is valid and records nothing.
type Recorder struct {
	registry   *prometheus.Registry
	operations *prometheus.CounterVec
	durations  *prometheus.HistogramVec
	audit      *prometheus.CounterVec
	importRows *prometheus.CounterVec
	iconLookup *prometheus.CounterVec
	panels     prometheus.Gauge
}

// New registers the editor collectors, plus the Go and process collectors, on
// a fresh registry.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Panel operations by outcome.",
		}, []string{"operation", "table", "status"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Panel operation latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		audit: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audit_entries_total",
			Help:      "Audit lines written by saves.",
		}, []string{"section"}),
		importRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "import_rows_total",
			Help:      "CSV rows processed by imports.",
		}, []string{"table", "result"}),
		iconLookup: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "icon_cache_lookups_total",
			Help:      "Icon cache lookups of closed panels.",
		}, []string{"result"}),
		panels: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "open_panels",
			Help:      "Panels currently open.",
		}),
	}
	r.registry.MustRegister(
		r.operations, r.durations, r.audit, r.importRows, r.iconLookup, r.panels,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// Registry exposes the registry for tests and extra collectors.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// Handler serves the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Observe records one operation outcome.
func (r *Recorder) Observe(operation string, kind core.TableKind, err error, took time.Duration) {
	if r == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	r.operations.WithLabelValues(operation, string(kind), status).Inc()
	r.durations.WithLabelValues(operation).Observe(took.Seconds())
}

// Saved counts the audit lines of a successful save.
func (r *Recorder) Saved(section string, res core.SaveResult) {
	if r == nil || len(res.Entries) == 0 {
		return
	}
	r.audit.WithLabelValues(section).Add(float64(len(res.Entries)))
}

// Imported counts the rows of an import, successful or not.
func (r *Recorder) Imported(kind core.TableKind, res core.ImportResult) {
	if r == nil {
		return
	}
	table := string(kind)
	r.importRows.WithLabelValues(table, "applied").Add(float64(res.Applied))
	r.importRows.WithLabelValues(table, "unmatched").Add(float64(res.Unmatched))
	r.importRows.WithLabelValues(table, "failed").Add(float64(res.Failed))
}

// PanelOpened increments the open panel gauge.
func (r *Recorder) PanelOpened() {
	if r == nil {
		return
	}
	r.panels.Inc()
}

// PanelClosed decrements the open panel gauge and folds in the panel's icon
// cache statistics.
func (r *Recorder) PanelClosed(icons *core.IconCache) {
	if r == nil {
		return
	}
	r.panels.Dec()
	if icons == nil {
		return
	}
	hits, misses := icons.Stats()
	r.iconLookup.WithLabelValues("hit").Add(float64(hits))
	r.iconLookup.WithLabelValues("miss").Add(float64(misses))
}
