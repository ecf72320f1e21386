package editor

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ironsheep/photo-editor-mcp/internal/imaging"
)

// Metrics collects editor counters in its own registry. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	registry          *prometheus.Registry
	openSessions      prometheus.Gauge
	previewRenders    prometheus.Counter
	previewCoalesced  prometheus.Counter
	previewSuperseded prometheus.Counter
	previewFailures   prometheus.Counter
	renderDuration    prometheus.Histogram
	exportsTotal      *prometheus.CounterVec
	exportDuration    prometheus.Histogram
	encodeFallbacks   prometheus.Counter
	decodeFailures    prometheus.Counter
}

// NewMetrics registers the editor collectors plus the Go and process
// collectors.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: registry,
		openSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "photo_editor_open_sessions",
			Help: "Editing sessions currently open.",
		}),
		previewRenders: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "photo_editor_preview_renders_total",
			Help: "Preview frames rendered and published.",
		}),
		previewCoalesced: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "photo_editor_preview_coalesced_total",
			Help: "Preview snapshots replaced before they were rendered.",
		}),
		previewSuperseded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "photo_editor_preview_superseded_total",
			Help: "Preview frames discarded because a newer edit arrived while rendering.",
		}),
		previewFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "photo_editor_preview_failures_total",
			Help: "Preview renders that returned an error.",
		}),
		renderDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "photo_editor_preview_render_duration_seconds",
			Help:    "Time spent rendering one preview frame.",
			Buckets: []float64{0.001, 0.005, 0.01, 0.016, 0.033, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		exportsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "photo_editor_exports_total",
			Help: "Exports by encoded format and outcome.",
		}, []string{"format", "status"}),
		exportDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "photo_editor_export_duration_seconds",
			Help:    "Full-resolution export duration including encoding.",
			Buckets: prometheus.DefBuckets,
		}),
		encodeFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "photo_editor_encode_fallbacks_total",
			Help: "Exports that fell back from the preferred encoder.",
		}),
		decodeFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "photo_editor_decode_failures_total",
			Help: "Sources that could not be loaded or decoded.",
		}),
	}

	registry.MustRegister(
		m.openSessions,
		m.previewRenders,
		m.previewCoalesced,
		m.previewSuperseded,
		m.previewFailures,
		m.renderDuration,
		m.exportsTotal,
		m.exportDuration,
		m.encodeFallbacks,
		m.decodeFailures,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Rendered implements preview.Observer.
func (m *Metrics) Rendered(d time.Duration) {
	if m == nil {
		return
	}
	m.previewRenders.Inc()
	m.renderDuration.Observe(d.Seconds())
}

// Coalesced implements preview.Observer.
func (m *Metrics) Coalesced() {
	if m == nil {
		return
	}
	m.previewCoalesced.Inc()
}

// Superseded implements preview.Observer.
func (m *Metrics) Superseded() {
	if m == nil {
		return
	}
	m.previewSuperseded.Inc()
}

// Failed implements preview.Observer.
func (m *Metrics) Failed(error) {
	if m == nil {
		return
	}
	m.previewFailures.Inc()
}

func (m *Metrics) sessionOpened() {
	if m == nil {
		return
	}
	m.openSessions.Inc()
}

func (m *Metrics) sessionClosed() {
	if m == nil {
		return
	}
	m.openSessions.Dec()
}

func (m *Metrics) decodeFailed() {
	if m == nil {
		return
	}
	m.decodeFailures.Inc()
}

func (m *Metrics) exported(enc *imaging.Encoded, d time.Duration) {
	if m == nil {
		return
	}
	m.exportsTotal.WithLabelValues(string(enc.Format), "ok").Inc()
	m.exportDuration.Observe(d.Seconds())
	if enc.FellBack() {
		m.encodeFallbacks.Inc()
	}
}

func (m *Metrics) exportFailed(f imaging.Format) {
	if m == nil {
		return
	}
	m.exportsTotal.WithLabelValues(string(f), "error").Inc()
}
