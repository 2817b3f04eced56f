// Package metrics exposes preview activity as Prometheus collectors.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/conneroisu/docblocks/internal/preview"
)

const namespace = "docblocks"

// Metrics holds the collectors. Each Metrics owns its own registry so tests
// and multiple servers in one process do not collide.
type Metrics struct {
	registry *prometheus.Registry

	Dispatched        *prometheus.CounterVec
	ToolbarSuppressed prometheus.Counter
	Instances         prometheus.Gauge
	PageRenders       *prometheus.CounterVec
	Reloads           *prometheus.CounterVec
}

// New creates and registers all collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Dispatched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "preview_events_total",
			Help:      "Preview state transitions by message kind.",
		}, []string{"kind"}),
		ToolbarSuppressed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "toolbar_suppressed_total",
			Help:      "Render passes that dropped a requested toolbar because of multiple children.",
		}),
		Instances: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "preview_instances",
			Help:      "Live preview instances held by the session store.",
		}),
		PageRenders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "page_renders_total",
			Help:      "Docs page renders by outcome.",
		}, []string{"outcome"}),
		Reloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "manifest_reloads_total",
			Help:      "Manifest reloads by outcome.",
		}, []string{"outcome"}),
	}

	m.registry.MustRegister(
		m.Dispatched,
		m.ToolbarSuppressed,
		m.Instances,
		m.PageRenders,
		m.Reloads,
		collectors.NewGoCollector(),
	)

	return m
}

// Registry returns the underlying Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the collectors in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Observer returns the preview.Observer feeding these collectors.
func (m *Metrics) Observer() preview.Observer { return observer{m} }

type observer struct{ m *Metrics }

func (o observer) ToolbarSuppressed() { o.m.ToolbarSuppressed.Inc() }

func (o observer) Dispatched(msg preview.Msg) {
	o.m.Dispatched.WithLabelValues(Kind(msg)).Inc()
}

// Kind names a preview message for labels.
func Kind(msg preview.Msg) string {
	switch msg.(type) {
	case preview.ToggleSource:
		return "toggle_source"
	case preview.ZoomBy:
		return "zoom"
	case preview.ResetZoom:
		return "reset_zoom"
	default:
		return "unknown"
	}
}

// ObservePage records a page render outcome.
func (m *Metrics) ObservePage(err error) {
	m.PageRenders.WithLabelValues(outcome(err)).Inc()
}

// ObserveReload records a manifest reload outcome.
func (m *Metrics) ObserveReload(err error) {
	m.Reloads.WithLabelValues(outcome(err)).Inc()
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
