package server

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/roomgraph/pkg/observability"
)

// Metrics collects edit and store events as Prometheus metrics. It
// implements observability.EditHooks and observability.StoreHooks.
type Metrics struct {
	registry *prometheus.Registry

	edits         *prometheus.CounterVec
	editDuration  *prometheus.HistogramVec
	denials       *prometheus.CounterVec
	severed       prometheus.Counter
	storeOps      *prometheus.CounterVec
	storeDuration *prometheus.HistogramVec
	requests      *prometheus.CounterVec
}

// NewMetrics creates the collectors on a private registry, together with
// the standard Go and process collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		edits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "roomgraph_edits_total",
				Help: "Total number of graph edits by operation and result",
			},
			[]string{"op", "result"},
		),
		editDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "roomgraph_edit_duration_seconds",
				Help:    "Duration of the load, edit and save cycle",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"op"},
		),
		denials: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "roomgraph_connection_denials_total",
				Help: "Connections refused by the validity engine, by reason",
			},
			[]string{"reason"},
		),
		severed: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "roomgraph_severed_edges_total",
				Help: "Edges removed because a type change made them illegal",
			},
		),
		storeOps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "roomgraph_store_operations_total",
				Help: "Storage operations by backend, operation and result",
			},
			[]string{"backend", "op", "result"},
		),
		storeDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "roomgraph_store_duration_seconds",
				Help:    "Duration of storage loads and saves",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"backend", "op"},
		),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "roomgraph_http_requests_total",
				Help: "HTTP requests by method and status code",
			},
			[]string{"method", "code"},
		),
	}
	m.registry.MustRegister(
		m.edits, m.editDuration, m.denials, m.severed,
		m.storeOps, m.storeDuration, m.requests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the metrics in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (m *Metrics) OnEdit(_ context.Context, _, op string, d time.Duration, err error) {
	m.edits.WithLabelValues(op, result(err)).Inc()
	m.editDuration.WithLabelValues(op).Observe(d.Seconds())
}

func (m *Metrics) OnDenied(_ context.Context, _, reason string) {
	m.denials.WithLabelValues(reason).Inc()
}

func (m *Metrics) OnSevered(_ context.Context, _ string, count int) {
	m.severed.Add(float64(count))
}

func (m *Metrics) OnLoad(_ context.Context, backend, _ string, d time.Duration, err error) {
	m.storeOps.WithLabelValues(backend, "load", result(err)).Inc()
	m.storeDuration.WithLabelValues(backend, "load").Observe(d.Seconds())
}

func (m *Metrics) OnSave(_ context.Context, backend, _ string, _ int, d time.Duration, err error) {
	m.storeOps.WithLabelValues(backend, "save", result(err)).Inc()
	m.storeDuration.WithLabelValues(backend, "save").Observe(d.Seconds())
}

func (m *Metrics) OnDelete(_ context.Context, backend, _ string, err error) {
	m.storeOps.WithLabelValues(backend, "delete", result(err)).Inc()
}

var (
	_ observability.EditHooks  = (*Metrics)(nil)
	_ observability.StoreHooks = (*Metrics)(nil)
)
