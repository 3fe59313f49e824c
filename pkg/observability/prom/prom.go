// Package prom implements the observability hooks with Prometheus metrics.
//
// Register once at startup and expose the handler:
//
//	m := prom.New(prom.Config{Namespace: "techradar"})
//	m.Install()
//	router.Handle("/metrics", m.Handler())
package prom

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/techradar/pkg/observability"
)

// Config controls metric naming and the default collectors.
type Config struct {
	Namespace            string
	EnableGoMetrics      bool
	EnableProcessMetrics bool
}

// Metrics holds every collector and implements all hook interfaces.
type Metrics struct {
	registry *prometheus.Registry

	stageDuration *prometheus.HistogramVec
	loadedItems   prometheus.Gauge

	reconciled   *prometheus.CounterVec
	relaxTicks   prometheus.Histogram
	relaxStops   *prometheus.CounterVec
	interactions *prometheus.CounterVec
	dropped      prometheus.Counter

	cacheOps     *prometheus.CounterVec
	cacheWritten *prometheus.CounterVec

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	inFlight        prometheus.Gauge
	httpErrors      *prometheus.CounterVec
}

var (
	_ observability.PipelineHooks = (*Metrics)(nil)
	_ observability.ChartHooks    = (*Metrics)(nil)
	_ observability.CacheHooks    = (*Metrics)(nil)
	_ observability.HTTPHooks     = (*Metrics)(nil)
)

// New creates the collectors on a private registry.
func New(cfg Config) *Metrics {
	if cfg.Namespace == "" {
		cfg.Namespace = "techradar"
	}
	ns := cfg.Namespace
	reg := prometheus.NewRegistry()
	if cfg.EnableGoMetrics {
		reg.MustRegister(prometheus.NewGoCollector())
	}
	if cfg.EnableProcessMetrics {
		reg.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{Namespace: ns}))
	}

	m := &Metrics{
		registry: reg,
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: ns, Subsystem: "pipeline", Name: "stage_duration_seconds",
			Help:    "Duration of pipeline stages.",
			Buckets: []float64{.001, .005, .01, .05, .1, .25, .5, 1, 2.5, 5},
		}, []string{"stage", "status"}),
		loadedItems: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: ns, Subsystem: "pipeline", Name: "loaded_items",
			Help: "Number of items in the most recent load.",
		}),
		reconciled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns, Subsystem: "chart", Name: "reconciled_items_total",
			Help: "Items classified by render passes.",
		}, []string{"kind"}),
		relaxTicks: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: ns, Subsystem: "chart", Name: "relax_ticks",
			Help:    "Ticks per relaxation pass.",
			Buckets: prometheus.ExponentialBuckets(8, 2, 8),
		}),
		relaxStops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns, Subsystem: "chart", Name: "relax_stops_total",
			Help: "Relaxation passes by stop reason.",
		}, []string{"reason"}),
		interactions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns, Subsystem: "chart", Name: "interactions_total",
			Help: "Pointer events handled by charts.",
		}, []string{"kind"}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns, Subsystem: "chart", Name: "dropped_items_total",
			Help: "Items skipped because of invalid data.",
		}),
		cacheOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns, Subsystem: "cache", Name: "operations_total",
			Help: "Cache lookups and writes.",
		}, []string{"type", "result"}),
		cacheWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns, Subsystem: "cache", Name: "written_bytes_total",
			Help: "Bytes written to the cache.",
		}, []string{"type"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns, Subsystem: "http", Name: "requests_total",
			Help: "Completed HTTP requests.",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: ns, Subsystem: "http", Name: "request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: ns, Subsystem: "http", Name: "requests_in_flight",
			Help: "Requests currently being served.",
		}),
		httpErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns, Subsystem: "http", Name: "errors_total",
			Help: "Handler errors.",
		}, []string{"method", "route"}),
	}
	reg.MustRegister(
		m.stageDuration, m.loadedItems,
		m.reconciled, m.relaxTicks, m.relaxStops, m.interactions, m.dropped,
		m.cacheOps, m.cacheWritten,
		m.requests, m.requestDuration, m.inFlight, m.httpErrors,
	)
	return m
}

// Install registers m as the process-wide hooks.
func (m *Metrics) Install() {
	observability.SetPipelineHooks(m)
	observability.SetChartHooks(m)
	observability.SetCacheHooks(m)
	observability.SetHTTPHooks(m)
}

// Registry returns the registry the collectors live in.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// Pipeline

func (m *Metrics) OnLoadStart(context.Context, string) {}

func (m *Metrics) OnLoadComplete(_ context.Context, _ string, items int, d time.Duration, err error) {
	m.stageDuration.WithLabelValues("load", status(err)).Observe(d.Seconds())
	if err == nil {
		m.loadedItems.Set(float64(items))
	}
}

func (m *Metrics) OnLayoutStart(context.Context, string, int) {}

func (m *Metrics) OnLayoutComplete(_ context.Context, _ string, d time.Duration, err error) {
	m.stageDuration.WithLabelValues("layout", status(err)).Observe(d.Seconds())
}

func (m *Metrics) OnRenderStart(context.Context, []string) {}

func (m *Metrics) OnRenderComplete(_ context.Context, _ []string, d time.Duration, err error) {
	m.stageDuration.WithLabelValues("render", status(err)).Observe(d.Seconds())
}

// Chart

func (m *Metrics) OnReconcile(enter, update, exit, moves int) {
	m.reconciled.WithLabelValues("enter").Add(float64(enter))
	m.reconciled.WithLabelValues("update").Add(float64(update))
	m.reconciled.WithLabelValues("exit").Add(float64(exit))
	m.reconciled.WithLabelValues("move").Add(float64(moves))
}

func (m *Metrics) OnRelaxStart(int) {}

func (m *Metrics) OnRelaxStop(ticks int, reason string, _ time.Duration) {
	m.relaxTicks.Observe(float64(ticks))
	m.relaxStops.WithLabelValues(reason).Inc()
}

func (m *Metrics) OnInteraction(kind string) { m.interactions.WithLabelValues(kind).Inc() }

func (m *Metrics) OnItemDropped(string, error) { m.dropped.Inc() }

// Cache

func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.cacheOps.WithLabelValues(keyType, "hit").Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.cacheOps.WithLabelValues(keyType, "miss").Inc()
}

func (m *Metrics) OnCacheSet(_ context.Context, keyType string, size int) {
	m.cacheOps.WithLabelValues(keyType, "set").Inc()
	m.cacheWritten.WithLabelValues(keyType).Add(float64(size))
}

// HTTP

func (m *Metrics) OnRequest(context.Context, string, string) { m.inFlight.Inc() }

func (m *Metrics) OnResponse(_ context.Context, method, route string, code int, d time.Duration) {
	m.inFlight.Dec()
	m.requests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func (m *Metrics) OnError(_ context.Context, method, route string, _ error) {
	m.httpErrors.WithLabelValues(method, route).Inc()
}
