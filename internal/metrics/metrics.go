// Package metrics owns the prometheus collectors exported on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

const namespace = "tasktrack"

// Metrics groups the service collectors. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	rejections     *prometheus.CounterVec
	mutations      *prometheus.CounterVec
	deferred       *prometheus.CounterVec
	recalcRecords  *prometheus.CounterVec
	recalcDuration prometheus.Histogram
	recalcLastRun  prometheus.Gauge
	bufferSize     prometheus.GaugeFunc
}

// New registers the collectors on a fresh registry. bufferSize may be nil.
func New(bufferSize func() float64) *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lifecycle_rejections_total",
			Help:      "Lifecycle requests rejected, by operation and error code.",
		}, []string{"operation", "code"}),
		mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lifecycle_mutations_total",
			Help:      "Lifecycle requests accepted and persisted, by operation.",
		}, []string{"operation"}),
		deferred: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lifecycle_buffered_total",
			Help:      "Lifecycle requests accepted while the record store was down, by operation.",
		}, []string{"operation"}),
		recalcRecords: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recalc_records_total",
			Help:      "Tasks visited by the recalculation job, by result.",
		}, []string{"result"}),
		recalcDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "recalc_duration_seconds",
			Help:      "Wall time of recalculation runs.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
		}),
		recalcLastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "recalc_last_success_timestamp_seconds",
			Help:      "Unix time of the last recalculation run without failures.",
		}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.rejections,
		m.mutations,
		m.deferred,
		m.recalcRecords,
		m.recalcDuration,
		m.recalcLastRun,
	)
	if bufferSize != nil {
		m.bufferSize = prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "buffer_items",
			Help:      "Writes waiting in the offline buffer.",
		}, bufferSize)
		reg.MustRegister(m.bufferSize)
	}
	return m
}

// Registry exposes the underlying registry for the HTTP handler.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the prometheus text format.
func (m *Metrics) Handler() fasthttp.RequestHandler {
	if m == nil {
		return func(ctx *fasthttp.RequestCtx) {
			ctx.SetStatusCode(fasthttp.StatusNotFound)
		}
	}
	return fasthttpadaptor.NewFastHTTPHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		Registry: m.registry,
	}))
}

func (m *Metrics) Rejected(operation, code string) {
	if m == nil {
		return
	}
	m.rejections.WithLabelValues(operation, code).Inc()
}

func (m *Metrics) Accepted(operation string) {
	if m == nil {
		return
	}
	m.mutations.WithLabelValues(operation).Inc()
}

func (m *Metrics) Buffered(operation string) {
	if m == nil {
		return
	}
	m.deferred.WithLabelValues(operation).Inc()
}

// RecalcRun records one finished recalculation run.
func (m *Metrics) RecalcRun(scanned, touched, failed int, took time.Duration) {
	if m == nil {
		return
	}
	m.recalcRecords.WithLabelValues("unchanged").Add(float64(scanned - touched - failed))
	m.recalcRecords.WithLabelValues("touched").Add(float64(touched))
	m.recalcRecords.WithLabelValues("failed").Add(float64(failed))
	m.recalcDuration.Observe(took.Seconds())
	if failed == 0 {
		m.recalcLastRun.SetToCurrentTime()
	}
}
