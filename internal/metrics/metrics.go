// Package metrics defines the Prometheus collectors of the server and the worker.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "smakolyk"

// Result labels.
const (
	ResultOK       = "ok"
	ResultRejected = "rejected"
	ResultError    = "error"
)

// Metrics holds every collector. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	ordersSubmitted *prometheus.CounterVec
	oversums        *prometheus.CounterVec
	menuImports     *prometheus.CounterVec
	aggregations    *prometheus.CounterVec
	aggregatedRows  prometheus.Counter
	requestDuration *prometheus.HistogramVec
}

// New creates the collectors on a fresh registry, together with the Go runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		ordersSubmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_submissions_total",
			Help:      "Weekly order submissions by result.",
		}, []string{"result"}),
		oversums: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "oversum_notifications_total",
			Help:      "Day orders over the budget ceiling, by notification result.",
		}, []string{"result"}),
		menuImports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "menu_imports_total",
			Help:      "Menu spreadsheet imports by result.",
		}, []string{"result"}),
		aggregations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "aggregation_runs_total",
			Help:      "Weekly aggregation runs by result.",
		}, []string{"result"}),
		aggregatedRows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "aggregated_orders_total",
			Help:      "Pending orders drained by the weekly aggregation.",
		}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.ordersSubmitted,
		m.oversums,
		m.menuImports,
		m.aggregations,
		m.aggregatedRows,
		m.requestDuration,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry (used by tests).
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) OrderSubmitted(result string) {
	if m == nil {
		return
	}
	m.ordersSubmitted.WithLabelValues(result).Inc()
}

func (m *Metrics) Oversum(result string) {
	if m == nil {
		return
	}
	m.oversums.WithLabelValues(result).Inc()
}

func (m *Metrics) MenuImport(result string) {
	if m == nil {
		return
	}
	m.menuImports.WithLabelValues(result).Inc()
}

// Aggregation records one run and the number of orders it drained.
func (m *Metrics) Aggregation(result string, rows int) {
	if m == nil {
		return
	}
	m.aggregations.WithLabelValues(result).Inc()
	m.aggregatedRows.Add(float64(rows))
}

func (m *Metrics) ObserveRequest(method, route, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.requestDuration.WithLabelValues(method, route, status).Observe(d.Seconds())
}
