// Package metrics holds the Prometheus collectors exposed on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
)

// Metrics groups the service collectors on a dedicated registry.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequests     *prometheus.CounterVec
	HTTPDuration     *prometheus.HistogramVec
	SalesRecorded    *prometheus.CounterVec
	SaleGrandTotal   prometheus.Histogram
	PriceChanges     prometheus.Counter
	PriceCacheLookup *prometheus.CounterVec
}

// New registers all collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		SalesRecorded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sales_recorded_total",
			Help: "Sales recorded by resulting status.",
		}, []string{"status"}),
		SaleGrandTotal: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "sale_grand_total_naira",
			Help:    "Grand total of completed sales in Naira.",
			Buckets: prometheus.ExponentialBuckets(1000, 4, 8),
		}),
		PriceChanges: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "price_changes_total",
			Help: "Product and variant price updates.",
		}),
		PriceCacheLookup: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "price_cache_lookups_total",
			Help: "Price cache lookups by result (hit, miss, error).",
		}, []string{"result"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequests,
		m.HTTPDuration,
		m.SalesRecorded,
		m.SaleGrandTotal,
		m.PriceChanges,
		m.PriceCacheLookup,
	)
	return m
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) ObserveRequest(method, route, status string, seconds float64) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, status).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(seconds)
}

// SaleRecorded counts a sale; completed sales also feed the total histogram.
func (m *Metrics) SaleRecorded(status string, total decimal.Decimal) {
	if m == nil {
		return
	}
	m.SalesRecorded.WithLabelValues(status).Inc()
	if status == "completed" {
		m.SaleGrandTotal.Observe(total.InexactFloat64())
	}
}

func (m *Metrics) PriceChanged() {
	if m == nil {
		return
	}
	m.PriceChanges.Inc()
}

// CacheLookup records a price cache result: hit, miss or error.
func (m *Metrics) CacheLookup(result string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.PriceCacheLookup.WithLabelValues(result).Add(float64(n))
}
