// Package metrics provides Prometheus metrics collection for focusboard.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds all Prometheus metrics. A nil *Collector is valid and
// records nothing.
type Collector struct {
	registry *prometheus.Registry

	RequestDuration *prometheus.HistogramVec
	UsageIncrements *prometheus.CounterVec
	QuotaRejections *prometheus.CounterVec
	UpstreamErrors  *prometheus.CounterVec
}

// New creates a collector backed by its own registry.
func New() *Collector {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "focusboard",
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"method", "route", "status"},
		),
		UsageIncrements: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "focusboard",
				Name:      "usage_increments_total",
				Help:      "Metered API calls recorded against the usage ledger",
			},
			[]string{"api_type"},
		),
		QuotaRejections: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "focusboard",
				Name:      "quota_rejections_total",
				Help:      "Increments refused because the monthly limit was reached",
			},
			[]string{"api_type"},
		),
		UpstreamErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "focusboard",
				Name:      "upstream_errors_total",
				Help:      "Failed calls to external integrations",
			},
			[]string{"integration"},
		),
	}
}

// Handler exposes the collector's registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

func (c *Collector) IncUsage(apiType string) {
	if c == nil {
		return
	}
	c.UsageIncrements.WithLabelValues(apiType).Inc()
}

func (c *Collector) IncRejection(apiType string) {
	if c == nil {
		return
	}
	c.QuotaRejections.WithLabelValues(apiType).Inc()
}

func (c *Collector) IncUpstreamError(integration string) {
	if c == nil {
		return
	}
	c.UpstreamErrors.WithLabelValues(integration).Inc()
}

func (c *Collector) ObserveRequest(method, route string, status int, d time.Duration) {
	if c == nil {
		return
	}
	c.RequestDuration.WithLabelValues(method, route, StatusLabel(status)).Observe(d.Seconds())
}

// StatusLabel buckets an HTTP status into 2xx/3xx/4xx/5xx.
func StatusLabel(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	case status >= 200:
		return "2xx"
	default:
		return strconv.Itoa(status)
	}
}
