package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/ogulcanaydogan/focusboard/pkg/metrics"
)

func TestCollector_Counters(t *testing.T) {
	c := metrics.New()

	c.IncUsage("vision")
	c.IncUsage("vision")
	c.IncRejection("tasks")
	c.IncUpstreamError("calendar")

	assert.Equal(t, 2.0, testutil.ToFloat64(c.UsageIncrements.WithLabelValues("vision")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.QuotaRejections.WithLabelValues("tasks")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.UpstreamErrors.WithLabelValues("calendar")))
}

func TestCollector_NilIsNoop(t *testing.T) {
	var c *metrics.Collector
	assert.NotPanics(t, func() {
		c.IncUsage("vision")
		c.IncRejection("vision")
		c.IncUpstreamError("tasks")
		c.ObserveRequest("GET", "/healthz", 200, time.Millisecond)
	})
}

func TestCollector_Handler(t *testing.T) {
	c := metrics.New()
	c.ObserveRequest("GET", "/api/v1/usage", 200, 10*time.Millisecond)

	w := httptest.NewRecorder()
	c.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "focusboard_http_request_duration_seconds")
}

func TestStatusLabel(t *testing.T) {
	assert.Equal(t, "2xx", metrics.StatusLabel(201))
	assert.Equal(t, "4xx", metrics.StatusLabel(409))
	assert.Equal(t, "5xx", metrics.StatusLabel(502))
	assert.Equal(t, "3xx", metrics.StatusLabel(304))
}
