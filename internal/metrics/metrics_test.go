package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := New()

	m.OrderSubmitted(ResultOK)
	m.OrderSubmitted(ResultOK)
	m.OrderSubmitted(ResultRejected)
	m.Aggregation(ResultOK, 7)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ordersSubmitted.WithLabelValues(ResultOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ordersSubmitted.WithLabelValues(ResultRejected)))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.aggregatedRows))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.OrderSubmitted(ResultOK)
		m.Oversum(ResultError)
		m.MenuImport(ResultOK)
		m.Aggregation(ResultOK, 1)
		m.ObserveRequest("GET", "/", "200", time.Millisecond)
	})
}

func TestHandler(t *testing.T) {
	m := New()
	m.MenuImport(ResultOK)
	m.ObserveRequest("GET", "/home", "200", 15*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `smakolyk_menu_imports_total{result="ok"} 1`))
	assert.Contains(t, body, "smakolyk_http_request_duration_seconds_bucket")
}
