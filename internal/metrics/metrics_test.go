package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorders(t *testing.T) {
	m := New()
	m.Cycle(ResultOK, 120*time.Millisecond)
	m.Cycle(ResultOK, time.Second)
	m.Cycle(ResultError, time.Second)
	m.Submitted("bid", "initial")
	m.Rejected("ask", ReasonMinNotional)
	m.Persisted("buy_orders")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.cycles.WithLabelValues(ResultOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cycles.WithLabelValues(ResultError)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.submitted.WithLabelValues("bid", "initial")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.rejected.WithLabelValues("ask", ReasonMinNotional)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.persisted.WithLabelValues("buy_orders")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Cycle(ResultOK, time.Second)
		m.Submitted("bid", "initial")
		m.Rejected("bid", ReasonVenue)
		m.Persisted("sell_orders")
	})
}

func TestHandler(t *testing.T) {
	m := New()
	m.Submitted("ask", "take_profit")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `ladderbot_orders_submitted_total{side="ask",tier="take_profit"} 1`)
}
