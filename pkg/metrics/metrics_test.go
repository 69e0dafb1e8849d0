package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestSyncMetrics(t *testing.T) {
	m := NewSync(prometheus.NewRegistry())
	m.Observe("push", "ok", time.Now())
	m.Observe("push", "ok", time.Now())
	m.Observe("merge", "conflict", time.Now())
	m.IncrementRollbacks()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Requests.WithLabelValues("push", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues("merge", "conflict")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Rollbacks))
}

func TestNilMetricsAreSafe(t *testing.T) {
	var s *Sync
	s.Observe("push", "ok", time.Now())
	s.IncrementRollbacks()
	s.IncrementCoalesced()

	var srv *Server
	srv.ObserveHTTP("/cart/sync", "200", time.Millisecond)
	srv.AddStockAdjusted(2)
	srv.IncrementOrdersCreated()
	srv.IncrementCartsCleared()
}

func TestServerMetrics(t *testing.T) {
	m := NewServer(prometheus.NewRegistry())
	m.AddStockAdjusted(3)
	m.AddStockAdjusted(0)
	m.IncrementOrdersCreated()
	assert.Equal(t, 3.0, testutil.ToFloat64(m.StockAdjusted))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OrdersCreated))
}
