package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Sync holds the client-side cart synchronization metrics. A nil *Sync is
// valid and records nothing.
type Sync struct {
	Requests  *prometheus.CounterVec
	Duration  *prometheus.HistogramVec
	Rollbacks prometheus.Counter
	Coalesced prometheus.Counter
}

// NewSync registers the sync metrics on reg. A nil reg falls back to the
// default registerer.
func NewSync(reg prometheus.Registerer) *Sync {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Sync{
		Requests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_cart_sync_requests_total",
			Help: "Cart sync requests by operation and result",
		}, []string{"op", "result"}),
		Duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "storefront_cart_sync_duration_seconds",
			Help:    "Latency of cart sync requests",
			Buckets: prometheus.DefBuckets,
		}, []string{"op"}),
		Rollbacks: f.NewCounter(prometheus.CounterOpts{
			Name: "storefront_cart_push_rollbacks_total",
			Help: "Pushes whose failure restored the acknowledged cart",
		}),
		Coalesced: f.NewCounter(prometheus.CounterOpts{
			Name: "storefront_cart_push_coalesced_total",
			Help: "Push requests folded into a pending resend",
		}),
	}
}

func (m *Sync) Observe(op, result string, started time.Time) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(op, result).Inc()
	m.Duration.WithLabelValues(op).Observe(time.Since(started).Seconds())
}

func (m *Sync) IncrementRollbacks() {
	if m == nil {
		return
	}
	m.Rollbacks.Inc()
}

func (m *Sync) IncrementCoalesced() {
	if m == nil {
		return
	}
	m.Coalesced.Inc()
}

// Server holds the reference storefront server metrics.
type Server struct {
	HTTPRequests  *prometheus.CounterVec
	HTTPDuration  *prometheus.HistogramVec
	StockAdjusted prometheus.Counter
	OrdersCreated prometheus.Counter
	CartsCleared  prometheus.Counter
}

func NewServer(reg prometheus.Registerer) *Server {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Server{
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_http_requests_total",
			Help: "HTTP requests by route and status code",
		}, []string{"route", "code"}),
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "storefront_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		StockAdjusted: f.NewCounter(prometheus.CounterOpts{
			Name: "storefront_cart_stock_adjustments_total",
			Help: "Cart lines clamped or dropped by the server stock check",
		}),
		OrdersCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "storefront_orders_created_total",
			Help: "Orders created from server carts",
		}),
		CartsCleared: f.NewCounter(prometheus.CounterOpts{
			Name: "storefront_carts_cleared_total",
			Help: "Server carts emptied",
		}),
	}
}

func (m *Server) ObserveHTTP(route, code string, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(route, code).Inc()
	m.HTTPDuration.WithLabelValues(route).Observe(d.Seconds())
}

func (m *Server) AddStockAdjusted(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.StockAdjusted.Add(float64(n))
}

func (m *Server) IncrementOrdersCreated() {
	if m == nil {
		return
	}
	m.OrdersCreated.Inc()
}

func (m *Server) IncrementCartsCleared() {
	if m == nil {
		return
	}
	m.CartsCleared.Inc()
}
