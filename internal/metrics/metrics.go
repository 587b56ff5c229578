package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics структура для метрик. Все методы записи допускают nil-получатель.
type Metrics struct {
	registry *prometheus.Registry

	// HTTP метрики
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Store метрики
	StoreSaves         *prometheus.CounterVec
	StoreLoadAnomalies *prometheus.CounterVec

	// Cart метрики
	CartMutations *prometheus.CounterVec

	// Shipping метрики
	QuoteRequests  *prometheus.CounterVec
	QuoteDuration  prometheus.Histogram
	QuoteStale     prometheus.Counter
	QuoteCacheHits *prometheus.CounterVec

	// Retry метрики
	RetryAttempts *prometheus.CounterVec
	RetryFailures *prometheus.CounterVec

	// Payment метрики
	PaymentAttempts *prometheus.CounterVec

	// Order метрики
	OrdersCreated prometheus.Counter
	OrderRevenue  prometheus.Counter
	OrdersInStore prometheus.Gauge

	// Notification метрики
	NotificationsSent   *prometheus.CounterVec
	NotificationsFailed *prometheus.CounterVec
}

// New создает метрики на собственном registry
func New() *Metrics {
	return NewWithRegistry(prometheus.NewRegistry())
}

// NewWithRegistry регистрирует метрики в переданном registry
func NewWithRegistry(reg *prometheus.Registry) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),

		StoreSaves: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "store_saves_total",
				Help: "Collection saves by outcome",
			},
			[]string{"collection", "result"},
		),
		StoreLoadAnomalies: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "store_load_anomalies_total",
				Help: "Collections that could not be read or decoded and were loaded empty",
			},
			[]string{"collection", "reason"},
		),

		CartMutations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cart_mutations_total",
				Help: "Cart mutations by operation",
			},
			[]string{"operation"},
		),

		QuoteRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shipping_quote_requests_total",
				Help: "Shipping quote requests by outcome",
			},
			[]string{"result"},
		),
		QuoteDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "shipping_quote_duration_seconds",
				Help:    "Shipping quote latency in seconds",
				Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
			},
		),
		QuoteStale: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "shipping_quote_stale_total",
				Help: "Quote responses discarded because a newer request superseded them",
			},
		),
		QuoteCacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shipping_quote_cache_total",
				Help: "Quote cache lookups by result",
			},
			[]string{"result"},
		),

		RetryAttempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "retry_attempts_total",
				Help: "Total number of retry attempts",
			},
			[]string{"operation", "attempt"},
		),
		RetryFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "retry_failures_total",
				Help: "Total number of retry failures",
			},
			[]string{"operation"},
		),

		PaymentAttempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payment_attempts_total",
				Help: "Payment attempts by outcome",
			},
			[]string{"result"},
		),

		OrdersCreated: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "orders_created_total",
				Help: "Total number of orders created",
			},
		),
		OrderRevenue: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "orders_revenue_rub_total",
				Help: "Sum of order totals in RUB",
			},
		),
		OrdersInStore: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "orders_in_store",
				Help: "Number of orders in the ledger",
			},
		),

		NotificationsSent: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "notifications_sent_total",
				Help: "Operator notifications delivered",
			},
			[]string{"channel"},
		),
		NotificationsFailed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "notifications_failed_total",
				Help: "Operator notifications that failed",
			},
			[]string{"channel"},
		),
	}
}

// Registry registry, в котором зарегистрированы метрики
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) RecordStoreSave(collection string, err error) {
	if m == nil {
		return
	}
	m.StoreSaves.WithLabelValues(collection, result(err)).Inc()
}

func (m *Metrics) RecordLoadAnomaly(collection, reason string) {
	if m == nil {
		return
	}
	m.StoreLoadAnomalies.WithLabelValues(collection, reason).Inc()
}

func (m *Metrics) RecordCartMutation(operation string) {
	if m == nil {
		return
	}
	m.CartMutations.WithLabelValues(operation).Inc()
}

// RecordQuote учитывает завершенный запрос расчета доставки
func (m *Metrics) RecordQuote(duration time.Duration, err error) {
	if m == nil {
		return
	}
	m.QuoteRequests.WithLabelValues(result(err)).Inc()
	m.QuoteDuration.Observe(duration.Seconds())
}

func (m *Metrics) RecordStaleQuote() {
	if m == nil {
		return
	}
	m.QuoteStale.Inc()
}

func (m *Metrics) RecordQuoteCache(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.QuoteCacheHits.WithLabelValues("hit").Inc()
		return
	}
	m.QuoteCacheHits.WithLabelValues("miss").Inc()
}

func (m *Metrics) RecordRetryAttempt(operation string, attempt int) {
	if m == nil {
		return
	}
	m.RetryAttempts.WithLabelValues(operation, strconv.Itoa(attempt)).Inc()
}

func (m *Metrics) RecordRetryFailure(operation string) {
	if m == nil {
		return
	}
	m.RetryFailures.WithLabelValues(operation).Inc()
}

// RecordPayment result: success, declined, error
func (m *Metrics) RecordPayment(result string) {
	if m == nil {
		return
	}
	m.PaymentAttempts.WithLabelValues(result).Inc()
}

func (m *Metrics) RecordOrder(totalAmount int, ordersInStore int) {
	if m == nil {
		return
	}
	m.OrdersCreated.Inc()
	m.OrderRevenue.Add(float64(totalAmount))
	m.OrdersInStore.Set(float64(ordersInStore))
}

func (m *Metrics) SetOrdersInStore(n int) {
	if m == nil {
		return
	}
	m.OrdersInStore.Set(float64(n))
}

func (m *Metrics) RecordNotification(channel string, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.NotificationsFailed.WithLabelValues(channel).Inc()
		return
	}
	m.NotificationsSent.WithLabelValues(channel).Inc()
}

// HTTPMiddleware gin middleware для HTTP метрик
func (m *Metrics) HTTPMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()

		c.Next()

		// FullPath дает шаблон маршрута, чтобы id не раздували кардинальность
		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		m.HTTPRequestsTotal.WithLabelValues(c.Request.Method, endpoint, status).Inc()
		m.HTTPRequestDuration.WithLabelValues(c.Request.Method, endpoint).Observe(duration)
	}
}

// Handler возвращает HTTP handler для Prometheus метрик
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
