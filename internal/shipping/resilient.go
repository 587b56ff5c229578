package shipping

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"topstore/internal/cache"
	"topstore/internal/circuitbreaker"
	"topstore/internal/config"
	apperrors "topstore/internal/errors"
	"topstore/internal/interfaces"
	"topstore/internal/logger"
	"topstore/internal/metrics"
	"topstore/internal/model"
	"topstore/internal/retry"
)

// Resilient оборачивает сервис расчета доставки: кеш, таймаут, повторы и
// circuit breaker. Расчет - идемпотентное чтение, поэтому повторять его можно.
type Resilient struct {
	next    interfaces.ShippingQuoter
	retry   interfaces.RetryService
	breaker *circuitbreaker.CircuitBreaker
	cache   interfaces.QuoteCache
	timeout time.Duration
	metrics *metrics.Metrics
	log     *logrus.Entry
}

// NewResilient собирает декоратор. quoteCache может быть nil.
func NewResilient(
	next interfaces.ShippingQuoter,
	cfg *config.Config,
	quoteCache interfaces.QuoteCache,
	m *metrics.Metrics,
	log *logger.Logger,
) *Resilient {
	entry := logger.OrDiscard(log).Component("shipping")

	breaker := circuitbreaker.New("shipping_quote", cfg.CircuitBreaker).
		OnStateChange(func(name string, from, to circuitbreaker.State) {
			entry.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Circuit breaker state changed")
		})

	return &Resilient{
		next: next,
		retry: retry.NewRetryService(cfg.Retry,
			retry.WithMetrics(m, "shipping_quote"),
			retry.WithRetryable(func(err error) bool {
				return !errors.Is(err, circuitbreaker.ErrOpen) &&
					!errors.Is(err, context.Canceled) &&
					!errors.Is(err, context.DeadlineExceeded)
			}),
		),
		breaker: breaker,
		cache:   quoteCache,
		timeout: cfg.Shipping.QuoteTimeout,
		metrics: m,
		log:     entry,
	}
}

// Quote возвращает варианты доставки или ErrQuoteFailed
func (r *Resilient) Quote(ctx context.Context, city string, totalWeightKg float64) ([]model.DeliveryOption, error) {
	key := cache.QuoteKey(city, totalWeightKg)
	if r.cache != nil {
		if options, ok := r.cache.Get(key); ok {
			r.metrics.RecordQuoteCache(true)
			return options, nil
		}
		r.metrics.RecordQuoteCache(false)
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	start := time.Now()
	var options []model.DeliveryOption
	err := r.retry.ExecuteWithRetry(ctx, func() error {
		return r.breaker.Execute(ctx, func(ctx context.Context) error {
			var qerr error
			options, qerr = r.next.Quote(ctx, city, totalWeightKg)
			return qerr
		})
	})
	r.metrics.RecordQuote(time.Since(start), err)

	if err != nil {
		r.log.WithError(err).WithFields(logrus.Fields{
			"city":      city,
			"weight_kg": totalWeightKg,
		}).Warn("Shipping quote failed")
		return nil, apperrors.ErrQuoteFailed.WithCause(err)
	}

	if r.cache != nil {
		r.cache.Set(key, options)
	}
	return options, nil
}

// BreakerState состояние circuit breaker для health check
func (r *Resilient) BreakerState() circuitbreaker.State {
	return r.breaker.State()
}
