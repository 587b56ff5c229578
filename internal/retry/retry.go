package retry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"topstore/internal/config"
	"topstore/internal/interfaces"
	"topstore/internal/metrics"
)

// RetryService повторяет идемпотентные операции с экспоненциальной задержкой.
// Для платежей не используется: списание выполняется ровно один раз.
type RetryService struct {
	config    config.RetryConfig
	operation string
	metrics   *metrics.Metrics
	retryable func(error) bool
}

// Option настройка RetryService
type Option func(*RetryService)

// WithMetrics учитывать попытки в метриках под именем операции
func WithMetrics(m *metrics.Metrics, operation string) Option {
	return func(r *RetryService) {
		r.metrics = m
		r.operation = operation
	}
}

// WithRetryable задает, какие ошибки имеет смысл повторять
func WithRetryable(fn func(error) bool) Option {
	return func(r *RetryService) {
		r.retryable = fn
	}
}

func NewRetryService(cfg config.RetryConfig, opts ...Option) interfaces.RetryService {
	return newRetryService(cfg, opts...)
}

func newRetryService(cfg config.RetryConfig, opts ...Option) *RetryService {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	r := &RetryService{
		config:    cfg,
		operation: "unknown",
		retryable: func(err error) bool {
			return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ExecuteWithRetry выполняет операцию, пока она не пройдет, не кончатся
// попытки или не отменится контекст
func (r *RetryService) ExecuteWithRetry(ctx context.Context, operation func() error) error {
	var lastErr error

	for attempt := 1; attempt <= r.config.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		r.metrics.RecordRetryAttempt(r.operation, attempt)
		lastErr = operation()
		if lastErr == nil {
			return nil
		}
		if !r.retryable(lastErr) {
			return lastErr
		}
		if attempt == r.config.MaxAttempts {
			break
		}

		timer := time.NewTimer(r.calculateDelay(attempt))
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		}
	}

	r.metrics.RecordRetryFailure(r.operation)
	return fmt.Errorf("operation failed after %d attempts, last error: %w", r.config.MaxAttempts, lastErr)
}

func (r *RetryService) calculateDelay(attempt int) time.Duration {
	// delay = initialDelay * multiplier^(attempt-1), не больше MaxDelay
	delay := float64(r.config.InitialDelay) * math.Pow(r.config.Multiplier, float64(attempt-1))
	if r.config.MaxDelay > 0 && delay > float64(r.config.MaxDelay) {
		delay = float64(r.config.MaxDelay)
	}
	return time.Duration(delay)
}
