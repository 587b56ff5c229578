package circuitbreaker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"topstore/internal/config"
)

// State состояние circuit breaker
type State int

const (
	StateClosed   State = iota // запросы проходят
	StateOpen                  // запросы отклоняются без вызова
	StateHalfOpen              // пропускается ограниченное число пробных запросов
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "CLOSED"
	case StateOpen:
		return "OPEN"
	case StateHalfOpen:
		return "HALF_OPEN"
	default:
		return "UNKNOWN"
	}
}

// ErrOpen запрос отклонен без вызова сервиса
var ErrOpen = errors.New("circuit breaker is open")

// CircuitBreaker защищает вызовы внешнего сервиса от лавины ошибок
type CircuitBreaker struct {
	name   string
	config config.CircuitBreakerConfig
	now    func() time.Time

	mu           sync.Mutex
	state        State
	failureCount int
	successCount int
	inFlight     int
	openedAt     time.Time

	onStateChange func(name string, from, to State)
}

// New создает circuit breaker, нулевые значения конфигурации заменяются разумными
func New(name string, cfg config.CircuitBreakerConfig) *CircuitBreaker {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.SuccessThreshold <= 0 {
		cfg.SuccessThreshold = 2
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRequests <= 0 {
		cfg.MaxRequests = 1
	}

	return &CircuitBreaker{
		name:   name,
		config: cfg,
		now:    time.Now,
		state:  StateClosed,
	}
}

// OnStateChange устанавливает callback смены состояния
func (cb *CircuitBreaker) OnStateChange(fn func(name string, from, to State)) *CircuitBreaker {
	cb.onStateChange = fn
	return cb
}

// Execute вызывает fn, если breaker его пропускает. Отмена контекста
// вызывающим не считается отказом сервиса.
func (cb *CircuitBreaker) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := cb.before(); err != nil {
		return err
	}

	err := fn(ctx)

	cancelled := err != nil && ctx.Err() != nil &&
		(errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded))
	cb.after(err == nil, cancelled)
	return err
}

// State текущее состояние
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.refresh()
	return cb.state
}

// Reset возвращает breaker в закрытое состояние
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.transition(StateClosed)
}

func (cb *CircuitBreaker) before() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.refresh()
	switch cb.state {
	case StateOpen:
		return fmt.Errorf("%s: %w", cb.name, ErrOpen)
	case StateHalfOpen:
		if cb.inFlight >= cb.config.MaxRequests {
			return fmt.Errorf("%s: %w", cb.name, ErrOpen)
		}
	}
	cb.inFlight++
	return nil
}

func (cb *CircuitBreaker) after(success, cancelled bool) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.inFlight--
	if cancelled {
		return
	}

	switch cb.state {
	case StateClosed:
		if success {
			cb.failureCount = 0
			return
		}
		cb.failureCount++
		if cb.failureCount >= cb.config.FailureThreshold {
			cb.transition(StateOpen)
		}
	case StateHalfOpen:
		if !success {
			cb.transition(StateOpen)
			return
		}
		cb.successCount++
		if cb.successCount >= cb.config.SuccessThreshold {
			cb.transition(StateClosed)
		}
	}
}

// refresh переводит Open в HalfOpen по истечении таймаута. Вызывается под mu.
func (cb *CircuitBreaker) refresh() {
	if cb.state == StateOpen && cb.now().Sub(cb.openedAt) >= cb.config.Timeout {
		cb.transition(StateHalfOpen)
	}
}

func (cb *CircuitBreaker) transition(to State) {
	from := cb.state
	cb.state = to
	cb.failureCount = 0
	cb.successCount = 0
	if to == StateOpen {
		cb.openedAt = cb.now()
	}
	if from != to && cb.onStateChange != nil {
		cb.onStateChange(cb.name, from, to)
	}
}
