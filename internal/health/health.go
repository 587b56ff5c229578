package health

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/segmentio/kafka-go"
)

const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// Checker проверка одной зависимости
type Checker interface {
	Check(ctx context.Context) error
	Name() string
}

// CheckResult результат одной проверки
type CheckResult struct {
	Status   string `json:"status"`
	Critical bool   `json:"critical"`
	Duration string `json:"duration"`
	Error    string `json:"error,omitempty"`
}

// Report общий статус и результаты по зависимостям
type Report struct {
	Status    string                 `json:"status"`
	Checks    map[string]CheckResult `json:"checks"`
	Timestamp string                 `json:"timestamp"`
}

type registered struct {
	checker  Checker
	critical bool
}

// Health набор проверок. Отказ критичной зависимости делает сервис
// unhealthy, некритичной - degraded.
type Health struct {
	checkers []registered
	timeout  time.Duration
}

func New() *Health {
	return &Health{
		checkers: make([]registered, 0),
		timeout:  5 * time.Second,
	}
}

func (h *Health) AddChecker(checker Checker) {
	h.checkers = append(h.checkers, registered{checker: checker, critical: true})
}

// AddOptional добавляет некритичную проверку
func (h *Health) AddOptional(checker Checker) {
	h.checkers = append(h.checkers, registered{checker: checker, critical: false})
}

func (h *Health) Check(ctx context.Context) Report {
	report := Report{
		Status:    StatusHealthy,
		Checks:    make(map[string]CheckResult, len(h.checkers)),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	for _, r := range h.checkers {
		start := time.Now()
		err := r.checker.Check(ctx)

		result := CheckResult{
			Status:   StatusHealthy,
			Critical: r.critical,
			Duration: time.Since(start).String(),
		}
		if err != nil {
			result.Status = StatusUnhealthy
			result.Error = err.Error()
			switch {
			case r.critical:
				report.Status = StatusUnhealthy
			case report.Status == StatusHealthy:
				report.Status = StatusDegraded
			}
		}
		report.Checks[r.checker.Name()] = result
	}
	return report
}

// Handler gin handler, 503 только для unhealthy
func (h *Health) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
		defer cancel()

		report := h.Check(ctx)
		status := http.StatusOK
		if report.Status == StatusUnhealthy {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, report)
	}
}

// CheckFunc проверка из функции
type CheckFunc struct {
	name string
	fn   func(ctx context.Context) error
}

func NewCheckFunc(name string, fn func(ctx context.Context) error) *CheckFunc {
	return &CheckFunc{name: name, fn: fn}
}

func (c *CheckFunc) Check(ctx context.Context) error { return c.fn(ctx) }
func (c *CheckFunc) Name() string                    { return c.name }

// Pinger то, что умеет проверить соединение (хранилище)
type Pinger interface {
	Ping(ctx context.Context) error
}

// NewStoreChecker проверка чтения из хранилища коллекций
func NewStoreChecker(p Pinger) Checker {
	return NewCheckFunc("store", p.Ping)
}

// KafkaChecker проверяет, что хотя бы один брокер принимает соединение
type KafkaChecker struct {
	brokers []string
	dial    func(ctx context.Context, network, address string) (*kafka.Conn, error)
}

func NewKafkaChecker(brokers []string) *KafkaChecker {
	return &KafkaChecker{brokers: brokers, dial: kafka.DialContext}
}

func (c *KafkaChecker) Name() string { return "kafka" }

func (c *KafkaChecker) Check(ctx context.Context) error {
	if len(c.brokers) == 0 {
		return errors.New("no brokers configured")
	}
	var errs []error
	for _, broker := range c.brokers {
		conn, err := c.dial(ctx, "tcp", broker)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		conn.Close()
		return nil
	}
	return errors.Join(errs...)
}
