package config

import (
	"fmt"
	"net"
	"regexp"
	"strconv"
	"strings"

	apperrors "topstore/internal/errors"
	"topstore/internal/logger"
)

var metricsPathRegex = regexp.MustCompile(`^/[a-zA-Z0-9/_-]*$`)

// Validator валидирует конфигурацию приложения
type Validator struct{}

// NewValidator создает новый валидатор конфигурации
func NewValidator() *Validator {
	return &Validator{}
}

// Validate проверяет корректность всей конфигурации
func (v *Validator) Validate(cfg *Config) error {
	var errs []string

	check := func(section string, err error) {
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", section, err))
		}
	}

	check("Store", v.validateStore(&cfg.Store))
	if cfg.Store.Backend == "postgres" {
		check("Database", v.validateDatabase(&cfg.Database))
	}
	if cfg.Kafka.Enabled {
		check("Kafka", v.validateKafka(&cfg.Kafka))
	}
	check("HTTP", v.validateHTTP(&cfg.HTTP))
	check("Shipping", v.validateShipping(&cfg.Shipping))
	check("Payment", v.validatePayment(&cfg.Payment))
	check("Retry", v.validateRetry(&cfg.Retry))
	check("CircuitBreaker", v.validateCircuitBreaker(&cfg.CircuitBreaker))
	check("RateLimit", v.validateRateLimit(&cfg.RateLimit))
	check("Logger", v.validateLogger(&cfg.Logger))
	check("Metrics", v.validateMetrics(&cfg.Metrics))

	if len(errs) > 0 {
		return apperrors.ErrConfigValidationFailed.WithDetails(strings.Join(errs, "; "))
	}

	return nil
}

func joined(errs []string) error {
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%s", strings.Join(errs, "; "))
}

// validateStore валидирует настройки хранилища
func (v *Validator) validateStore(cfg *StoreConfig) error {
	var errs []string

	switch cfg.Backend {
	case "file":
		if cfg.Dir == "" {
			errs = append(errs, "dir is required for file backend")
		}
	case "postgres", "memory":
	default:
		errs = append(errs, fmt.Sprintf("unknown backend '%s', valid: file, postgres, memory", cfg.Backend))
	}

	return joined(errs)
}

// validateDatabase валидирует конфигурацию базы данных
func (v *Validator) validateDatabase(cfg *DatabaseConfig) error {
	var errs []string

	if cfg.Host == "" {
		errs = append(errs, "host is required")
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		errs = append(errs, "port must be between 1 and 65535")
	}
	if cfg.User == "" {
		errs = append(errs, "user is required")
	}
	if cfg.Database == "" {
		errs = append(errs, "database name is required")
	}
	if cfg.MaxOpenConns <= 0 {
		errs = append(errs, "max_open_conns must be greater than 0")
	}
	if cfg.MaxIdleConns > cfg.MaxOpenConns {
		errs = append(errs, "max_idle_conns cannot be greater than max_open_conns")
	}

	return joined(errs)
}

// validateKafka валидирует конфигурацию Kafka
func (v *Validator) validateKafka(cfg *KafkaConfig) error {
	var errs []string

	if len(cfg.Brokers) == 0 {
		errs = append(errs, "at least one broker is required")
	}
	for i, broker := range cfg.Brokers {
		if err := v.validateHostPort(broker); err != nil {
			errs = append(errs, fmt.Sprintf("broker %d (%s): %v", i, broker, err))
		}
	}
	if cfg.NotificationTopic == "" {
		errs = append(errs, "notification topic is required")
	}
	if cfg.GroupID == "" {
		errs = append(errs, "group_id is required")
	}

	return joined(errs)
}

// validateHTTP валидирует конфигурацию HTTP сервера
func (v *Validator) validateHTTP(cfg *HTTPConfig) error {
	var errs []string

	if cfg.Port <= 0 || cfg.Port > 65535 {
		errs = append(errs, "port must be between 1 and 65535")
	}
	if cfg.ReadTimeout <= 0 {
		errs = append(errs, "read_timeout must be greater than 0")
	}
	if cfg.WriteTimeout <= 0 {
		errs = append(errs, "write_timeout must be greater than 0")
	}
	if cfg.IdleTimeout <= 0 {
		errs = append(errs, "idle_timeout must be greater than 0")
	}

	return joined(errs)
}

// validateShipping валидирует параметры доставки
func (v *Validator) validateShipping(cfg *ShippingConfig) error {
	var errs []string

	if cfg.SupportedCountry == "" {
		errs = append(errs, "supported country is required")
	}
	if cfg.MinCityLength < 1 {
		errs = append(errs, "min_city_length must be at least 1")
	}
	if cfg.QuoteTimeout <= 0 {
		errs = append(errs, "quote_timeout must be greater than 0")
	}
	if cfg.SimulatedLatency < 0 {
		errs = append(errs, "simulated_latency cannot be negative")
	}
	if cfg.SimulatedLatency >= cfg.QuoteTimeout {
		errs = append(errs, "simulated_latency must be less than quote_timeout")
	}
	if cfg.CacheMaxSize < 0 {
		errs = append(errs, "cache_max_size cannot be negative")
	}

	return joined(errs)
}

// validatePayment валидирует параметры платежей
func (v *Validator) validatePayment(cfg *PaymentConfig) error {
	var errs []string

	if cfg.MaxAmount <= 0 {
		errs = append(errs, "max_amount must be greater than 0")
	}
	if cfg.Timeout <= 0 {
		errs = append(errs, "timeout must be greater than 0")
	}
	if cfg.SimulatedLatency < 0 {
		errs = append(errs, "simulated_latency cannot be negative")
	}

	return joined(errs)
}

// validateRetry валидирует конфигурацию retry механизма
func (v *Validator) validateRetry(cfg *RetryConfig) error {
	var errs []string

	if cfg.MaxAttempts <= 0 {
		errs = append(errs, "max_attempts must be greater than 0")
	}
	if cfg.MaxAttempts > 10 {
		errs = append(errs, "max_attempts should not exceed 10")
	}
	if cfg.InitialDelay <= 0 {
		errs = append(errs, "initial_delay must be greater than 0")
	}
	if cfg.Multiplier <= 0 {
		errs = append(errs, "multiplier must be greater than 0")
	}
	if cfg.InitialDelay > cfg.MaxDelay {
		errs = append(errs, "initial_delay cannot be greater than max_delay")
	}

	return joined(errs)
}

func (v *Validator) validateCircuitBreaker(cfg *CircuitBreakerConfig) error {
	var errs []string

	if cfg.FailureThreshold <= 0 {
		errs = append(errs, "failure_threshold must be greater than 0")
	}
	if cfg.SuccessThreshold <= 0 {
		errs = append(errs, "success_threshold must be greater than 0")
	}
	if cfg.Timeout <= 0 {
		errs = append(errs, "timeout must be greater than 0")
	}

	return joined(errs)
}

func (v *Validator) validateRateLimit(cfg *RateLimitConfig) error {
	if !cfg.Enabled {
		return nil
	}
	var errs []string

	if cfg.Requests <= 0 {
		errs = append(errs, "requests must be greater than 0")
	}
	if cfg.Window <= 0 {
		errs = append(errs, "window must be greater than 0")
	}

	return joined(errs)
}

// validateLogger валидирует конфигурацию логгера
func (v *Validator) validateLogger(cfg *logger.Config) error {
	var errs []string

	validLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "warning": true, "error": true, "fatal": true, "panic": true,
	}
	if !validLevels[strings.ToLower(cfg.Level)] {
		errs = append(errs, fmt.Sprintf("invalid log level '%s', valid levels: debug, info, warn, error, fatal, panic", cfg.Level))
	}

	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[strings.ToLower(cfg.Format)] {
		errs = append(errs, fmt.Sprintf("invalid log format '%s', valid formats: json, text", cfg.Format))
	}

	return joined(errs)
}

// validateMetrics валидирует конфигурацию метрик
func (v *Validator) validateMetrics(cfg *MetricsConfig) error {
	if !cfg.Enabled {
		return nil
	}
	if !metricsPathRegex.MatchString(cfg.Path) {
		return fmt.Errorf("path must start with '/' and contain only [a-zA-Z0-9/_-]")
	}
	return nil
}

// validateHostPort валидирует формат host:port
func (v *Validator) validateHostPort(addr string) error {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("invalid host:port format: %v", err)
	}
	if host == "" {
		return fmt.Errorf("host cannot be empty")
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return fmt.Errorf("invalid port: %v", err)
	}
	if port <= 0 || port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535")
	}
	return nil
}
