package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"topstore/internal/logger"
)

type Config struct {
	Store          StoreConfig
	Database       DatabaseConfig
	Kafka          KafkaConfig
	HTTP           HTTPConfig
	Shipping       ShippingConfig
	Payment        PaymentConfig
	Retry          RetryConfig
	CircuitBreaker CircuitBreakerConfig
	Notify         NotifyConfig
	RateLimit      RateLimitConfig
	Logger         logger.Config
	Metrics        MetricsConfig
	App            AppConfig
}

// StoreConfig где живут коллекции products/cart/orders
type StoreConfig struct {
	Backend     string // file, postgres, memory
	Dir         string
	AutoMigrate bool // postgres: применить миграции при старте
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type KafkaConfig struct {
	Enabled           bool
	Brokers           []string
	NotificationTopic string
	GroupID           string
	BatchTimeout      time.Duration
	// DLQTopic топик для уведомлений, которые notifier не смог обработать
	DLQTopic string
}

type HTTPConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// ShippingConfig параметры расчета доставки
type ShippingConfig struct {
	OriginCity       string
	SupportedCountry string
	MinCityLength    int
	QuoteTimeout     time.Duration
	SimulatedLatency time.Duration
	CacheTTL         time.Duration
	CacheMaxSize     int
}

// PaymentConfig параметры тестового платежного шлюза
type PaymentConfig struct {
	SimulatedLatency time.Duration
	DeclinePrefix    string
	MaxAmount        int
	Timeout          time.Duration
}

type RetryConfig struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

type CircuitBreakerConfig struct {
	FailureThreshold int
	SuccessThreshold int
	Timeout          time.Duration
	MaxRequests      int
}

// NotifyConfig канал уведомлений оператора
type NotifyConfig struct {
	Timeout time.Duration
}

type RateLimitConfig struct {
	Enabled  bool
	Requests int
	Window   time.Duration
	Burst    int
}

type MetricsConfig struct {
	Enabled bool
	Path    string
}

type AppConfig struct {
	GracefulShutdownTimeout time.Duration
	Environment             string
	StoreLoadTimeout        time.Duration
}

// Load читает конфигурацию из окружения. Если рядом лежит .env, его значения
// подхватываются, но не перекрывают уже заданные переменные. Отсутствующий
// .env не ошибка, файл с синтаксической ошибкой - ошибка.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	return &Config{
		Store: StoreConfig{
			Backend:     strings.ToLower(getEnv("STORE_BACKEND", "file")),
			Dir:         getEnv("STORE_DIR", "data"),
			AutoMigrate: getEnvAsBool("STORE_AUTO_MIGRATE", true),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "127.0.0.1"),
			Port:            getEnvAsInt("DB_PORT", 5432),
			User:            getEnv("DB_USER", "topstore"),
			Password:        getEnv("DB_PASSWORD", "topstore"),
			Database:        getEnv("DB_NAME", "topstore"),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 2),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Kafka: KafkaConfig{
			Enabled:           getEnvAsBool("KAFKA_ENABLED", false),
			Brokers:           getEnvAsSlice("KAFKA_BROKERS", []string{"localhost:9092"}),
			NotificationTopic: getEnv("KAFKA_NOTIFICATION_TOPIC", "order-notifications"),
			GroupID:           getEnv("KAFKA_GROUP_ID", "order-notifier"),
			BatchTimeout:      getEnvAsDuration("KAFKA_BATCH_TIMEOUT", 50*time.Millisecond),
			DLQTopic:          getEnv("KAFKA_DLQ_TOPIC", "order-notifications-dlq"),
		},
		HTTP: HTTPConfig{
			Port:         getEnvAsInt("HTTP_PORT", 8082),
			ReadTimeout:  getEnvAsDuration("HTTP_READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getEnvAsDuration("HTTP_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:  getEnvAsDuration("HTTP_IDLE_TIMEOUT", 60*time.Second),
		},
		Shipping: ShippingConfig{
			OriginCity:       getEnv("SHIPPING_ORIGIN_CITY", "Minsk"),
			SupportedCountry: getEnv("SHIPPING_SUPPORTED_COUNTRY", "Russia"),
			MinCityLength:    getEnvAsInt("SHIPPING_MIN_CITY_LENGTH", 3),
			QuoteTimeout:     getEnvAsDuration("SHIPPING_QUOTE_TIMEOUT", 10*time.Second),
			SimulatedLatency: getEnvAsDuration("SHIPPING_SIMULATED_LATENCY", 800*time.Millisecond),
			CacheTTL:         getEnvAsDuration("SHIPPING_CACHE_TTL", 10*time.Minute),
			CacheMaxSize:     getEnvAsInt("SHIPPING_CACHE_MAX_SIZE", 500),
		},
		Payment: PaymentConfig{
			SimulatedLatency: getEnvAsDuration("PAYMENT_SIMULATED_LATENCY", 1500*time.Millisecond),
			DeclinePrefix:    getEnv("PAYMENT_DECLINE_PREFIX", "4000"),
			MaxAmount:        getEnvAsInt("PAYMENT_MAX_AMOUNT", 1000000),
			Timeout:          getEnvAsDuration("PAYMENT_TIMEOUT", 30*time.Second),
		},
		Retry: RetryConfig{
			MaxAttempts:  getEnvAsInt("RETRY_MAX_ATTEMPTS", 3),
			InitialDelay: getEnvAsDuration("RETRY_INITIAL_DELAY", 200*time.Millisecond),
			MaxDelay:     getEnvAsDuration("RETRY_MAX_DELAY", 2*time.Second),
			Multiplier:   getEnvAsFloat("RETRY_MULTIPLIER", 2.0),
		},
		CircuitBreaker: CircuitBreakerConfig{
			FailureThreshold: getEnvAsInt("CB_FAILURE_THRESHOLD", 5),
			SuccessThreshold: getEnvAsInt("CB_SUCCESS_THRESHOLD", 2),
			Timeout:          getEnvAsDuration("CB_TIMEOUT", 30*time.Second),
			MaxRequests:      getEnvAsInt("CB_MAX_REQUESTS", 3),
		},
		Notify: NotifyConfig{
			Timeout: getEnvAsDuration("NOTIFY_TIMEOUT", 5*time.Second),
		},
		RateLimit: RateLimitConfig{
			Enabled:  getEnvAsBool("RATE_LIMIT_ENABLED", true),
			Requests: getEnvAsInt("RATE_LIMIT_REQUESTS", 100),
			Window:   getEnvAsDuration("RATE_LIMIT_WINDOW", time.Minute),
			Burst:    getEnvAsInt("RATE_LIMIT_BURST", 20),
		},
		Logger: logger.Config{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Metrics: MetricsConfig{
			Enabled: getEnvAsBool("METRICS_ENABLED", true),
			Path:    getEnv("METRICS_PATH", "/metrics"),
		},
		App: AppConfig{
			GracefulShutdownTimeout: getEnvAsDuration("GRACEFUL_SHUTDOWN_TIMEOUT", 30*time.Second),
			Environment:             getEnv("ENVIRONMENT", "development"),
			StoreLoadTimeout:        getEnvAsDuration("STORE_LOAD_TIMEOUT", 10*time.Second),
		},
	}, nil
}

func (c *Config) DatabaseURL() string {
	return "postgres://" + c.Database.User + ":" + c.Database.Password + "@" +
		c.Database.Host + ":" + strconv.Itoa(c.Database.Port) + "/" +
		c.Database.Database + "?sslmode=" + c.Database.SSLMode +
		"&pool_max_conns=" + strconv.Itoa(c.Database.MaxOpenConns)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
