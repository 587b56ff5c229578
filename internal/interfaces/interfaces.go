//go:generate mockgen -destination=../mocks/mocks.go -package=mocks topstore/internal/interfaces ShippingQuoter,PaymentGateway,OrderNotifier,MessageProducer

package interfaces

import (
	"context"

	"topstore/internal/model"
)

// CacheStats статистика кеша
type CacheStats struct {
	Size        int
	Hits        int64
	Misses      int64
	HitRate     float64
	Evictions   int64
	Expirations int64
}

// StoreBackend низкоуровневое хранилище коллекций: ключ -> JSON документ
type StoreBackend interface {
	Read(ctx context.Context, key string) ([]byte, error)
	Write(ctx context.Context, key string, data []byte) error
	Close() error
}

// ShippingQuoter сервис расчета вариантов доставки
type ShippingQuoter interface {
	Quote(ctx context.Context, city string, totalWeightKg float64) ([]model.DeliveryOption, error)
}

// PaymentGateway платежный шлюз. Один вызов Charge - одно списание.
type PaymentGateway interface {
	Charge(ctx context.Context, amount int, instrument model.PaymentInstrument) (model.ChargeResult, error)
}

// OrderNotifier канал уведомлений оператора о новых заказах
type OrderNotifier interface {
	Notify(ctx context.Context, n model.OrderNotification) error
}

// Validator валидация доменных структур по тегам
type Validator interface {
	ValidateProduct(p *model.Product) error
	ValidateDetails(d *model.UserDetails) error
	ValidateInstrument(i *model.PaymentInstrument) error
	ValidateDeliveryOption(o *model.DeliveryOption) error
}

// QuoteCache кеш расчетов доставки
type QuoteCache interface {
	Get(key string) ([]model.DeliveryOption, bool)
	Set(key string, options []model.DeliveryOption)
	Size() int
	Clear()
	GetStats() CacheStats
	Stop()
}

// MessageProducer публикация сообщений в брокер
type MessageProducer interface {
	Publish(ctx context.Context, key, value []byte) error
	Close() error
}

// MessageConsumer интерфейс для Kafka consumer
type MessageConsumer interface {
	ReadMessages(ctx context.Context, handle func([]byte)) error
	Close() error
}

// DLQService отправка необработанных сообщений в dead letter queue
type DLQService interface {
	Send(ctx context.Context, original []byte, reason string, attempts int) error
	Close() error
}

// RetryService интерфейс для retry логики
type RetryService interface {
	ExecuteWithRetry(ctx context.Context, operation func() error) error
}
