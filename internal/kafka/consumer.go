package kafka

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"topstore/internal/config"
	"topstore/internal/logger"
)

// messageReader часть kafka.Reader, которой пользуется Consumer
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer читает уведомления о заказах из топика. Offset коммитится после
// обработки сообщения, прерванное остановкой сообщение перечитывается.
type Consumer struct {
	reader messageReader
	log    *logrus.Entry
}

// NewConsumer создает consumer группы cfg.GroupID на топике уведомлений
func NewConsumer(cfg config.KafkaConfig, log *logger.Logger) (*Consumer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka: no brokers configured")
	}
	if cfg.NotificationTopic == "" {
		return nil, errors.New("kafka: notification topic is empty")
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: cfg.Brokers,
		Topic:   cfg.NotificationTopic,
		GroupID: cfg.GroupID,
	})
	return &Consumer{
		reader: reader,
		log:    logger.OrDiscard(log).Component("kafka_consumer"),
	}, nil
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}

// ReadMessages читает сообщения до отмены ctx и вызывает handle для каждого.
// Паника в handle логируется и не останавливает чтение, такое сообщение
// коммитится. Если ctx отменен во время handle, offset не коммитится.
func (c *Consumer) ReadMessages(ctx context.Context, handle func([]byte)) error {
	if handle == nil {
		return errors.New("handle is nil")
	}
	for {
		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			// reader закрыт
			if errors.Is(err, io.EOF) {
				return err
			}
			c.log.WithError(err).Warn("Kafka read error")
			continue
		}

		c.safeHandle(handle, m)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := c.reader.CommitMessages(ctx, m); err != nil {
			c.log.WithError(err).WithFields(logrus.Fields{
				"partition": m.Partition,
				"offset":    m.Offset,
			}).Warn("Failed to commit offset")
		}
	}
}

func (c *Consumer) safeHandle(handle func([]byte), m kafka.Message) {
	defer func() {
		if r := recover(); r != nil {
			c.log.WithFields(logrus.Fields{
				"partition": m.Partition,
				"offset":    m.Offset,
				"panic":     fmt.Sprint(r),
			}).Error("Message handler panicked")
		}
	}()
	handle(m.Value)
}
