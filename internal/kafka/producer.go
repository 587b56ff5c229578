package kafka

import (
	"context"
	"errors"

	"github.com/segmentio/kafka-go"

	"topstore/internal/config"
	"topstore/internal/interfaces"
)

// Producer синхронная запись в топик уведомлений
type Producer struct {
	writer *kafka.Writer
}

var _ interfaces.MessageProducer = (*Producer)(nil)

func NewProducer(cfg config.KafkaConfig) (*Producer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka: no brokers configured")
	}
	if cfg.NotificationTopic == "" {
		return nil, errors.New("kafka: notification topic is empty")
	}

	return &Producer{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(cfg.Brokers...),
			Topic:                  cfg.NotificationTopic,
			Balancer:               &kafka.Hash{},
			BatchTimeout:           cfg.BatchTimeout,
			RequiredAcks:           kafka.RequireOne,
			AllowAutoTopicCreation: true,
		},
	}, nil
}

// Publish пишет одно сообщение, сообщения с одним ключом попадают в одну партицию
func (p *Producer) Publish(ctx context.Context, key, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{Key: key, Value: value})
}

// Topic топик, в который пишет producer
func (p *Producer) Topic() string {
	return p.writer.Topic
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
