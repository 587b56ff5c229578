package dlq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"topstore/internal/interfaces"
	"topstore/internal/logger"
)

// Message конверт сообщения в DLQ
type Message struct {
	OriginalMessage []byte    `json:"original_message"`
	Reason          string    `json:"reason"`
	Timestamp       time.Time `json:"timestamp"`
	Attempts        int       `json:"attempts"`
}

// Service публикует необработанные сообщения в отдельный топик
type Service struct {
	producer interfaces.MessageProducer
	now      func() time.Time
	log      *logrus.Entry
}

// New при producer == nil возвращает заглушку, которая только логирует
func New(producer interfaces.MessageProducer, log *logger.Logger) interfaces.DLQService {
	entry := logger.OrDiscard(log).Component("dlq")
	if producer == nil {
		return &NoOpDLQService{log: entry}
	}
	return &Service{
		producer: producer,
		now:      time.Now,
		log:      entry,
	}
}

func (d *Service) Send(ctx context.Context, original []byte, reason string, attempts int) error {
	payload, err := json.Marshal(Message{
		OriginalMessage: original,
		Reason:          reason,
		Timestamp:       d.now().UTC(),
		Attempts:        attempts,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal DLQ message: %w", err)
	}

	if err := d.producer.Publish(ctx, nil, payload); err != nil {
		return fmt.Errorf("failed to send message to DLQ: %w", err)
	}

	d.log.WithFields(logrus.Fields{
		"reason":   reason,
		"size":     len(original),
		"attempts": attempts,
	}).Warn("Message sent to DLQ")
	return nil
}

func (d *Service) Close() error {
	return d.producer.Close()
}

// Decode разбирает конверт, прочитанный из DLQ
func Decode(data []byte) (Message, error) {
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return Message{}, fmt.Errorf("failed to unmarshal DLQ message: %w", err)
	}
	return m, nil
}

// NoOpDLQService заглушка для случая, когда DLQ отключен
type NoOpDLQService struct {
	log *logrus.Entry
}

func (n *NoOpDLQService) Send(_ context.Context, original []byte, reason string, attempts int) error {
	n.log.WithFields(logrus.Fields{
		"reason":   reason,
		"size":     len(original),
		"attempts": attempts,
	}).Warn("DLQ disabled, message dropped")
	return nil
}

func (n *NoOpDLQService) Close() error {
	return nil
}
