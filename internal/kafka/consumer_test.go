package kafka

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"

	"topstore/internal/config"
	"topstore/internal/logger"
)

func testConfig() config.KafkaConfig {
	return config.KafkaConfig{
		Brokers:           []string{"localhost:9092"},
		NotificationTopic: "order-notifications",
		GroupID:           "order-notifier",
		BatchTimeout:      10 * time.Millisecond,
	}
}

func TestNewConsumer(t *testing.T) {
	tests := []struct {
		name        string
		brokers     []string
		topic       string
		groupID     string
		expectError bool
	}{
		{"valid configuration", []string{"localhost:9092"}, "order-notifications", "order-notifier", false},
		{"multiple brokers", []string{"broker1:9092", "broker2:9092"}, "order-notifications", "order-notifier", false},
		{"empty brokers", []string{}, "order-notifications", "order-notifier", true},
		{"empty topic", []string{"localhost:9092"}, "", "order-notifier", true},
		{"empty group ID", []string{"localhost:9092"}, "order-notifications", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			cfg.Brokers = tt.brokers
			cfg.NotificationTopic = tt.topic
			cfg.GroupID = tt.groupID

			consumer, err := NewConsumer(cfg, nil)
			if tt.expectError {
				if err == nil {
					t.Error("Expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			defer consumer.Close()
		})
	}
}

func TestConsumer_ReadMessagesWithNilHandler(t *testing.T) {
	consumer, err := NewConsumer(testConfig(), nil)
	if err != nil {
		t.Fatalf("NewConsumer: %v", err)
	}
	defer consumer.Close()

	if err := consumer.ReadMessages(context.Background(), nil); err == nil {
		t.Error("Expected error for nil handler")
	}
}

func TestConsumer_ReadMessagesWithContextCancellation(t *testing.T) {
	consumer, err := NewConsumer(testConfig(), nil)
	if err != nil {
		t.Fatalf("NewConsumer: %v", err)
	}
	defer consumer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	messageCount := 0
	err = consumer.ReadMessages(ctx, func([]byte) { messageCount++ })
	if err == nil {
		t.Error("Expected context cancellation error, got nil")
	}
	if messageCount > 0 {
		t.Errorf("Expected 0 messages processed, got %d", messageCount)
	}
}

func TestConsumer_ReadMessagesUnavailableBroker(t *testing.T) {
	cfg := testConfig()
	cfg.Brokers = []string{"127.0.0.1:1"}
	consumer, err := NewConsumer(cfg, nil)
	if err != nil {
		t.Fatalf("NewConsumer: %v", err)
	}
	defer consumer.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	err = consumer.ReadMessages(ctx, func([]byte) { panic("must not be called") })
	if err == nil {
		t.Error("Expected error when Kafka is unavailable, got nil")
	}
}

func TestConsumer_Close(t *testing.T) {
	consumer, err := NewConsumer(testConfig(), nil)
	if err != nil {
		t.Fatalf("NewConsumer: %v", err)
	}
	if err := consumer.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

// fakeReader отдает заданные сообщения и запоминает закоммиченные offset
type fakeReader struct {
	mu        sync.Mutex
	pending   []kafka.Message
	committed []int64
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	if len(r.pending) > 0 {
		m := r.pending[0]
		r.pending = r.pending[1:]
		r.mu.Unlock()
		return m, nil
	}
	r.mu.Unlock()
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *fakeReader) Close() error { return nil }

func TestConsumer_CommitsAfterHandle(t *testing.T) {
	reader := &fakeReader{pending: []kafka.Message{
		{Offset: 1, Value: []byte("ok")},
		{Offset: 2, Value: []byte("panic")},
		{Offset: 3, Value: []byte("shutdown")},
	}}
	consumer := &Consumer{reader: reader, log: logger.OrDiscard(nil).Component("kafka_consumer")}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var handled []string
	err := consumer.ReadMessages(ctx, func(value []byte) {
		handled = append(handled, string(value))
		switch string(value) {
		case "panic":
			panic("bad message")
		case "shutdown":
			cancel()
		}
	})
	if err == nil {
		t.Error("Expected context error after shutdown")
	}
	if len(handled) != 3 {
		t.Fatalf("Expected 3 handled messages, got %v", handled)
	}

	// сообщение, прерванное остановкой, не коммитится
	if len(reader.committed) != 2 || reader.committed[0] != 1 || reader.committed[1] != 2 {
		t.Errorf("Expected offsets [1 2] committed, got %v", reader.committed)
	}
}
