package notify

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/sirupsen/logrus"

	"topstore/internal/interfaces"
	"topstore/internal/logger"
	"topstore/internal/model"
)

// Named канал с именем для метрик
type Named interface {
	Name() string
}

// LogNotifier пишет оповещение оператору в лог
type LogNotifier struct {
	log *logrus.Entry
}

func NewLogNotifier(log *logger.Logger) *LogNotifier {
	return &LogNotifier{log: logger.OrDiscard(log).Component("operator_alert")}
}

func (n *LogNotifier) Name() string { return "log" }

func (n *LogNotifier) Notify(ctx context.Context, note model.OrderNotification) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	n.log.WithFields(logrus.Fields{
		"order_id":        note.OrderID,
		"customer":        note.CustomerName,
		"phone":           note.Phone,
		"city":            note.City,
		"address":         note.Address,
		"total_amount":    note.TotalAmount,
		"delivery_method": note.DeliveryMethodName,
	}).Info("New order")
	return nil
}

// KafkaNotifier публикует оповещение в топик, ключ сообщения - id заказа
type KafkaNotifier struct {
	producer interfaces.MessageProducer
}

func NewKafkaNotifier(producer interfaces.MessageProducer) *KafkaNotifier {
	return &KafkaNotifier{producer: producer}
}

func (n *KafkaNotifier) Name() string { return "kafka" }

func (n *KafkaNotifier) Notify(ctx context.Context, note model.OrderNotification) error {
	payload, err := json.Marshal(note)
	if err != nil {
		return err
	}
	return n.producer.Publish(ctx, []byte(note.OrderID), payload)
}

// Multi рассылает оповещение во все каналы, ошибки объединяются
type Multi []interfaces.OrderNotifier

func (m Multi) Name() string { return "multi" }

func (m Multi) Notify(ctx context.Context, note model.OrderNotification) error {
	var errs []error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.Notify(ctx, note); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func channelName(n interfaces.OrderNotifier) string {
	if named, ok := n.(Named); ok {
		return named.Name()
	}
	return "default"
}
