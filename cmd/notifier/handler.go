package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"topstore/internal/interfaces"
	"topstore/internal/logger"
	"topstore/internal/model"
)

var errMissingOrderID = errors.New("notification without order id")

// AlertHandler доставляет уведомления из топика оператору.
// Сообщения, которые не удалось разобрать или доставить, уходят в DLQ.
type AlertHandler struct {
	notifier interfaces.OrderNotifier
	retry    interfaces.RetryService
	dlq      interfaces.DLQService
	attempts int
	log      *logrus.Entry
}

func NewAlertHandler(
	notifier interfaces.OrderNotifier,
	retry interfaces.RetryService,
	dlq interfaces.DLQService,
	attempts int,
	log *logger.Logger,
) *AlertHandler {
	return &AlertHandler{
		notifier: notifier,
		retry:    retry,
		dlq:      dlq,
		attempts: attempts,
		log:      logger.OrDiscard(log).Component("alert_handler"),
	}
}

// Handle обрабатывает одно сообщение топика
func (h *AlertHandler) Handle(ctx context.Context, msg []byte) error {
	var note model.OrderNotification
	if err := json.Unmarshal(msg, &note); err != nil {
		err = fmt.Errorf("failed to parse JSON: %w", err)
		h.deadLetter(ctx, msg, err, 0)
		return err
	}
	if note.OrderID == "" {
		h.deadLetter(ctx, msg, errMissingOrderID, 0)
		return errMissingOrderID
	}

	err := h.retry.ExecuteWithRetry(ctx, func() error {
		return h.notifier.Notify(ctx, note)
	})
	if err != nil {
		// остановка сервиса, сообщение перечитается после перезапуска
		if ctx.Err() != nil {
			return err
		}
		h.deadLetter(ctx, msg, err, h.attempts)
		return err
	}

	h.log.WithField("order_id", note.OrderID).Debug("Alert delivered")
	return nil
}

func (h *AlertHandler) deadLetter(ctx context.Context, msg []byte, reason error, attempts int) {
	if err := h.dlq.Send(ctx, msg, reason.Error(), attempts); err != nil {
		h.log.WithError(err).Error("Failed to send message to DLQ")
	}
}

// Run читает топик до отмены ctx
func (h *AlertHandler) Run(ctx context.Context, consumer interfaces.MessageConsumer) error {
	h.log.Info("Starting Kafka consumer...")
	return consumer.ReadMessages(ctx, func(msg []byte) {
		if err := h.Handle(ctx, msg); err != nil {
			h.log.WithError(err).Warn("Error handling message")
		}
	})
}
