package main

import (
	"context"
	"errors"
	"flag"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"topstore/internal/config"
	"topstore/internal/dlq"
	"topstore/internal/interfaces"
	"topstore/internal/kafka"
	"topstore/internal/logger"
	"topstore/internal/metrics"
	"topstore/internal/notify"
	"topstore/internal/retry"
)

// notifier читает топик уведомлений о заказах и показывает их оператору
func main() {
	envFile := flag.String("env", ".env", "Environment file")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		logger.Default().WithError(err).Fatal("Failed to load configuration")
	}
	log := logger.New(cfg.Logger)

	if !cfg.Kafka.Enabled {
		log.Fatal("Kafka is disabled, set KAFKA_ENABLED=true to run the notifier")
	}
	if err := config.NewValidator().Validate(cfg); err != nil {
		log.WithError(err).Fatal("Invalid configuration")
	}

	consumer, err := kafka.NewConsumer(cfg.Kafka, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to create Kafka consumer")
	}
	defer consumer.Close()

	var dlqProducer interfaces.MessageProducer
	if cfg.Kafka.DLQTopic != "" {
		dlqCfg := cfg.Kafka
		dlqCfg.NotificationTopic = cfg.Kafka.DLQTopic
		if dlqProducer, err = kafka.NewProducer(dlqCfg); err != nil {
			log.WithError(err).Fatal("Failed to create DLQ producer")
		}
	}
	deadLetters := dlq.New(dlqProducer, log)
	defer deadLetters.Close()

	m := metrics.New()
	handler := NewAlertHandler(
		notify.NewLogNotifier(log),
		retry.NewRetryService(cfg.Retry, retry.WithMetrics(m, "operator_alert")),
		deadLetters,
		cfg.Retry.MaxAttempts,
		log,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.WithFields(logrus.Fields{
		"brokers": cfg.Kafka.Brokers,
		"topic":   cfg.Kafka.NotificationTopic,
		"group":   cfg.Kafka.GroupID,
		"dlq":     cfg.Kafka.DLQTopic,
	}).Info("Order notifier started")

	if err := handler.Run(ctx, consumer); err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Error("Kafka consumer stopped with error")
		return
	}
	log.Info("Order notifier stopped")
}
