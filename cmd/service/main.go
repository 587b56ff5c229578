package main

import (
	"context"
	"flag"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"topstore/internal/config"
	"topstore/internal/logger"
)

func main() {
	envFile := flag.String("env", ".env", "Environment file")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		logger.Default().WithError(err).Fatal("Failed to load configuration")
	}
	log := logger.New(cfg.Logger)
	log.Info("Starting TopStore service...")

	if err := config.NewValidator().Validate(cfg); err != nil {
		log.WithError(err).Fatal("Invalid configuration")
	}

	log.WithFields(logrus.Fields{
		"store":     cfg.Store.Backend,
		"kafka":     cfg.Kafka.Enabled,
		"http_port": cfg.HTTP.Port,
		"env":       cfg.App.Environment,
	}).Info("Configuration loaded")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := NewApp(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize application")
	}
	if err := app.Start(ctx); err != nil {
		log.WithError(err).Fatal("Failed to start application")
	}
	log.Info("TopStore service started, waiting for shutdown signal...")

	<-ctx.Done()
	log.Info("Received shutdown signal, starting graceful shutdown...")

	if err := app.Stop(context.Background()); err != nil {
		log.WithError(err).Error("Graceful shutdown finished with errors")
		return
	}
	log.Info("TopStore service stopped")
}
