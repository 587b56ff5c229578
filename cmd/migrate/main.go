package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"topstore/internal/config"
	"topstore/internal/db"
	"topstore/internal/logger"
	"topstore/internal/migrations"
)

func main() {
	var (
		command = flag.String("cmd", "status", "Migration command: status, up, down")
		envFile = flag.String("env", ".env", "Environment file")
		timeout = flag.Duration("timeout", time.Minute, "Overall timeout")
	)
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		logger.Default().WithError(err).Fatal("Failed to load configuration")
	}
	log := logger.New(cfg.Logger)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	database, err := db.New(ctx, cfg.DatabaseURL())
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}
	defer database.Close()

	migrator := migrations.NewMigrator(database.Pool(), "schema_migrations")

	switch *command {
	case "status":
		err = showStatus(ctx, migrator)
	case "up":
		err = migrator.Migrate(ctx)
	case "down":
		err = migrator.Rollback(ctx)
	default:
		fmt.Printf("Unknown command: %s\n", *command)
		fmt.Println("Available commands: status, up, down")
		os.Exit(1)
	}
	if err != nil {
		log.WithError(err).WithField("cmd", *command).Fatal("Migration command failed")
	}
	log.WithField("cmd", *command).Info("Migration command completed")
}

func showStatus(ctx context.Context, migrator *migrations.Migrator) error {
	statuses, err := migrator.GetStatus(ctx)
	if err != nil {
		return err
	}

	fmt.Println("Migration Status:")
	fmt.Println("=================")
	for _, status := range statuses {
		statusText := "PENDING"
		if status.Applied {
			statusText = "APPLIED"
			if status.AppliedAt != nil {
				statusText += fmt.Sprintf(" (%s)", status.AppliedAt.Format("2006-01-02 15:04:05"))
			}
		}
		fmt.Printf("%3d | %-36s | %s\n", status.Version, status.Name, statusText)
	}
	return nil
}
