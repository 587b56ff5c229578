package storefront

import (
	"context"
	"fmt"

	"topstore/internal/config"
	"topstore/internal/db"
	"topstore/internal/logger"
	"topstore/internal/migrations"
	"topstore/internal/store"
)

// OpenBackend создает backend хранилища по конфигурации
func OpenBackend(ctx context.Context, cfg *config.Config, log *logger.Logger) (store.Backend, error) {
	log = logger.OrDiscard(log)

	switch cfg.Store.Backend {
	case "", "file":
		backend, err := store.NewFileBackend(cfg.Store.Dir)
		if err != nil {
			return nil, fmt.Errorf("open file store: %w", err)
		}
		log.WithField("dir", backend.Dir()).Info("Using file store")
		return backend, nil

	case "memory":
		log.Warn("Using in-memory store, data will not survive restart")
		return store.NewMemoryBackend(), nil

	case "postgres":
		database, err := db.New(ctx, cfg.DatabaseURL())
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		if cfg.Store.AutoMigrate {
			migrator := migrations.NewMigrator(database.Pool(), "schema_migrations")
			if err := migrator.Migrate(ctx); err != nil {
				database.Close()
				return nil, fmt.Errorf("migrate store schema: %w", err)
			}
		}
		log.WithFields(map[string]interface{}{
			"db_host": cfg.Database.Host,
			"db_name": cfg.Database.Database,
		}).Info("Using postgres store")
		return database, nil

	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}
