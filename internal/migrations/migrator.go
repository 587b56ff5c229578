package migrations

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	apperrors "topstore/internal/errors"
)

// Pool часть pgxpool.Pool, нужная мигратору
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Migration одна версия схемы
type Migration struct {
	Version   int
	Name      string
	UpSQL     string
	DownSQL   string
	AppliedAt *time.Time
}

// MigrationStatus состояние миграции для вывода в status
type MigrationStatus struct {
	Version   int
	Name      string
	Applied   bool
	AppliedAt *time.Time
}

// Migrator управляет миграциями базы данных
type Migrator struct {
	db         Pool
	table      string
	migrations []Migration
}

// NewMigrator создает мигратор с уже зарегистрированной схемой хранилища
func NewMigrator(db Pool, tableName string) *Migrator {
	if tableName == "" {
		tableName = "schema_migrations"
	}

	m := &Migrator{db: db, table: tableName}
	registerStoreSchema(m)
	return m
}

// AddMigration добавляет миграцию, список держится отсортированным по версии
func (m *Migrator) AddMigration(version int, name, upSQL, downSQL string) {
	for i, existing := range m.migrations {
		if existing.Version == version {
			m.migrations[i] = Migration{Version: version, Name: name, UpSQL: upSQL, DownSQL: downSQL}
			return
		}
	}

	m.migrations = append(m.migrations, Migration{
		Version: version,
		Name:    name,
		UpSQL:   upSQL,
		DownSQL: downSQL,
	})
	sort.Slice(m.migrations, func(i, j int) bool {
		return m.migrations[i].Version < m.migrations[j].Version
	})
}

// Migrations зарегистрированные миграции
func (m *Migrator) Migrations() []Migration {
	out := make([]Migration, len(m.migrations))
	copy(out, m.migrations)
	return out
}

// Initialize создает таблицу миграций если она не существует
func (m *Migrator) Initialize(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			version INTEGER PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			applied_at TIMESTAMPTZ DEFAULT now()
		)
	`, m.table)

	if _, err := m.db.Exec(ctx, query); err != nil {
		return apperrors.Wrap(err, apperrors.ErrorTypeStorage, "failed to create migrations table")
	}
	return nil
}

// GetAppliedMigrations возвращает примененные миграции по версиям
func (m *Migrator) GetAppliedMigrations(ctx context.Context) (map[int]*Migration, error) {
	query := fmt.Sprintf("SELECT version, name, applied_at FROM %s ORDER BY version", m.table)

	rows, err := m.db.Query(ctx, query)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrorTypeStorage, "failed to query applied migrations")
	}
	defer rows.Close()

	applied := make(map[int]*Migration)
	for rows.Next() {
		var (
			version   int
			name      string
			appliedAt time.Time
		)
		if err := rows.Scan(&version, &name, &appliedAt); err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrorTypeStorage, "failed to scan migration row")
		}
		applied[version] = &Migration{Version: version, Name: name, AppliedAt: &appliedAt}
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrorTypeStorage, "error iterating migration rows")
	}

	return applied, nil
}

// Migrate применяет все непримененные миграции одной транзакцией
func (m *Migrator) Migrate(ctx context.Context) error {
	if err := m.Initialize(ctx); err != nil {
		return err
	}

	applied, err := m.GetAppliedMigrations(ctx)
	if err != nil {
		return err
	}
	toApply := pending(m.migrations, applied)
	if len(toApply) == 0 {
		return nil
	}

	tx, err := m.db.Begin(ctx)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrorTypeStorage, "failed to begin migration transaction")
	}
	defer tx.Rollback(ctx)

	for _, migration := range toApply {
		if _, err := tx.Exec(ctx, migration.UpSQL); err != nil {
			return apperrors.Wrap(err, apperrors.ErrorTypeStorage,
				fmt.Sprintf("failed to execute migration %d: %s", migration.Version, migration.Name))
		}
		record := fmt.Sprintf("INSERT INTO %s (version, name) VALUES ($1, $2)", m.table)
		if _, err := tx.Exec(ctx, record, migration.Version, migration.Name); err != nil {
			return apperrors.Wrap(err, apperrors.ErrorTypeStorage, "failed to record migration")
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return apperrors.Wrap(err, apperrors.ErrorTypeStorage, "failed to commit migration transaction")
	}
	return nil
}

// Rollback откатывает последнюю примененную миграцию
func (m *Migrator) Rollback(ctx context.Context) error {
	applied, err := m.GetAppliedMigrations(ctx)
	if err != nil {
		return err
	}
	if len(applied) == 0 {
		return nil
	}

	lastVersion := 0
	for version := range applied {
		if version > lastVersion {
			lastVersion = version
		}
	}

	var target *Migration
	for i := range m.migrations {
		if m.migrations[i].Version == lastVersion {
			target = &m.migrations[i]
			break
		}
	}
	if target == nil {
		return apperrors.New(apperrors.ErrorTypeStorage, fmt.Sprintf("migration version %d not found", lastVersion))
	}
	if target.DownSQL == "" {
		return apperrors.New(apperrors.ErrorTypeStorage, fmt.Sprintf("no rollback SQL for migration %d", lastVersion))
	}

	tx, err := m.db.Begin(ctx)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrorTypeStorage, "failed to begin rollback transaction")
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, target.DownSQL); err != nil {
		return apperrors.Wrap(err, apperrors.ErrorTypeStorage,
			fmt.Sprintf("failed to execute rollback SQL for migration %d", lastVersion))
	}
	query := fmt.Sprintf("DELETE FROM %s WHERE version = $1", m.table)
	if _, err := tx.Exec(ctx, query, lastVersion); err != nil {
		return apperrors.Wrap(err, apperrors.ErrorTypeStorage, "failed to remove migration record")
	}

	if err := tx.Commit(ctx); err != nil {
		return apperrors.Wrap(err, apperrors.ErrorTypeStorage, "failed to commit rollback transaction")
	}
	return nil
}

// GetStatus возвращает статус всех зарегистрированных миграций
func (m *Migrator) GetStatus(ctx context.Context) ([]MigrationStatus, error) {
	applied, err := m.GetAppliedMigrations(ctx)
	if err != nil {
		return nil, err
	}
	return statuses(m.migrations, applied), nil
}

func pending(all []Migration, applied map[int]*Migration) []Migration {
	var out []Migration
	for _, migration := range all {
		if _, ok := applied[migration.Version]; !ok {
			out = append(out, migration)
		}
	}
	return out
}

func statuses(all []Migration, applied map[int]*Migration) []MigrationStatus {
	out := make([]MigrationStatus, 0, len(all))
	for _, migration := range all {
		status := MigrationStatus{Version: migration.Version, Name: migration.Name}
		if a, ok := applied[migration.Version]; ok {
			status.Applied = true
			status.AppliedAt = a.AppliedAt
		}
		out = append(out, status)
	}
	return out
}

// registerStoreSchema схема таблицы коллекций Postgres backend
func registerStoreSchema(m *Migrator) {
	m.AddMigration(1, "create_store_collections", `
		CREATE TABLE IF NOT EXISTS store_collections (
			name VARCHAR(128) PRIMARY KEY,
			payload JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
	`, `
		DROP TABLE IF EXISTS store_collections;
	`)

	m.AddMigration(2, "index_store_collections_updated_at", `
		CREATE INDEX IF NOT EXISTS idx_store_collections_updated_at ON store_collections(updated_at);
	`, `
		DROP INDEX IF EXISTS idx_store_collections_updated_at;
	`)
}
