package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"topstore/internal/store"
)

const (
	readCollectionSQL = `SELECT payload FROM store_collections WHERE name = $1`

	writeCollectionSQL = `
		INSERT INTO store_collections (name, payload, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at`
)

// querier часть pgxpool.Pool, которой пользуется backend
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Ping(ctx context.Context) error
}

// DB Postgres backend хранилища: одна строка store_collections на коллекцию
type DB struct {
	q    querier
	pool *pgxpool.Pool
}

// New создает пул подключений и проверяет соединение
func New(ctx context.Context, connStr string) (*DB, error) {
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &DB{q: pool, pool: pool}, nil
}

// Pool пул подключений (для миграций)
func (db *DB) Pool() *pgxpool.Pool {
	return db.pool
}

// Read возвращает JSON документ коллекции
func (db *DB) Read(ctx context.Context, key string) ([]byte, error) {
	var payload []byte
	err := db.q.QueryRow(ctx, readCollectionSQL, key).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return payload, nil
}

// Write upsert документа коллекции
func (db *DB) Write(ctx context.Context, key string, data []byte) error {
	_, err := db.q.Exec(ctx, writeCollectionSQL, key, data)
	return err
}

func (db *DB) Ping(ctx context.Context) error {
	return db.q.Ping(ctx)
}

// Close закрывает подключение
func (db *DB) Close() error {
	if db.pool != nil {
		db.pool.Close()
	}
	return nil
}
