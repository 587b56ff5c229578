package store

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/sirupsen/logrus"

	"topstore/internal/logger"
	"topstore/internal/metrics"
)

// Имена коллекций. Совпадают с ключами, под которыми данные лежали раньше.
const (
	CollectionProducts = "topstore_products"
	CollectionCart     = "topstore_cart"
	CollectionOrders   = "topstore_orders"
)

// Store долговременное хранилище коллекций поверх Backend.
// Ошибки хранилища не поднимаются к вызывающему: они логируются и
// учитываются в метриках, состояние в памяти остается источником истины.
type Store struct {
	backend Backend
	log     *logrus.Entry
	metrics *metrics.Metrics
}

// New создает хранилище. log и m могут быть nil.
func New(backend Backend, log *logger.Logger, m *metrics.Metrics) *Store {
	return &Store{
		backend: backend,
		log:     logger.OrDiscard(log).Component("store"),
		metrics: m,
	}
}

// Backend используемый backend
func (s *Store) Backend() Backend {
	return s.backend
}

// Ping проверяет, что backend отвечает
func (s *Store) Ping(ctx context.Context) error {
	_, err := s.backend.Read(ctx, CollectionProducts)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	return err
}

func (s *Store) Close() error {
	return s.backend.Close()
}

// Load читает коллекцию. Второе значение false, если коллекция ни разу не
// сохранялась. Нечитаемая или поврежденная коллекция загружается пустой.
func Load[T any](ctx context.Context, s *Store, collection string) ([]T, bool) {
	data, err := s.backend.Read(ctx, collection)
	if errors.Is(err, ErrNotFound) {
		return []T{}, false
	}
	if err != nil {
		s.log.WithError(err).WithField("collection", collection).Warn("Failed to read collection, starting empty")
		s.metrics.RecordLoadAnomaly(collection, "read")
		return []T{}, true
	}

	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		s.log.WithError(err).WithField("collection", collection).Warn("Corrupt collection, starting empty")
		s.metrics.RecordLoadAnomaly(collection, "decode")
		return []T{}, true
	}
	if items == nil {
		items = []T{}
	}

	s.log.WithFields(logrus.Fields{
		"collection": collection,
		"count":      len(items),
	}).Debug("Collection loaded")

	return items, true
}

// Save перезаписывает коллекцию целиком. Сбой записи только логируется.
func Save[T any](ctx context.Context, s *Store, collection string, items []T) {
	if items == nil {
		items = []T{}
	}
	data, err := json.Marshal(items)
	if err == nil {
		err = s.backend.Write(ctx, collection, data)
	}

	s.metrics.RecordStoreSave(collection, err)
	if err != nil {
		s.log.WithError(err).WithField("collection", collection).Warn("Failed to save collection")
	}
}
