package db

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"topstore/internal/store"
)

// fakeRow реализует pgx.Row
type fakeRow struct {
	payload []byte
	err     error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*(dest[0].(*[]byte)) = r.payload
	return nil
}

// fakeQuerier хранит коллекции в map вместо таблицы
type fakeQuerier struct {
	rows    map[string][]byte
	execErr error
	lastSQL string
}

func (q *fakeQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	q.lastSQL = sql
	payload, ok := q.rows[args[0].(string)]
	if !ok {
		return fakeRow{err: pgx.ErrNoRows}
	}
	return fakeRow{payload: payload}
}

func (q *fakeQuerier) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	q.lastSQL = sql
	if q.execErr != nil {
		return pgconn.CommandTag{}, q.execErr
	}
	q.rows[args[0].(string)] = args[1].([]byte)
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (q *fakeQuerier) Ping(ctx context.Context) error { return nil }

func TestDB_ReadMissingIsNotFound(t *testing.T) {
	db := &DB{q: &fakeQuerier{rows: map[string][]byte{}}}

	_, err := db.Read(context.Background(), store.CollectionOrders)
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Expected store.ErrNotFound, got %v", err)
	}
}

func TestDB_WriteThenRead(t *testing.T) {
	q := &fakeQuerier{rows: map[string][]byte{}}
	db := &DB{q: q}
	ctx := context.Background()

	if err := db.Write(ctx, store.CollectionCart, []byte(`[{"cartId":"c1"}]`)); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if q.lastSQL != writeCollectionSQL {
		t.Error("Expected upsert statement")
	}

	data, err := db.Read(ctx, store.CollectionCart)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(data) != `[{"cartId":"c1"}]` {
		t.Errorf("Unexpected payload %s", data)
	}
}

func TestDB_WriteError(t *testing.T) {
	db := &DB{q: &fakeQuerier{rows: map[string][]byte{}, execErr: errors.New("connection reset")}}

	if err := db.Write(context.Background(), store.CollectionCart, []byte("[]")); err == nil {
		t.Error("Expected write error")
	}
}

func TestDB_WorksAsStoreBackend(t *testing.T) {
	db := &DB{q: &fakeQuerier{rows: map[string][]byte{}}}
	s := store.New(db, nil, nil)
	ctx := context.Background()

	store.Save(ctx, s, store.CollectionOrders, []string{"ORD-1", "ORD-2"})
	got, existed := store.Load[string](ctx, s, store.CollectionOrders)
	if !existed || len(got) != 2 || got[1] != "ORD-2" {
		t.Errorf("Unexpected round trip: %v %v", got, existed)
	}

	if err := db.Close(); err != nil {
		t.Errorf("Close without pool: %v", err)
	}
}
