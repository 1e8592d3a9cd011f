package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

const kvTable = "kv"

// Well-known keys.
const (
	KeyMistakes    = "mistakes"
	KeyUsers       = "users"
	KeyCurrentUser = "currentUser"
)

// ErrQuotaExceeded is returned by Put when the write would grow the
// stored values beyond the configured quota.
var ErrQuotaExceeded = errors.New("storage quota exceeded")

// KV is a durable string-keyed blob store. Each Put replaces the whole
// value of its key atomically.
type KV interface {
	// Get returns the value for key. ok is false when the key is absent.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)

	// Put stores value under key, replacing any previous value.
	Put(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

type sqliteKV struct {
	db    *sql.DB
	quota int64
}

func (k *sqliteKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	query, args := builder.Select("value").
		From(builder.Table(kvTable)).
		Where(entsql.EQ("key", key)).
		Query()

	var value []byte
	err := k.db.QueryRowContext(ctx, query, args...).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %q: %w", key, err)
	}
	return value, true, nil
}

func (k *sqliteKV) Put(ctx context.Context, key string, value []byte) error {
	if k.quota > 0 {
		used, err := k.usedExcept(ctx, key)
		if err != nil {
			return err
		}
		if used+int64(len(value)) > k.quota {
			return fmt.Errorf("put %q (%d bytes): %w", key, len(value), ErrQuotaExceeded)
		}
	}

	query, args := builder.Insert(kvTable).
		Columns("key", "value", "updated_at").
		Values(key, value, time.Now().UnixMilli()).
		OnConflict(
			entsql.ConflictColumns("key"),
			entsql.ResolveWithNewValues(),
		).
		Query()

	if _, err := k.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("put %q: %w", key, err)
	}
	return nil
}

func (k *sqliteKV) Delete(ctx context.Context, key string) error {
	query, args := builder.Delete(kvTable).
		Where(entsql.EQ("key", key)).
		Query()

	if _, err := k.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete %q: %w", key, err)
	}
	return nil
}

// usedExcept sums the sizes of all values other than key's.
func (k *sqliteKV) usedExcept(ctx context.Context, key string) (int64, error) {
	query, args := builder.Select("COALESCE(SUM(LENGTH(value)), 0)").
		From(builder.Table(kvTable)).
		Where(entsql.NEQ("key", key)).
		Query()

	var used int64
	if err := k.db.QueryRowContext(ctx, query, args...).Scan(&used); err != nil {
		return 0, fmt.Errorf("measure storage: %w", err)
	}
	return used, nil
}

// MemoryKV is an in-process KV. Setting PutErr makes every Put fail with
// that error, which lets callers exercise write-failure paths.
type MemoryKV struct {
	mu     sync.Mutex
	data   map[string][]byte
	PutErr error
}

// NewMemoryKV returns an empty MemoryKV.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: make(map[string][]byte)}
}

func (m *MemoryKV) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (m *MemoryKV) Put(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.PutErr != nil {
		return m.PutErr
	}
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *MemoryKV) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// SetPutErr changes the injected write error under the lock.
func (m *MemoryKV) SetPutErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PutErr = err
}
