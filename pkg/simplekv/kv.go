package simplekv

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/whitekid/goxp/fx"
)

// Interface simple key value store with expiration
type Interface[K comparable, V any] interface {
	Len() int
	Set(ctx context.Context, k K, v V, ttl time.Duration) error
	Get(ctx context.Context, k K) (V, error)
	Delete(ctx context.Context, k K) error
	Expire(ctx context.Context, k K) error
	Cleanup(ctx context.Context) error
}

var (
	ErrNotExists = errors.New("key not exists")
)

// New create in-memory kv; ttl 0 means never expire
func New[K comparable, V any]() Interface[K, V] {
	return &memoryImpl[K, V]{
		values: make(map[K]*value[V]),
	}
}

type memoryImpl[K comparable, V any] struct {
	mu     sync.Mutex
	values map[K]*value[V]
}

var _ Interface[struct{}, struct{}] = (*memoryImpl[struct{}, struct{}])(nil)

type value[T any] struct {
	value  T
	expire time.Time
}

func (v *value[T]) expired(now time.Time) bool { return !v.expire.IsZero() && !v.expire.After(now) }

func (m *memoryImpl[K, V]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.values)
}

func (m *memoryImpl[K, V]) Set(ctx context.Context, k K, v V, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.values[k] = &value[V]{
		value:  v,
		expire: fx.Ternary(ttl == 0, time.Time{}, time.Now().UTC().Add(ttl)),
	}
	return nil
}

func (m *memoryImpl[K, V]) Get(ctx context.Context, k K) (V, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var empty V
	v, ok := m.values[k]
	if !ok {
		return empty, ErrNotExists
	}

	if v.expired(time.Now().UTC()) {
		delete(m.values, k)
		return empty, ErrNotExists
	}

	return v.value, nil
}

func (m *memoryImpl[K, V]) Delete(ctx context.Context, k K) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.values, k)
	return nil
}

func (m *memoryImpl[K, V]) Expire(ctx context.Context, k K) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.values[k]
	if !ok {
		return ErrNotExists
	}
	v.expire = time.Now().UTC()

	return nil
}

func (m *memoryImpl[K, V]) Cleanup(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now().UTC()
	m.values = fx.FilterMap(m.values, func(k K, v *value[V]) bool { return !v.expired(now) })

	return nil
}
