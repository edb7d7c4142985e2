package cache

import (
	"context"
	"strconv"
	"sync/atomic"

	"golang.org/x/sync/singleflight"
)

// Loader is a read-through cache. Concurrent misses for the same key share one load,
// and Invalidate guarantees that loads started before it never repopulate the cache.
type Loader[T any] struct {
	cache      Cache[T]
	group      singleflight.Group
	generation atomic.Uint64
}

func NewLoader[T any](c Cache[T]) *Loader[T] {
	return &Loader[T]{cache: c}
}

// Get returns the cached value for key or runs load once for all concurrent callers.
func (l *Loader[T]) Get(ctx context.Context, key string, load func(context.Context) (T, error)) (T, error) {
	if v, ok := l.cache.Get(key); ok {
		return v, nil
	}

	gen := l.generation.Load()
	// Callers after an Invalidate must not join a load that started before it
	flight := strconv.FormatUint(gen, 10) + ":" + key
	v, err, _ := l.group.Do(flight, func() (any, error) {
		data, err := load(ctx)
		if err != nil {
			return data, err
		}
		if l.generation.Load() == gen {
			l.cache.Set(key, data)
		}
		return data, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

// Invalidate drops every cached value.
func (l *Loader[T]) Invalidate() {
	l.generation.Add(1)
	l.cache.Purge()
}
