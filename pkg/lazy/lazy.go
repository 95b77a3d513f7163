// Package lazy holds values that are loaded on first use and kept for the
// lifetime of the process.
package lazy

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/singleflight"
)

type LoadFunc[T any] func(ctx context.Context) (T, error)

// Value loads once and caches the first successful result. Failed loads are
// not cached, so the next Get retries. Concurrent first calls share a single
// in-flight load and readers only ever observe a fully published value.
type Value[T any] struct {
	load  LoadFunc[T]
	val   atomic.Pointer[T]
	group singleflight.Group
}

func New[T any](load LoadFunc[T]) *Value[T] {
	return &Value[T]{load: load}
}

func (v *Value[T]) Get(ctx context.Context) (T, error) {
	if p := v.val.Load(); p != nil {
		return *p, nil
	}

	res, err, _ := v.group.Do("load", func() (any, error) {
		if p := v.val.Load(); p != nil {
			return p, nil
		}
		loaded, err := v.load(ctx)
		if err != nil {
			return nil, err
		}
		p := &loaded
		v.val.CompareAndSwap(nil, p)
		return v.val.Load(), nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return *res.(*T), nil
}

// Loaded reports whether a value has been published.
func (v *Value[T]) Loaded() bool {
	return v.val.Load() != nil
}
