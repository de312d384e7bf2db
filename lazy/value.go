package lazy

import "sync/atomic"

// Value is a lazily computed value that, once computed, is kept for the
// lifetime of the holder.
//
// Get never blocks on another goroutine: callers that find the slot empty run
// the producer themselves and publish with a single atomic store, so the
// producer may run more than once under contention. See Producer.
//
// The zero Value is not usable; construct one with New or Of.
type Value[T any] struct {
	produce Producer[T]
	metrics Metrics
	slot    atomic.Pointer[cell[T]]
}

// New returns a Value computed by p on first Get.
func New[T any](p Producer[T], opts ...Option) *Value[T] {
	if p == nil {
		panic("lazy: nil producer")
	}
	c := newConfig(opts)
	return &Value[T]{produce: p, metrics: c.metrics}
}

// Of is New for producers that cannot fail.
func Of[T any](f func() T, opts ...Option) *Value[T] {
	if f == nil {
		panic("lazy: nil producer")
	}
	return New(func() (T, error) { return f(), nil }, opts...)
}

// Get returns the cached value, computing and publishing it if the slot is
// empty. On producer failure the error is returned and nothing is cached.
func (v *Value[T]) Get() (T, error) {
	if c := v.slot.Load(); c != nil {
		v.metrics.Hit()
		return unescape(c), nil
	}

	res, err := v.produce()
	if err != nil {
		v.metrics.Fail()
		var zero T
		return zero, err
	}
	v.slot.Store(escape(res, 0, 0))
	v.metrics.Compute()
	return res, nil
}
