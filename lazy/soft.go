package lazy

import (
	"runtime"
	"sync/atomic"
	"weak"

	"github.com/IvanBrykalov/lazyval/retain"
)

// Soft is a lazily computed value that may be reclaimed by the garbage
// collector and is then recomputed transparently on the next Get.
//
// The slot only holds a weak pointer to the computed cell. What keeps the
// cell alive between accesses is a retain.Retainer: every publish and every
// hit keeps the cell in the retainer; once the retainer releases it (capacity,
// idleness, heap pressure or an explicit Shrink/Purge), the next collection
// may clear it.
//
// Like Value, Get never waits for another caller, so the producer may run more
// than once. Hits take the retainer's per-shard lock for an O(1) update,
// never across a producer call.
//
// The zero Soft is not usable; construct one with NewSoft or NewSoftSeeded.
type Soft[T any] struct {
	produce Producer[T]
	metrics Metrics
	keeper  retain.Retainer

	id    uint64
	epoch atomic.Uint64
	slot  atomic.Pointer[weak.Pointer[cell[T]]]
}

// NewSoft returns a Soft holder starting empty.
func NewSoft[T any](p Producer[T], opts ...Option) *Soft[T] {
	return newSoft(nil, p, opts)
}

// NewSoftSeeded returns a Soft holder whose first Get returns *initial
// without calling p. A nil initial is the same as NewSoft.
func NewSoftSeeded[T any](initial *T, p Producer[T], opts ...Option) *Soft[T] {
	return newSoft(initial, p, opts)
}

func newSoft[T any](initial *T, p Producer[T], opts []Option) *Soft[T] {
	if p == nil {
		panic("lazy: nil producer")
	}
	c := newConfig(opts)
	if c.retainer == nil {
		c.retainer = retain.Default()
	}

	s := &Soft[T]{
		produce: p,
		metrics: c.metrics,
		keeper:  c.retainer,
		id:      retain.NextID(),
	}
	if initial != nil {
		s.publish(*initial)
	}

	// Drop the retained cell once the holder itself is unreachable.
	keeper := s.keeper
	runtime.AddCleanup(s, func(id uint64) { keeper.Release(id) }, s.id)
	return s
}

// Get returns the cached value if it is still alive, otherwise computes,
// publishes and returns a fresh one. On producer failure the error is
// returned and the slot is left as it was.
func (s *Soft[T]) Get() (T, error) {
	if wp := s.slot.Load(); wp != nil {
		if c := wp.Value(); c != nil {
			s.keeper.Keep(s.id, c)
			s.metrics.Hit()
			return unescape(c), nil
		}
		s.metrics.Reclaimed()
	}

	res, err := s.produce()
	if err != nil {
		s.metrics.Fail()
		var zero T
		return zero, err
	}
	s.publish(res)
	s.metrics.Compute()
	return res, nil
}

// publish retains a fresh cell for v and makes it visible to other callers.
func (s *Soft[T]) publish(v T) {
	c := escape(v, s.id, s.epoch.Add(1))
	wp := weak.Make(c)
	s.keeper.Keep(s.id, c)
	s.slot.Store(&wp)
}
