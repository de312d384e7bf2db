package lazy

// Producer computes the value a holder caches. A non-nil error is returned
// to the caller of Get unchanged and is never cached.
//
// Producers must be idempotent: holders never serialize callers, so
// concurrent first calls (and, for Soft, calls after reclamation) may run the
// producer more than once, and whichever result is published last is kept.
type Producer[T any] func() (T, error)

// Holder is a lazily computed value.
type Holder[T any] interface {
	// Get returns the cached value, computing it with the producer when the
	// holder is empty.
	Get() (T, error)
}

var (
	_ Holder[int] = (*Value[int])(nil)
	_ Holder[int] = (*Soft[int])(nil)
)
