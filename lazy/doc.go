// Package lazy provides lock-free lazily computed values.
//
// A holder computes its value with a caller-supplied Producer on the first
// Get and serves the cached result afterwards. Two retention policies exist:
//
//   - Value keeps the result for the lifetime of the holder.
//   - Soft keeps the result only while a retain.Retainer holds it. Once the
//     retainer lets go, the garbage collector may reclaim it, and the next
//     Get transparently recomputes.
//
// Empty versus nil
//
// A holder's slot distinguishes "not computed yet" from "computed, and the
// result was nil". A producer returning a nil pointer, slice, map or
// interface is cached like any other value and is not called again.
//
// Concurrency
//
// Get never takes a lock around the producer and never waits for another
// caller. Goroutines that find the slot empty each run the producer and
// publish their own result with an atomic store; the last store wins and
// every caller receives the value it computed. Producers must therefore be
// idempotent. A goroutine that finds the slot occupied is never delayed by an
// in-flight computation elsewhere.
//
// Errors
//
// A producer error is returned from Get unchanged and is never cached: the
// slot stays as it was and the next Get calls the producer again. A producer
// panic unwinds through Get with the same effect.
//
// Basic usage
//
//	type Schema struct {
//	    fields *lazy.Value[[]Field]
//	}
//
//	s := &Schema{fields: lazy.New(loadFields)}
//	fs, err := s.fields.Get()
//
// Reclaimable values
//
//	r := retain.New(retain.Options{Capacity: 1024})
//	idx := lazy.NewSoft(buildIndex, lazy.WithRetainer(r))
//	m, err := idx.Get() // rebuilt if r released it and the GC collected it
package lazy
