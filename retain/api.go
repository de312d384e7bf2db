package retain

// Retainer holds strong references on behalf of lazily computed values that
// are otherwise only weakly reachable. Releasing a reference does not destroy
// anything; it only lets the garbage collector reclaim the target once
// nothing else points to it.
//
// All methods are safe for concurrent use by multiple goroutines and run in
// amortized O(1) under a short per-shard lock.
type Retainer interface {
	// Keep retains ref under id, or refreshes recency and replaces the
	// reference if id is already retained. Keep after Close is ignored.
	Keep(id uint64, ref any)

	// Release drops the reference held for id. Returns true if one existed.
	Release(id uint64) bool

	// Shrink releases up to n of the least recently kept references and
	// returns how many were released. This is the explicit memory-pressure
	// trigger.
	Shrink(n int) int

	// Purge releases everything and returns the number of references dropped.
	Purge() int

	// Len returns the number of retained references across all shards.
	Len() int

	// Close stops the pressure watcher (if any) and marks the retainer closed.
	Close() error
}
