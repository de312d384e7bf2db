package retain

import (
	"time"

	"go.uber.org/zap"

	"github.com/IvanBrykalov/lazyval/policy"
)

// ReleaseReason explains why a reference was released.
type ReleaseReason int

const (
	// ReleasePolicy — chosen by the active policy to stay within Capacity.
	ReleasePolicy ReleaseReason = iota
	// ReleaseIdle — not kept again within IdleTTL.
	ReleaseIdle
	// ReleasePressure — dropped by Shrink/Purge or the heap watcher.
	ReleasePressure
)

func (r ReleaseReason) String() string {
	switch r {
	case ReleaseIdle:
		return "idle"
	case ReleasePressure:
		return "pressure"
	default:
		return "policy"
	}
}

// Metrics exposes retainer-level observability hooks. Both are called under
// a shard lock. NoopMetrics is used by default.
type Metrics interface {
	// Admit is called when an id is retained that was not retained before.
	Admit()
	// Release is called for every release except explicit Release calls.
	Release(reason ReleaseReason)
}

// Clock provides time in UnixNano; useful for deterministic tests.
type Clock interface{ NowUnixNano() int64 }

// Options configures a Retainer. Zero values are safe; defaults are applied
// in New():
//   - nil Policy  => LRU
//   - Shards <= 0 => auto (power of two)
//   - nil Metrics => NoopMetrics
//   - nil Logger  => zap.L()
type Options struct {
	// Capacity is the number of references retained before the policy starts
	// releasing. Must be > 0.
	Capacity int

	// Shards defines the number of shards, rounded up to a power of two.
	Shards int

	// Policy decides which reference goes first; nil => LRU.
	Policy policy.Policy

	// IdleTTL releases references that have not been kept again for this
	// long (0 = never). Expiry is checked lazily on Keep and by the watcher.
	IdleTTL time.Duration

	// HeapLimit, when > 0, makes the watcher release half of the retained
	// references whenever live heap objects exceed this many bytes.
	HeapLimit uint64

	// CheckEvery is the watcher period. The watcher only runs when
	// CheckEvery > 0 and either IdleTTL or HeapLimit is set.
	CheckEvery time.Duration

	// OnRelease is called for every release except explicit Release calls.
	// It runs under the shard lock; keep it lightweight and never call back
	// into the Retainer.
	OnRelease func(id uint64, reason ReleaseReason)

	Metrics Metrics
	Logger  *zap.Logger

	// Clock allows overriding the time source (tests). Nil => time.Now().
	Clock Clock
}
