package retain

import (
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/IvanBrykalov/lazyval/internal/util"
	"github.com/IvanBrykalov/lazyval/policy/lru"
)

// DefaultCapacity is the capacity of the shared retainer returned by Default.
const DefaultCapacity = 4096

var (
	lastID uint64

	defaultPool = sync.OnceValue(func() Retainer {
		return New(Options{Capacity: DefaultCapacity})
	})
)

// NextID returns a process-unique, non-zero id for a new holder.
func NextID() uint64 { return atomic.AddUint64(&lastID, 1) }

// Default returns the process-wide retainer used by holders that were not
// given one explicitly. It has no watcher and is never closed.
func Default() Retainer { return defaultPool() }

// Stats is a point-in-time snapshot of retainer counters.
type Stats struct {
	Entries  int
	Admits   uint64
	Releases uint64
}

// Pool is the sharded Retainer implementation returned by New.
type Pool struct {
	shards []*shard
	closed atomic.Bool

	opt Options
	log *zap.Logger

	stop chan struct{}
	done chan struct{}
}

// New constructs a retainer with the provided Options.
// It panics if Capacity is not positive.
func New(opt Options) *Pool {
	if opt.Capacity <= 0 {
		panic("retain: Capacity must be > 0")
	}
	if opt.Metrics == nil {
		opt.Metrics = NoopMetrics{}
	}
	if opt.Policy == nil {
		opt.Policy = lru.New()
	}
	if opt.Logger == nil {
		opt.Logger = zap.L()
	}

	sh := util.ShardCount(opt.Shards)
	if sh > opt.Capacity {
		// Keep every shard able to hold at least one reference.
		sh = int(util.NextPow2(uint64(opt.Capacity)))
		if sh > opt.Capacity {
			sh /= 2
		}
	}

	p := &Pool{
		shards: make([]*shard, sh),
		opt:    opt,
		log:    opt.Logger.Named("retain"),
	}
	perShardCap := (opt.Capacity + sh - 1) / sh
	for i := range p.shards {
		p.shards[i] = newShard(perShardCap, &p.opt)
	}

	if opt.CheckEvery > 0 && (opt.IdleTTL > 0 || opt.HeapLimit > 0) {
		p.stop = make(chan struct{})
		p.done = make(chan struct{})
		go p.watch()
	}
	return p
}

// ---- Retainer implementation ----

func (p *Pool) Keep(id uint64, ref any) {
	if p.closed.Load() {
		return
	}
	var exp, now int64
	if p.opt.IdleTTL > 0 {
		now = p.now()
		exp = now + int64(p.opt.IdleTTL)
	}
	p.getShard(id).Keep(id, ref, exp, now)
}

func (p *Pool) Release(id uint64) bool {
	return p.getShard(id).Release(id)
}

// Shrink spreads n across shards proportionally to their size, then takes
// whatever is left from the shards in order.
func (p *Pool) Shrink(n int) int {
	if n <= 0 {
		return 0
	}
	total := p.Len()
	if total == 0 {
		return 0
	}
	released := 0
	if n < total {
		for _, s := range p.shards {
			share := s.Len() * n / total
			released += s.Shrink(share)
		}
	}
	for _, s := range p.shards {
		if released >= n {
			break
		}
		released += s.Shrink(n - released)
	}
	return released
}

func (p *Pool) Purge() int {
	released := 0
	for _, s := range p.shards {
		released += s.Shrink(int(^uint(0) >> 1))
	}
	return released
}

func (p *Pool) Len() int {
	total := 0
	for _, s := range p.shards {
		total += s.Len()
	}
	return total
}

// Stats sums the per-shard counters.
func (p *Pool) Stats() Stats {
	var st Stats
	for _, s := range p.shards {
		st.Entries += s.Len()
		st.Admits += s.admits.Load()
		st.Releases += s.releases.Load()
	}
	return st
}

// Close stops the watcher and ignores future Keeps. References already
// retained stay until released, shrunk or purged.
func (p *Pool) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	if p.stop != nil {
		close(p.stop)
		<-p.done
	}
	return nil
}

// ---- helpers ----

func (p *Pool) getShard(id uint64) *shard {
	return p.shards[util.ShardIndex(util.Mix64(id), len(p.shards))]
}

func (p *Pool) now() int64 {
	if p.opt.Clock != nil {
		return p.opt.Clock.NowUnixNano()
	}
	return time.Now().UnixNano()
}

func (p *Pool) sweepIdle() int {
	now := p.now()
	released := 0
	for _, s := range p.shards {
		released += s.SweepIdle(now)
	}
	return released
}

var _ Retainer = (*Pool)(nil)
