package retain

import (
	"sync"

	"github.com/IvanBrykalov/lazyval/internal/util"
	"github.com/IvanBrykalov/lazyval/policy"
)

// idleSweepPerKeep bounds how many expired tail entries a single Keep
// releases, so a Keep never turns into a full sweep.
const idleSweepPerKeep = 2

// shard is an independent partition of the retainer with its own lock, map,
// and an intrusive doubly linked list (head=most recently kept).
type shard struct {
	// ---- guarded by mu ----
	mu   sync.Mutex
	m    map[uint64]*node
	head *node
	tail *node
	len  int
	cap  int

	pol policy.ShardPolicy
	opt *Options

	// ---- hot counters ----
	_        util.CacheLinePad
	admits   util.PaddedAtomicUint64
	releases util.PaddedAtomicUint64
}

func newShard(capacity int, opt *Options) *shard {
	s := &shard{
		m:   make(map[uint64]*node, capacity),
		cap: capacity,
		opt: opt,
	}
	s.pol = opt.Policy.New(shardHooks{s: s})
	return s
}

// Keep inserts or refreshes the reference for id. exp is an absolute UnixNano
// deadline (0 = no idle expiry); now is only consulted when exp != 0.
func (s *shard) Keep(id uint64, ref any, exp, now int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n, ok := s.m[id]; ok {
		n.ref = ref
		n.exp = exp
		s.pol.OnKeep(n)
		s.releaseIdleLocked(now, idleSweepPerKeep)
		return
	}

	n := &node{id: id, ref: ref, exp: exp}
	s.m[id] = n
	s.admits.Add(1)
	s.opt.Metrics.Admit()

	if ev := s.pol.OnAdd(n); ev != nil {
		s.releaseNode(ev.(*node), ReleasePolicy)
	}
	s.releaseIdleLocked(now, idleSweepPerKeep)
	s.enforceCapLocked()
}

// Release drops id without reporting it through OnRelease.
func (s *shard) Release(id uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.m[id]
	if !ok {
		return false
	}
	s.pol.OnRemove(n)
	s.unlink(n)
	delete(s.m, id)
	return true
}

// Shrink releases up to n least recently kept references.
func (s *shard) Shrink(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	released := 0
	for released < n && s.tail != nil {
		s.releaseNode(s.tail, ReleasePressure)
		released++
	}
	return released
}

// SweepIdle releases every expired reference.
func (s *shard) SweepIdle(now int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.releaseIdleLocked(now, s.len)
}

func (s *shard) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.len
}

// -------------------- internals (mu held) --------------------

// releaseIdleLocked walks from the tail while entries are expired. The list
// is ordered by last Keep and IdleTTL is uniform, so the first live tail
// entry ends the walk.
func (s *shard) releaseIdleLocked(now int64, limit int) int {
	released := 0
	for released < limit {
		t := s.tail
		if t == nil || t.exp == 0 || now <= t.exp {
			break
		}
		s.releaseNode(t, ReleaseIdle)
		released++
	}
	return released
}

func (s *shard) enforceCapLocked() {
	for s.len > s.cap && s.tail != nil {
		s.releaseNode(s.tail, ReleasePolicy)
	}
}

func (s *shard) releaseNode(n *node, reason ReleaseReason) {
	s.pol.OnRemove(n)
	s.unlink(n)
	delete(s.m, n.id)
	n.ref = nil
	s.releases.Add(1)
	s.opt.Metrics.Release(reason)
	if cb := s.opt.OnRelease; cb != nil {
		cb(n.id, reason)
	}
}

func (s *shard) insertFront(n *node) {
	n.prev = nil
	n.next = s.head
	if s.head != nil {
		s.head.prev = n
	}
	s.head = n
	if s.tail == nil {
		s.tail = n
	}
	s.len++
}

func (s *shard) moveToFront(n *node) {
	if n == s.head {
		return
	}
	if n.prev != nil {
		n.prev.next = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	}
	if s.tail == n {
		s.tail = n.prev
	}
	n.prev = nil
	n.next = s.head
	if s.head != nil {
		s.head.prev = n
	}
	s.head = n
	if s.tail == nil {
		s.tail = n
	}
}

// unlink detaches n from the list. Calling it on an already detached node
// would corrupt len, so callers remove from the map in the same step.
func (s *shard) unlink(n *node) {
	if n.prev != nil {
		n.prev.next = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	}
	if s.head == n {
		s.head = n.next
	}
	if s.tail == n {
		s.tail = n.prev
	}
	n.prev, n.next = nil, nil
	s.len--
}

// -------------------- policy hooks --------------------

type shardHooks struct{ s *shard }

func (h shardHooks) MoveToFront(x policy.Node) { h.s.moveToFront(x.(*node)) }
func (h shardHooks) PushFront(x policy.Node)   { h.s.insertFront(x.(*node)) }
func (h shardHooks) Remove(x policy.Node)      { h.s.unlink(x.(*node)) }
func (h shardHooks) Back() policy.Node {
	if h.s.tail == nil {
		return nil
	}
	return h.s.tail
}
func (h shardHooks) Len() int { return h.s.len }
