// Package lru implements the LRU release policy.
package lru

import "github.com/IvanBrykalov/lazyval/policy"

// lru is a classic move-to-front policy. The shard enforces capacity;
// lru only keeps the list ordered by recency of Keep.
type lru struct {
	h policy.Hooks
}

type lruPolicy struct{}

// New returns a Policy factory that constructs per-shard LRU instances.
func New() policy.Policy { return lruPolicy{} }

func (lruPolicy) New(h policy.Hooks) policy.ShardPolicy {
	return &lru{h: h}
}

// OnAdd places the new entry at MRU and never proposes a release.
func (p *lru) OnAdd(n policy.Node) (evict policy.Node) {
	p.h.PushFront(n)
	return nil
}

// OnKeep promotes the entry to MRU.
func (p *lru) OnKeep(n policy.Node) { p.h.MoveToFront(n) }

func (p *lru) OnRemove(policy.Node) {}
