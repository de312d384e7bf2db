// Package twoq implements the 2Q release policy.
//
// Holders that are forced exactly once (scans, one-shot lookups) stay in a
// small probation queue and are released first, so they cannot flush the
// cells of holders that are read repeatedly.
package twoq

import (
	"container/list"

	"github.com/IvanBrykalov/lazyval/policy"
)

// Resident queues:
//   - A1in: first-time admissions, tracked in inList/inIdx.
//   - Am:   everything else; ordering is driven by shard hooks.
//
// Ghost A1out remembers ids recently released from A1in. A holder that comes
// back while its id is a ghost bypasses A1in.
type twoQ struct {
	h policy.Hooks

	capIn    int
	capGhost int

	inList *list.List // MRU at Front
	inIdx  map[uint64]*list.Element

	ghostList *list.List // element.Value is uint64
	ghostIdx  map[uint64]*list.Element
}

// New constructs a 2Q policy factory. Sizes are per shard.
// Common choices: capIn ≈ 25% of shard capacity, capGhost ≈ 50–100%.
func New(capIn, capGhost int) policy.Policy {
	if capIn < 1 {
		capIn = 1
	}
	if capGhost < 1 {
		capGhost = 1
	}
	return twoQPolicy{capIn: capIn, capGhost: capGhost}
}

type twoQPolicy struct {
	capIn    int
	capGhost int
}

func (p twoQPolicy) New(h policy.Hooks) policy.ShardPolicy {
	return &twoQ{
		h:         h,
		capIn:     p.capIn,
		capGhost:  p.capGhost,
		inList:    list.New(),
		inIdx:     make(map[uint64]*list.Element),
		ghostList: list.New(),
		ghostIdx:  make(map[uint64]*list.Element),
	}
}

func (q *twoQ) OnAdd(n policy.Node) (evict policy.Node) {
	id := n.ID()
	if ge, ok := q.ghostIdx[id]; ok {
		q.ghostList.Remove(ge)
		delete(q.ghostIdx, id)
		q.h.PushFront(n)
		return nil
	}

	q.h.PushFront(n)
	q.inIdx[id] = q.inList.PushFront(n)

	if q.inList.Len() > q.capIn {
		if el := q.inList.Back(); el != nil {
			return el.Value.(policy.Node)
		}
	}
	return nil
}

// OnKeep promotes an A1in entry to Am.
func (q *twoQ) OnKeep(n policy.Node) {
	if el, ok := q.inIdx[n.ID()]; ok {
		q.inList.Remove(el)
		delete(q.inIdx, n.ID())
	}
	q.h.MoveToFront(n)
}

// OnRemove turns released A1in entries into ghosts. Am releases leave no trace.
func (q *twoQ) OnRemove(n policy.Node) {
	id := n.ID()
	el, ok := q.inIdx[id]
	if !ok {
		return
	}
	q.inList.Remove(el)
	delete(q.inIdx, id)

	if old := q.ghostIdx[id]; old != nil {
		q.ghostList.Remove(old)
	}
	q.ghostIdx[id] = q.ghostList.PushFront(id)

	for q.ghostList.Len() > q.capGhost {
		tail := q.ghostList.Back()
		if tail == nil {
			break
		}
		delete(q.ghostIdx, tail.Value.(uint64))
		q.ghostList.Remove(tail)
	}
}
