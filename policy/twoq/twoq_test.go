package twoq

import (
	"testing"

	"github.com/IvanBrykalov/lazyval/policy"
)

type testNode uint64

func (n testNode) ID() uint64 { return uint64(n) }

type mockHooks struct {
	pushFrontCnt   int
	moveToFrontCnt int
}

func (h *mockHooks) MoveToFront(policy.Node) { h.moveToFrontCnt++ }
func (h *mockHooks) PushFront(policy.Node)   { h.pushFrontCnt++ }
func (h *mockHooks) Remove(policy.Node)      {}
func (h *mockHooks) Back() policy.Node       { return nil }
func (h *mockHooks) Len() int                { return 0 }

func newTwoQ(capIn, capGhost int) (*twoQ, *mockHooks) {
	h := &mockHooks{}
	return New(capIn, capGhost).New(h).(*twoQ), h
}

func TestTwoQ_AddGoesToA1in(t *testing.T) {
	t.Parallel()

	p, h := newTwoQ(2, 4)
	if ev := p.OnAdd(testNode(1)); ev != nil {
		t.Fatalf("OnAdd should not release yet, got %v", ev)
	}
	if p.inList.Len() != 1 || h.pushFrontCnt != 1 {
		t.Fatalf("A1in len=%d pushes=%d, want 1/1", p.inList.Len(), h.pushFrontCnt)
	}
	if _, ok := p.inIdx[1]; !ok {
		t.Fatal("id 1 must be tracked in A1in")
	}
}

// When A1in overflows, OnAdd returns its least recent entry.
func TestTwoQ_OverflowReturnsLRUOfA1in(t *testing.T) {
	t.Parallel()

	p, _ := newTwoQ(2, 4)
	p.OnAdd(testNode(1))
	p.OnAdd(testNode(2))
	if ev := p.OnAdd(testNode(3)); ev != testNode(1) {
		t.Fatalf("expected release candidate 1, got %v", ev)
	}
}

func TestTwoQ_OnRemoveFromA1inGoesToGhost(t *testing.T) {
	t.Parallel()

	p, _ := newTwoQ(2, 2)
	p.OnAdd(testNode(7))
	p.OnRemove(testNode(7))
	if _, ok := p.inIdx[7]; ok {
		t.Fatal("id 7 must leave A1in")
	}
	if _, ok := p.ghostIdx[7]; !ok {
		t.Fatal("id 7 must become a ghost")
	}
}

// A holder coming back while its id is a ghost skips probation.
func TestTwoQ_AddFromGhostGoesToAm(t *testing.T) {
	t.Parallel()

	p, _ := newTwoQ(1, 2)
	p.OnAdd(testNode(1))
	p.OnRemove(testNode(1))

	if ev := p.OnAdd(testNode(1)); ev != nil {
		t.Fatalf("re-admission from ghost must not release, got %v", ev)
	}
	if _, ok := p.inIdx[1]; ok {
		t.Fatal("id 1 must go to Am, not A1in")
	}
	if _, ok := p.ghostIdx[1]; ok {
		t.Fatal("ghost must be consumed on re-admission")
	}
}

func TestTwoQ_KeepPromotesFromA1inToAm(t *testing.T) {
	t.Parallel()

	p, h := newTwoQ(2, 2)
	p.OnAdd(testNode(1))
	p.OnKeep(testNode(1))
	if _, ok := p.inIdx[1]; ok {
		t.Fatal("id 1 must be promoted out of A1in")
	}
	if h.moveToFrontCnt != 1 {
		t.Fatalf("OnKeep must MoveToFront once, got %d", h.moveToFrontCnt)
	}

	// Am removals leave no ghost.
	p.OnRemove(testNode(1))
	if _, ok := p.ghostIdx[1]; ok {
		t.Fatal("Am release must not create a ghost")
	}
}

func TestTwoQ_GhostCapacity(t *testing.T) {
	t.Parallel()

	p, _ := newTwoQ(4, 2)
	for id := uint64(1); id <= 3; id++ {
		p.OnAdd(testNode(id))
		p.OnRemove(testNode(id))
	}
	if p.ghostList.Len() != 2 {
		t.Fatalf("ghosts must be capped at 2, got %d", p.ghostList.Len())
	}
	if _, ok := p.ghostIdx[1]; ok {
		t.Fatal("oldest ghost must be dropped first")
	}
}
