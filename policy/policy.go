// Package policy defines the contract between a retainer shard and its
// eviction strategy.
package policy

// Node is a retained entry as seen by a policy. Policies only need its
// identity; the shard owns the strong reference.
type Node interface {
	ID() uint64
}

// Hooks expose O(1) list operations over the shard's intrusive
// most-recently-kept list. Implementations are provided by the shard.
//
// Concurrency: all hook calls happen under the shard lock.
// Hooks manage only the list; the shard owns the id->node map.
type Hooks interface {
	// MoveToFront promotes the node to MRU.
	MoveToFront(Node)
	// PushFront inserts the node at MRU (used on admission).
	PushFront(Node)
	// Remove detaches the node from the list.
	Remove(Node)
	// Back returns the least recently kept node (or nil if empty).
	Back() Node
	// Len returns the number of retained nodes in the shard.
	Len() int
}

// ShardPolicy is a per-shard eviction policy instance bound to shard hooks.
// All methods are invoked under the shard lock.
//
//   - OnAdd may return a release candidate. The shard releases it and then
//     calls OnRemove for it.
//   - OnKeep is called when an already retained id is kept again.
//   - OnRemove notifies the policy that a node left the shard for any reason.
type ShardPolicy interface {
	OnAdd(Node) (evict Node)
	OnKeep(Node)
	OnRemove(Node)
}

// Policy is a factory creating shard-local policy instances.
type Policy interface {
	New(Hooks) ShardPolicy
}
