package retain

// node is an intrusive doubly linked list element owned by a shard.
// ref is the strong reference that keeps a weakly held value alive.
type node struct {
	id  uint64
	ref any

	// head is the most recently kept node, tail the least.
	prev *node
	next *node

	// Absolute idle deadline in UnixNano; zero means no IdleTTL.
	exp int64
}

// ID implements policy.Node.
func (n *node) ID() uint64 { return n.id }
