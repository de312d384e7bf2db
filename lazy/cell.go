package lazy

// cell is the occupied state of a holder's slot. A nil *cell means the slot
// is empty; a non-nil cell is present even when v is itself a nil pointer,
// map, slice or interface, so a producer returning "nothing" is cached like
// any other result.
//
// Cells are at least 16 bytes so the runtime never places them in a tiny
// allocation block; a weak pointer into such a block stays valid as long as
// any neighbour in the block is alive.
type cell[T any] struct {
	v     T
	owner uint64
	epoch uint64
}

// escape encodes a produced value for publication.
func escape[T any](v T, owner, epoch uint64) *cell[T] {
	return &cell[T]{v: v, owner: owner, epoch: epoch}
}

// unescape decodes an occupied slot. It must only be called with a non-nil cell.
func unescape[T any](c *cell[T]) T { return c.v }
