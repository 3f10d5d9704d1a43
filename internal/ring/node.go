package ring

// Node identifies a peer on the ring: its id and an opaque routable
// address. Two peers are equal iff their ids are equal; address is a
// routing hint, not part of identity.
type Node struct {
	ID      ID
	Address string
}

// Equal compares peers by id only, per spec.md §3.
func (n Node) Equal(other Node) bool {
	return n.ID == other.ID
}

// IsZero reports whether n is the unset Node value.
func (n Node) IsZero() bool {
	return n == Node{}
}
