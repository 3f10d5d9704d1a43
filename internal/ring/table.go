package ring

import (
	"fmt"
	"sync"

	"chorddfs/internal/logger"
)

// slot holds one routing pointer (a finger entry or the predecessor) behind
// its own lock, so readers never block on writers touching a different
// slot and writers never need a table-wide lock.
type slot struct {
	mu   sync.RWMutex
	node Node
	set  bool
}

func (s *slot) get() (Node, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.node, s.set
}

func (s *slot) put(n Node) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.node, s.set = n, true
}

func (s *slot) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.node, s.set = Node{}, false
}

// Table is the per-process Chord state for one node: its own identity, an
// optional predecessor, and an M-slot finger table whose slot 1 doubles as
// the successor (spec.md §3: "finger[1], after convergence, equals
// successor"). Every mutating method documented in spec.md §4.3 is
// implemented here, plus the §4.2 FingerTable operations.
type Table struct {
	self        Node
	space       Space
	predecessor slot
	fingers     []slot // 0-indexed slice, slot i (1..M) lives at fingers[i-1]
	lgr         logger.Logger
}

// Option configures a Table at construction time.
type Option func(*Table)

// WithLogger attaches a logger; defaults to logger.NopLogger if omitted.
func WithLogger(lgr logger.Logger) Option {
	return func(t *Table) { t.lgr = lgr }
}

// New constructs a Table for self in the given Space, with every finger
// slot (and no predecessor) initialized to self — the boot state of
// spec.md §4.6.1.
func New(self Node, space Space, opts ...Option) *Table {
	t := &Table{
		self:    self,
		space:   space,
		fingers: make([]slot, space.Bits),
		lgr:     &logger.NopLogger{},
	}
	for _, opt := range opts {
		opt(t)
	}
	t.Fill(self)
	return t
}

// Self returns this node's own identity.
func (t *Table) Self() Node { return t.self }

// Space returns the identifier space this table operates in.
func (t *Table) Space() Space { return t.space }

// --- §4.2 FingerTable operations ---

// Fill sets every finger slot to peer. Used right after join as a seed.
func (t *Table) Fill(peer Node) {
	for i := range t.fingers {
		t.fingers[i].put(peer)
	}
}

// Update overwrites finger slot i (1-indexed).
func (t *Table) Update(i int, peer Node) {
	t.fingers[i-1].put(peer)
}

// Finger returns finger slot i (1-indexed) and whether it is set.
func (t *Table) Finger(i int) (Node, bool) {
	return t.fingers[i-1].get()
}

// RefreshTarget is one entry yielded by RefreshTargets: the finger slot
// index and the ring position its successor should be looked up for.
type RefreshTarget struct {
	I     int
	Start ID
}

// RefreshTargets yields the M lookup keys to be resolved in a refresh
// pass, where start_i = (self_id + 2^(i-1)) mod R.
func (t *Table) RefreshTargets() []RefreshTarget {
	out := make([]RefreshTarget, t.space.Bits)
	for i := 1; i <= t.space.Bits; i++ {
		out[i-1] = RefreshTarget{I: i, Start: t.space.FingerStart(t.self.ID, i)}
	}
	return out
}

// ClosestPreceding scans finger slots from M down to 1, returning the
// first slot whose id lies in the open interval (self_id, key). If none
// qualifies, returns self: the caller will then either claim the key or
// forward to the successor.
func (t *Table) ClosestPreceding(key ID) Node {
	for i := len(t.fingers); i >= 1; i-- {
		n, ok := t.fingers[i-1].get()
		if !ok {
			continue
		}
		if InOpen(t.self.ID, n.ID, key) {
			return n
		}
	}
	return t.self
}

// --- successor/predecessor accessors (finger[1] doubles as successor) ---

// Successor returns finger[1], this node's immediate ring successor.
func (t *Table) Successor() Node {
	n, ok := t.fingers[0].get()
	if !ok {
		return t.self
	}
	return n
}

// SetSuccessor overwrites finger[1].
func (t *Table) SetSuccessor(peer Node) {
	t.fingers[0].put(peer)
}

// Predecessor returns the current predecessor and whether it is set.
func (t *Table) Predecessor() (Node, bool) {
	return t.predecessor.get()
}

// SetPredecessor overwrites the predecessor.
func (t *Table) SetPredecessor(peer Node) {
	t.predecessor.put(peer)
}

// ClearPredecessor unsets the predecessor.
func (t *Table) ClearPredecessor() {
	t.predecessor.clear()
}

// --- §4.3 ChordNode pure state machine ---

// IsResponsibleFor implements spec.md §4.3's is_responsible_for.
func (t *Table) IsResponsibleFor(key ID) bool {
	pred, ok := t.predecessor.get()
	succ := t.Successor()
	if !ok {
		return succ.Equal(t.self)
	}
	return InHalfOpen(pred.ID, key, t.self.ID)
}

// ShouldUpdateSuccessor implements spec.md §4.3's should_update_successor:
// true iff candidate != self and candidate lies strictly between self and
// the current successor.
func (t *Table) ShouldUpdateSuccessor(candidate Node) bool {
	if candidate.Equal(t.self) {
		return false
	}
	return InOpen(t.self.ID, candidate.ID, t.Successor().ID)
}

// Notify implements spec.md §4.3's notify: accept candidate as predecessor
// iff none is set, or candidate lies strictly between the current
// predecessor and self. Returns whether the predecessor changed, which the
// caller uses to decide whether migration is owed.
func (t *Table) Notify(candidate Node) bool {
	pred, ok := t.predecessor.get()
	if !ok || InOpen(pred.ID, candidate.ID, t.self.ID) {
		if ok && pred.Equal(candidate) {
			return false
		}
		t.predecessor.put(candidate)
		return true
	}
	return false
}

// DebugLog emits the current routing state at debug level.
func (t *Table) DebugLog() {
	pred, ok := t.predecessor.get()
	predStr := "<unset>"
	if ok {
		predStr = fmt.Sprintf("%d@%s", pred.ID, pred.Address)
	}
	t.lgr.Debug("routing table state",
		logger.F("self", fmt.Sprintf("%d@%s", t.self.ID, t.self.Address)),
		logger.F("predecessor", predStr),
		logger.F("successor", fmt.Sprintf("%d@%s", t.Successor().ID, t.Successor().Address)),
	)
}
