package node

import (
	"context"
	"fmt"

	"chorddfs/internal/ctxutil"
	"chorddfs/internal/logger"
	"chorddfs/internal/ring"
	"chorddfs/internal/telemetry/lookuptrace"
)

// HandleFindSuccessor answers a peer's find_successor RPC (spec.md §4.4)
// with a single local routing decision: claim the key, hand off the
// successor, or name the closest-preceding finger as the next hop. It
// never drives further hops of its own — that stays the origin's job, per
// §4.6.3's "iterative, not recursive" rationale.
func (n *Node) HandleFindSuccessor(ctx context.Context, key ring.ID, origin ring.Node) (ring.Node, error) {
	if err := ctxutil.CheckContext(ctx); err != nil {
		return ring.Node{}, err
	}
	self := n.rt.Self()
	if n.rt.IsResponsibleFor(key) {
		return self, nil
	}
	succ := n.rt.Successor()
	if ring.InOpen(self.ID, key, succ.ID) || key == succ.ID {
		return succ, nil
	}
	cursor := n.rt.ClosestPreceding(key)
	if cursor.Equal(self) {
		return succ, nil
	}
	return cursor, nil
}

// FindSuccessor resolves the owner of key (spec.md §4.6.3). It runs the
// same three local checks as HandleFindSuccessor; steps 1 and 2 (and
// step 3's no-progress fallback) return immediately without any RPC. Only
// when the local table names a genuine forward hop does it drive the
// iterative loop itself, capped at MAX_HOPS (= M) remote calls.
func (n *Node) FindSuccessor(ctx context.Context, key ring.ID) (ring.Node, error) {
	if err := ctxutil.CheckContext(ctx); err != nil {
		return ring.Node{}, err
	}
	self := n.rt.Self()

	if n.rt.IsResponsibleFor(key) {
		return self, nil
	}
	succ := n.rt.Successor()
	if ring.InOpen(self.ID, key, succ.ID) || key == succ.ID {
		return succ, nil
	}
	cursor := n.rt.ClosestPreceding(key)
	if cursor.Equal(self) {
		return succ, nil
	}

	ctx = lookuptrace.WithLookup(ctx)
	maxHops := n.rt.Space().Bits
	for hop := 0; hop < maxHops; hop++ {
		if err := ctxutil.CheckContext(ctx); err != nil {
			return ring.Node{}, err
		}
		r, err := n.tr.FindSuccessor(ctx, cursor.Address, key, self)
		if err != nil {
			n.lgr.Warn("find_successor: hop failed",
				logger.F("hop", hop), logger.F("cursor", cursor.Address), logger.F("err", err.Error()))
			return ring.Node{}, fmt.Errorf("find_successor: hop to %s: %w", cursor.Address, err)
		}
		if r.ID == key || r.Equal(cursor) {
			return r, nil
		}
		cursor = r
	}
	n.lgr.Warn("find_successor: hop cap exhausted",
		logger.F("key", fmt.Sprintf("%d", key)), logger.F("lastHop", cursor.Address))
	return cursor, nil
}
