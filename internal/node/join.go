package node

import (
	"context"
	"fmt"

	"chorddfs/internal/chorderr"
	"chorddfs/internal/ctxutil"
	"chorddfs/internal/logger"
	"chorddfs/internal/ring"
)

// Bootstrap starts this node as the sole member of a new ring (spec.md
// §4.6.1's no-bootstrap-address path). The table is already seeded with
// self in every slot by ring.New; there is nothing further to do before
// the stabilization loop takes over.
func (n *Node) Bootstrap() {
	n.lgr.Info("bootstrapped as sole ring member", logger.F("self", n.rt.Self().Address))
}

// Join contacts bootstrapAddr to enter an existing ring (spec.md §4.6.1's
// join-mode path): it asks the remote node to handle_join, adopts the
// returned node as its successor, notifies that successor, and then calls
// pullMigration. That pull moves nothing while this node has no
// predecessor, which is the usual state right after joining; the keys it
// now owns arrive through the pull stabilizeOnce runs once a predecessor
// is known. A node whose successor is already another node fails with
// ErrAlreadyBootstrapped.
func (n *Node) Join(ctx context.Context, bootstrapAddr string) error {
	if err := ctxutil.CheckContext(ctx); err != nil {
		return err
	}
	self := n.rt.Self()
	if !n.rt.Successor().Equal(self) {
		return fmt.Errorf("join: %w", chorderr.ErrAlreadyBootstrapped)
	}

	succ, err := n.tr.Join(ctx, bootstrapAddr, self)
	if err != nil {
		return fmt.Errorf("join: handle_join at %s: %w", bootstrapAddr, err)
	}
	n.rt.SetSuccessor(succ)
	n.rt.Fill(succ)
	n.lgr.Info("join: adopted successor", logger.FPeer("successor", uint64(succ.ID), succ.Address))

	if err := n.tr.Notify(ctx, succ.Address, self); err != nil {
		n.lgr.Warn("join: notify to new successor failed", logger.F("err", err.Error()))
		return fmt.Errorf("join: notify %s: %w", succ.Address, err)
	}

	if err := n.pullMigration(ctx, succ); err != nil {
		n.lgr.Warn("join: initial key migration failed, will rely on a future notify",
			logger.F("err", err.Error()))
	}
	return nil
}

// HandleJoin executes on the contacted node (spec.md §4.6.2): decide
// whether the joiner becomes our immediate successor, or forward the
// decision via routing.
func (n *Node) HandleJoin(ctx context.Context, joiner ring.Node) (ring.Node, error) {
	if err := ctxutil.CheckContext(ctx); err != nil {
		return ring.Node{}, err
	}
	self := n.rt.Self()
	succ := n.rt.Successor()

	if succ.Equal(self) {
		n.rt.SetSuccessor(joiner)
		n.lgr.Info("handle_join: alone, adopted joiner as successor",
			logger.FPeer("joiner", uint64(joiner.ID), joiner.Address))
		return self, nil
	}

	if ring.InOpen(self.ID, joiner.ID, succ.ID) {
		old := succ
		n.rt.SetSuccessor(joiner)
		n.lgr.Info("handle_join: joiner falls before current successor",
			logger.FPeer("joiner", uint64(joiner.ID), joiner.Address),
			logger.FPeer("oldSuccessor", uint64(old.ID), old.Address))
		return old, nil
	}

	result, err := n.FindSuccessor(ctx, joiner.ID)
	if err != nil {
		return ring.Node{}, fmt.Errorf("handle_join: forwarding lookup: %w", err)
	}
	return result, nil
}
