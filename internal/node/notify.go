package node

import (
	"context"

	"chorddfs/internal/ctxutil"
	"chorddfs/internal/logger"
	"chorddfs/internal/ring"
)

// HandleNotify answers a peer's notify RPC (spec.md §4.6.6). Accepting a
// new predecessor never triggers migration here: migration flows the
// other way, from this node (as the new predecessor's successor) to the
// candidate, and it is the candidate's own join/stabilize cycle that pulls
// it — never something the notified side schedules.
func (n *Node) HandleNotify(ctx context.Context, candidate ring.Node) error {
	if err := ctxutil.CheckContext(ctx); err != nil {
		return err
	}
	if n.rt.Notify(candidate) {
		n.lgr.Info("notify: predecessor updated", logger.FPeer("predecessor", uint64(candidate.ID), candidate.Address))
	}
	return nil
}
