package node

import (
	"context"
	"time"

	"chorddfs/internal/logger"
)

// StartStabilizing launches the single long-lived stabilization task
// (spec.md §4.6.5), ticking every period until ctx is canceled.
func (n *Node) StartStabilizing(ctx context.Context, period time.Duration) {
	go func() {
		ticker := time.NewTicker(period)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				n.lgr.Info("stabilization stopped")
				return
			case <-ticker.C:
				n.stabilizeOnce(ctx)
			}
		}
	}()
}

// stabilizeOnce runs one stabilization cycle: successor check, notify, and
// a full finger refresh. A node with no peers (successor == self) skips
// the cycle entirely, per spec.md §4.6.5.
func (n *Node) stabilizeOnce(ctx context.Context) {
	self := n.rt.Self()
	succ := n.rt.Successor()
	if succ.Equal(self) {
		return
	}

	cctx, cancel := context.WithTimeout(ctx, n.rpcTimeout)
	x, ok, err := n.tr.GetPredecessor(cctx, succ.Address)
	cancel()
	if err != nil {
		n.lgr.Warn("stabilize: get_predecessor failed", logger.F("successor", succ.Address), logger.F("err", err.Error()))
	} else if ok && n.rt.ShouldUpdateSuccessor(x) {
		n.lgr.Info("stabilize: adopting closer successor",
			logger.FPeer("old", uint64(succ.ID), succ.Address), logger.FPeer("new", uint64(x.ID), x.Address))
		n.rt.SetSuccessor(x)
		succ = x
	}

	cctx, cancel = context.WithTimeout(ctx, n.rpcTimeout)
	notifyErr := n.tr.Notify(cctx, succ.Address, self)
	cancel()
	if notifyErr != nil {
		n.lgr.Warn("stabilize: notify failed", logger.F("successor", succ.Address), logger.F("err", notifyErr.Error()))
	} else {
		cctx, cancel = context.WithTimeout(ctx, n.rpcTimeout)
		if err := n.pullMigration(cctx, succ); err != nil {
			n.lgr.Warn("stabilize: migration pull failed", logger.F("successor", succ.Address), logger.F("err", err.Error()))
		}
		cancel()
	}

	n.refreshFingers(ctx)
}

// refreshFingers re-resolves every finger slot via iterative find_successor
// (spec.md §4.6.5 step 3). A transport error on one target is logged and
// skipped; the next cycle retries.
func (n *Node) refreshFingers(ctx context.Context) {
	for _, target := range n.rt.RefreshTargets() {
		cctx, cancel := context.WithTimeout(ctx, n.rpcTimeout)
		result, err := n.FindSuccessor(cctx, target.Start)
		cancel()
		if err != nil {
			n.lgr.Warn("stabilize: finger refresh failed",
				logger.F("i", target.I), logger.F("err", err.Error()))
			continue
		}
		n.rt.Update(target.I, result)
	}
}
