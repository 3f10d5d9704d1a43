package node

import (
	"context"
	"fmt"

	"chorddfs/internal/chorderr"
	"chorddfs/internal/ctxutil"
	"chorddfs/internal/logger"
	"chorddfs/internal/ring"
)

// pullMigration implements the joining side of spec.md §4.6.4: pull
// whatever keys now belong to self from succ, covering (pred, self.id].
// Until a predecessor is known, that range cannot be scoped correctly
// (ring.InHalfOpen(self.id, k, self.id) matches every k, not none), so this
// is a no-op and relies on stabilizeOnce retrying every tick: the chain
// reaction through HandleNotify eventually sets a real predecessor, at
// which point the (pred, self] pull runs with its true bounds.
func (n *Node) pullMigration(ctx context.Context, succ ring.Node) error {
	pred, ok := n.rt.Predecessor()
	if !ok {
		return nil
	}
	self := n.rt.Self()
	return n.pullRange(ctx, succ, pred.ID, self.ID)
}

// pullRange pulls (lo, hi] from addr and saves every received blob
// locally, per the puller side of spec.md §4.6.4. Only once every blob has
// been saved does it call ConfirmTransfer, telling addr it may now delete
// its copies: a transport failure partway through leaves addr's files
// intact, so an interrupted transfer degrades to a copy instead of a loss.
func (n *Node) pullRange(ctx context.Context, addr ring.Node, lo, hi ring.ID) error {
	count := 0
	err := n.tr.TransferRange(ctx, addr.Address, lo, hi, func(name string, data []byte) error {
		if err := n.store.Save(name, data); err != nil {
			return fmt.Errorf("migration: save %q: %w", name, err)
		}
		count++
		return nil
	})
	if err != nil {
		return fmt.Errorf("migration: transfer_range from %s: %w", addr.Address, err)
	}
	if count == 0 {
		return nil
	}
	if err := n.tr.ConfirmTransfer(ctx, addr.Address, lo, hi); err != nil {
		n.lgr.Warn("migration: confirm_transfer failed, source keeps its copies for the next pull",
			logger.F("from", addr.Address), logger.F("err", err.Error()))
		return nil
	}
	n.lgr.Info("migration: pulled keys", logger.F("from", addr.Address), logger.F("count", count))
	return nil
}

// HandleTransferRange answers a peer's transfer_range RPC (spec.md §4.5,
// §4.6.4's server side): scan_range(lo, hi) and stream the pairs via send.
// It never deletes anything itself; the range stays in local storage until
// the puller calls HandleConfirmTransfer, so a transport failure mid-stream
// leaves the source node serving its own files exactly as before.
func (n *Node) HandleTransferRange(ctx context.Context, lo, hi ring.ID, send func(name string, data []byte) error) error {
	if err := ctxutil.CheckContext(ctx); err != nil {
		return err
	}
	entries, err := n.store.ScanRange(func(name string) bool {
		return ring.InHalfOpen(lo, n.rt.Space().HashString(name), hi)
	})
	if err != nil {
		return fmt.Errorf("transfer_range: scan: %w", chorderr.ErrInternal)
	}
	for _, e := range entries {
		if err := send(e.Name, e.Data); err != nil {
			return fmt.Errorf("transfer_range: send %q: %w", e.Name, err)
		}
	}
	if len(entries) > 0 {
		n.lgr.Info("transfer_range: served range, awaiting confirmation",
			logger.F("count", len(entries)), logger.F("lo", fmt.Sprintf("%d", lo)), logger.F("hi", fmt.Sprintf("%d", hi)))
	}
	return nil
}

// HandleConfirmTransfer answers a puller's confirm_transfer RPC (spec.md
// §4.6.4): the puller has durably saved everything in (lo, hi], so this
// node deletes its own copies, completing the move. It re-scans rather
// than remembering the entries handed to the earlier transfer_range call,
// so the two RPCs need no shared in-memory state between them.
func (n *Node) HandleConfirmTransfer(ctx context.Context, lo, hi ring.ID) error {
	if err := ctxutil.CheckContext(ctx); err != nil {
		return err
	}
	entries, err := n.store.ScanRange(func(name string) bool {
		return ring.InHalfOpen(lo, n.rt.Space().HashString(name), hi)
	})
	if err != nil {
		return fmt.Errorf("confirm_transfer: scan: %w", chorderr.ErrInternal)
	}
	for _, e := range entries {
		if err := n.store.Delete(e.Name); err != nil && !chorderr.Is(err, chorderr.ErrNotFound) {
			n.lgr.Warn("confirm_transfer: failed to delete transferred file",
				logger.F("name", e.Name), logger.F("err", err.Error()))
		}
	}
	if len(entries) > 0 {
		n.lgr.Info("confirm_transfer: released range",
			logger.F("count", len(entries)), logger.F("lo", fmt.Sprintf("%d", lo)), logger.F("hi", fmt.Sprintf("%d", hi)))
	}
	return nil
}
