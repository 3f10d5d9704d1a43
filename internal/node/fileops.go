package node

import (
	"context"
	"fmt"
	"io"

	"chorddfs/internal/ctxutil"
	"chorddfs/internal/logger"
)

// Save implements spec.md §4.6.7's Save(name, bytes): store locally if this
// node owns the key, otherwise resolve the owner and forward.
func (n *Node) Save(ctx context.Context, name string, data []byte) error {
	if err := ctxutil.CheckContext(ctx); err != nil {
		return err
	}
	key := n.rt.Space().HashString(name)
	if n.rt.IsResponsibleFor(key) {
		return n.store.Save(name, data)
	}
	owner, err := n.FindSuccessor(ctx, key)
	if err != nil {
		return fmt.Errorf("save %q: resolve owner: %w", name, err)
	}
	if err := n.tr.ForwardFile(ctx, owner.Address, name, data); err != nil {
		return fmt.Errorf("save %q: forward to %s: %w", name, owner.Address, err)
	}
	n.lgr.Debug("save: forwarded to owner", logger.F("name", name), logger.F("owner", owner.Address))
	return nil
}

// Get implements spec.md §4.6.7's Get(name).
func (n *Node) Get(ctx context.Context, name string) ([]byte, error) {
	if err := ctxutil.CheckContext(ctx); err != nil {
		return nil, err
	}
	key := n.rt.Space().HashString(name)
	if n.rt.IsResponsibleFor(key) {
		return n.store.Get(name)
	}
	owner, err := n.FindSuccessor(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("get %q: resolve owner: %w", name, err)
	}
	rc, err := n.tr.GetFile(ctx, owner.Address, name)
	if err != nil {
		return nil, fmt.Errorf("get %q: fetch from %s: %w", name, owner.Address, err)
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// Delete implements spec.md §4.6.7's Delete(name): same owner resolution
// as Save/Get, forwarding to the owner via DeleteFile when this node
// doesn't hold the key itself.
func (n *Node) Delete(ctx context.Context, name string) error {
	if err := ctxutil.CheckContext(ctx); err != nil {
		return err
	}
	key := n.rt.Space().HashString(name)
	if n.rt.IsResponsibleFor(key) {
		return n.store.Delete(name)
	}
	owner, err := n.FindSuccessor(ctx, key)
	if err != nil {
		return fmt.Errorf("delete %q: resolve owner: %w", name, err)
	}
	return n.tr.DeleteFile(ctx, owner.Address, name)
}

// List implements spec.md §4.6.7's List: local-only, no global listing.
func (n *Node) List(ctx context.Context) ([]string, error) {
	if err := ctxutil.CheckContext(ctx); err != nil {
		return nil, err
	}
	return n.store.List()
}

// HandleForwardFile answers a peer's forward_file RPC: save directly
// without re-checking responsibility, per spec.md §4.6.7.
func (n *Node) HandleForwardFile(ctx context.Context, name string, data []byte) error {
	if err := ctxutil.CheckContext(ctx); err != nil {
		return err
	}
	return n.store.Save(name, data)
}

// HandleGetFile answers a peer's get_file RPC by reading local storage
// directly.
func (n *Node) HandleGetFile(ctx context.Context, name string) ([]byte, error) {
	if err := ctxutil.CheckContext(ctx); err != nil {
		return nil, err
	}
	return n.store.Get(name)
}
