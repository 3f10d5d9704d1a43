// Package bootstrap implements the peer-discovery strategies a node uses to
// find an existing ring to join (spec.md §4.6.1's join-mode path), plus
// optional self-registration for discovery mechanisms that need it.
package bootstrap

import (
	"context"

	"chorddfs/internal/ring"
)

// Bootstrap discovers candidate peer addresses and, for mechanisms that
// require it, publishes this node's own presence.
type Bootstrap interface {
	// Discover returns known peer addresses. An empty, non-error result
	// means "no peers known yet" (the caller then bootstraps alone).
	Discover(ctx context.Context) ([]string, error)
	// Register publishes self so other nodes' Discover calls can find it.
	// A no-op for mechanisms with no registry of their own.
	Register(ctx context.Context, self ring.Node) error
	// Deregister removes whatever Register published.
	Deregister(ctx context.Context, self ring.Node) error
}
