package bootstrap

import (
	"context"

	"chorddfs/internal/ring"
)

// Static is a fixed, operator-supplied list of bootstrap peers.
type Static struct {
	peers []string
}

// NewStatic builds a Static bootstrap from a configured peer list.
func NewStatic(peers []string) *Static {
	return &Static{peers: peers}
}

// Discover returns the configured peer list verbatim.
func (s *Static) Discover(ctx context.Context) ([]string, error) {
	return s.peers, nil
}

// Register is a no-op: a static list has nothing to publish to.
func (s *Static) Register(ctx context.Context, self ring.Node) error { return nil }

// Deregister is a no-op for the same reason.
func (s *Static) Deregister(ctx context.Context, self ring.Node) error { return nil }
