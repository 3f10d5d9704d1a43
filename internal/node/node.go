// Package node implements NodeService (spec.md §4.6): the orchestration
// layer that drives boot/join, iterative routing, key migration,
// stabilization, and the client-facing file operations on top of a
// ring.Table, a storage.Backend, and a transport.Transport.
package node

import (
	"time"

	"chorddfs/internal/logger"
	"chorddfs/internal/ring"
	"chorddfs/internal/storage"
	"chorddfs/internal/transport"
)

// Node is the orchestration layer for one Chord participant: it wires a
// ring.Table, a storage.Backend, and a transport.Transport together and
// exposes both the peer-facing RPC handlers and the client-facing file
// operations.
type Node struct {
	rt    *ring.Table
	store storage.Backend
	tr    transport.Transport
	lgr   logger.Logger

	rpcTimeout time.Duration
}

// Option configures a Node.
type Option func(*Node)

// WithLogger attaches a structured logger.
func WithLogger(lgr logger.Logger) Option {
	return func(n *Node) {
		if lgr != nil {
			n.lgr = lgr
		}
	}
}

// WithRPCTimeout bounds each outbound transport call of the periodic
// stabilization loop. Joins, lookups and file operations run under the
// caller's context instead.
func WithRPCTimeout(d time.Duration) Option {
	return func(n *Node) {
		if d > 0 {
			n.rpcTimeout = d
		}
	}
}

// New constructs a Node around an already-initialized routing table (see
// ring.New), a storage backend, and a transport. The table's state decides
// whether this node starts alone or mid-join; New itself performs no
// network calls.
func New(rt *ring.Table, store storage.Backend, tr transport.Transport, opts ...Option) *Node {
	n := &Node{
		rt:         rt,
		store:      store,
		tr:         tr,
		lgr:        &logger.NopLogger{},
		rpcTimeout: 2 * time.Second,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Self returns this node's own (id, address).
func (n *Node) Self() ring.Node { return n.rt.Self() }

// Table exposes the routing table for read-only inspection (debug
// endpoints, tests).
func (n *Node) Table() *ring.Table { return n.rt }

// HandlePredecessor answers a peer's get_predecessor RPC.
func (n *Node) HandlePredecessor() (ring.Node, bool) {
	return n.rt.Predecessor()
}

// HandlePing answers a peer's ping RPC: liveness only.
func (n *Node) HandlePing() {}
