// Package transport defines the Transport abstraction (spec.md §4.4): a
// request-response interface addressable by (address, operation, payload).
// The core node package depends only on this interface; internal/transport/
// httprpc supplies the concrete HTTP+JSON binding.
package transport

import (
	"context"
	"io"

	"chorddfs/internal/ring"
)

// Transport is the set of RPCs a ChordNode issues against a peer address.
// Every method is stateless per call and safe for concurrent use from a
// single caller.
type Transport interface {
	// FindSuccessor asks addr to resolve key, routing from its own table.
	// origin identifies the node that started the lookup, for tracing.
	FindSuccessor(ctx context.Context, addr string, key ring.ID, origin ring.Node) (ring.Node, error)

	// GetPredecessor returns addr's current predecessor, or ok=false if it
	// has none.
	GetPredecessor(ctx context.Context, addr string) (peer ring.Node, ok bool, err error)

	// Notify tells addr that candidate believes it might be addr's
	// predecessor.
	Notify(ctx context.Context, addr string, candidate ring.Node) error

	// Join asks the node at addr to handle an inbound join from joiner,
	// returning the joiner's new successor.
	Join(ctx context.Context, addr string, joiner ring.Node) (ring.Node, error)

	// Ping is a liveness check.
	Ping(ctx context.Context, addr string) error

	// TransferRange pulls every (name, bytes) pair addr holds whose key
	// falls in the half-open circular range (lo, hi], invoking recv once
	// per file. addr keeps its own copies until a following ConfirmTransfer
	// call for the same range; the caller must not treat the pulled files
	// as safely moved until that call succeeds.
	TransferRange(ctx context.Context, addr string, lo, hi ring.ID, recv func(name string, data []byte) error) error

	// ConfirmTransfer tells addr that every file in (lo, hi] from a prior
	// TransferRange call was saved durably, so addr may now delete its own
	// copies.
	ConfirmTransfer(ctx context.Context, addr string, lo, hi ring.ID) error

	// ForwardFile asks addr to save (name, data) directly, without
	// re-checking responsibility.
	ForwardFile(ctx context.Context, addr string, name string, data []byte) error

	// GetFile asks addr for name's bytes.
	GetFile(ctx context.Context, addr string, name string) (io.ReadCloser, error)

	// DeleteFile asks addr to delete name. Unlike ForwardFile it uses addr's
	// client-facing delete route, so addr re-checks responsibility. spec.md §4.4's RPC table predates its own §6.1
	// DELETE /files/{name} route; this operation fills that gap using the
	// same generic (address, operation, payload) shape as the rest.
	DeleteFile(ctx context.Context, addr string, name string) error
}
