// Package chorderr defines the error kinds shared across every layer of the
// overlay (spec.md §7), so storage, transport, node orchestration, and the
// HTTP boundary all map into the same small vocabulary.
package chorderr

import "errors"

var (
	// ErrTransport wraps any RPC failure: connect, timeout, remote 5xx.
	// Never fatal: stabilization skips the cycle, routing surfaces it to
	// the caller as soon as one hop fails (the MAX_HOPS cap only bounds
	// how many hops are tried). Surfaced as 502 at the boundary.
	ErrTransport = errors.New("chord: transport error")

	// ErrNotFound is a storage miss. Routing never returns it: a lookup
	// that reaches the MAX_HOPS cap returns its last hop without error.
	// Surfaced as 404 at the boundary.
	ErrNotFound = errors.New("chord: not found")

	// ErrInvalidArgument is a bad filename (empty, path traversal), bad
	// id, or malformed request body. Surfaced as 400 at the boundary.
	ErrInvalidArgument = errors.New("chord: invalid argument")

	// ErrAlreadyBootstrapped is returned by a join attempt on a node whose
	// successor is already another node (it has joined, or been joined
	// by, a ring). Fatal to the caller. Surfaced as 409 at the boundary.
	ErrAlreadyBootstrapped = errors.New("chord: node already bootstrapped")

	// ErrInternal marks a local failure that is not the caller's fault:
	// a storage I/O error, a range scan failure, or a request that could
	// not be encoded. It is returned to the caller like any other error;
	// nothing aborts the node on it. Surfaced as 500 at the boundary.
	ErrInternal = errors.New("chord: internal invariant violation")
)

// Is reports whether err ultimately wraps target, delegating to errors.Is.
// Kept as a thin alias so call sites in this codebase read uniformly as
// chorderr.Is(err, chorderr.ErrNotFound) next to the sentinels above.
func Is(err, target error) bool {
	return errors.Is(err, target)
}
