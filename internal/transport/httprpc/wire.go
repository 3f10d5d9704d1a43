// Package httprpc is the HTTP+JSON binding for the Transport abstraction
// (spec.md §4.4, SPEC_FULL.md §4.4), replacing the teacher's grpc + protobuf
// wire format. Client implements transport.Transport against a peer's
// internal/httpapi server; the wire.go types here mirror the ones that
// server declares in its own package, so the two sets must keep the same
// JSON shapes.
package httprpc

// peerRef is the wire form of a ring.Node.
type peerRef struct {
	ID      uint64 `json:"id"`
	Address string `json:"address"`
}

// findSuccessorRequest is the body of POST /chord/successor.
type findSuccessorRequest struct {
	Key    uint64  `json:"key"`
	Origin peerRef `json:"origin"`
}

// transferRangeRequest is the body of POST /files/transfer.
type transferRangeRequest struct {
	Lo uint64 `json:"lo"`
	Hi uint64 `json:"hi"`
}

// errorResponse is the JSON body written on any non-2xx response.
type errorResponse struct {
	Error string `json:"error"`
}

const filenameHeader = "X-Chord-Filename"
