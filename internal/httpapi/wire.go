package httpapi

import "chorddfs/internal/ring"

// peerRef is the JSON wire form of a ring.Node, matching the shape
// internal/transport/httprpc.Client encodes and expects on the other end
// of every /chord/* call.
type peerRef struct {
	ID      uint64 `json:"id"`
	Address string `json:"address"`
}

func toPeerRef(n ring.Node) peerRef { return peerRef{ID: uint64(n.ID), Address: n.Address} }
func fromPeerRef(p peerRef) ring.Node {
	return ring.Node{ID: ring.ID(p.ID), Address: p.Address}
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

// messageResponse is the ack shape spec.md §6.1 uses for notify, keepalive,
// upload, forward, and delete responses.
type messageResponse struct {
	Message string `json:"message"`
}

// filesResponse is the body of GET /files.
type filesResponse struct {
	Files []string `json:"files"`
}

// infoResponse is the body of GET /chord/info: a full node state snapshot.
type infoResponse struct {
	Self        peerRef  `json:"self"`
	Successor   peerRef  `json:"successor"`
	Predecessor *peerRef `json:"predecessor"`
	MBits       int      `json:"m_bits"`
}

// errorResponse is the JSON body written on any non-2xx response.
type errorResponse struct {
	Error string `json:"error"`
}
