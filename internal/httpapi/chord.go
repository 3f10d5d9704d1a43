package httpapi

import (
	"encoding/json"
	"net/http"

	"chorddfs/internal/ring"
)

func (s *Server) handleFindSuccessor(w http.ResponseWriter, r *http.Request) {
	var req findSuccessorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed request body"})
		return
	}
	succ, err := s.node.HandleFindSuccessor(r.Context(), ring.ID(req.Key), fromPeerRef(req.Origin))
	if err != nil {
		s.logRequestErr("find_successor", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPeerRef(succ))
}

func (s *Server) handlePredecessor(w http.ResponseWriter, r *http.Request) {
	pred, ok := s.node.HandlePredecessor()
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "no predecessor set"})
		return
	}
	writeJSON(w, http.StatusOK, toPeerRef(pred))
}

func (s *Server) handleJoin(w http.ResponseWriter, r *http.Request) {
	var req peerRef
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed request body"})
		return
	}
	result, err := s.node.HandleJoin(r.Context(), fromPeerRef(req))
	if err != nil {
		s.logRequestErr("handle_join", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPeerRef(result))
}

func (s *Server) handleNotify(w http.ResponseWriter, r *http.Request) {
	var req peerRef
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed request body"})
		return
	}
	if err := s.node.HandleNotify(r.Context(), fromPeerRef(req)); err != nil {
		s.logRequestErr("notify", err)
		writeError(w, err)
		return
	}
	writeAck(w, "ACK")
}

func (s *Server) handleKeepalive(w http.ResponseWriter, r *http.Request) {
	s.node.HandlePing()
	writeAck(w, "ACK")
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	table := s.node.Table()
	resp := infoResponse{
		Self:      toPeerRef(s.node.Self()),
		Successor: toPeerRef(table.Successor()),
		MBits:     table.Space().Bits,
	}
	if pred, ok := table.Predecessor(); ok {
		p := toPeerRef(pred)
		resp.Predecessor = &p
	}
	writeJSON(w, http.StatusOK, resp)
}
