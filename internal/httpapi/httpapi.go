// Package httpapi is the HTTP+JSON boundary adapter (spec.md §6.1): it
// binds node.Node's peer-facing RPC handlers and client-facing file
// operations to the reference HTTP route table, mapping chorderr sentinels
// to status codes at the edge the way spec.md §7 assigns that job to "the
// boundary adapter" alone. Translated from the teacher's
// internal/server/dht_service.go + client_service.go dispatch shape (grpc
// status codes in, HTTP status codes out) since this repository's wire
// format is HTTP+JSON rather than grpc+protobuf.
package httpapi

import (
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"chorddfs/internal/logger"
	"chorddfs/internal/node"
	"chorddfs/internal/telemetry/lookuptrace"
)

// Server hosts one node's HTTP boundary: the /chord/* peer RPCs and the
// /files* client+peer file operations.
type Server struct {
	node *node.Node
	lgr  logger.Logger
	mux  *http.ServeMux
}

// New builds a Server around n. The returned http.Handler should be passed
// to http.Serve (or wrapped in an *http.Server); Server itself owns no
// listener, mirroring the teacher's server.New taking a net.Listener from
// its caller.
func New(n *node.Node, lgr logger.Logger) *Server {
	if lgr == nil {
		lgr = &logger.NopLogger{}
	}
	s := &Server{node: n, lgr: lgr, mux: http.NewServeMux()}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("POST /chord/successor", s.handleFindSuccessor)
	s.mux.HandleFunc("GET /chord/predecessor", s.handlePredecessor)
	s.mux.HandleFunc("POST /chord/join", s.handleJoin)
	s.mux.HandleFunc("POST /chord/notify", s.handleNotify)
	s.mux.HandleFunc("POST /chord/keepalive", s.handleKeepalive)
	s.mux.HandleFunc("GET /chord/info", s.handleInfo)

	s.mux.HandleFunc("POST /files", s.handleSaveFile)
	s.mux.HandleFunc("GET /files", s.handleListFiles)
	s.mux.HandleFunc("GET /files/{name}", s.handleGetFile)
	s.mux.HandleFunc("DELETE /files/{name}", s.handleDeleteFile)
	s.mux.HandleFunc("POST /files/forward", s.handleForwardFile)
	s.mux.HandleFunc("POST /files/transfer", s.handleTransferRange)
	s.mux.HandleFunc("POST /files/transfer/confirm", s.handleConfirmTransfer)
}

// Handler returns the instrumented http.Handler, wrapped with otelhttp so
// inbound requests join the caller's trace. lookuptrace.Filter restricts
// span creation to lookup traffic on this side exactly as it does on
// internal/transport/httprpc.Client's outbound side, so a traced lookup
// chain stays traced end to end without stabilization traffic drowning it
// out.
func (s *Server) Handler() http.Handler {
	return otelhttp.NewHandler(s.mux, "chorddfs", otelhttp.WithFilter(lookuptrace.Filter))
}

func (s *Server) logRequestErr(op string, err error) {
	s.lgr.Debug("httpapi: request failed", logger.F("op", op), logger.F("err", err.Error()))
}
