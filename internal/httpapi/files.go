package httpapi

import (
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"

	"chorddfs/internal/chorderr"
	"chorddfs/internal/ring"
)

// maxUploadMemory bounds how much of a multipart upload is buffered in
// memory before ParseMultipartForm spills the rest to temp files.
const maxUploadMemory = 32 << 20

func readMultipartFile(r *http.Request) (name string, data []byte, err error) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		return "", nil, chorderr.ErrInvalidArgument
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return "", nil, chorderr.ErrInvalidArgument
	}
	defer file.Close()
	if header.Filename == "" {
		return "", nil, chorderr.ErrInvalidArgument
	}
	data, err = io.ReadAll(file)
	if err != nil {
		return "", nil, chorderr.ErrInvalidArgument
	}
	return header.Filename, data, nil
}

func (s *Server) handleSaveFile(w http.ResponseWriter, r *http.Request) {
	name, data, err := readMultipartFile(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.node.Save(r.Context(), name, data); err != nil {
		s.logRequestErr("save", err)
		writeError(w, err)
		return
	}
	writeAck(w, "File uploaded successfully.")
}

func (s *Server) handleGetFile(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	data, err := s.node.Get(r.Context(), name)
	if err != nil {
		s.logRequestErr("get", err)
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handleDeleteFile(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if err := s.node.Delete(r.Context(), name); err != nil {
		s.logRequestErr("delete", err)
		writeError(w, err)
		return
	}
	writeAck(w, "File deleted successfully.")
}

func (s *Server) handleListFiles(w http.ResponseWriter, r *http.Request) {
	files, err := s.node.List(r.Context())
	if err != nil {
		s.logRequestErr("list", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, filesResponse{Files: files})
}

// handleForwardFile answers a peer's forward_file RPC: save directly
// without the transparent ownership check Save performs, per spec.md
// §4.6.7 (the caller already resolved this node as the owner).
func (s *Server) handleForwardFile(w http.ResponseWriter, r *http.Request) {
	name, data, err := readMultipartFile(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.node.HandleForwardFile(r.Context(), name, data); err != nil {
		s.logRequestErr("forward_file", err)
		writeError(w, err)
		return
	}
	writeAck(w, "File forwarded successfully.")
}

// handleTransferRange answers a peer's transfer_range RPC by streaming a
// multipart response, one part per file in (lo, hi]. Once the first part
// has been written the HTTP status is already committed, so a mid-stream
// failure can only be logged and the connection closed; the puller's
// multipart reader surfaces that as a transport error. The source node
// keeps every file served here until the puller calls
// POST /files/transfer/confirm for the same range.
func (s *Server) handleTransferRange(w http.ResponseWriter, r *http.Request) {
	var req transferRangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed request body"})
		return
	}

	mw := multipart.NewWriter(w)
	w.Header().Set("Content-Type", mw.FormDataContentType())

	started := false
	err := s.node.HandleTransferRange(r.Context(), ring.ID(req.Lo), ring.ID(req.Hi), func(name string, data []byte) error {
		started = true
		part, err := mw.CreateFormFile("file", name)
		if err != nil {
			return err
		}
		_, err = part.Write(data)
		return err
	})
	if err != nil {
		if !started {
			writeError(w, err)
			return
		}
		s.logRequestErr("transfer_range", err)
		return
	}
	_ = mw.Close()
}

// handleConfirmTransfer answers a puller's confirm_transfer RPC: the
// puller has durably saved every file from a prior transfer_range call
// over the same (lo, hi], so this node now deletes its own copies.
func (s *Server) handleConfirmTransfer(w http.ResponseWriter, r *http.Request) {
	var req transferRangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed request body"})
		return
	}
	if err := s.node.HandleConfirmTransfer(r.Context(), ring.ID(req.Lo), ring.ID(req.Hi)); err != nil {
		s.logRequestErr("confirm_transfer", err)
		writeError(w, err)
		return
	}
	writeAck(w, "Transfer confirmed.")
}
