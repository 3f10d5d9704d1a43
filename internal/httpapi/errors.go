package httpapi

import (
	"encoding/json"
	"net/http"

	"chorddfs/internal/chorderr"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

func writeAck(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusOK, messageResponse{Message: message})
}

// writeError maps a chorderr sentinel to the HTTP status spec.md §7
// assigns it. The boundary adapter is the only layer that performs this
// translation; every other layer passes the sentinel through, possibly
// wrapped with %w for context, and statusFor matches it with errors.Is.
func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case chorderr.Is(err, chorderr.ErrNotFound):
		return http.StatusNotFound
	case chorderr.Is(err, chorderr.ErrInvalidArgument):
		return http.StatusBadRequest
	case chorderr.Is(err, chorderr.ErrAlreadyBootstrapped):
		return http.StatusConflict
	case chorderr.Is(err, chorderr.ErrTransport):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
