package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/korssa/gong34/internal/common"
)

type ack struct {
	Success bool `json:"success"`
}

type errorBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error(r.Context(), "unable to write response", "error", err)
	}
}

// statusOf maps the error taxonomy onto HTTP status codes.
func statusOf(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, common.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrUnauthorized), errors.Is(err, common.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, common.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrUpload):
		return http.StatusBadGateway
	case errors.Is(err, common.ErrNotReady):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		s.logger.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		msg = http.StatusText(status)
	}
	s.writeJSON(w, r, status, errorBody{Success: false, Error: msg})
}
