package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-blog-auth/internal/domain"
	"github.com/go-blog-auth/internal/pkg/validate"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps err to a status code. domain.Error messages are returned
// as-is; anything unrecognized becomes a generic 500.
func writeError(w http.ResponseWriter, err error) {
	var de *domain.DispatchError
	if errors.As(err, &de) {
		writeJSON(w, http.StatusInternalServerError, MessageEnvelope{Error: "failed to send verification code"})
		return
	}

	status := statusFor(err)
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "err", err)
		writeJSON(w, status, MessageEnvelope{Error: "internal server error"})
		return
	}
	msg := err.Error()
	var e *domain.Error
	if errors.As(err, &e) {
		msg = e.Message
	}
	writeJSON(w, status, MessageEnvelope{Error: msg})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrUnprocessable):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// decode reads a JSON body into v and runs its validate tags. It writes the
// 400 response itself and reports whether the handler should continue.
func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, MessageEnvelope{Error: "invalid request body"})
		return false
	}
	if err := validate.Struct(v); err != nil {
		writeJSON(w, http.StatusBadRequest, MessageEnvelope{Error: err.Error()})
		return false
	}
	return true
}
