package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"kharacha/internal/core"
)

// envelope is the shape of every API response body.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.ErrorContext(ctx, "Failed to encode response", "error", err)
	}
}

func writeSuccess(ctx context.Context, w http.ResponseWriter, status int, message string, data any) {
	writeJSON(ctx, w, status, envelope{Success: true, Message: message, Data: data})
}

func writeError(ctx context.Context, w http.ResponseWriter, status int, message string) {
	writeJSON(ctx, w, status, envelope{Success: false, Message: message})
}

// respondError translates a domain error into a status code and envelope.
// Storage faults and everything unclassified surface as a generic 500 so
// internals never leak to clients.
func respondError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrValidation):
		writeError(ctx, w, http.StatusBadRequest, userMessage(err))
	case errors.Is(err, core.ErrUnauthorized):
		writeError(ctx, w, http.StatusUnauthorized, userMessage(err))
	case errors.Is(err, core.ErrNotFound):
		writeError(ctx, w, http.StatusNotFound, userMessage(err))
	default:
		slog.ErrorContext(ctx, "Internal error", "error", err)
		writeError(ctx, w, http.StatusInternalServerError, "internal server error")
	}
}

// userMessage strips wrapping prefixes like "update expense:" so clients see
// only the classified cause, e.g. "validation error: user ID is required".
func userMessage(err error) string {
	for e := err; e != nil; e = errors.Unwrap(e) {
		switch errors.Unwrap(e) {
		case core.ErrValidation, core.ErrUnauthorized, core.ErrNotFound:
			return e.Error()
		}
	}
	return err.Error()
}
