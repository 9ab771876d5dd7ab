package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"kharacha/internal/auth"
	"kharacha/internal/core"
)

// handleRegister creates an account and returns it with a token, so a fresh
// client can start without a separate login round trip.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(r.Context(), w, err)
		return
	}

	username := strings.TrimSpace(req.Username)
	if username == "" {
		respondError(r.Context(), w, fmt.Errorf("%w: username is required", core.ErrValidation))
		return
	}
	if len(req.Password) < 8 {
		respondError(r.Context(), w, fmt.Errorf("%w: password must be at least 8 characters", core.ErrValidation))
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}

	user, err := s.users.CreateUser(r.Context(), username, hash)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}

	token, err := s.auth.Issue(user.ID)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}

	slog.InfoContext(r.Context(), "User registered", "user_id", user.ID, "username", user.Username)
	writeSuccess(r.Context(), w, http.StatusCreated, "user registered successfully", map[string]any{
		"user":  user,
		"token": token,
	})
}

// handleLogin verifies credentials and returns a fresh token. Unknown user
// and wrong password are indistinguishable to the caller.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(r.Context(), w, err)
		return
	}

	user, err := s.users.FindUserByName(r.Context(), strings.TrimSpace(req.Username))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			respondError(r.Context(), w, fmt.Errorf("%w: invalid username or password", core.ErrUnauthorized))
			return
		}
		respondError(r.Context(), w, err)
		return
	}

	if !auth.CheckPassword(req.Password, user.PasswordHash) {
		respondError(r.Context(), w, fmt.Errorf("%w: invalid username or password", core.ErrUnauthorized))
		return
	}

	token, err := s.auth.Issue(user.ID)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}

	slog.InfoContext(r.Context(), "User logged in", "user_id", user.ID)
	writeSuccess(r.Context(), w, http.StatusOK, "login successful", map[string]any{
		"user":  user,
		"token": token,
	})
}
