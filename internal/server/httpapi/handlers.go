package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/osavchuk/authsvc/internal/common"
)

type registerRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type idResponse struct {
	ID int64 `json:"id"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid json body"})
		return
	}
	if strings.TrimSpace(req.FirstName) == "" || strings.TrimSpace(req.LastName) == "" ||
		strings.TrimSpace(req.Email) == "" || req.Password == "" {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "firstName, lastName, email and password are required"})
		return
	}

	user, pair, err := s.auth.Register(r.Context(), req.FirstName, req.LastName, req.Email, req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.Info(r.Context(), "user registered", "user_id", user.ID)
	s.setAuthCookies(w, pair)
	s.writeJSON(w, http.StatusCreated, idResponse{ID: user.ID})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid json body"})
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "email and password are required"})
		return
	}

	user, pair, err := s.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.Info(r.Context(), "user logged in", "user_id", user.ID)
	s.setAuthCookies(w, pair)
	s.writeJSON(w, http.StatusOK, idResponse{ID: user.ID})
}

func (s *Server) handleSelf(w http.ResponseWriter, r *http.Request) {
	sub, ok := SubjectFromContext(r.Context())
	if !ok {
		s.writeUnauthenticated(w)
		return
	}

	user, err := s.auth.Self(r.Context(), sub.UserID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	// models.User excludes the password hash from JSON; nothing below the
	// orchestrator ever returns it
	s.writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	refresh, ok := extractRefreshToken(r)
	if !ok {
		s.writeUnauthenticated(w)
		return
	}

	user, pair, err := s.auth.Rotate(r.Context(), refresh)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.Info(r.Context(), "refresh token rotated", "user_id", user.ID)
	s.setAuthCookies(w, pair)
	s.writeJSON(w, http.StatusOK, idResponse{ID: user.ID})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	refresh, ok := extractRefreshToken(r)
	if !ok {
		s.writeUnauthenticated(w)
		return
	}

	if err := s.auth.Logout(r.Context(), refresh); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.clearAuthCookies(w)
	s.writeJSON(w, http.StatusOK, struct{}{})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (s *Server) writeUnauthenticated(w http.ResponseWriter) {
	s.writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthenticated"})
}

// writeError converts domain errors into status-coded responses. This is the
// only place statuses are chosen; details of 500s stay in the server logs.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, common.ErrorEmailExists),
		errors.Is(err, common.ErrorInvalidCredentials):
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrRefreshTokenExpired):
		s.logger.Warn(r.Context(), "request rejected", "path", r.URL.Path, "reason", err)
		s.writeUnauthenticated(w)
	default:
		s.logger.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		s.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}
