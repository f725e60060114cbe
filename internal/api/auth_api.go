package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"carrent/internal/auth"
	"carrent/internal/database"
	"carrent/internal/metrics"
	"carrent/internal/models"

	"github.com/julienschmidt/httprouter"
)

// RegisterRequest is the request body for POST /api/auth/register.
type RegisterRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Country   string `json:"country,omitempty"`
	City      string `json:"city,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

// LoginRequest is the request body for POST /api/auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse carries the issued access token.
type LoginResponse struct {
	Token  string `json:"token"`
	UserID int64  `json:"user_id"`
}

func (s *HTTPServer) handleRegister(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	metrics.IncHTTP("auth_register")

	var req RegisterRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if req.Username == "" || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "username, email and password are required")
		return
	}
	if len(req.Password) < 8 {
		writeError(w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to process password")
		return
	}

	user := &models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Country:      req.Country,
		City:         req.City,
		Phone:        req.Phone,
	}
	if err := s.db.CreateUser(r.Context(), user); err != nil {
		// The unique constraints on username/email surface here.
		writeError(w, http.StatusConflict, "username or email already taken")
		return
	}

	s.log.Info().Int64("user_id", user.ID).Str("username", user.Username).Msg("user registered")
	writeJSON(w, http.StatusCreated, user)
}

func (s *HTTPServer) handleLogin(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	metrics.IncHTTP("auth_login")

	var req LoginRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	user, err := s.db.GetUserByUsername(r.Context(), req.Username)
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			writeError(w, http.StatusUnauthorized, "invalid username or password")
			return
		}
		writeError(w, http.StatusInternalServerError, "login failed")
		return
	}
	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		writeError(w, http.StatusUnauthorized, "invalid username or password")
		return
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{Token: token, UserID: user.ID})
}

// handleDeleteAccount deactivates the caller's account and revokes the
// presented token. The row is kept so existing bookings stay attributable.
func (s *HTTPServer) handleDeleteAccount(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	metrics.IncHTTP("auth_delete_account")

	claims := claimsFrom(r.Context())
	if err := s.db.DeactivateUser(r.Context(), claims.UserID); err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "account not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to deactivate account")
		return
	}
	if err := s.tokens.Revoke(r.Context(), claims); err != nil {
		s.log.Error().Err(err).Int64("user_id", claims.UserID).Msg("failed to revoke token on account deletion")
	}

	s.log.Info().Int64("user_id", claims.UserID).Msg("account deactivated")
	w.WriteHeader(http.StatusNoContent)
}

func (s *HTTPServer) handleLogout(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	metrics.IncHTTP("auth_logout")

	claims := claimsFrom(r.Context())
	if err := s.tokens.Revoke(r.Context(), claims); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to revoke token")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
