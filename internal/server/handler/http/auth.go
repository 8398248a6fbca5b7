package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/wesigned/wesigned/internal/models"
	"github.com/wesigned/wesigned/internal/service"
)

// AuthService defines the account operations required by the
// AuthHandler.
type AuthService interface {
	Register(ctx context.Context, reg service.Registration) (*models.Account, error)
	Login(ctx context.Context, email, password string) (userID, token string, err error)
}

// AuthHandler handles registration and login.
type AuthHandler struct {
	AuthService AuthService
}

// RegisterRequest is the JSON payload for account registration.
type RegisterRequest struct {
	FirstName  string `json:"firstname"`
	MiddleName string `json:"middlename"`
	Surname    string `json:"surname"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	School     string `json:"school"`
}

// Register handles POST /api/register. On success it returns the opaque
// account identifier the client stores encrypted for the device-binding
// check.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.Password == "" {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	account, err := h.AuthService.Register(r.Context(), service.Registration{
		FirstName:  req.FirstName,
		MiddleName: req.MiddleName,
		Surname:    req.Surname,
		Email:      req.Email,
		Password:   req.Password,
		School:     req.School,
	})
	if errors.Is(err, service.ErrEmailTaken) {
		http.Error(w, "email already registered", http.StatusConflict)
		return
	}
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "userId": account.ID})
}

// LoginRequest is the JSON payload for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /api/login. On success it returns the session token
// plus the plaintext account identifier the client compares against its
// stored, encrypted copy.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	userID, token, err := h.AuthService.Login(r.Context(), req.Email, req.Password)
	if errors.Is(err, service.ErrInvalidCredentials) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "message": "invalid credentials"})
		return
	}
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "userId": userID, "token": token})
}
