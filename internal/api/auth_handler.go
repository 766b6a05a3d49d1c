package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth"
	"github.com/go-chi/render"
	"github.com/mediakit/catalog/pkg/catalog"
)

// AuthHandler handles registration and token issuance.
type AuthHandler struct {
	auth      catalog.AuthService
	tokenAuth *jwtauth.JWTAuth
	tokenTTL  time.Duration
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(auth catalog.AuthService, tokenAuth *jwtauth.JWTAuth, tokenTTL time.Duration) *AuthHandler {
	return &AuthHandler{
		auth:      auth,
		tokenAuth: tokenAuth,
		tokenTTL:  tokenTTL,
	}
}

// Routes returns the routes for authentication
func (h *AuthHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/register", h.Register)
	r.Post("/token", h.Token)

	return r
}

// credentialsRequest is the request body for register and token
type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// userResponse is the response body for a registered user
type userResponse struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	IsActive bool   `json:"is_active"`
}

// tokenResponse is the response body for a successful login
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Register creates a new user account
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Email == "" || req.Password == "" {
		http.Error(w, "email and password are required", http.StatusBadRequest)
		return
	}

	user, err := h.auth.Register(r.Context(), catalog.RegisterRequest{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, catalog.ErrEmailTaken) {
			http.Error(w, "Email already registered", http.StatusBadRequest)
			return
		}
		slog.Error("Failed to register user", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	slog.Info("User registered", "user_id", user.ID.String())
	render.JSON(w, r, userResponse{
		ID:       user.ID.String(),
		Email:    user.Email,
		IsActive: user.IsActive,
	})
}

// Token authenticates a user and returns a bearer JWT
func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	user, err := h.auth.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, catalog.ErrInvalidCredentials) {
			w.Header().Set("WWW-Authenticate", "Bearer")
			http.Error(w, "Incorrect email or password", http.StatusUnauthorized)
			return
		}
		slog.Error("Failed to authenticate user", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	_, tokenString, err := h.tokenAuth.Encode(map[string]interface{}{
		"sub": user.Email,
		"exp": time.Now().Add(h.tokenTTL).UTC().Unix(),
	})
	if err != nil {
		slog.Error("Failed to issue token", "user_id", user.ID.String(), "error", err)
		http.Error(w, "failed to issue token", http.StatusInternalServerError)
		return
	}

	render.JSON(w, r, tokenResponse{
		AccessToken: tokenString,
		TokenType:   "bearer",
	})
}
