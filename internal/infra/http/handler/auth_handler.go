package handler

import (
	"net/http"
	"time"

	"github.com/userdeskio/api/internal/app"
	"github.com/userdeskio/api/internal/infra/http/middleware"
	"github.com/userdeskio/api/pkg/apierror"
	"github.com/userdeskio/api/pkg/logger"
	"github.com/userdeskio/api/pkg/validator"
)

// AuthHandler serves login, registration and the current-user endpoint.
type AuthHandler struct {
	auth     *app.AuthService
	users    *app.UserService
	validate *validator.Validator
	logger   *logger.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(auth *app.AuthService, users *app.UserService, v *validator.Validator, log *logger.Logger) *AuthHandler {
	return &AuthHandler{
		auth:     auth,
		users:    users,
		validate: v,
		logger:   log.With("handler", "auth"),
	}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresAt   time.Time    `json:"expires_at"`
	User        UserResponse `json:"user"`
}

// Login verifies credentials and issues an access token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) || !validateRequest(w, h.validate, req) {
		return
	}

	result, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, loginResponse{
		AccessToken: result.AccessToken,
		TokenType:   "Bearer",
		ExpiresAt:   result.ExpiresAt,
		User:        toUserResponse(result.User),
	})
}

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required,min=1,max=200"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

// Register creates a new account.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req) || !validateRequest(w, h.validate, req) {
		return
	}

	u, err := h.users.Register(r.Context(), app.RegisterInput{
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
	})
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, toUserResponse(u))
}

// Me returns the authenticated user's account.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		apierror.Unauthorized("authentication required").WriteJSON(w)
		return
	}

	u, err := h.users.GetUser(r.Context(), userID)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, toUserResponse(u))
}
