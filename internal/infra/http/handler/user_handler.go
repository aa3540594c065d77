package handler

import (
	"context"
	"net/http"

	"github.com/userdeskio/api/internal/app"
	"github.com/userdeskio/api/internal/infra/http/middleware"
	"github.com/userdeskio/api/pkg/apierror"
	"github.com/userdeskio/api/pkg/domain/shared"
	"github.com/userdeskio/api/pkg/domain/user"
	"github.com/userdeskio/api/pkg/logger"
	"github.com/userdeskio/api/pkg/validator"
)

// UserHandler serves user account management.
type UserHandler struct {
	users    *app.UserService
	validate *validator.Validator
	logger   *logger.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(users *app.UserService, v *validator.Validator, log *logger.Logger) *UserHandler {
	return &UserHandler{
		users:    users,
		validate: v,
		logger:   log.With("handler", "user"),
	}
}

// List returns a page of users.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)

	users, total, err := h.users.ListUsers(r.Context(), limit, offset)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	items := make([]UserResponse, 0, len(users))
	for _, u := range users {
		items = append(items, toUserResponse(u))
	}
	respondJSON(w, http.StatusOK, ListResponse[UserResponse]{
		Items:  items,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	})
}

// Get returns one user.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "userID")
	if !ok {
		return
	}

	u, err := h.users.GetUser(r.Context(), id)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, toUserResponse(u))
}

type updateProfileRequest struct {
	Name      string `json:"name" validate:"required,min=1,max=200"`
	AvatarURL string `json:"avatar_url" validate:"omitempty,url,max=500"`
	Phone     string `json:"phone" validate:"omitempty,max=32"`
}

// UpdateProfile replaces a user's profile fields.
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "userID")
	if !ok {
		return
	}
	var req updateProfileRequest
	if !decodeJSON(w, r, &req) || !validateRequest(w, h.validate, req) {
		return
	}

	u, err := h.users.UpdateProfile(r.Context(), id, req.Name, req.AvatarURL, req.Phone)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, toUserResponse(u))
}

// UpdatePreferences replaces a user's settings.
func (h *UserHandler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "userID")
	if !ok {
		return
	}
	var prefs user.Preferences
	if !decodeJSON(w, r, &prefs) {
		return
	}

	u, err := h.users.UpdatePreferences(r.Context(), id, prefs)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, toUserResponse(u))
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=128"`
}

// ChangePassword rotates the caller's own credential. The subject comes
// from the token, not the path, so a user cannot rotate someone else's.
func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		apierror.Unauthorized("authentication required").WriteJSON(w)
		return
	}
	var req changePasswordRequest
	if !decodeJSON(w, r, &req) || !validateRequest(w, h.validate, req) {
		return
	}

	if err := h.users.ChangePassword(r.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

// Suspend blocks an account.
func (h *UserHandler) Suspend(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, h.users.SuspendUser)
}

// Activate restores an account.
func (h *UserHandler) Activate(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, h.users.ActivateUser)
}

// Deactivate marks an account inactive.
func (h *UserHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, h.users.DeactivateUser)
}

// Delete removes an account.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "userID")
	if !ok {
		return
	}
	if err := h.users.DeleteUser(r.Context(), id); err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (h *UserHandler) setStatus(w http.ResponseWriter, r *http.Request, change func(context.Context, shared.ID) (*user.User, error)) {
	id, ok := idParam(w, r, "userID")
	if !ok {
		return
	}
	u, err := change(r.Context(), id)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, toUserResponse(u))
}
