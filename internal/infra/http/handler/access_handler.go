package handler

import (
	"net/http"

	"github.com/userdeskio/api/internal/app"
	"github.com/userdeskio/api/pkg/domain/shared"
	"github.com/userdeskio/api/pkg/logger"
	"github.com/userdeskio/api/pkg/validator"
)

// AccessHandler answers effective-permission queries.
type AccessHandler struct {
	access   *app.AccessService
	validate *validator.Validator
	logger   *logger.Logger
}

// NewAccessHandler creates a new AccessHandler.
func NewAccessHandler(access *app.AccessService, v *validator.Validator, log *logger.Logger) *AccessHandler {
	return &AccessHandler{
		access:   access,
		validate: v,
		logger:   log.With("handler", "access"),
	}
}

type permissionsResponse struct {
	UserID       string   `json:"user_id"`
	Permissions  []string `json:"permissions"`
	HighestLevel int      `json:"highest_level"`
}

// UserPermissions returns a user's effective permission set and hierarchy
// position.
func (h *AccessHandler) UserPermissions(w http.ResponseWriter, r *http.Request) {
	userID, ok := idParam(w, r, "userID")
	if !ok {
		return
	}

	perms, err := h.access.GetUserPermissions(r.Context(), userID)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	level, err := h.access.GetUserHighestRoleLevel(r.Context(), userID)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, permissionsResponse{
		UserID:       userID.String(),
		Permissions:  perms,
		HighestLevel: level,
	})
}

// ActiveAssignments returns a user's currently valid assignments.
func (h *AccessHandler) ActiveAssignments(w http.ResponseWriter, r *http.Request) {
	userID, ok := idParam(w, r, "userID")
	if !ok {
		return
	}

	assignments, err := h.access.GetActiveAssignments(r.Context(), userID)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, ListResponse[AssignmentResponse]{
		Items: toAssignmentResponses(assignments),
		Total: int64(len(assignments)),
	})
}

type checkRequest struct {
	UserID      string   `json:"user_id" validate:"required,uuid"`
	Permissions []string `json:"permissions" validate:"required,min=1,dive,permission"`
	// Mode selects the combinator: "any" (default) or "all".
	Mode string `json:"mode" validate:"omitempty,oneof=any all"`
}

type checkResponse struct {
	Allowed bool `json:"allowed"`
}

// Check evaluates whether a user holds the given permissions.
func (h *AccessHandler) Check(w http.ResponseWriter, r *http.Request) {
	var req checkRequest
	if !decodeJSON(w, r, &req) || !validateRequest(w, h.validate, req) {
		return
	}

	userID := shared.MustParseID(req.UserID)

	var (
		allowed bool
		err     error
	)
	if req.Mode == "all" {
		allowed, err = h.access.HasAllPermissions(r.Context(), userID, req.Permissions...)
	} else {
		allowed, err = h.access.HasAnyPermission(r.Context(), userID, req.Permissions...)
	}
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, checkResponse{Allowed: allowed})
}
