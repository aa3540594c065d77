package handler

import (
	"net/http"

	"github.com/userdeskio/api/internal/app"
	"github.com/userdeskio/api/pkg/domain/role"
	"github.com/userdeskio/api/pkg/logger"
	"github.com/userdeskio/api/pkg/validator"
)

// RoleHandler serves the role catalog.
type RoleHandler struct {
	roles    *app.RoleService
	validate *validator.Validator
	logger   *logger.Logger
}

// NewRoleHandler creates a new RoleHandler.
func NewRoleHandler(roles *app.RoleService, v *validator.Validator, log *logger.Logger) *RoleHandler {
	return &RoleHandler{
		roles:    roles,
		validate: v,
		logger:   log.With("handler", "role"),
	}
}

type createRoleRequest struct {
	Name        string         `json:"name" validate:"required,min=2,max=64,role_name"`
	DisplayName string         `json:"display_name" validate:"required,min=1,max=200"`
	Description string         `json:"description" validate:"max=1000"`
	Level       int            `json:"level" validate:"min=0,max=1000"`
	Permissions []string       `json:"permissions" validate:"omitempty,dive,permission"`
	Metadata    map[string]any `json:"metadata"`
}

// Create adds a custom role to the catalog.
func (h *RoleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRoleRequest
	if !decodeJSON(w, r, &req) || !validateRequest(w, h.validate, req) {
		return
	}

	created, err := h.roles.CreateRole(r.Context(), role.CreateInput{
		Name:        req.Name,
		DisplayName: req.DisplayName,
		Description: req.Description,
		Level:       req.Level,
		Permissions: req.Permissions,
		Metadata:    req.Metadata,
	})
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, toRoleResponse(created))
}

// List returns roles matching the filter query parameter.
func (h *RoleHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := app.RoleFilter(r.URL.Query().Get("filter"))

	roles, err := h.roles.ListRoles(r.Context(), filter)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, ListResponse[RoleResponse]{
		Items: toRoleResponses(roles),
		Total: int64(len(roles)),
	})
}

// Get returns one role by ID.
func (h *RoleHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "roleID")
	if !ok {
		return
	}

	found, err := h.roles.GetRole(r.Context(), id)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, toRoleResponse(found))
}

type updateRoleRequest struct {
	DisplayName *string `json:"display_name" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
	Level       *int    `json:"level" validate:"omitempty,min=0,max=1000"`
}

// Update patches a role's informational fields.
func (h *RoleHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "roleID")
	if !ok {
		return
	}
	var req updateRoleRequest
	if !decodeJSON(w, r, &req) || !validateRequest(w, h.validate, req) {
		return
	}

	updated, err := h.roles.UpdateRoleInfo(r.Context(), id, role.InfoPatch{
		DisplayName: req.DisplayName,
		Description: req.Description,
		Level:       req.Level,
	})
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, toRoleResponse(updated))
}

type setPermissionsRequest struct {
	Permissions []string `json:"permissions" validate:"required,dive,permission"`
}

// SetPermissions replaces a role's permission set.
func (h *RoleHandler) SetPermissions(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "roleID")
	if !ok {
		return
	}
	var req setPermissionsRequest
	if !decodeJSON(w, r, &req) || !validateRequest(w, h.validate, req) {
		return
	}

	updated, err := h.roles.UpdateRolePermissions(r.Context(), id, req.Permissions)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, toRoleResponse(updated))
}

type permissionRequest struct {
	Permission string `json:"permission" validate:"required,permission"`
}

// AddPermission grants one permission to a role.
func (h *RoleHandler) AddPermission(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "roleID")
	if !ok {
		return
	}
	var req permissionRequest
	if !decodeJSON(w, r, &req) || !validateRequest(w, h.validate, req) {
		return
	}

	updated, err := h.roles.AddPermission(r.Context(), id, req.Permission)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, toRoleResponse(updated))
}

// RemovePermission removes one permission from a role.
func (h *RoleHandler) RemovePermission(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "roleID")
	if !ok {
		return
	}
	var req permissionRequest
	if !decodeJSON(w, r, &req) || !validateRequest(w, h.validate, req) {
		return
	}

	updated, err := h.roles.RemovePermission(r.Context(), id, req.Permission)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, toRoleResponse(updated))
}

// Activate turns a role on.
func (h *RoleHandler) Activate(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "roleID")
	if !ok {
		return
	}
	updated, err := h.roles.ActivateRole(r.Context(), id)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, toRoleResponse(updated))
}

// Deactivate turns a role off. System roles refuse with a conflict.
func (h *RoleHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "roleID")
	if !ok {
		return
	}
	updated, err := h.roles.DeactivateRole(r.Context(), id)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, toRoleResponse(updated))
}

// Delete removes a custom role with no assignments.
func (h *RoleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "roleID")
	if !ok {
		return
	}
	if err := h.roles.DeleteRole(r.Context(), id); err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}
