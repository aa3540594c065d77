package handler

import (
	"net/http"
	"time"

	"github.com/userdeskio/api/internal/app"
	"github.com/userdeskio/api/internal/infra/http/middleware"
	"github.com/userdeskio/api/pkg/domain/assignment"
	"github.com/userdeskio/api/pkg/domain/shared"
	"github.com/userdeskio/api/pkg/logger"
	"github.com/userdeskio/api/pkg/validator"
)

// AssignmentHandler serves the role assignment ledger.
type AssignmentHandler struct {
	assignments *app.AssignmentService
	validate    *validator.Validator
	logger      *logger.Logger
}

// NewAssignmentHandler creates a new AssignmentHandler.
func NewAssignmentHandler(assignments *app.AssignmentService, v *validator.Validator, log *logger.Logger) *AssignmentHandler {
	return &AssignmentHandler{
		assignments: assignments,
		validate:    v,
		logger:      log.With("handler", "assignment"),
	}
}

type assignRoleRequest struct {
	UserID    string         `json:"user_id" validate:"required,uuid"`
	RoleID    string         `json:"role_id" validate:"required,uuid"`
	ExpiresAt *time.Time     `json:"expires_at"`
	Metadata  map[string]any `json:"metadata"`
}

// Assign grants a role to a user. The grantor is the authenticated caller.
func (h *AssignmentHandler) Assign(w http.ResponseWriter, r *http.Request) {
	var req assignRoleRequest
	if !decodeJSON(w, r, &req) || !validateRequest(w, h.validate, req) {
		return
	}

	userID := shared.MustParseID(req.UserID)
	roleID := shared.MustParseID(req.RoleID)

	var assignedBy *shared.ID
	if caller, ok := middleware.GetUserID(r.Context()); ok {
		assignedBy = &caller
	}

	created, err := h.assignments.AssignRole(r.Context(), assignment.CreateInput{
		UserID:     userID,
		RoleID:     roleID,
		AssignedBy: assignedBy,
		ExpiresAt:  req.ExpiresAt,
		Metadata:   req.Metadata,
	})
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, toAssignmentResponse(created))
}

// Get returns one assignment.
func (h *AssignmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "assignmentID")
	if !ok {
		return
	}

	a, err := h.assignments.GetAssignment(r.Context(), id)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, toAssignmentResponse(a))
}

// Revoke deactivates an assignment.
func (h *AssignmentHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "assignmentID")
	if !ok {
		return
	}

	var revokedBy *shared.ID
	if caller, ok := middleware.GetUserID(r.Context()); ok {
		revokedBy = &caller
	}

	revoked, err := h.assignments.RevokeRole(r.Context(), id, revokedBy)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, toAssignmentResponse(revoked))
}

// Reactivate turns an inactive assignment back on.
func (h *AssignmentHandler) Reactivate(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "assignmentID")
	if !ok {
		return
	}

	activated, err := h.assignments.ReactivateAssignment(r.Context(), id)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, toAssignmentResponse(activated))
}

type updateExpirationRequest struct {
	ExpiresAt *time.Time `json:"expires_at"`
}

// UpdateExpiration replaces the expiration; a null value clears it.
func (h *AssignmentHandler) UpdateExpiration(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "assignmentID")
	if !ok {
		return
	}
	var req updateExpirationRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	updated, err := h.assignments.UpdateExpiration(r.Context(), id, req.ExpiresAt)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, toAssignmentResponse(updated))
}

type updateMetadataRequest struct {
	Metadata map[string]any `json:"metadata" validate:"required"`
}

// UpdateMetadata merges a patch into the assignment metadata.
func (h *AssignmentHandler) UpdateMetadata(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "assignmentID")
	if !ok {
		return
	}
	var req updateMetadataRequest
	if !decodeJSON(w, r, &req) || !validateRequest(w, h.validate, req) {
		return
	}

	updated, err := h.assignments.UpdateMetadata(r.Context(), id, req.Metadata)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, toAssignmentResponse(updated))
}

// Delete erases an assignment record.
func (h *AssignmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "assignmentID")
	if !ok {
		return
	}
	if err := h.assignments.DeleteAssignment(r.Context(), id); err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

// ListByUser returns every assignment of a user.
func (h *AssignmentHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := idParam(w, r, "userID")
	if !ok {
		return
	}

	assignments, err := h.assignments.ListUserAssignments(r.Context(), userID)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, ListResponse[AssignmentResponse]{
		Items: toAssignmentResponses(assignments),
		Total: int64(len(assignments)),
	})
}

// ListByRole returns every assignment of a role.
func (h *AssignmentHandler) ListByRole(w http.ResponseWriter, r *http.Request) {
	roleID, ok := idParam(w, r, "roleID")
	if !ok {
		return
	}

	assignments, err := h.assignments.ListRoleAssignments(r.Context(), roleID)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, ListResponse[AssignmentResponse]{
		Items: toAssignmentResponses(assignments),
		Total: int64(len(assignments)),
	})
}
