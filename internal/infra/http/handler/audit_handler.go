package handler

import (
	"net/http"

	"github.com/userdeskio/api/internal/app"
	"github.com/userdeskio/api/pkg/logger"
)

// AuditHandler serves the access-change activity log.
type AuditHandler struct {
	audit  *app.AuditService
	logger *logger.Logger
}

// NewAuditHandler creates a new AuditHandler.
func NewAuditHandler(audit *app.AuditService, log *logger.Logger) *AuditHandler {
	return &AuditHandler{
		audit:  audit,
		logger: log.With("handler", "audit"),
	}
}

// Recent returns the newest events across all users.
func (h *AuditHandler) Recent(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)

	events, err := h.audit.RecentActivity(r.Context(), limit)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, ListResponse[EventResponse]{
		Items: toEventResponses(events),
		Total: int64(len(events)),
		Limit: limit,
	})
}

// UserActivity returns the newest events concerning one user.
func (h *AuditHandler) UserActivity(w http.ResponseWriter, r *http.Request) {
	userID, ok := idParam(w, r, "userID")
	if !ok {
		return
	}
	limit := queryInt(r, "limit", 50)

	events, err := h.audit.UserActivity(r.Context(), userID, limit)
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, ListResponse[EventResponse]{
		Items: toEventResponses(events),
		Total: int64(len(events)),
		Limit: limit,
	})
}
