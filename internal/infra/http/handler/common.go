// Package handler contains the HTTP handlers for the API surface.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/userdeskio/api/internal/app"
	"github.com/userdeskio/api/pkg/apierror"
	"github.com/userdeskio/api/pkg/domain/shared"
	"github.com/userdeskio/api/pkg/domain/user"
	"github.com/userdeskio/api/pkg/logger"
	"github.com/userdeskio/api/pkg/validator"
)

// ListResponse is the envelope for paginated collections.
type ListResponse[T any] struct {
	Items  []T   `json:"items"`
	Total  int64 `json:"total"`
	Limit  int   `json:"limit,omitempty"`
	Offset int   `json:"offset,omitempty"`
}

// respondJSON writes v as a JSON response.
func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// decodeJSON strictly decodes the request body into v. On failure it writes
// a 400 and returns false.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		apierror.BadRequest("invalid request body: " + err.Error()).WriteJSON(w)
		return false
	}
	return true
}

// validateRequest runs DTO validation and writes a 422 on failure.
func validateRequest(w http.ResponseWriter, v *validator.Validator, dto any) bool {
	err := v.Validate(dto)
	if err == nil {
		return true
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		details := make([]apierror.ValidationError, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			details = append(details, apierror.ValidationError{Field: fe.Field, Message: fe.Message})
		}
		apierror.ValidationFailed("request validation failed", details).WriteJSON(w)
		return false
	}
	apierror.BadRequest(err.Error()).WriteJSON(w)
	return false
}

// idParam parses a UUID path parameter. On failure it writes a 400 and
// returns false.
func idParam(w http.ResponseWriter, r *http.Request, name string) (shared.ID, bool) {
	raw := chi.URLParam(r, name)
	id, err := shared.ParseID(raw)
	if err != nil {
		apierror.BadRequest("invalid " + name + " parameter").WriteJSON(w)
		return shared.ID{}, false
	}
	return id, true
}

// queryInt parses an integer query parameter with a default.
func queryInt(r *http.Request, key string, def int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}

// respondError maps a service error to the API error vocabulary.
func respondError(w http.ResponseWriter, log *logger.Logger, err error) {
	switch {
	case shared.IsValidation(err):
		apierror.New(http.StatusUnprocessableEntity, apierror.CodeValidationFailed, err.Error()).WriteJSON(w)
	case shared.IsNotFound(err):
		apierror.New(http.StatusNotFound, apierror.CodeNotFound, err.Error()).WriteJSON(w)
	case shared.IsAlreadyExists(err):
		apierror.New(http.StatusConflict, apierror.CodeConflict, err.Error()).WriteJSON(w)
	case shared.IsInvariant(err), errors.Is(err, shared.ErrConflict):
		apierror.New(http.StatusConflict, apierror.CodeConflict, err.Error()).WriteJSON(w)
	case errors.Is(err, user.ErrInvalidCredentials),
		errors.Is(err, app.ErrTokenInvalid),
		errors.Is(err, app.ErrTokenExpired):
		apierror.Unauthorized(err.Error()).WriteJSON(w)
	case errors.Is(err, user.ErrUserSuspended), errors.Is(err, user.ErrUserInactive):
		apierror.Forbidden(err.Error()).WriteJSON(w)
	default:
		log.Error("request failed", "error", err)
		apierror.Internal(err).WriteJSON(w)
	}
}
