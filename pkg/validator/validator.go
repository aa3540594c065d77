// Package validator provides request-DTO validation on top of
// go-playground/validator, with custom rules for role names and permission
// tokens.
package validator

import (
	stderrors "errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// roleNameRegex validates role names: lowercase letters, numbers, hyphens;
// must start and end with an alphanumeric.
var roleNameRegex = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// permissionRegex validates permission tokens like "users:read" or
// "reports:export:csv": colon-separated lowercase segments.
var permissionRegex = regexp.MustCompile(`^[a-z0-9_-]+(?::[a-z0-9_*-]+)+$`)

// Validator wraps the go-playground validator with custom validations.
type Validator struct {
	validate *validator.Validate
}

// ValidationError represents a single field validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

// Error implements the error interface.
func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var sb strings.Builder
	for i, e := range v {
		if i > 0 {
			sb.WriteString("; ")
		}
		sb.WriteString(fmt.Sprintf("%s: %s", e.Field, e.Message))
	}
	return sb.String()
}

// New creates a new Validator with custom validators registered.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	_ = v.RegisterValidation("role_name", validateRoleName)
	_ = v.RegisterValidation("permission", validatePermission)
	_ = v.RegisterValidation("user_status", validateUserStatus)

	return &Validator{validate: v}
}

// Validate validates a struct and returns ValidationErrors if validation
// fails.
func (v *Validator) Validate(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !stderrors.As(err, &fieldErrors) {
		return err
	}

	result := make(ValidationErrors, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		result = append(result, ValidationError{
			Field:   fieldName(fe),
			Message: messageFor(fe),
		})
	}
	return result
}

func validateRoleName(fl validator.FieldLevel) bool {
	return roleNameRegex.MatchString(fl.Field().String())
}

func validatePermission(fl validator.FieldLevel) bool {
	return permissionRegex.MatchString(strings.ToLower(strings.TrimSpace(fl.Field().String())))
}

func validateUserStatus(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "active", "inactive", "suspended":
		return true
	}
	return false
}

func fieldName(fe validator.FieldError) string {
	// Strip the struct name prefix: "CreateRoleRequest.Name" -> "name".
	parts := strings.Split(fe.Namespace(), ".")
	return strings.ToLower(parts[len(parts)-1])
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "email":
		return "must be a valid email address"
	case "uuid":
		return "must be a valid UUID"
	case "role_name":
		return "must contain only lowercase letters, numbers and hyphens"
	case "permission":
		return "must be a colon-separated permission token like users:read"
	case "user_status":
		return "must be one of active, inactive, suspended"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
