package role

import (
	"strings"

	"github.com/userdeskio/api/pkg/validation"
)

// Field length bounds shared by Validate and ValidateCreate.
const (
	maxNameLen        = 100
	maxDisplayNameLen = 150
	maxDescriptionLen = 500
	minNameLen        = 2
)

// ValidateCreate checks a CreateInput field by field. It never fails hard;
// violations accumulate in the result as "field: message" entries.
func ValidateCreate(input CreateInput) validation.Result {
	var res validation.Result
	validateNameFields(&res, input.Name, input.DisplayName, input.Description)
	res.RequireRange("level", input.Level, MinLevel, MaxLevel)
	res.RequireNonEmptyStrings("permissions", input.Permissions)
	return res
}

// Validate checks an existing Role value against the same field rules.
func Validate(r Role) validation.Result {
	var res validation.Result
	validateNameFields(&res, r.name, r.displayName, r.description)
	res.RequireRange("level", r.level, MinLevel, MaxLevel)
	res.RequireNonEmptyStrings("permissions", r.permissions)
	return res
}

func validateNameFields(res *validation.Result, name, displayName, description string) {
	trimmed := strings.TrimSpace(name)
	res.RequireNonEmpty("name", name)
	if trimmed != "" && len(trimmed) < minNameLen {
		res.Addf("name", "must be at least %d characters", minNameLen)
	}
	res.RequireMaxLen("name", trimmed, maxNameLen)
	res.RequireNonEmpty("displayName", displayName)
	res.RequireMaxLen("displayName", strings.TrimSpace(displayName), maxDisplayNameLen)
	res.RequireMaxLen("description", description, maxDescriptionLen)
}
