package assignment

import (
	"github.com/userdeskio/api/pkg/validation"
)

// ValidateCreate checks a CreateInput field by field, mirroring the contract
// shape of the role package: violations accumulate, nothing is thrown.
func ValidateCreate(input CreateInput) validation.Result {
	var res validation.Result
	if input.UserID.IsZero() {
		res.Add("userId", "is required")
	}
	if input.RoleID.IsZero() {
		res.Add("roleId", "is required")
	}
	if input.AssignedBy != nil && input.AssignedBy.IsZero() {
		res.Add("assignedBy", "must be a valid reference when set")
	}
	return res
}

// Validate checks an existing Assignment value.
func Validate(a Assignment) validation.Result {
	var res validation.Result
	if a.id.IsZero() {
		res.Add("id", "is required")
	}
	if a.userID.IsZero() {
		res.Add("userId", "is required")
	}
	if a.roleID.IsZero() {
		res.Add("roleId", "is required")
	}
	if a.expiresAt != nil && a.expiresAt.Before(a.assignedAt) {
		res.Add("expiresAt", "must not be before assignedAt")
	}
	return res
}
