package handler

import (
	"time"

	"github.com/userdeskio/api/pkg/domain/assignment"
	"github.com/userdeskio/api/pkg/domain/audit"
	"github.com/userdeskio/api/pkg/domain/role"
	"github.com/userdeskio/api/pkg/domain/user"
)

// UserResponse is the wire representation of a user account.
type UserResponse struct {
	ID          string           `json:"id"`
	Email       string           `json:"email"`
	Name        string           `json:"name"`
	AvatarURL   string           `json:"avatar_url,omitempty"`
	Phone       string           `json:"phone,omitempty"`
	Status      string           `json:"status"`
	Preferences user.Preferences `json:"preferences"`
	LastLoginAt *time.Time       `json:"last_login_at,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

func toUserResponse(u *user.User) UserResponse {
	return UserResponse{
		ID:          u.ID().String(),
		Email:       u.Email(),
		Name:        u.Name(),
		AvatarURL:   u.AvatarURL(),
		Phone:       u.Phone(),
		Status:      string(u.Status()),
		Preferences: u.Preferences(),
		LastLoginAt: u.LastLoginAt(),
		CreatedAt:   u.CreatedAt(),
		UpdatedAt:   u.UpdatedAt(),
	}
}

// RoleResponse is the wire representation of a role.
type RoleResponse struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	DisplayName string         `json:"display_name"`
	Description string         `json:"description,omitempty"`
	Level       int            `json:"level"`
	IsSystem    bool           `json:"is_system"`
	IsActive    bool           `json:"is_active"`
	Permissions []string       `json:"permissions"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

func toRoleResponse(r role.Role) RoleResponse {
	return RoleResponse{
		ID:          r.ID().String(),
		Name:        r.Name(),
		DisplayName: r.DisplayName(),
		Description: r.Description(),
		Level:       r.Level(),
		IsSystem:    r.IsSystem(),
		IsActive:    r.IsActive(),
		Permissions: r.Permissions(),
		Metadata:    r.Metadata(),
		CreatedAt:   r.CreatedAt(),
		UpdatedAt:   r.UpdatedAt(),
	}
}

func toRoleResponses(roles []role.Role) []RoleResponse {
	out := make([]RoleResponse, 0, len(roles))
	for _, r := range roles {
		out = append(out, toRoleResponse(r))
	}
	return out
}

// AssignmentResponse is the wire representation of a role assignment.
type AssignmentResponse struct {
	ID         string         `json:"id"`
	UserID     string         `json:"user_id"`
	RoleID     string         `json:"role_id"`
	AssignedBy *string        `json:"assigned_by,omitempty"`
	AssignedAt time.Time      `json:"assigned_at"`
	ExpiresAt  *time.Time     `json:"expires_at,omitempty"`
	IsActive   bool           `json:"is_active"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

func toAssignmentResponse(a assignment.Assignment) AssignmentResponse {
	resp := AssignmentResponse{
		ID:         a.ID().String(),
		UserID:     a.UserID().String(),
		RoleID:     a.RoleID().String(),
		AssignedAt: a.AssignedAt(),
		ExpiresAt:  a.ExpiresAt(),
		IsActive:   a.IsActive(),
		Metadata:   a.Metadata(),
		CreatedAt:  a.CreatedAt(),
		UpdatedAt:  a.UpdatedAt(),
	}
	if by := a.AssignedBy(); by != nil {
		s := by.String()
		resp.AssignedBy = &s
	}
	return resp
}

func toAssignmentResponses(assignments []assignment.Assignment) []AssignmentResponse {
	out := make([]AssignmentResponse, 0, len(assignments))
	for _, a := range assignments {
		out = append(out, toAssignmentResponse(a))
	}
	return out
}

// EventResponse is the wire representation of an audit event.
type EventResponse struct {
	ID         string         `json:"id"`
	EventType  string         `json:"event_type"`
	UserID     string         `json:"user_id,omitempty"`
	RoleID     string         `json:"role_id,omitempty"`
	RoleName   string         `json:"role_name,omitempty"`
	AssignedBy *string        `json:"assigned_by,omitempty"`
	Timestamp  time.Time      `json:"timestamp"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

func toEventResponse(e audit.Event) EventResponse {
	resp := EventResponse{
		ID:        e.ID.String(),
		EventType: e.EventType.String(),
		RoleName:  e.RoleName,
		Timestamp: e.Timestamp,
		Metadata:  e.Metadata,
	}
	if !e.UserID.IsZero() {
		resp.UserID = e.UserID.String()
	}
	if !e.RoleID.IsZero() {
		resp.RoleID = e.RoleID.String()
	}
	if e.AssignedBy != nil {
		s := e.AssignedBy.String()
		resp.AssignedBy = &s
	}
	return resp
}

func toEventResponses(events []audit.Event) []EventResponse {
	out := make([]EventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, toEventResponse(e))
	}
	return out
}
