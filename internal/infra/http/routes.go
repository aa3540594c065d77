package http

import (
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/userdeskio/api/internal/app"
	"github.com/userdeskio/api/internal/infra/http/handler"
	"github.com/userdeskio/api/internal/infra/http/middleware"
	"github.com/userdeskio/api/internal/infra/postgres"
	"github.com/userdeskio/api/internal/infra/redis"
	"github.com/userdeskio/api/pkg/logger"
	"github.com/userdeskio/api/pkg/validator"
)

// Permission tokens guarding the management surface.
const (
	PermUsersRead        = "users:read"
	PermUsersWrite       = "users:write"
	PermRolesRead        = "roles:read"
	PermRolesWrite       = "roles:write"
	PermAssignmentsRead  = "assignments:read"
	PermAssignmentsWrite = "assignments:write"
	PermAuditRead        = "audit:read"
)

// Deps carries everything route registration needs.
type Deps struct {
	Auth        *app.AuthService
	Users       *app.UserService
	Roles       *app.RoleService
	Assignments *app.AssignmentService
	Access      *app.AccessService
	Audit       *app.AuditService

	DB    *postgres.DB
	Redis *redis.Client

	Validator *validator.Validator
	Logger    *logger.Logger
}

// RegisterRoutes mounts the full API surface on r.
func RegisterRoutes(r Router, deps Deps) {
	log := deps.Logger

	healthH := handler.NewHealthHandler(deps.DB, deps.Redis)
	authH := handler.NewAuthHandler(deps.Auth, deps.Users, deps.Validator, log)
	userH := handler.NewUserHandler(deps.Users, deps.Validator, log)
	roleH := handler.NewRoleHandler(deps.Roles, deps.Validator, log)
	assignH := handler.NewAssignmentHandler(deps.Assignments, deps.Validator, log)
	accessH := handler.NewAccessHandler(deps.Access, deps.Validator, log)
	auditH := handler.NewAuditHandler(deps.Audit, log)

	r.Get("/health", healthH.Health)
	r.Get("/health/ready", healthH.Ready)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r Router) {
		r.Post("/auth/register", authH.Register)
		r.Post("/auth/login", authH.Login)

		r.Group(func(r Router) {
			r.Use(Middleware(middleware.Authenticate(deps.Auth, log)))

			r.Get("/auth/me", authH.Me)
			r.Post("/auth/password", userH.ChangePassword)

			r.Group(func(r Router) {
				r.Use(Middleware(middleware.RequirePermission(deps.Access, PermUsersRead)))
				r.Get("/users", userH.List)
				r.Get("/users/{userID}", userH.Get)
				r.Get("/users/{userID}/assignments", assignH.ListByUser)
				r.Get("/users/{userID}/permissions", accessH.UserPermissions)
				r.Get("/users/{userID}/access", accessH.ActiveAssignments)
			})

			r.Group(func(r Router) {
				r.Use(Middleware(middleware.RequirePermission(deps.Access, PermUsersWrite)))
				r.Patch("/users/{userID}/profile", userH.UpdateProfile)
				r.Put("/users/{userID}/preferences", userH.UpdatePreferences)
				r.Post("/users/{userID}/suspend", userH.Suspend)
				r.Post("/users/{userID}/activate", userH.Activate)
				r.Post("/users/{userID}/deactivate", userH.Deactivate)
				r.Delete("/users/{userID}", userH.Delete)
			})

			r.Group(func(r Router) {
				r.Use(Middleware(middleware.RequirePermission(deps.Access, PermRolesRead)))
				r.Get("/roles", roleH.List)
				r.Get("/roles/{roleID}", roleH.Get)
				r.Get("/roles/{roleID}/assignments", assignH.ListByRole)
			})

			r.Group(func(r Router) {
				r.Use(Middleware(middleware.RequirePermission(deps.Access, PermRolesWrite)))
				r.Post("/roles", roleH.Create)
				r.Patch("/roles/{roleID}", roleH.Update)
				r.Put("/roles/{roleID}/permissions", roleH.SetPermissions)
				r.Post("/roles/{roleID}/permissions", roleH.AddPermission)
				r.Delete("/roles/{roleID}/permissions", roleH.RemovePermission)
				r.Post("/roles/{roleID}/activate", roleH.Activate)
				r.Post("/roles/{roleID}/deactivate", roleH.Deactivate)
				r.Delete("/roles/{roleID}", roleH.Delete)
			})

			r.Group(func(r Router) {
				r.Use(Middleware(middleware.RequirePermission(deps.Access, PermAssignmentsRead)))
				r.Get("/assignments/{assignmentID}", assignH.Get)
			})

			r.Group(func(r Router) {
				r.Use(Middleware(middleware.RequirePermission(deps.Access, PermAssignmentsWrite)))
				r.Post("/assignments", assignH.Assign)
				r.Post("/assignments/{assignmentID}/revoke", assignH.Revoke)
				r.Post("/assignments/{assignmentID}/reactivate", assignH.Reactivate)
				r.Put("/assignments/{assignmentID}/expiration", assignH.UpdateExpiration)
				r.Patch("/assignments/{assignmentID}/metadata", assignH.UpdateMetadata)
				r.Delete("/assignments/{assignmentID}", assignH.Delete)
			})

			// Point checks are open to any authenticated caller; services use
			// them to gate their own actions.
			r.Post("/access/check", accessH.Check)

			r.Group(func(r Router) {
				r.Use(Middleware(middleware.RequirePermission(deps.Access, PermAuditRead)))
				r.Get("/audit/events", auditH.Recent)
				r.Get("/users/{userID}/audit", auditH.UserActivity)
			})
		})
	})
}
