// Command seed provisions the system role catalog and an initial
// administrator account. It is idempotent: existing roles and users are
// left untouched.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/userdeskio/api/internal/app"
	"github.com/userdeskio/api/internal/config"
	"github.com/userdeskio/api/internal/infra/postgres"
	"github.com/userdeskio/api/pkg/domain/assignment"
	"github.com/userdeskio/api/pkg/domain/role"
	"github.com/userdeskio/api/pkg/domain/shared"
	"github.com/userdeskio/api/pkg/logger"
	"github.com/userdeskio/api/pkg/password"
)

// systemRoles is the built-in role catalog.
var systemRoles = []role.CreateInput{
	{
		Name:        "admin",
		DisplayName: "Administrator",
		Description: "Full access to every resource.",
		Level:       100,
		IsSystem:    true,
		Permissions: []string{
			"users:read", "users:write",
			"roles:read", "roles:write",
			"assignments:read", "assignments:write",
			"audit:read",
		},
	},
	{
		Name:        "manager",
		DisplayName: "Manager",
		Description: "Manages users and role assignments.",
		Level:       50,
		IsSystem:    true,
		Permissions: []string{
			"users:read", "users:write",
			"roles:read",
			"assignments:read", "assignments:write",
			"audit:read",
		},
	},
	{
		Name:        "member",
		DisplayName: "Member",
		Description: "Read access to the directory.",
		Level:       10,
		IsSystem:    true,
		Permissions: []string{"users:read", "roles:read"},
	},
}

func main() {
	adminEmail := flag.String("admin-email", "", "Email for the initial administrator (skipped when empty)")
	adminName := flag.String("admin-name", "Administrator", "Display name for the initial administrator")
	adminPassword := flag.String("admin-password", "", "Password for the initial administrator")
	timeout := flag.Duration("timeout", 30*time.Second, "Overall timeout")
	flag.Parse()

	if err := run(*adminEmail, *adminName, *adminPassword, *timeout); err != nil {
		fmt.Fprintf(os.Stderr, "seed failed: %v\n", err)
		os.Exit(1)
	}
}

func run(adminEmail, adminName, adminPassword string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.New(logger.Config{Level: cfg.Log.Level, Format: "text"})

	db, err := postgres.New(&cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	roleRepo := postgres.NewRoleRepository(db)
	assignmentRepo := postgres.NewAssignmentRepository(db)
	userRepo := postgres.NewUserRepository(db)
	hasher := password.NewHasher(password.DefaultCost)

	roleSvc := app.NewRoleService(roleRepo, assignmentRepo, log)
	userSvc := app.NewUserService(userRepo, hasher, log)
	assignmentSvc := app.NewAssignmentService(assignmentRepo, roleRepo, userRepo, log)

	for _, input := range systemRoles {
		created, err := roleSvc.CreateRole(ctx, input)
		if err != nil {
			if shared.IsAlreadyExists(err) {
				fmt.Printf("role %q already present\n", input.Name)
				continue
			}
			return fmt.Errorf("create role %q: %w", input.Name, err)
		}
		fmt.Printf("created role %q (level %d)\n", created.Name(), created.Level())
	}

	if adminEmail == "" {
		return nil
	}
	if adminPassword == "" {
		return errors.New("-admin-password is required with -admin-email")
	}

	admin, err := userSvc.Register(ctx, app.RegisterInput{
		Email:    adminEmail,
		Name:     adminName,
		Password: adminPassword,
	})
	if err != nil {
		if shared.IsAlreadyExists(err) {
			fmt.Printf("user %q already present\n", adminEmail)
			return nil
		}
		return fmt.Errorf("create admin user: %w", err)
	}
	fmt.Printf("created user %q\n", admin.Email())

	adminRole, err := roleSvc.GetRoleByName(ctx, "admin")
	if err != nil {
		return fmt.Errorf("load admin role: %w", err)
	}
	if _, err := assignmentSvc.AssignRole(ctx, assignment.CreateInput{
		UserID: admin.ID(),
		RoleID: adminRole.ID(),
	}); err != nil {
		return fmt.Errorf("assign admin role: %w", err)
	}
	fmt.Printf("granted %q to %q\n", adminRole.Name(), admin.Email())
	return nil
}
