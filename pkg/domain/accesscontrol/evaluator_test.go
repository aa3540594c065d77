package accesscontrol_test

import (
	"context"
	"testing"
	"time"

	"github.com/userdeskio/api/pkg/domain/accesscontrol"
	"github.com/userdeskio/api/pkg/domain/assignment"
	"github.com/userdeskio/api/pkg/domain/role"
	"github.com/userdeskio/api/pkg/domain/shared"
)

type frozenClock struct {
	now time.Time
}

func (c frozenClock) Now() time.Time { return c.now }

var testNow = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

// fakeRoleRepo serves roles from memory.
type fakeRoleRepo struct {
	roles map[shared.ID]role.Role
}

func (f *fakeRoleRepo) FindByID(_ context.Context, id shared.ID) (role.Role, error) {
	r, ok := f.roles[id]
	if !ok {
		return role.Role{}, role.ErrRoleNotFound
	}
	return r, nil
}

func (f *fakeRoleRepo) FindByName(context.Context, string) (role.Role, error) {
	return role.Role{}, role.ErrRoleNotFound
}

func (f *fakeRoleRepo) FindAll(context.Context) ([]role.Role, error)    { return nil, nil }
func (f *fakeRoleRepo) FindActive(context.Context) ([]role.Role, error) { return nil, nil }
func (f *fakeRoleRepo) FindSystem(context.Context) ([]role.Role, error) { return nil, nil }
func (f *fakeRoleRepo) FindCustom(context.Context) ([]role.Role, error) { return nil, nil }

func (f *fakeRoleRepo) FindByIDs(_ context.Context, ids []shared.ID) ([]role.Role, error) {
	out := make([]role.Role, 0, len(ids))
	for _, id := range ids {
		if r, ok := f.roles[id]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRoleRepo) Create(context.Context, role.Role) error        { return nil }
func (f *fakeRoleRepo) Update(context.Context, role.Role) error        { return nil }
func (f *fakeRoleRepo) Delete(context.Context, shared.ID) error        { return nil }
func (f *fakeRoleRepo) ExistsByID(context.Context, shared.ID) (bool, error) {
	return false, nil
}
func (f *fakeRoleRepo) ExistsByName(context.Context, string) (bool, error) {
	return false, nil
}

// fakeAssignmentRepo serves assignments from memory.
type fakeAssignmentRepo struct {
	byUser map[shared.ID][]assignment.Assignment
}

func (f *fakeAssignmentRepo) FindByID(context.Context, shared.ID) (assignment.Assignment, error) {
	return assignment.Assignment{}, assignment.ErrAssignmentNotFound
}

func (f *fakeAssignmentRepo) FindByUserID(_ context.Context, userID shared.ID) ([]assignment.Assignment, error) {
	return f.byUser[userID], nil
}

func (f *fakeAssignmentRepo) FindByRoleID(context.Context, shared.ID) ([]assignment.Assignment, error) {
	return nil, nil
}

func (f *fakeAssignmentRepo) FindActiveByUserID(_ context.Context, userID shared.ID) ([]assignment.Assignment, error) {
	var out []assignment.Assignment
	for _, a := range f.byUser[userID] {
		if a.IsActive() {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAssignmentRepo) FindActiveByRoleID(context.Context, shared.ID) ([]assignment.Assignment, error) {
	return nil, nil
}

func (f *fakeAssignmentRepo) FindExpired(context.Context, time.Time) ([]assignment.Assignment, error) {
	return nil, nil
}

func (f *fakeAssignmentRepo) Create(context.Context, assignment.Assignment) error { return nil }
func (f *fakeAssignmentRepo) Update(context.Context, assignment.Assignment) error { return nil }
func (f *fakeAssignmentRepo) Delete(context.Context, shared.ID) error             { return nil }

func grant(l assignment.Ledger, userID, roleID shared.ID, expiresAt *time.Time) assignment.Assignment {
	return l.Create(assignment.CreateInput{UserID: userID, RoleID: roleID, ExpiresAt: expiresAt})
}

func TestEvaluatorAggregatesValidAssignmentsOnly(t *testing.T) {
	clock := frozenClock{now: testNow}
	catalog := role.NewCatalog(clock)
	ledger := assignment.NewLedger(clock)

	roleA := catalog.Create(role.CreateInput{Name: "a", DisplayName: "A", Level: 10, Permissions: []string{"read:x"}})
	roleB := catalog.Create(role.CreateInput{Name: "b", DisplayName: "B", Level: 50, Permissions: []string{"write:x"}})

	userID := shared.NewID()
	past := testNow.Add(-time.Minute)

	roles := &fakeRoleRepo{roles: map[shared.ID]role.Role{roleA.ID(): roleA, roleB.ID(): roleB}}
	assignments := &fakeAssignmentRepo{byUser: map[shared.ID][]assignment.Assignment{
		userID: {
			grant(ledger, userID, roleA.ID(), nil),   // valid
			grant(ledger, userID, roleB.ID(), &past), // expired
		},
	}}

	e := accesscontrol.NewEvaluator(roles, assignments, clock)
	ctx := context.Background()

	perms, err := e.GetUserPermissions(ctx, userID)
	if err != nil {
		t.Fatalf("GetUserPermissions: %v", err)
	}
	if len(perms) != 1 || perms[0] != "read:x" {
		t.Errorf("expected {read:x}, got %v", perms)
	}

	level, err := e.GetUserHighestRoleLevel(ctx, userID)
	if err != nil {
		t.Fatalf("GetUserHighestRoleLevel: %v", err)
	}
	if level != 10 {
		t.Errorf("expected level 10 (expired grant to B excluded), got %d", level)
	}

	active, err := e.GetActiveAssignments(ctx, userID)
	if err != nil {
		t.Fatalf("GetActiveAssignments: %v", err)
	}
	if len(active) != 1 || !active[0].RoleID().Equal(roleA.ID()) {
		t.Errorf("expected only the grant to role A, got %d assignments", len(active))
	}
}

func TestEvaluatorUserWithoutAssignments(t *testing.T) {
	clock := frozenClock{now: testNow}
	e := accesscontrol.NewEvaluator(
		&fakeRoleRepo{roles: map[shared.ID]role.Role{}},
		&fakeAssignmentRepo{byUser: map[shared.ID][]assignment.Assignment{}},
		clock,
	)
	ctx := context.Background()
	userID := shared.NewID()

	perms, err := e.GetUserPermissions(ctx, userID)
	if err != nil {
		t.Fatalf("GetUserPermissions: %v", err)
	}
	if perms == nil || len(perms) != 0 {
		t.Errorf("expected empty non-nil set, got %v", perms)
	}

	has, err := e.HasUserPermission(ctx, userID, "read:x")
	if err != nil || has {
		t.Errorf("expected no permission, got has=%v err=%v", has, err)
	}

	level, err := e.GetUserHighestRoleLevel(ctx, userID)
	if err != nil {
		t.Fatalf("GetUserHighestRoleLevel: %v", err)
	}
	if level != accesscontrol.NoRoleLevel {
		t.Errorf("expected sentinel %d, got %d", accesscontrol.NoRoleLevel, level)
	}
}

func TestEvaluatorDeactivatedAssignmentExcluded(t *testing.T) {
	clock := frozenClock{now: testNow}
	catalog := role.NewCatalog(clock)
	ledger := assignment.NewLedger(clock)

	r := catalog.Create(role.CreateInput{Name: "ops", DisplayName: "Ops", Level: 20, Permissions: []string{"deploy:prod"}})
	userID := shared.NewID()

	revoked := ledger.Deactivate(grant(ledger, userID, r.ID(), nil))

	e := accesscontrol.NewEvaluator(
		&fakeRoleRepo{roles: map[shared.ID]role.Role{r.ID(): r}},
		&fakeAssignmentRepo{byUser: map[shared.ID][]assignment.Assignment{userID: {revoked}}},
		clock,
	)

	has, err := e.HasUserPermission(context.Background(), userID, "deploy:prod")
	if err != nil {
		t.Fatalf("HasUserPermission: %v", err)
	}
	if has {
		t.Error("deactivated assignment must not grant permissions")
	}
}

func TestEvaluatorHasAnyAndAllPermissions(t *testing.T) {
	clock := frozenClock{now: testNow}
	catalog := role.NewCatalog(clock)
	ledger := assignment.NewLedger(clock)

	r := catalog.Create(role.CreateInput{Name: "editor", DisplayName: "Editor", Permissions: []string{"docs:read", "docs:write"}})
	userID := shared.NewID()

	e := accesscontrol.NewEvaluator(
		&fakeRoleRepo{roles: map[shared.ID]role.Role{r.ID(): r}},
		&fakeAssignmentRepo{byUser: map[shared.ID][]assignment.Assignment{
			userID: {grant(ledger, userID, r.ID(), nil)},
		}},
		clock,
	)
	ctx := context.Background()

	any, err := e.HasUserAnyPermission(ctx, userID, "docs:admin", "DOCS:READ")
	if err != nil || !any {
		t.Errorf("expected any=true, got %v err=%v", any, err)
	}

	all, err := e.HasUserAllPermissions(ctx, userID, "docs:read", "docs:write")
	if err != nil || !all {
		t.Errorf("expected all=true, got %v err=%v", all, err)
	}

	all, err = e.HasUserAllPermissions(ctx, userID, "docs:read", "docs:admin")
	if err != nil || all {
		t.Errorf("expected all=false, got %v err=%v", all, err)
	}
}
