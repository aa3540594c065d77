package role_test

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/userdeskio/api/pkg/domain/role"
)

// frozenClock always returns the same instant, forcing timestamp collisions.
type frozenClock struct {
	now time.Time
}

func (c frozenClock) Now() time.Time { return c.now }

func newTestCatalog() role.Catalog {
	return role.NewCatalog(frozenClock{now: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)})
}

func TestCreateNormalizesFields(t *testing.T) {
	c := newTestCatalog()
	r := c.Create(role.CreateInput{
		Name:        "  Support-Agent  ",
		DisplayName: "  Support Agent ",
		Description: " handles tickets ",
		Level:       10,
		Permissions: []string{" Users:Read ", "users:read", "TICKETS:WRITE"},
	})

	if r.Name() != "support-agent" {
		t.Errorf("expected normalized name, got %q", r.Name())
	}
	if r.DisplayName() != "Support Agent" {
		t.Errorf("expected trimmed display name, got %q", r.DisplayName())
	}
	if r.Description() != "handles tickets" {
		t.Errorf("expected trimmed description, got %q", r.Description())
	}
	if !r.IsActive() {
		t.Error("new roles must start active")
	}
	if r.IsSystem() {
		t.Error("isSystem must default to false")
	}
	want := []string{"tickets:write", "users:read"}
	if !reflect.DeepEqual(r.Permissions(), want) {
		t.Errorf("expected permissions %v, got %v", want, r.Permissions())
	}
	if !r.CreatedAt().Equal(r.UpdatedAt()) {
		t.Error("createdAt and updatedAt must match at creation")
	}
}

func TestUpdatePermissionsDeduplicatesAndNormalizes(t *testing.T) {
	c := newTestCatalog()
	r := c.Create(role.CreateInput{Name: "r", DisplayName: "R"})

	r = c.UpdatePermissions(r, []string{"a", "A", " a "})

	if !reflect.DeepEqual(r.Permissions(), []string{"a"}) {
		t.Errorf("expected {a}, got %v", r.Permissions())
	}
}

func TestAddRemovePermissionRoundTrip(t *testing.T) {
	c := newTestCatalog()
	r := c.Create(role.CreateInput{Name: "r", DisplayName: "R"})

	r = c.AddPermission(r, "reports:read")
	if !r.HasPermission("reports:read") {
		t.Fatal("permission missing after AddPermission")
	}
	if !r.HasPermission("  REPORTS:READ ") {
		t.Error("HasPermission must normalize its input")
	}

	r = c.RemovePermission(r, "reports:read")
	if r.HasPermission("reports:read") {
		t.Error("permission still present after RemovePermission")
	}
}

func TestAddPermissionIdempotent(t *testing.T) {
	c := newTestCatalog()
	r := c.Create(role.CreateInput{Name: "r", DisplayName: "R", Permissions: []string{"users:read"}})

	again := c.AddPermission(r, " USERS:READ ")

	if !again.UpdatedAt().Equal(r.UpdatedAt()) {
		t.Error("adding an existing permission must not bump updatedAt")
	}
	if !reflect.DeepEqual(again, r) {
		t.Error("adding an existing permission must return the identical value")
	}
}

func TestRemoveAbsentPermissionStillBumps(t *testing.T) {
	// Documented asymmetry with AddPermission: removal always produces a new
	// version, even when the permission was not present.
	c := newTestCatalog()
	r := c.Create(role.CreateInput{Name: "r", DisplayName: "R"})

	removed := c.RemovePermission(r, "never:there")

	if !removed.UpdatedAt().After(r.UpdatedAt()) {
		t.Error("removing an absent permission must still bump updatedAt")
	}
}

func TestDeactivateSystemRoleFails(t *testing.T) {
	c := newTestCatalog()
	r := c.Create(role.CreateInput{Name: "admin", DisplayName: "Admin", IsSystem: true})

	if r.CanBeDeleted() || r.CanBeModified() {
		t.Error("system roles must report not deletable and not modifiable")
	}

	_, err := c.Deactivate(r)
	if err == nil {
		t.Fatal("expected error deactivating a system role")
	}
	if !strings.Contains(err.Error(), "cannot deactivate system role") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestActivationRoundTrip(t *testing.T) {
	c := newTestCatalog()
	r := c.Create(role.CreateInput{Name: "temp", DisplayName: "Temp"})

	deactivated, err := c.Deactivate(r)
	if err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if deactivated.IsActive() {
		t.Fatal("expected inactive after Deactivate")
	}
	if !deactivated.UpdatedAt().After(r.UpdatedAt()) {
		t.Error("Deactivate must bump updatedAt")
	}

	reactivated := c.Activate(deactivated)
	if !reactivated.IsActive() {
		t.Fatal("expected active after Activate")
	}
	if !reactivated.UpdatedAt().After(deactivated.UpdatedAt()) {
		t.Error("Activate must bump updatedAt")
	}

	// No-ops return the same value.
	same := c.Activate(reactivated)
	if !reflect.DeepEqual(same, reactivated) {
		t.Error("Activate on an active role must be a no-op")
	}
	inactiveAgain, err := c.Deactivate(deactivated)
	if err != nil || !reflect.DeepEqual(inactiveAgain, deactivated) {
		t.Error("Deactivate on an inactive role must be a no-op")
	}
}

func TestMonotonicUpdatedAtUnderFrozenClock(t *testing.T) {
	// The clock never advances, so every bump must come from the tie-break.
	c := newTestCatalog()
	r := c.Create(role.CreateInput{Name: "r", DisplayName: "R"})

	prev := r.UpdatedAt()
	for i := 0; i < 5; i++ {
		r = c.UpdatePermissions(r, []string{"p"})
		if !r.UpdatedAt().After(prev) {
			t.Fatalf("mutation %d: updatedAt %v not after %v", i, r.UpdatedAt(), prev)
		}
		prev = r.UpdatedAt()
	}
}

func TestLevelComparisonsAreExclusiveAndTotal(t *testing.T) {
	c := newTestCatalog()
	low := c.Create(role.CreateInput{Name: "low", DisplayName: "Low", Level: 10})
	high := c.Create(role.CreateInput{Name: "high", DisplayName: "High", Level: 50})
	peer := c.Create(role.CreateInput{Name: "peer", DisplayName: "Peer", Level: 10})

	pairs := []struct {
		a, b role.Role
	}{
		{low, high}, {high, low}, {low, peer}, {low, low},
	}
	for i, p := range pairs {
		results := []bool{p.a.IsHigherLevel(p.b), p.a.IsSameLevel(p.b), p.a.IsLowerLevel(p.b)}
		trues := 0
		for _, v := range results {
			if v {
				trues++
			}
		}
		if trues != 1 {
			t.Errorf("pair %d: expected exactly one comparison to hold, got %v", i, results)
		}
	}

	if !high.IsHigherLevel(low) || !low.IsLowerLevel(high) || !low.IsSameLevel(peer) {
		t.Error("level comparisons disagree with numeric order")
	}
}

func TestPermissionClassHelpers(t *testing.T) {
	c := newTestCatalog()
	reader := c.Create(role.CreateInput{Name: "reader", DisplayName: "Reader", Permissions: []string{role.PermUsersRead}})
	admin := c.Create(role.CreateInput{Name: "root", DisplayName: "Root", Permissions: []string{role.PermAdminAll}})

	if !reader.HasReadPermissions() || reader.HasAdminPermissions() {
		t.Error("reader must classify as read-only")
	}
	if !admin.HasAdminPermissions() || admin.HasUserManagementPermissions() {
		t.Error("admin:all must classify as admin but not user management")
	}
	if !reader.HasAnyPermission("users:read", "users:write") {
		t.Error("HasAnyPermission must match a single member")
	}
	if reader.HasAllPermissions("users:read", "users:write") {
		t.Error("HasAllPermissions must require every member")
	}
}

func TestValidateCreate(t *testing.T) {
	cases := []struct {
		name  string
		input role.CreateInput
		valid bool
	}{
		{"ok", role.CreateInput{Name: "ok", DisplayName: "Ok", Level: 0}, true},
		{"empty name", role.CreateInput{DisplayName: "Ok"}, false},
		{"short name", role.CreateInput{Name: "x", DisplayName: "Ok"}, false},
		{"level too high", role.CreateInput{Name: "ok", DisplayName: "Ok", Level: 1001}, false},
		{"level negative", role.CreateInput{Name: "ok", DisplayName: "Ok", Level: -1}, false},
		{"blank permission", role.CreateInput{Name: "ok", DisplayName: "Ok", Permissions: []string{" "}}, false},
		{"long description", role.CreateInput{Name: "ok", DisplayName: "Ok", Description: strings.Repeat("d", 501)}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := role.ValidateCreate(tc.input)
			if res.Valid() != tc.valid {
				t.Errorf("expected valid=%v, errors=%v", tc.valid, res.Errors)
			}
			for _, e := range res.Errors {
				if !strings.Contains(e, ": ") {
					t.Errorf("error %q is not in field: message form", e)
				}
			}
		})
	}
}
