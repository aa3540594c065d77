package assignment_test

import (
	"reflect"
	"testing"
	"time"

	"github.com/userdeskio/api/pkg/domain/assignment"
	"github.com/userdeskio/api/pkg/domain/shared"
)

type frozenClock struct {
	now time.Time
}

func (c frozenClock) Now() time.Time { return c.now }

var testNow = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

func newTestLedger() assignment.Ledger {
	return assignment.NewLedger(frozenClock{now: testNow})
}

func TestCreateDefaults(t *testing.T) {
	l := newTestLedger()
	a := l.Create(assignment.CreateInput{UserID: shared.NewID(), RoleID: shared.NewID()})

	if !a.IsActive() {
		t.Error("isActive must default to true")
	}
	if a.ExpiresAt() != nil {
		t.Error("expiresAt must default to absent")
	}
	if !a.AssignedAt().Equal(a.CreatedAt()) || !a.CreatedAt().Equal(a.UpdatedAt()) {
		t.Error("assignedAt, createdAt and updatedAt must match at creation")
	}

	inactive := false
	b := l.Create(assignment.CreateInput{UserID: shared.NewID(), RoleID: shared.NewID(), Active: &inactive})
	if b.IsActive() {
		t.Error("explicit Active=false must be honored")
	}
}

func TestIsExpired(t *testing.T) {
	l := newTestLedger()
	a := l.Create(assignment.CreateInput{UserID: shared.NewID(), RoleID: shared.NewID()})

	if a.IsExpired(testNow) {
		t.Error("absent expiresAt must never expire")
	}

	past := testNow.Add(-time.Hour)
	future := testNow.Add(time.Hour)

	expired := l.UpdateExpiration(a, &past)
	if !expired.IsExpired(testNow) {
		t.Error("past expiresAt must report expired")
	}

	pending := l.UpdateExpiration(a, &future)
	if pending.IsExpired(testNow) {
		t.Error("future expiresAt must not report expired")
	}

	// Boundary: now == expiresAt is not yet expired (strictly after).
	exact := l.UpdateExpiration(a, &testNow)
	if exact.IsExpired(testNow) {
		t.Error("expiresAt equal to now must not report expired")
	}
}

func TestIsValidCoversAllStates(t *testing.T) {
	l := newTestLedger()
	past := testNow.Add(-time.Hour)

	cases := []struct {
		name    string
		active  bool
		expires *time.Time
		want    bool
	}{
		{"active not expired", true, nil, true},
		{"active expired", true, &past, false},
		{"inactive not expired", false, nil, false},
		{"inactive expired", false, &past, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a := l.Create(assignment.CreateInput{
				UserID:    shared.NewID(),
				RoleID:    shared.NewID(),
				ExpiresAt: tc.expires,
				Active:    &tc.active,
			})
			if got := a.IsValid(testNow); got != tc.want {
				t.Errorf("IsValid = %v, want %v", got, tc.want)
			}
			if a.IsValid(testNow) != (a.IsActive() && !a.IsExpired(testNow)) {
				t.Error("IsValid must equal isActive && !isExpired")
			}
		})
	}
}

func TestActivationIsIdempotent(t *testing.T) {
	l := newTestLedger()
	a := l.Create(assignment.CreateInput{UserID: shared.NewID(), RoleID: shared.NewID()})

	same := l.Activate(a)
	if !reflect.DeepEqual(same, a) {
		t.Error("Activate on an active assignment must be a no-op")
	}

	off := l.Deactivate(a)
	if off.IsActive() {
		t.Fatal("expected inactive after Deactivate")
	}
	if !off.UpdatedAt().After(a.UpdatedAt()) {
		t.Error("Deactivate must bump updatedAt")
	}

	offAgain := l.Deactivate(off)
	if !reflect.DeepEqual(offAgain, off) {
		t.Error("Deactivate on an inactive assignment must be a no-op")
	}
}

func TestMutationsBumpMonotonically(t *testing.T) {
	l := newTestLedger()
	a := l.Create(assignment.CreateInput{UserID: shared.NewID(), RoleID: shared.NewID()})

	prev := a.UpdatedAt()
	future := testNow.Add(time.Hour)

	a = l.UpdateExpiration(a, &future)
	if !a.UpdatedAt().After(prev) {
		t.Fatal("UpdateExpiration must bump updatedAt under a frozen clock")
	}
	prev = a.UpdatedAt()

	a = l.UpdateMetadata(a, map[string]any{"reason": "temporary elevation"})
	if !a.UpdatedAt().After(prev) {
		t.Fatal("UpdateMetadata must bump updatedAt under a frozen clock")
	}
	if a.Metadata()["reason"] != "temporary elevation" {
		t.Error("metadata patch not applied")
	}
}

func TestUpdateMetadataShallowMerges(t *testing.T) {
	l := newTestLedger()
	a := l.Create(assignment.CreateInput{
		UserID:   shared.NewID(),
		RoleID:   shared.NewID(),
		Metadata: map[string]any{"source": "onboarding", "ticket": "T-1"},
	})

	a = l.UpdateMetadata(a, map[string]any{"ticket": "T-2"})

	got := a.Metadata()
	if got["source"] != "onboarding" || got["ticket"] != "T-2" {
		t.Errorf("unexpected merge result: %v", got)
	}
}

func TestValidateCreate(t *testing.T) {
	res := assignment.ValidateCreate(assignment.CreateInput{})
	if res.Valid() {
		t.Fatal("empty input must be invalid")
	}
	if len(res.Errors) != 2 {
		t.Errorf("expected userId and roleId violations, got %v", res.Errors)
	}

	ok := assignment.ValidateCreate(assignment.CreateInput{UserID: shared.NewID(), RoleID: shared.NewID()})
	if !ok.Valid() {
		t.Errorf("expected valid input, got %v", ok.Errors)
	}
}
