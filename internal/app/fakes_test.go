package app

import (
	"context"
	"io"
	"time"

	"github.com/userdeskio/api/pkg/domain/assignment"
	"github.com/userdeskio/api/pkg/domain/audit"
	"github.com/userdeskio/api/pkg/domain/role"
	"github.com/userdeskio/api/pkg/domain/shared"
	"github.com/userdeskio/api/pkg/domain/user"
	"github.com/userdeskio/api/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: "error", Format: "text", Output: io.Discard})
}

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestClock() *testClock {
	return &testClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

// memRoles is an in-memory role.Repository.
type memRoles struct {
	roles map[string]role.Role
}

func newMemRoles() *memRoles {
	return &memRoles{roles: make(map[string]role.Role)}
}

func (m *memRoles) FindByID(_ context.Context, id shared.ID) (role.Role, error) {
	r, ok := m.roles[id.String()]
	if !ok {
		return role.Role{}, role.NotFoundError(id)
	}
	return r, nil
}

func (m *memRoles) FindByName(_ context.Context, name string) (role.Role, error) {
	for _, r := range m.roles {
		if r.Name() == name {
			return r, nil
		}
	}
	return role.Role{}, role.ErrRoleNotFound
}

func (m *memRoles) FindAll(context.Context) ([]role.Role, error) {
	out := make([]role.Role, 0, len(m.roles))
	for _, r := range m.roles {
		out = append(out, r)
	}
	return out, nil
}

func (m *memRoles) FindActive(ctx context.Context) ([]role.Role, error) {
	return m.filter(func(r role.Role) bool { return r.IsActive() })
}

func (m *memRoles) FindSystem(ctx context.Context) ([]role.Role, error) {
	return m.filter(role.Role.IsSystem)
}

func (m *memRoles) FindCustom(ctx context.Context) ([]role.Role, error) {
	return m.filter(func(r role.Role) bool { return !r.IsSystem() })
}

func (m *memRoles) FindByIDs(_ context.Context, ids []shared.ID) ([]role.Role, error) {
	out := make([]role.Role, 0, len(ids))
	for _, id := range ids {
		if r, ok := m.roles[id.String()]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memRoles) Create(_ context.Context, r role.Role) error {
	m.roles[r.ID().String()] = r
	return nil
}

func (m *memRoles) Update(_ context.Context, r role.Role) error {
	if _, ok := m.roles[r.ID().String()]; !ok {
		return role.NotFoundError(r.ID())
	}
	m.roles[r.ID().String()] = r
	return nil
}

func (m *memRoles) Delete(_ context.Context, id shared.ID) error {
	if _, ok := m.roles[id.String()]; !ok {
		return role.NotFoundError(id)
	}
	delete(m.roles, id.String())
	return nil
}

func (m *memRoles) ExistsByID(_ context.Context, id shared.ID) (bool, error) {
	_, ok := m.roles[id.String()]
	return ok, nil
}

func (m *memRoles) ExistsByName(_ context.Context, name string) (bool, error) {
	for _, r := range m.roles {
		if r.Name() == name {
			return true, nil
		}
	}
	return false, nil
}

func (m *memRoles) filter(keep func(role.Role) bool) ([]role.Role, error) {
	var out []role.Role
	for _, r := range m.roles {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out, nil
}

// memAssignments is an in-memory assignment.Repository.
type memAssignments struct {
	assignments map[string]assignment.Assignment
}

func newMemAssignments() *memAssignments {
	return &memAssignments{assignments: make(map[string]assignment.Assignment)}
}

func (m *memAssignments) FindByID(_ context.Context, id shared.ID) (assignment.Assignment, error) {
	a, ok := m.assignments[id.String()]
	if !ok {
		return assignment.Assignment{}, assignment.NotFoundError(id)
	}
	return a, nil
}

func (m *memAssignments) FindByUserID(_ context.Context, userID shared.ID) ([]assignment.Assignment, error) {
	return m.filter(func(a assignment.Assignment) bool { return a.UserID().Equal(userID) }), nil
}

func (m *memAssignments) FindByRoleID(_ context.Context, roleID shared.ID) ([]assignment.Assignment, error) {
	return m.filter(func(a assignment.Assignment) bool { return a.RoleID().Equal(roleID) }), nil
}

func (m *memAssignments) FindActiveByUserID(_ context.Context, userID shared.ID) ([]assignment.Assignment, error) {
	return m.filter(func(a assignment.Assignment) bool {
		return a.UserID().Equal(userID) && a.IsActive()
	}), nil
}

func (m *memAssignments) FindActiveByRoleID(_ context.Context, roleID shared.ID) ([]assignment.Assignment, error) {
	return m.filter(func(a assignment.Assignment) bool {
		return a.RoleID().Equal(roleID) && a.IsActive()
	}), nil
}

func (m *memAssignments) FindExpired(_ context.Context, before time.Time) ([]assignment.Assignment, error) {
	return m.filter(func(a assignment.Assignment) bool {
		return a.IsActive() && a.IsExpired(before)
	}), nil
}

func (m *memAssignments) Create(_ context.Context, a assignment.Assignment) error {
	m.assignments[a.ID().String()] = a
	return nil
}

func (m *memAssignments) Update(_ context.Context, a assignment.Assignment) error {
	if _, ok := m.assignments[a.ID().String()]; !ok {
		return assignment.NotFoundError(a.ID())
	}
	m.assignments[a.ID().String()] = a
	return nil
}

func (m *memAssignments) Delete(_ context.Context, id shared.ID) error {
	if _, ok := m.assignments[id.String()]; !ok {
		return assignment.NotFoundError(id)
	}
	delete(m.assignments, id.String())
	return nil
}

func (m *memAssignments) filter(keep func(assignment.Assignment) bool) []assignment.Assignment {
	var out []assignment.Assignment
	for _, a := range m.assignments {
		if keep(a) {
			out = append(out, a)
		}
	}
	return out
}

// memUsers is an in-memory user.Repository.
type memUsers struct {
	users map[string]*user.User
}

func newMemUsers() *memUsers {
	return &memUsers{users: make(map[string]*user.User)}
}

func (m *memUsers) Create(_ context.Context, u *user.User) error {
	m.users[u.ID().String()] = u
	return nil
}

func (m *memUsers) GetByID(_ context.Context, id shared.ID) (*user.User, error) {
	u, ok := m.users[id.String()]
	if !ok {
		return nil, user.NotFoundError(id)
	}
	return u, nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*user.User, error) {
	for _, u := range m.users {
		if u.Email() == email {
			return u, nil
		}
	}
	return nil, user.ErrUserNotFound
}

func (m *memUsers) List(_ context.Context, limit, offset int) ([]*user.User, error) {
	out := make([]*user.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memUsers) Update(_ context.Context, u *user.User) error {
	if _, ok := m.users[u.ID().String()]; !ok {
		return user.NotFoundError(u.ID())
	}
	m.users[u.ID().String()] = u
	return nil
}

func (m *memUsers) Delete(_ context.Context, id shared.ID) error {
	if _, ok := m.users[id.String()]; !ok {
		return user.NotFoundError(id)
	}
	delete(m.users, id.String())
	return nil
}

func (m *memUsers) ExistsByEmail(_ context.Context, email string) (bool, error) {
	for _, u := range m.users {
		if u.Email() == email {
			return true, nil
		}
	}
	return false, nil
}

func (m *memUsers) Count(context.Context) (int64, error) {
	return int64(len(m.users)), nil
}

// recorderFake collects emitted audit events.
type recorderFake struct {
	events []audit.Event
}

func (r *recorderFake) Record(_ context.Context, event audit.Event) error {
	r.events = append(r.events, event)
	return nil
}

func (r *recorderFake) ofType(t audit.EventType) []audit.Event {
	var out []audit.Event
	for _, e := range r.events {
		if e.EventType == t {
			out = append(out, e)
		}
	}
	return out
}

// invalidatorFake counts cache invalidations.
type invalidatorFake struct {
	users []shared.ID
	all   int
}

func (i *invalidatorFake) Invalidate(_ context.Context, userID shared.ID) error {
	i.users = append(i.users, userID)
	return nil
}

func (i *invalidatorFake) InvalidateAll(context.Context) error {
	i.all++
	return nil
}
