package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/userdeskio/api/pkg/domain/assignment"
	"github.com/userdeskio/api/pkg/domain/shared"
)

const assignmentColumns = `id, user_id, role_id, assigned_by, assigned_at,
	       expires_at, is_active, metadata, created_at, updated_at`

// AssignmentRepository implements assignment.Repository using PostgreSQL.
// A partial unique index on (user_id, role_id) WHERE is_active backs the
// one-active-grant-per-pair invariant.
type AssignmentRepository struct {
	db *DB
}

// NewAssignmentRepository creates a new AssignmentRepository.
func NewAssignmentRepository(db *DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// Create persists a new assignment. A unique violation on the active-pair
// index maps to ErrDuplicateGrant.
func (r *AssignmentRepository) Create(ctx context.Context, a assignment.Assignment) error {
	meta, err := marshalJSONB(a.Metadata())
	if err != nil {
		return err
	}

	query := `
		INSERT INTO role_assignments (id, user_id, role_id, assigned_by, assigned_at,
		                              expires_at, is_active, metadata, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err = r.db.ExecContext(ctx, query,
		a.ID().String(),
		a.UserID().String(),
		a.RoleID().String(),
		nullID(a.AssignedBy()),
		a.AssignedAt(),
		nullTime(a.ExpiresAt()),
		a.IsActive(),
		meta,
		a.CreatedAt(),
		a.UpdatedAt(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return assignment.ErrDuplicateGrant
		}
		return fmt.Errorf("create assignment: %w", err)
	}
	return nil
}

// FindByID retrieves an assignment by ID.
func (r *AssignmentRepository) FindByID(ctx context.Context, id shared.ID) (assignment.Assignment, error) {
	query := `SELECT ` + assignmentColumns + ` FROM role_assignments WHERE id = $1`
	a, err := scanAssignment(r.db.QueryRowContext(ctx, query, id.String()))
	if errors.Is(err, sql.ErrNoRows) {
		return assignment.Assignment{}, assignment.ErrAssignmentNotFound
	}
	if err != nil {
		return assignment.Assignment{}, fmt.Errorf("scan assignment: %w", err)
	}
	return a, nil
}

// FindByUserID returns all assignments of a user, newest first.
func (r *AssignmentRepository) FindByUserID(ctx context.Context, userID shared.ID) ([]assignment.Assignment, error) {
	query := `SELECT ` + assignmentColumns + `
		FROM role_assignments WHERE user_id = $1 ORDER BY assigned_at DESC`
	return r.scanMany(ctx, query, userID.String())
}

// FindByRoleID returns all assignments of a role.
func (r *AssignmentRepository) FindByRoleID(ctx context.Context, roleID shared.ID) ([]assignment.Assignment, error) {
	query := `SELECT ` + assignmentColumns + `
		FROM role_assignments WHERE role_id = $1 ORDER BY assigned_at DESC`
	return r.scanMany(ctx, query, roleID.String())
}

// FindActiveByUserID returns the user's active assignments. The single
// statement is the consistent snapshot the evaluator depends on.
func (r *AssignmentRepository) FindActiveByUserID(ctx context.Context, userID shared.ID) ([]assignment.Assignment, error) {
	query := `SELECT ` + assignmentColumns + `
		FROM role_assignments WHERE user_id = $1 AND is_active ORDER BY assigned_at DESC`
	return r.scanMany(ctx, query, userID.String())
}

// FindActiveByRoleID returns the role's active assignments.
func (r *AssignmentRepository) FindActiveByRoleID(ctx context.Context, roleID shared.ID) ([]assignment.Assignment, error) {
	query := `SELECT ` + assignmentColumns + `
		FROM role_assignments WHERE role_id = $1 AND is_active ORDER BY assigned_at DESC`
	return r.scanMany(ctx, query, roleID.String())
}

// FindExpired returns active assignments that lapsed strictly before the
// given instant. Used by the sweeper job.
func (r *AssignmentRepository) FindExpired(ctx context.Context, before time.Time) ([]assignment.Assignment, error) {
	query := `SELECT ` + assignmentColumns + `
		FROM role_assignments
		WHERE is_active AND expires_at IS NOT NULL AND expires_at < $1
		ORDER BY expires_at`
	return r.scanMany(ctx, query, before)
}

// Update persists a modified assignment value.
func (r *AssignmentRepository) Update(ctx context.Context, a assignment.Assignment) error {
	meta, err := marshalJSONB(a.Metadata())
	if err != nil {
		return err
	}

	query := `
		UPDATE role_assignments
		SET expires_at = $2, is_active = $3, metadata = $4, updated_at = $5
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query,
		a.ID().String(),
		nullTime(a.ExpiresAt()),
		a.IsActive(),
		meta,
		a.UpdatedAt(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return assignment.ErrDuplicateGrant
		}
		return fmt.Errorf("update assignment: %w", err)
	}
	return requireRowAffected(res, assignment.NotFoundError(a.ID()))
}

// Delete removes an assignment row.
func (r *AssignmentRepository) Delete(ctx context.Context, id shared.ID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM role_assignments WHERE id = $1`, id.String())
	if err != nil {
		return fmt.Errorf("delete assignment: %w", err)
	}
	return requireRowAffected(res, assignment.NotFoundError(id))
}

func (r *AssignmentRepository) scanMany(ctx context.Context, query string, args ...any) ([]assignment.Assignment, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query assignments: %w", err)
	}
	defer rows.Close()

	var out []assignment.Assignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan assignment: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func scanAssignment(row rowScanner) (assignment.Assignment, error) {
	var (
		idStr      string
		userIDStr  string
		roleIDStr  string
		assignedBy sql.NullString
		assignedAt time.Time
		expiresAt  sql.NullTime
		isActive   bool
		metaRaw    []byte
		createdAt  time.Time
		updatedAt  time.Time
	)
	if err := row.Scan(&idStr, &userIDStr, &roleIDStr, &assignedBy, &assignedAt,
		&expiresAt, &isActive, &metaRaw, &createdAt, &updatedAt); err != nil {
		return assignment.Assignment{}, err
	}

	id, err := shared.ParseID(idStr)
	if err != nil {
		return assignment.Assignment{}, err
	}
	userID, err := shared.ParseID(userIDStr)
	if err != nil {
		return assignment.Assignment{}, err
	}
	roleID, err := shared.ParseID(roleIDStr)
	if err != nil {
		return assignment.Assignment{}, err
	}
	by, err := scanNullID(assignedBy)
	if err != nil {
		return assignment.Assignment{}, err
	}
	meta, err := unmarshalMetadata(metaRaw)
	if err != nil {
		return assignment.Assignment{}, err
	}

	return assignment.Reconstruct(
		id, userID, roleID, by,
		assignedAt.UTC(), scanNullTime(expiresAt), isActive, meta,
		createdAt.UTC(), updatedAt.UTC(),
	), nil
}
