package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/userdeskio/api/pkg/domain/role"
	"github.com/userdeskio/api/pkg/domain/shared"
)

const roleColumns = `id, name, display_name, description, level, is_system,
	       permissions, metadata, is_active, created_at, updated_at`

// RoleRepository implements role.Repository using PostgreSQL.
type RoleRepository struct {
	db *DB
}

// NewRoleRepository creates a new RoleRepository.
func NewRoleRepository(db *DB) *RoleRepository {
	return &RoleRepository{db: db}
}

// Create persists a new role.
func (r *RoleRepository) Create(ctx context.Context, ro role.Role) error {
	perms, err := marshalJSONB(ro.Permissions())
	if err != nil {
		return err
	}
	meta, err := marshalJSONB(ro.Metadata())
	if err != nil {
		return err
	}

	query := `
		INSERT INTO roles (id, name, display_name, description, level, is_system,
		                   permissions, metadata, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err = r.db.ExecContext(ctx, query,
		ro.ID().String(),
		ro.Name(),
		ro.DisplayName(),
		ro.Description(),
		ro.Level(),
		ro.IsSystem(),
		perms,
		meta,
		ro.IsActive(),
		ro.CreatedAt(),
		ro.UpdatedAt(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return role.NameExistsError(ro.Name())
		}
		return fmt.Errorf("create role: %w", err)
	}
	return nil
}

// FindByID retrieves a role by its ID.
func (r *RoleRepository) FindByID(ctx context.Context, id shared.ID) (role.Role, error) {
	query := `SELECT ` + roleColumns + ` FROM roles WHERE id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id.String()))
}

// FindByName retrieves a role by its normalized name.
func (r *RoleRepository) FindByName(ctx context.Context, name string) (role.Role, error) {
	query := `SELECT ` + roleColumns + ` FROM roles WHERE name = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, name))
}

// FindAll returns every role ordered by level descending.
func (r *RoleRepository) FindAll(ctx context.Context) ([]role.Role, error) {
	query := `SELECT ` + roleColumns + ` FROM roles ORDER BY level DESC, name`
	return r.scanMany(ctx, query)
}

// FindActive returns all active roles.
func (r *RoleRepository) FindActive(ctx context.Context) ([]role.Role, error) {
	query := `SELECT ` + roleColumns + ` FROM roles WHERE is_active ORDER BY level DESC, name`
	return r.scanMany(ctx, query)
}

// FindSystem returns the protected system roles.
func (r *RoleRepository) FindSystem(ctx context.Context) ([]role.Role, error) {
	query := `SELECT ` + roleColumns + ` FROM roles WHERE is_system ORDER BY level DESC, name`
	return r.scanMany(ctx, query)
}

// FindCustom returns the non-system roles.
func (r *RoleRepository) FindCustom(ctx context.Context) ([]role.Role, error) {
	query := `SELECT ` + roleColumns + ` FROM roles WHERE NOT is_system ORDER BY level DESC, name`
	return r.scanMany(ctx, query)
}

// FindByIDs loads several roles in one statement; a single query gives the
// evaluator its consistent snapshot.
func (r *RoleRepository) FindByIDs(ctx context.Context, ids []shared.ID) ([]role.Role, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `SELECT ` + roleColumns + ` FROM roles WHERE id = ANY($1)`
	return r.scanMany(ctx, query, pq.Array(idStrings(ids)))
}

// Update persists a modified role value.
func (r *RoleRepository) Update(ctx context.Context, ro role.Role) error {
	perms, err := marshalJSONB(ro.Permissions())
	if err != nil {
		return err
	}
	meta, err := marshalJSONB(ro.Metadata())
	if err != nil {
		return err
	}

	query := `
		UPDATE roles
		SET display_name = $2, description = $3, level = $4,
		    permissions = $5, metadata = $6, is_active = $7, updated_at = $8
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query,
		ro.ID().String(),
		ro.DisplayName(),
		ro.Description(),
		ro.Level(),
		perms,
		meta,
		ro.IsActive(),
		ro.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("update role: %w", err)
	}
	return requireRowAffected(res, role.NotFoundError(ro.ID()))
}

// Delete removes a role row. System-role protection is enforced by the
// service layer before this is reached.
func (r *RoleRepository) Delete(ctx context.Context, id shared.ID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM roles WHERE id = $1`, id.String())
	if err != nil {
		return fmt.Errorf("delete role: %w", err)
	}
	return requireRowAffected(res, role.NotFoundError(id))
}

// ExistsByID checks for a role by ID.
func (r *RoleRepository) ExistsByID(ctx context.Context, id shared.ID) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM roles WHERE id = $1)`, id.String()).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("role exists by id: %w", err)
	}
	return exists, nil
}

// ExistsByName checks for a role by normalized name.
func (r *RoleRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM roles WHERE name = $1)`, name).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("role exists by name: %w", err)
	}
	return exists, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *RoleRepository) scanOne(row rowScanner) (role.Role, error) {
	ro, err := scanRole(row)
	if errors.Is(err, sql.ErrNoRows) {
		return role.Role{}, role.ErrRoleNotFound
	}
	if err != nil {
		return role.Role{}, fmt.Errorf("scan role: %w", err)
	}
	return ro, nil
}

func (r *RoleRepository) scanMany(ctx context.Context, query string, args ...any) ([]role.Role, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query roles: %w", err)
	}
	defer rows.Close()

	var out []role.Role
	for rows.Next() {
		ro, err := scanRole(rows)
		if err != nil {
			return nil, fmt.Errorf("scan role: %w", err)
		}
		out = append(out, ro)
	}
	return out, rows.Err()
}

func scanRole(row rowScanner) (role.Role, error) {
	var (
		idStr       string
		name        string
		displayName string
		description sql.NullString
		level       int
		isSystem    bool
		permsRaw    []byte
		metaRaw     []byte
		isActive    bool
		createdAt   time.Time
		updatedAt   time.Time
	)
	if err := row.Scan(&idStr, &name, &displayName, &description, &level,
		&isSystem, &permsRaw, &metaRaw, &isActive, &createdAt, &updatedAt); err != nil {
		return role.Role{}, err
	}

	id, err := shared.ParseID(idStr)
	if err != nil {
		return role.Role{}, err
	}
	perms, err := unmarshalStrings(permsRaw)
	if err != nil {
		return role.Role{}, err
	}
	meta, err := unmarshalMetadata(metaRaw)
	if err != nil {
		return role.Role{}, err
	}

	return role.Reconstruct(
		id, name, displayName, description.String,
		level, isSystem, perms, meta, isActive,
		createdAt.UTC(), updatedAt.UTC(),
	), nil
}

func requireRowAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}
