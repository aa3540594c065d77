package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/userdeskio/api/pkg/domain/shared"
	"github.com/userdeskio/api/pkg/domain/user"
)

const userColumns = `id, email, name, avatar_url, phone, status, preferences,
	       password_hash, last_login_at, created_at, updated_at`

// UserRepository implements user.Repository using PostgreSQL.
type UserRepository struct {
	db *DB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create persists a new user account.
func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	prefs, err := marshalJSONB(u.Preferences())
	if err != nil {
		return err
	}

	query := `
		INSERT INTO users (id, email, name, avatar_url, phone, status, preferences,
		                   password_hash, last_login_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err = r.db.ExecContext(ctx, query,
		u.ID().String(),
		u.Email(),
		u.Name(),
		u.AvatarURL(),
		u.Phone(),
		u.Status().String(),
		prefs,
		u.PasswordHash(),
		nullTime(u.LastLoginAt()),
		u.CreatedAt(),
		u.UpdatedAt(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return user.AlreadyExistsError(u.Email())
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id shared.ID) (*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id.String()))
}

// GetByEmail retrieves a user by normalized email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, email))
}

// List returns a page of users ordered by creation time.
func (r *UserRepository) List(ctx context.Context, limit, offset int) ([]*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var out []*user.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// Update persists a modified user.
func (r *UserRepository) Update(ctx context.Context, u *user.User) error {
	prefs, err := marshalJSONB(u.Preferences())
	if err != nil {
		return err
	}

	query := `
		UPDATE users
		SET email = $2, name = $3, avatar_url = $4, phone = $5, status = $6,
		    preferences = $7, password_hash = $8, last_login_at = $9, updated_at = $10
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query,
		u.ID().String(),
		u.Email(),
		u.Name(),
		u.AvatarURL(),
		u.Phone(),
		u.Status().String(),
		prefs,
		u.PasswordHash(),
		nullTime(u.LastLoginAt()),
		u.UpdatedAt(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return user.AlreadyExistsError(u.Email())
		}
		return fmt.Errorf("update user: %w", err)
	}
	return requireRowAffected(res, user.NotFoundError(u.ID()))
}

// Delete removes a user row. Assignments cascade via foreign key.
func (r *UserRepository) Delete(ctx context.Context, id shared.ID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id.String())
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return requireRowAffected(res, user.NotFoundError(id))
}

// ExistsByEmail checks for a user by normalized email.
func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, email).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("user exists by email: %w", err)
	}
	return exists, nil
}

// Count returns the total number of users.
func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

func (r *UserRepository) scanOne(row rowScanner) (*user.User, error) {
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, user.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return u, nil
}

func scanUser(row rowScanner) (*user.User, error) {
	var (
		idStr        string
		email        string
		name         string
		avatarURL    sql.NullString
		phone        sql.NullString
		status       string
		prefsRaw     []byte
		passwordHash string
		lastLoginAt  sql.NullTime
		createdAt    time.Time
		updatedAt    time.Time
	)
	if err := row.Scan(&idStr, &email, &name, &avatarURL, &phone, &status,
		&prefsRaw, &passwordHash, &lastLoginAt, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	id, err := shared.ParseID(idStr)
	if err != nil {
		return nil, err
	}
	var prefs user.Preferences
	if len(prefsRaw) > 0 {
		if err := unmarshalJSONB(prefsRaw, &prefs); err != nil {
			return nil, err
		}
	}

	return user.Reconstruct(
		id, email, name, avatarURL.String, phone.String,
		user.Status(status), prefs, passwordHash,
		scanNullTime(lastLoginAt),
		createdAt.UTC(), updatedAt.UTC(),
	), nil
}
