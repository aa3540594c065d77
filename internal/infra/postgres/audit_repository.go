package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/userdeskio/api/pkg/domain/audit"
	"github.com/userdeskio/api/pkg/domain/shared"
)

const auditColumns = `id, event_type, user_id, role_id, role_name,
	       assigned_by, occurred_at, metadata`

// AuditRepository implements audit.Repository using PostgreSQL. The table is
// append-only; there are no update or delete paths.
type AuditRepository struct {
	db *DB
}

// NewAuditRepository creates a new AuditRepository.
func NewAuditRepository(db *DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// Create appends an access-change event.
func (r *AuditRepository) Create(ctx context.Context, event audit.Event) error {
	meta, err := marshalJSONB(event.Metadata)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO audit_events (id, event_type, user_id, role_id, role_name,
		                          assigned_by, occurred_at, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err = r.db.ExecContext(ctx, query,
		event.ID.String(),
		event.EventType.String(),
		event.UserID.String(),
		event.RoleID.String(),
		event.RoleName,
		nullID(event.AssignedBy),
		event.Timestamp,
		meta,
	)
	if err != nil {
		return fmt.Errorf("create audit event: %w", err)
	}
	return nil
}

// FindByUserID returns the newest events affecting a user.
func (r *AuditRepository) FindByUserID(ctx context.Context, userID shared.ID, limit int) ([]audit.Event, error) {
	query := `SELECT ` + auditColumns + `
		FROM audit_events WHERE user_id = $1 ORDER BY occurred_at DESC LIMIT $2`
	return r.scanMany(ctx, query, userID.String(), limit)
}

// FindRecent returns the newest events across all users.
func (r *AuditRepository) FindRecent(ctx context.Context, limit int) ([]audit.Event, error) {
	query := `SELECT ` + auditColumns + `
		FROM audit_events ORDER BY occurred_at DESC LIMIT $1`
	return r.scanMany(ctx, query, limit)
}

func (r *AuditRepository) scanMany(ctx context.Context, query string, args ...any) ([]audit.Event, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	var out []audit.Event
	for rows.Next() {
		e, err := scanAuditEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func scanAuditEvent(row rowScanner) (audit.Event, error) {
	var (
		idStr      string
		eventType  string
		userIDStr  string
		roleIDStr  string
		roleName   string
		assignedBy sql.NullString
		occurredAt time.Time
		metaRaw    []byte
	)
	if err := row.Scan(&idStr, &eventType, &userIDStr, &roleIDStr, &roleName,
		&assignedBy, &occurredAt, &metaRaw); err != nil {
		return audit.Event{}, err
	}

	id, err := shared.ParseID(idStr)
	if err != nil {
		return audit.Event{}, err
	}
	userID, err := shared.ParseID(userIDStr)
	if err != nil {
		return audit.Event{}, err
	}
	roleID, err := shared.ParseID(roleIDStr)
	if err != nil {
		return audit.Event{}, err
	}
	by, err := scanNullID(assignedBy)
	if err != nil {
		return audit.Event{}, err
	}
	meta, err := unmarshalMetadata(metaRaw)
	if err != nil {
		return audit.Event{}, err
	}

	return audit.Event{
		ID:         id,
		EventType:  audit.EventType(eventType),
		UserID:     userID,
		RoleID:     roleID,
		RoleName:   roleName,
		AssignedBy: by,
		Timestamp:  occurredAt.UTC(),
		Metadata:   meta,
	}, nil
}
