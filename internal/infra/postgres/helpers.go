package postgres

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/userdeskio/api/pkg/domain/shared"
)

// isUniqueViolation reports whether err is a PostgreSQL unique constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}

// marshalJSONB serializes a value for a JSONB column; nil maps become '{}'.
func marshalJSONB(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal jsonb: %w", err)
	}
	return data, nil
}

// unmarshalJSONB deserializes a JSONB column into the given value.
func unmarshalJSONB(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("unmarshal jsonb: %w", err)
	}
	return nil
}

// unmarshalMetadata deserializes a JSONB column into a metadata bag.
func unmarshalMetadata(data []byte) (map[string]any, error) {
	if len(data) == 0 {
		return map[string]any{}, nil
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("unmarshal metadata: %w", err)
	}
	if m == nil {
		m = map[string]any{}
	}
	return m, nil
}

// unmarshalStrings deserializes a JSONB array column.
func unmarshalStrings(data []byte) ([]string, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var s []string
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("unmarshal string array: %w", err)
	}
	return s, nil
}

// nullID converts an optional ID reference for a nullable uuid column.
func nullID(id *shared.ID) sql.NullString {
	if id == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: id.String(), Valid: true}
}

// scanNullID converts a nullable uuid column back to an optional ID.
func scanNullID(ns sql.NullString) (*shared.ID, error) {
	if !ns.Valid {
		return nil, nil
	}
	id, err := shared.ParseID(ns.String)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// nullTime converts an optional time for a nullable timestamptz column.
func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// scanNullTime converts a nullable timestamptz column back to an optional
// time in UTC.
func scanNullTime(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time.UTC()
	return &t
}

// idStrings converts IDs to their string forms for ANY($1) parameters.
func idStrings(ids []shared.ID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
