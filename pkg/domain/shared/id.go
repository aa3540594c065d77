package shared

import (
	"database/sql/driver"
	"fmt"

	"github.com/google/uuid"
)

// ID is an opaque identifier for domain entities.
type ID struct {
	v uuid.UUID
}

// NewID creates a new random ID.
func NewID() ID {
	return ID{v: uuid.New()}
}

// ParseID parses an ID from its string form.
func ParseID(s string) (ID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return ID{}, fmt.Errorf("invalid id %q: %w", s, err)
	}
	return ID{v: u}, nil
}

// MustParseID parses an ID from its string form, panics on error.
// Use only for literals in initialization code.
func MustParseID(s string) ID {
	id, err := ParseID(s)
	if err != nil {
		panic(err)
	}
	return id
}

// String returns the canonical string form.
func (id ID) String() string {
	return id.v.String()
}

// IsZero reports whether the ID is unset.
func (id ID) IsZero() bool {
	return id.v == uuid.Nil
}

// Equal reports whether two IDs are the same.
func (id ID) Equal(other ID) bool {
	return id.v == other.v
}

// Value implements driver.Valuer for database serialization.
func (id ID) Value() (driver.Value, error) {
	return id.v.String(), nil
}

// Scan implements sql.Scanner for database deserialization.
func (id *ID) Scan(src any) error {
	switch v := src.(type) {
	case string:
		u, err := uuid.Parse(v)
		if err != nil {
			return err
		}
		id.v = u
	case []byte:
		u, err := uuid.ParseBytes(v)
		if err != nil {
			return err
		}
		id.v = u
	default:
		return fmt.Errorf("cannot scan type %T into ID", src)
	}
	return nil
}

// MarshalText implements encoding.TextMarshaler (also covers JSON).
func (id ID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *ID) UnmarshalText(data []byte) error {
	u, err := uuid.Parse(string(data))
	if err != nil {
		return err
	}
	id.v = u
	return nil
}
