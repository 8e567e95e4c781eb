// Package sqltypes provides column types that adapt their DDL to the
// postgres and sqlite dialects.
package sqltypes

import (
	"database/sql/driver"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// GUID stores a uuid as a native uuid column on postgres and as 36-char
// text on sqlite.
type GUID uuid.UUID

// NewGUID returns a random GUID.
func NewGUID() GUID { return GUID(uuid.New()) }

// ParseGUID parses the canonical string form.
func ParseGUID(s string) (GUID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return GUID{}, fmt.Errorf("failed to parse GUID: %w", err)
	}
	return GUID(u), nil
}

func (g GUID) String() string { return uuid.UUID(g).String() }

// IsZero reports whether the GUID is the nil uuid.
func (g GUID) IsZero() bool { return uuid.UUID(g) == uuid.Nil }

// Value implements driver.Valuer.
func (g GUID) Value() (driver.Value, error) {
	return uuid.UUID(g).String(), nil
}

// Scan implements sql.Scanner.
func (g *GUID) Scan(src interface{}) error {
	var u uuid.UUID
	if err := u.Scan(src); err != nil {
		return fmt.Errorf("failed to scan GUID: %w", err)
	}
	*g = GUID(u)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (g GUID) MarshalText() ([]byte, error) {
	return []byte(g.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (g *GUID) UnmarshalText(data []byte) error {
	parsed, err := ParseGUID(string(data))
	if err != nil {
		return err
	}
	*g = parsed
	return nil
}

// GormDBDataType selects the column DDL per dialect.
func (GUID) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "uuid"
	}
	return "varchar(36)"
}
