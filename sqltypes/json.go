package sqltypes

import (
	"database/sql/driver"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"

	"github.com/performancemedia/sqlargon/jsonutil"
)

// JSON stores an arbitrary value as jsonb on postgres and text on sqlite.
type JSON[T any] struct {
	Data T
}

// NewJSON wraps v in a JSON column value.
func NewJSON[T any](v T) JSON[T] { return JSON[T]{Data: v} }

// Value implements driver.Valuer.
func (j JSON[T]) Value() (driver.Value, error) {
	s, err := jsonutil.MarshalString(j.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode JSON column: %w", err)
	}
	return s, nil
}

// Scan implements sql.Scanner.
func (j *JSON[T]) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		var zero T
		j.Data = zero
		return nil
	case []byte:
		return jsonutil.Unmarshal(v, &j.Data)
	case string:
		return jsonutil.UnmarshalString(v, &j.Data)
	default:
		return fmt.Errorf("failed to scan JSON column from %T", src)
	}
}

// MarshalJSON implements json.Marshaler.
func (j JSON[T]) MarshalJSON() ([]byte, error) {
	return jsonutil.Marshal(j.Data)
}

// UnmarshalJSON implements json.Unmarshaler.
func (j *JSON[T]) UnmarshalJSON(data []byte) error {
	return jsonutil.Unmarshal(data, &j.Data)
}

// GormDBDataType selects the column DDL per dialect.
func (JSON[T]) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "jsonb"
	}
	return "text"
}
