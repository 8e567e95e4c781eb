package sqltypes

import (
	"database/sql/driver"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// Point is a 2D coordinate.
type Point struct {
	X float64
	Y float64
}

// Box is a rectangle stored as a native box column on postgres, with a
// text fallback on sqlite. The wire format is (hx,hy),(lx,ly).
type Box struct {
	High Point
	Low  Point
}

// Value implements driver.Valuer.
func (b Box) Value() (driver.Value, error) {
	return fmt.Sprintf("(%g,%g),(%g,%g)", b.High.X, b.High.Y, b.Low.X, b.Low.Y), nil
}

// Scan implements sql.Scanner.
func (b *Box) Scan(src interface{}) error {
	var s string
	switch v := src.(type) {
	case nil:
		*b = Box{}
		return nil
	case []byte:
		s = string(v)
	case string:
		s = v
	default:
		return fmt.Errorf("failed to scan Box from %T", src)
	}

	if _, err := fmt.Sscanf(s, "(%g,%g),(%g,%g)", &b.High.X, &b.High.Y, &b.Low.X, &b.Low.Y); err != nil {
		return fmt.Errorf("failed to parse box %q: %w", s, err)
	}
	return nil
}

// GormDBDataType selects the column DDL per dialect.
func (Box) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "box"
	}
	return "text"
}
