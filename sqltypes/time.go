package sqltypes

import (
	"database/sql/driver"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// UTCTime normalizes timestamps to UTC on both bind and scan, so values
// round-trip identically through postgres and sqlite.
type UTCTime struct {
	time.Time
}

// Now returns the current time as a UTCTime.
func Now() UTCTime { return UTCTime{time.Now().UTC()} }

// NewUTCTime converts t to UTC.
func NewUTCTime(t time.Time) UTCTime { return UTCTime{t.UTC()} }

// Value implements driver.Valuer.
func (t UTCTime) Value() (driver.Value, error) {
	if t.Time.IsZero() {
		return nil, nil
	}
	return t.Time.UTC(), nil
}

// layouts sqlite may hand back for datetime columns
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Scan implements sql.Scanner.
func (t *UTCTime) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		t.Time = time.Time{}
		return nil
	case time.Time:
		t.Time = v.UTC()
		return nil
	case []byte:
		return t.parse(string(v))
	case string:
		return t.parse(v)
	default:
		return fmt.Errorf("failed to scan UTCTime from %T", src)
	}
}

func (t *UTCTime) parse(s string) error {
	for _, layout := range timeLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed.UTC()
			return nil
		}
	}
	return fmt.Errorf("failed to parse time %q", s)
}

// GormDBDataType selects the column DDL per dialect.
func (UTCTime) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "timestamptz"
	}
	return "datetime"
}
