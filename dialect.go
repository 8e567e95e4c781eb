package sqlargon

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Dialect identifies a supported database backend.
type Dialect string

// Supported dialects.
const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

type capabilities struct {
	returning  bool
	onConflict bool
}

func dialectCapabilities(d Dialect) capabilities {
	switch d {
	case DialectPostgres:
		return capabilities{returning: true, onConflict: true}
	case DialectSQLite:
		// the bundled sqlite is well past 3.35, which introduced RETURNING
		return capabilities{returning: true, onConflict: true}
	default:
		return capabilities{}
	}
}

// memoryDSN names an in-memory database and shares its cache across the
// connection pool. A plain :memory: DSN would give every pooled
// connection a private empty database; the uuid keeps separate Opens
// isolated from each other within the process.
func memoryDSN() string {
	return fmt.Sprintf("file:mem-%s?mode=memory&cache=shared", uuid.NewString())
}

// openDialector resolves a database URL to a gorm dialector.
// postgres:// and postgresql:// select the postgres driver; sqlite://,
// file: prefixes and plain paths (including :memory:) select sqlite.
// Explicit file: DSNs pass through untouched.
func openDialector(rawURL string) (gorm.Dialector, Dialect, error) {
	if rawURL == "" {
		return nil, "", fmt.Errorf("database URL is empty")
	}

	if rawURL == ":memory:" {
		return sqlite.Open(memoryDSN()), DialectSQLite, nil
	}
	if strings.HasPrefix(rawURL, "file:") {
		return sqlite.Open(rawURL), DialectSQLite, nil
	}

	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" {
		// no scheme, treat it as a sqlite file path
		return sqlite.Open(rawURL), DialectSQLite, nil
	}

	switch u.Scheme {
	case "postgres", "postgresql":
		return postgres.Open(rawURL), DialectPostgres, nil
	case "sqlite", "sqlite3":
		path := strings.TrimPrefix(rawURL, u.Scheme+"://")
		if path == "" || path == ":memory:" {
			path = memoryDSN()
		}
		return sqlite.Open(path), DialectSQLite, nil
	default:
		return nil, "", fmt.Errorf("unsupported database URL scheme: %s", u.Scheme)
	}
}
