package sqlargon

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	sqlite3 "github.com/mattn/go-sqlite3"
	"gorm.io/gorm"
)

// Sentinel errors for the failure classes shared by both dialects.
var (
	ErrNotFound       = errors.New("sqlargon: record not found")
	ErrDuplicateKey   = errors.New("sqlargon: duplicate key")
	ErrForeignKey     = errors.New("sqlargon: foreign key violation")
	ErrCheckViolation = errors.New("sqlargon: check constraint violation")
	ErrUnsupported    = errors.New("sqlargon: operation not supported by dialect")
)

// Postgres SQLSTATE codes for constraint failures.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

// Translate maps gorm and driver errors onto the package taxonomy while
// keeping the original error in the chain. Errors outside the taxonomy
// pass through unchanged.
func Translate(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %w", ErrDuplicateKey, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return fmt.Errorf("%w: %w", ErrDuplicateKey, err)
		case pgForeignKeyViolation:
			return fmt.Errorf("%w: %w", ErrForeignKey, err)
		case pgCheckViolation:
			return fmt.Errorf("%w: %w", ErrCheckViolation, err)
		}
		return err
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return fmt.Errorf("%w: %w", ErrDuplicateKey, err)
		case sqlite3.ErrConstraintForeignKey:
			return fmt.Errorf("%w: %w", ErrForeignKey, err)
		case sqlite3.ErrConstraintCheck:
			return fmt.Errorf("%w: %w", ErrCheckViolation, err)
		}
		return err
	}

	return err
}
