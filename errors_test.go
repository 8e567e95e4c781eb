//go:build unit
// +build unit

package sqlargon

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestTranslate(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected error
	}{
		{
			name:     "nil",
			err:      nil,
			expected: nil,
		},
		{
			name:     "gorm record not found",
			err:      gorm.ErrRecordNotFound,
			expected: ErrNotFound,
		},
		{
			name:     "gorm duplicated key",
			err:      gorm.ErrDuplicatedKey,
			expected: ErrDuplicateKey,
		},
		{
			name:     "postgres unique violation",
			err:      &pgconn.PgError{Code: "23505"},
			expected: ErrDuplicateKey,
		},
		{
			name:     "postgres foreign key violation",
			err:      &pgconn.PgError{Code: "23503"},
			expected: ErrForeignKey,
		},
		{
			name:     "postgres check violation",
			err:      &pgconn.PgError{Code: "23514"},
			expected: ErrCheckViolation,
		},
		{
			name: "sqlite unique constraint",
			err: sqlite3.Error{
				Code:         sqlite3.ErrConstraint,
				ExtendedCode: sqlite3.ErrConstraintUnique,
			},
			expected: ErrDuplicateKey,
		},
		{
			name: "sqlite primary key constraint",
			err: sqlite3.Error{
				Code:         sqlite3.ErrConstraint,
				ExtendedCode: sqlite3.ErrConstraintPrimaryKey,
			},
			expected: ErrDuplicateKey,
		},
		{
			name: "sqlite foreign key constraint",
			err: sqlite3.Error{
				Code:         sqlite3.ErrConstraint,
				ExtendedCode: sqlite3.ErrConstraintForeignKey,
			},
			expected: ErrForeignKey,
		},
		{
			name: "sqlite check constraint",
			err: sqlite3.Error{
				Code:         sqlite3.ErrConstraint,
				ExtendedCode: sqlite3.ErrConstraintCheck,
			},
			expected: ErrCheckViolation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			translated := Translate(tt.err)

			if tt.expected == nil {
				require.NoError(t, translated)
				return
			}
			assert.ErrorIs(t, translated, tt.expected)
			// the original error stays in the chain
			assert.ErrorIs(t, translated, tt.err)
		})
	}
}

func TestTranslateWrappedError(t *testing.T) {
	wrapped := fmt.Errorf("failed to create user: %w", &pgconn.PgError{Code: "23505"})

	translated := Translate(wrapped)
	assert.ErrorIs(t, translated, ErrDuplicateKey)
}

func TestTranslatePassThrough(t *testing.T) {
	plain := errors.New("connection refused")

	translated := Translate(plain)
	assert.Equal(t, plain, translated)
}

func TestTranslateUnknownPostgresCode(t *testing.T) {
	err := &pgconn.PgError{Code: "42P01"}

	translated := Translate(err)
	assert.NotErrorIs(t, translated, ErrDuplicateKey)
	assert.ErrorIs(t, translated, err)
}
