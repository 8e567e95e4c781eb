//go:build integration
// +build integration

package sqlargon_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/performancemedia/sqlargon"
	"github.com/performancemedia/sqlargon/testkit"
)

func countUsers(t *testing.T, db *sqlargon.Database) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Gorm().Model(&testUser{}).Count(&count).Error)
	return count
}

func TestUnitOfWorkCommit(t *testing.T) {
	db := testkit.SQLiteDB(t, &testUser{})
	repo := sqlargon.NewRepository[testUser](db, nil)

	ctx, u, err := db.Begin(context.Background())
	require.NoError(t, err)

	require.NoError(t, repo.Create(ctx, newUser("alice", "alice@example.com", 30)))
	require.NoError(t, u.Close(nil))

	assert.Equal(t, int64(1), countUsers(t, db))
}

func TestUnitOfWorkCloseRollsBackOnError(t *testing.T) {
	db := testkit.SQLiteDB(t, &testUser{})
	repo := sqlargon.NewRepository[testUser](db, nil)
	boom := errors.New("boom")

	ctx, u, err := db.Begin(context.Background())
	require.NoError(t, err)

	require.NoError(t, repo.Create(ctx, newUser("alice", "alice@example.com", 30)))

	// Close passes the original error through after rolling back
	assert.ErrorIs(t, u.Close(boom), boom)
	assert.Equal(t, int64(0), countUsers(t, db))
}

func TestUnitOfWorkExplicitRollback(t *testing.T) {
	db := testkit.SQLiteDB(t, &testUser{})
	repo := sqlargon.NewRepository[testUser](db, nil)

	ctx, u, err := db.Begin(context.Background())
	require.NoError(t, err)

	require.NoError(t, repo.Create(ctx, newUser("alice", "alice@example.com", 30)))
	require.NoError(t, u.Rollback())

	// further finalization is a no-op
	require.NoError(t, u.Close(nil))
	assert.Equal(t, int64(0), countUsers(t, db))
}

func TestUnitOfWorkAutocommitDisabled(t *testing.T) {
	db := testkit.SQLiteDB(t, &testUser{})
	repo := sqlargon.NewRepository[testUser](db, nil)

	ctx, u, err := db.Begin(context.Background(), sqlargon.Autocommit(false))
	require.NoError(t, err)

	require.NoError(t, repo.Create(ctx, newUser("alice", "alice@example.com", 30)))
	require.NoError(t, u.Close(nil))

	// without autocommit, Close discards the uncommitted work
	assert.Equal(t, int64(0), countUsers(t, db))
}

func TestUnitOfWorkNestedJoinsOuter(t *testing.T) {
	db := testkit.SQLiteDB(t, &testUser{})
	repo := sqlargon.NewRepository[testUser](db, nil)

	outerCtx, outer, err := db.Begin(context.Background())
	require.NoError(t, err)

	innerCtx, inner, err := db.Begin(outerCtx)
	require.NoError(t, err)
	require.NoError(t, repo.Create(innerCtx, newUser("alice", "alice@example.com", 30)))

	// the nested unit of work leaves control with the outer scope
	require.NoError(t, inner.Close(nil))
	assert.Equal(t, int64(0), countUsers(t, db))

	require.NoError(t, outer.Close(nil))
	assert.Equal(t, int64(1), countUsers(t, db))
}

func TestRunInTxCommit(t *testing.T) {
	db := testkit.SQLiteDB(t, &testUser{})
	repo := sqlargon.NewRepository[testUser](db, nil)

	err := db.RunInTx(context.Background(), func(ctx context.Context) error {
		return repo.Create(ctx, newUser("alice", "alice@example.com", 30))
	})
	require.NoError(t, err)

	assert.Equal(t, int64(1), countUsers(t, db))
}

func TestRunInTxRollbackOnError(t *testing.T) {
	db := testkit.SQLiteDB(t, &testUser{})
	repo := sqlargon.NewRepository[testUser](db, nil)
	boom := errors.New("boom")

	err := db.RunInTx(context.Background(), func(ctx context.Context) error {
		if err := repo.Create(ctx, newUser("alice", "alice@example.com", 30)); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	assert.Equal(t, int64(0), countUsers(t, db))
}

func TestRunInTxRollbackOnPanic(t *testing.T) {
	db := testkit.SQLiteDB(t, &testUser{})
	repo := sqlargon.NewRepository[testUser](db, nil)

	assert.Panics(t, func() {
		_ = db.RunInTx(context.Background(), func(ctx context.Context) error {
			if err := repo.Create(ctx, newUser("alice", "alice@example.com", 30)); err != nil {
				return err
			}
			panic("boom")
		})
	})

	assert.Equal(t, int64(0), countUsers(t, db))
}
