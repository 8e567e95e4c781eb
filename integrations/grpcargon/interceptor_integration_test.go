//go:build integration
// +build integration

package grpcargon_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"

	"github.com/performancemedia/sqlargon"
	"github.com/performancemedia/sqlargon/integrations/grpcargon"
	"github.com/performancemedia/sqlargon/testkit"
)

type note struct {
	sqlargon.UUIDModel
	Body string `gorm:"not null"`
}

func countNotes(t *testing.T, db *sqlargon.Database) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Gorm().Model(&note{}).Count(&count).Error)
	return count
}

func TestUnaryInterceptorCommitsOnSuccess(t *testing.T) {
	db := testkit.SQLiteDB(t, &note{})
	repo := sqlargon.NewRepository[note](db, nil)
	interceptor := grpcargon.UnaryServerInterceptor(db)

	handler := func(ctx context.Context, _ interface{}) (interface{}, error) {
		if err := repo.Create(ctx, &note{Body: "hello"}); err != nil {
			return nil, err
		}
		return "ok", nil
	}

	resp, err := interceptor(context.Background(), nil, &grpc.UnaryServerInfo{}, handler)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp)
	assert.Equal(t, int64(1), countNotes(t, db))
}

func TestUnaryInterceptorRollsBackOnError(t *testing.T) {
	db := testkit.SQLiteDB(t, &note{})
	repo := sqlargon.NewRepository[note](db, nil)
	interceptor := grpcargon.UnaryServerInterceptor(db)
	boom := errors.New("boom")

	handler := func(ctx context.Context, _ interface{}) (interface{}, error) {
		if err := repo.Create(ctx, &note{Body: "hello"}); err != nil {
			return nil, err
		}
		return nil, boom
	}

	_, err := interceptor(context.Background(), nil, &grpc.UnaryServerInfo{}, handler)
	require.ErrorIs(t, err, boom)
	assert.Equal(t, int64(0), countNotes(t, db))
}
