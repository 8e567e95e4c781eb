//go:build unit
// +build unit

package sqlargon

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUUIDModelBeforeCreate(t *testing.T) {
	m := &UUIDModel{}
	require.NoError(t, m.BeforeCreate(nil))
	assert.NotEqual(t, uuid.Nil, m.ID)
}

func TestUUIDModelBeforeCreateKeepsExistingID(t *testing.T) {
	id := uuid.New()
	m := &UUIDModel{ID: id}

	require.NoError(t, m.BeforeCreate(nil))
	assert.Equal(t, id, m.ID)
}

func TestTimestampsIsNew(t *testing.T) {
	now := time.Now()

	fresh := Timestamps{CreatedAt: now, UpdatedAt: now}
	assert.True(t, fresh.IsNew())

	touched := Timestamps{CreatedAt: now, UpdatedAt: now.Add(time.Second)}
	assert.False(t, touched.IsNew())
}

func TestSoftDeleteDeleted(t *testing.T) {
	assert.False(t, SoftDelete{}.Deleted())
	assert.True(t, SoftDelete{Tombstone: true}.Deleted())
}
