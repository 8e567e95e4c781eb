//go:build unit
// +build unit

package sqlargon

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsFromEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/app")

	s, err := SettingsFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "postgres://localhost:5432/app", s.URL)
	assert.Equal(t, 10, s.PoolSize)
	assert.Equal(t, 2, s.MaxIdleConns)
	assert.Equal(t, time.Hour, s.PoolRecycle)
	assert.False(t, s.Echo)
}

func TestSettingsFromEnvOverride(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/app")
	t.Setenv("SQLARGON_DATABASE_URL", "sqlite://override.db")

	s, err := SettingsFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "sqlite://override.db", s.URL)
	assert.Equal(t, "sqlite://override.db", s.EffectiveURL())
}

func TestSettingsFromEnvOverrideOnly(t *testing.T) {
	t.Setenv("SQLARGON_DATABASE_URL", "sqlite://only.db")

	s, err := SettingsFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "sqlite://only.db", s.URL)
}

func TestSettingsFromEnvMissingURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("SQLARGON_DATABASE_URL", "")

	_, err := SettingsFromEnv()
	require.Error(t, err)
}

func TestSettingsFromEnvPoolKnobs(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/app")
	t.Setenv("DATABASE_POOL_SIZE", "25")
	t.Setenv("DATABASE_MAX_IDLE_CONNS", "5")
	t.Setenv("DATABASE_POOL_RECYCLE", "30m")
	t.Setenv("DATABASE_ECHO", "true")

	s, err := SettingsFromEnv()
	require.NoError(t, err)
	assert.Equal(t, 25, s.PoolSize)
	assert.Equal(t, 5, s.MaxIdleConns)
	assert.Equal(t, 30*time.Minute, s.PoolRecycle)
	assert.True(t, s.Echo)
}

func TestSettingsValidation(t *testing.T) {
	tests := []struct {
		name          string
		settings      *Settings
		expectedError bool
	}{
		{
			name:     "valid settings",
			settings: &Settings{URL: "postgres://localhost:5432/app", PoolSize: 10},
		},
		{
			name:     "override url only",
			settings: &Settings{OverrideURL: "sqlite://override.db", PoolSize: 10},
		},
		{
			name:          "missing url",
			settings:      &Settings{PoolSize: 10},
			expectedError: true,
		},
		{
			name:          "negative pool size",
			settings:      &Settings{URL: "postgres://localhost:5432/app", PoolSize: -1},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.settings.Validate()

			if tt.expectedError {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}
