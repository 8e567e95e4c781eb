package sqlargon

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

// Settings holds database connection and pool configuration, loaded from
// the environment. SQLARGON_DATABASE_URL takes precedence over
// DATABASE_URL when both are set.
type Settings struct {
	URL          string        `env:"DATABASE_URL" validate:"required_without=OverrideURL"`
	OverrideURL  string        `env:"SQLARGON_DATABASE_URL"`
	PoolSize     int           `env:"DATABASE_POOL_SIZE" envDefault:"10" validate:"gte=0"`
	MaxIdleConns int           `env:"DATABASE_MAX_IDLE_CONNS" envDefault:"2" validate:"gte=0"`
	PoolRecycle  time.Duration `env:"DATABASE_POOL_RECYCLE" envDefault:"1h"`
	Echo         bool          `env:"DATABASE_ECHO" envDefault:"false"`
}

// SettingsFromEnv loads and validates settings from the environment.
func SettingsFromEnv() (Settings, error) {
	var s Settings
	if err := env.Parse(&s); err != nil {
		return s, fmt.Errorf("failed to parse database settings: %w", err)
	}
	if s.OverrideURL != "" {
		s.URL = s.OverrideURL
	}
	if err := s.Validate(); err != nil {
		return s, err
	}
	return s, nil
}

// Validate checks that all fields in Settings are valid.
func (s *Settings) Validate() error {
	validate := validator.New()

	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("validation failed for database settings: %w", err)
	}
	return nil
}

// EffectiveURL returns the override URL when set, the primary URL otherwise.
func (s Settings) EffectiveURL() string {
	if s.OverrideURL != "" {
		return s.OverrideURL
	}
	return s.URL
}
