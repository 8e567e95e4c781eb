package logging

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

// Log level constants
const (
	LogLevelInfo     = "info"
	LogLevelDebug    = "debug"
	LogLevelError    = "error"
	LogLevelWarning  = "warning"
	LogLevelCritical = "critical"
)

// Log type constants
const (
	LogTypeConsole = "console"
	LogTypeFile    = "file"
)

// Settings holds configuration for logging, including log level, type and file rotation.
type Settings struct {
	LogLevel   string `env:"LOG_LEVEL" envDefault:"info" validate:"required,oneof=info debug error warning critical"`
	LogType    string `env:"LOG_TYPE" envDefault:"console" validate:"required,oneof=console file"`
	FilePath   string `env:"LOG_FILE_PATH"`
	MaxSize    int    `env:"LOG_MAX_SIZE" envDefault:"100"`
	MaxBackups int    `env:"LOG_MAX_BACKUPS" envDefault:"3"`
	MaxAge     int    `env:"LOG_MAX_AGE" envDefault:"28"`
}

// SettingsFromEnv loads logging settings from the environment.
func SettingsFromEnv() (Settings, error) {
	var s Settings
	if err := env.Parse(&s); err != nil {
		return s, fmt.Errorf("failed to parse logging settings: %w", err)
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
		return fmt.Errorf("validation failed for logging settings: %w", err)
	}

	if s.LogType == LogTypeFile && s.FilePath == "" {
		return fmt.Errorf("file path required for file logger")
	}

	return nil
}
