package logging

import (
	"fmt"
	"log/slog"
	"sync"
)

var (
	loggerInstance Logger
	loggerErr      error
	loggerOnce     sync.Once
)

// Init initializes the singleton logger used by the CLI.
func Init(settings *Settings) error {
	loggerOnce.Do(func() {
		loggerInstance, loggerErr = New(settings)
	})
	return loggerErr
}

// Get returns the initialized logger instance.
func Get() (Logger, error) {
	if loggerInstance == nil {
		return nil, fmt.Errorf("logger not initialized: call Init first")
	}
	return loggerInstance, nil
}

// New creates a logger from settings.
func New(s *Settings) (Logger, error) {
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}

	switch s.LogType {
	case LogTypeConsole:
		return NewConsoleLogger(s.LogLevel), nil
	case LogTypeFile:
		if s.FilePath == "" {
			return nil, fmt.Errorf("file path required for file logger")
		}
		return NewFileLogger(s.LogLevel, s.FilePath, s.MaxSize, s.MaxBackups, s.MaxAge), nil
	default:
		return nil, fmt.Errorf("unsupported log type: %s", s.LogType)
	}
}

// Helper functions
func parseLevel(level string) slog.Level {
	switch level {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelInfo:
		return slog.LevelInfo
	case LogLevelWarning:
		return slog.LevelWarn
	case LogLevelError, LogLevelCritical:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func formatArgs(args ...interface{}) string {
	if len(args) == 0 {
		return ""
	}
	return fmt.Sprint(args...)
}
