package logging

import (
	"context"
	"errors"
	"fmt"
	"time"

	gormlogger "gorm.io/gorm/logger"
)

// DefaultSlowThreshold is used when no explicit slow-query threshold is given.
const DefaultSlowThreshold = 200 * time.Millisecond

type gormAdapter struct {
	log           Logger
	slowThreshold time.Duration
	level         gormlogger.LogLevel
}

// Gorm adapts a Logger to gorm's logger interface so SQL echoing and
// slow-query warnings flow through the library's logging stack.
func Gorm(log Logger, slowThreshold time.Duration) gormlogger.Interface {
	if slowThreshold <= 0 {
		slowThreshold = DefaultSlowThreshold
	}
	return &gormAdapter{
		log:           log,
		slowThreshold: slowThreshold,
		level:         gormlogger.Warn,
	}
}

// GormEcho is like Gorm but logs every statement at info level.
func GormEcho(log Logger, slowThreshold time.Duration) gormlogger.Interface {
	adapter := Gorm(log, slowThreshold).(*gormAdapter)
	adapter.level = gormlogger.Info
	return adapter
}

// LogMode returns a copy of the adapter with the given verbosity.
func (l *gormAdapter) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

// Info logs a formatted informational message.
func (l *gormAdapter) Info(_ context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Info {
		l.log.Info(fmt.Sprintf(msg, args...))
	}
}

// Warn logs a formatted warning message.
func (l *gormAdapter) Warn(_ context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Warn {
		l.log.Warn(fmt.Sprintf(msg, args...))
	}
}

// Error logs a formatted error message.
func (l *gormAdapter) Error(_ context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Error {
		l.log.Error(fmt.Sprintf(msg, args...))
	}
}

// Trace logs a completed statement with its duration and affected row count.
func (l *gormAdapter) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	switch {
	case err != nil && !errors.Is(err, gormlogger.ErrRecordNotFound) && l.level >= gormlogger.Error:
		sql, rows := fc()
		l.log.Error(fmt.Sprintf("[%.3fms] [rows:%d] %s; error: %v", float64(elapsed.Nanoseconds())/1e6, rows, sql, err))
	case elapsed > l.slowThreshold && l.level >= gormlogger.Warn:
		sql, rows := fc()
		l.log.Warn(fmt.Sprintf("slow query [%.3fms] [rows:%d] %s", float64(elapsed.Nanoseconds())/1e6, rows, sql))
	case l.level >= gormlogger.Info:
		sql, rows := fc()
		l.log.Info(fmt.Sprintf("[%.3fms] [rows:%d] %s", float64(elapsed.Nanoseconds())/1e6, rows, sql))
	}
}
