// Package sqlargon provides SQL/ORM utilities for Postgres and SQLite:
// a gorm-backed Database with dialect capability detection, context-scoped
// sessions, a unit of work, a generic repository, model mixins and
// env-driven settings.
package sqlargon

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/performancemedia/sqlargon/logging"
	"github.com/performancemedia/sqlargon/otelgorm"
)

// Database wraps a gorm connection for postgres or sqlite.
type Database struct {
	db      *gorm.DB
	dialect Dialect
	caps    capabilities
	log     logging.Logger
}

type options struct {
	logger        logging.Logger
	gormConfig    *gorm.Config
	tracer        trace.TracerProvider
	echo          bool
	slowThreshold time.Duration
}

// Option customizes how a Database is opened.
type Option func(*options)

// WithLogger routes gorm logging through the given logger.
func WithLogger(l logging.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithGormConfig supplies a gorm config instead of the default one.
func WithGormConfig(cfg *gorm.Config) Option {
	return func(o *options) { o.gormConfig = cfg }
}

// WithTracer installs the OpenTelemetry plugin using the given provider.
func WithTracer(tp trace.TracerProvider) Option {
	return func(o *options) { o.tracer = tp }
}

// WithEcho logs every executed statement at info level.
func WithEcho(echo bool) Option {
	return func(o *options) { o.echo = echo }
}

// WithSlowThreshold overrides the slow-query warning threshold.
func WithSlowThreshold(d time.Duration) Option {
	return func(o *options) { o.slowThreshold = d }
}

// Open connects to the database identified by url. The URL scheme selects
// the dialect, see openDialector.
func Open(url string, opts ...Option) (*Database, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	dialector, dialect, err := openDialector(url)
	if err != nil {
		return nil, err
	}

	cfg := o.gormConfig
	if cfg == nil {
		cfg = &gorm.Config{}
	}
	if o.echo && o.logger == nil {
		// echo needs somewhere to write
		o.logger = logging.NewConsoleLogger(logging.LogLevelInfo)
	}
	if o.logger != nil && cfg.Logger == nil {
		if o.echo {
			cfg.Logger = logging.GormEcho(o.logger, o.slowThreshold)
		} else {
			cfg.Logger = logging.Gorm(o.logger, o.slowThreshold)
		}
	}

	db, err := gorm.Open(dialector, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", dialect, err)
	}

	if o.tracer != nil {
		if err := db.Use(otelgorm.New(otelgorm.WithTracerProvider(o.tracer))); err != nil {
			return nil, fmt.Errorf("failed to install tracing plugin: %w", err)
		}
	}

	d := &Database{
		db:      db,
		dialect: dialect,
		caps:    dialectCapabilities(dialect),
		log:     o.logger,
	}

	if dialect == DialectSQLite {
		// sqlite enforces foreign keys only when asked
		if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
			return nil, fmt.Errorf("failed to enable sqlite foreign keys: %w", err)
		}
	}

	return d, nil
}

// OpenSettings connects using settings and applies pool tuning to the
// underlying sql.DB.
func OpenSettings(s Settings, opts ...Option) (*Database, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if s.Echo {
		opts = append(opts, WithEcho(true))
	}

	d, err := Open(s.EffectiveURL(), opts...)
	if err != nil {
		return nil, err
	}

	sqlDB, err := d.db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(s.PoolSize)
	sqlDB.SetMaxIdleConns(s.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(s.PoolRecycle)

	return d, nil
}

// FromEnv connects using settings read from the environment.
func FromEnv(opts ...Option) (*Database, error) {
	s, err := SettingsFromEnv()
	if err != nil {
		return nil, err
	}
	return OpenSettings(s, opts...)
}

// Gorm exposes the underlying gorm handle.
func (d *Database) Gorm() *gorm.DB { return d.db }

// Dialect returns the backend selected at Open time.
func (d *Database) Dialect() Dialect { return d.dialect }

// SupportsReturning reports whether the dialect supports RETURNING.
func (d *Database) SupportsReturning() bool { return d.caps.returning }

// SupportsOnConflict reports whether the dialect supports ON CONFLICT.
func (d *Database) SupportsOnConflict() bool { return d.caps.onConflict }

// handle returns the session bound to ctx when present, or a fresh one.
func (d *Database) handle(ctx context.Context) *gorm.DB {
	if tx, ok := CurrentSession(ctx); ok {
		return tx
	}
	return d.db.WithContext(ctx)
}

// Exec runs a raw statement through the bound session when one is present.
func (d *Database) Exec(ctx context.Context, sql string, args ...interface{}) error {
	if err := d.handle(ctx).Exec(sql, args...).Error; err != nil {
		return Translate(err)
	}
	return nil
}

// Query runs a raw query scanning all rows into dest.
func (d *Database) Query(ctx context.Context, dest interface{}, sql string, args ...interface{}) error {
	if err := d.handle(ctx).Raw(sql, args...).Scan(dest).Error; err != nil {
		return Translate(err)
	}
	return nil
}

// Session runs fn inside a transactional session bound to the supplied
// context. The transaction commits when fn returns nil and rolls back on
// error or panic; the connection is released on every exit path.
func (d *Database) Session(ctx context.Context, fn func(ctx context.Context, tx *gorm.DB) error) error {
	return d.handle(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(WithSession(ctx, tx), tx)
	})
}

// CreateAll migrates the schema for the given models, defaulting to the
// registered model list.
func (d *Database) CreateAll(ctx context.Context, models ...interface{}) error {
	if len(models) == 0 {
		models = RegisteredModels()
	}
	if len(models) == 0 {
		return nil
	}
	if err := d.db.WithContext(ctx).AutoMigrate(models...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// DropAll drops the tables of the given models in reverse order,
// defaulting to the registered model list.
func (d *Database) DropAll(ctx context.Context, models ...interface{}) error {
	if len(models) == 0 {
		models = RegisteredModels()
	}
	for i := len(models) - 1; i >= 0; i-- {
		if err := d.db.WithContext(ctx).Migrator().DropTable(models[i]); err != nil {
			return fmt.Errorf("failed to drop table for %T: %w", models[i], err)
		}
	}
	return nil
}

// Ping verifies the connection is alive.
func (d *Database) Ping(ctx context.Context) error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database handle: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (d *Database) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database handle: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database connection: %w", err)
	}
	return nil
}
