// Package migrate applies versioned schema migrations to a live database
// or renders their SQL offline without opening a connection to it.
package migrate

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	gormigrate "github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/performancemedia/sqlargon"
	"github.com/performancemedia/sqlargon/logging"
)

// Environment variables consulted for the target database location.
const (
	EnvDatabaseURL         = "DATABASE_URL"
	EnvDatabaseURLOverride = "SQLARGON_DATABASE_URL"
)

// DefaultTableName is the bookkeeping table recording applied migrations.
const DefaultTableName = "schema_migrations"

// Migration is a single versioned schema change.
type Migration = gormigrate.Migration

// Status describes one migration's applied state.
type Status struct {
	ID      string
	Applied bool
}

// Migrator applies an ordered migration list to a Database.
type Migrator struct {
	db             *sqlargon.Database
	migrations     []*Migration
	tableName      string
	useTransaction bool
	log            logging.Logger
}

// MigratorOption customizes a Migrator.
type MigratorOption func(*Migrator)

// WithTableName overrides the bookkeeping table name.
func WithTableName(name string) MigratorOption {
	return func(m *Migrator) { m.tableName = name }
}

// WithTransaction controls whether each migration runs in its own
// transaction. Defaults to true.
func WithTransaction(v bool) MigratorOption {
	return func(m *Migrator) { m.useTransaction = v }
}

// WithLogger attaches a logger for progress messages.
func WithLogger(l logging.Logger) MigratorOption {
	return func(m *Migrator) { m.log = l }
}

// New creates a Migrator over db with the given ordered migrations.
func New(db *sqlargon.Database, migrations []*Migration, opts ...MigratorOption) *Migrator {
	m := &Migrator{
		db:             db,
		migrations:     migrations,
		tableName:      DefaultTableName,
		useTransaction: true,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Migrator) engine(ctx context.Context) *gormigrate.Gormigrate {
	opts := &gormigrate.Options{
		TableName:      m.tableName,
		IDColumnName:   "id",
		IDColumnSize:   255,
		UseTransaction: m.useTransaction,
	}
	return gormigrate.New(m.db.Gorm().WithContext(ctx), opts, m.migrations)
}

func (m *Migrator) infof(args ...interface{}) {
	if m.log != nil {
		m.log.Info(args...)
	}
}

// Up applies all pending migrations against the live connection.
func (m *Migrator) Up(ctx context.Context) error {
	if err := m.engine(ctx).Migrate(); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	m.infof("migrations applied")
	return nil
}

// UpTo applies pending migrations up to and including id.
func (m *Migrator) UpTo(ctx context.Context, id string) error {
	if err := m.engine(ctx).MigrateTo(id); err != nil {
		return fmt.Errorf("failed to apply migrations up to %s: %w", id, err)
	}
	m.infof("migrations applied up to ", id)
	return nil
}

// Down rolls back the most recently applied migration.
func (m *Migrator) Down(ctx context.Context) error {
	if err := m.engine(ctx).RollbackLast(); err != nil {
		return fmt.Errorf("failed to roll back migration: %w", err)
	}
	m.infof("last migration rolled back")
	return nil
}

// DownTo rolls back migrations until id is the newest applied one.
func (m *Migrator) DownTo(ctx context.Context, id string) error {
	if err := m.engine(ctx).RollbackTo(id); err != nil {
		return fmt.Errorf("failed to roll back migrations to %s: %w", id, err)
	}
	m.infof("migrations rolled back to ", id)
	return nil
}

// Status reports the applied state of each known migration.
func (m *Migrator) Status(ctx context.Context) ([]Status, error) {
	applied := map[string]bool{}

	db := m.db.Gorm().WithContext(ctx)
	if db.Migrator().HasTable(m.tableName) {
		var ids []string
		if err := db.Table(m.tableName).Pluck("id", &ids).Error; err != nil {
			return nil, fmt.Errorf("failed to read migration table: %w", err)
		}
		for _, id := range ids {
			applied[id] = true
		}
	}

	out := make([]Status, 0, len(m.migrations))
	for _, mig := range m.migrations {
		out = append(out, Status{ID: mig.ID, Applied: applied[mig.ID]})
	}
	return out, nil
}

// SQL renders the statements every migration would execute, in order,
// without executing anything. Migrations must build their DDL through the
// session (Exec, Migrator().CreateTable); migrations that inspect the
// live schema, such as AutoMigrate, cannot be rendered offline.
func (m *Migrator) SQL(ctx context.Context, w io.Writer) error {
	rec := &sqlRecorder{}
	tx := m.db.Gorm().WithContext(ctx).Session(&gorm.Session{
		DryRun: true,
		Logger: rec,
		NewDB:  true,
	})

	for _, mig := range m.migrations {
		rec.reset()
		if _, err := fmt.Fprintf(w, "-- migration %s\n", mig.ID); err != nil {
			return err
		}
		if err := mig.Migrate(tx); err != nil {
			return fmt.Errorf("failed to render migration %s: %w", mig.ID, err)
		}
		for _, stmt := range rec.take() {
			if _, err := fmt.Fprintf(w, "%s;\n", stmt); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "INSERT INTO %s (id) VALUES ('%s');\n\n", m.tableName, mig.ID); err != nil {
			return err
		}
	}
	return nil
}

// sqlRecorder captures statement text from gorm's trace hook during a
// dry run.
type sqlRecorder struct {
	statements []string
}

func (r *sqlRecorder) LogMode(gormlogger.LogLevel) gormlogger.Interface { return r }
func (r *sqlRecorder) Info(context.Context, string, ...interface{})    {}
func (r *sqlRecorder) Warn(context.Context, string, ...interface{})    {}
func (r *sqlRecorder) Error(context.Context, string, ...interface{})   {}

func (r *sqlRecorder) Trace(_ context.Context, _ time.Time, fc func() (string, int64), _ error) {
	sql, _ := fc()
	if sql != "" {
		r.statements = append(r.statements, sql)
	}
}

func (r *sqlRecorder) reset()         { r.statements = nil }
func (r *sqlRecorder) take() []string { return r.statements }

// ResolveURL returns explicit when non-empty, then SQLARGON_DATABASE_URL,
// then DATABASE_URL.
func ResolveURL(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if v := os.Getenv(EnvDatabaseURLOverride); v != "" {
		return v, nil
	}
	if v := os.Getenv(EnvDatabaseURL); v != "" {
		return v, nil
	}
	return "", fmt.Errorf("no database URL: pass one explicitly or set %s or %s", EnvDatabaseURLOverride, EnvDatabaseURL)
}

// CreateTablesMigration builds a migration that creates the models'
// tables outright and drops them on rollback. Unlike AutoMigration it
// never inspects the live schema, so it renders offline.
func CreateTablesMigration(id string, models ...interface{}) *Migration {
	return &Migration{
		ID: id,
		Migrate: func(tx *gorm.DB) error {
			return tx.Migrator().CreateTable(models...)
		},
		Rollback: func(tx *gorm.DB) error {
			for i := len(models) - 1; i >= 0; i-- {
				if err := tx.Migrator().DropTable(models[i]); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

// AutoMigration builds a migration that applies gorm's schema differ to
// the given models and drops their tables on rollback. Useful as the
// baseline migration over the registered models; not renderable offline.
func AutoMigration(id string, models ...interface{}) *Migration {
	return &Migration{
		ID: id,
		Migrate: func(tx *gorm.DB) error {
			return tx.AutoMigrate(models...)
		},
		Rollback: func(tx *gorm.DB) error {
			for i := len(models) - 1; i >= 0; i-- {
				if err := tx.Migrator().DropTable(models[i]); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
