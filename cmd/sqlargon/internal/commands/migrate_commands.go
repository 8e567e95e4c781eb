package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/performancemedia/sqlargon"
	"github.com/performancemedia/sqlargon/migrate"
)

// InitMigrateCommands registers the migrate command group with the root
// command.
func InitMigrateCommands(rootCmd *cobra.Command) error {
	var urlFlag string

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply, roll back, inspect or render schema migrations",
	}
	migrateCmd.PersistentFlags().StringVar(&urlFlag, "url", "",
		"database URL (defaults to SQLARGON_DATABASE_URL, then DATABASE_URL)")

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, db, err := newMigrator(urlFlag)
			if err != nil {
				return err
			}
			defer closeDatabase(db)
			return m.Up(cmd.Context())
		},
	}

	downCmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, db, err := newMigrator(urlFlag)
			if err != nil {
				return err
			}
			defer closeDatabase(db)
			return m.Down(cmd.Context())
		},
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show the applied state of each migration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, db, err := newMigrator(urlFlag)
			if err != nil {
				return err
			}
			defer closeDatabase(db)

			statuses, err := m.Status(cmd.Context())
			if err != nil {
				return err
			}
			for _, s := range statuses {
				state := "pending"
				if s.Applied {
					state = "applied"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-40s %s\n", s.ID, state)
			}
			return nil
		},
	}

	sqlCmd := &cobra.Command{
		Use:   "sql",
		Short: "Render migration SQL offline without executing it",
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, db, err := newMigrator(urlFlag)
			if err != nil {
				return err
			}
			defer closeDatabase(db)
			return m.SQL(cmd.Context(), cmd.OutOrStdout())
		},
	}

	migrateCmd.AddCommand(upCmd, downCmd, statusCmd, sqlCmd)
	rootCmd.AddCommand(migrateCmd)
	return nil
}

// newMigrator opens the target database and builds the migrator over the
// baseline migration for the registered models.
func newMigrator(urlFlag string) (*migrate.Migrator, *sqlargon.Database, error) {
	db, log, err := openDatabase(urlFlag)
	if err != nil {
		return nil, nil, err
	}

	migrations := []*migrate.Migration{
		migrate.CreateTablesMigration("0001_baseline", sqlargon.RegisteredModels()...),
	}
	return migrate.New(db, migrations, migrate.WithLogger(log)), db, nil
}
