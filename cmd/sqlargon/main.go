// Package main is the entry point for the sqlargon CLI. It registers the
// migration command group and executes the command-line interface.
package main

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	commands "github.com/performancemedia/sqlargon/cmd/sqlargon/internal/commands"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func run() error {
	rootCmd := &cobra.Command{
		Use:   "sqlargon",
		Short: "Database utilities CLI for Postgres and SQLite",
		Long: `sqlargon is a command-line tool for managing databases used with the
sqlargon library. It applies versioned schema migrations online, rolls
them back, reports their status, and renders their SQL offline.

The target database is taken from --url, or from the environment:
- SQLARGON_DATABASE_URL
- DATABASE_URL`,
	}

	if err := commands.InitMigrateCommands(rootCmd); err != nil {
		return fmt.Errorf("failed to initialize migrate commands: %w", err)
	}

	if err := rootCmd.Execute(); err != nil {
		return fmt.Errorf("command execution failed: %w", err)
	}

	return nil
}
