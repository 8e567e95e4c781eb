package commands

import (
	"fmt"
	"os"

	"github.com/performancemedia/sqlargon"
	"github.com/performancemedia/sqlargon/logging"
	"github.com/performancemedia/sqlargon/migrate"
)

// openDatabase resolves the target URL and opens a connection with
// logging configured from the environment.
func openDatabase(urlFlag string) (*sqlargon.Database, logging.Logger, error) {
	url, err := migrate.ResolveURL(urlFlag)
	if err != nil {
		return nil, nil, err
	}

	settings, err := logging.SettingsFromEnv()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load logging settings: %w", err)
	}
	log, err := logging.New(&settings)
	if err != nil {
		return nil, nil, err
	}

	db, err := sqlargon.Open(url, sqlargon.WithLogger(log))
	if err != nil {
		return nil, nil, err
	}
	return db, log, nil
}

func closeDatabase(db *sqlargon.Database) {
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}
}
