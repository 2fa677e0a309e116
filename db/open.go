// Package db owns the shared database handle: driver selection, schema
// migrations and the availability gate guarding database-dependent work.
package db

import (
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "pgx"
)

// Open opens the database for the given driver. The sqlite DSN gets the
// foreign_keys pragma appended when the caller did not set any pragmas,
// so the Post->User foreign key is actually enforced.
func Open(driver, dsn string) (*sql.DB, error) {
	switch driver {
	case DriverSQLite, DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening %s database: %w", driver, err)
	}

	if driver == DriverSQLite {
		// Readers should not block the single writer indefinitely.
		if _, err := db.Exec(`PRAGMA busy_timeout=3000;`); err != nil {
			return nil, err
		}
		if _, err := db.Exec(`PRAGMA foreign_keys=ON;`); err != nil {
			return nil, err
		}
	}

	return db, nil
}
