// Package dbconn opens database/sql connections for the drivers compiled
// into the binary. Which drivers are available is a build concern (see
// subpackage all); which one a job uses is a pure config concern.
package dbconn

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"time"
)

// Config identifies a database to connect to.
type Config struct {
	// Driver is the registered database/sql driver name, e.g. "pgx",
	// "mysql", "sqlserver", "sqlite".
	Driver string `json:"driver"`

	// DSN is the driver connection string. The form "env:NAME" resolves to
	// the value of the NAME environment variable, keeping credentials out of
	// job files.
	DSN string `json:"dsn"`
}

// Open connects using cfg and returns the handle plus a close function for
// cleanup. It pings with a short timeout so invalid DSNs fail fast instead
// of at first query.
func Open(ctx context.Context, cfg Config) (*sql.DB, func(), error) {
	if strings.TrimSpace(cfg.Driver) == "" {
		return nil, nil, fmt.Errorf("dbconn: driver must not be empty")
	}
	dsn, err := ExpandDSN(cfg.DSN)
	if err != nil {
		return nil, nil, err
	}

	db, err := sql.Open(cfg.Driver, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("dbconn: open %s: %w", cfg.Driver, err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("dbconn: ping %s: %w", cfg.Driver, err)
	}

	closeFn := func() { db.Close() }
	return db, closeFn, nil
}

// ExpandDSN resolves the "env:NAME" indirection. A plain DSN passes through
// unchanged; an env reference to an unset variable is an error.
func ExpandDSN(dsn string) (string, error) {
	name, ok := strings.CutPrefix(dsn, "env:")
	if !ok {
		return dsn, nil
	}
	v, ok := os.LookupEnv(name)
	if !ok || v == "" {
		return "", fmt.Errorf("dbconn: environment variable %q is not set", name)
	}
	return v, nil
}

// Placeholders renders n positional placeholders in the style the given
// driver expects, comma separated. Postgres counts from $1, SQL Server from
// @p1; everything else uses ?.
func Placeholders(driver string, n int) string {
	parts := make([]string, n)
	for i := range parts {
		switch driver {
		case "pgx", "postgres":
			parts[i] = fmt.Sprintf("$%d", i+1)
		case "sqlserver", "mssql":
			parts[i] = fmt.Sprintf("@p%d", i+1)
		default:
			parts[i] = "?"
		}
	}
	return strings.Join(parts, ", ")
}
