package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// Open establishes a connection using the given driver. For SQLite the DSN is a file path
// (a leading ~ is expanded) or a sqlite URI; for Postgres it is a lib/pq connection string.
func Open(ctx context.Context, driver, dsn string) (*sql.DB, error) {
	switch driver {
	case "", DriverSQLite:
		driver = DriverSQLite
		path, err := expandHome(dsn)
		if err != nil {
			return nil, err
		}
		if err := ensureDirForSQLite(path); err != nil {
			return nil, err
		}
		dsn = path
	case DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}

	// SQLite serializes writers anyway; one connection keeps the UI and the
	// reminder worker from tripping over "database is locked".
	if driver == DriverSQLite {
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	return db, nil
}

// EnsureSchema creates the todos table if it doesn't exist
func EnsureSchema(ctx context.Context, db *sql.DB, driver string) error {
	schema := sqliteSchema
	if driver == DriverPostgres {
		schema = postgresSchema
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

const sqliteSchema = `
	CREATE TABLE IF NOT EXISTS todos (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		task TEXT NOT NULL,
		due_date TEXT,
		due_time TEXT,
		priority TEXT NOT NULL DEFAULT 'Medium',
		status TEXT NOT NULL DEFAULT 'Pending',
		reminder_enabled INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		week_day TEXT
	)
`

const postgresSchema = `
	CREATE TABLE IF NOT EXISTS todos (
		id BIGSERIAL PRIMARY KEY,
		task TEXT NOT NULL,
		due_date TEXT,
		due_time TEXT,
		priority TEXT NOT NULL DEFAULT 'Medium',
		status TEXT NOT NULL DEFAULT 'Pending',
		reminder_enabled BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		week_day TEXT
	)
`

// rebind rewrites ? placeholders to the $n form lib/pq expects.
func rebind(driver, query string) string {
	if driver != DriverPostgres {
		return query
	}
	var sb strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			sb.WriteByte('$')
			sb.WriteString(strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

func expandHome(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return homeDir + path[1:], nil
}

// ensureDirForSQLite creates the parent directory of a SQLite file if needed.
func ensureDirForSQLite(dsn string) error {
	if strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory") {
		return nil
	}
	clean := strings.TrimPrefix(dsn, "file:")
	clean = strings.Split(clean, "?")[0]
	dir := filepath.Dir(clean)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create db dir %q: %w", dir, err)
	}
	return nil
}
