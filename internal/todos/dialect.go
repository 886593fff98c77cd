package todos

import (
	"fmt"
	"os"
	"path/filepath"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Dialect holds what differs between the supported database engines.
type Dialect struct {
	Driver      string
	Placeholder sq.PlaceholderFormat
	createTable string
}

var (
	SQLite = Dialect{
		Driver:      "sqlite",
		Placeholder: sq.Question,
		createTable: `
CREATE TABLE IF NOT EXISTS todos (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title VARCHAR(255) NOT NULL,
	description VARCHAR(255),
	completed BOOLEAN NOT NULL DEFAULT 0,
	"completedAt" DATE,
	"createdAt" TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);`,
	}

	Postgres = Dialect{
		Driver:      "postgres",
		Placeholder: sq.Dollar,
		createTable: `
CREATE TABLE IF NOT EXISTS todos (
	id SERIAL PRIMARY KEY,
	title VARCHAR(255) NOT NULL,
	description VARCHAR(255),
	completed BOOLEAN NOT NULL DEFAULT false,
	"completedAt" DATE,
	"createdAt" TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
);`,
	}
)

func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case SQLite.Driver:
		return SQLite, nil
	case Postgres.Driver:
		return Postgres, nil
	default:
		return Dialect{}, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// Open opens a handle for driver. It does not wait for the server to be
// reachable; connectivity problems surface on first use.
func Open(driver, dsn string) (*sqlx.DB, Dialect, error) {
	d, err := DialectFor(driver)
	if err != nil {
		return nil, Dialect{}, err
	}
	db, err := sqlx.Open(d.Driver, dsn)
	if err != nil {
		return nil, Dialect{}, err
	}
	if d.Driver == SQLite.Driver {
		// Reasonable pragmas for an app server
		if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA synchronous=NORMAL;
		PRAGMA foreign_keys=ON;
	`); err != nil {
			_ = db.Close()
			return nil, Dialect{}, err
		}
	}
	return db, d, nil
}

// Helper to build DSN like: file:/absolute/path?_pragma=busy_timeout(5000)
func SQLiteFileDSN(path string) (string, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return "file:" + filepath.ToSlash(abs) + "?_pragma=busy_timeout(5000)", nil
}
