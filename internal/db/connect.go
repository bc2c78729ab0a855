package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // driver: pgx
	_ "modernc.org/sqlite"             // driver: sqlite
)

type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// Open opens a DB and ensures schema exists.
func Open(ctx context.Context, driver Driver, dsn string) (*sql.DB, error) {
	var drvName string
	switch driver {
	case DriverSQLite:
		drvName = "sqlite" // modernc driver
		if dsn == "" {
			dsn = "file:assessments.db?cache=shared&mode=rwc&_pragma=busy_timeout(5000)"
		}
	case DriverPostgres:
		drvName = "pgx" // pgx stdlib driver
		if dsn == "" {
			dsn = "postgres://localhost:5432/assessments?sslmode=disable"
		}
	default:
		return nil, fmt.Errorf("unsupported driver: %s", driver)
	}

	db, err := sql.Open(drvName, dsn)
	if err != nil {
		return nil, err
	}
	if driver == DriverSQLite {
		// one writer at a time; avoids SQLITE_BUSY under concurrent requests
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}

	if err := EnsureSchema(ctx, db, driver); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// EnsureSchema creates the tables and indexes if they are missing.
func EnsureSchema(ctx context.Context, db *sql.DB, driver Driver) error {
	var schema string
	switch driver {
	case DriverSQLite:
		schema = schemaSQLite
	case DriverPostgres:
		schema = schemaPostgres
	default:
		return fmt.Errorf("unsupported driver: %s", driver)
	}
	_, err := db.ExecContext(ctx, schema)
	return err
}

const schemaSQLite = `
CREATE TABLE IF NOT EXISTS assessment_tests (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  subject TEXT NOT NULL,
  level INTEGER NOT NULL CHECK (level > 0),
  questions_json TEXT NOT NULL,
  last_updated INTEGER NOT NULL,
  UNIQUE (subject, level)
);

CREATE TABLE IF NOT EXISTS user_assessment_tests (
  id TEXT PRIMARY KEY,
  assessment_test_id TEXT NOT NULL,
  test_name TEXT NOT NULL,
  user_id TEXT NOT NULL,
  subject TEXT NOT NULL,
  user_answers_json TEXT NOT NULL,
  completed BOOLEAN NOT NULL DEFAULT 0,
  passed BOOLEAN NOT NULL DEFAULT 0,
  score INTEGER NOT NULL DEFAULT 0,
  created_at INTEGER NOT NULL,
  last_updated INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS ix_uat_user_subject ON user_assessment_tests (user_id, subject);

-- at most one incomplete attempt per user and subject
CREATE UNIQUE INDEX IF NOT EXISTS ux_uat_open_attempt
  ON user_assessment_tests (user_id, subject) WHERE NOT completed;

CREATE TABLE IF NOT EXISTS event_log (
  "offset" INTEGER PRIMARY KEY AUTOINCREMENT,
  site_id TEXT NOT NULL DEFAULT 'local',
  typ TEXT NOT NULL,                         -- e.g., AttemptSubmitted
  key TEXT NOT NULL,                         -- natural key: attemptID
  data TEXT NOT NULL,                        -- JSON payload
  created_at INTEGER NOT NULL
);
`

const schemaPostgres = `
CREATE TABLE IF NOT EXISTS assessment_tests (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  subject TEXT NOT NULL,
  level INTEGER NOT NULL CHECK (level > 0),
  questions_json TEXT NOT NULL,
  last_updated BIGINT NOT NULL,
  UNIQUE (subject, level)
);

CREATE TABLE IF NOT EXISTS user_assessment_tests (
  id TEXT PRIMARY KEY,
  assessment_test_id TEXT NOT NULL,
  test_name TEXT NOT NULL,
  user_id TEXT NOT NULL,
  subject TEXT NOT NULL,
  user_answers_json TEXT NOT NULL,
  completed BOOLEAN NOT NULL DEFAULT FALSE,
  passed BOOLEAN NOT NULL DEFAULT FALSE,
  score INTEGER NOT NULL DEFAULT 0,
  created_at BIGINT NOT NULL,
  last_updated BIGINT NOT NULL
);

CREATE INDEX IF NOT EXISTS ix_uat_user_subject ON user_assessment_tests (user_id, subject);

CREATE UNIQUE INDEX IF NOT EXISTS ux_uat_open_attempt
  ON user_assessment_tests (user_id, subject) WHERE NOT completed;

CREATE TABLE IF NOT EXISTS event_log (
  "offset" BIGSERIAL PRIMARY KEY,
  site_id TEXT NOT NULL DEFAULT 'local',
  typ TEXT NOT NULL,
  key TEXT NOT NULL,
  data TEXT NOT NULL,
  created_at BIGINT NOT NULL
);
`
