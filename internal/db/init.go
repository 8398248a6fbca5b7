package db

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

const schema = `
CREATE TABLE IF NOT EXISTS accounts (
    id TEXT PRIMARY KEY,
    email TEXT UNIQUE NOT NULL,
    firstname TEXT NOT NULL,
    middlename TEXT,
    surname TEXT NOT NULL,
    school TEXT,
    password_hash TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS attendance_sessions (
    code TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    duration INT NOT NULL,
    unit TEXT NOT NULL,
    lecturer_id TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL,
    expires_at TIMESTAMPTZ NOT NULL,
    received_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS attendance_signins (
    session_code TEXT NOT NULL,
    reg_number TEXT NOT NULL,
    session_name TEXT,
    full_name TEXT,
    student_id TEXT,
    signed_at TIMESTAMPTZ NOT NULL,
    received_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    PRIMARY KEY (session_code, reg_number)
);
`

// InitPostgres opens the database and applies the schema. The sign-in
// primary key (session_code, reg_number) makes ingestion idempotent:
// the client delivers at least once, so duplicates must be no-ops.
func InitPostgres(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return db, nil
}
