// Package repository provides PostgreSQL persistence for the reference
// sync backend.
package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/wesigned/wesigned/internal/models"
)

// PostgresSyncRepository stores synced attendance records.
type PostgresSyncRepository struct {
	DB *sql.DB
}

// NewPostgresSyncRepository creates a repository over the given *sql.DB.
func NewPostgresSyncRepository(db *sql.DB) *PostgresSyncRepository {
	return &PostgresSyncRepository{DB: db}
}

// UpsertSignIns ingests a sign-in batch inside one transaction. Rows
// already present (same session code and registration number) are
// skipped, so redelivered batches are harmless. Returns the number of
// rows actually inserted.
func (r *PostgresSyncRepository) UpsertSignIns(ctx context.Context, items []models.SignIn) (int64, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var inserted int64
	for _, s := range items {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO attendance_signins
			    (session_code, reg_number, session_name, full_name, student_id, signed_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (session_code, reg_number) DO NOTHING
		`, s.SessionCode, s.RegNumber, s.SessionName, s.FullName, s.StudentID, s.SignedAt)
		if err != nil {
			return 0, fmt.Errorf("upsert signin: %w", err)
		}
		if rows, err := res.RowsAffected(); err == nil {
			inserted += rows
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return inserted, nil
}

// UpsertSessions ingests a session batch, skipping codes already seen.
func (r *PostgresSyncRepository) UpsertSessions(ctx context.Context, items []models.Session) (int64, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var inserted int64
	for _, s := range items {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO attendance_sessions
			    (code, name, duration, unit, lecturer_id, created_at, expires_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (code) DO NOTHING
		`, s.Code, s.Name, s.Duration, s.Unit, s.LecturerID, s.CreatedAt, s.ExpiresAt)
		if err != nil {
			return 0, fmt.Errorf("upsert session: %w", err)
		}
		if rows, err := res.RowsAffected(); err == nil {
			inserted += rows
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return inserted, nil
}

// SignInsForSessions returns the stored sign-ins of the given session
// codes, newest first.
func (r *PostgresSyncRepository) SignInsForSessions(ctx context.Context, codes []string) ([]models.SignIn, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT session_code, reg_number, session_name, full_name, student_id, signed_at
		  FROM attendance_signins
		 WHERE session_code = ANY($1)
		 ORDER BY signed_at DESC
	`, pq.Array(codes))
	if err != nil {
		return nil, fmt.Errorf("SignInsForSessions: %w", err)
	}
	defer rows.Close()

	var items []models.SignIn
	for rows.Next() {
		var s models.SignIn
		if err := rows.Scan(&s.SessionCode, &s.RegNumber, &s.SessionName, &s.FullName, &s.StudentID, &s.SignedAt); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		s.Synced = true
		items = append(items, s)
	}
	return items, rows.Err()
}
