package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/wesigned/wesigned/internal/models"
)

// ErrAccountNotFound is returned when no account matches the email.
var ErrAccountNotFound = errors.New("repository: account not found")

// PostgresAuthRepository stores backend accounts.
type PostgresAuthRepository struct {
	DB *sql.DB
}

// NewPostgresAuthRepository creates a repository over the given *sql.DB.
func NewPostgresAuthRepository(db *sql.DB) *PostgresAuthRepository {
	return &PostgresAuthRepository{DB: db}
}

// CreateAccount inserts a new account row.
func (r *PostgresAuthRepository) CreateAccount(ctx context.Context, a *models.Account) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO accounts (id, email, firstname, middlename, surname, school, password_hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, a.ID, a.Email, a.FirstName, a.MiddleName, a.Surname, a.School, a.PasswordHash)
	if err != nil {
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}

// AccountByEmail fetches one account, or ErrAccountNotFound.
func (r *PostgresAuthRepository) AccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	var a models.Account
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, email, firstname, COALESCE(middlename, ''), surname, COALESCE(school, ''), password_hash
		  FROM accounts WHERE email = $1
	`, email).Scan(&a.ID, &a.Email, &a.FirstName, &a.MiddleName, &a.Surname, &a.School, &a.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("account by email: %w", err)
	}
	return &a, nil
}
