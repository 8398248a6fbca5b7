package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/wesigned/wesigned/internal/models"
	"github.com/wesigned/wesigned/internal/repository"
	serverauth "github.com/wesigned/wesigned/internal/server/auth"
)

// ErrInvalidCredentials is returned for a wrong email or password; the
// two are deliberately indistinguishable to the caller.
var ErrInvalidCredentials = errors.New("service: invalid credentials")

// ErrEmailTaken is returned when registering an existing email.
var ErrEmailTaken = errors.New("service: email already registered")

// AuthRepository defines the persistence operations required by the
// AuthService.
type AuthRepository interface {
	CreateAccount(ctx context.Context, a *models.Account) error
	AccountByEmail(ctx context.Context, email string) (*models.Account, error)
}

// AuthService registers accounts and issues session tokens.
type AuthService struct {
	repo      AuthRepository
	jwtSecret string
	issuer    string
	tokenTTL  time.Duration
}

// NewAuthService constructs an AuthService.
func NewAuthService(repo AuthRepository, jwtSecret, issuer string, tokenTTL time.Duration) *AuthService {
	return &AuthService{repo: repo, jwtSecret: jwtSecret, issuer: issuer, tokenTTL: tokenTTL}
}

// Registration carries the plaintext signup fields.
type Registration struct {
	FirstName  string
	MiddleName string
	Surname    string
	Email      string
	Password   string
	School     string
}

// Register creates an account with a freshly issued opaque identifier
// and a bcrypt password hash. The identifier is what the client encrypts
// at rest and compares at login.
func (s *AuthService) Register(ctx context.Context, reg Registration) (*models.Account, error) {
	if _, err := s.repo.AccountByEmail(ctx, reg.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrAccountNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	account := &models.Account{
		ID:           uuid.NewString(),
		FirstName:    reg.FirstName,
		MiddleName:   reg.MiddleName,
		Surname:      reg.Surname,
		Email:        reg.Email,
		School:       reg.School,
		PasswordHash: string(hash),
	}
	if err := account.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.CreateAccount(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

// Login verifies the credentials and returns the account's opaque
// identifier together with a signed session token.
func (s *AuthService) Login(ctx context.Context, email, password string) (userID, token string, err error) {
	account, err := s.repo.AccountByEmail(ctx, email)
	if errors.Is(err, repository.ErrAccountNotFound) {
		return "", "", ErrInvalidCredentials
	}
	if err != nil {
		return "", "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)) != nil {
		return "", "", ErrInvalidCredentials
	}

	token, err = serverauth.NewSessionToken(s.jwtSecret, s.issuer, s.tokenTTL, account.ID, account.Email)
	if err != nil {
		return "", "", fmt.Errorf("sign token: %w", err)
	}
	return account.ID, token, nil
}
