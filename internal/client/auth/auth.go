// Package auth implements the device-bound account flows: local
// registration, the device-binding check at login, re-registration
// staging, and password updates. Credentials pass through the vault
// before they touch the store.
package auth

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/wesigned/wesigned/internal/client/store"
	"github.com/wesigned/wesigned/internal/client/vault"
	"github.com/wesigned/wesigned/internal/models"
)

var (
	// ErrWrongDevice means credentials were valid but this device is not
	// the one the account was registered on. Deliberately distinct from a
	// wrong-password error.
	ErrWrongDevice = errors.New("auth: this is not the registered device")

	// ErrReRegisterRequired means the server knows the account but the
	// local store holds no user; the device data was presumably wiped.
	ErrReRegisterRequired = errors.New("auth: device data missing, re-registration required")

	// ErrDeviceUnverifiable means the stored identifier could not be
	// decrypted, so the device-binding check cannot run at all.
	ErrDeviceUnverifiable = errors.New("auth: cannot verify device")
)

// Service runs the local account flows.
type Service struct {
	store *store.Store
	vault *vault.Vault
	log   *zap.Logger
}

// New constructs the auth service.
func New(s *store.Store, v *vault.Vault, log *zap.Logger) *Service {
	return &Service{store: s, vault: v, log: log}
}

// Identity carries the plaintext identity fields of a registration.
type Identity struct {
	FirstName  string
	MiddleName string
	Surname    string
	Email      string
	Password   string
	School     string
	// UserID is the opaque identifier issued by the backend.
	UserID string
}

// RegisterLocal stores the confirmed signup as the device's active user,
// encrypting the password and the server-issued identifier. Any previous
// user records are displaced.
func (s *Service) RegisterLocal(id Identity) (*models.User, error) {
	encPwd, err := s.vault.Encrypt(id.Password)
	if err != nil {
		return nil, fmt.Errorf("auth: encrypt password: %w", err)
	}
	encID, err := s.vault.Encrypt(id.UserID)
	if err != nil {
		return nil, fmt.Errorf("auth: encrypt user id: %w", err)
	}

	var existing []models.User
	if err := s.store.GetAll(models.CollectionUser, &existing); err != nil {
		return nil, err
	}
	for _, u := range existing {
		if err := s.store.Delete(models.CollectionUser, u.ID); err != nil {
			return nil, err
		}
	}

	user := &models.User{
		FirstName:  id.FirstName,
		MiddleName: id.MiddleName,
		Surname:    id.Surname,
		Email:      id.Email,
		Password:   encPwd,
		UserID:     encID,
		School:     id.School,
	}
	if _, err := s.store.Put(models.CollectionUser, user); err != nil {
		return nil, err
	}
	s.log.Info("registered device user", zap.String("email", id.Email))
	return user, nil
}

// ConfirmLogin runs the device-binding check after the backend accepted
// the credentials. serverUserID is the plaintext identifier the server
// asserts; token is the session token to persist on success.
//
// An empty user collection means the local data was wiped: the caller
// must surface the re-registration path. A stored identifier that does
// not match byte-for-byte rejects the login even though the password was
// right; a password alone never grants access from another device.
func (s *Service) ConfirmLogin(email, serverUserID, token string) error {
	var users []models.User
	if err := s.store.GetAll(models.CollectionUser, &users); err != nil {
		return err
	}
	if len(users) == 0 {
		return ErrReRegisterRequired
	}

	var user *models.User
	for i := range users {
		if users[i].Email == email {
			user = &users[i]
			break
		}
	}
	if user == nil {
		return ErrWrongDevice
	}

	storedID, err := s.vault.Decrypt(user.UserID)
	if err != nil {
		// Tampered or key mismatch: fatal, not a wrong-password case.
		return fmt.Errorf("%w: %v", ErrDeviceUnverifiable, err)
	}
	if storedID != serverUserID {
		s.log.Warn("device-binding mismatch", zap.String("email", email))
		return ErrWrongDevice
	}

	user.Token = token
	if _, err := s.store.Put(models.CollectionUser, user); err != nil {
		return err
	}
	return nil
}

// Token returns the persisted session token, or "" when nobody is logged
// in on this device.
func (s *Service) Token() string {
	var users []models.User
	if err := s.store.GetAll(models.CollectionUser, &users); err != nil {
		return ""
	}
	for _, u := range users {
		if u.Token != "" {
			return u.Token
		}
	}
	return ""
}

// StageReRegistration records a completed re-registration as a pending
// user; the activation sweeper promotes it after the trust delay.
func (s *Service) StageReRegistration(id Identity) (*models.PendingUser, error) {
	encPwd, err := s.vault.Encrypt(id.Password)
	if err != nil {
		return nil, fmt.Errorf("auth: encrypt password: %w", err)
	}
	encID, err := s.vault.Encrypt(id.UserID)
	if err != nil {
		return nil, fmt.Errorf("auth: encrypt user id: %w", err)
	}

	p := &models.PendingUser{
		FirstName:  id.FirstName,
		MiddleName: id.MiddleName,
		Surname:    id.Surname,
		Email:      id.Email,
		Password:   encPwd,
		UserID:     encID,
		School:     id.School,
		Status:     "pending",
		CreatedAt:  time.Now(),
	}
	if _, err := s.store.Add(models.CollectionPendingUser, p); err != nil {
		return nil, err
	}
	s.log.Info("staged re-registration", zap.String("email", id.Email))
	return p, nil
}

// UpdatePassword re-encrypts and stores a reset password for the device
// user with the given email.
func (s *Service) UpdatePassword(email, newPassword string) error {
	var users []models.User
	if err := s.store.GetAll(models.CollectionUser, &users); err != nil {
		return err
	}
	for i := range users {
		if users[i].Email != email {
			continue
		}
		encPwd, err := s.vault.Encrypt(newPassword)
		if err != nil {
			return fmt.Errorf("auth: encrypt password: %w", err)
		}
		users[i].Password = encPwd
		_, err = s.store.Put(models.CollectionUser, &users[i])
		return err
	}
	return store.ErrNotFound
}
