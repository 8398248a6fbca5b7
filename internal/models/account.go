package models

import "errors"

// Account is the backend-side user record. The ID is the opaque
// identifier issued at registration; the client encrypts it at rest and
// compares it at login for the device-binding check.
type Account struct {
	ID           string `json:"id"`
	FirstName    string `json:"firstname"`
	MiddleName   string `json:"middlename,omitempty"`
	Surname      string `json:"surname"`
	Email        string `json:"email"`
	School       string `json:"school,omitempty"`
	PasswordHash string `json:"-"`
}

func (a *Account) Validate() error {
	if a.Email == "" {
		return errors.New("account: email is required")
	}
	if a.FirstName == "" || a.Surname == "" {
		return errors.New("account: name is required")
	}
	return nil
}
