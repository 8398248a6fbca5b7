// Package models defines the record types held in the local store and
// exchanged with the sync backend.
package models

import (
	"errors"
	"time"
)

// Collection names of the local store.
const (
	CollectionSessions           = "sessions"
	CollectionPending            = "pending"
	CollectionSignIns            = "signins"
	CollectionUser               = "user"
	CollectionPendingUser        = "pendingUser"
	CollectionStudentAttendances = "studentAttendances"
	CollectionLecturerView       = "lecturerView"
	CollectionSyncClaims         = "syncClaims"
)

// Collections lists every collection the store must hold; opening the
// store creates any that are missing.
var Collections = []string{
	CollectionSessions,
	CollectionPending,
	CollectionSignIns,
	CollectionUser,
	CollectionPendingUser,
	CollectionStudentAttendances,
	CollectionLecturerView,
	CollectionSyncClaims,
}

// Duration units accepted for a session window.
const (
	UnitSeconds = "seconds"
	UnitMinutes = "minutes"
	UnitHours   = "hours"
)

// PendingChange types.
const (
	ChangeSignIn = "signin"
)

// User is the identity bound to this device. Password and UserID hold
// vault ciphertext tokens, never plaintext.
type User struct {
	ID         int64  `json:"id,omitempty"`
	FirstName  string `json:"firstname"`
	MiddleName string `json:"middlename,omitempty"`
	Surname    string `json:"surname"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	UserID     string `json:"userId"`
	School     string `json:"school,omitempty"`
	Token      string `json:"token,omitempty"`
}

func (u *User) RecordID() int64      { return u.ID }
func (u *User) SetRecordID(id int64) { u.ID = id }

func (u *User) Validate() error {
	if u.Email == "" {
		return errors.New("user: email is required")
	}
	if u.UserID == "" {
		return errors.New("user: encrypted user id is required")
	}
	return nil
}

// PendingUser is a staged re-registration that is promoted to the active
// User once it has matured for ActivationDelay.
type PendingUser struct {
	ID         int64     `json:"id,omitempty"`
	FirstName  string    `json:"firstname"`
	MiddleName string    `json:"middlename,omitempty"`
	Surname    string    `json:"surname"`
	Email      string    `json:"email"`
	Password   string    `json:"password"`
	UserID     string    `json:"userId"`
	School     string    `json:"school,omitempty"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
}

// ActivationDelay is how long a PendingUser must age before promotion.
const ActivationDelay = 12 * time.Hour

func (p *PendingUser) RecordID() int64      { return p.ID }
func (p *PendingUser) SetRecordID(id int64) { p.ID = id }

func (p *PendingUser) Validate() error {
	if p.Email == "" {
		return errors.New("pendingUser: email is required")
	}
	if p.CreatedAt.IsZero() {
		return errors.New("pendingUser: createdAt is required")
	}
	return nil
}

// Matured reports whether the pending user is old enough to promote.
func (p *PendingUser) Matured(now time.Time) bool {
	return now.Sub(p.CreatedAt) >= ActivationDelay
}

// User returns the active-user record this pending user promotes to.
func (p *PendingUser) User() *User {
	return &User{
		FirstName:  p.FirstName,
		MiddleName: p.MiddleName,
		Surname:    p.Surname,
		Email:      p.Email,
		Password:   p.Password,
		UserID:     p.UserID,
		School:     p.School,
	}
}

// Session is a lecturer-created attendance window staged offline.
type Session struct {
	ID         int64     `json:"id,omitempty"`
	Code       string    `json:"code"`
	Name       string    `json:"name"`
	Duration   int       `json:"duration"`
	Unit       string    `json:"unit"`
	LecturerID string    `json:"lecturerId"`
	CreatedAt  time.Time `json:"createdAt"`
	ExpiresAt  time.Time `json:"expiresAt"`
	Synced     bool      `json:"synced"`
}

func (s *Session) RecordID() int64      { return s.ID }
func (s *Session) SetRecordID(id int64) { s.ID = id }

func (s *Session) Validate() error {
	if s.Code == "" {
		return errors.New("session: code is required")
	}
	if s.Name == "" {
		return errors.New("session: name is required")
	}
	if s.Duration <= 0 {
		return errors.New("session: duration must be positive")
	}
	switch s.Unit {
	case UnitSeconds, UnitMinutes, UnitHours:
	default:
		return errors.New("session: unknown duration unit")
	}
	return nil
}

// Window returns the session duration as a time.Duration.
func (s *Session) Window() time.Duration {
	switch s.Unit {
	case UnitMinutes:
		return time.Duration(s.Duration) * time.Minute
	case UnitHours:
		return time.Duration(s.Duration) * time.Hour
	default:
		return time.Duration(s.Duration) * time.Second
	}
}

// Expired reports whether the session window has closed.
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// SignIn is a student's offline attendance confirmation.
type SignIn struct {
	ID          int64     `json:"id,omitempty"`
	SessionCode string    `json:"sessionCode"`
	SessionName string    `json:"sessionName"`
	RegNumber   string    `json:"regNumber"`
	FullName    string    `json:"fullName"`
	StudentID   string    `json:"studentId"`
	SignedAt    time.Time `json:"signedAt"`
	Timestamp   string    `json:"timestamp"`
	Synced      bool      `json:"synced"`
}

func (s *SignIn) RecordID() int64      { return s.ID }
func (s *SignIn) SetRecordID(id int64) { s.ID = id }

func (s *SignIn) Validate() error {
	if s.SessionCode == "" {
		return errors.New("signin: session code is required")
	}
	if s.RegNumber == "" {
		return errors.New("signin: registration number is required")
	}
	if s.SignedAt.IsZero() {
		return errors.New("signin: signedAt is required")
	}
	return nil
}

// PendingChange is the queue companion written alongside every SignIn;
// the attendance sync channel drains this collection.
type PendingChange struct {
	ID      int64  `json:"id,omitempty"`
	Type    string `json:"type"`
	Payload SignIn `json:"payload"`
}

func (p *PendingChange) RecordID() int64      { return p.ID }
func (p *PendingChange) SetRecordID(id int64) { p.ID = id }

func (p *PendingChange) Validate() error {
	if p.Type != ChangeSignIn {
		return errors.New("pending: unknown change type")
	}
	return p.Payload.Validate()
}

// AttendanceCard is a display summary of a completed attendance, rebuilt
// from session/signin data; it is derived, never authoritative.
type AttendanceCard struct {
	ID          int64  `json:"id,omitempty"`
	Title       string `json:"title"`
	Counterpart string `json:"counterpart"`
	Date        string `json:"date"`
	Gradient    string `json:"gradient"`
	Status      string `json:"status"`
}

func (c *AttendanceCard) RecordID() int64      { return c.ID }
func (c *AttendanceCard) SetRecordID(id int64) { c.ID = id }

// SyncClaim marks a sync channel as in flight so the racing trigger
// source skips instead of resending the same batch.
type SyncClaim struct {
	ID         int64     `json:"id,omitempty"`
	Channel    string    `json:"channel"`
	AcquiredAt time.Time `json:"acquiredAt"`
}

func (c *SyncClaim) RecordID() int64      { return c.ID }
func (c *SyncClaim) SetRecordID(id int64) { c.ID = id }

// Expired reports whether an abandoned claim may be taken over.
func (c *SyncClaim) Expired(now time.Time, ttl time.Duration) bool {
	return now.Sub(c.AcquiredAt) >= ttl
}
