// Package sweeper promotes matured pending re-registrations to the
// active device user.
package sweeper

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/wesigned/wesigned/internal/client/notify"
	"github.com/wesigned/wesigned/internal/client/store"
	"github.com/wesigned/wesigned/internal/models"
)

// Sweeper scans the pendingUser collection and activates records that
// have aged past the trust delay.
type Sweeper struct {
	store    *store.Store
	notifier notify.Notifier
	log      *zap.Logger

	// now is swappable for tests.
	now func() time.Time
}

// New constructs a Sweeper.
func New(s *store.Store, n notify.Notifier, log *zap.Logger) *Sweeper {
	return &Sweeper{store: s, notifier: n, log: log, now: time.Now}
}

// Start runs one immediate sweep and then sweeps on the given interval
// until ctx is done.
func (s *Sweeper) Start(ctx context.Context, interval time.Duration) {
	go func() {
		if err := s.Sweep(); err != nil {
			s.log.Error("pending-user sweep failed", zap.Error(err))
		}
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := s.Sweep(); err != nil {
					s.log.Error("pending-user sweep failed", zap.Error(err))
				}
			}
		}
	}()
}

// Sweep promotes every matured pending user: all existing user records
// are deleted (one active user per device), the pending user's data
// becomes the user record, and the pending entry is removed. The
// activation notification is best effort and never rolls back a
// promotion.
func (s *Sweeper) Sweep() error {
	var pending []models.PendingUser
	if err := s.store.GetAll(models.CollectionPendingUser, &pending); err != nil {
		return err
	}

	now := s.now()
	for _, p := range pending {
		if !p.Matured(now) {
			continue
		}
		if err := s.promote(p); err != nil {
			return err
		}
	}
	return nil
}

func (s *Sweeper) promote(p models.PendingUser) error {
	var users []models.User
	if err := s.store.GetAll(models.CollectionUser, &users); err != nil {
		return err
	}
	for _, u := range users {
		if err := s.store.Delete(models.CollectionUser, u.ID); err != nil {
			return fmt.Errorf("sweeper: displace user %d: %w", u.ID, err)
		}
	}

	if _, err := s.store.Put(models.CollectionUser, p.User()); err != nil {
		return fmt.Errorf("sweeper: activate %s: %w", p.Email, err)
	}
	if err := s.store.Delete(models.CollectionPendingUser, p.ID); err != nil {
		return fmt.Errorf("sweeper: remove pending user %d: %w", p.ID, err)
	}
	s.log.Info("activated pending user", zap.String("email", p.Email))

	n := notify.Notification{
		Title: "Account Activated",
		Body:  fmt.Sprintf("Your account (%s) has been activated. You can now log in.", p.Email),
		Icon:  "/images/logo.png",
	}
	if err := s.notifier.Notify(n); err != nil {
		s.log.Warn("activation notification failed", zap.Error(err))
	}
	return nil
}
