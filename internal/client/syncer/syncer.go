// Package syncer pushes queued offline writes to the backend. Two
// trigger sources share one Coordinator: a background loop with bounded
// backoff, and a foreground trigger fired on a connectivity transition.
// A claim record in the store lets whichever trigger fires second observe
// "already in flight" and skip, so a batch is normally delivered once
// even though the two sources race.
package syncer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/wesigned/wesigned/internal/client/notify"
	"github.com/wesigned/wesigned/internal/client/queue"
	"github.com/wesigned/wesigned/internal/client/store"
	"github.com/wesigned/wesigned/internal/models"
)

// Sync channels, matching the deferred-task tags the backend knows.
const (
	ChannelAttendance = "sync-attendance"
	ChannelSessions   = "sync-sessions"
)

// DefaultClaimTTL bounds how long an abandoned claim blocks the channel.
const DefaultClaimTTL = 2 * time.Minute

var (
	// ErrSyncInFlight means another trigger source holds the channel claim.
	ErrSyncInFlight = errors.New("syncer: sync already in flight")

	// ErrServerRejected means the backend answered but did not confirm the
	// batch; the queue is left untouched and the next trigger retries.
	ErrServerRejected = errors.New("syncer: server rejected batch")
)

// Config tunes a Coordinator.
type Config struct {
	// BaseURL is the backend base URL.
	BaseURL string

	// ClearHistoryOnSync wipes the signin history after a confirmed
	// attendance sync instead of only the confirmed batch.
	ClearHistoryOnSync bool

	// ClaimTTL expires abandoned in-flight claims. Zero means
	// DefaultClaimTTL.
	ClaimTTL time.Duration

	// Token, when set, supplies the bearer token attached to sync calls.
	Token func() string
}

// Coordinator drains the pending-write queue into the backend.
type Coordinator struct {
	client   *http.Client
	store    *store.Store
	queue    *queue.Queue
	notifier notify.Notifier
	log      *zap.Logger
	cfg      Config

	// mu serializes claim acquisition between in-process triggers; the
	// claim record covers triggers from other processes on the same store.
	mu sync.Mutex
}

// New constructs a Coordinator. client may carry timeouts and transport
// settings; notifier receives the success notifications.
func New(client *http.Client, s *store.Store, q *queue.Queue, n notify.Notifier, log *zap.Logger, cfg Config) *Coordinator {
	if cfg.ClaimTTL <= 0 {
		cfg.ClaimTTL = DefaultClaimTTL
	}
	return &Coordinator{client: client, store: s, queue: q, notifier: n, log: log, cfg: cfg}
}

// claim marks channel in flight. The returned release func must be called
// once the pass finishes, success or not; a crashed pass leaves a claim
// that expires after ClaimTTL.
func (c *Coordinator) claim(channel string) (func(), error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var claims []models.SyncClaim
	if err := c.store.GetAll(models.CollectionSyncClaims, &claims); err != nil {
		return nil, err
	}
	now := time.Now()
	for _, cl := range claims {
		if cl.Channel != channel {
			continue
		}
		if !cl.Expired(now, c.cfg.ClaimTTL) {
			return nil, ErrSyncInFlight
		}
		if err := c.store.Delete(models.CollectionSyncClaims, cl.ID); err != nil {
			return nil, err
		}
	}

	claim := &models.SyncClaim{Channel: channel, AcquiredAt: now}
	id, err := c.store.Add(models.CollectionSyncClaims, claim)
	if err != nil {
		return nil, err
	}
	return func() {
		if err := c.store.Delete(models.CollectionSyncClaims, id); err != nil {
			c.log.Warn("failed to release sync claim", zap.String("channel", channel), zap.Error(err))
		}
	}, nil
}

type syncResponse struct {
	Success bool `json:"success"`
}

// post sends one batched sync request. Success means HTTP 200 and a
// response body confirming success; anything else leaves the queue alone.
func (c *Coordinator) post(ctx context.Context, path string, items any) error {
	body, err := json.Marshal(map[string]any{"items": items})
	if err != nil {
		return fmt.Errorf("syncer: encode batch: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("syncer: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.Token != nil {
		if tok := c.cfg.Token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("syncer: %s: %w", path, err)
	}
	defer resp.Body.Close()

	var result syncResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("%w: %s: bad response body", ErrServerRejected, path)
	}
	if resp.StatusCode != http.StatusOK || !result.Success {
		return fmt.Errorf("%w: %s: status %d success=%v", ErrServerRejected, path, resp.StatusCode, result.Success)
	}
	return nil
}

// SyncAttendance drains the pending sign-in queue: one batched POST, and
// on confirmation the exact records read are deleted and the user is
// notified. An empty queue issues no network call.
func (c *Coordinator) SyncAttendance(ctx context.Context) error {
	release, err := c.claim(ChannelAttendance)
	if err != nil {
		return err
	}
	defer release()

	batch, err := c.queue.PendingAttendance()
	if err != nil {
		return err
	}
	if len(batch) == 0 {
		return nil
	}

	if err := c.post(ctx, "/api/sync/attendance", batch); err != nil {
		c.log.Warn("attendance sync failed",
			zap.Int("batch", len(batch)), zap.Error(err))
		return err
	}

	if err := c.queue.ConfirmAttendance(batch, c.cfg.ClearHistoryOnSync); err != nil {
		return err
	}
	c.log.Info("synced pending attendance", zap.Int("batch", len(batch)))
	if err := c.notifier.Notify(AttendanceSynced); err != nil {
		c.log.Warn("attendance sync notification failed", zap.Error(err))
	}
	return nil
}

// SyncSessions drains the staged lecturer sessions the same way.
func (c *Coordinator) SyncSessions(ctx context.Context) error {
	release, err := c.claim(ChannelSessions)
	if err != nil {
		return err
	}
	defer release()

	batch, err := c.queue.PendingSessions()
	if err != nil {
		return err
	}
	if len(batch) == 0 {
		return nil
	}

	if err := c.post(ctx, "/api/sync/sessions", batch); err != nil {
		c.log.Warn("session sync failed",
			zap.Int("batch", len(batch)), zap.Error(err))
		return err
	}

	if err := c.queue.ConfirmSessions(batch); err != nil {
		return err
	}
	c.log.Info("synced pending sessions", zap.Int("batch", len(batch)))
	if err := c.notifier.Notify(SessionSynced); err != nil {
		c.log.Warn("session sync notification failed", zap.Error(err))
	}
	return nil
}

// SyncAll runs both channels. A channel already in flight is skipped
// silently; other failures are joined and reported.
func (c *Coordinator) SyncAll(ctx context.Context) error {
	var errs []error
	for _, sync := range []func(context.Context) error{c.SyncAttendance, c.SyncSessions} {
		if err := sync(ctx); err != nil && !errors.Is(err, ErrSyncInFlight) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// StartAutoSync runs the background sync loop until ctx is done. The loop
// retries on its own schedule with bounded exponential backoff, so a sync
// happens even if no fresh connectivity transition ever fires.
func (c *Coordinator) StartAutoSync(ctx context.Context, interval time.Duration) {
	go func() {
		const maxBackoffFactor = 8
		delay := interval
		timer := time.NewTimer(delay)
		defer timer.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
			}

			if err := c.SyncAll(ctx); err != nil {
				c.log.Warn("background sync failed", zap.Error(err))
				if delay < maxBackoffFactor*interval {
					delay *= 2
				}
			} else {
				delay = interval
			}
			timer.Reset(delay)
		}
	}()
}
