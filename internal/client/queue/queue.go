// Package queue stages offline writes for the sync coordinator. It is a
// derived view over the store's "pending" and "sessions" collections:
// every sign-in write also inserts a companion pending entry, and
// lecturer sessions are staged unsynced until a sync pass confirms them.
package queue

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/wesigned/wesigned/internal/client/store"
	"github.com/wesigned/wesigned/internal/models"
)

// Queue stages and drains unsynced attendance writes.
type Queue struct {
	store *store.Store
}

// New returns a Queue over the given store.
func New(s *store.Store) *Queue {
	return &Queue{store: s}
}

// EnqueueSignIn records a student's offline attendance confirmation and
// its companion pending entry. The two are written in order; a sign-in
// has exactly one pending entry until a sync confirms both away.
func (q *Queue) EnqueueSignIn(sig *models.SignIn) error {
	if sig.SignedAt.IsZero() {
		sig.SignedAt = time.Now()
	}
	if sig.Timestamp == "" {
		sig.Timestamp = sig.SignedAt.UTC().Format(time.RFC3339)
	}
	sig.Synced = false

	if _, err := q.store.Add(models.CollectionSignIns, sig); err != nil {
		return fmt.Errorf("queue: stage signin: %w", err)
	}
	change := &models.PendingChange{Type: models.ChangeSignIn, Payload: *sig}
	if _, err := q.store.Add(models.CollectionPending, change); err != nil {
		return fmt.Errorf("queue: stage pending entry: %w", err)
	}
	return nil
}

// EnqueueSession stages a lecturer-created offline session. The short
// code is client-generated so the record has a stable identity before the
// backend ever sees it.
func (q *Queue) EnqueueSession(name string, duration int, unit, lecturerID string) (*models.Session, error) {
	now := time.Now()
	sess := &models.Session{
		Code:       uuid.NewString()[:8],
		Name:       name,
		Duration:   duration,
		Unit:       unit,
		LecturerID: lecturerID,
		CreatedAt:  now,
		Synced:     false,
	}
	sess.ExpiresAt = now.Add(sess.Window())
	if _, err := q.store.Add(models.CollectionSessions, sess); err != nil {
		return nil, fmt.Errorf("queue: stage session: %w", err)
	}
	return sess, nil
}

// PendingAttendance returns the unsynced sign-in batch. The returned
// records carry the ids read now; confirmation deletes exactly these.
func (q *Queue) PendingAttendance() ([]models.PendingChange, error) {
	var changes []models.PendingChange
	if err := q.store.GetAll(models.CollectionPending, &changes); err != nil {
		return nil, err
	}
	return changes, nil
}

// PendingSessions returns the unsynced session batch.
func (q *Queue) PendingSessions() ([]models.Session, error) {
	var sessions []models.Session
	if err := q.store.GetAll(models.CollectionSessions, &sessions); err != nil {
		return nil, err
	}
	unsynced := sessions[:0]
	for _, s := range sessions {
		if !s.Synced {
			unsynced = append(unsynced, s)
		}
	}
	return unsynced, nil
}

// ConfirmAttendance removes a confirmed batch: each pending entry and its
// sign-in, by the ids read at batch-build time, so records staged while
// the batch was in flight survive for the next pass. When clearHistory is
// set the whole sign-in history collection is wiped instead, after the
// display cards have been rebuilt.
func (q *Queue) ConfirmAttendance(batch []models.PendingChange, clearHistory bool) error {
	for _, change := range batch {
		if err := q.rebuildStudentCard(change.Payload); err != nil {
			return err
		}
		if err := q.store.Delete(models.CollectionPending, change.ID); err != nil {
			return fmt.Errorf("queue: confirm pending %d: %w", change.ID, err)
		}
		if err := q.store.Delete(models.CollectionSignIns, change.Payload.ID); err != nil {
			return fmt.Errorf("queue: confirm signin %d: %w", change.Payload.ID, err)
		}
	}
	if clearHistory {
		if err := q.store.Clear(models.CollectionSignIns); err != nil {
			return fmt.Errorf("queue: clear signin history: %w", err)
		}
	}
	return nil
}

// ConfirmSessions removes a confirmed session batch by id.
func (q *Queue) ConfirmSessions(batch []models.Session) error {
	for _, sess := range batch {
		if err := q.rebuildLecturerCard(sess); err != nil {
			return err
		}
		if err := q.store.Delete(models.CollectionSessions, sess.ID); err != nil {
			return fmt.Errorf("queue: confirm session %d: %w", sess.ID, err)
		}
	}
	return nil
}

var gradients = []string{
	"from-indigo-500 to-purple-600",
	"from-emerald-500 to-teal-600",
	"from-rose-500 to-orange-500",
	"from-sky-500 to-blue-600",
}

func (q *Queue) rebuildStudentCard(sig models.SignIn) error {
	card := &models.AttendanceCard{
		Title:       sig.SessionName,
		Counterpart: sig.FullName,
		Date:        sig.SignedAt.Format("2006-01-02"),
		Gradient:    gradients[int(sig.ID)%len(gradients)],
		Status:      "offline",
	}
	if _, err := q.store.Add(models.CollectionStudentAttendances, card); err != nil {
		return fmt.Errorf("queue: rebuild student card: %w", err)
	}
	return nil
}

func (q *Queue) rebuildLecturerCard(sess models.Session) error {
	card := &models.AttendanceCard{
		Title:       sess.Name,
		Counterpart: sess.Code,
		Date:        sess.CreatedAt.Format("2006-01-02"),
		Gradient:    gradients[int(sess.ID)%len(gradients)],
		Status:      "offline",
	}
	if _, err := q.store.Add(models.CollectionLecturerView, card); err != nil {
		return fmt.Errorf("queue: rebuild lecturer card: %w", err)
	}
	return nil
}
