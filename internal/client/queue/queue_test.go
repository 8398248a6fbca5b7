package queue

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/wesigned/wesigned/internal/client/store"
	"github.com/wesigned/wesigned/internal/models"
)

func newQueue(t *testing.T) (*Queue, *store.Store) {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "db.json"), store.Version, models.Collections)
	require.NoError(t, err)
	return New(s), s
}

func TestEnqueueSignIn_WritesCompanionPendingEntry(t *testing.T) {
	q, s := newQueue(t)

	err := q.EnqueueSignIn(&models.SignIn{
		SessionCode: "abc123",
		SessionName: "CSC 401",
		RegNumber:   "2019/12345",
		FullName:    "Ada Obi",
		StudentID:   "enc-token",
	})
	require.NoError(t, err)

	var signins []models.SignIn
	require.NoError(t, s.GetAll(models.CollectionSignIns, &signins))
	require.Len(t, signins, 1)
	require.False(t, signins[0].Synced)
	require.False(t, signins[0].SignedAt.IsZero())
	require.NotEmpty(t, signins[0].Timestamp)

	var pending []models.PendingChange
	require.NoError(t, s.GetAll(models.CollectionPending, &pending))
	require.Len(t, pending, 1)
	require.Equal(t, models.ChangeSignIn, pending[0].Type)
	require.Equal(t, signins[0].ID, pending[0].Payload.ID)
}

func TestEnqueueSession_StagesUnsynced(t *testing.T) {
	q, _ := newQueue(t)

	sess, err := q.EnqueueSession("CSC 401", 30, models.UnitMinutes, "lecturer-1")
	require.NoError(t, err)
	require.Len(t, sess.Code, 8)
	require.False(t, sess.Synced)
	require.WithinDuration(t, sess.CreatedAt.Add(30*time.Minute), sess.ExpiresAt, time.Second)

	batch, err := q.PendingSessions()
	require.NoError(t, err)
	require.Len(t, batch, 1)
	require.Equal(t, sess.Code, batch[0].Code)
}

func TestConfirmAttendance_DeletesOnlyTheBatch(t *testing.T) {
	q, s := newQueue(t)

	require.NoError(t, q.EnqueueSignIn(&models.SignIn{
		SessionCode: "abc123", RegNumber: "r1", SessionName: "CSC 401",
	}))
	batch, err := q.PendingAttendance()
	require.NoError(t, err)

	// A record staged while the batch is in flight must survive.
	require.NoError(t, q.EnqueueSignIn(&models.SignIn{
		SessionCode: "abc123", RegNumber: "r2", SessionName: "CSC 401",
	}))

	require.NoError(t, q.ConfirmAttendance(batch, false))

	var pending []models.PendingChange
	require.NoError(t, s.GetAll(models.CollectionPending, &pending))
	require.Len(t, pending, 1)
	require.Equal(t, "r2", pending[0].Payload.RegNumber)

	var signins []models.SignIn
	require.NoError(t, s.GetAll(models.CollectionSignIns, &signins))
	require.Len(t, signins, 1)
	require.Equal(t, "r2", signins[0].RegNumber)
}

func TestConfirmAttendance_ClearHistoryPolicy(t *testing.T) {
	q, s := newQueue(t)

	require.NoError(t, q.EnqueueSignIn(&models.SignIn{SessionCode: "abc123", RegNumber: "r1"}))
	batch, err := q.PendingAttendance()
	require.NoError(t, err)
	require.NoError(t, q.EnqueueSignIn(&models.SignIn{SessionCode: "abc123", RegNumber: "r2"}))

	require.NoError(t, q.ConfirmAttendance(batch, true))

	// History wiped wholesale, but the pending queue still holds the
	// in-flight newcomer for the next pass.
	n, err := s.Count(models.CollectionSignIns)
	require.NoError(t, err)
	require.Zero(t, n)
	n, err = s.Count(models.CollectionPending)
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func TestConfirm_RebuildsDisplayCards(t *testing.T) {
	q, s := newQueue(t)

	require.NoError(t, q.EnqueueSignIn(&models.SignIn{
		SessionCode: "abc123", RegNumber: "r1", SessionName: "CSC 401", FullName: "Ada Obi",
	}))
	batch, err := q.PendingAttendance()
	require.NoError(t, err)
	require.NoError(t, q.ConfirmAttendance(batch, false))

	var cards []models.AttendanceCard
	require.NoError(t, s.GetAll(models.CollectionStudentAttendances, &cards))
	require.Len(t, cards, 1)
	require.Equal(t, "CSC 401", cards[0].Title)
	require.Equal(t, "offline", cards[0].Status)

	sess, err := q.EnqueueSession("CSC 402", 1, models.UnitHours, "lecturer-1")
	require.NoError(t, err)
	require.NoError(t, q.ConfirmSessions([]models.Session{*sess}))

	cards = nil
	require.NoError(t, s.GetAll(models.CollectionLecturerView, &cards))
	require.Len(t, cards, 1)
	require.Equal(t, "CSC 402", cards[0].Title)

	n, err := s.Count(models.CollectionSessions)
	require.NoError(t, err)
	require.Zero(t, n)
}
