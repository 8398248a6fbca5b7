package service

import (
	"context"
	"testing"
	"time"

	"github.com/wesigned/wesigned/internal/models"
)

type fakeSyncRepo struct {
	signins  []models.SignIn
	sessions []models.Session
}

func (f *fakeSyncRepo) UpsertSignIns(_ context.Context, items []models.SignIn) (int64, error) {
	f.signins = append(f.signins, items...)
	return int64(len(items)), nil
}

func (f *fakeSyncRepo) UpsertSessions(_ context.Context, items []models.Session) (int64, error) {
	f.sessions = append(f.sessions, items...)
	return int64(len(items)), nil
}

func (f *fakeSyncRepo) SignInsForSessions(_ context.Context, codes []string) ([]models.SignIn, error) {
	return f.signins, nil
}

func validChange(reg string) models.PendingChange {
	return models.PendingChange{
		Type: models.ChangeSignIn,
		Payload: models.SignIn{
			SessionCode: "abc123", RegNumber: reg, SignedAt: time.Now(),
		},
	}
}

func TestIngestAttendance(t *testing.T) {
	repo := &fakeSyncRepo{}
	svc := NewSyncService(repo)

	n, err := svc.IngestAttendance(context.Background(), []models.PendingChange{
		validChange("r1"), validChange("r2"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 || len(repo.signins) != 2 {
		t.Errorf("expected 2 stored sign-ins, got %d", len(repo.signins))
	}
}

func TestIngestAttendance_RejectsInvalidItem(t *testing.T) {
	repo := &fakeSyncRepo{}
	svc := NewSyncService(repo)

	bad := validChange("r1")
	bad.Type = "unknown"
	if _, err := svc.IngestAttendance(context.Background(), []models.PendingChange{bad}); err == nil {
		t.Fatal("expected validation error")
	}
	if len(repo.signins) != 0 {
		t.Error("invalid batch must not reach the repository")
	}

	missing := validChange("")
	if _, err := svc.IngestAttendance(context.Background(), []models.PendingChange{missing}); err == nil {
		t.Fatal("expected validation error for missing reg number")
	}
}

func TestIngestSessions(t *testing.T) {
	repo := &fakeSyncRepo{}
	svc := NewSyncService(repo)

	now := time.Now()
	sess := models.Session{
		Code: "abc123", Name: "CSC 401", Duration: 30, Unit: models.UnitMinutes,
		LecturerID: "lect-1", CreatedAt: now, ExpiresAt: now.Add(30 * time.Minute),
	}
	n, err := svc.IngestSessions(context.Background(), []models.Session{sess})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 stored session, got %d", n)
	}

	sess.Unit = "fortnights"
	if _, err := svc.IngestSessions(context.Background(), []models.Session{sess}); err == nil {
		t.Fatal("expected validation error for unknown unit")
	}
}
