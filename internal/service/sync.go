// Package service provides business-logic services for account
// management and attendance ingestion, delegating persistence to
// repository interfaces.
package service

import (
	"context"
	"fmt"

	"github.com/wesigned/wesigned/internal/models"
)

// SyncRepository defines the persistence operations needed by the
// SyncService.
type SyncRepository interface {
	// UpsertSignIns ingests a sign-in batch idempotently and returns the
	// number of new rows.
	UpsertSignIns(ctx context.Context, items []models.SignIn) (int64, error)
	// UpsertSessions ingests a session batch idempotently and returns the
	// number of new rows.
	UpsertSessions(ctx context.Context, items []models.Session) (int64, error)
	// SignInsForSessions returns the stored sign-ins for the given codes.
	SignInsForSessions(ctx context.Context, codes []string) ([]models.SignIn, error)
}

// SyncService ingests offline batches pushed by clients. Clients deliver
// at least once; every ingest path must tolerate redelivery.
type SyncService struct {
	repo SyncRepository
}

// NewSyncService constructs a SyncService with the provided repository.
func NewSyncService(repo SyncRepository) *SyncService {
	return &SyncService{repo: repo}
}

// IngestAttendance validates and stores a pending sign-in batch. The
// items arrive as the client's pending entries ({type, payload}); only
// sign-in changes are accepted. Returns the number of newly stored rows.
func (s *SyncService) IngestAttendance(ctx context.Context, items []models.PendingChange) (int64, error) {
	signins := make([]models.SignIn, 0, len(items))
	for i := range items {
		if err := items[i].Validate(); err != nil {
			return 0, fmt.Errorf("item %d: %w", i, err)
		}
		signins = append(signins, items[i].Payload)
	}
	return s.repo.UpsertSignIns(ctx, signins)
}

// IngestSessions validates and stores a lecturer-session batch.
func (s *SyncService) IngestSessions(ctx context.Context, items []models.Session) (int64, error) {
	for i := range items {
		if err := items[i].Validate(); err != nil {
			return 0, fmt.Errorf("item %d: %w", i, err)
		}
	}
	return s.repo.UpsertSessions(ctx, items)
}

// Attendance returns stored sign-ins for the given session codes.
func (s *SyncService) Attendance(ctx context.Context, codes []string) ([]models.SignIn, error) {
	return s.repo.SignInsForSessions(ctx, codes)
}
