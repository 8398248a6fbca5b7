// Package http provides the HTTP handlers and routing of the reference
// sync backend.
package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/wesigned/wesigned/internal/models"
)

// SyncService defines the ingestion operations required by the
// SyncHandler.
type SyncService interface {
	IngestAttendance(ctx context.Context, items []models.PendingChange) (int64, error)
	IngestSessions(ctx context.Context, items []models.Session) (int64, error)
	Attendance(ctx context.Context, codes []string) ([]models.SignIn, error)
}

// SyncHandler handles the offline-batch sync endpoints. Clients treat a
// batch as confirmed only on HTTP 200 with {"success": true}; any other
// answer leaves their queue untouched for the next pass.
type SyncHandler struct {
	SyncService SyncService
	Log         *zap.Logger
}

type syncResult struct {
	Success  bool   `json:"success"`
	Inserted int64  `json:"inserted,omitempty"`
	Message  string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// SyncAttendance handles POST /api/sync/attendance.
func (h *SyncHandler) SyncAttendance(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Items []models.PendingChange `json:"items"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, syncResult{Message: "invalid body"})
		return
	}

	inserted, err := h.SyncService.IngestAttendance(r.Context(), req.Items)
	if err != nil {
		h.Log.Warn("attendance ingest failed", zap.Int("items", len(req.Items)), zap.Error(err))
		writeJSON(w, http.StatusUnprocessableEntity, syncResult{Message: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, syncResult{Success: true, Inserted: inserted})
}

// SyncSessions handles POST /api/sync/sessions.
func (h *SyncHandler) SyncSessions(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Items []models.Session `json:"items"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, syncResult{Message: "invalid body"})
		return
	}

	inserted, err := h.SyncService.IngestSessions(r.Context(), req.Items)
	if err != nil {
		h.Log.Warn("session ingest failed", zap.Int("items", len(req.Items)), zap.Error(err))
		writeJSON(w, http.StatusUnprocessableEntity, syncResult{Message: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, syncResult{Success: true, Inserted: inserted})
}

// Attendance handles GET /api/attendance?codes=a,b and returns the
// stored sign-ins of the named sessions.
func (h *SyncHandler) Attendance(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("codes")
	if raw == "" {
		writeJSON(w, http.StatusBadRequest, syncResult{Message: "codes query parameter required"})
		return
	}
	items, err := h.SyncService.Attendance(r.Context(), strings.Split(raw, ","))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, syncResult{Message: "internal error"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "items": items})
}
