package http

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/wesigned/wesigned/internal/middleware"
)

// NewRouter builds the backend's HTTP handler.
//
// Routes:
//
//	GET  /api/health          → connectivity probe, always 200
//	POST /api/register        → AuthHandler.Register
//	POST /api/login           → AuthHandler.Login
//	POST /api/sync/attendance → SyncHandler.SyncAttendance (bearer auth)
//	POST /api/sync/sessions   → SyncHandler.SyncSessions   (bearer auth)
//	GET  /api/attendance      → SyncHandler.Attendance     (bearer auth)
func NewRouter(
	authHandler *AuthHandler,
	syncHandler *SyncHandler,
	jwtSecret string,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.WithRequestLogging(logger))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"success": true})
		})

		// Public endpoints
		r.Group(func(r chi.Router) {
			r.Use(chiMiddleware.AllowContentType("application/json"))
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
		})

		// Protected group: requires a valid session token
		r.Group(func(r chi.Router) {
			r.Use(middleware.BearerAuth(jwtSecret))
			r.Post("/sync/attendance", syncHandler.SyncAttendance)
			r.Post("/sync/sessions", syncHandler.SyncSessions)
			r.Get("/attendance", syncHandler.Attendance)
		})
	})

	return r
}
