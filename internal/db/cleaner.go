package db

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"
)

// StartRetentionCleaner removes attendance rows whose session expired
// longer than retention ago, on the given interval.
func StartRetentionCleaner(
	ctx context.Context,
	db *sql.DB,
	interval time.Duration,
	retention time.Duration,
	log *zap.Logger,
) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				cutoff := time.Now().Add(-retention)
				res, err := db.ExecContext(ctx, `
                    DELETE FROM attendance_signins
                     WHERE session_code IN (
                           SELECT code FROM attendance_sessions
                            WHERE expires_at < $1)
                `, cutoff)
				if err != nil {
					log.Error("failed to clean expired sign-ins", zap.Error(err))
					continue
				}
				if rows, _ := res.RowsAffected(); rows > 0 {
					log.Info("cleaned expired sign-ins", zap.Int64("removed", rows))
				}
				if _, err := db.ExecContext(ctx, `
                    DELETE FROM attendance_sessions WHERE expires_at < $1
                `, cutoff); err != nil {
					log.Error("failed to clean expired sessions", zap.Error(err))
				}
			}
		}
	}()
}
