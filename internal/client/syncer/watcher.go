package syncer

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// WatchOnline polls the backend health endpoint and fires a foreground
// sync on every offline-to-online transition. This is the second trigger
// source racing the background loop; the channel claims keep the race
// from double-sending a batch.
func (c *Coordinator) WatchOnline(ctx context.Context, probeInterval time.Duration) {
	go func() {
		online := false
		ticker := time.NewTicker(probeInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}

			up := c.probe(ctx)
			if up && !online {
				c.log.Info("connectivity restored, triggering sync")
				if err := c.SyncAll(ctx); err != nil {
					c.log.Warn("online-trigger sync failed", zap.Error(err))
				}
			}
			online = up
		}
	}()
}

func (c *Coordinator) probe(ctx context.Context) bool {
	probeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(probeCtx, http.MethodGet, c.cfg.BaseURL+"/api/health", nil)
	if err != nil {
		return false
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
