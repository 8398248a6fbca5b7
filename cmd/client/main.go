// Package main starts the WeSigned offline client agent: local store,
// credential vault, pending-write queue, sync coordinator, connectivity
// watcher, and the pending-user activation sweeper. Everything is
// constructed here once and passed by reference; there is no ambient
// global state.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	nethttp "net/http"

	"go.uber.org/zap"

	"github.com/wesigned/wesigned/internal/client/auth"
	"github.com/wesigned/wesigned/internal/client/notify"
	"github.com/wesigned/wesigned/internal/client/queue"
	"github.com/wesigned/wesigned/internal/client/store"
	"github.com/wesigned/wesigned/internal/client/sweeper"
	"github.com/wesigned/wesigned/internal/client/syncer"
	"github.com/wesigned/wesigned/internal/client/vault"
	"github.com/wesigned/wesigned/internal/config"
	"github.com/wesigned/wesigned/internal/logger"
	"github.com/wesigned/wesigned/internal/models"
)

func main() {
	log := logger.New()
	defer func() { _ = log.Log.Sync() }()

	options, err := config.ParseClient(os.Args[1:])
	if err != nil {
		// Includes the missing-secret case: the agent refuses to start
		// rather than fall back to a known key.
		log.Log.Fatal("invalid configuration", zap.Error(err))
	}
	if err := log.Init(options.LogLevel); err != nil {
		log.Log.Fatal("failed to init logger", zap.Error(err))
	}
	zapLogger := log.Log

	st, err := store.Open(options.StorePath, store.Version, models.Collections)
	if err != nil {
		zapLogger.Fatal("cannot open local store", zap.Error(err))
	}
	v, err := vault.New(options.SecretKey)
	if err != nil {
		zapLogger.Fatal("cannot init credential vault", zap.Error(err))
	}

	notifier := &notify.LogNotifier{Log: zapLogger}
	q := queue.New(st)
	accounts := auth.New(st, v, zapLogger)

	httpClient := &nethttp.Client{Timeout: 30 * time.Second}
	coordinator := syncer.New(httpClient, st, q, notifier, zapLogger, syncer.Config{
		BaseURL:            options.ServerAddress,
		ClearHistoryOnSync: options.ClearHistoryOnSync,
		Token:              accounts.Token,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	coordinator.StartAutoSync(ctx, options.SyncInterval)
	coordinator.WatchOnline(ctx, 10*time.Second)
	sweeper.New(st, notifier, zapLogger).Start(ctx, options.SweepInterval)

	zapLogger.Info("client agent running",
		zap.String("store", options.StorePath),
		zap.String("server", options.ServerAddress),
	)
	<-ctx.Done()
	zapLogger.Info("client agent stopped")
}
