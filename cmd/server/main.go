// Package main starts the WeSigned reference sync backend: config,
// logging, database, repositories, services, handlers, HTTP server.
package main

import (
	"context"
	"os"
	"time"

	nethttp "net/http"

	"go.uber.org/zap"

	"github.com/wesigned/wesigned/internal/config"
	"github.com/wesigned/wesigned/internal/db"
	"github.com/wesigned/wesigned/internal/logger"
	"github.com/wesigned/wesigned/internal/repository"
	"github.com/wesigned/wesigned/internal/server/handler/http"
	"github.com/wesigned/wesigned/internal/service"
)

func main() {
	log := logger.New()
	defer func() { _ = log.Log.Sync() }()

	options, err := config.ParseServer(os.Args[1:])
	if err != nil {
		log.Log.Fatal("invalid configuration", zap.Error(err))
	}
	if err := log.Init(options.LogLevel); err != nil {
		log.Log.Fatal("failed to init logger", zap.Error(err))
	}
	zapLogger := log.Log

	postgresDB, err := db.InitPostgres(options.DatabaseDSN)
	if err != nil {
		zapLogger.Fatal("cannot init database", zap.Error(err))
	}

	db.StartRetentionCleaner(context.Background(), postgresDB,
		time.Hour,       // interval
		90*24*time.Hour, // retention: 90 days
		zapLogger,
	)

	authRepo := repository.NewPostgresAuthRepository(postgresDB)
	syncRepo := repository.NewPostgresSyncRepository(postgresDB)

	authService := service.NewAuthService(authRepo, options.JWTSecret, options.JWTIssuer, options.TokenTTL)
	syncService := service.NewSyncService(syncRepo)

	authHandler := &http.AuthHandler{AuthService: authService}
	syncHandler := &http.SyncHandler{SyncService: syncService, Log: zapLogger}

	router := http.NewRouter(authHandler, syncHandler, options.JWTSecret, zapLogger)

	server := &nethttp.Server{
		Addr:    options.Addr,
		Handler: router,
	}

	zapLogger.Info("starting HTTP server", zap.String("addr", options.Addr))
	if err := server.ListenAndServe(); err != nil {
		zapLogger.Fatal("failed to start HTTP server", zap.Error(err))
	}
}
