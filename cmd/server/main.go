package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mehrab10/loopgram/backend/internal/router"
	"github.com/mehrab10/loopgram/backend/internal/scheduler"
	"github.com/mehrab10/loopgram/backend/internal/storage"
	"github.com/mehrab10/loopgram/backend/pkg/config"
	"github.com/mehrab10/loopgram/backend/pkg/firebase"
	"github.com/mehrab10/loopgram/backend/pkg/logger"
)

func main() {
	log := logger.NewLogger()
	cfg := config.Load()

	db, err := config.InitDB(cfg.PostgresConnStr)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}
	defer config.CloseDB(db)

	ctx := context.Background()

	store, err := storage.NewS3Storage(ctx, cfg)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize object storage")
	}

	// Federated login is optional; without credentials the Google endpoint
	// answers 503 and everything else works.
	var firebaseApp *firebase.App
	if app, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath); err != nil {
		log.WithError(err).Warn("firebase not configured, federated login disabled")
	} else {
		firebaseApp = app
	}

	deps := router.Deps{
		DB:        db,
		Store:     store,
		JWTSecret: cfg.JWTSecret,
		Log:       log,
	}
	if firebaseApp != nil {
		deps.FirebaseAuth = firebaseApp.AuthClient
	}

	e, clipRepo, err := router.New(deps)
	if err != nil {
		log.WithError(err).Fatal("failed to build router")
	}

	sweeper := scheduler.NewSweeper(clipRepo, log)
	if err := sweeper.Start(); err != nil {
		log.WithError(err).Fatal("failed to start clip expiry sweeper")
	}

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server stopped")
		}
	}()
	log.WithField("port", cfg.Port).Info("server started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	sweeper.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("server shutdown failed")
	}
}
