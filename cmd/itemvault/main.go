// Command itemvault runs the item tracking service: REST API plus the
// embedded browser frontend.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/itemvault/itemvault/internal/app/runtime"
	"github.com/itemvault/itemvault/pkg/logger"
)

func main() {
	// Missing .env is fine, the environment may already be populated.
	_ = godotenv.Load()

	log := logger.NewDefault("main")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	application, err := runtime.New(ctx)
	if err != nil {
		log.WithError(err).Error("failed to initialize application")
		os.Exit(1)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- application.Run()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.WithField("signal", sig.String()).Info("received shutdown signal")
	case err := <-errCh:
		if err != nil {
			log.WithError(err).Error("server error")
			os.Exit(1)
		}
		return
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := application.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("shutdown error")
		os.Exit(1)
	}
	log.Info("shutdown complete")
}
