// Package runtime assembles configuration, storage and the HTTP server into
// a runnable application.
package runtime

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	_ "github.com/lib/pq"

	"github.com/itemvault/itemvault/internal/app"
	"github.com/itemvault/itemvault/internal/app/httpapi"
	"github.com/itemvault/itemvault/internal/app/services/auth"
	"github.com/itemvault/itemvault/internal/app/storage/memory"
	"github.com/itemvault/itemvault/internal/app/storage/postgres"
	"github.com/itemvault/itemvault/internal/config"
	"github.com/itemvault/itemvault/internal/middleware"
	"github.com/itemvault/itemvault/internal/platform/migrations"
	"github.com/itemvault/itemvault/pkg/logger"
)

// Application is the fully wired process: config, stores, services, server.
type Application struct {
	cfg    *config.Config
	logger *logger.Logger
	db     *sql.DB
	server *http.Server
}

// New loads configuration and wires every layer. The returned application is
// ready for Run.
func New(ctx context.Context) (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return NewWithConfig(ctx, cfg)
}

// NewWithConfig wires the application around an already loaded configuration.
func NewWithConfig(ctx context.Context, cfg *config.Config) (*Application, error) {
	log := logger.New(logger.LoggingConfig{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Output:     cfg.Logging.Output,
		FilePrefix: cfg.Logging.FilePrefix,
	}).WithField("component", "runtime")

	tokens, err := auth.NewTokenManager(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLSeconds)*time.Second, cfg.Auth.Issuer)
	if err != nil {
		return nil, fmt.Errorf("token manager: %w", err)
	}

	stores, db, err := openStores(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	application := app.New(stores, tokens, log)
	handler := httpapi.New(application, httpapi.Options{
		BasePath:       cfg.Server.BasePath,
		AllowedOrigins: cfg.Server.AllowedOrigins(),
		RateLimit: middleware.RateLimitConfig{
			RequestsPerSecond: float64(cfg.RateLimit.RequestsPerSecond),
			Burst:             cfg.RateLimit.Burst,
			TrustProxy:        cfg.RateLimit.TrustProxy,
		},
		ServeFrontend: true,
		Logger:        log.WithField("component", "httpapi"),
	})

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeoutSeconds) * time.Second,
	}

	return &Application{cfg: cfg, logger: log, db: db, server: server}, nil
}

// openStores selects the storage backend. An empty DSN runs everything in
// memory, which loses data on restart.
func openStores(ctx context.Context, cfg *config.Config, log *logger.Logger) (app.Stores, *sql.DB, error) {
	if cfg.Database.DSN == "" {
		log.Warn("DATABASE_DSN not set, using in-memory storage")
		mem := memory.New()
		return app.Stores{Users: mem, Items: mem}, nil, nil
	}

	db, err := sql.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return app.Stores{}, nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return app.Stores{}, nil, fmt.Errorf("ping database: %w", err)
	}

	if err := migrations.Apply(ctx, db); err != nil {
		db.Close()
		return app.Stores{}, nil, fmt.Errorf("apply migrations: %w", err)
	}

	store := postgres.New(db)
	return app.Stores{Users: store, Items: store}, db, nil
}

// Run serves HTTP until the listener fails or Shutdown is called.
func (a *Application) Run() error {
	a.logger.WithField("addr", a.server.Addr).Info("starting HTTP server")
	if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests and releases resources.
func (a *Application) Shutdown(ctx context.Context) error {
	a.logger.Info("shutting down")
	err := a.server.Shutdown(ctx)
	if a.db != nil {
		if closeErr := a.db.Close(); err == nil {
			err = closeErr
		}
	}
	return err
}
