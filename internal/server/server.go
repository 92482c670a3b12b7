// Package server wires configuration, storage, services and handlers into
// an HTTP server, and owns its lifecycle.
//
// COMPOSITION ROOT:
//
//	config.Config
//	  → sqldb.DB (users, albums, songs tables)
//	  → service.CRUD[T], service.Gate, service.Accounts
//	  → handler.UserHandler, AlbumHandler, SongHandler
//	  → chi router
//
// Each layer only receives what it needs: services get repository
// interfaces, handlers get services. Nothing below this package knows about
// configuration.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/sakif/media-catalog/internal/auth"
	"github.com/sakif/media-catalog/internal/config"
	"github.com/sakif/media-catalog/internal/media"
	"github.com/sakif/media-catalog/internal/repository/sqldb"
)

const shutdownTimeout = 30 * time.Second

// Server owns the database connection and the HTTP handler tree.
type Server struct {
	handler http.Handler
	config  *config.Config
	logger  *slog.Logger
	db      *sqldb.DB
}

// OpenDatabase connects to the configured database and creates the schema.
// For SQLite the parent directory of the file is created first.
func OpenDatabase(ctx context.Context, cfg config.DatabaseConfig) (*sqldb.DB, error) {
	dialect, err := sqldb.ParseDialect(cfg.Driver)
	if err != nil {
		return nil, err
	}

	if dialect == sqldb.SQLite && cfg.URL != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.URL), 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sqldb.Open(ctx, sqldb.Options{
		Dialect:      dialect,
		DSN:          cfg.URL,
		MaxOpenConns: cfg.MaxOpenConns,
	})
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// New opens the database and builds the router.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Server, error) {
	db, err := OpenDatabase(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	deps, err := dependencies(cfg, db, logger)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Server{
		handler: NewRouter(deps),
		config:  cfg,
		logger:  logger,
		db:      db,
	}, nil
}

func dependencies(cfg *config.Config, db *sqldb.DB, logger *slog.Logger) (Dependencies, error) {
	tokens, err := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL.Duration)
	if err != nil {
		return Dependencies{}, fmt.Errorf("creating token service: %w", err)
	}

	store, err := media.NewStore(cfg.Media.Root, cfg.Media.BaseURL, cfg.Media.MaxUploadBytes, logger)
	if err != nil {
		return Dependencies{}, fmt.Errorf("creating media store: %w", err)
	}

	return Dependencies{
		DB:           db,
		Media:        store,
		Tokens:       tokens,
		Passwords:    auth.NewPasswordService(),
		CORSOrigins:  cfg.CORS.AllowedOrigins,
		CookieSecure: cfg.Auth.CookieSecure,
		Logger:       logger,
	}, nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start serves HTTP until ctx is cancelled, then drains in-flight requests
// for up to 30 seconds and closes the database.
func (s *Server) Start(ctx context.Context) error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.config.Server.Port),
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second, // uploads
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Server.Port),
			slog.String("database", string(s.db.Dialect())),
			slog.String("media_root", s.config.Media.Root),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case <-ctx.Done():
		s.logger.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
