// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/mimir/internal/api"
	"github.com/starford/mimir/internal/backup"
	"github.com/starford/mimir/internal/capture"
	"github.com/starford/mimir/internal/mcpserver"
	"github.com/starford/mimir/internal/schedule"
	"github.com/starford/mimir/internal/sse"
	"github.com/starford/mimir/internal/store"
	"github.com/starford/mimir/internal/suggest"
	"github.com/starford/mimir/internal/trackerservice"
)

func buildService(cfg *Config, logger *slog.Logger, broker *sse.Broker) (*trackerservice.Service, *store.DB, error) {
	db, err := store.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}

	archive, err := backup.NewArchive(cfg.Backup.Dir)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("init backup archive: %w", err)
	}

	opts := []trackerservice.Option{
		trackerservice.WithArchive(archive),
		trackerservice.WithRetention(cfg.Review.RetentionDays),
	}
	if broker != nil {
		opts = append(opts, trackerservice.WithEvents(broker))
	}
	if cfg.Suggest.Enabled() {
		client, err := suggest.NewClient(suggest.Config{
			APIKey:  cfg.Suggest.APIKey,
			Model:   cfg.Suggest.Model,
			BaseURL: cfg.Suggest.BaseURL,
		})
		if err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("init suggest client: %w", err)
		}
		opts = append(opts, trackerservice.WithSuggester(client))
	} else {
		logger.Info("Topic suggestions disabled (no API key configured)")
	}

	engine := schedule.NewEngine(cfg.Review.Intervals)
	return trackerservice.NewService(db, engine, opts...), db, nil
}

// Run starts the HTTP application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("backup_dir", cfg.Backup.Dir),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// SSE broker.
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	svc, db, err := buildService(cfg, logger, broker)
	if err != nil {
		return err
	}
	defer db.Close()

	// Drop archived items past the retention window before serving.
	if removed, err := svc.SweepArchived(ctx); err != nil {
		logger.Warn("archive sweep failed", slog.String("error", err.Error()))
	} else if len(removed) > 0 {
		logger.Info("Archive sweep removed expired items", slog.Int("count", len(removed)))
	}

	apiRouter := api.NewRouter(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	g, gCtx := errgroup.WithContext(ctx)

	// Start the quick-capture watcher when configured.
	if cfg.Capture.Enabled() {
		g.Go(func() error {
			if err := capture.Watch(gCtx, cfg.Capture.Path, svc, logger); err != nil {
				logger.Warn("capture watcher stopped", slog.String("error", err.Error()))
			}
			return nil
		})
	}

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// RunMCP starts the MCP stdio server instead of the HTTP server. Logs go
// to stderr so stdout stays clean for the protocol stream.
func RunMCP(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	svc, db, err := buildService(cfg, logger, nil)
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := svc.SweepArchived(ctx); err != nil {
		logger.Warn("archive sweep failed", slog.String("error", err.Error()))
	}

	return mcpserver.New(svc).ServeStdio()
}
