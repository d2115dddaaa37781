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

	"github.com/gabrieli/tamhui/internal/api"
	"github.com/gabrieli/tamhui/internal/schema"
	"github.com/gabrieli/tamhui/internal/sse"
	"github.com/gabrieli/tamhui/internal/store"
	"github.com/gabrieli/tamhui/internal/watch"
)

// Run starts the application with the given options.
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
		slog.String("data_dir", cfg.Data.Dir),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Ensure the data layout exists; create empty table workbooks on first run.
	if err := bootstrapData(&cfg.Data, logger); err != nil {
		return fmt.Errorf("bootstrap data dir: %w", err)
	}

	// SSE broker.
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	// Build API service and router.
	paths := api.Paths{
		Families: cfg.Data.FamiliesPath(),
		History:  cfg.Data.HistoryPath(),
		Managers: cfg.Data.ManagersPath(),
		Reports:  cfg.Data.ReportsPath(),
		Holidays: cfg.Data.HolidaysPath(),
	}
	svc := api.NewService(paths, broker)
	apiRouter := api.NewRouter(svc, paths, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

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

	// Start file watcher with SSE callback.
	g.Go(func() error {
		watchCfg := watch.Config{
			DataDir:      cfg.Data.Dir,
			ReportsDir:   cfg.Data.ReportsPath(),
			FamiliesFile: cfg.Data.FamiliesFile,
			HistoryFile:  cfg.Data.HistoryFile,
			ManagersFile: cfg.Data.ManagersFile,
		}
		if err := watch.Watch(gCtx, watchCfg, logger, broker.PublishChange); err != nil {
			logger.Warn("watcher failed", slog.String("error", err.Error()))
		}
		return nil
	})

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

// bootstrapData creates the data directories and, on first run, the empty
// table workbooks. Existing files are never touched.
func bootstrapData(data *DataConfig, logger *slog.Logger) error {
	for _, dir := range []string{data.Dir, data.ReportsPath(), data.HolidaysPath()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	tables := []struct {
		path string
		sc   *schema.Schema
	}{
		{data.FamiliesPath(), schema.Families()},
		{data.HistoryPath(), schema.History()},
	}
	for _, tbl := range tables {
		if _, err := os.Stat(tbl.path); err == nil {
			continue
		} else if !errors.Is(err, os.ErrNotExist) {
			return err
		}
		if err := store.Create(tbl.path, tbl.sc); err != nil {
			return err
		}
		logger.Info("created table workbook", slog.String("path", tbl.path))
	}
	return nil
}
