/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the recurrence engine server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (file, environment, flags)
  2. Initialize structured logger
  3. Initialize SQLite store
  4. Create API handler with rules, calendar and plans
  5. Start materialization scheduler
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -config  YAML config path (default: recurrence.yaml, optional)
  -port    HTTP server port, overrides listen
  -db      SQLite database path, overrides db_path
           Use ":memory:" for in-memory database

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Stop the scheduler
  4. Close database connection

EXAMPLES:
  # Run with file database
  ./server -db="./data/recurrence.db"

  # Run with in-memory database
  ./server -db=":memory:"

  # Run on different port
  ./server -port=3000

ENVIRONMENT:
  RECURRENCE_LISTEN, RECURRENCE_DB_PATH, RECURRENCE_LOG_LEVEL, ...
  See config/config.go.

SEE ALSO:
  - config/config.go: Configuration sources
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/warp/recurrence-engine/api"
	"github.com/warp/recurrence-engine/config"
	"github.com/warp/recurrence-engine/factory"
	"github.com/warp/recurrence-engine/holiday"
	"github.com/warp/recurrence-engine/store/sqlite"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server failed", "err", err)
		os.Exit(1)
	}
}

func run() error {
	// Flags
	configPath := flag.String("config", "recurrence.yaml", "YAML config path")
	port := flag.Int("port", 0, "HTTP server port (overrides listen)")
	dbPath := flag.String("db", "", "SQLite database path (overrides db_path)")
	logJSON := flag.Bool("log-json", false, "Log as JSON")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *port != 0 {
		cfg.Listen = fmt.Sprintf(":%d", *port)
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}

	logger := newLogger(cfg.LogLevel, *logJSON)
	slog.SetDefault(logger)

	// Initialize store
	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	defer store.Close()

	// Initialize handler
	handler := api.NewHandler(store, factory.DefaultRegistry(), logger)
	handler.MaxRangeDays = cfg.MaxRangeDays
	handler.MaxRangePoints = cfg.MaxRangePoints
	if handler.Calendar, err = holiday.New(cfg.Calendar, store, logger); err != nil {
		return err
	}
	if err := handler.LoadPlans(cfg.Plans); err != nil {
		return fmt.Errorf("load plans: %w", err)
	}

	scheduler := api.NewMaterializationScheduler(handler.Calendar, cfg.MaterializeCron, cfg.HorizonYears, logger)
	if err := scheduler.Start(); err != nil {
		return err
	}
	defer scheduler.Stop()

	server := &http.Server{
		Addr:         cfg.Listen,
		Handler:      api.NewRouter(handler, cfg.AllowedOrigins),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", cfg.Listen, "db", cfg.DBPath, "calendar", cfg.Calendar)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
	}

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

func newLogger(level string, asJSON bool) *slog.Logger {
	lvl, err := config.ParseLevel(level)
	if err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if asJSON {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}
