// main is the entry point of the Students API application.
//
// STARTUP SEQUENCE:
//  1. Load configuration from a YAML file
//  2. Initialise the logger
//  3. Open the record store (memory or SQLite) and seed it
//  4. Build the router and request pipeline
//  5. Start the HTTP server in a separate goroutine
//  6. Block the main goroutine until an OS signal (Ctrl+C / kill) arrives
//  7. Gracefully shut down: finish in-flight requests, then exit
//
// RUNNING THE SERVER:
//
//	go run ./cmd/students-api --config=config/local.yaml
//
// or (with the environment variable):
//
//	CONFIG_PATH=config/local.yaml go run ./cmd/students-api
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/aanand-mishra/students-crud/internal/config"
	"github.com/aanand-mishra/students-crud/internal/http/router"
	"github.com/aanand-mishra/students-crud/internal/storage"
	"github.com/aanand-mishra/students-crud/internal/storage/memory"
	"github.com/aanand-mishra/students-crud/internal/storage/sqlite"
)

const version = "1.0.0"

func main() {
	// ── 1. Load Config ────────────────────────────────────────────────────
	cfg := config.MustLoad()

	// ── 2. Initialise Logger ──────────────────────────────────────────────
	// Installed as the default so handlers can log with slog.Info directly.
	log := setupLogger(cfg.Env)
	slog.SetDefault(log)

	log.Info("starting students-api",
		slog.String("env", cfg.Env),
		slog.String("version", version),
		slog.String("api_version", cfg.APIVersion),
	)

	// ── 3. Initialise Storage ─────────────────────────────────────────────
	store, closeStore, err := openStorage(cfg)
	if err != nil {
		log.Error("failed to initialise storage",
			slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer closeStore()

	log.Info("storage initialised",
		slog.String("driver", cfg.StorageDriver),
		slog.String("path", cfg.StoragePath))

	// ── 4. Router + Server ────────────────────────────────────────────────
	server := &http.Server{
		Addr:         cfg.HTTPServer.Addr,
		Handler:      router.New(store, cfg.APIVersion, log),
		ReadTimeout:  cfg.HTTPServer.ReadTimeout,
		WriteTimeout: cfg.HTTPServer.WriteTimeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	// ── 5. Start Server in a Goroutine ────────────────────────────────────
	go func() {
		log.Info("server started", slog.String("address", cfg.HTTPServer.Addr))

		// ListenAndServe returns http.ErrServerClosed when Shutdown() is
		// called. That's expected, not an error.
		if err := server.ListenAndServe(); err != nil &&
			!errors.Is(err, http.ErrServerClosed) {
			log.Error("server encountered an error",
				slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// ── 6. Wait for Shutdown Signal ───────────────────────────────────────
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)
	<-done

	log.Info("shutdown signal received, stopping server...")

	// ── 7. Graceful Shutdown ──────────────────────────────────────────────
	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTPServer.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("failed to shutdown server gracefully",
			slog.String("error", err.Error()))
		return
	}

	log.Info("server stopped gracefully")
}

// openStorage builds the configured store, seeds it if needed, and returns
// a close func for main to defer.
func openStorage(cfg *config.Config) (storage.Storage, func() error, error) {
	switch cfg.StorageDriver {
	case config.DriverSQLite:
		db, err := sqlite.New(cfg)
		if err != nil {
			return nil, nil, err
		}

		// A file that already holds students is not seeded again, which
		// would collide on email anyway.
		empty, err := db.IsEmpty()
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		if empty && !cfg.DisableSeed {
			if err := storage.Seed(db, storage.SeedStudents()); err != nil {
				db.Close()
				return nil, nil, err
			}
		}
		return db, db.Close, nil

	case config.DriverMemory:
		store := memory.New()
		if !cfg.DisableSeed {
			if err := storage.Seed(store, storage.SeedStudents()); err != nil {
				return nil, nil, err
			}
		}
		return store, func() error { return nil }, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

// setupLogger returns a *slog.Logger configured for the given environment.
//
// Development (dev): human-readable text output at DEBUG level.
// Production (prod): machine-readable JSON output at INFO level.
func setupLogger(env string) *slog.Logger {
	switch env {
	case "prod":
		return slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelInfo,
			}),
		)
	case "staging":
		return slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelDebug,
			}),
		)
	default: // "dev" and anything unrecognised
		return slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelDebug,
			}),
		)
	}
}
