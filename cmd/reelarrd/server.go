package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	_ "modernc.org/sqlite"

	v1 "github.com/vmunix/reelarr/internal/api/v1"
	"github.com/vmunix/reelarr/internal/archive"
	"github.com/vmunix/reelarr/internal/catalog"
	"github.com/vmunix/reelarr/internal/config"
	"github.com/vmunix/reelarr/internal/importer"
	"github.com/vmunix/reelarr/internal/migrations"
	"github.com/vmunix/reelarr/internal/resolve"
)

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	if r.status == 200 { // Only capture first WriteHeader call
		r.status = code
	}
	r.ResponseWriter.WriteHeader(code)
}

func logRequests(next http.Handler, log *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusRecorder{ResponseWriter: w, status: 200}
		next.ServeHTTP(wrapped, r)
		log.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapped.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

func runServer(configPath string) error {
	// Load config
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	// Create logger
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Server.LogLevel),
	}))

	// Ensure database directory exists
	dbDir := filepath.Dir(cfg.Database.Path)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return fmt.Errorf("create db dir: %w", err)
	}

	// Open database
	db, err := sql.Open("sqlite", cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer func() { _ = db.Close() }()

	// Run migrations
	if _, err := db.Exec(migrations.InitialSQL); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	// === Stores (always created) ===
	catalogStore := catalog.NewStore(db)
	historyStore := catalog.NewHistoryStore(db)

	// === Archive gateway ===
	archiveClient := archive.NewClient(
		archive.WithBaseURL(cfg.Archive.URL),
		archive.WithHTTPClient(&http.Client{Timeout: time.Duration(cfg.Archive.TimeoutSeconds) * time.Second}),
		archive.WithLogger(logger),
	)

	// === Poster resolution chain (providers optional) ===
	var providers []resolve.Provider
	if cfg.Providers.OMDb != nil {
		var opts []resolve.OMDbOption
		if cfg.Providers.OMDb.URL != "" {
			opts = append(opts, resolve.WithOMDbBaseURL(cfg.Providers.OMDb.URL))
		}
		providers = append(providers, resolve.NewOMDb(cfg.Providers.OMDb.APIKey, opts...))
	}
	if cfg.Providers.TMDB != nil {
		var opts []resolve.TMDBOption
		if cfg.Providers.TMDB.URL != "" {
			opts = append(opts, resolve.WithTMDBBaseURL(cfg.Providers.TMDB.URL))
		}
		if cfg.Providers.TMDB.MinScore > 0 {
			opts = append(opts, resolve.WithTMDBMinScore(cfg.Providers.TMDB.MinScore))
		}
		providers = append(providers, resolve.NewTMDB(cfg.Providers.TMDB.APIKey, opts...))
	}
	if cfg.Providers.Wikipedia != nil && cfg.Providers.Wikipedia.Enabled {
		var opts []resolve.WikipediaOption
		if cfg.Providers.Wikipedia.URL != "" {
			opts = append(opts, resolve.WithWikipediaBaseURL(cfg.Providers.Wikipedia.URL))
		}
		providers = append(providers, resolve.NewWikipedia(opts...))
	}
	chain := resolve.NewChain(logger, providers...)

	// === Importer ===
	imp := importer.New(archiveClient, chain, catalogStore, historyStore, logger, importer.Config{
		Workers:                 cfg.Import.Workers,
		Retries:                 cfg.Import.Retries,
		AllowSecondaryContainer: cfg.Import.AllowSecondaryContainer,
	})

	// === HTTP Setup ===
	mux := http.NewServeMux()

	apiV1, err := v1.New(v1.ServerDeps{
		Catalog:  catalogStore,
		History:  historyStore,
		Importer: imp,
	}, logger, version)
	if err != nil {
		return fmt.Errorf("api: %w", err)
	}
	apiV1.RegisterRoutes(mux)

	// Start server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("server starting",
		"addr", addr,
		"database", cfg.Database.Path,
		"archive", cfg.Archive.URL,
		"providers", len(providers),
		"workers", cfg.Import.Workers,
		"log_level", cfg.Server.LogLevel,
	)

	srv := &http.Server{Addr: addr, Handler: logRequests(mux, logger)}

	// Start server in goroutine
	go func() {
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("received signal, shutting down", "signal", sig.String())

	// Graceful HTTP shutdown with 30s timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}
