// Package server wires the daemon: database, provider registry, stores,
// download pool, notification bus, and the HTTP surface.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"
	_ "modernc.org/sqlite"

	jellyfinadapter "github.com/vmunix/binge/internal/adapters/jellyfin"
	v1 "github.com/vmunix/binge/internal/api/v1"
	"github.com/vmunix/binge/internal/catalog"
	"github.com/vmunix/binge/internal/config"
	"github.com/vmunix/binge/internal/download"
	"github.com/vmunix/binge/internal/events"
	"github.com/vmunix/binge/internal/migrations"
	"github.com/vmunix/binge/internal/provider"
	"github.com/vmunix/binge/internal/splice"
	"github.com/vmunix/binge/internal/storage"
	"github.com/vmunix/binge/pkg/jellyfin"
)

// Runner owns the daemon lifecycle.
type Runner struct {
	cfg *config.Config
	log *slog.Logger
}

// NewRunner creates a runner for a validated config.
func NewRunner(cfg *config.Config, log *slog.Logger) *Runner {
	if log == nil {
		log = slog.Default()
	}
	return &Runner{cfg: cfg, log: log}
}

// Run starts the daemon and blocks until ctx is canceled. In-flight
// downloads are drained before it returns.
func (r *Runner) Run(ctx context.Context) error {
	if err := os.MkdirAll(filepath.Dir(r.cfg.Database.Path), 0o755); err != nil {
		return fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", r.cfg.Database.Path+"?_foreign_keys=on")
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer func() { _ = db.Close() }()

	if _, err := db.Exec(migrations.InitialSQL); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	registry, err := r.buildRegistry()
	if err != nil {
		return err
	}

	blobs, err := storage.NewDir(r.cfg.Storage.Root)
	if err != nil {
		return fmt.Errorf("storage: %w", err)
	}

	catalogStore := catalog.NewStore(db)
	resolver := catalog.NewResolver(catalogStore, r.log)
	downloadStore := download.NewStore(db)
	bus := events.NewBus(r.log)
	defer bus.Close()

	pool := download.NewPool(ctx, r.cfg.Download.Workers, r.cfg.Download.QueueDepth, r.log)
	defer pool.Shutdown()

	mux := http.NewServeMux()
	api := v1.New(v1.Deps{
		Registry:  registry,
		Catalog:   catalogStore,
		Resolver:  resolver,
		Downloads: downloadStore,
		Pool:      pool,
		Bus:       bus,
		Blobs:     blobs,
		Splicer:   splice.NewSplicer(blobs, r.log),
		Fetcher:   download.NewRetryClient(nil),
		Logger:    r.log,
	})
	api.RegisterRoutes(mux)

	addr := fmt.Sprintf("%s:%d", r.cfg.Server.Host, r.cfg.Server.Port)
	srv := &http.Server{Addr: addr, Handler: logRequests(mux, r.log)}

	r.log.Info("server starting",
		"addr", addr,
		"database", r.cfg.Database.Path,
		"storage", blobs.Root(),
		"providers", len(r.cfg.Providers),
		"workers", r.cfg.Download.Workers,
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		r.log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})
	return g.Wait()
}

// buildRegistry constructs the provider registry from configuration.
func (r *Runner) buildRegistry() (*provider.Registry, error) {
	descriptors := make([]provider.Descriptor, len(r.cfg.Providers))
	for i, p := range r.cfg.Providers {
		descriptors[i] = p.Descriptor()
	}

	log := r.log
	registry, err := provider.NewRegistry(descriptors, func(d provider.Descriptor) (provider.MediaProvider, error) {
		switch d.Type {
		case "jellyfin":
			client := jellyfin.New(d.URL, jellyfin.WithLogger(log))
			return jellyfinadapter.New(client, d.ExcludeLibraryIDs, log), nil
		default:
			return nil, fmt.Errorf("unsupported provider type %q", d.Type)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("registry: %w", err)
	}
	return registry, nil
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	if r.status == 200 {
		r.status = code
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
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
