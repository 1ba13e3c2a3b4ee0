// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/flowstate/internal/api"
	"github.com/starford/flowstate/internal/artifact"
	"github.com/starford/flowstate/internal/checksum"
	"github.com/starford/flowstate/internal/events"
	"github.com/starford/flowstate/internal/mcpserver"
	"github.com/starford/flowstate/internal/pipeline"
	"github.com/starford/flowstate/internal/query"
	"github.com/starford/flowstate/internal/sse"
)

func setup(defaultOutput io.Writer, opts []Option) (*Config, *slog.Logger, error) {
	app := &application{logOutput: defaultOutput}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return nil, nil, fmt.Errorf("config is required")
	}

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(app.logOutput, &slog.HandlerOptions{
		Level: app.config.App.LogLevel,
	}))
	slog.SetDefault(logger)

	return app.config, logger, nil
}

func (c *Config) inputs() pipeline.Inputs {
	return pipeline.Inputs{
		ConsumptionCSV: c.Ingest.ConsumptionCSV,
		CommitsCSV:     c.Ingest.CommitsCSV,
	}
}

func newQueryStack(cfg *Config, logger *slog.Logger) (*artifact.Store, *artifact.Cache, *query.Dispatcher, error) {
	store, err := artifact.NewStore(cfg.Artifact.Path)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("init artifact store: %w", err)
	}
	cache := artifact.NewCache(store, logger)
	disp, err := query.NewDispatcher(query.NewService(cache, cfg.QueryServiceConfig()), logger)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("init query dispatcher: %w", err)
	}
	return store, cache, disp, nil
}

// Run starts the HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	cfg, logger, err := setup(os.Stdout, opts)
	if err != nil {
		return err
	}

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("artifact_path", cfg.Artifact.Path),
		slog.Bool("watch", cfg.Ingest.Watch),
		slog.String("log_level", cfg.App.LogLevel.String()))

	store, cache, disp, err := newQueryStack(cfg, logger)
	if err != nil {
		return err
	}

	// Load eagerly so readiness reflects the artifact on disk. A failure is
	// recorded in the cache and served as an error body until a reload.
	if snap, err := cache.Get(); err != nil {
		logger.Warn("artifact not loaded", slog.String("error", err.Error()))
	} else {
		logger.Info("artifact loaded",
			slog.String("snapshot", snap.ID.String()),
			slog.Int("timeline_days", len(snap.Artifact.Timeline)))
	}

	// SSE broker.
	broker := sse.NewBroker(15 * time.Second)
	defer broker.Close()

	h := api.NewHandler(disp, cache, store, broker, logger)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Mount("/", api.NewRouter(h, cfg.Origins()))

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Rebuild the artifact when the input CSVs change. The query cache is
	// left alone; dashboards refetch the file on artifact.built.
	if cfg.Ingest.Watch {
		db, err := events.Open(cfg.Ingest.SQLitePath)
		if err != nil {
			return fmt.Errorf("init event store: %w", err)
		}
		defer db.Close()

		files := []string{cfg.Ingest.ConsumptionCSV, cfg.Ingest.CommitsCSV}
		g.Go(func() error {
			err := pipeline.Watch(gCtx, files, cfg.Ingest.Debounce, logger, func(ctx context.Context) {
				a, err := pipeline.Run(ctx, db, cfg.inputs(), store, logger)
				if err != nil {
					logger.Error("watcher: rebuild failed", slog.String("error", err.Error()))
					return
				}
				info := sse.ArtifactInfo{TimelineDays: len(a.Timeline)}
				if raw, err := store.Raw(); err == nil {
					info.Checksum = checksum.Sum(raw)
				}
				broker.PublishArtifact(sse.EventArtifactBuilt, info)
			})
			if err != nil {
				// Serving continues without live rebuilds.
				logger.Error("watcher: stopped", slog.String("error", err.Error()))
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

	// Handle shutdown and reload signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
		defer signal.Stop(quit)

	wait:
		for {
			select {
			case sig := <-quit:
				if sig == syscall.SIGHUP {
					reloadOnSignal(cache, broker, logger)
					continue
				}
				logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
				break wait
			case <-gCtx.Done():
				logger.Info("Context cancelled, initiating shutdown")
				break wait
			}
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

func reloadOnSignal(cache *artifact.Cache, broker *sse.Broker, logger *slog.Logger) {
	snap, err := cache.Reload()
	if err != nil {
		logger.Error("SIGHUP reload failed",
			slog.String("state", cache.State().String()),
			slog.String("error", err.Error()))
		return
	}
	logger.Info("SIGHUP reload complete", slog.String("snapshot", snap.ID.String()))
	broker.PublishArtifact(sse.EventArtifactReloaded, sse.ArtifactInfo{
		Checksum:     snap.Checksum,
		SnapshotID:   snap.ID.String(),
		TimelineDays: len(snap.Artifact.Timeline),
	})
}

// RunMCP serves the query catalogue over MCP on stdin/stdout. Logs go to
// stderr so stdout stays the protocol channel.
func RunMCP(ctx context.Context, opts ...Option) error {
	cfg, logger, err := setup(os.Stderr, opts)
	if err != nil {
		return err
	}

	_, cache, disp, err := newQueryStack(cfg, logger)
	if err != nil {
		return err
	}

	logger.Info("MCP server starting", slog.String("artifact_path", cfg.Artifact.Path))

	srv := mcpserver.New(disp, cache, logger)
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ServeStdio() }()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("mcp server: %w", err)
		}
		return nil
	case <-ctx.Done():
		return nil
	}
}

// RunBuild imports the input CSVs and writes a fresh artifact.
func RunBuild(ctx context.Context, opts ...Option) error {
	cfg, logger, err := setup(os.Stdout, opts)
	if err != nil {
		return err
	}

	store, err := artifact.NewStore(cfg.Artifact.Path)
	if err != nil {
		return fmt.Errorf("init artifact store: %w", err)
	}

	db, err := events.Open(cfg.Ingest.SQLitePath)
	if err != nil {
		return fmt.Errorf("init event store: %w", err)
	}
	defer db.Close()

	a, err := pipeline.Run(ctx, db, cfg.inputs(), store, logger)
	if err != nil {
		return err
	}

	logger.Info("Artifact written",
		slog.String("path", store.Path()),
		slog.Int("timeline_days", len(a.Timeline)),
		slog.String("best_pattern", string(a.Insights.BestPattern)))
	return nil
}
