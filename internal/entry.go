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

	"github.com/starford/partitura/internal/api"
	"github.com/starford/partitura/internal/index"
	"github.com/starford/partitura/internal/mcpserver"
	"github.com/starford/partitura/internal/musicxml"
	"github.com/starford/partitura/internal/scoreservice"
	"github.com/starford/partitura/internal/sse"
	"github.com/starford/partitura/internal/storage"
)

// library bundles the components shared by the HTTP and MCP entry points.
type library struct {
	store storage.Provider
	db    *index.DB
	im    *musicxml.Importer
	svc   *scoreservice.Service
}

func newApplication(opts []Option) (*application, error) {
	app := &application{logOutput: os.Stdout}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

func (a *application) logger() *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(a.logOutput, &slog.HandlerOptions{
		Level: a.config.App.LogLevel,
	}))
	slog.SetDefault(logger)
	return logger
}

// openLibrary prepares storage and the index and runs the initial sync.
// onChange receives the service's own writes and may be nil. The caller
// closes lib.db.
func openLibrary(cfg *Config, logger *slog.Logger, onChange func(kind, path string)) (*library, error) {
	if err := os.MkdirAll(cfg.Library.Path, 0o755); err != nil {
		return nil, fmt.Errorf("create library dir: %w", err)
	}

	store, err := storage.NewFS(cfg.Library.Path)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, fmt.Errorf("init index: %w", err)
	}

	im := musicxml.New(musicxml.WithLogger(logger))

	if err := index.Sync(db, store, im, logger); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}

	svc := scoreservice.NewService(store, db, im, scoreservice.Options{
		MaxFileSize:    cfg.Import.MaxFileSize,
		FailOnWarnings: cfg.Import.FailOnWarnings,
		MIDI:           cfg.MIDI.Options(),
		OnChange:       onChange,
	})
	return &library{store: store, db: db, im: im, svc: svc}, nil
}

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config
	logger := app.logger()

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("library_path", cfg.Library.Path),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	lib, err := openLibrary(cfg, logger, broker.PublishScoreEvent)
	if err != nil {
		return err
	}
	defer lib.db.Close()

	apiRouter := api.NewRouter(lib.svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker, cfg.Import.MaxFileSize)

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
		if err := lib.db.Ping(); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Edits made outside the API reach SSE clients through the watcher.
	g.Go(func() error {
		err := index.Watch(gCtx, lib.db, lib.store, lib.im, cfg.Library.Path, logger, broker.PublishScoreEvent)
		if err != nil {
			logger.Error("watcher stopped", slog.String("error", err.Error()))
		}
		return nil
	})

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
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		// Open event streams would otherwise hold Shutdown until its timeout.
		broker.Close()

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

// ServeMCP opens the library and serves MCP tools on stdin/stdout until the
// client disconnects. Logs go to the configured output, stderr by default.
func ServeMCP(ctx context.Context, opts ...Option) error {
	app, err := newApplication(append([]Option{WithLogOutput(os.Stderr)}, opts...))
	if err != nil {
		return err
	}
	logger := app.logger()

	lib, err := openLibrary(app.config, logger, nil)
	if err != nil {
		return err
	}
	defer lib.db.Close()

	g, gCtx := errgroup.WithContext(ctx)
	watchCtx, stopWatch := context.WithCancel(gCtx)

	g.Go(func() error {
		if err := index.Watch(watchCtx, lib.db, lib.store, lib.im, app.config.Library.Path, logger, nil); err != nil {
			logger.Error("watcher stopped", slog.String("error", err.Error()))
		}
		return nil
	})
	g.Go(func() error {
		defer stopWatch()
		logger.Info("Serving MCP on stdio", slog.String("library_path", app.config.Library.Path))
		return mcpserver.New(lib.svc, lib.store).ServeStdio()
	})
	return g.Wait()
}
