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

	"github.com/starford/menza/internal/api"
	"github.com/starford/menza/internal/favorites"
	"github.com/starford/menza/internal/mcpserver"
	"github.com/starford/menza/internal/menuapi"
	"github.com/starford/menza/internal/models"
	"github.com/starford/menza/internal/sse"
	"github.com/starford/menza/internal/storage"
)

// Run starts the HTTP service with the given options.
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
		slog.String("upstream", cfg.Upstream.BaseURL),
		slog.String("store_backend", cfg.Store.Backend),
		slog.String("store_path", cfg.Store.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Initialize the key-value store.
	store, favoritesFile, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	// Favorites store on top of the kv backend.
	favs, err := favorites.NewStore(store)
	if err != nil {
		return fmt.Errorf("init favorites: %w", err)
	}

	// SSE broker, fed by favorites changes.
	broker := sse.NewBroker()
	defer broker.Close()
	favs.OnChange(func(kind string, item *models.FavoriteItem) {
		broker.Publish(sse.Event{Type: kind, Data: item})
	})

	// Upstream menu client and router.
	client := menuapi.New(cfg.Upstream.BaseURL, cfg.Upstream.Timeout())
	apiRouter := api.NewRouter(api.NewHandler(client, favs, store), broker)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints.
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

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Watch the favorites file for external edits (fs backend only).
	if favoritesFile != "" && cfg.Store.Watch {
		g.Go(func() error {
			if err := favorites.Watch(gCtx, favs, favoritesFile, logger); err != nil {
				logger.Warn("favorites watcher stopped", slog.String("error", err.Error()))
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

// RunMCP starts the stdio MCP server with the given options. Logs go to
// stderr because stdout carries the protocol.
func RunMCP(_ context.Context, opts ...Option) error {
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

	store, _, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	favs, err := favorites.NewStore(store)
	if err != nil {
		return fmt.Errorf("init favorites: %w", err)
	}

	client := menuapi.New(cfg.Upstream.BaseURL, cfg.Upstream.Timeout())

	logger.Info("MCP server starting on stdio")
	return mcpserver.New(client, favs).ServeStdio()
}

// openStore initializes the configured kv backend. For the fs backend it
// also resolves the favorites file path so the watcher can observe it.
func openStore(cfg *Config) (store storage.Provider, favoritesFile string, closeStore func(), err error) {
	switch cfg.Store.Backend {
	case BackendSQLite:
		db, err := storage.OpenSQLite(cfg.Store.Path)
		if err != nil {
			return nil, "", nil, fmt.Errorf("init sqlite store: %w", err)
		}
		return db, "", func() { _ = db.Close() }, nil
	default:
		fsStore, err := storage.NewFS(cfg.Store.Path)
		if err != nil {
			return nil, "", nil, fmt.Errorf("init fs store: %w", err)
		}
		file, err := fsStore.Path(favorites.StorageKey)
		if err != nil {
			return nil, "", nil, fmt.Errorf("resolve favorites path: %w", err)
		}
		return fsStore, file, func() {}, nil
	}
}
