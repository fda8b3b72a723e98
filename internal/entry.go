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
	"github.com/rs/cors"
	"golang.org/x/sync/errgroup"

	"github.com/starford/mosaic/internal/api"
	"github.com/starford/mosaic/internal/gallery"
	"github.com/starford/mosaic/internal/generator"
	"github.com/starford/mosaic/internal/index"
	"github.com/starford/mosaic/internal/mcpserver"
	"github.com/starford/mosaic/internal/parser"
	"github.com/starford/mosaic/internal/session"
	"github.com/starford/mosaic/internal/tagpool"
	"github.com/starford/mosaic/internal/web"
)

// Run starts the HTTP gallery server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts, os.Stdout)
	if err != nil {
		return err
	}
	cfg := app.config
	logger := app.logger()

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("tagpool_path", cfg.TagPool.Path),
		slog.String("index_dsn", cfg.Index.DSN),
		slog.String("log_level", cfg.App.LogLevel.String()))

	c, err := openComponents(cfg, logger)
	if err != nil {
		return err
	}
	defer c.db.Close()

	handler := newHandler(cfg, c.sessions)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Reload the tag pool on file changes. Only images generated afterwards
	// draw from the new pool.
	g.Go(func() error {
		err := c.pool.Watch(gCtx, logger, func(tags []string) {
			logger.Info("tag pool reloaded",
				slog.String("path", c.pool.Path()),
				slog.Int("tags", len(tags)),
				slog.String("checksum", c.pool.Checksum()))
		})
		if err != nil {
			logger.Warn("tag pool watch disabled", slog.String("error", err.Error()))
		}
		return nil
	})

	// Reap idle sessions; unmounts everything on shutdown.
	g.Go(func() error {
		return c.sessions.Run(gCtx)
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
		defer signal.Stop(quit)

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

		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// RunMCP serves a single gallery session over the MCP stdio transport.
// Logs go to stderr because stdout carries the protocol.
func RunMCP(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts, os.Stderr)
	if err != nil {
		return err
	}
	cfg := app.config
	logger := app.logger()

	c, err := openComponents(cfg, logger)
	if err != nil {
		return err
	}
	defer c.db.Close()
	defer c.sessions.CloseAll()

	srv, err := mcpserver.New(c.sessions, c.pool)
	if err != nil {
		return err
	}
	defer srv.Close()

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := c.pool.Watch(gCtx, logger, nil); err != nil {
			logger.Warn("tag pool watch disabled", slog.String("error", err.Error()))
		}
		return nil
	})
	g.Go(func() error {
		logger.Info("MCP server starting on stdio")
		err := srv.ServeStdio()
		if err != nil {
			return fmt.Errorf("mcp serve: %w", err)
		}
		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}
	return nil
}

// errShutdown stops the errgroup siblings once one task finishes cleanly.
var errShutdown = errors.New("shutdown")

func newApplication(opts []Option, logOut io.Writer) (*application, error) {
	app := &application{logOut: logOut}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

type components struct {
	db       *index.DB
	pool     *tagpool.File
	sessions *session.Manager
}

func openComponents(cfg *Config, logger *slog.Logger) (*components, error) {
	pool, err := tagpool.Open(cfg.TagPool.Path)
	if err != nil {
		return nil, fmt.Errorf("init tag pool: %w", err)
	}

	db, err := index.Open(cfg.Index.DSN)
	if err != nil {
		return nil, fmt.Errorf("init index: %w", err)
	}

	sessions := session.NewManager(db, logger, session.Config{
		NewBatcher:    newBatcher(cfg.Gallery, pool),
		Options:       cfg.Gallery.Options(),
		Threshold:     cfg.Gallery.BottomThreshold,
		Normalize:     parser.NormalizeTag,
		IdleTTL:       cfg.Sessions.IdleTTL,
		MaxSessions:   cfg.Sessions.Max,
		FacetThrottle: cfg.Sessions.FacetThrottle,
	})

	return &components{db: db, pool: pool, sessions: sessions}, nil
}

// newBatcher gives every session its own factory, since a rand source is
// not safe for concurrent use.
func newBatcher(cfg GalleryConfig, pool generator.Pool) func() gallery.Batcher {
	return func() gallery.Batcher {
		src := generator.NewRandomSource()
		if cfg.Seed != 0 {
			src = generator.NewSource(cfg.Seed)
		}
		f := generator.NewFactory(src, pool)
		f.BaseURL = cfg.ImageBaseURL
		return f
	}
}

func newHandler(cfg *Config, sessions *session.Manager) http.Handler {
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
		_, _ = fmt.Fprintf(w, `{"status":"ok","sessions":%d}`, sessions.Len())
	})

	r.Mount("/api", api.NewRouter(sessions, cfg.Auth.AuthEnabled(), cfg.Auth.Token))
	r.Method(http.MethodGet, "/", web.NewHandler(cfg.App.Title, "/api", cfg.Gallery.BottomThreshold))

	return cors.New(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: false,
	}).Handler(r)
}
