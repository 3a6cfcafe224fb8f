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
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"github.com/starford/apptcal/internal/api"
	"github.com/starford/apptcal/internal/appointments"
	"github.com/starford/apptcal/internal/ical"
	"github.com/starford/apptcal/internal/index"
	"github.com/starford/apptcal/internal/sse"
	"github.com/starford/apptcal/internal/storage"
	"github.com/starford/apptcal/internal/watcher"
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
	logger := app.logger
	if logger == nil {
		logger = NewLogger(os.Stdout, cfg.App.LogLevel)
		slog.SetDefault(logger)
	}

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("storage_driver", cfg.Storage.Driver),
		slog.String("storage_path", cfg.Storage.Path),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("timezone", cfg.App.Location().String()),
		slog.String("log_level", cfg.App.LogLevel.String()))

	svc, store, closeStore, err := OpenService(ctx, cfg, logger)
	defer closeStore()
	if err != nil {
		return err
	}

	db, err := OpenIndex(cfg.SQLite, svc, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	// SSE broker fed by every store change.
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()
	svc.Subscribe(broker.PublishChange)

	calendar := ical.Options{Location: cfg.App.Location(), Name: "apptcal"}
	apiRouter := api.NewRouter(svc, db, calendar, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: newRootRouter(apiRouter, db),
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	ctx, stop := context.WithCancel(ctx)
	defer stop()
	g, gCtx := errgroup.WithContext(ctx)

	// Pick up edits made to the appointment file by other programs.
	if file, ok := store.(*storage.File); ok && cfg.Watch.Enabled {
		g.Go(func() error {
			return watcher.Watch(gCtx, file.Path(), cfg.Watch.Debounce, logger, func() {
				svc.Reload(gCtx)
			})
		})
	}

	if cfg.Watch.RefreshCron != "" {
		g.Go(func() error {
			return runRefresher(gCtx, cfg.Watch.RefreshCron, svc, logger)
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
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")
		stop()

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

func newRootRouter(apiRouter http.Handler, db index.AppointmentIndex) chi.Router {
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
		if _, err := db.Count(); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)
	return r
}

// runRefresher reloads the store on the cron schedule spec until ctx ends.
func runRefresher(ctx context.Context, spec string, svc *appointments.Service, logger *slog.Logger) error {
	c := cron.New()
	if _, err := c.AddFunc(spec, func() {
		if svc.Reload(ctx) {
			logger.Info("refresher: store changed on disk")
		}
	}); err != nil {
		return fmt.Errorf("refresher: schedule %q: %w", spec, err)
	}
	c.Start()
	logger.Info("refresher: started", slog.String("schedule", spec))

	<-ctx.Done()
	<-c.Stop().Done()
	logger.Info("refresher: stopped")
	return nil
}
