package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"taxappeal/internal/app"
	comparableshandler "taxappeal/internal/comparables/handler"
	"taxappeal/internal/platform/config"
	"taxappeal/internal/platform/httpserver"
	"taxappeal/internal/platform/logger"
	"taxappeal/internal/platform/metrics"
	"taxappeal/internal/platform/middleware"
	"taxappeal/pkg/platform/httputil"
	"taxappeal/pkg/platform/middleware/requestid"
	"taxappeal/pkg/platform/middleware/requesttime"
)

// main wires dependencies, exposes the HTTP router, and keeps the server
// lifecycle small. Business logic lives in internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.Server.LogLevel)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.Build(ctx, cfg, log, app.WithMetrics())
	if err != nil {
		log.Error("failed to build application", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := application.Close(); err != nil {
			log.Error("failed to close resources", "error", err)
		}
	}()

	router := newRouter(application, metrics.New(), log)
	srv := httpserver.New(cfg.Server.Addr, router)

	go func() {
		log.Info("starting comparables service", "addr", cfg.Server.Addr, "cache_backend", cfg.Cache.Backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
	log.Info("server stopped")
}

func newRouter(application *app.App, m *metrics.Metrics, log *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(requestid.Middleware)
	r.Use(requesttime.Middleware)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Observe(m, log))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := application.Health(ctx); err != nil {
			httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy", "error": err.Error()})
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", metrics.Handler())

	comparableshandler.New(application.Service, log).Register(r)
	return r
}
