// Package app assembles the comparables engine from configuration. The HTTP
// server and the operator CLI share it so both run the same stack.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	comparablesmetrics "taxappeal/internal/comparables/metrics"
	"taxappeal/internal/comparables/ports"
	"taxappeal/internal/comparables/service"
	"taxappeal/internal/evidence/enrichment"
	enrichmentmetrics "taxappeal/internal/evidence/enrichment/metrics"
	"taxappeal/internal/evidence/enrichment/provider"
	"taxappeal/internal/evidence/enrichment/store"
	"taxappeal/internal/evidence/geocode"
	"taxappeal/internal/evidence/models"
	"taxappeal/internal/evidence/registry"
	registrymetrics "taxappeal/internal/evidence/registry/metrics"
	"taxappeal/internal/platform/config"
	"taxappeal/internal/platform/postgres"
	"taxappeal/internal/platform/redis"
	"taxappeal/migrations"
)

var (
	_ ports.Registry      = (*registry.Client)(nil)
	_ ports.Enrichment    = (*enrichment.Cache)(nil)
	_ ports.Geocoder      = (*geocode.Resolver)(nil)
	_ enrichment.Provider = (*provider.Client)(nil)
	_ geocode.Lookup      = (*provider.Client)(nil)
	_ geocode.Budget      = (*enrichment.Cache)(nil)
)

// App holds the assembled engine and the resources that must be closed.
type App struct {
	Service *service.Service
	Cache   *enrichment.Cache

	redis   *redis.Client
	db      *sql.DB
	closers []func() error
}

// Option configures Build.
type Option func(*buildOptions)

type buildOptions struct {
	metrics bool
}

// WithMetrics registers prometheus collectors for every module. Only one
// App per process may enable it.
func WithMetrics() Option {
	return func(o *buildOptions) {
		o.metrics = true
	}
}

// Build wires registry, provider, durable store, cache, geocoder and engine.
func Build(ctx context.Context, cfg config.Config, logger *slog.Logger, opts ...Option) (*App, error) {
	var bo buildOptions
	for _, opt := range opts {
		opt(&bo)
	}

	var (
		regMetrics   *registrymetrics.Metrics
		cacheMetrics *enrichmentmetrics.Metrics
		compMetrics  *comparablesmetrics.Metrics
	)
	if bo.metrics {
		regMetrics = registrymetrics.New()
		cacheMetrics = enrichmentmetrics.New()
		compMetrics = comparablesmetrics.New()
	}

	a := &App{}

	durable, err := a.durableStore(ctx, cfg, logger)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	reg := registry.New(cfg.Registry,
		registry.WithLogger(logger),
		registry.WithMetrics(regMetrics),
	)

	// A nil *provider.Client must not be stored in an interface.
	var prov enrichment.Provider
	var lookup geocode.Lookup
	if client := provider.New(cfg.Provider, provider.WithLogger(logger)); client != nil {
		prov = client
		lookup = client
	} else {
		logger.InfoContext(ctx, "secondary provider disabled: no api key configured")
	}

	quota := enrichment.NewMonthlyQuota(cfg.Provider.MonthlyCeiling, time.Now)
	cache, err := enrichment.New(durable, prov, quota,
		enrichment.WithLogger(logger),
		enrichment.WithMetrics(cacheMetrics),
	)
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("build enrichment cache: %w", err)
	}

	resolver := geocode.New(lookup, cache, geocode.WithLogger(logger))

	a.Cache = cache
	a.Service = service.New(reg,
		service.WithEnrichment(cache),
		service.WithGeocoder(resolver),
		service.WithLogger(logger),
		service.WithMetrics(compMetrics),
		service.WithBatchSize(cfg.Comparable.BatchSize),
		service.WithLimits(cfg.Comparable.DefaultLimit, cfg.Comparable.MaxLimit),
		service.WithSecondarySearch(cfg.Provider.SearchRadiusMiles, cfg.Provider.SearchMax),
		service.WithTolerances(models.Tolerances{
			RecencyMonths:    cfg.Comparable.RecencyMonths,
			LivingAreaPct:    cfg.Comparable.LivingAreaPct,
			YearBuiltYears:   cfg.Comparable.YearBuiltYears,
			ExcludeMultiSale: true,
		}),
	)
	return a, nil
}

func (a *App) durableStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (enrichment.Store, error) {
	switch cfg.Cache.Backend {
	case config.CacheBackendRedis:
		client, err := redis.New(ctx, cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		if client == nil {
			return nil, errors.New("CACHE_BACKEND=redis requires REDIS_URL")
		}
		a.redis = client
		a.closers = append(a.closers, client.Close)
		logger.InfoContext(ctx, "enrichment cache backed by redis")
		return store.NewRedisStore(client.Client), nil

	case config.CacheBackendPostgres:
		db, err := postgres.Open(ctx, cfg.Postgres)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if db == nil {
			return nil, errors.New("CACHE_BACKEND=postgres requires DATABASE_URL")
		}
		a.db = db
		a.closers = append(a.closers, db.Close)
		if err := migrations.Apply(ctx, db); err != nil {
			return nil, fmt.Errorf("apply migrations: %w", err)
		}
		logger.InfoContext(ctx, "enrichment cache backed by postgres")
		return store.NewPostgresStore(db), nil

	case config.CacheBackendMemory, "":
		logger.WarnContext(ctx, "enrichment cache is in-memory only; provider answers are lost on restart")
		return store.NewInMemoryStore(), nil

	default:
		return nil, fmt.Errorf("unknown CACHE_BACKEND %q", cfg.Cache.Backend)
	}
}

// Health checks the durable backends.
func (a *App) Health(ctx context.Context) error {
	if a.redis != nil {
		if err := a.redis.Health(ctx); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
	}
	if a.db != nil {
		if err := a.db.PingContext(ctx); err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
	}
	return nil
}

// Close releases backend connections.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
