// Package geocode resolves a subject's coordinates through the secondary
// provider's address lookup when the registry has none. It shares the
// provider's monthly budget and never fails a request.
package geocode

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"taxappeal/internal/evidence/providers"
	"taxappeal/pkg/geo"
)

// Lookup is the provider's address lookup.
type Lookup interface {
	AddressLookup(ctx context.Context, street, state string) (geo.Coordinates, error)
}

// Budget admits one provider call or refuses with an Unavailable error.
type Budget interface {
	Admit(ctx context.Context, caller string) error
}

type memo struct {
	coords   geo.Coordinates
	notFound bool
}

// Resolver is the geocode fallback.
type Resolver struct {
	lookup Lookup
	budget Budget
	logger *slog.Logger

	mu   sync.Mutex
	memo map[string]memo
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// New creates a resolver. lookup may be nil when no provider is configured.
func New(lookup Lookup, budget Budget, opts ...Option) *Resolver {
	r := &Resolver{
		lookup: lookup,
		budget: budget,
		logger: slog.Default(),
		memo:   make(map[string]memo),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve geocodes address. A street the provider does not know is a normal
// NotFound outcome; credential and quota refusals carry their own category.
func (r *Resolver) Resolve(ctx context.Context, address, unit, state string) providers.Outcome[geo.Coordinates] {
	street := StreetLine(address, unit, state)
	if street == "" {
		return providers.Missing[geo.Coordinates]()
	}
	key := street + "|" + strings.ToUpper(state)

	r.mu.Lock()
	m, ok := r.memo[key]
	r.mu.Unlock()
	if ok {
		if m.notFound {
			return providers.Missing[geo.Coordinates]()
		}
		return providers.Found(m.coords)
	}

	if r.lookup == nil || r.budget == nil {
		return providers.Degraded[geo.Coordinates](providers.ErrorUnavailable, nil)
	}
	if err := r.budget.Admit(ctx, "geocode"); err != nil {
		return providers.DegradedFrom[geo.Coordinates](err)
	}

	coords, err := r.lookup.AddressLookup(ctx, street, state)
	if err != nil {
		if providers.IsNotFound(err) {
			r.remember(key, memo{notFound: true})
			r.logger.DebugContext(ctx, "geocode found no match", "street", street)
			return providers.Missing[geo.Coordinates]()
		}
		r.logger.WarnContext(ctx, "geocode lookup failed",
			"street", street,
			"category", string(providers.GetCategory(err)),
			"error", err,
		)
		return providers.DegradedFrom[geo.Coordinates](err)
	}
	if !coords.Valid() {
		return providers.Degraded[geo.Coordinates](providers.ErrorBadData, nil)
	}
	r.remember(key, memo{coords: coords})
	return providers.Found(coords)
}

func (r *Resolver) remember(key string, m memo) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.memo[key] = m
}
