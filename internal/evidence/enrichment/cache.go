// Package enrichment is the quota-limited cache in front of the paid
// secondary provider. Lookups go memory, then durable store, then network;
// a network call happens only with a credential, a closed circuit and
// remaining monthly budget.
//
// Every method returns a providers.Outcome. Nothing here fails a request.
package enrichment

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"taxappeal/internal/evidence/enrichment/metrics"
	"taxappeal/internal/evidence/enrichment/provider"
	"taxappeal/internal/evidence/models"
	"taxappeal/internal/evidence/providers"
	"taxappeal/pkg/domain"
	"taxappeal/pkg/platform/sentinel"
)

// Reasons a provider call was not attempted.
var (
	ErrNoCredential   = errors.New("secondary provider not configured")
	ErrCircuitOpen    = errors.New("secondary provider circuit open")
	ErrQuotaExhausted = errors.New("monthly provider quota exhausted")
)

// Store is a durable tier. Get returns sentinel.ErrNotFound on a miss.
type Store interface {
	Get(ctx context.Context, pin domain.ParcelID) (*models.EnrichmentEntry, error)
	Upsert(ctx context.Context, entry *models.EnrichmentEntry) error
}

// Provider is the secondary provider client.
type Provider interface {
	Enabled() bool
	Allow() bool
	PropertyDetail(ctx context.Context, pin domain.ParcelID) (*models.EnrichmentEntry, error)
	SaleSearch(ctx context.Context, req models.SaleSearchRequest) ([]models.ComparableCandidate, error)
}

// memoryEntry is either a parsed entry without payload or a remembered 404.
type memoryEntry struct {
	entry    *models.EnrichmentEntry
	notFound bool
}

// Cache owns the memory tier, the durable store and the provider budget.
type Cache struct {
	store    Store
	provider Provider
	quota    *MonthlyQuota
	logger   *slog.Logger
	metrics  *metrics.Metrics

	mu         sync.RWMutex
	memory     map[domain.ParcelID]memoryEntry
	backfilled map[domain.ParcelID]struct{}
	flight     singleflight.Group

	// full entries whose durable write failed
	unpersisted map[domain.ParcelID]*models.EnrichmentEntry
}

// Option configures a Cache.
type Option func(*Cache)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) {
		c.logger = logger
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Cache) {
		c.metrics = m
	}
}

// New creates a cache. prov may be nil when no credential is configured.
func New(store Store, prov Provider, quota *MonthlyQuota, opts ...Option) (*Cache, error) {
	if store == nil {
		return nil, errors.New("durable store is required")
	}
	if quota == nil {
		return nil, errors.New("quota is required")
	}
	c := &Cache{
		store:      store,
		provider:   prov,
		quota:      quota,
		logger:     slog.Default(),
		memory:      make(map[domain.ParcelID]memoryEntry),
		backfilled:  make(map[domain.ParcelID]struct{}),
		unpersisted: make(map[domain.ParcelID]*models.EnrichmentEntry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Quota reports the current month's provider usage.
func (c *Cache) Quota() models.QuotaStatus {
	return c.quota.Status()
}

// Admit decides whether one provider call may be made now and, if so,
// reserves it against the monthly budget. caller labels metrics.
func (c *Cache) Admit(ctx context.Context, caller string) error {
	if c.provider == nil || !c.provider.Enabled() {
		return unavailable("no provider credential", ErrNoCredential)
	}
	// Quota first: Allow consumes the half-open probe of an open circuit.
	if c.quota.Exhausted() {
		return c.refuseQuota(ctx, caller)
	}
	if !c.provider.Allow() {
		c.logger.DebugContext(ctx, "secondary provider circuit open", "caller", caller)
		return unavailable("provider circuit open", ErrCircuitOpen)
	}
	if !c.quota.TryAcquire() {
		return c.refuseQuota(ctx, caller)
	}
	c.metrics.SetQuotaUsed(c.quota.Status().Used)
	return nil
}

func (c *Cache) refuseQuota(ctx context.Context, caller string) error {
	c.metrics.RecordQuotaRefusal(caller)
	c.logger.WarnContext(ctx, "secondary provider quota exhausted", "caller", caller)
	return unavailable("monthly quota exhausted", ErrQuotaExhausted)
}

// refused reports whether err is an admission refusal, i.e. no call was made.
func refused(err error) bool {
	return errors.Is(err, ErrNoCredential) || errors.Is(err, ErrCircuitOpen) || errors.Is(err, ErrQuotaExhausted)
}

// GetEnrichment returns the parsed provider record for pin. Concurrent misses
// for one PIN share a single provider call.
func (c *Cache) GetEnrichment(ctx context.Context, pin domain.ParcelID) providers.Outcome[*models.EnrichmentEntry] {
	if out, ok := c.fromMemory(pin); ok {
		return out
	}
	c.metrics.RecordMiss("memory")

	v, _, _ := c.flight.Do(pin.String(), func() (any, error) {
		if out, ok := c.fromMemory(pin); ok {
			return out, nil
		}
		entry, err := c.store.Get(ctx, pin)
		switch {
		case err == nil:
			c.metrics.RecordHit("durable")
			c.remember(pin, entry)
			return providers.Found(entry), nil
		case errors.Is(err, sentinel.ErrNotFound):
			c.metrics.RecordMiss("durable")
		default:
			c.metrics.RecordDurableError("get")
			c.logger.WarnContext(ctx, "enrichment durable tier unavailable", "pin", pin.String(), "error", err)
		}
		return c.fetch(ctx, pin), nil
	})
	return v.(providers.Outcome[*models.EnrichmentEntry])
}

// GetFullEnrichment is GetEnrichment for callers that need the raw provider
// payload. A durable entry stored without payload permits one backfill call
// per process; if that is impossible the partial entry is returned.
func (c *Cache) GetFullEnrichment(ctx context.Context, pin domain.ParcelID) providers.Outcome[*models.EnrichmentEntry] {
	c.mu.RLock()
	m, ok := c.memory[pin]
	c.mu.RUnlock()
	if ok && m.notFound {
		c.metrics.RecordHit("memory")
		return providers.Missing[*models.EnrichmentEntry]()
	}

	v, _, _ := c.flight.Do("full:"+pin.String(), func() (any, error) {
		c.mu.RLock()
		held := c.unpersisted[pin]
		c.mu.RUnlock()
		if held != nil {
			c.metrics.RecordHit("memory")
			return providers.Found(held), nil
		}

		existing, err := c.store.Get(ctx, pin)
		switch {
		case err == nil:
			c.metrics.RecordHit("durable")
			if existing.HasFullPayload() {
				c.remember(pin, existing)
				return providers.Found(existing), nil
			}
			return c.backfill(ctx, pin, existing), nil
		case errors.Is(err, sentinel.ErrNotFound):
			c.metrics.RecordMiss("durable")
		default:
			c.metrics.RecordDurableError("get")
			c.logger.WarnContext(ctx, "enrichment durable tier unavailable", "pin", pin.String(), "error", err)
			// Already bought this process: the parsed subset is served.
			c.mu.RLock()
			mem := c.memory[pin]
			c.mu.RUnlock()
			if mem.entry != nil {
				return providers.Found(mem.entry), nil
			}
		}
		return c.fetch(ctx, pin), nil
	})
	return v.(providers.Outcome[*models.EnrichmentEntry])
}

// SearchSales runs one radius/time-window sales search against the provider,
// spending one call from the monthly budget.
func (c *Cache) SearchSales(ctx context.Context, req models.SaleSearchRequest) providers.Outcome[[]models.ComparableCandidate] {
	if err := c.Admit(ctx, "sale_search"); err != nil {
		return providers.DegradedFrom[[]models.ComparableCandidate](err)
	}
	found, err := c.provider.SaleSearch(ctx, req)
	c.metrics.RecordNetworkCall(provider.EndpointSales, outcomeLabel(err))
	if err != nil {
		c.logger.WarnContext(ctx, "secondary sale search failed", "error", err)
		return providers.DegradedFrom[[]models.ComparableCandidate](err)
	}
	return providers.Found(found)
}

// backfill spends one call to fetch the payload a legacy entry lacks. The
// result replaces the stored entry only when it is at least as rich. A
// refused admission does not count as the one attempt.
func (c *Cache) backfill(ctx context.Context, pin domain.ParcelID, existing *models.EnrichmentEntry) providers.Outcome[*models.EnrichmentEntry] {
	c.mu.RLock()
	_, done := c.backfilled[pin]
	c.mu.RUnlock()
	if done {
		c.remember(pin, existing)
		return providers.Found(existing)
	}

	fresh, err := c.callDetail(ctx, pin)
	if !refused(err) {
		c.mu.Lock()
		c.backfilled[pin] = struct{}{}
		c.mu.Unlock()
	}
	if err != nil || fresh == nil {
		c.remember(pin, existing)
		return providers.Found(existing)
	}
	if fresh.Richness() < existing.Richness() {
		c.logger.InfoContext(ctx, "backfilled enrichment entry is poorer, keeping stored entry",
			"pin", pin.String(), "stored_richness", existing.Richness(), "fetched_richness", fresh.Richness())
		c.remember(pin, existing)
		return providers.Found(existing)
	}
	c.persist(ctx, fresh)
	return providers.Found(fresh)
}

// fetch is the network step shared by both lookups.
func (c *Cache) fetch(ctx context.Context, pin domain.ParcelID) providers.Outcome[*models.EnrichmentEntry] {
	entry, err := c.callDetail(ctx, pin)
	if err != nil {
		if providers.IsNotFound(err) {
			c.mu.Lock()
			c.memory[pin] = memoryEntry{notFound: true}
			c.mu.Unlock()
			c.logger.DebugContext(ctx, "secondary provider has no record", "pin", pin.String())
			return providers.Missing[*models.EnrichmentEntry]()
		}
		return providers.DegradedFrom[*models.EnrichmentEntry](err)
	}
	c.persist(ctx, entry)
	return providers.Found(entry)
}

// callDetail admits and performs one detail call.
func (c *Cache) callDetail(ctx context.Context, pin domain.ParcelID) (*models.EnrichmentEntry, error) {
	if err := c.Admit(ctx, "property_detail"); err != nil {
		return nil, err
	}
	start := time.Now()
	entry, err := c.provider.PropertyDetail(ctx, pin)
	c.metrics.RecordNetworkCall(provider.EndpointDetail, outcomeLabel(err))
	if err != nil && !providers.IsNotFound(err) {
		c.logger.WarnContext(ctx, "secondary provider lookup failed",
			"pin", pin.String(),
			"category", string(providers.GetCategory(err)),
			"error", err,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
	return entry, err
}

// persist writes the full entry durably and the parsed subset to memory.
// A durable failure is logged; the fetched entry is still served.
func (c *Cache) persist(ctx context.Context, entry *models.EnrichmentEntry) {
	err := c.store.Upsert(ctx, entry)
	if err != nil {
		c.metrics.RecordDurableError("upsert")
		c.logger.WarnContext(ctx, "failed to persist enrichment entry", "pin", entry.PIN.String(), "error", err)
	}
	c.mu.Lock()
	if err != nil && entry.HasFullPayload() {
		c.unpersisted[entry.PIN] = entry
	} else {
		delete(c.unpersisted, entry.PIN)
	}
	c.mu.Unlock()
	c.remember(entry.PIN, entry)
}

func (c *Cache) remember(pin domain.ParcelID, entry *models.EnrichmentEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.memory[pin] = memoryEntry{entry: entry.WithoutPayload()}
}

func (c *Cache) fromMemory(pin domain.ParcelID) (providers.Outcome[*models.EnrichmentEntry], bool) {
	c.mu.RLock()
	m, ok := c.memory[pin]
	c.mu.RUnlock()
	if !ok {
		return providers.Outcome[*models.EnrichmentEntry]{}, false
	}
	c.metrics.RecordHit("memory")
	if m.notFound {
		return providers.Missing[*models.EnrichmentEntry](), true
	}
	return providers.Found(m.entry), true
}

func unavailable(msg string, err error) error {
	return providers.NewSourceError(providers.ErrorUnavailable, providers.SourceSecondaryProvider, msg, err)
}

func outcomeLabel(err error) string {
	if err == nil {
		return "ok"
	}
	return string(providers.GetCategory(err))
}
