package enrichment

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"taxappeal/internal/evidence/enrichment/provider"
	"taxappeal/internal/evidence/enrichment/store"
	"taxappeal/internal/evidence/models"
	"taxappeal/internal/evidence/providers"
	"taxappeal/pkg/domain"
)

// =============================================================================
// Enrichment Cache Test Suite
// =============================================================================
// Justification for unit tests: the cache is the only thing standing between
// request traffic and a paid, capped API. Tests pin down when a network call
// is made, when quota is spent, and that failures only ever degrade.

type fakeProvider struct {
	mu       sync.Mutex
	enabled  bool
	closed   bool
	calls    atomic.Int32
	allows   atomic.Int32
	delay    time.Duration
	entry    func(pin domain.ParcelID) *models.EnrichmentEntry
	err      error
	sales    []models.ComparableCandidate
	salesErr error
}

func (f *fakeProvider) Enabled() bool { return f.enabled }

func (f *fakeProvider) Allow() bool {
	f.allows.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.closed
}

func (f *fakeProvider) PropertyDetail(_ context.Context, pin domain.ParcelID) (*models.EnrichmentEntry, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.entry(pin), nil
}

func (f *fakeProvider) SaleSearch(context.Context, models.SaleSearchRequest) ([]models.ComparableCandidate, error) {
	f.calls.Add(1)
	return f.sales, f.salesErr
}

type failingStore struct{}

func (failingStore) Get(context.Context, domain.ParcelID) (*models.EnrichmentEntry, error) {
	return nil, errors.New("connection refused")
}

func (failingStore) Upsert(context.Context, *models.EnrichmentEntry) error {
	return errors.New("connection refused")
}

func fullEntry(pin domain.ParcelID) *models.EnrichmentEntry {
	area, built, beds, baths := 1250.0, 1925, 3, 1.5
	return &models.EnrichmentEntry{
		PIN:        pin,
		LivingArea: &area,
		YearBuilt:  &built,
		Bedrooms:   &beds,
		Bathrooms:  &baths,
		RawPayload: json.RawMessage(`{"property":[{}]}`),
		FetchedAt:  time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	}
}

type CacheSuite struct {
	suite.Suite
	provider *fakeProvider
	store    *store.InMemoryStore
	quota    *MonthlyQuota
	cache    *Cache
	pin      domain.ParcelID
}

func TestCacheSuite(t *testing.T) {
	suite.Run(t, new(CacheSuite))
}

func (s *CacheSuite) SetupTest() {
	s.pin = domain.MustParcelID("17042170331013")
	s.provider = &fakeProvider{enabled: true, entry: fullEntry}
	s.store = store.NewInMemoryStore()
	s.quota = NewMonthlyQuota(10, func() time.Time { return time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC) })
	s.cache = s.newCache(s.store, s.provider)
}

func (s *CacheSuite) newCache(st Store, p Provider) *Cache {
	c, err := New(st, p, s.quota, WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	s.Require().NoError(err)
	return c
}

// =============================================================================
// Constructor Tests
// =============================================================================

func (s *CacheSuite) TestNew() {
	s.Run("nil store returns error", func() {
		_, err := New(nil, s.provider, s.quota)
		s.ErrorContains(err, "durable store is required")
	})
	s.Run("nil quota returns error", func() {
		_, err := New(s.store, s.provider, nil)
		s.ErrorContains(err, "quota is required")
	})
}

// =============================================================================
// GetEnrichment
// =============================================================================

func (s *CacheSuite) TestGetEnrichment() {
	ctx := context.Background()

	s.Run("same PIN twice makes exactly one network call", func() {
		first := s.cache.GetEnrichment(ctx, s.pin)
		second := s.cache.GetEnrichment(ctx, s.pin)

		s.True(first.Found)
		s.True(second.Found)
		s.Equal(1250.0, *second.Value.LivingArea)
		s.Equal(int32(1), s.provider.calls.Load())
		s.Equal(1, s.quota.Status().Used)
	})

	s.Run("full payload goes to the durable tier, memory keeps the parsed subset", func() {
		stored, err := s.store.Get(ctx, s.pin)
		s.Require().NoError(err)
		s.True(stored.HasFullPayload())

		s.cache.mu.RLock()
		m := s.cache.memory[s.pin]
		s.cache.mu.RUnlock()
		s.False(m.entry.HasFullPayload())
	})
}

func (s *CacheSuite) TestConcurrentMissesCollapse() {
	s.provider.delay = 50 * time.Millisecond

	var wg sync.WaitGroup
	var found atomic.Int32
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s.cache.GetEnrichment(context.Background(), s.pin).Found {
				found.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(20), found.Load())
	s.Equal(int32(1), s.provider.calls.Load())
	s.Equal(1, s.quota.Status().Used)
}

func (s *CacheSuite) TestDurableHitSkipsNetwork() {
	s.Require().NoError(s.store.Upsert(context.Background(), fullEntry(s.pin)))

	out := s.cache.GetEnrichment(context.Background(), s.pin)
	s.True(out.Found)
	s.Zero(s.provider.calls.Load())
	s.Zero(s.quota.Status().Used)
}

func (s *CacheSuite) TestNoCredential() {
	s.Run("disabled provider", func() {
		s.provider.enabled = false
		out := s.cache.GetEnrichment(context.Background(), s.pin)
		s.True(out.IsUnavailable())
		s.ErrorIs(out.Err, ErrNoCredential)
		s.Zero(s.provider.calls.Load())
	})

	s.Run("nil provider", func() {
		c := s.newCache(store.NewInMemoryStore(), nil)
		out := c.GetEnrichment(context.Background(), s.pin)
		s.True(out.IsUnavailable())
	})

	s.Run("typed nil client", func() {
		var client *provider.Client
		c := s.newCache(store.NewInMemoryStore(), client)
		out := c.GetEnrichment(context.Background(), s.pin)
		s.True(out.IsUnavailable())
	})
}

func (s *CacheSuite) TestQuotaAtCeiling() {
	for s.quota.TryAcquire() {
	}
	before := s.quota.Status().Used

	out := s.cache.GetEnrichment(context.Background(), s.pin)

	s.True(out.IsUnavailable())
	s.ErrorIs(out.Err, ErrQuotaExhausted)
	s.Equal(before, s.quota.Status().Used)
	s.Zero(s.provider.calls.Load())
}

func (s *CacheSuite) TestExhaustedQuotaDoesNotConsultCircuit() {
	for s.quota.TryAcquire() {
	}
	s.provider.closed = true

	out := s.cache.GetEnrichment(context.Background(), s.pin)

	s.ErrorIs(out.Err, ErrQuotaExhausted)
	s.Zero(s.provider.allows.Load(), "breaker is not consulted when no call could follow")
	s.Zero(s.provider.calls.Load())
}

func (s *CacheSuite) TestOpenCircuitSpendsNoQuota() {
	s.provider.closed = true

	out := s.cache.GetEnrichment(context.Background(), s.pin)

	s.True(out.IsUnavailable())
	s.ErrorIs(out.Err, ErrCircuitOpen)
	s.Zero(s.quota.Status().Used)
	s.Zero(s.provider.calls.Load())
}

func (s *CacheSuite) TestDurableOutageFallsThroughToNetwork() {
	c := s.newCache(failingStore{}, s.provider)

	out := c.GetEnrichment(context.Background(), s.pin)
	s.True(out.Found)
	s.Equal(int32(1), s.provider.calls.Load())

	again := c.GetEnrichment(context.Background(), s.pin)
	s.True(again.Found)
	s.Equal(int32(1), s.provider.calls.Load(), "memory tier still serves after a durable write failure")
}

func (s *CacheSuite) TestDurableOutageDoesNotRebuyPayload() {
	c := s.newCache(failingStore{}, s.provider)
	ctx := context.Background()

	s.True(c.GetEnrichment(ctx, s.pin).Found)
	for range 3 {
		out := c.GetFullEnrichment(ctx, s.pin)
		s.Require().True(out.Found)
		s.True(out.Value.HasFullPayload())
	}

	s.Equal(int32(1), s.provider.calls.Load())
	s.Equal(1, s.quota.Status().Used)
}

func (s *CacheSuite) TestDurableOutageServesParsedEntryFromMemory() {
	c := s.newCache(failingStore{}, s.provider)
	c.remember(s.pin, fullEntry(s.pin))

	out := c.GetFullEnrichment(context.Background(), s.pin)

	s.True(out.Found)
	s.False(out.Value.HasFullPayload())
	s.Zero(s.provider.calls.Load())
	s.Zero(s.quota.Status().Used)
}

func (s *CacheSuite) TestNotFoundIsRememberedInProcess() {
	s.provider.err = providers.NewSourceError(providers.ErrorNotFound, providers.SourceSecondaryProvider, "no record", nil)

	first := s.cache.GetEnrichment(context.Background(), s.pin)
	second := s.cache.GetEnrichment(context.Background(), s.pin)

	s.True(first.IsNotFound())
	s.True(second.IsNotFound())
	s.Equal(int32(1), s.provider.calls.Load())
	s.Zero(s.store.Len(), "negative answers are not persisted")
}

func (s *CacheSuite) TestProviderFailureDegradesWithoutCaching() {
	s.provider.err = providers.NewSourceError(providers.ErrorProviderOutage, providers.SourceSecondaryProvider, "status 503", nil)

	out := s.cache.GetEnrichment(context.Background(), s.pin)
	s.False(out.Found)
	s.Equal(providers.ErrorProviderOutage, out.Degraded)

	s.provider.err = nil
	retry := s.cache.GetEnrichment(context.Background(), s.pin)
	s.True(retry.Found)
	s.Equal(int32(2), s.provider.calls.Load())
}

// =============================================================================
// GetFullEnrichment
// =============================================================================

func (s *CacheSuite) legacyEntry() *models.EnrichmentEntry {
	e := fullEntry(s.pin)
	e.RawPayload = nil
	return e
}

func (s *CacheSuite) TestGetFullEnrichment() {
	ctx := context.Background()

	s.Run("stored payload is served without a call", func() {
		s.Require().NoError(s.store.Upsert(ctx, fullEntry(s.pin)))
		out := s.cache.GetFullEnrichment(ctx, s.pin)
		s.True(out.Found)
		s.True(out.Value.HasFullPayload())
		s.Zero(s.provider.calls.Load())
	})
}

func (s *CacheSuite) TestBackfillHappensOnce() {
	ctx := context.Background()
	s.Require().NoError(s.store.Upsert(ctx, s.legacyEntry()))

	first := s.cache.GetFullEnrichment(ctx, s.pin)
	s.True(first.Found)
	s.True(first.Value.HasFullPayload())
	s.Equal(int32(1), s.provider.calls.Load())

	stored, err := s.store.Get(ctx, s.pin)
	s.Require().NoError(err)
	s.True(stored.HasFullPayload())

	second := s.cache.GetFullEnrichment(ctx, s.pin)
	s.True(second.Value.HasFullPayload())
	s.Equal(int32(1), s.provider.calls.Load())
}

func (s *CacheSuite) TestBackfillNeverDowngrades() {
	ctx := context.Background()
	s.Require().NoError(s.store.Upsert(ctx, s.legacyEntry()))
	s.provider.entry = func(pin domain.ParcelID) *models.EnrichmentEntry {
		return &models.EnrichmentEntry{PIN: pin, RawPayload: json.RawMessage(`{}`)}
	}

	out := s.cache.GetFullEnrichment(ctx, s.pin)
	s.True(out.Found)
	s.False(out.Value.HasFullPayload())
	s.NotNil(out.Value.LivingArea)

	stored, _ := s.store.Get(ctx, s.pin)
	s.False(stored.HasFullPayload())
	s.Equal(int32(1), s.provider.calls.Load())

	again := s.cache.GetFullEnrichment(ctx, s.pin)
	s.True(again.Found)
	s.Equal(int32(1), s.provider.calls.Load(), "backfill is attempted once per process")
}

func (s *CacheSuite) TestBackfillImpossibleReturnsPartial() {
	ctx := context.Background()
	s.Require().NoError(s.store.Upsert(ctx, s.legacyEntry()))
	for s.quota.TryAcquire() {
	}

	out := s.cache.GetFullEnrichment(ctx, s.pin)
	s.True(out.Found)
	s.False(out.Value.HasFullPayload())
	s.Zero(s.provider.calls.Load())
}

func (s *CacheSuite) TestRefusedBackfillIsRetriedNextMonth() {
	ctx := context.Background()
	s.Require().NoError(s.store.Upsert(ctx, s.legacyEntry()))

	now := time.Date(2025, 6, 30, 12, 0, 0, 0, time.UTC)
	q := NewMonthlyQuota(1, func() time.Time { return now })
	s.Require().True(q.TryAcquire())
	c, err := New(s.store, s.provider, q, WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	s.Require().NoError(err)

	refusedOut := c.GetFullEnrichment(ctx, s.pin)
	s.True(refusedOut.Found)
	s.False(refusedOut.Value.HasFullPayload())
	s.Zero(s.provider.calls.Load())

	now = now.AddDate(0, 0, 2)
	out := c.GetFullEnrichment(ctx, s.pin)
	s.True(out.Found)
	s.True(out.Value.HasFullPayload())
	s.Equal(int32(1), s.provider.calls.Load())
}

// =============================================================================
// SearchSales
// =============================================================================

func (s *CacheSuite) TestSearchSales() {
	s.Run("spends one call", func() {
		s.provider.sales = []models.ComparableCandidate{{PIN: "17042170331014", Origin: models.OriginSecondaryProvider}}
		out := s.cache.SearchSales(context.Background(), models.SaleSearchRequest{})
		s.True(out.Found)
		s.Len(out.Value, 1)
		s.Equal(1, s.quota.Status().Used)
	})

	s.Run("failure degrades", func() {
		s.provider.salesErr = providers.NewSourceError(providers.ErrorTimeout, providers.SourceSecondaryProvider, "timeout", nil)
		out := s.cache.SearchSales(context.Background(), models.SaleSearchRequest{})
		s.False(out.Found)
		s.Equal(providers.ErrorTimeout, out.Degraded)
	})
}
