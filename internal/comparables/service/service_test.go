package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"taxappeal/internal/comparables/mocks"
	"taxappeal/internal/evidence/models"
	"taxappeal/internal/evidence/providers"
	"taxappeal/pkg/domain"
	dErrors "taxappeal/pkg/domain-errors"
	"taxappeal/pkg/geo"
	"taxappeal/pkg/requestcontext"
	"taxappeal/pkg/testutil"
)

// =============================================================================
// Comparables Engine Test Suite
// =============================================================================
// Justification for unit tests: the engine owns the propagation rule (registry
// failures fail, everything else degrades), the one-record-per-parcel merge and
// the ordering guarantee. All collaborators are mocked at the ports.

const (
	subjectPIN = "17042170331013"
	compA      = "17042170331001"
	compB      = "17042170331002"
	compC      = "17042170331003"
)

type ServiceSuite struct {
	suite.Suite
	ctrl       *gomock.Controller
	registry   *mocks.MockRegistry
	enrichment *mocks.MockEnrichment
	geocoder   *mocks.MockGeocoder
	now        time.Time
	subject    *models.SubjectProperty
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.registry = mocks.NewMockRegistry(s.ctrl)
	s.enrichment = mocks.NewMockEnrichment(s.ctrl)
	s.geocoder = mocks.NewMockGeocoder(s.ctrl)
	s.now = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	s.subject = &models.SubjectProperty{
		PIN:          domain.MustParcelID(subjectPIN),
		Address:      models.Address{Line: "1 MAIN ST", State: "IL"},
		Class:        "299",
		Neighborhood: "77141",
		Coordinates:  &geo.Coordinates{Lat: 41.88, Lon: -87.63},
	}
}

func (s *ServiceSuite) newService(opts ...Option) *Service {
	base := []Option{
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithClock(testutil.FixedClock(s.now)),
	}
	return New(s.registry, append(base, opts...)...)
}

func (s *ServiceSuite) noLocations() {
	s.registry.EXPECT().FetchLocation(gomock.Any(), gomock.Any()).
		Return(nil, providers.NewSourceError(providers.ErrorNotFound, providers.SourcePrimaryRegistry, "no location", nil)).
		AnyTimes()
}

func f64(v float64) *float64 { return &v }
func intp(v int) *int        { return &v }

func complete(pin string, price, area float64) models.ComparableCandidate {
	return models.ComparableCandidate{
		Origin:     models.OriginPrimaryRegistry,
		PIN:        pin,
		SalePrice:  f64(price),
		LivingArea: f64(area),
		YearBuilt:  intp(1925),
		Bedrooms:   intp(2),
		Bathrooms:  f64(1),
		Source:     "registry/wvhk-k5uv",
	}
}

func pins(comps []models.MergedComparable) []string {
	out := make([]string, len(comps))
	for i, c := range comps {
		out[i] = c.PIN
	}
	return out
}

func (s *ServiceSuite) TestRegistryFailureIsFatal() {
	outage := providers.NewSourceError(providers.ErrorProviderOutage, providers.SourcePrimaryRegistry, "status 503", nil)
	s.registry.EXPECT().FetchComparableSales(gomock.Any(), s.subject, gomock.Any(), 10).Return(nil, outage)

	svc := s.newService(WithEnrichment(s.enrichment))
	comps, err := svc.FindComparables(context.Background(), s.subject, Options{IncludeSecondarySource: true})

	s.Require().Error(err)
	s.Nil(comps)
	s.ErrorIs(err, outage)
	s.Contains(err.Error(), providers.SourcePrimaryRegistry)
}

func (s *ServiceSuite) TestNoSecondarySourceConfigured() {
	s.registry.EXPECT().FetchComparableSales(gomock.Any(), s.subject, gomock.Any(), 10).
		Return([]models.ComparableCandidate{complete(compA, 300000, 1200)}, nil)
	s.noLocations()

	svc := s.newService()
	comps, err := svc.FindComparables(context.Background(), s.subject, Options{IncludeSecondarySource: true})

	s.Require().NoError(err)
	s.Equal([]string{compA}, pins(comps))
	s.False(comps[0].InBothSources)
}

func (s *ServiceSuite) TestSecondaryUnavailableDegradesToPrimaryOnly() {
	s.registry.EXPECT().FetchComparableSales(gomock.Any(), s.subject, gomock.Any(), 10).
		Return([]models.ComparableCandidate{complete(compA, 300000, 1200)}, nil)
	s.noLocations()
	s.enrichment.EXPECT().SearchSales(gomock.Any(), gomock.Any()).
		Return(providers.Degraded[[]models.ComparableCandidate](providers.ErrorUnavailable, errors.New("secondary provider not configured")))

	svc := s.newService(WithEnrichment(s.enrichment))
	comps, err := svc.FindComparables(context.Background(), s.subject, Options{IncludeSecondarySource: true})

	s.Require().NoError(err)
	s.Equal([]string{compA}, pins(comps))
}

func (s *ServiceSuite) TestSecondaryOutageDegradesToPrimaryOnly() {
	s.registry.EXPECT().FetchComparableSales(gomock.Any(), s.subject, gomock.Any(), 10).
		Return([]models.ComparableCandidate{complete(compA, 300000, 1200)}, nil)
	s.noLocations()
	s.enrichment.EXPECT().SearchSales(gomock.Any(), gomock.Any()).
		Return(providers.DegradedFrom[[]models.ComparableCandidate](
			providers.NewSourceError(providers.ErrorTimeout, providers.SourceSecondaryProvider, "timeout", context.DeadlineExceeded)))

	svc := s.newService(WithEnrichment(s.enrichment))
	comps, err := svc.FindComparables(context.Background(), s.subject, Options{IncludeSecondarySource: true})

	s.Require().NoError(err)
	s.Len(comps, 1)
}

func (s *ServiceSuite) TestEnrichmentNeverOverwritesRegistryValues() {
	partial := models.ComparableCandidate{
		Origin:     models.OriginPrimaryRegistry,
		PIN:        compA,
		SalePrice:  f64(300000),
		LivingArea: f64(1200),
	}
	s.registry.EXPECT().FetchComparableSales(gomock.Any(), s.subject, gomock.Any(), 10).
		Return([]models.ComparableCandidate{partial}, nil)
	s.noLocations()
	s.enrichment.EXPECT().GetEnrichment(gomock.Any(), domain.MustParcelID(compA)).
		Return(providers.Found(&models.EnrichmentEntry{
			PIN:        domain.MustParcelID(compA),
			LivingArea: f64(1250),
			YearBuilt:  intp(1931),
			Bedrooms:   intp(3),
			Bathrooms:  f64(1.5),
		}))

	svc := s.newService(WithEnrichment(s.enrichment))
	comps, err := svc.FindComparables(context.Background(), s.subject, Options{})

	s.Require().NoError(err)
	s.Require().Len(comps, 1)
	s.Equal(1200.0, *comps[0].LivingArea)
	s.Equal(1931, *comps[0].YearBuilt)
	s.Equal(3, *comps[0].Bedrooms)
	s.True(comps[0].InBothSources)
	s.Require().NotNil(comps[0].PricePerUnitArea)
	s.Equal(250.0, *comps[0].PricePerUnitArea)
}

func (s *ServiceSuite) TestEnrichmentWithoutDataLeavesFlagUnset() {
	partial := models.ComparableCandidate{Origin: models.OriginPrimaryRegistry, PIN: compA, SalePrice: f64(300000)}
	s.registry.EXPECT().FetchComparableSales(gomock.Any(), s.subject, gomock.Any(), 10).
		Return([]models.ComparableCandidate{partial}, nil)
	s.noLocations()
	s.enrichment.EXPECT().GetEnrichment(gomock.Any(), domain.MustParcelID(compA)).
		Return(providers.Missing[*models.EnrichmentEntry]())

	svc := s.newService(WithEnrichment(s.enrichment))
	comps, err := svc.FindComparables(context.Background(), s.subject, Options{})

	s.Require().NoError(err)
	s.False(comps[0].InBothSources)
	s.Nil(comps[0].LivingArea)
	s.Nil(comps[0].PricePerUnitArea)
}

func (s *ServiceSuite) TestMergeOrderAndDeduplication() {
	s.registry.EXPECT().FetchComparableSales(gomock.Any(), s.subject, gomock.Any(), 10).
		Return([]models.ComparableCandidate{
			complete(compA, 300000, 1200),
			complete(compA, 310000, 1200),
			complete(subjectPIN, 1, 1),
			complete(compB, 280000, 1100),
		}, nil)
	s.noLocations()

	secondary := []models.ComparableCandidate{
		{PIN: "17-04-217-033-1003", SalePrice: f64(290000), Source: "provider"},
		{PIN: "17-04-217-033-1001", SalePrice: f64(1), AssessedValue: f64(27000), Source: "provider"},
		{PIN: "bogus", SalePrice: f64(1), Source: "provider"},
		{PIN: "17-04-217-033-1013", SalePrice: f64(1), Source: "provider"},
		{PIN: compC, SalePrice: f64(2), Source: "provider"},
	}
	s.enrichment.EXPECT().SearchSales(gomock.Any(), gomock.Any()).Return(providers.Found(secondary))

	svc := s.newService(WithEnrichment(s.enrichment))
	comps, err := svc.FindComparables(context.Background(), s.subject, Options{IncludeSecondarySource: true})

	s.Require().NoError(err)
	s.Equal([]string{compA, compB, compC}, pins(comps))

	a := comps[0]
	s.Equal(models.OriginPrimaryRegistry, a.Origin)
	s.Equal(300000.0, *a.SalePrice, "registry value wins a collision")
	s.Equal(27000.0, *a.AssessedValue, "null registry field filled from secondary")
	s.True(a.InBothSources)

	s.False(comps[1].InBothSources)

	c := comps[2]
	s.Equal(models.OriginSecondaryProvider, c.Origin)
	s.Equal(290000.0, *c.SalePrice, "first occurrence within a source is kept")
	s.False(c.InBothSources)
}

func (s *ServiceSuite) TestDistanceUsesRegistryLocations() {
	s.registry.EXPECT().FetchComparableSales(gomock.Any(), s.subject, gomock.Any(), 10).
		Return([]models.ComparableCandidate{complete(compA, 300000, 1200), complete(compB, 280000, 1100)}, nil)
	s.registry.EXPECT().FetchLocation(gomock.Any(), domain.MustParcelID(compA)).
		Return(&models.Location{
			PIN:         domain.MustParcelID(compA),
			Address:     models.Address{Line: "10 ELM ST"},
			Coordinates: &geo.Coordinates{Lat: 41.90, Lon: -87.65},
		}, nil)
	s.registry.EXPECT().FetchLocation(gomock.Any(), domain.MustParcelID(compB)).
		Return(nil, providers.NewSourceError(providers.ErrorProviderOutage, providers.SourcePrimaryRegistry, "status 500", nil))

	svc := s.newService()
	comps, err := svc.FindComparables(context.Background(), s.subject, Options{})

	s.Require().NoError(err)
	s.Require().Len(comps, 2)
	s.Require().NotNil(comps[0].DistanceFromSubject)
	s.Greater(*comps[0].DistanceFromSubject, 0.0)
	s.Less(*comps[0].DistanceFromSubject, 5.0)
	s.Equal("10 ELM ST", comps[0].Address.Line)
	s.Nil(comps[1].DistanceFromSubject, "failed lookup leaves distance null")
}

func (s *ServiceSuite) TestLocationLookupsAreBatched() {
	var candidates []models.ComparableCandidate
	for _, pin := range []string{
		"17042170331001", "17042170331002", "17042170331003",
		"17042170331004", "17042170331005",
	} {
		candidates = append(candidates, complete(pin, 200000, 1000))
	}
	s.registry.EXPECT().FetchComparableSales(gomock.Any(), s.subject, gomock.Any(), 10).Return(candidates, nil)

	var inFlight, peak, calls atomic.Int32
	s.registry.EXPECT().FetchLocation(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, domain.ParcelID) (*models.Location, error) {
			calls.Add(1)
			n := inFlight.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			inFlight.Add(-1)
			return &models.Location{}, nil
		}).Times(5)

	svc := s.newService(WithBatchSize(2))
	_, err := svc.FindComparables(context.Background(), s.subject, Options{})

	s.Require().NoError(err)
	s.Equal(int32(5), calls.Load())
	s.LessOrEqual(peak.Load(), int32(2))
}

func (s *ServiceSuite) TestGeocodeFallbackForSecondarySearch() {
	s.subject.Coordinates = nil
	s.registry.EXPECT().FetchComparableSales(gomock.Any(), s.subject, gomock.Any(), 10).Return(nil, nil)
	center := geo.Coordinates{Lat: 41.88, Lon: -87.63}
	s.geocoder.EXPECT().Resolve(gomock.Any(), "1 MAIN ST", "", "IL").Return(providers.Found(center))
	s.enrichment.EXPECT().SearchSales(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req models.SaleSearchRequest) providers.Outcome[[]models.ComparableCandidate] {
			s.Equal(center, req.Center)
			s.Equal(0.5, req.RadiusMiles)
			s.Equal(10, req.Max)
			s.Equal(s.now, req.Until)
			s.Equal(s.now.AddDate(0, -24, 0), req.Since)
			return providers.Found([]models.ComparableCandidate{{
				PIN:         compC,
				SalePrice:   f64(250000),
				LivingArea:  f64(1000),
				Coordinates: &geo.Coordinates{Lat: 41.90, Lon: -87.65},
			}})
		})

	svc := s.newService(WithEnrichment(s.enrichment), WithGeocoder(s.geocoder))
	comps, err := svc.FindComparables(context.Background(), s.subject, Options{IncludeSecondarySource: true})

	s.Require().NoError(err)
	s.Require().Len(comps, 1)
	s.NotNil(comps[0].DistanceFromSubject)
	s.Nil(s.subject.Coordinates, "caller's subject is not modified")
}

func (s *ServiceSuite) TestSearchWindowUsesRequestTime() {
	requestTime := time.Date(2025, 11, 2, 9, 0, 0, 0, time.UTC)
	s.registry.EXPECT().FetchComparableSales(gomock.Any(), s.subject, gomock.Any(), 10).Return(nil, nil)
	s.enrichment.EXPECT().SearchSales(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req models.SaleSearchRequest) providers.Outcome[[]models.ComparableCandidate] {
			s.Equal(requestTime, req.Until)
			s.Equal(*s.subject.Coordinates, req.Center)
			return providers.Found[[]models.ComparableCandidate](nil)
		})

	svc := New(s.registry,
		WithEnrichment(s.enrichment),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	ctx := requestcontext.WithTime(testutil.Context("req-1"), requestTime)
	comps, err := svc.FindComparables(ctx, s.subject, Options{IncludeSecondarySource: true})

	s.Require().NoError(err)
	s.Empty(comps)
}

func (s *ServiceSuite) TestGeocodeFailureSkipsSecondarySearch() {
	s.subject.Coordinates = nil
	s.registry.EXPECT().FetchComparableSales(gomock.Any(), s.subject, gomock.Any(), 10).
		Return([]models.ComparableCandidate{complete(compA, 300000, 1200)}, nil)
	s.noLocations()
	s.geocoder.EXPECT().Resolve(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(providers.Missing[geo.Coordinates]())

	svc := s.newService(WithEnrichment(s.enrichment), WithGeocoder(s.geocoder))
	comps, err := svc.FindComparables(context.Background(), s.subject, Options{IncludeSecondarySource: true})

	s.Require().NoError(err)
	s.Len(comps, 1)
	s.Nil(comps[0].DistanceFromSubject)
}

func (s *ServiceSuite) TestEquityKindAndLimitClamp() {
	s.registry.EXPECT().FetchEquityComparables(gomock.Any(), s.subject, models.DefaultTolerances(), 50).Return(nil, nil)

	svc := s.newService()
	comps, err := svc.FindComparables(context.Background(), s.subject, Options{Kind: KindEquity, Limit: 500})

	s.Require().NoError(err)
	s.Empty(comps)
}

func (s *ServiceSuite) TestExplicitTolerancesArePassedThrough() {
	tol := models.Tolerances{RecencyMonths: 12}
	s.registry.EXPECT().FetchComparableSales(gomock.Any(), s.subject, tol, 3).Return(nil, nil)

	svc := s.newService()
	_, err := svc.FindComparables(context.Background(), s.subject, Options{Limit: 3, Tolerances: &tol})
	s.Require().NoError(err)
}

func (s *ServiceSuite) TestZeroTolerancesDisableChecks() {
	s.registry.EXPECT().FetchComparableSales(gomock.Any(), s.subject, models.Tolerances{}, 3).Return(nil, nil)

	svc := s.newService()
	_, err := svc.FindComparables(context.Background(), s.subject, Options{Limit: 3, Tolerances: &models.Tolerances{}})
	s.Require().NoError(err)
}

func (s *ServiceSuite) TestSubjectErrorMapping() {
	pin := domain.MustParcelID(subjectPIN)
	cases := []struct {
		name string
		err  error
		code dErrors.Code
	}{
		{"not found", providers.NewSourceError(providers.ErrorNotFound, providers.SourcePrimaryRegistry, "no parcel", nil), dErrors.CodeNotFound},
		{"outage", providers.NewSourceError(providers.ErrorProviderOutage, providers.SourcePrimaryRegistry, "status 502", nil), dErrors.CodeBadGateway},
		{"timeout", providers.NewSourceError(providers.ErrorTimeout, providers.SourcePrimaryRegistry, "slow", context.DeadlineExceeded), dErrors.CodeTimeout},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			s.registry.EXPECT().FetchParcel(gomock.Any(), pin).Return(nil, tc.err)

			_, err := s.newService().Subject(context.Background(), pin)

			s.Require().Error(err)
			s.True(dErrors.HasCode(err, tc.code), "got %v", err)
			s.ErrorIs(err, tc.err)
		})
	}
}

func (s *ServiceSuite) TestComparablesLoadsSubject() {
	pin := domain.MustParcelID(subjectPIN)
	s.registry.EXPECT().FetchParcel(gomock.Any(), pin).Return(s.subject, nil)
	s.registry.EXPECT().FetchComparableSales(gomock.Any(), s.subject, gomock.Any(), 10).
		Return(nil, providers.NewSourceError(providers.ErrorBadData, providers.SourcePrimaryRegistry, "bad row", nil))

	_, _, err := s.newService().Comparables(context.Background(), pin, Options{})

	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeBadGateway))
}

func (s *ServiceSuite) TestQuota() {
	s.Equal(models.QuotaStatus{}, s.newService().Quota())

	status := models.QuotaStatus{Month: "2026-03", Used: 4, Ceiling: 100, Remaining: 96}
	s.enrichment.EXPECT().Quota().Return(status)
	s.Equal(status, s.newService(WithEnrichment(s.enrichment)).Quota())
}

func (s *ServiceSuite) TestDeriveManual() {
	svc := s.newService()
	m := svc.DeriveManual(s.subject, models.ComparableCandidate{
		PIN:         "17-04-217-033-1009",
		SalePrice:   f64(240000),
		LivingArea:  f64(1200),
		Coordinates: &geo.Coordinates{Lat: 41.88, Lon: -87.63},
	})

	s.Equal(models.OriginManual, m.Origin)
	s.Equal("17042170331009", m.PIN)
	s.Equal(200.0, *m.PricePerUnitArea)
	s.Require().NotNil(m.DistanceFromSubject)
	s.InDelta(0, *m.DistanceFromSubject, 1e-9)
	s.False(m.InBothSources)
}

func TestParseKind(t *testing.T) {
	for raw, want := range map[string]Kind{"": KindSales, "sales": KindSales, "equity": KindEquity} {
		got, err := ParseKind(raw)
		if err != nil || got != want {
			t.Fatalf("ParseKind(%q) = %q, %v", raw, got, err)
		}
	}
	if _, err := ParseKind("rentals"); !dErrors.HasCode(err, dErrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
