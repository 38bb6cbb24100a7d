// Package service discovers comparable properties for a subject parcel. It
// combines the authoritative registry with the additive secondary provider,
// reconciles the two into one record per parcel and computes derived fields.
//
// Registry failures fail the request. Secondary provider and geocode
// failures only make the result thinner.
package service

import (
	"context"
	"log/slog"
	"time"

	"taxappeal/internal/comparables/metrics"
	"taxappeal/internal/comparables/ports"
	"taxappeal/internal/evidence/models"
	"taxappeal/pkg/domain"
	dErrors "taxappeal/pkg/domain-errors"
	"taxappeal/pkg/requestcontext"
)

const (
	defaultBatchSize    = 5
	defaultLimit        = 10
	defaultMaxLimit     = 50
	defaultSearchRadius = 0.5
	defaultSearchMax    = 10
)

// Kind selects which registry evidence the comparables come from.
type Kind string

const (
	KindSales  Kind = "sales"
	KindEquity Kind = "equity"
)

// ParseKind accepts "", "sales" and "equity". Empty means sales.
func ParseKind(raw string) (Kind, error) {
	switch Kind(raw) {
	case "", KindSales:
		return KindSales, nil
	case KindEquity:
		return KindEquity, nil
	default:
		return "", dErrors.New(dErrors.CodeValidation, "kind must be sales or equity")
	}
}

// Options shape one FindComparables call.
type Options struct {
	Limit                  int
	IncludeSecondarySource bool
	Kind                   Kind
	// Tolerances nil uses the service defaults. A zero field disables its check.
	Tolerances *models.Tolerances
}

// Service is the comparables engine.
type Service struct {
	registry   ports.Registry
	enrichment ports.Enrichment
	geocoder   ports.Geocoder
	logger     *slog.Logger
	metrics    *metrics.Metrics
	now        func() time.Time

	batchSize    int
	defaultLimit int
	maxLimit     int
	searchRadius float64
	searchMax    int
	tolerances   models.Tolerances
}

// Option configures a Service.
type Option func(*Service)

// WithEnrichment enables the secondary source. A nil value keeps the engine
// registry-only.
func WithEnrichment(e ports.Enrichment) Option {
	return func(s *Service) {
		s.enrichment = e
	}
}

// WithGeocoder sets the fallback used when the subject has no coordinates.
func WithGeocoder(g ports.Geocoder) Option {
	return func(s *Service) {
		s.geocoder = g
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithClock pins the time used for the sale search window. Without it the
// request-scoped time is used.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithBatchSize sets how many location lookups run concurrently.
func WithBatchSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

// WithLimits sets the default and maximum number of primary comparables.
func WithLimits(defaultLimit, maxLimit int) Option {
	return func(s *Service) {
		if defaultLimit > 0 {
			s.defaultLimit = defaultLimit
		}
		if maxLimit > 0 {
			s.maxLimit = maxLimit
		}
	}
}

// WithSecondarySearch sets the radius and fixed result count of the
// secondary sale search.
func WithSecondarySearch(radiusMiles float64, maxResults int) Option {
	return func(s *Service) {
		if radiusMiles > 0 {
			s.searchRadius = radiusMiles
		}
		if maxResults > 0 {
			s.searchMax = maxResults
		}
	}
}

// WithTolerances replaces the default tolerances.
func WithTolerances(t models.Tolerances) Option {
	return func(s *Service) {
		s.tolerances = t
	}
}

// New creates the engine around the authoritative registry.
func New(registry ports.Registry, opts ...Option) *Service {
	s := &Service{
		registry:     registry,
		logger:       slog.Default(),
		batchSize:    defaultBatchSize,
		defaultLimit: defaultLimit,
		maxLimit:     defaultMaxLimit,
		searchRadius: defaultSearchRadius,
		searchMax:    defaultSearchMax,
		tolerances:   models.DefaultTolerances(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subject loads the parcel under appeal from the registry.
func (s *Service) Subject(ctx context.Context, pin domain.ParcelID) (*models.SubjectProperty, error) {
	subject, err := s.registry.FetchParcel(ctx, pin)
	if err != nil {
		return nil, s.registryError(ctx, pin, err)
	}
	return subject, nil
}

// Comparables loads the subject and runs FindComparables for it.
func (s *Service) Comparables(ctx context.Context, pin domain.ParcelID, opts Options) (*models.SubjectProperty, []models.MergedComparable, error) {
	subject, err := s.Subject(ctx, pin)
	if err != nil {
		return nil, nil, err
	}
	comps, err := s.FindComparables(ctx, subject, opts)
	if err != nil {
		return nil, nil, s.registryError(ctx, pin, err)
	}
	return subject, comps, nil
}

// Quota reports secondary provider usage. Without a secondary source the
// zero status is returned.
func (s *Service) Quota() models.QuotaStatus {
	if s.enrichment == nil {
		return models.QuotaStatus{}
	}
	return s.enrichment.Quota()
}

// DeriveManual completes a user-entered comparable with the same derived
// fields as discovered ones.
func (s *Service) DeriveManual(subject *models.SubjectProperty, candidate models.ComparableCandidate) models.MergedComparable {
	candidate.Origin = models.OriginManual
	if candidate.Source == "" {
		candidate.Source = string(models.OriginManual)
	}
	return models.Derive(subject, candidate, false)
}

func (s *Service) clock(ctx context.Context) time.Time {
	if s.now != nil {
		return s.now()
	}
	return requestcontext.Now(ctx)
}

func (s *Service) limit(requested int) int {
	switch {
	case requested <= 0:
		return s.defaultLimit
	case requested > s.maxLimit:
		return s.maxLimit
	default:
		return requested
	}
}
