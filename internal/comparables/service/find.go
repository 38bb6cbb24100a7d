package service

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"taxappeal/internal/evidence/models"
	"taxappeal/internal/evidence/providers"
	"taxappeal/pkg/domain"
	dErrors "taxappeal/pkg/domain-errors"
	"taxappeal/pkg/geo"
	pstrings "taxappeal/pkg/platform/strings"
)

// FindComparables returns registry comparables in recency order followed by
// secondary provider comparables in provider order, one record per parcel.
// Only a registry failure is returned as an error.
func (s *Service) FindComparables(ctx context.Context, subject *models.SubjectProperty, opts Options) ([]models.MergedComparable, error) {
	if subject == nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "subject is required")
	}
	start := time.Now()
	kind := opts.Kind
	if kind == "" {
		kind = KindSales
	}
	tol := s.tolerances
	if opts.Tolerances != nil {
		tol = *opts.Tolerances
	}

	primary, err := s.fetchPrimary(ctx, subject, kind, tol, s.limit(opts.Limit))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", providers.SourcePrimaryRegistry, err)
	}
	primary = pstrings.DedupeBy(primary, func(c models.ComparableCandidate) string {
		pin := c.NormalizedPIN()
		if pin == subject.PIN.String() {
			return ""
		}
		return pin
	})

	s.locate(ctx, primary)

	// Distances are measured from a copy so a geocoded position never leaks
	// into the caller's subject.
	origin := *subject
	var secondary []models.ComparableCandidate
	if opts.IncludeSecondarySource {
		if center, ok := s.subjectCoordinates(ctx, subject); ok {
			origin.Coordinates = &center
			secondary = s.searchSecondary(ctx, center, tol)
		}
	}

	merged := merge(subject.PIN, primary, secondary)
	s.enrich(ctx, merged.primary, merged.inBoth)

	result := make([]models.MergedComparable, 0, len(merged.primary)+len(merged.secondary))
	for i, c := range merged.primary {
		result = append(result, models.Derive(&origin, c, merged.inBoth[i]))
	}
	for _, c := range merged.secondary {
		result = append(result, models.Derive(&origin, c, false))
	}

	s.metrics.ObserveResults(string(kind), len(result))
	elapsed := time.Since(start)
	s.metrics.ObserveFindLatency(elapsed)
	s.logger.InfoContext(ctx, "comparables found",
		"pin", subject.PIN.String(),
		"kind", string(kind),
		"primary", len(merged.primary),
		"secondary", len(merged.secondary),
		"duration_ms", elapsed.Milliseconds(),
	)
	return result, nil
}

func (s *Service) fetchPrimary(ctx context.Context, subject *models.SubjectProperty, kind Kind, tol models.Tolerances, limit int) ([]models.ComparableCandidate, error) {
	if kind == KindEquity {
		return s.registry.FetchEquityComparables(ctx, subject, tol, limit)
	}
	return s.registry.FetchComparableSales(ctx, subject, tol, limit)
}

// locate fills coordinates from the registry's location dataset. Lookups run
// in groups of batchSize, one group at a time. Failures leave the candidate
// without coordinates.
func (s *Service) locate(ctx context.Context, candidates []models.ComparableCandidate) {
	var pending []int
	for i := range candidates {
		if candidates[i].Coordinates == nil {
			pending = append(pending, i)
		}
	}

	s.inBatches(ctx, pending, func(ctx context.Context, i int) {
		c := &candidates[i]
		pin, err := domain.ParseParcelID(c.PIN)
		if err != nil {
			return
		}
		loc, err := s.registry.FetchLocation(ctx, pin)
		if err != nil {
			if !providers.IsNotFound(err) {
				s.logger.WarnContext(ctx, "candidate location lookup failed",
					"pin", pin.String(),
					"source", providers.SourcePrimaryRegistry,
					"error", err,
				)
			}
			return
		}
		if loc.Coordinates != nil && loc.Coordinates.Valid() {
			c.Coordinates = loc.Coordinates
		}
		if c.Address.IsZero() {
			c.Address = loc.Address
		}
	})
}

// inBatches calls fn for every index, batchSize at a time. Each call owns
// its index exclusively.
func (s *Service) inBatches(ctx context.Context, indexes []int, fn func(context.Context, int)) {
	for start := 0; start < len(indexes); start += s.batchSize {
		if ctx.Err() != nil {
			return
		}
		end := min(start+s.batchSize, len(indexes))

		var g errgroup.Group
		for _, i := range indexes[start:end] {
			g.Go(func() error {
				fn(ctx, i)
				return nil
			})
		}
		_ = g.Wait()
	}
}

// subjectCoordinates prefers the registry position and falls back to
// geocoding the situs address.
func (s *Service) subjectCoordinates(ctx context.Context, subject *models.SubjectProperty) (geo.Coordinates, bool) {
	if subject.Coordinates != nil && subject.Coordinates.Valid() {
		return *subject.Coordinates, true
	}
	if s.geocoder == nil || subject.Address.IsZero() {
		s.degrade(ctx, subject.PIN, providers.SourceGeocode, providers.ErrorUnavailable, nil)
		return geo.Coordinates{}, false
	}

	out := s.geocoder.Resolve(ctx, subject.Address.Line, "", subject.Address.State)
	if !out.Found {
		s.degrade(ctx, subject.PIN, providers.SourceGeocode, out.Degraded, out.Err)
		return geo.Coordinates{}, false
	}
	return out.Value, true
}

func (s *Service) searchSecondary(ctx context.Context, center geo.Coordinates, tol models.Tolerances) []models.ComparableCandidate {
	if s.enrichment == nil {
		return nil
	}
	now := s.clock(ctx)
	req := models.SaleSearchRequest{
		Center:      center,
		RadiusMiles: s.searchRadius,
		Until:       now,
		Max:         s.searchMax,
	}
	if tol.RecencyMonths > 0 {
		req.Since = now.AddDate(0, -tol.RecencyMonths, 0)
	}

	out := s.enrichment.SearchSales(ctx, req)
	if !out.Found {
		s.degrade(ctx, "", providers.SourceSecondaryProvider, out.Degraded, out.Err)
		return nil
	}
	return out.Value
}

// enrich fills null characteristics of registry candidates from the
// enrichment cache. Registry values are never overwritten.
func (s *Service) enrich(ctx context.Context, candidates []models.ComparableCandidate, inBoth []bool) {
	if s.enrichment == nil {
		return
	}
	var pending []int
	for i := range candidates {
		if candidates[i].MissingCharacteristics() {
			pending = append(pending, i)
		}
	}

	s.inBatches(ctx, pending, func(ctx context.Context, i int) {
		pin, err := domain.ParseParcelID(candidates[i].PIN)
		if err != nil {
			return
		}
		out := s.enrichment.GetEnrichment(ctx, pin)
		if !out.Found {
			if !out.IsNotFound() && !out.IsUnavailable() {
				s.degrade(ctx, pin, providers.SourceSecondaryProvider, out.Degraded, out.Err)
			}
			return
		}
		if !out.Value.HasData() {
			return
		}
		candidates[i].FillMissing(out.Value.Characteristics())
		if candidates[i].Coordinates == nil && out.Value.Coordinates != nil && out.Value.Coordinates.Valid() {
			candidates[i].Coordinates = out.Value.Coordinates
		}
		inBoth[i] = true
	})
}

func (s *Service) degrade(ctx context.Context, pin domain.ParcelID, source string, category providers.ErrorCategory, err error) {
	s.metrics.IncrementDegradation(source, string(category))
	s.logger.WarnContext(ctx, "additive source degraded",
		"pin", pin.String(),
		"source", source,
		"category", string(category),
		"error", err,
	)
}
