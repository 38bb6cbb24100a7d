// Package ports defines what the comparables engine needs from the outside:
// the authoritative registry, the quota-limited enrichment cache and the
// geocode fallback. The engine depends on these interfaces only.
package ports

//go:generate mockgen -source=ports.go -destination=../mocks/mocks.go -package=mocks Registry,Enrichment,Geocoder

import (
	"context"

	"taxappeal/internal/evidence/models"
	"taxappeal/internal/evidence/providers"
	"taxappeal/pkg/domain"
	"taxappeal/pkg/geo"
)

// Registry is the authoritative source. Its errors always propagate.
type Registry interface {
	FetchParcel(ctx context.Context, pin domain.ParcelID) (*models.SubjectProperty, error)
	FetchLocation(ctx context.Context, pin domain.ParcelID) (*models.Location, error)
	FetchComparableSales(ctx context.Context, subject *models.SubjectProperty, tol models.Tolerances, limit int) ([]models.ComparableCandidate, error)
	FetchEquityComparables(ctx context.Context, subject *models.SubjectProperty, tol models.Tolerances, limit int) ([]models.ComparableCandidate, error)
}

// Enrichment is the additive secondary source behind its monthly quota.
type Enrichment interface {
	GetEnrichment(ctx context.Context, pin domain.ParcelID) providers.Outcome[*models.EnrichmentEntry]
	SearchSales(ctx context.Context, req models.SaleSearchRequest) providers.Outcome[[]models.ComparableCandidate]
	Quota() models.QuotaStatus
}

// Geocoder resolves coordinates for an address when the registry has none.
type Geocoder interface {
	Resolve(ctx context.Context, address, unit, state string) providers.Outcome[geo.Coordinates]
}
