package models

import (
	"encoding/json"
	"time"

	"taxappeal/pkg/domain"
	"taxappeal/pkg/geo"
)

// EnrichmentEntry is the secondary provider's answer for one parcel. Once an
// entry exists for a PIN it is treated as permanent.
type EnrichmentEntry struct {
	PIN           domain.ParcelID  `json:"pin"`
	LivingArea    *float64         `json:"living_area,omitempty"`
	YearBuilt     *int             `json:"year_built,omitempty"`
	Bedrooms      *int             `json:"bedrooms,omitempty"`
	Bathrooms     *float64         `json:"bathrooms,omitempty"`
	LotSize       *float64         `json:"lot_size,omitempty"`
	Address       Address          `json:"address"`
	Coordinates   *geo.Coordinates `json:"coordinates,omitempty"`
	LastSalePrice *float64         `json:"last_sale_price,omitempty"`
	LastSaleDate  *time.Time       `json:"last_sale_date,omitempty"`
	// RawPayload is the provider's full response body. Nil for entries written
	// before full payloads were stored.
	RawPayload json.RawMessage `json:"raw_payload,omitempty"`
	FetchedAt  time.Time       `json:"fetched_at"`
}

// HasFullPayload reports whether the raw provider response is retained.
func (e *EnrichmentEntry) HasFullPayload() bool {
	return e != nil && len(e.RawPayload) > 0
}

// Characteristics projects the entry onto the similarity fields.
func (e *EnrichmentEntry) Characteristics() Characteristics {
	if e == nil {
		return Characteristics{}
	}
	return Characteristics{
		LivingArea: e.LivingArea,
		YearBuilt:  e.YearBuilt,
		Bedrooms:   e.Bedrooms,
		Bathrooms:  e.Bathrooms,
		LandArea:   e.LotSize,
	}
}

// HasData reports whether the entry carries at least one usable field.
func (e *EnrichmentEntry) HasData() bool {
	return e != nil && e.Richness() > 0
}

// Richness counts populated fields. The raw payload counts as one field so a
// backfilled entry outranks an otherwise identical legacy one.
func (e *EnrichmentEntry) Richness() int {
	if e == nil {
		return 0
	}
	n := 0
	for _, set := range []bool{
		e.LivingArea != nil,
		e.YearBuilt != nil,
		e.Bedrooms != nil,
		e.Bathrooms != nil,
		e.LotSize != nil,
		e.Coordinates != nil,
		e.LastSalePrice != nil,
		e.LastSaleDate != nil,
		!e.Address.IsZero(),
		e.HasFullPayload(),
	} {
		if set {
			n++
		}
	}
	return n
}

// WithoutPayload returns a copy that drops the raw payload, for the memory tier.
func (e *EnrichmentEntry) WithoutPayload() *EnrichmentEntry {
	if e == nil {
		return nil
	}
	cp := *e
	cp.RawPayload = nil
	return &cp
}

// QuotaStatus reports secondary provider usage for the current month.
type QuotaStatus struct {
	Month     string `json:"month"`
	Used      int    `json:"used"`
	Ceiling   int    `json:"ceiling"`
	Remaining int    `json:"remaining"`
}
