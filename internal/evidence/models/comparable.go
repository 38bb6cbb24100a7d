package models

import (
	"time"

	"taxappeal/pkg/domain"
	"taxappeal/pkg/geo"
)

// Origin tags where a comparable came from.
type Origin string

const (
	OriginPrimaryRegistry   Origin = "primary_registry"
	OriginSecondaryProvider Origin = "secondary_provider"
	OriginManual            Origin = "manual"
)

// ComparableCandidate is one potential comparable as a single source reported
// it. Candidates are built per request and never stored on their own.
type ComparableCandidate struct {
	Origin        Origin           `json:"origin"`
	PIN           string           `json:"pin"`
	Address       Address          `json:"address"`
	SalePrice     *float64         `json:"sale_price,omitempty"`
	SaleDate      *time.Time       `json:"sale_date,omitempty"`
	LivingArea    *float64         `json:"living_area,omitempty"`
	YearBuilt     *int             `json:"year_built,omitempty"`
	Bedrooms      *int             `json:"bedrooms,omitempty"`
	Bathrooms     *float64         `json:"bathrooms,omitempty"`
	Class         string           `json:"class,omitempty"`
	AssessedValue *float64         `json:"assessed_value,omitempty"`
	Coordinates   *geo.Coordinates `json:"coordinates,omitempty"`
	Source        string           `json:"source"`
}

// NormalizedPIN is the digits-only identifier used for deduplication.
func (c ComparableCandidate) NormalizedPIN() string {
	return domain.NormalizeParcelID(c.PIN)
}

// MissingCharacteristics reports whether any similarity field is still null.
func (c ComparableCandidate) MissingCharacteristics() bool {
	return c.LivingArea == nil || c.YearBuilt == nil || c.Bedrooms == nil || c.Bathrooms == nil
}

// MergedComparable is the reconciled record handed to the evidence packet.
// Exactly one exists per normalized PIN in a result set.
type MergedComparable struct {
	ComparableCandidate
	PricePerUnitArea    *float64 `json:"price_per_unit_area"`
	DistanceFromSubject *float64 `json:"distance_from_subject"`
	InBothSources       bool     `json:"in_both_sources"`
}

// Derive computes the derived fields of c relative to subject. It is the only
// place price per area and distance are calculated.
func Derive(subject *SubjectProperty, c ComparableCandidate, inBoth bool) MergedComparable {
	m := MergedComparable{
		ComparableCandidate: c,
		InBothSources:       inBoth,
	}
	m.PIN = c.NormalizedPIN()
	if c.SalePrice != nil && c.LivingArea != nil && *c.SalePrice > 0 && *c.LivingArea > 0 {
		ppa := *c.SalePrice / *c.LivingArea
		m.PricePerUnitArea = &ppa
	}
	if subject != nil && subject.Coordinates != nil && c.Coordinates != nil &&
		subject.Coordinates.Valid() && c.Coordinates.Valid() {
		d := geo.DistanceMiles(*subject.Coordinates, *c.Coordinates)
		m.DistanceFromSubject = &d
	}
	return m
}

// FillMissing copies every field of from into c where c has nothing. It never
// overwrites a populated field, and reports whether anything was copied.
func (c *ComparableCandidate) FillMissing(from Characteristics) bool {
	filled := false
	if c.LivingArea == nil && from.LivingArea != nil {
		c.LivingArea = from.LivingArea
		filled = true
	}
	if c.YearBuilt == nil && from.YearBuilt != nil {
		c.YearBuilt = from.YearBuilt
		filled = true
	}
	if c.Bedrooms == nil && from.Bedrooms != nil {
		c.Bedrooms = from.Bedrooms
		filled = true
	}
	if c.Bathrooms == nil && from.Bathrooms != nil {
		c.Bathrooms = from.Bathrooms
		filled = true
	}
	if c.Class == "" && from.Class != "" {
		c.Class = from.Class
		filled = true
	}
	return filled
}
