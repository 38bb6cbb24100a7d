package models

import (
	"math"
	"time"

	"taxappeal/pkg/geo"
)

// Tolerances narrow the registry's candidate pool. A zero value disables the
// corresponding check.
type Tolerances struct {
	RecencyMonths    int     `json:"recency_months"`
	LivingAreaPct    float64 `json:"living_area_pct"`
	YearBuiltYears   int     `json:"year_built_years"`
	ExcludeMultiSale bool    `json:"exclude_multi_sale"`
}

// DefaultTolerances are used when a request leaves every field unset.
func DefaultTolerances() Tolerances {
	return Tolerances{
		RecencyMonths:    24,
		LivingAreaPct:    25,
		YearBuiltYears:   10,
		ExcludeMultiSale: true,
	}
}

// Accepts reports whether candidate is similar enough to subject. Unknown
// values on either side never exclude a candidate.
func (t Tolerances) Accepts(subject Characteristics, c ComparableCandidate) bool {
	if t.LivingAreaPct > 0 && subject.LivingArea != nil && c.LivingArea != nil && *subject.LivingArea > 0 {
		diff := math.Abs(*c.LivingArea-*subject.LivingArea) / *subject.LivingArea * 100
		if diff > t.LivingAreaPct {
			return false
		}
	}
	if t.YearBuiltYears > 0 && subject.YearBuilt != nil && c.YearBuilt != nil {
		diff := *c.YearBuilt - *subject.YearBuilt
		if diff < 0 {
			diff = -diff
		}
		if diff > t.YearBuiltYears {
			return false
		}
	}
	return true
}

// SaleSearchRequest bounds a radius/time-window sales search.
type SaleSearchRequest struct {
	Center      geo.Coordinates
	RadiusMiles float64
	Since       time.Time
	Until       time.Time
	Max         int
}
