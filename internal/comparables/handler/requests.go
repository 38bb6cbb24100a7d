package handler

import (
	"strings"
	"time"

	"taxappeal/internal/comparables/service"
	"taxappeal/internal/evidence/models"
	"taxappeal/pkg/domain"
	dErrors "taxappeal/pkg/domain-errors"
	"taxappeal/pkg/geo"
)

// ComparablesRequest is the body for POST /properties/{pin}/comparables.
// Every field is optional.
type ComparablesRequest struct {
	Limit                  int               `json:"limit"`
	IncludeSecondarySource bool              `json:"include_secondary_source"`
	Kind                   string            `json:"kind"`
	Tolerances             *ToleranceRequest `json:"tolerances"`

	parsedKind       service.Kind
	parsedTolerances *models.Tolerances
}

// ToleranceRequest overrides individual default tolerances.
type ToleranceRequest struct {
	RecencyMonths    *int     `json:"recency_months"`
	LivingAreaPct    *float64 `json:"living_area_pct"`
	YearBuiltYears   *int     `json:"year_built_years"`
	ExcludeMultiSale *bool    `json:"exclude_multi_sale"`
}

// Validate implements httputil.Validatable.
func (r *ComparablesRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if r.Limit < 0 {
		return dErrors.New(dErrors.CodeValidation, "limit must not be negative")
	}

	kind, err := service.ParseKind(strings.ToLower(strings.TrimSpace(r.Kind)))
	if err != nil {
		return err
	}
	r.parsedKind = kind

	if r.Tolerances == nil {
		return nil
	}
	tol := models.DefaultTolerances()
	t := r.Tolerances
	if t.RecencyMonths != nil {
		if *t.RecencyMonths < 0 || *t.RecencyMonths > 120 {
			return dErrors.New(dErrors.CodeValidation, "tolerances.recency_months must be between 0 and 120")
		}
		tol.RecencyMonths = *t.RecencyMonths
	}
	if t.LivingAreaPct != nil {
		if *t.LivingAreaPct < 0 || *t.LivingAreaPct > 100 {
			return dErrors.New(dErrors.CodeValidation, "tolerances.living_area_pct must be between 0 and 100")
		}
		tol.LivingAreaPct = *t.LivingAreaPct
	}
	if t.YearBuiltYears != nil {
		if *t.YearBuiltYears < 0 {
			return dErrors.New(dErrors.CodeValidation, "tolerances.year_built_years must not be negative")
		}
		tol.YearBuiltYears = *t.YearBuiltYears
	}
	if t.ExcludeMultiSale != nil {
		tol.ExcludeMultiSale = *t.ExcludeMultiSale
	}
	r.parsedTolerances = &tol
	return nil
}

// Options returns the validated engine options.
func (r *ComparablesRequest) Options() service.Options {
	return service.Options{
		Limit:                  r.Limit,
		IncludeSecondarySource: r.IncludeSecondarySource,
		Kind:                   r.parsedKind,
		Tolerances:             r.parsedTolerances,
	}
}

// ManualComparableRequest is a user-entered comparable.
type ManualComparableRequest struct {
	PIN         string           `json:"pin"`
	Address     string           `json:"address"`
	SalePrice   *float64         `json:"sale_price"`
	SaleDate    *time.Time       `json:"sale_date"`
	LivingArea  *float64         `json:"living_area"`
	YearBuilt   *int             `json:"year_built"`
	Bedrooms    *int             `json:"bedrooms"`
	Bathrooms   *float64         `json:"bathrooms"`
	Coordinates *geo.Coordinates `json:"coordinates"`
}

// Validate implements httputil.Validatable.
func (r *ManualComparableRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.PIN = strings.TrimSpace(r.PIN)
	r.Address = strings.TrimSpace(r.Address)
	if r.PIN == "" && r.Address == "" {
		return dErrors.New(dErrors.CodeValidation, "pin or address is required")
	}
	if r.PIN != "" && !domain.IsValidParcelID(r.PIN) {
		return dErrors.New(dErrors.CodeInvalidInput, "pin must contain exactly 14 digits")
	}
	if r.Coordinates != nil && !r.Coordinates.Valid() {
		return dErrors.New(dErrors.CodeValidation, "coordinates are out of range")
	}
	return nil
}

// Candidate converts the request to an engine candidate.
func (r *ManualComparableRequest) Candidate() models.ComparableCandidate {
	return models.ComparableCandidate{
		PIN:         r.PIN,
		Address:     models.Address{Line: r.Address},
		SalePrice:   r.SalePrice,
		SaleDate:    r.SaleDate,
		LivingArea:  r.LivingArea,
		YearBuilt:   r.YearBuilt,
		Bedrooms:    r.Bedrooms,
		Bathrooms:   r.Bathrooms,
		Coordinates: r.Coordinates,
	}
}
