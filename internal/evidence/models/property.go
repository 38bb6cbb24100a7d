// Package models holds the records exchanged between the registry client, the
// enrichment cache and the comparables engine. Nullable facts are pointers:
// nil means "no source reported it", never zero.
package models

import (
	"time"

	"taxappeal/pkg/domain"
	"taxappeal/pkg/geo"
)

// Schema identifies which characteristics dataset described a parcel.
type Schema string

const (
	SchemaSingleUnit Schema = "single_unit"
	SchemaMultiUnit  Schema = "multi_unit"
)

// AssessmentStage is the review stage an assessed figure came from, in
// increasing order of authority.
type AssessmentStage string

const (
	StageMailed    AssessmentStage = "mailed"
	StageCertified AssessmentStage = "certified"
	StageBoard     AssessmentStage = "board"
)

// Address is a situs address as the registry publishes it.
type Address struct {
	Line  string `json:"line"`
	City  string `json:"city,omitempty"`
	State string `json:"state,omitempty"`
	Zip   string `json:"zip,omitempty"`
}

// IsZero reports whether no street line is known.
func (a Address) IsZero() bool {
	return a.Line == ""
}

// Characteristics are the physical facts used to judge similarity.
type Characteristics struct {
	LivingArea *float64 `json:"living_area,omitempty"`
	YearBuilt  *int     `json:"year_built,omitempty"`
	Bedrooms   *int     `json:"bedrooms,omitempty"`
	Bathrooms  *float64 `json:"bathrooms,omitempty"`
	LandArea   *float64 `json:"land_area,omitempty"`
	Class      string   `json:"class,omitempty"`
	Schema     Schema   `json:"schema,omitempty"`
}

// IsEmpty reports whether no physical field is populated.
func (c Characteristics) IsEmpty() bool {
	return c.LivingArea == nil && c.YearBuilt == nil && c.Bedrooms == nil &&
		c.Bathrooms == nil && c.LandArea == nil
}

// AssessedValue is one tax year's assessment after stage merging.
type AssessedValue struct {
	Year        int             `json:"year"`
	Land        *float64        `json:"land,omitempty"`
	Building    *float64        `json:"building,omitempty"`
	Total       *float64        `json:"total,omitempty"`
	Stage       AssessmentStage `json:"stage"`
	MarketValue *float64        `json:"market_value,omitempty"`
}

// Location is the registry's address/position record for one parcel.
type Location struct {
	PIN          domain.ParcelID  `json:"pin"`
	Year         int              `json:"year"`
	Address      Address          `json:"address"`
	Class        string           `json:"class,omitempty"`
	Neighborhood string           `json:"neighborhood,omitempty"`
	Township     string           `json:"township,omitempty"`
	TaxCode      string           `json:"tax_code,omitempty"`
	Coordinates  *geo.Coordinates `json:"coordinates,omitempty"`
}

// SubjectProperty is the parcel under appeal, fully resolved from the registry.
type SubjectProperty struct {
	PIN             domain.ParcelID  `json:"pin"`
	Address         Address          `json:"address"`
	Class           string           `json:"class"`
	Neighborhood    string           `json:"neighborhood"`
	Township        string           `json:"township,omitempty"`
	TaxCode         string           `json:"tax_code,omitempty"`
	Characteristics Characteristics  `json:"characteristics"`
	Assessments     []AssessedValue  `json:"assessments"`
	TaxRate         *float64         `json:"tax_rate,omitempty"`
	TaxRateYear     int              `json:"tax_rate_year,omitempty"`
	Coordinates     *geo.Coordinates `json:"coordinates,omitempty"`
	RefreshedAt     time.Time        `json:"refreshed_at"`
}

// LatestAssessment returns the newest assessment, if any.
func (s *SubjectProperty) LatestAssessment() (AssessedValue, bool) {
	if s == nil || len(s.Assessments) == 0 {
		return AssessedValue{}, false
	}
	return s.Assessments[0], true
}
