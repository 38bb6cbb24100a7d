package handler

import (
	"taxappeal/internal/comparables/service"
	"taxappeal/internal/evidence/models"
)

// ComparablesResponse is the HTTP response for POST /properties/{pin}/comparables.
type ComparablesResponse struct {
	SubjectPIN  string                    `json:"subject_pin"`
	Kind        string                    `json:"kind"`
	Count       int                       `json:"count"`
	Comparables []models.MergedComparable `json:"comparables"`
}

// NewComparablesResponse builds the response. Comparables is never null.
func NewComparablesResponse(subject *models.SubjectProperty, kind service.Kind, comps []models.MergedComparable) *ComparablesResponse {
	if comps == nil {
		comps = []models.MergedComparable{}
	}
	if kind == "" {
		kind = service.KindSales
	}
	return &ComparablesResponse{
		SubjectPIN:  subject.PIN.String(),
		Kind:        string(kind),
		Count:       len(comps),
		Comparables: comps,
	}
}
