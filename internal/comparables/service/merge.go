package service

import (
	"taxappeal/internal/evidence/models"
	"taxappeal/pkg/domain"
)

type mergeResult struct {
	primary   []models.ComparableCandidate
	inBoth    []bool
	secondary []models.ComparableCandidate
}

// merge reconciles secondary candidates against the registry's. The registry
// wins a collision; the secondary record may only fill registry nulls and
// marks the parcel as present in both sources. Secondary records without a
// valid parcel id, for the subject itself, or repeated within the provider
// response are dropped.
func merge(subject domain.ParcelID, primary, secondary []models.ComparableCandidate) mergeResult {
	res := mergeResult{
		primary: primary,
		inBoth:  make([]bool, len(primary)),
	}
	byPIN := make(map[string]int, len(primary))
	for i, c := range primary {
		byPIN[c.NormalizedPIN()] = i
	}

	seen := make(map[string]struct{}, len(secondary))
	for _, c := range secondary {
		pin := c.NormalizedPIN()
		if !domain.IsValidParcelID(pin) || pin == subject.String() {
			continue
		}
		if i, ok := byPIN[pin]; ok {
			fillFrom(&res.primary[i], c)
			res.inBoth[i] = true
			continue
		}
		if _, dup := seen[pin]; dup {
			continue
		}
		seen[pin] = struct{}{}
		c.Origin = models.OriginSecondaryProvider
		c.PIN = pin
		res.secondary = append(res.secondary, c)
	}
	return res
}

// fillFrom copies every nullable field of src that dst lacks.
func fillFrom(dst *models.ComparableCandidate, src models.ComparableCandidate) {
	dst.FillMissing(models.Characteristics{
		LivingArea: src.LivingArea,
		YearBuilt:  src.YearBuilt,
		Bedrooms:   src.Bedrooms,
		Bathrooms:  src.Bathrooms,
		Class:      src.Class,
	})
	if dst.SalePrice == nil {
		dst.SalePrice = src.SalePrice
	}
	if dst.SaleDate == nil {
		dst.SaleDate = src.SaleDate
	}
	if dst.AssessedValue == nil {
		dst.AssessedValue = src.AssessedValue
	}
	if dst.Coordinates == nil && src.Coordinates != nil && src.Coordinates.Valid() {
		dst.Coordinates = src.Coordinates
	}
	if dst.Address.IsZero() {
		dst.Address = src.Address
	}
}
