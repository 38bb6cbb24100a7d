package registry

import (
	"context"

	"taxappeal/internal/evidence/models"
)

type saleRow struct {
	PIN          value `json:"pin"`
	SaleDate     value `json:"sale_date"`
	SalePrice    value `json:"sale_price"`
	Class        value `json:"class"`
	Neighborhood value `json:"nbhd"`
	DocumentNo   value `json:"doc_no"`
	MultiSale    value `json:"is_multisale"`
}

// FetchComparableSales returns recent arm's-length sales in the subject's
// neighborhood and class, newest first, excluding the subject itself.
// Candidates carry registry characteristics from one batch lookup.
func (c *Client) FetchComparableSales(ctx context.Context, subject *models.SubjectProperty, tol models.Tolerances, limit int) ([]models.ComparableCandidate, error) {
	if subject == nil || subject.Neighborhood == "" {
		return nil, nil
	}

	q := NewQuery().
		Select("pin", "sale_date", "sale_price", "class", "nbhd", "doc_no", "is_multisale").
		Eq("nbhd", subject.Neighborhood).
		NotEq("pin", subject.PIN.String())
	if subject.Class != "" {
		q.Eq("class", subject.Class)
	}
	if tol.RecencyMonths > 0 {
		cutoff := c.now().AddDate(0, -tol.RecencyMonths, 0)
		q.GreaterOrEq("sale_date", floatingTimestamp(cutoff))
	}
	if tol.ExcludeMultiSale {
		q.IsFalse("is_multisale")
	}
	q.OrderDesc("sale_date").Limit(limit)

	var rows []saleRow
	if err := c.query(ctx, c.datasets.Sales, q, &rows); err != nil {
		return nil, err
	}

	candidates := make([]models.ComparableCandidate, 0, len(rows))
	for _, r := range rows {
		candidates = append(candidates, models.ComparableCandidate{
			Origin:    models.OriginPrimaryRegistry,
			PIN:       r.PIN.String(),
			SalePrice: r.SalePrice.PositiveFloat(),
			SaleDate:  r.SaleDate.Time(),
			Class:     r.Class.String(),
			Source:    sourceLabel(c.datasets.Sales),
		})
	}
	return c.attachCharacteristics(ctx, subject, tol, candidates)
}

// attachCharacteristics fills registry characteristics into candidates with
// one batch lookup and drops those outside the size/age tolerances.
func (c *Client) attachCharacteristics(ctx context.Context, subject *models.SubjectProperty, tol models.Tolerances, candidates []models.ComparableCandidate) ([]models.ComparableCandidate, error) {
	if len(candidates) == 0 {
		return candidates, nil
	}
	pins := make([]string, len(candidates))
	for i, cand := range candidates {
		pins[i] = cand.PIN
	}
	chars, err := c.FetchCharacteristicsBatch(ctx, pins)
	if err != nil {
		return nil, err
	}

	out := candidates[:0]
	for _, cand := range candidates {
		if ch, ok := chars[cand.NormalizedPIN()]; ok {
			cand.FillMissing(ch)
		}
		if !tol.Accepts(subject.Characteristics, cand) {
			continue
		}
		out = append(out, cand)
	}
	return out, nil
}

func sourceLabel(dataset string) string {
	return "registry/" + dataset
}
