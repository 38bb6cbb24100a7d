package registry

import (
	"context"
)

type taxRateRow struct {
	TaxCode value `json:"tax_code"`
	Year    value `json:"year"`
	Rate    value `json:"tax_code_rate"`
}

// FetchTaxRate returns the composite rate for taxCode in hintYear, or in the
// nearest earlier year down to the configured floor. A code with no published
// rate yields a nil rate and no error.
func (c *Client) FetchTaxRate(ctx context.Context, taxCode string, hintYear int) (*float64, int, error) {
	if taxCode == "" || hintYear < c.floorYear {
		return nil, 0, nil
	}

	// Newest year at or below the hint wins, which is the backward walk
	// expressed as one query.
	q := NewQuery().
		Select("tax_code", "year", "tax_code_rate").
		Eq("tax_code", taxCode).
		Between("year", c.floorYear, hintYear).
		OrderDesc("year").
		Limit(hintYear - c.floorYear + 1)

	var rows []taxRateRow
	if err := c.query(ctx, c.datasets.TaxRates, q, &rows); err != nil {
		return nil, 0, err
	}
	for _, r := range rows {
		rate := r.Rate.Float()
		year := r.Year.Int()
		if rate == nil || year == nil {
			continue
		}
		return rate, *year, nil
	}
	return nil, 0, nil
}
