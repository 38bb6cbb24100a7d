package registry

import (
	"context"

	"taxappeal/internal/evidence/models"
	"taxappeal/pkg/domain"
)

// characteristicsStrategy is one dataset that may describe a parcel. The
// chain is tried in order until a dataset answers.
type characteristicsStrategy struct {
	schema  models.Schema
	dataset string
	fields  []string
	parse   func(characteristicsRow) models.Characteristics
}

// characteristicsRow carries the union of both datasets' columns.
type characteristicsRow struct {
	PIN   value `json:"pin"`
	Year  value `json:"year"`
	Class value `json:"class"`

	BuildingSF value `json:"char_bldg_sf"`
	UnitSF     value `json:"char_unit_sf"`
	YearBuilt  value `json:"char_yrblt"`
	LandSF     value `json:"char_land_sf"`

	Beds      value `json:"char_beds"`
	FullBath  value `json:"char_fbath"`
	HalfBath  value `json:"char_hbath"`
	Bedrooms  value `json:"char_bedrooms"`
	FullBaths value `json:"char_full_baths"`
	HalfBaths value `json:"char_half_baths"`
}

func (c *Client) characteristicsChain() []characteristicsStrategy {
	return []characteristicsStrategy{
		{
			schema:  models.SchemaSingleUnit,
			dataset: c.datasets.SingleUnit,
			fields: []string{"pin", "year", "class", "char_bldg_sf", "char_yrblt",
				"char_beds", "char_fbath", "char_hbath", "char_land_sf"},
			parse: func(r characteristicsRow) models.Characteristics {
				return models.Characteristics{
					LivingArea: r.BuildingSF.PositiveFloat(),
					YearBuilt:  r.YearBuilt.PositiveInt(),
					Bedrooms:   r.Beds.Int(),
					Bathrooms:  bathrooms(r.FullBath, r.HalfBath),
					LandArea:   r.LandSF.PositiveFloat(),
					Class:      r.Class.String(),
					Schema:     models.SchemaSingleUnit,
				}
			},
		},
		{
			schema:  models.SchemaMultiUnit,
			dataset: c.datasets.MultiUnit,
			fields: []string{"pin", "year", "char_unit_sf", "char_yrblt",
				"char_bedrooms", "char_full_baths", "char_half_baths", "char_land_sf"},
			parse: func(r characteristicsRow) models.Characteristics {
				return models.Characteristics{
					LivingArea: r.UnitSF.PositiveFloat(),
					YearBuilt:  r.YearBuilt.PositiveInt(),
					Bedrooms:   r.Bedrooms.Int(),
					Bathrooms:  bathrooms(r.FullBaths, r.HalfBaths),
					LandArea:   r.LandSF.PositiveFloat(),
					Schema:     models.SchemaMultiUnit,
				}
			},
		},
	}
}

// FetchCharacteristics runs the strategy chain for one parcel. A parcel no
// dataset describes yields empty characteristics and no error.
func (c *Client) FetchCharacteristics(ctx context.Context, pin domain.ParcelID) (models.Characteristics, error) {
	for _, s := range c.characteristicsChain() {
		q := NewQuery().
			Select(s.fields...).
			Eq("pin", pin.String()).
			OrderDesc("year").
			Limit(1)

		var rows []characteristicsRow
		if err := c.query(ctx, s.dataset, q, &rows); err != nil {
			return models.Characteristics{}, err
		}
		if len(rows) > 0 {
			return s.parse(rows[0]), nil
		}
	}
	return models.Characteristics{}, nil
}

// FetchCharacteristicsBatch resolves many parcels with one query per
// strategy, each covering only the pins still unresolved. Pins absent from
// every dataset are absent from the result.
func (c *Client) FetchCharacteristicsBatch(ctx context.Context, pins []string) (map[string]models.Characteristics, error) {
	out := make(map[string]models.Characteristics, len(pins))
	pending := make([]string, 0, len(pins))
	seen := make(map[string]struct{}, len(pins))
	for _, p := range pins {
		n := domain.NormalizeParcelID(p)
		if len(n) != domain.ParcelIDLength {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		pending = append(pending, n)
	}

	for _, s := range c.characteristicsChain() {
		if len(pending) == 0 {
			break
		}
		// Several years per parcel may match; newest first, first row wins.
		q := NewQuery().
			Select(s.fields...).
			In("pin", pending).
			OrderDesc("year").
			Limit(len(pending) * 30)

		var rows []characteristicsRow
		if err := c.query(ctx, s.dataset, q, &rows); err != nil {
			return nil, err
		}
		for _, r := range rows {
			pin := domain.NormalizeParcelID(r.PIN.String())
			if _, done := out[pin]; done {
				continue
			}
			if _, wanted := seen[pin]; !wanted {
				continue
			}
			out[pin] = s.parse(r)
		}

		next := pending[:0]
		for _, p := range pending {
			if _, ok := out[p]; !ok {
				next = append(next, p)
			}
		}
		pending = next
	}
	return out, nil
}
