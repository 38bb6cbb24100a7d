package registry

import (
	"context"

	"taxappeal/internal/evidence/models"
	"taxappeal/internal/evidence/providers"
	"taxappeal/pkg/domain"
)

type locationRow struct {
	PIN          value `json:"pin"`
	Year         value `json:"year"`
	Class        value `json:"class"`
	Neighborhood value `json:"nbhd_code"`
	Township     value `json:"township_code"`
	TaxCode      value `json:"tax_code"`
	Lat          value `json:"lat"`
	Lon          value `json:"lon"`
	Address      value `json:"prop_address_full"`
	City         value `json:"prop_address_city_name"`
	Zip          value `json:"prop_address_zipcode_1"`
}

var locationFields = []string{
	"pin", "year", "class", "nbhd_code", "township_code", "tax_code",
	"lat", "lon", "prop_address_full", "prop_address_city_name", "prop_address_zipcode_1",
}

// FetchLocation returns the newest location record for pin.
func (c *Client) FetchLocation(ctx context.Context, pin domain.ParcelID) (*models.Location, error) {
	q := NewQuery().
		Select(locationFields...).
		Eq("pin", pin.String()).
		OrderDesc("year").
		Limit(1)

	var rows []locationRow
	if err := c.query(ctx, c.datasets.Location, q, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, providers.NewSourceError(providers.ErrorNotFound, providers.SourcePrimaryRegistry,
			"parcel not found", nil).WithDataset(c.datasets.Location)
	}
	return c.toLocation(pin, rows[0]), nil
}

func (c *Client) toLocation(pin domain.ParcelID, r locationRow) *models.Location {
	loc := &models.Location{
		PIN: pin,
		Address: models.Address{
			Line: r.Address.String(),
			City: r.City.String(),
			Zip:  r.Zip.String(),
		},
		Class:        r.Class.String(),
		Neighborhood: r.Neighborhood.String(),
		Township:     r.Township.String(),
		TaxCode:      r.TaxCode.String(),
		Coordinates:  coordinates(r.Lat, r.Lon),
	}
	if loc.Address.Line != "" {
		loc.Address.State = c.state
	}
	if y := r.Year.Int(); y != nil {
		loc.Year = *y
	}
	return loc
}
