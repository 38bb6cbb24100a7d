package provider

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"

	"taxappeal/internal/evidence/models"
	"taxappeal/internal/evidence/providers"
	"taxappeal/pkg/domain"
	"taxappeal/pkg/geo"
)

// PropertyDetail fetches the provider's record for one parcel. The returned
// entry carries the full response body as its raw payload.
func (c *Client) PropertyDetail(ctx context.Context, pin domain.ParcelID) (*models.EnrichmentEntry, error) {
	body, err := c.get(ctx, EndpointDetail, url.Values{"apn": {pin.Display()}})
	if err != nil {
		return nil, err
	}
	resp, err := c.decode(EndpointDetail, body)
	if err != nil {
		return nil, err
	}
	if len(resp.Property) == 0 {
		return nil, notFound(EndpointDetail)
	}
	return resp.Property[0].toEntry(pin, json.RawMessage(body), c.now()), nil
}

// AddressLookup resolves a bare street line within a state to coordinates.
func (c *Client) AddressLookup(ctx context.Context, street, state string) (geo.Coordinates, error) {
	body, err := c.get(ctx, EndpointAddress, url.Values{"address1": {street}, "address2": {state}})
	if err != nil {
		return geo.Coordinates{}, err
	}
	resp, err := c.decode(EndpointAddress, body)
	if err != nil {
		return geo.Coordinates{}, err
	}
	for _, p := range resp.Property {
		if coords := p.coordinates(); coords != nil {
			return *coords, nil
		}
	}
	return geo.Coordinates{}, notFound(EndpointAddress)
}

// SaleSearch returns sales within the radius and window, in provider order.
func (c *Client) SaleSearch(ctx context.Context, req models.SaleSearchRequest) ([]models.ComparableCandidate, error) {
	params := url.Values{
		"latitude":            {strconv.FormatFloat(req.Center.Lat, 'f', 6, 64)},
		"longitude":           {strconv.FormatFloat(req.Center.Lon, 'f', 6, 64)},
		"radius":              {strconv.FormatFloat(req.RadiusMiles, 'f', 2, 64)},
		"startsalesearchdate": {req.Since.Format("2006/01/02")},
		"endsalesearchdate":   {req.Until.Format("2006/01/02")},
		"orderby":             {"salesearchdate desc"},
	}
	if req.Max > 0 {
		params.Set("pagesize", strconv.Itoa(req.Max))
	}

	body, err := c.get(ctx, EndpointSales, params)
	if providers.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	resp, err := c.decode(EndpointSales, body)
	if err != nil {
		return nil, err
	}

	out := make([]models.ComparableCandidate, 0, len(resp.Property))
	for _, p := range resp.Property {
		out = append(out, p.toCandidate())
		if req.Max > 0 && len(out) == req.Max {
			break
		}
	}
	return out, nil
}

func notFound(endpoint string) error {
	return providers.NewSourceError(providers.ErrorNotFound, providers.SourceSecondaryProvider, "no record", nil).
		WithDataset(endpoint)
}
