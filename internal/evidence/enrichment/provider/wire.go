package provider

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"taxappeal/internal/evidence/models"
	"taxappeal/pkg/domain"
	"taxappeal/pkg/geo"
)

type propertyResponse struct {
	Status   responseStatus   `json:"status"`
	Property []propertyRecord `json:"property"`
}

type responseStatus struct {
	Code  int    `json:"code"`
	Msg   string `json:"msg"`
	Total int    `json:"total"`
}

type propertyRecord struct {
	Identifier struct {
		APN string `json:"apn"`
	} `json:"identifier"`
	Address struct {
		Line1       string `json:"line1"`
		Locality    string `json:"locality"`
		CountrySubd string `json:"countrySubd"`
		Postal1     string `json:"postal1"`
	} `json:"address"`
	Location struct {
		Latitude  number `json:"latitude"`
		Longitude number `json:"longitude"`
	} `json:"location"`
	Summary struct {
		YearBuilt number `json:"yearbuilt"`
		PropClass string `json:"propclass"`
	} `json:"summary"`
	Building struct {
		Size struct {
			LivingSize number `json:"livingsize"`
		} `json:"size"`
		Rooms struct {
			Beds       number `json:"beds"`
			BathsTotal number `json:"bathstotal"`
		} `json:"rooms"`
	} `json:"building"`
	Lot struct {
		LotSize2 number `json:"lotsize2"`
	} `json:"lot"`
	Sale struct {
		SaleTransDate string `json:"saleTransDate"`
		Amount        struct {
			SaleAmt     number `json:"saleamt"`
			SaleRecDate string `json:"salerecdate"`
		} `json:"amount"`
	} `json:"sale"`
}

// number accepts JSON numbers and numeric strings. Null, unparsable and
// non-finite values decode as absent.
type number struct {
	value float64
	set   bool
}

func (n *number) UnmarshalJSON(b []byte) error {
	*n = number{}
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		b = []byte(strings.TrimSpace(s))
	}
	f, err := strconv.ParseFloat(string(b), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	*n = number{value: f, set: true}
	return nil
}

// positive treats zero as unknown; the provider reports 0 for missing areas,
// prices and years.
func (n number) positive() *float64 {
	if !n.set || n.value <= 0 {
		return nil
	}
	f := n.value
	return &f
}

func (n number) positiveInt() *int {
	if !n.set || n.value <= 0 {
		return nil
	}
	i := int(n.value)
	return &i
}

// count keeps a reported zero: a studio has 0 bedrooms.
func (n number) count() *int {
	if !n.set || n.value < 0 {
		return nil
	}
	i := int(n.value)
	return &i
}

func (r propertyRecord) coordinates() *geo.Coordinates {
	if !r.Location.Latitude.set || !r.Location.Longitude.set {
		return nil
	}
	c := geo.Coordinates{Lat: r.Location.Latitude.value, Lon: r.Location.Longitude.value}
	if !c.Valid() {
		return nil
	}
	return &c
}

func (r propertyRecord) address() models.Address {
	return models.Address{
		Line:  r.Address.Line1,
		City:  r.Address.Locality,
		State: r.Address.CountrySubd,
		Zip:   r.Address.Postal1,
	}
}

func (r propertyRecord) saleDate() *time.Time {
	for _, s := range []string{r.Sale.SaleTransDate, r.Sale.Amount.SaleRecDate} {
		if s == "" {
			continue
		}
		for _, layout := range []string{"2006-01-02", "2006/01/02", time.RFC3339} {
			if t, err := time.Parse(layout, s); err == nil {
				return &t
			}
		}
	}
	return nil
}

func (r propertyRecord) toEntry(pin domain.ParcelID, raw json.RawMessage, fetchedAt time.Time) *models.EnrichmentEntry {
	return &models.EnrichmentEntry{
		PIN:           pin,
		LivingArea:    r.Building.Size.LivingSize.positive(),
		YearBuilt:     r.Summary.YearBuilt.positiveInt(),
		Bedrooms:      r.Building.Rooms.Beds.count(),
		Bathrooms:     r.Building.Rooms.BathsTotal.positive(),
		LotSize:       r.Lot.LotSize2.positive(),
		Address:       r.address(),
		Coordinates:   r.coordinates(),
		LastSalePrice: r.Sale.Amount.SaleAmt.positive(),
		LastSaleDate:  r.saleDate(),
		RawPayload:    raw,
		FetchedAt:     fetchedAt,
	}
}

func (r propertyRecord) toCandidate() models.ComparableCandidate {
	return models.ComparableCandidate{
		Origin:      models.OriginSecondaryProvider,
		PIN:         r.Identifier.APN,
		Address:     r.address(),
		SalePrice:   r.Sale.Amount.SaleAmt.positive(),
		SaleDate:    r.saleDate(),
		LivingArea:  r.Building.Size.LivingSize.positive(),
		YearBuilt:   r.Summary.YearBuilt.positiveInt(),
		Bedrooms:    r.Building.Rooms.Beds.count(),
		Bathrooms:   r.Building.Rooms.BathsTotal.positive(),
		Class:       r.Summary.PropClass,
		Coordinates: r.coordinates(),
		Source:      "provider" + EndpointSales,
	}
}
