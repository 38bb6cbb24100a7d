package registry

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"taxappeal/pkg/geo"
)

// value is one cell of a registry row. The service encodes numbers as
// strings, but some datasets return raw JSON numbers or booleans.
type value string

func (v *value) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*v = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*v = value(strings.TrimSpace(s))
		return nil
	}
	*v = value(b)
	return nil
}

func (v value) String() string {
	return string(v)
}

// Float returns nil for blank, unparsable or non-finite cells.
func (v value) Float() *float64 {
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(string(v), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// PositiveFloat treats zero and negative figures as unknown. The registry
// publishes 0 for missing areas.
func (v value) PositiveFloat() *float64 {
	f := v.Float()
	if f == nil || *f <= 0 {
		return nil
	}
	return f
}

// Int accepts integral floats ("1925.0") as well as plain integers.
func (v value) Int() *int {
	f := v.Float()
	if f == nil {
		return nil
	}
	n := int(*f)
	return &n
}

// PositiveInt is Int with zero treated as unknown.
func (v value) PositiveInt() *int {
	n := v.Int()
	if n == nil || *n <= 0 {
		return nil
	}
	return n
}

// Bool reports true for true/1/yes cells.
func (v value) Bool() bool {
	switch strings.ToLower(string(v)) {
	case "true", "1", "yes", "y":
		return true
	}
	return false
}

// Time parses the service's floating timestamp format.
func (v value) Time() *time.Time {
	if v == "" {
		return nil
	}
	for _, layout := range []string{"2006-01-02T15:04:05.000", "2006-01-02T15:04:05", time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, string(v)); err == nil {
			return &t
		}
	}
	return nil
}

// floatingTimestamp renders t the way $where comparisons expect.
func floatingTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000")
}

func coordinates(lat, lon value) *geo.Coordinates {
	la, lo := lat.Float(), lon.Float()
	if la == nil || lo == nil {
		return nil
	}
	c := geo.Coordinates{Lat: *la, Lon: *lo}
	if !c.Valid() {
		return nil
	}
	return &c
}

// bathrooms combines full and half bath counts; nil when both are unknown.
func bathrooms(full, half value) *float64 {
	f, h := full.Float(), half.Float()
	if f == nil && h == nil {
		return nil
	}
	total := 0.0
	if f != nil {
		total += *f
	}
	if h != nil {
		total += 0.5 * *h
	}
	return &total
}
