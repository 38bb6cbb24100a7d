// Package geo holds the small amount of spherical geometry the comparables
// engine needs. Everything here is pure: no I/O, no allocation beyond values.
package geo

import "math"

const (
	earthRadiusMiles = 3958.8
	earthRadiusKm    = 6371.0
)

// Coordinates is a WGS-84 latitude/longitude pair in decimal degrees.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Valid reports whether c is a usable position. The origin (0,0) is treated as
// missing because upstream datasets use it as a null placeholder.
func (c Coordinates) Valid() bool {
	if math.IsNaN(c.Lat) || math.IsNaN(c.Lon) || math.IsInf(c.Lat, 0) || math.IsInf(c.Lon, 0) {
		return false
	}
	if c.Lat < -90 || c.Lat > 90 || c.Lon < -180 || c.Lon > 180 {
		return false
	}
	return c.Lat != 0 || c.Lon != 0
}

// DistanceMiles returns the great-circle (haversine) distance between a and b.
func DistanceMiles(a, b Coordinates) float64 {
	return haversine(a, b) * earthRadiusMiles
}

// DistanceKilometers is DistanceMiles in kilometres.
func DistanceKilometers(a, b Coordinates) float64 {
	return haversine(a, b) * earthRadiusKm
}

// haversine returns the central angle between a and b in radians.
func haversine(a, b Coordinates) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	// rounding can push h a hair past 1 for antipodal points
	h = math.Min(1, math.Max(0, h))
	return 2 * math.Asin(math.Sqrt(h))
}
