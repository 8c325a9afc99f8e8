package domain

import (
	"fmt"
	"math"
)

// Immutable geographic coordinates in decimal degrees (WGS 84).
type Coordinates struct {
	Lat float64
	Lon float64
}

// Validate checks latitude is in [-90, 90] and longitude in [-180, 180].
// NaN fails both range checks.
func (c Coordinates) Validate() error {
	if !(c.Lat >= -90 && c.Lat <= 90) {
		return fmt.Errorf("%w: latitude %v must be between -90 and 90", ErrInvalidCoordinate, c.Lat)
	}
	if !(c.Lon >= -180 && c.Lon <= 180) {
		return fmt.Errorf("%w: longitude %v must be between -180 and 180", ErrInvalidCoordinate, c.Lon)
	}
	return nil
}

// Return coordinates as [lon, lat] for GeoJSON compatibility.
func (c Coordinates) CoordsToList() []float64 { return []float64{c.Lon, c.Lat} }

// Centroid returns the mean position of the given coordinates. Longitudes
// are averaged as angles, so a batch straddling the antimeridian is
// centered next to it instead of near the prime meridian.
func Centroid(coords []Coordinates) Coordinates {
	if len(coords) == 0 {
		return Coordinates{}
	}

	var lat, sinLon, cosLon float64
	for _, c := range coords {
		lat += c.Lat
		rad := c.Lon * math.Pi / 180
		sinLon += math.Sin(rad)
		cosLon += math.Cos(rad)
	}
	n := float64(len(coords))
	return Coordinates{
		Lat: lat / n,
		Lon: math.Atan2(sinLon, cosLon) * 180 / math.Pi,
	}
}

// Point on a flat 2D plane produced by a projection.
type PlanarPoint struct {
	X float64
	Y float64
}

// DistanceTo returns the Euclidean distance in projection units.
func (p PlanarPoint) DistanceTo(o PlanarPoint) float64 {
	return math.Hypot(p.X-o.X, p.Y-o.Y)
}

// ProjectedPoint is the (x, y, distance) triple a projection step yields for one photo.
type ProjectedPoint struct {
	Point    PlanarPoint
	Distance float64
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
