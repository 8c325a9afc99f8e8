package projection

import (
	"fmt"
	"math"
	"photo-location-service/internal/domain"
)

const (
	// WGS 84 semi-major axis, as used by spherical Web Mercator (EPSG:3857).
	mercatorRadius = 6378137.0
	// Latitude at which Web Mercator becomes a square; beyond it y diverges.
	maxMercatorLat = 85.05112878
)

// WebMercator is the spherical Mercator projection used by web map tiles.
// Latitudes beyond ±85.05112878° are clamped so the output stays finite;
// the record keeps the raw latitude.
type WebMercator struct {
	Radius float64
}

func NewWebMercator() *WebMercator {
	return &WebMercator{Radius: mercatorRadius}
}

func (m *WebMercator) Name() string { return NameMercator }

func (m *WebMercator) Forward(c domain.Coordinates) (domain.PlanarPoint, error) {
	if err := c.Validate(); err != nil {
		return domain.PlanarPoint{}, fmt.Errorf("mercator forward: %w", err)
	}

	lat := math.Max(-maxMercatorLat, math.Min(maxMercatorLat, c.Lat))
	return domain.PlanarPoint{
		X: m.Radius * toRad(c.Lon),
		Y: m.Radius * math.Log(math.Tan(math.Pi/4+toRad(lat)/2)),
	}, nil
}
