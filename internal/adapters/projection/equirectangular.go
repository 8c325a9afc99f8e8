package projection

import (
	"fmt"
	"math"
	"photo-location-service/internal/domain"
)

// Mean Earth radius in meters (IUGG).
const meanEarthRadius = 6371008.8

// Equirectangular is a local plate carrée projection centered on Center.
// x grows east and y grows north, both in meters. Distortion stays small for
// batches spanning a few hundred kilometers, which covers a photo folder.
type Equirectangular struct {
	Center domain.Coordinates
	Radius float64
	cosLat float64
}

func NewEquirectangular(center domain.Coordinates) *Equirectangular {
	return &Equirectangular{
		Center: center,
		Radius: meanEarthRadius,
		cosLat: math.Cos(toRad(center.Lat)),
	}
}

func (e *Equirectangular) Name() string { return NameEquirectangular }

func (e *Equirectangular) Forward(c domain.Coordinates) (domain.PlanarPoint, error) {
	if err := c.Validate(); err != nil {
		return domain.PlanarPoint{}, fmt.Errorf("equirectangular forward: %w", err)
	}

	dLon := c.Lon - e.Center.Lon
	// Take the short way around the antimeridian.
	if dLon > 180 {
		dLon -= 360
	} else if dLon < -180 {
		dLon += 360
	}

	return domain.PlanarPoint{
		X: e.Radius * toRad(dLon) * e.cosLat,
		Y: e.Radius * toRad(c.Lat-e.Center.Lat),
	}, nil
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
