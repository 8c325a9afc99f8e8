package ports

import "photo-location-service/internal/domain"

// Contract for mapping geographic coordinates onto a plane.
// One Projection instance is used for a whole batch so x/y stay comparable.
type Projection interface {
	// Name identifies the projection (e.g. "equirectangular").
	Name() string
	// Forward projects c; units are those of the implementation.
	Forward(c domain.Coordinates) (domain.PlanarPoint, error)
}

// Builds a Projection by name, centered on center where the projection needs one.
type ProjectionFactory interface {
	NewProjection(name string, center domain.Coordinates) (Projection, error)
}
