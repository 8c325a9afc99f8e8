package projection

import (
	"fmt"
	"photo-location-service/internal/domain"
	"photo-location-service/internal/ports"
	"strings"
)

const (
	NameEquirectangular = "equirectangular"
	NameMercator        = "mercator"
)

// Factory resolves projection names for the batch builder.
// The empty name selects Default, or equirectangular when Default is empty too.
type Factory struct {
	Default string
}

func (f Factory) NewProjection(name string, center domain.Coordinates) (ports.Projection, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		n = strings.ToLower(strings.TrimSpace(f.Default))
	}

	switch n {
	case "", NameEquirectangular:
		if err := center.Validate(); err != nil {
			return nil, fmt.Errorf("new projection: center: %w", err)
		}
		return NewEquirectangular(center), nil
	case NameMercator, "web-mercator", "epsg:3857":
		return NewWebMercator(), nil
	default:
		return nil, fmt.Errorf("new projection: %w: %q", domain.ErrUnknownProjection, name)
	}
}
