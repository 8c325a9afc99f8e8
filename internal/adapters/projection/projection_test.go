package projection

import (
	"errors"
	"math"
	"photo-location-service/internal/domain"
	"testing"
)

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestEquirectangularForward(t *testing.T) {
	center := domain.Coordinates{Lat: 48.8566, Lon: 2.3522}
	p := NewEquirectangular(center)

	origin, err := p.Forward(center)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if origin.X != 0 || origin.Y != 0 {
		t.Fatalf("center projected to %+v, want origin", origin)
	}

	// One degree of latitude north of the center.
	north, err := p.Forward(domain.Coordinates{Lat: 49.8566, Lon: 2.3522})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wantY := meanEarthRadius * math.Pi / 180
	if !almostEqual(north.Y, wantY, 1e-6) || !almostEqual(north.X, 0, 1e-9) {
		t.Fatalf("north = %+v, want (0, %v)", north, wantY)
	}

	// One degree of longitude east shrinks by cos(lat).
	east, err := p.Forward(domain.Coordinates{Lat: 48.8566, Lon: 3.3522})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wantX := wantY * math.Cos(48.8566*math.Pi/180)
	if !almostEqual(east.X, wantX, 1e-6) {
		t.Fatalf("east.X = %v, want %v", east.X, wantX)
	}
}

func TestEquirectangularWrapsAntimeridian(t *testing.T) {
	p := NewEquirectangular(domain.Coordinates{Lat: 0, Lon: 179.5})

	pt, err := p.Forward(domain.Coordinates{Lat: 0, Lon: -179.5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := meanEarthRadius * math.Pi / 180
	if !almostEqual(pt.X, want, 1e-6) {
		t.Fatalf("x = %v, want %v (one degree east)", pt.X, want)
	}
}

func TestWebMercatorForward(t *testing.T) {
	p := NewWebMercator()

	origin, err := p.Forward(domain.Coordinates{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(origin.X, 0, 1e-9) || !almostEqual(origin.Y, 0, 1e-9) {
		t.Fatalf("origin = %+v", origin)
	}

	edge, err := p.Forward(domain.Coordinates{Lat: 0, Lon: 180})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(edge.X, 20037508.342789244, 1e-6) {
		t.Fatalf("x at 180 = %v", edge.X)
	}

	for _, lat := range []float64{90, -90} {
		pole, err := p.Forward(domain.Coordinates{Lat: lat, Lon: 0})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if math.IsInf(pole.Y, 0) || math.IsNaN(pole.Y) {
			t.Fatalf("pole %v projected to non-finite y %v", lat, pole.Y)
		}
		if math.Abs(pole.Y) < 2.0e7 {
			t.Fatalf("pole %v y = %v, want clamped near the map edge", lat, pole.Y)
		}
	}
}

func TestForwardRejectsInvalidCoordinates(t *testing.T) {
	projections := []interface {
		Forward(domain.Coordinates) (domain.PlanarPoint, error)
	}{
		NewEquirectangular(domain.Coordinates{}),
		NewWebMercator(),
	}
	for _, p := range projections {
		if _, err := p.Forward(domain.Coordinates{Lat: 91}); !errors.Is(err, domain.ErrInvalidCoordinate) {
			t.Errorf("%T: err = %v, want ErrInvalidCoordinate", p, err)
		}
	}
}

func TestFactory(t *testing.T) {
	f := Factory{}

	p, err := f.NewProjection("", domain.Coordinates{Lat: 10, Lon: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name() != NameEquirectangular {
		t.Fatalf("default projection = %q", p.Name())
	}

	f.Default = "mercator"
	p, err = f.NewProjection("", domain.Coordinates{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name() != NameMercator {
		t.Fatalf("configured default = %q, want mercator", p.Name())
	}

	if _, err := f.NewProjection("lambert", domain.Coordinates{}); !errors.Is(err, domain.ErrUnknownProjection) {
		t.Fatalf("err = %v, want ErrUnknownProjection", err)
	}
}
