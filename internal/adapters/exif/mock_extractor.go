package exif

import (
	"context"
	"fmt"
	"os"
	"photo-location-service/internal/domain"
	"sync/atomic"
)

type MockPhoto struct {
	FileName     string
	CreationDate string
	Lat, Lon     float64
	Who          string
	// Err, when set, is returned instead of metadata.
	Err error
}

// MockExtractor serves fixed metadata, for tests and demo seeding.
type MockExtractor struct {
	m     map[string]MockPhoto
	calls atomic.Int64
}

func NewMockExtractor(photos []MockPhoto) *MockExtractor {
	m := make(map[string]MockPhoto, len(photos))
	for _, p := range photos {
		m[p.FileName] = p
	}
	return &MockExtractor{m: m}
}

func (e *MockExtractor) Extract(ctx context.Context, fileName string) (domain.PhotoMetadata, error) {
	e.calls.Add(1)

	if err := ctx.Err(); err != nil {
		return domain.PhotoMetadata{}, err
	}

	p, ok := e.m[fileName]
	if !ok {
		return domain.PhotoMetadata{}, fmt.Errorf("missing photo %q: %w", fileName, os.ErrNotExist)
	}
	if p.Err != nil {
		return domain.PhotoMetadata{}, p.Err
	}

	return domain.PhotoMetadata{
		FileName:     p.FileName,
		CreationDate: p.CreationDate,
		Coordinates:  domain.Coordinates{Lat: p.Lat, Lon: p.Lon},
		Who:          p.Who,
	}, nil
}

// Calls reports how many times Extract ran.
func (e *MockExtractor) Calls() int {
	return int(e.calls.Load())
}
