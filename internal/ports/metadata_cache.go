package ports

import (
	"context"
	"photo-location-service/internal/domain"
)

// Port: persistent cache of extracted EXIF metadata keyed by file name.
// File names are expected to be stable identifiers within a photo library.
type MetadataCache interface {
	GetMany(ctx context.Context, fileNames []string) (map[string]domain.PhotoMetadata, error)
	PutMany(ctx context.Context, entries map[string]domain.PhotoMetadata) error
}
