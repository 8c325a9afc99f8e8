package ports

import (
	"context"
	"photo-location-service/internal/domain"
)

// Contract for reading capture metadata out of a single image file.
type ExifExtractor interface {
	// Return creation date, GPS coordinates and attribution for fileName.
	Extract(ctx context.Context, fileName string) (domain.PhotoMetadata, error)
}

// Optional extension of ExifExtractor that supports batched lookups.
// Files that could not be read are reported in the error map instead of
// failing the whole call.
type ExifBatchExtractor interface {
	ExifExtractor
	ExtractMany(ctx context.Context, fileNames []string) (map[string]domain.PhotoMetadata, map[string]error, error)
}
