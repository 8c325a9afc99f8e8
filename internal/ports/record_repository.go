package ports

import (
	"context"
	"errors"
	"photo-location-service/internal/domain"
)

var ErrBatchNotFound = errors.New("batch not found")

// Port: a boundary for storing and retrieving record batches.
type RecordRepository interface {
	// Store the batch and its records; saving an existing ID replaces it.
	SaveBatch(ctx context.Context, batch *domain.RecordBatch) error
	// Return the batch with its records, or ErrBatchNotFound.
	GetBatch(ctx context.Context, id string) (*domain.RecordBatch, error)
	// Return summaries of all batches, newest first.
	ListBatches(ctx context.Context) ([]domain.BatchSummary, error)
}
