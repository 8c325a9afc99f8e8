package ports

import (
	"context"
	"photo-location-service/internal/domain"
)

// Port: hands finished batches to downstream consumers (plotting, clustering).
type RecordPublisher interface {
	PublishBatch(ctx context.Context, batch *domain.RecordBatch) error
}
