package repositories

import (
	"context"
	"database/sql"
	"photo-location-service/internal/domain"
	"photo-location-service/internal/platform/obs"
)

// Postgres-backed implementation of the RecordRepository port.
type SQLRecordRepository struct {
	store recordStore
}

func NewSQLRecordRepository(db *sql.DB) *SQLRecordRepository {
	return &SQLRecordRepository{store: recordStore{
		db:          db,
		name:        "postgres",
		placeholder: dollar,
		upsertBatch: `
		INSERT INTO photo_batches (batch_id, projection, reference_policy, origin_lat, origin_lon, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (batch_id) DO UPDATE
		SET projection = EXCLUDED.projection,
			reference_policy = EXCLUDED.reference_policy,
			origin_lat = EXCLUDED.origin_lat,
			origin_lon = EXCLUDED.origin_lon,
			created_at = EXCLUDED.created_at;
		`,
	}}
}

func (s *SQLRecordRepository) SaveBatch(ctx context.Context, batch *domain.RecordBatch) (err error) {
	defer obs.Time(ctx, "records.sql.SaveBatch")(&err)
	return s.store.saveBatch(ctx, batch)
}

func (s *SQLRecordRepository) GetBatch(ctx context.Context, id string) (_ *domain.RecordBatch, err error) {
	defer obs.Time(ctx, "records.sql.GetBatch")(&err)
	return s.store.getBatch(ctx, id)
}

func (s *SQLRecordRepository) ListBatches(ctx context.Context) ([]domain.BatchSummary, error) {
	return s.store.listBatches(ctx)
}
