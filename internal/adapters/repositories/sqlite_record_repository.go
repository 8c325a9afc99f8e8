package repositories

import (
	"context"
	"database/sql"
	"photo-location-service/internal/domain"
	"photo-location-service/internal/platform/obs"
)

// SQLite-backed implementation of the RecordRepository port.
type SqliteRecordRepository struct {
	store recordStore
}

func NewSqliteRecordRepository(db *sql.DB) *SqliteRecordRepository {
	return &SqliteRecordRepository{store: recordStore{
		db:          db,
		name:        "sqlite",
		placeholder: questionMark,
		upsertBatch: `
		INSERT OR REPLACE INTO photo_batches (
			batch_id,
			projection,
			reference_policy,
			origin_lat,
			origin_lon,
			created_at
		)
		VALUES (?, ?, ?, ?, ?, ?);
		`,
	}}
}

func (s *SqliteRecordRepository) SaveBatch(ctx context.Context, batch *domain.RecordBatch) (err error) {
	defer obs.Time(ctx, "records.sqlite.SaveBatch")(&err)
	return s.store.saveBatch(ctx, batch)
}

func (s *SqliteRecordRepository) GetBatch(ctx context.Context, id string) (_ *domain.RecordBatch, err error) {
	defer obs.Time(ctx, "records.sqlite.GetBatch")(&err)
	return s.store.getBatch(ctx, id)
}

func (s *SqliteRecordRepository) ListBatches(ctx context.Context) ([]domain.BatchSummary, error) {
	return s.store.listBatches(ctx)
}
