package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"photo-location-service/internal/domain"
	"photo-location-service/internal/ports"
	"strconv"
	"strings"
	"time"
)

// Fixed-width UTC layout so created_at sorts correctly as text in both backends.
const createdAtLayout = "2006-01-02T15:04:05.000000000Z07:00"

// recordStore holds the SQL shared by the SQLite and Postgres repositories.
// Only placeholder syntax and the batch upsert differ between the two.
type recordStore struct {
	db          *sql.DB
	name        string
	placeholder func(n int) string
	upsertBatch string
}

func questionMark(int) string { return "?" }

func dollar(n int) string { return "$" + strconv.Itoa(n) }

// bind rewrites "?" placeholders into the store's syntax.
func (s *recordStore) bind(q string) string {
	var b strings.Builder
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteString(s.placeholder(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *recordStore) saveBatch(ctx context.Context, batch *domain.RecordBatch) error {
	if s.db == nil {
		return fmt.Errorf("%s record repository: DB is nil", s.name)
	}
	if batch == nil || strings.TrimSpace(batch.ID) == "" {
		return errors.New("save batch: batch id must be non-empty")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save batch %s: begin tx: %w", batch.ID, err)
	}
	defer func() { _ = tx.Rollback() }()

	// Saving an existing batch replaces its records and failures.
	for _, q := range []string{
		`DELETE FROM photo_failures WHERE batch_id = ?;`,
		`DELETE FROM photo_records WHERE batch_id = ?;`,
	} {
		if _, err := tx.ExecContext(ctx, s.bind(q), batch.ID); err != nil {
			return fmt.Errorf("save batch %s: clear previous rows: %w", batch.ID, err)
		}
	}

	var originLat, originLon sql.NullFloat64
	if batch.Origin != nil {
		originLat = sql.NullFloat64{Float64: batch.Origin.Lat, Valid: true}
		originLon = sql.NullFloat64{Float64: batch.Origin.Lon, Valid: true}
	}

	createdAt := batch.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	if _, err := tx.ExecContext(ctx, s.bind(s.upsertBatch),
		batch.ID,
		batch.Projection,
		string(batch.Reference),
		originLat,
		originLon,
		createdAt.UTC().Format(createdAtLayout),
	); err != nil {
		return fmt.Errorf("save batch %s: upsert batch: %w", batch.ID, err)
	}

	recStmt, err := tx.PrepareContext(ctx, s.bind(`
	INSERT INTO photo_records (
		batch_id,
		position,
		file_name,
		creation_date,
		gps_latitude,
		gps_longitude,
		who,
		x,
		y,
		distance
	)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
	`))
	if err != nil {
		return fmt.Errorf("save batch %s: prepare record insert: %w", batch.ID, err)
	}
	defer recStmt.Close()

	for i, r := range batch.Records {
		if _, err := recStmt.ExecContext(ctx,
			batch.ID, i, r.FileName(), r.CreationDate(), r.GPSLatitude(), r.GPSLongitude(),
			r.Who(), r.X(), r.Y(), r.Distance(),
		); err != nil {
			return fmt.Errorf("save batch %s: insert record file=%q: %w", batch.ID, r.FileName(), err)
		}
	}

	failStmt, err := tx.PrepareContext(ctx, s.bind(`
	INSERT INTO photo_failures (batch_id, position, file_name, kind, reason)
	VALUES (?, ?, ?, ?, ?);
	`))
	if err != nil {
		return fmt.Errorf("save batch %s: prepare failure insert: %w", batch.ID, err)
	}
	defer failStmt.Close()

	for i, f := range batch.Failures {
		if _, err := failStmt.ExecContext(ctx, batch.ID, i, f.FileName, f.Kind, f.Reason); err != nil {
			return fmt.Errorf("save batch %s: insert failure file=%q: %w", batch.ID, f.FileName, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save batch %s: commit tx: %w", batch.ID, err)
	}

	return nil
}

func (s *recordStore) getBatch(ctx context.Context, id string) (*domain.RecordBatch, error) {
	if s.db == nil {
		return nil, fmt.Errorf("%s record repository: DB is nil", s.name)
	}

	var (
		batch     domain.RecordBatch
		reference string
		originLat sql.NullFloat64
		originLon sql.NullFloat64
		createdAt string
	)
	err := s.db.QueryRowContext(ctx, s.bind(`
	SELECT batch_id, projection, reference_policy, origin_lat, origin_lon, created_at
	FROM photo_batches
	WHERE batch_id = ?;
	`), id).Scan(&batch.ID, &batch.Projection, &reference, &originLat, &originLon, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get batch %s: %w", id, ports.ErrBatchNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get batch %s: query photo_batches table: %w", id, err)
	}

	batch.Reference = domain.ReferencePolicy(reference)
	if originLat.Valid && originLon.Valid {
		batch.Origin = &domain.Coordinates{Lat: originLat.Float64, Lon: originLon.Float64}
	}
	if batch.CreatedAt, err = time.Parse(createdAtLayout, createdAt); err != nil {
		return nil, fmt.Errorf("get batch %s: parse created_at %q: %w", id, createdAt, err)
	}

	if batch.Records, err = s.listRecords(ctx, id); err != nil {
		return nil, err
	}
	if batch.Failures, err = s.listFailures(ctx, id); err != nil {
		return nil, err
	}

	return &batch, nil
}

func (s *recordStore) listRecords(ctx context.Context, id string) ([]domain.PhotoLocationRecord, error) {
	rows, err := s.db.QueryContext(ctx, s.bind(`
	SELECT
		creation_date,
		file_name,
		gps_latitude,
		gps_longitude,
		who,
		x,
		y,
		distance
	FROM photo_records
	WHERE batch_id = ?
	ORDER BY position;
	`), id)
	if err != nil {
		return nil, fmt.Errorf("list records %s: query photo_records table: %w", id, err)
	}
	defer rows.Close()

	records := make([]domain.PhotoLocationRecord, 0, 64)
	for rows.Next() {
		var in domain.PhotoLocationInput
		if err := rows.Scan(
			&in.CreationDate, &in.FileName, &in.GPSLatitude, &in.GPSLongitude,
			&in.Who, &in.X, &in.Y, &in.Distance,
		); err != nil {
			return nil, fmt.Errorf("list records %s: scan row: %w", id, err)
		}

		// Stored rows go through the same validation as freshly built ones.
		rec, err := domain.NewPhotoLocationRecord(in)
		if err != nil {
			return nil, fmt.Errorf("list records %s: %w", id, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list records %s: row iteration: %w", id, err)
	}

	return records, nil
}

func (s *recordStore) listFailures(ctx context.Context, id string) ([]domain.BuildFailure, error) {
	rows, err := s.db.QueryContext(ctx, s.bind(`
	SELECT file_name, kind, reason
	FROM photo_failures
	WHERE batch_id = ?
	ORDER BY position;
	`), id)
	if err != nil {
		return nil, fmt.Errorf("list failures %s: query photo_failures table: %w", id, err)
	}
	defer rows.Close()

	failures := make([]domain.BuildFailure, 0)
	for rows.Next() {
		var f domain.BuildFailure
		if err := rows.Scan(&f.FileName, &f.Kind, &f.Reason); err != nil {
			return nil, fmt.Errorf("list failures %s: scan row: %w", id, err)
		}
		failures = append(failures, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list failures %s: row iteration: %w", id, err)
	}

	return failures, nil
}

func (s *recordStore) listBatches(ctx context.Context) ([]domain.BatchSummary, error) {
	if s.db == nil {
		return nil, fmt.Errorf("%s record repository: DB is nil", s.name)
	}

	rows, err := s.db.QueryContext(ctx, `
	SELECT
		b.batch_id,
		b.projection,
		b.reference_policy,
		b.created_at,
		(SELECT COUNT(*) FROM photo_records r WHERE r.batch_id = b.batch_id)
	FROM photo_batches b
	ORDER BY b.created_at DESC, b.batch_id;
	`)
	if err != nil {
		return nil, fmt.Errorf("list batches: query photo_batches table: %w", err)
	}
	defer rows.Close()

	out := make([]domain.BatchSummary, 0, 16)
	for rows.Next() {
		var (
			sum       domain.BatchSummary
			reference string
			createdAt string
		)
		if err := rows.Scan(&sum.ID, &sum.Projection, &reference, &createdAt, &sum.RecordCount); err != nil {
			return nil, fmt.Errorf("list batches: scan row: %w", err)
		}
		sum.Reference = domain.ReferencePolicy(reference)
		if sum.CreatedAt, err = time.Parse(createdAtLayout, createdAt); err != nil {
			return nil, fmt.Errorf("list batches: parse created_at %q: %w", createdAt, err)
		}
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list batches: row iteration: %w", err)
	}

	return out, nil
}
