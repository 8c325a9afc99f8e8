package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"photo-location-service/internal/domain"
	"photo-location-service/internal/platform/db"
	"photo-location-service/internal/ports"
	"strings"
	"time"
)

// Initialize the database schema. The DDL is kept to the subset shared by
// SQLite and Postgres so both backends use the same statements.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createBatchesQuery := `
	CREATE TABLE IF NOT EXISTS photo_batches (
		batch_id TEXT PRIMARY KEY,
		projection TEXT NOT NULL,
		reference_policy TEXT NOT NULL,
		origin_lat DOUBLE PRECISION,
		origin_lon DOUBLE PRECISION,
		created_at TEXT NOT NULL
	);
	`

	createRecordsQuery := `
	CREATE TABLE IF NOT EXISTS photo_records (
		batch_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		file_name TEXT NOT NULL,
		creation_date TEXT NOT NULL,
		gps_latitude DOUBLE PRECISION NOT NULL,
		gps_longitude DOUBLE PRECISION NOT NULL,
		who TEXT NOT NULL,
		x DOUBLE PRECISION NOT NULL,
		y DOUBLE PRECISION NOT NULL,
		distance DOUBLE PRECISION NOT NULL,
		PRIMARY KEY (batch_id, file_name)
	);
	`

	createFailuresQuery := `
	CREATE TABLE IF NOT EXISTS photo_failures (
		batch_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		file_name TEXT NOT NULL,
		kind TEXT NOT NULL,
		reason TEXT NOT NULL,
		PRIMARY KEY (batch_id, position)
	);
	`

	createExifCacheQuery := `
	CREATE TABLE IF NOT EXISTS exif_cache (
		file_name TEXT PRIMARY KEY,
		creation_date TEXT NOT NULL,
		gps_latitude DOUBLE PRECISION NOT NULL,
		gps_longitude DOUBLE PRECISION NOT NULL,
		who TEXT NOT NULL
	);
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_photo_records_batch_position
	ON photo_records(batch_id, position);
	`

	statements := []string{
		createBatchesQuery,
		createRecordsQuery,
		createFailuresQuery,
		createExifCacheQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

type BatchSeed struct {
	BatchID    string          `json:"batch_id"`
	Projection string          `json:"projection"`
	Reference  string          `json:"reference"`
	Origin     *CoordinateSeed `json:"origin,omitempty"`
	CreatedAt  string          `json:"created_at,omitempty"`
	Records    []RecordSeed    `json:"records"`
}

type CoordinateSeed struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type RecordSeed struct {
	CreationDate string  `json:"CreationDate"`
	FileName     string  `json:"FileName"`
	GPSLatitude  float64 `json:"GPSLatitude"`
	GPSLongitude float64 `json:"GPSLongitude"`
	Who          string  `json:"Who"`
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
	Distance     float64 `json:"distance"`
}

// Populate the repository with precomputed batches from a JSON file. Every
// record passes through the record constructor before anything is written.
func SeedFromJSON(ctx context.Context, repo ports.RecordRepository, jsonPath string) error {
	if repo == nil {
		return errors.New("seed batches: repository is nil")
	}

	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("seed batches: read %q: %w", jsonPath, err)
	}

	var data []BatchSeed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return fmt.Errorf("seed batches: parse json: %w", err)
	}

	batches := make([]*domain.RecordBatch, 0, len(data))
	for i, item := range data {
		batch, err := item.toBatch()
		if err != nil {
			return fmt.Errorf("seed batches: item at index %d: %w", i, err)
		}
		batches = append(batches, batch)
	}

	for _, b := range batches {
		if err := repo.SaveBatch(ctx, b); err != nil {
			return fmt.Errorf("seed batches: save batch_id=%s: %w", b.ID, err)
		}
	}

	return nil
}

func (s BatchSeed) toBatch() (*domain.RecordBatch, error) {
	id := strings.TrimSpace(s.BatchID)
	if id == "" {
		return nil, errors.New("batch_id cannot be empty")
	}

	projection := strings.TrimSpace(s.Projection)
	if projection == "" {
		return nil, errors.New("projection cannot be empty")
	}

	reference, err := domain.ParseReferencePolicy(s.Reference)
	if err != nil {
		return nil, err
	}

	batch := &domain.RecordBatch{
		ID:         id,
		Projection: projection,
		Reference:  reference,
		CreatedAt:  time.Now().UTC(),
		Records:    make([]domain.PhotoLocationRecord, 0, len(s.Records)),
	}

	if s.Origin != nil {
		origin := domain.Coordinates{Lat: s.Origin.Lat, Lon: s.Origin.Lon}
		if err := origin.Validate(); err != nil {
			return nil, fmt.Errorf("origin: %w", err)
		}
		batch.Origin = &origin
	} else if reference.NeedsOrigin() {
		return nil, domain.ErrMissingOrigin
	}

	if s.CreatedAt != "" {
		if batch.CreatedAt, err = time.Parse(time.RFC3339, s.CreatedAt); err != nil {
			return nil, fmt.Errorf("created_at: %w", err)
		}
	}

	seen := make(map[string]struct{}, len(s.Records))
	for j, r := range s.Records {
		rec, err := domain.NewPhotoLocationRecord(domain.PhotoLocationInput{
			CreationDate: r.CreationDate,
			FileName:     r.FileName,
			GPSLatitude:  r.GPSLatitude,
			GPSLongitude: r.GPSLongitude,
			Who:          r.Who,
			X:            r.X,
			Y:            r.Y,
			Distance:     r.Distance,
		})
		if err != nil {
			return nil, fmt.Errorf("record at index %d: %w", j, err)
		}
		if _, dup := seen[rec.FileName()]; dup {
			return nil, fmt.Errorf("record at index %d: duplicate file name %q", j, rec.FileName())
		}
		seen[rec.FileName()] = struct{}{}
		batch.Records = append(batch.Records, rec)
	}

	return batch, nil
}

// NewRecordRepository picks the repository implementation for driver.
func NewRecordRepository(driver string, conn *sql.DB) (ports.RecordRepository, error) {
	switch driver {
	case db.DriverSQLite:
		return NewSqliteRecordRepository(conn), nil
	case db.DriverPostgres:
		return NewSQLRecordRepository(conn), nil
	default:
		return nil, fmt.Errorf("new record repository: unsupported driver %q", driver)
	}
}
