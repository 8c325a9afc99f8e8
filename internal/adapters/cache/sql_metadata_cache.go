package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"photo-location-service/internal/domain"
	"photo-location-service/internal/platform/obs"
	"strings"
)

// SQLMetadataCache is a Postgres-backed cache mapping file names to EXIF metadata.
type SQLMetadataCache struct {
	DB *sql.DB
}

func NewSQLMetadataCache(db *sql.DB) *SQLMetadataCache {
	return &SQLMetadataCache{DB: db}
}

// Fetch cached metadata for the given file names.
func (s *SQLMetadataCache) GetMany(
	ctx context.Context,
	fileNames []string,
) (_ map[string]domain.PhotoMetadata, err error) {
	defer obs.Time(ctx, "metadata.sql.GetMany")(&err)

	if s.DB == nil {
		return nil, errors.New("metadata cache: db is nil")
	}

	uniq := uniqueKeys(fileNames)
	if len(uniq) == 0 {
		return map[string]domain.PhotoMetadata{}, nil
	}

	q := `
	SELECT file_name, creation_date, gps_latitude, gps_longitude, who
	FROM exif_cache
	WHERE file_name = ANY($1::text[]);
	`

	rows, err := s.DB.QueryContext(ctx, q, uniq)
	if err != nil {
		return nil, fmt.Errorf("get metadata cache: query exif_cache table: %w", err)
	}
	defer rows.Close()

	return scanMetadataRows(rows, len(uniq))
}

// Store file name -> metadata mappings in the cache.
func (s *SQLMetadataCache) PutMany(ctx context.Context, entries map[string]domain.PhotoMetadata) error {
	if s.DB == nil {
		return errors.New("metadata cache: db is nil")
	}

	if len(entries) == 0 {
		return nil
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("insert metadata cache: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO exif_cache (file_name, creation_date, gps_latitude, gps_longitude, who)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (file_name) DO UPDATE
	SET creation_date = EXCLUDED.creation_date,
		gps_latitude = EXCLUDED.gps_latitude,
		gps_longitude = EXCLUDED.gps_longitude,
		who = EXCLUDED.who;
	`)
	if err != nil {
		return fmt.Errorf("insert metadata cache: db prepare: %w", err)
	}
	defer stmt.Close()

	for name, m := range entries {
		if strings.TrimSpace(name) == "" {
			return errors.New("insert metadata cache: empty file name key")
		}

		if _, err := stmt.ExecContext(ctx, name, m.CreationDate, m.Coordinates.Lat, m.Coordinates.Lon, m.Who); err != nil {
			return fmt.Errorf("insert metadata cache file=%q: %w", name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("insert metadata cache commit: %w", err)
	}

	return nil
}
