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

// SQLite backed cache mapping file names to extracted EXIF metadata.
// File name keys are expected to be consistent (e.g., relative to the same
// photo root) by the caller.
type SqliteMetadataCache struct {
	DB *sql.DB
}

func NewSqliteMetadataCache(db *sql.DB) *SqliteMetadataCache {
	return &SqliteMetadataCache{DB: db}
}

// Fetch cached metadata for the given file names.
func (s *SqliteMetadataCache) GetMany(
	ctx context.Context,
	fileNames []string,
) (_ map[string]domain.PhotoMetadata, err error) {
	defer obs.Time(ctx, "metadata.sqlite.GetMany")(&err)

	if s.DB == nil {
		return nil, errors.New("metadata cache: db is nil")
	}

	uniq := uniqueKeys(fileNames)
	if len(uniq) == 0 {
		return map[string]domain.PhotoMetadata{}, nil
	}

	ph := make([]string, 0, len(uniq))
	args := make([]any, 0, len(uniq))
	for _, n := range uniq {
		ph = append(ph, "?")
		args = append(args, n)
	}

	// SQLite does not support binding slices directly in an IN (...) clause.
	// Only the placeholder structure is interpolated; all values remain parameterized.
	q := fmt.Sprintf(`
	SELECT
		file_name,
		creation_date,
		gps_latitude,
		gps_longitude,
		who
	FROM exif_cache
	WHERE file_name IN (%s);
	`, strings.Join(ph, ","))

	rows, err := s.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("get metadata cache: query exif_cache table: %w", err)
	}
	defer rows.Close()

	return scanMetadataRows(rows, len(uniq))
}

// Store file name -> metadata mappings in the cache.
func (s *SqliteMetadataCache) PutMany(ctx context.Context, entries map[string]domain.PhotoMetadata) error {
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
	INSERT OR REPLACE INTO exif_cache (
		file_name,
		creation_date,
		gps_latitude,
		gps_longitude,
		who
	)
	VALUES (?, ?, ?, ?, ?);
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

// uniqueKeys trims, drops empties and de-duplicates while keeping order.
func uniqueKeys(keys []string) []string {
	seen := map[string]struct{}{}
	uniq := make([]string, 0, len(keys))
	for _, k := range keys {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}

		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		uniq = append(uniq, k)
	}
	return uniq
}

func scanMetadataRows(rows *sql.Rows, sizeHint int) (map[string]domain.PhotoMetadata, error) {
	out := make(map[string]domain.PhotoMetadata, sizeHint)
	for rows.Next() {
		var m domain.PhotoMetadata
		if err := rows.Scan(&m.FileName, &m.CreationDate, &m.Coordinates.Lat, &m.Coordinates.Lon, &m.Who); err != nil {
			return nil, fmt.Errorf("get metadata cache: scan rows: %w", err)
		}
		out[m.FileName] = m
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get metadata cache: row iteration: %w", err)
	}
	return out, nil
}
