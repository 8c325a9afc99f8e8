package cache

import (
	"database/sql"
	"fmt"
	"photo-location-service/internal/platform/db"
	"photo-location-service/internal/ports"
)

// NewSQLCacheForDriver returns the database backed metadata cache for driver.
func NewSQLCacheForDriver(driver string, conn *sql.DB) (ports.MetadataCache, error) {
	switch driver {
	case db.DriverSQLite:
		return NewSqliteMetadataCache(conn), nil
	case db.DriverPostgres:
		return NewSQLMetadataCache(conn), nil
	default:
		return nil, fmt.Errorf("new metadata cache: unsupported driver %q", driver)
	}
}
