package config

import (
	"path/filepath"
	"strings"
)

const (
	DB_NAME = "data.sqlite"
)

// DefaultDatabaseURL points at a SQLite file inside the data directory.
func DefaultDatabaseURL() string {
	return filepath.Join(DataDir(), DB_NAME)
}

// IsPostgresURL reports whether url should be opened with the PostgreSQL
// driver. Everything else is treated as a SQLite path or DSN.
func IsPostgresURL(url string) bool {
	return strings.HasPrefix(url, "postgres://") ||
		strings.HasPrefix(url, "postgresql://") ||
		strings.Contains(url, "host=")
}
