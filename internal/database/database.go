package database

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/monorkin/lab-roster/internal/config"
)

type Options struct {
	// Verbose logs every SQL statement.
	Verbose bool
}

// Open connects to databaseURL and brings the schema up to date. PostgreSQL
// URLs use the postgres driver, anything else is a SQLite file.
func Open(databaseURL string, opts Options) (*gorm.DB, error) {
	dialector, err := dialectorFor(databaseURL)
	if err != nil {
		return nil, err
	}

	logLevel := gormlogger.Silent
	if opts.Verbose {
		logLevel = gormlogger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormlogger.Default.LogMode(logLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return db, nil
}

func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func dialectorFor(databaseURL string) (gorm.Dialector, error) {
	if config.IsPostgresURL(databaseURL) {
		return postgres.Open(databaseURL), nil
	}

	path, _, _ := strings.Cut(databaseURL, "?")
	path = strings.TrimPrefix(path, "file:")
	if path != "" && !strings.Contains(path, ":memory:") {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	return sqlite.Open(sqliteDSN(databaseURL)), nil
}

// sqliteDSN turns on foreign keys and a busy timeout for every pooled
// connection; a one-off PRAGMA would only reach a single connection.
func sqliteDSN(databaseURL string) string {
	params := []string{"_foreign_keys=on", "_busy_timeout=5000"}

	sep := "?"
	if strings.Contains(databaseURL, "?") {
		sep = "&"
	}

	dsn := databaseURL
	for _, param := range params {
		key, _, _ := strings.Cut(param, "=")
		if strings.Contains(dsn, key+"=") {
			continue
		}
		dsn += sep + param
		sep = "&"
	}

	return dsn
}
