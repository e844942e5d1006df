package database

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"sort"
	"strconv"

	"gorm.io/gorm"
)

// Migrations are kept per dialect: migrations/<dialect>/<version>_<name>/{up,down}.sql
//
//go:embed migrations/*/*/up.sql migrations/*/*/down.sql
var migrationsFS embed.FS

var migrationVersionRegex = regexp.MustCompile(`^(\d+)_`)

type SchemaVersion uint64

type SchemaMigration struct {
	Version SchemaVersion `gorm:"primaryKey;autoIncrement:false"`
}

func CurrentSchemaVersion(db *gorm.DB) SchemaVersion {
	var schemaMigration SchemaMigration

	db.
		Model(&SchemaMigration{}).
		Select("version").
		Order("version desc").
		Limit(1).
		Scan(&schemaMigration)

	return schemaMigration.Version
}

type Migration struct {
	Version SchemaVersion
	Dialect string
	Name    string
}

func (migration Migration) Up(db *gorm.DB) error {
	return migration.exec(db, "up.sql")
}

func (migration Migration) Down(db *gorm.DB) error {
	return migration.exec(db, "down.sql")
}

func (migration Migration) exec(db *gorm.DB, file string) error {
	sql, err := fs.ReadFile(migrationsFS, path.Join("migrations", migration.Dialect, migration.Name, file))
	if err != nil {
		return fmt.Errorf("failed to read %s for migration %s: %w", file, migration.Name, err)
	}

	return db.Exec(string(sql)).Error
}

// Migrate applies every migration newer than the recorded schema version,
// each in its own transaction together with its schema_migrations row.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&SchemaMigration{}); err != nil {
		return fmt.Errorf("failed to create schema_migrations: %w", err)
	}

	migrations, err := MigrationsNewerThan(db.Dialector.Name(), CurrentSchemaVersion(db))
	if err != nil {
		return err
	}

	for _, migration := range migrations {
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := migration.Up(tx); err != nil {
				return err
			}
			return tx.Create(&SchemaMigration{Version: migration.Version}).Error
		})
		if err != nil {
			return fmt.Errorf("failed to apply migration %d: %w", migration.Version, err)
		}
	}

	return nil
}

// Rollback reverts the most recently applied migration.
func Rollback(db *gorm.DB) error {
	current := CurrentSchemaVersion(db)
	if current == 0 {
		return nil
	}

	migrations, err := MigrationsNewerThan(db.Dialector.Name(), current-1)
	if err != nil {
		return err
	}
	if len(migrations) == 0 || migrations[0].Version != current {
		return fmt.Errorf("no migration found for schema version %d", current)
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := migrations[0].Down(tx); err != nil {
			return err
		}
		return tx.Delete(&SchemaMigration{Version: current}).Error
	})
}

func MigrationsNewerThan(dialect string, minVersion SchemaVersion) ([]Migration, error) {
	entries, err := fs.ReadDir(migrationsFS, path.Join("migrations", dialect))
	if err != nil {
		return nil, fmt.Errorf("no migrations for dialect %q: %w", dialect, err)
	}

	var migrations []Migration
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		match := migrationVersionRegex.FindStringSubmatch(entry.Name())
		if len(match) != 2 {
			return nil, fmt.Errorf("invalid migration directory name: %s - expected <version>_<name>", entry.Name())
		}

		versionInt, err := strconv.ParseUint(match[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid migration version: %s - %w", match[1], err)
		}

		version := SchemaVersion(versionInt)
		if version <= minVersion {
			continue
		}

		migrations = append(migrations, Migration{
			Version: version,
			Dialect: dialect,
			Name:    entry.Name(),
		})
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})

	return migrations, nil
}
