package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenCreatesSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "data.sqlite")

	db, err := Open(path, Options{})
	require.NoError(t, err)
	t.Cleanup(func() { Close(db) })

	for _, table := range []string{"roles", "users", "devices", "sessions", "schema_migrations"} {
		assert.True(t, db.Migrator().HasTable(table), "expected table %s", table)
	}
	assert.Equal(t, SchemaVersion(2), CurrentSchemaVersion(db))
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.sqlite")

	db, err := Open(path, Options{})
	require.NoError(t, err)
	require.NoError(t, Close(db))

	db, err = Open(path, Options{})
	require.NoError(t, err)
	t.Cleanup(func() { Close(db) })

	var applied int64
	require.NoError(t, db.Model(&SchemaMigration{}).Count(&applied).Error)
	assert.Equal(t, int64(2), applied)
}

func TestForeignKeysEnforced(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "data.sqlite"), Options{})
	require.NoError(t, err)
	t.Cleanup(func() { Close(db) })

	err = db.Exec(`INSERT INTO users (number, username, password_hash, role_id) VALUES (1, 'orphan', 'x', 999)`).Error
	assert.Error(t, err)
}

func TestRollbackRevertsLatestMigration(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "data.sqlite"), Options{})
	require.NoError(t, err)
	t.Cleanup(func() { Close(db) })

	require.NoError(t, Rollback(db))
	assert.False(t, db.Migrator().HasTable("sessions"))
	assert.True(t, db.Migrator().HasTable("devices"))
	assert.Equal(t, SchemaVersion(1), CurrentSchemaVersion(db))

	require.NoError(t, Migrate(db))
	assert.True(t, db.Migrator().HasTable("sessions"))
}

func TestMigrationsNewerThan(t *testing.T) {
	all, err := MigrationsNewerThan("sqlite", 0)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, SchemaVersion(1), all[0].Version)
	assert.Equal(t, "0002_create_sessions", all[1].Name)

	pending, err := MigrationsNewerThan("postgres", 1)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, SchemaVersion(2), pending[0].Version)

	_, err = MigrationsNewerThan("mysql", 0)
	assert.Error(t, err)
}

func TestSqliteDSN(t *testing.T) {
	assert.Equal(t, "/tmp/x.sqlite?_foreign_keys=on&_busy_timeout=5000", sqliteDSN("/tmp/x.sqlite"))
	assert.Equal(t, "file:x?mode=memory&_foreign_keys=on&_busy_timeout=5000", sqliteDSN("file:x?mode=memory"))
	assert.Equal(t, "/tmp/x.sqlite?_busy_timeout=100&_foreign_keys=on", sqliteDSN("/tmp/x.sqlite?_busy_timeout=100"))
}
