// Package testutil builds migrated throwaway databases for tests.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/monorkin/lab-roster/internal/database"
	"github.com/monorkin/lab-roster/internal/models"
)

// NewDB opens a migrated SQLite database in a temporary directory.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := database.Open(filepath.Join(t.TempDir(), "test.sqlite"), database.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { database.Close(db) })

	return db
}

// SeedRoles inserts the Student and Admin roles and returns them by name.
func SeedRoles(t testing.TB, db *gorm.DB) map[string]models.Role {
	t.Helper()

	roles := make(map[string]models.Role, len(models.RoleNames))
	for _, name := range models.RoleNames {
		role := models.Role{Name: name}
		require.NoError(t, db.Where(models.Role{Name: name}).FirstOrCreate(&role).Error)
		roles[name] = role
	}
	return roles
}

// CreateUser inserts a user with the given role and password hash.
func CreateUser(t testing.TB, db *gorm.DB, number int, username string, role models.Role, passwordHash string) models.User {
	t.Helper()

	user := models.User{
		Number:       number,
		Username:     username,
		PasswordHash: passwordHash,
		RoleID:       role.ID,
	}
	require.NoError(t, db.Omit("Role").Create(&user).Error)
	user.Role = role
	return user
}

// CreateDevice inserts a device owned by owner.
func CreateDevice(t testing.TB, db *gorm.DB, id uint, lab string, name string, owner models.User) models.Device {
	t.Helper()

	device := models.Device{ID: id, Lab: lab, Name: name, OwnerID: owner.ID}
	require.NoError(t, db.Omit("Owner").Create(&device).Error)
	device.Owner = owner
	return device
}
