package seed_test

import (
	"context"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/monorkin/lab-roster/internal/auth"
	"github.com/monorkin/lab-roster/internal/models"
	"github.com/monorkin/lab-roster/internal/seed"
	"github.com/monorkin/lab-roster/internal/store"
	"github.com/monorkin/lab-roster/internal/testutil"
)

var hasher = auth.BcryptHasher{Cost: bcrypt.MinCost}

func newSeeder(t *testing.T, fakerSeed uint64) (*seed.Seeder, *store.Store) {
	t.Helper()
	s := store.New(testutil.NewDB(t))
	return seed.New(s, hasher, gofakeit.New(fakerSeed), nil), s
}

func TestInsertRolesIsIdempotent(t *testing.T) {
	ctx := context.Background()
	seeder, s := newSeeder(t, 1)

	require.NoError(t, seeder.InsertRoles(ctx))
	require.NoError(t, seeder.InsertRoles(ctx))

	roles, err := s.ListRoles(ctx)
	require.NoError(t, err)
	require.Len(t, roles, 2)
	assert.Equal(t, models.RoleStudent, roles[0].Name)
	assert.Equal(t, models.RoleAdmin, roles[1].Name)
}

func TestGenerateAdmin(t *testing.T) {
	ctx := context.Background()
	seeder, s := newSeeder(t, 1)
	require.NoError(t, seeder.InsertRoles(ctx))

	created, err := seeder.GenerateAdmin(ctx, "666666")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = seeder.GenerateAdmin(ctx, "other")
	require.NoError(t, err)
	assert.False(t, created)

	admin, err := s.FindUserByNumber(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, "Admin", admin.Username)
	assert.True(t, admin.IsAdmin())
	assert.NoError(t, hasher.Compare(admin.PasswordHash, "666666"))
	assert.NotEqual(t, "666666", admin.PasswordHash)
}

func TestGenerateAdminNeedsRoles(t *testing.T) {
	seeder, _ := newSeeder(t, 1)

	_, err := seeder.GenerateAdmin(context.Background(), "666666")
	assert.Error(t, err)
}

func TestGenerateAdminRefusesTakenNumber(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	s := store.New(db)
	seeder := seed.New(s, hasher, gofakeit.New(1), nil)
	require.NoError(t, seeder.InsertRoles(ctx))

	student, err := s.FindRoleByName(ctx, models.RoleStudent)
	require.NoError(t, err)
	testutil.CreateUser(t, db, models.ADMIN_NUMBER, "squatter", *student, "hash")

	created, err := seeder.GenerateAdmin(ctx, "666666")
	assert.ErrorIs(t, err, seed.ErrAdminNumberTaken)
	assert.ErrorContains(t, err, `"squatter"`)
	assert.False(t, created)

	_, err = s.FindFirstUserWithRole(ctx, models.RoleAdmin)
	assert.True(t, store.IsNotFound(err))
}

func TestFakeUsersSkipsDuplicates(t *testing.T) {
	ctx := context.Background()
	seeder, s := newSeeder(t, 7)
	require.NoError(t, seeder.InsertRoles(ctx))

	first, err := seeder.FakeUsers(ctx, 5)
	require.NoError(t, err)
	assert.Positive(t, first)

	// Same seed, same database: every generated user collides
	again := seed.New(s, hasher, gofakeit.New(7), nil)
	second, err := again.FakeUsers(ctx, 5)
	require.NoError(t, err)
	assert.Zero(t, second)

	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, first)
	for _, u := range users {
		assert.Equal(t, models.RoleStudent, u.Role.Name)
	}
}

func TestFakeDevicesRequireUsers(t *testing.T) {
	ctx := context.Background()
	seeder, _ := newSeeder(t, 1)
	require.NoError(t, seeder.InsertRoles(ctx))

	_, err := seeder.FakeDevices(ctx, 3)
	assert.Error(t, err)
}

func TestFakeDevicesSkipsDuplicates(t *testing.T) {
	ctx := context.Background()
	seeder, s := newSeeder(t, 11)
	require.NoError(t, seeder.InsertRoles(ctx))
	_, err := seeder.GenerateAdmin(ctx, "666666")
	require.NoError(t, err)

	admin, err := s.FindUserByNumber(ctx, models.ADMIN_NUMBER)
	require.NoError(t, err)

	// A faker with the same seed names the same lab first
	taken := gofakeit.New(11).Company()
	require.NoError(t, s.CreateDevice(ctx, &models.Device{Lab: taken, Name: "Bench scope", Time: time.Now().UTC(), OwnerID: admin.ID}))

	inserted, err := seeder.FakeDevices(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, 4, inserted)

	devices, err := s.ListDevices(ctx)
	require.NoError(t, err)
	assert.Len(t, devices, 5)
}

func TestRun(t *testing.T) {
	ctx := context.Background()
	seeder, s := newSeeder(t, 3)

	report, err := seeder.Run(ctx, seed.Options{AdminPassword: "666666", Users: 4, Devices: 6})
	require.NoError(t, err)
	assert.True(t, report.AdminCreated)
	assert.Positive(t, report.Devices)

	devices, err := s.ListDevices(ctx)
	require.NoError(t, err)
	assert.Len(t, devices, report.Devices)
	for _, d := range devices {
		assert.NotZero(t, d.OwnerID)
		assert.NotEmpty(t, d.Lab)
	}

	report, err = seeder.Run(ctx, seed.Options{AdminPassword: "666666"})
	require.NoError(t, err)
	assert.False(t, report.AdminCreated)

	roles, err := s.ListRoles(ctx)
	require.NoError(t, err)
	assert.Len(t, roles, 2)
}
