package catalog_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/monorkin/lab-roster/internal/catalog"
	"github.com/monorkin/lab-roster/internal/models"
	"github.com/monorkin/lab-roster/internal/store"
	"github.com/monorkin/lab-roster/internal/testutil"
)

type fixture struct {
	catalog *catalog.Catalog
	store   *store.Store
	admin   models.User
	student models.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := testutil.NewDB(t)
	roles := testutil.SeedRoles(t, db)
	s := store.New(db)

	return &fixture{
		catalog: catalog.New(s, nil),
		store:   s,
		admin:   testutil.CreateUser(t, db, models.ADMIN_NUMBER, models.ADMIN_USERNAME, roles[models.RoleAdmin], "x"),
		student: testutil.CreateUser(t, db, 17, "student", roles[models.RoleStudent], "x"),
	}
}

func intPtr(i int) *int {
	return &i
}

func labs(devices []models.Device) []string {
	out := make([]string, 0, len(devices))
	for _, d := range devices {
		out = append(out, d.Lab)
	}
	return out
}

func TestAddThenFilter(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	device, err := f.catalog.AddDevice(ctx, catalog.NewDevice{Name: "Laptop-1", ID: 42})
	require.NoError(t, err)
	assert.Equal(t, "42", device.Lab)
	assert.Equal(t, f.admin.ID, device.OwnerID)
	assert.False(t, device.Time.IsZero())

	found, err := f.catalog.ListDevices(ctx, intPtr(42))
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Laptop-1", found[0].Name)

	found, err = f.catalog.ListDevices(ctx, intPtr(99))
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestListWithoutFilter(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.catalog.AddDevice(ctx, catalog.NewDevice{Name: "Scope", ID: 3})
	require.NoError(t, err)
	_, err = f.catalog.AddDevice(ctx, catalog.NewDevice{Name: "Meter", ID: 1})
	require.NoError(t, err)
	_, err = f.catalog.AddDevice(ctx, catalog.NewDevice{Name: "Probe", ID: 2, OwnerNumber: intPtr(17)})
	require.NoError(t, err)

	all, err := f.catalog.ListDevices(ctx, nil)
	require.NoError(t, err)
	// The student was created after the admin, so their devices come first
	assert.Equal(t, []string{"2", "1", "3"}, labs(all))
}

func TestAddDuplicateLeavesStoreUnchanged(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.catalog.AddDevice(ctx, catalog.NewDevice{Name: "Laptop-1", ID: 42})
	require.NoError(t, err)

	_, err = f.catalog.AddDevice(ctx, catalog.NewDevice{Name: "Laptop-2", ID: 42})
	assert.ErrorIs(t, err, catalog.ErrDuplicateEntry)

	all, err := f.catalog.ListDevices(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Laptop-1", all[0].Name)
}

func TestAddWithUnknownOwner(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.catalog.AddDevice(ctx, catalog.NewDevice{Name: "Laptop", ID: 5, OwnerNumber: intPtr(404)})
	assert.ErrorIs(t, err, catalog.ErrUnknownOwner)

	all, err := f.catalog.ListDevices(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestRemoveAdminOwnedDeviceIsRefused(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.catalog.AddDevice(ctx, catalog.NewDevice{Name: "Oscilloscope", ID: 7})
	require.NoError(t, err)

	device, err := f.catalog.RemoveDevice(ctx, 7)
	assert.ErrorIs(t, err, catalog.ErrAdminOwned)
	require.NotNil(t, device)
	assert.Equal(t, "Oscilloscope", device.Name)

	_, err = f.store.FindDevice(ctx, 7)
	assert.NoError(t, err)
}

func TestRemoveStudentDevice(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.catalog.AddDevice(ctx, catalog.NewDevice{Name: "Laptop", ID: 8, OwnerNumber: intPtr(17)})
	require.NoError(t, err)

	device, err := f.catalog.RemoveDevice(ctx, 8)
	require.NoError(t, err)
	assert.Equal(t, "Laptop", device.Name)

	_, err = f.store.FindDevice(ctx, 8)
	assert.True(t, store.IsNotFound(err))

	_, err = f.catalog.RemoveDevice(ctx, 8)
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}
