// Package seed bootstraps a fresh database: roles, the administrator
// account and optional sample data.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/brianvoe/gofakeit/v7"

	"github.com/monorkin/lab-roster/internal/models"
	"github.com/monorkin/lab-roster/internal/store"
)

const (
	FAKE_USER_PASSWORD = "123456"
	MAX_USER_NUMBER    = 32767
)

// ErrAdminNumberTaken means the administrator's number is held by an
// account without the administrator role.
var ErrAdminNumberTaken = errors.New("administrator number is taken by another user")

type PasswordHasher interface {
	Hash(password string) (string, error)
}

type Store interface {
	EnsureRole(ctx context.Context, name string) (*models.Role, error)
	FindRoleByName(ctx context.Context, name string) (*models.Role, error)
	FindFirstUserWithRole(ctx context.Context, roleName string) (*models.User, error)
	FindUserByNumber(ctx context.Context, number int) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) error
	ListUserIDs(ctx context.Context) ([]uint, error)
	CreateDevice(ctx context.Context, device *models.Device) error
}

type Seeder struct {
	store  Store
	hasher PasswordHasher
	faker  *gofakeit.Faker
	logger *slog.Logger
	now    func() time.Time
}

// New returns a Seeder. A nil faker gets a randomly seeded one.
func New(s Store, hasher PasswordHasher, faker *gofakeit.Faker, logger *slog.Logger) *Seeder {
	if faker == nil {
		faker = gofakeit.New(0)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Seeder{
		store:  s,
		hasher: hasher,
		faker:  faker,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

type Options struct {
	AdminPassword string
	Users         int
	Devices       int
}

type Report struct {
	AdminCreated bool
	Users        int
	Devices      int
}

// Run performs a full bootstrap. Running it again only adds sample data.
func (s *Seeder) Run(ctx context.Context, opts Options) (*Report, error) {
	if err := s.InsertRoles(ctx); err != nil {
		return nil, err
	}

	created, err := s.GenerateAdmin(ctx, opts.AdminPassword)
	if err != nil {
		return nil, err
	}

	users, err := s.FakeUsers(ctx, opts.Users)
	if err != nil {
		return nil, err
	}

	devices, err := s.FakeDevices(ctx, opts.Devices)
	if err != nil {
		return nil, err
	}

	return &Report{AdminCreated: created, Users: users, Devices: devices}, nil
}

func (s *Seeder) InsertRoles(ctx context.Context) error {
	for _, name := range models.RoleNames {
		role, err := s.store.EnsureRole(ctx, name)
		if err != nil {
			return fmt.Errorf("failed to ensure role %q: %w", name, err)
		}
		s.logger.Debug("Role ready", "name", role.Name, "id", role.ID)
	}
	return nil
}

// GenerateAdmin creates the administrator account unless a user with the
// Admin role already exists. It reports whether an account was created.
func (s *Seeder) GenerateAdmin(ctx context.Context, password string) (bool, error) {
	existing, err := s.store.FindFirstUserWithRole(ctx, models.RoleAdmin)
	if err == nil {
		s.logger.Debug("Administrator already exists", "number", existing.Number)
		return false, nil
	}
	if !store.IsNotFound(err) {
		return false, fmt.Errorf("failed to look up administrator: %w", err)
	}

	role, err := s.store.FindRoleByName(ctx, models.RoleAdmin)
	if err != nil {
		return false, fmt.Errorf("failed to load role %q: %w", models.RoleAdmin, err)
	}

	holder, err := s.store.FindUserByNumber(ctx, models.ADMIN_NUMBER)
	if err == nil {
		return false, fmt.Errorf("%w: number %d belongs to %q", ErrAdminNumberTaken, holder.Number, holder.Username)
	}
	if !store.IsNotFound(err) {
		return false, fmt.Errorf("failed to look up user number %d: %w", models.ADMIN_NUMBER, err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return false, fmt.Errorf("failed to hash administrator password: %w", err)
	}

	admin := &models.User{
		Number:       models.ADMIN_NUMBER,
		Username:     models.ADMIN_USERNAME,
		PasswordHash: hash,
		RoleID:       role.ID,
		Role:         *role,
	}
	if err := s.store.CreateUser(ctx, admin); err != nil {
		if store.IsDuplicate(err) {
			return false, fmt.Errorf("%w: number %d", ErrAdminNumberTaken, admin.Number)
		}
		return false, fmt.Errorf("failed to create administrator: %w", err)
	}

	s.logger.Info("Created administrator", "number", admin.Number, "username", admin.Username)
	return true, nil
}

// FakeUsers inserts up to count students. Records colliding with existing
// users are skipped. It returns the number inserted.
func (s *Seeder) FakeUsers(ctx context.Context, count int) (int, error) {
	if count <= 0 {
		return 0, nil
	}

	hash, err := s.hasher.Hash(FAKE_USER_PASSWORD)
	if err != nil {
		return 0, fmt.Errorf("failed to hash sample password: %w", err)
	}

	inserted := 0
	for range count {
		user := &models.User{
			Number:       s.faker.IntRange(1, MAX_USER_NUMBER),
			Username:     s.faker.Name(),
			PasswordHash: hash,
		}

		if err := s.store.CreateUser(ctx, user); err != nil {
			if store.IsDuplicate(err) {
				s.logger.Debug("Skipped duplicate sample user", "number", user.Number, "username", user.Username)
				continue
			}
			return inserted, fmt.Errorf("failed to create sample user: %w", err)
		}
		inserted++
	}

	s.logger.Info("Inserted sample users", "requested", count, "inserted", inserted)
	return inserted, nil
}

// FakeDevices inserts up to count devices owned by randomly chosen users.
func (s *Seeder) FakeDevices(ctx context.Context, count int) (int, error) {
	if count <= 0 {
		return 0, nil
	}

	owners, err := s.store.ListUserIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list users: %w", err)
	}
	if len(owners) == 0 {
		return 0, fmt.Errorf("cannot create sample devices without users")
	}

	now := s.now()
	yearStart := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)

	inserted := 0
	for range count {
		device := &models.Device{
			Lab:     s.faker.Company(),
			Name:    s.faker.ProductName(),
			Time:    s.faker.DateRange(yearStart, now).UTC(),
			OwnerID: owners[s.faker.IntRange(0, len(owners)-1)],
		}

		if err := s.store.CreateDevice(ctx, device); err != nil {
			if store.IsDuplicate(err) {
				s.logger.Debug("Skipped duplicate sample device", "lab", device.Lab)
				continue
			}
			return inserted, fmt.Errorf("failed to create sample device: %w", err)
		}
		inserted++
	}

	s.logger.Info("Inserted sample devices", "requested", count, "inserted", inserted)
	return inserted, nil
}
