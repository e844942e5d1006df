// Package catalog implements the device roster: listing, searching,
// registering and removing lab devices.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/monorkin/lab-roster/internal/models"
	"github.com/monorkin/lab-roster/internal/store"
)

var (
	ErrNotFound       = errors.New("device not found")
	ErrDuplicateEntry = errors.New("device already exists")
	ErrAdminOwned     = errors.New("device was added by an administrator")
	ErrUnknownOwner   = errors.New("no user with that number")
)

type Store interface {
	ListDevices(ctx context.Context) ([]models.Device, error)
	SearchDevices(ctx context.Context, fragment string) ([]models.Device, error)
	FindDevice(ctx context.Context, id uint) (*models.Device, error)
	DeviceExists(ctx context.Context, id uint, lab string) (bool, error)
	CreateDevice(ctx context.Context, device *models.Device) error
	DeleteDevice(ctx context.Context, id uint) error
	FindUserByNumber(ctx context.Context, number int) (*models.User, error)
	FindFirstUserWithRole(ctx context.Context, roleName string) (*models.User, error)
}

type Catalog struct {
	store  Store
	logger *slog.Logger
	now    func() time.Time
}

func New(s Store, logger *slog.Logger) *Catalog {
	if logger == nil {
		logger = slog.Default()
	}
	return &Catalog{
		store:  s,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// NewDevice is a validated request to register a device.
type NewDevice struct {
	Name string
	ID   uint
	// OwnerNumber selects the registering user; nil means the administrator.
	OwnerNumber *int
}

// ListDevices returns every device whose lab contains the decimal filter,
// or all devices by owner (descending) and lab when filter is nil.
func (c *Catalog) ListDevices(ctx context.Context, filter *int) ([]models.Device, error) {
	if filter == nil {
		devices, err := c.store.ListDevices(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list devices: %w", err)
		}
		return devices, nil
	}

	devices, err := c.store.SearchDevices(ctx, strconv.Itoa(*filter))
	if err != nil {
		return nil, fmt.Errorf("failed to search devices: %w", err)
	}
	return devices, nil
}

func (c *Catalog) AddDevice(ctx context.Context, req NewDevice) (*models.Device, error) {
	lab := strconv.FormatUint(uint64(req.ID), 10)

	exists, err := c.store.DeviceExists(ctx, req.ID, lab)
	if err != nil {
		return nil, fmt.Errorf("failed to check for existing device: %w", err)
	}
	if exists {
		return nil, ErrDuplicateEntry
	}

	owner, err := c.resolveOwner(ctx, req.OwnerNumber)
	if err != nil {
		return nil, err
	}

	device := &models.Device{
		ID:      req.ID,
		Lab:     lab,
		Name:    req.Name,
		Time:    c.now(),
		OwnerID: owner.ID,
		Owner:   *owner,
	}

	if err := c.store.CreateDevice(ctx, device); err != nil {
		// Lost a race against a concurrent insert of the same device
		if store.IsDuplicate(err) {
			c.logger.Info("Duplicate device rejected by the database", "id", req.ID)
			return nil, ErrDuplicateEntry
		}
		return nil, fmt.Errorf("failed to create device: %w", err)
	}

	c.logger.Info("Device added", "id", device.ID, "name", device.Name, "owner", owner.Username)
	return device, nil
}

// RemoveDevice deletes a device unless its owner is an administrator, in
// which case ErrAdminOwned is returned along with the untouched device.
func (c *Catalog) RemoveDevice(ctx context.Context, id uint) (*models.Device, error) {
	device, err := c.store.FindDevice(ctx, id)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load device: %w", err)
	}

	if device.AdminOwned() {
		c.logger.Info("Refused to remove administrator device", "id", id)
		return device, ErrAdminOwned
	}

	if err := c.store.DeleteDevice(ctx, id); err != nil {
		if store.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to delete device: %w", err)
	}

	c.logger.Info("Device removed", "id", id, "name", device.Name)
	return device, nil
}

func (c *Catalog) resolveOwner(ctx context.Context, number *int) (*models.User, error) {
	if number == nil {
		owner, err := c.store.FindFirstUserWithRole(ctx, models.RoleAdmin)
		if err != nil {
			if store.IsNotFound(err) {
				return nil, fmt.Errorf("no administrator account exists, run init first: %w", err)
			}
			return nil, fmt.Errorf("failed to load administrator: %w", err)
		}
		return owner, nil
	}

	owner, err := c.store.FindUserByNumber(ctx, *number)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, ErrUnknownOwner
		}
		return nil, fmt.Errorf("failed to load owner: %w", err)
	}
	return owner, nil
}
