package store

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/monorkin/lab-roster/internal/models"
)

// ListDevices orders by owner descending, then lab ascending.
func (s *Store) ListDevices(ctx context.Context) ([]models.Device, error) {
	var devices []models.Device
	err := s.conn(ctx).
		Preload("Owner.Role").
		Order("owner_id desc").
		Order("lab asc").
		Find(&devices).Error
	return devices, err
}

// SearchDevices returns devices whose lab contains fragment.
func (s *Store) SearchDevices(ctx context.Context, fragment string) ([]models.Device, error) {
	var devices []models.Device
	err := s.conn(ctx).
		Preload("Owner.Role").
		Where("lab LIKE ? ESCAPE '\\'", "%"+escapeLike(fragment)+"%").
		Order("lab asc").
		Find(&devices).Error
	return devices, err
}

func (s *Store) FindDevice(ctx context.Context, id uint) (*models.Device, error) {
	var device models.Device
	if err := s.conn(ctx).Preload("Owner.Role").First(&device, id).Error; err != nil {
		return nil, err
	}
	return &device, nil
}

// DeviceExists reports whether a device already uses id or lab.
func (s *Store) DeviceExists(ctx context.Context, id uint, lab string) (bool, error) {
	var count int64
	err := s.conn(ctx).Model(&models.Device{}).Where("id = ? OR lab = ?", id, lab).Count(&count).Error
	return count > 0, err
}

// CreateDevice inserts device. On PostgreSQL an explicit ID also moves the
// id sequence past it, otherwise a later generated ID would collide.
// SQLite's AUTOINCREMENT already tracks the largest ID.
func (s *Store) CreateDevice(ctx context.Context, device *models.Device) error {
	if device.ID == 0 || s.db.Dialector.Name() != "postgres" {
		return s.create(ctx, device)
	}

	return s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(device).Error; err != nil {
			return err
		}
		return tx.Exec(`SELECT setval(pg_get_serial_sequence('devices', 'id'), (SELECT MAX(id) FROM devices))`).Error
	})
}

func (s *Store) DeleteDevice(ctx context.Context, id uint) error {
	result := s.conn(ctx).Delete(&models.Device{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func escapeLike(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r == '%' || r == '_' || r == '\\' {
			out = append(out, '\\')
		}
		out = append(out, r)
	}
	return string(out)
}
