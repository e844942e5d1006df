package store

import (
	"context"

	"github.com/monorkin/lab-roster/internal/models"
)

// EnsureRole returns the role called name, creating it if needed.
func (s *Store) EnsureRole(ctx context.Context, name string) (*models.Role, error) {
	role := models.Role{Name: name}
	if err := s.conn(ctx).Where(models.Role{Name: name}).FirstOrCreate(&role).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

func (s *Store) FindRoleByName(ctx context.Context, name string) (*models.Role, error) {
	var role models.Role
	if err := s.conn(ctx).Where("name = ?", name).First(&role).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

func (s *Store) ListRoles(ctx context.Context) ([]models.Role, error) {
	var roles []models.Role
	err := s.conn(ctx).Order("id").Find(&roles).Error
	return roles, err
}
