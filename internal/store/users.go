package store

import (
	"context"

	"github.com/monorkin/lab-roster/internal/models"
)

func (s *Store) FindUserByNumber(ctx context.Context, number int) (*models.User, error) {
	var u models.User
	if err := s.conn(ctx).Preload("Role").Where("number = ?", number).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Store) FindUserByID(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := s.conn(ctx).Preload("Role").First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// FindFirstUserWithRole returns the oldest user holding roleName.
func (s *Store) FindFirstUserWithRole(ctx context.Context, roleName string) (*models.User, error) {
	db := s.conn(ctx)
	roleIDs := db.Model(&models.Role{}).Select("id").Where("name = ?", roleName)

	var u models.User
	if err := db.Preload("Role").Where("role_id IN (?)", roleIDs).Order("id").First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	return s.create(ctx, u)
}

// UpdatePassword stores a new hash for the user with the given number.
func (s *Store) UpdatePassword(ctx context.Context, number int, passwordHash string) error {
	result := s.conn(ctx).Model(&models.User{}).Where("number = ?", number).Update("password_hash", passwordHash)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := s.conn(ctx).Preload("Role").Order("number").Find(&users).Error
	return users, err
}

func (s *Store) ListUserIDs(ctx context.Context) ([]uint, error) {
	var ids []uint
	err := s.conn(ctx).Model(&models.User{}).Order("id").Pluck("id", &ids).Error
	return ids, err
}
