package models

import (
	"fmt"

	"gorm.io/gorm"
)

const (
	ADMIN_NUMBER   = 0
	ADMIN_USERNAME = "Admin"
)

type User struct {
	ID           uint   `gorm:"primaryKey"`
	Number       int    `gorm:"uniqueIndex;not null"`
	Username     string `gorm:"size:64;uniqueIndex;not null"`
	PasswordHash string `gorm:"size:128;not null" json:"-"`
	RoleID       uint   `gorm:"not null"`
	Role         Role   `gorm:"foreignKey:RoleID"`
}

func (User) TableName() string {
	return "users"
}

// IsAdmin relies on Role being loaded.
func (u User) IsAdmin() bool {
	return u.Role.IsAdmin()
}

// BeforeCreate gives users created without a role the Student role.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.RoleID != 0 {
		return nil
	}
	if u.Role.ID != 0 {
		u.RoleID = u.Role.ID
		return nil
	}

	var role Role
	if err := tx.Session(&gorm.Session{NewDB: true}).Where("name = ?", RoleStudent).First(&role).Error; err != nil {
		return fmt.Errorf("failed to look up default role %q: %w", RoleStudent, err)
	}
	u.RoleID = role.ID
	u.Role = role

	return nil
}
