package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Device is a piece of lab equipment. Owner is the user who registered it;
// devices registered by an administrator cannot be removed.
type Device struct {
	ID      uint      `gorm:"primaryKey"`
	Lab     string    `gorm:"size:64;uniqueIndex;not null"`
	Name    string    `gorm:"size:64;index;not null"`
	Time    time.Time `gorm:"column:time;not null"`
	OwnerID uint      `gorm:"index;not null"`
	Owner   User      `gorm:"foreignKey:OwnerID"`
}

func (Device) TableName() string {
	return "devices"
}

// AdminOwned relies on Owner.Role being loaded.
func (d Device) AdminOwned() bool {
	return d.Owner.IsAdmin()
}

// BeforeCreate stamps the creation time and falls back to the first
// administrator as owner.
func (d *Device) BeforeCreate(tx *gorm.DB) error {
	if d.Time.IsZero() {
		d.Time = time.Now().UTC()
	}
	if d.OwnerID != 0 {
		return nil
	}
	if d.Owner.ID != 0 {
		d.OwnerID = d.Owner.ID
		return nil
	}

	db := tx.Session(&gorm.Session{NewDB: true})
	adminRoles := db.Model(&Role{}).Select("id").Where("name = ?", RoleAdmin)

	var admin User
	err := db.Where("role_id IN (?)", adminRoles).Order("id").First(&admin).Error
	if err != nil {
		return fmt.Errorf("failed to look up default device owner: %w", err)
	}
	d.OwnerID = admin.ID
	d.Owner = admin

	return nil
}
