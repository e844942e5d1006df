package models

const (
	RoleStudent = "Student"
	RoleAdmin   = "Admin"
)

// RoleNames lists every role the application knows about, in insertion order.
var RoleNames = []string{RoleStudent, RoleAdmin}

type Role struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"size:64;uniqueIndex;not null"`
}

func (Role) TableName() string {
	return "roles"
}

func (r Role) IsAdmin() bool {
	return r.Name == RoleAdmin
}
