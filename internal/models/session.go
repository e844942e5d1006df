package models

import "time"

// Session is the server-side half of a login. The browser only holds a
// signed token naming the session ID.
type Session struct {
	ID          string     `gorm:"primaryKey;size:36" json:"id"`
	UserID      uint       `gorm:"index;not null" json:"user_id"`
	User        User       `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Fingerprint string     `gorm:"size:64;not null" json:"fingerprint"`
	Remember    bool       `gorm:"not null" json:"remember"`
	CreatedAt   time.Time  `json:"created_at"`
	ExpiresAt   time.Time  `gorm:"index;not null" json:"expires_at"`
	RevokedAt   *time.Time `json:"revoked_at,omitempty"`
}

func (Session) TableName() string {
	return "sessions"
}

func (s Session) Active(now time.Time) bool {
	return s.RevokedAt == nil && now.Before(s.ExpiresAt)
}
