package models

import "time"

// Session stores issued token ids (jti) so logout can invalidate a JWT
// before it expires.
type Session struct {
	ID        string    `gorm:"primaryKey;size:64"` // uuid, embedded in the token as jti
	UserID    uint      `gorm:"index;not null"`
	ExpiresAt time.Time `gorm:"index;not null"`
	Revoked   bool      `gorm:"index;not null"`
	CreatedAt time.Time

	User User `gorm:"constraint:OnDelete:CASCADE"`
}
