package models

import "time"

type UserRole string

const (
	RoleAdmin UserRole = "ADMIN"
	RoleUser  UserRole = "USER"
)

// User is the authentication principal. An approved USER normally owns
// exactly one Employee row; an approved user without one is an
// inconsistent state repaired through the admin sync endpoint.
type User struct {
	ID           uint     `gorm:"primaryKey"`
	Email        string   `gorm:"size:128;uniqueIndex;not null"`
	PasswordHash string   `gorm:"size:255;not null"`
	Name         string   `gorm:"size:64"`
	Role         UserRole `gorm:"size:16;index;not null;default:USER"`
	IsApproved   bool     `gorm:"not null;default:false"`

	FailedLoginAttempts int        `gorm:"default:0"`
	LockedUntil         *time.Time `gorm:"index"`
	LastLoginAt         *time.Time
	LastLoginIP         string `gorm:"size:64"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
