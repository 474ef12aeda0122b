package models

import "time"

// SecurityConfig is a single-row table holding the office access policy.
// The row is created lazily with safe defaults (security disabled) on
// first read; only admins may update it.
type SecurityConfig struct {
	ID               uint   `gorm:"primaryKey"`
	OfficeIP         string `gorm:"size:64"`
	OfficeHoursStart string `gorm:"size:5"` // "HH:mm", empty = unbounded
	OfficeHoursEnd   string `gorm:"size:5"`
	SecurityEnabled  bool   `gorm:"not null;default:false"`
	UpdatedAt        time.Time
	CreatedAt        time.Time
}

func (SecurityConfig) TableName() string { return "security_config" }
