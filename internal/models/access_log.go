package models

import "time"

// AccessLog records admission-gate denials for operational debugging.
// It is diagnostics only, not a security control.
type AccessLog struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    *uint  `gorm:"index"`
	Path      string `gorm:"size:255"`
	Method    string `gorm:"size:16"`
	IP        string `gorm:"size:64"`
	Reason    string `gorm:"size:16;index"` // "ip" or "time"
	Detail    string `gorm:"size:255"`
	CreatedAt time.Time
}
