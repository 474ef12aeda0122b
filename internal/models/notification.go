package models

import "time"

// Notification is one delivered-to-one-recipient message. Fan-out to an
// audience ("all admins") creates one row per recipient.
type Notification struct {
	ID          uint   `gorm:"primaryKey"`
	RecipientID uint   `gorm:"index;not null"`
	Title       string `gorm:"size:128;not null"`
	Message     string `gorm:"size:512"`
	Category    string `gorm:"size:32;index"`
	Link        string `gorm:"size:255"`
	ReadAt      *time.Time
	CreatedAt   time.Time
}
