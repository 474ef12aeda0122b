package models

import "time"

// Employee is the HR-side identity a shift is recorded against.
// UserID links it to the owning principal; the link is optional because
// employees can be created before their account is approved.
// ShiftStart/ShiftEnd are local "HH:mm" schedule metadata only, they are
// not enforced by the admission gate.
type Employee struct {
	ID         uint   `gorm:"primaryKey"`
	Name       string `gorm:"size:64;not null"`
	Email      string `gorm:"size:128;uniqueIndex;not null"`
	UserID     *uint  `gorm:"uniqueIndex"`
	ShiftStart string `gorm:"size:5"`
	ShiftEnd   string `gorm:"size:5"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
