package models

import "time"

// Shift statuses. Free-form label on the record, PRESENT is the default.
const (
	StatusPresent = "PRESENT"
)

// AttendanceRecord is one physical shift. A nil CheckOut means the shift
// is still open; at most one open record may exist per employee at any
// instant (enforced by a partial unique index, see database.AutoMigrate).
// Closed records are never mutated.
type AttendanceRecord struct {
	ID         uint       `gorm:"primaryKey"`
	EmployeeID uint       `gorm:"index;not null"`
	CheckIn    time.Time  `gorm:"index;not null"`
	CheckOut   *time.Time `gorm:"index"`
	IsOnBreak  bool       `gorm:"not null;default:false"`
	BreakStart *time.Time
	BreakEnd   *time.Time
	Status     string `gorm:"size:32;not null;default:PRESENT"`
	Notes      string `gorm:"size:255"`
	CreatedAt  time.Time
	UpdatedAt  time.Time

	Employee Employee `gorm:"constraint:OnDelete:CASCADE"`
}
