package database

import (
	"fmt"

	"github.com/faxingberling1/internal-crm-sub001/internal/models"

	"gorm.io/gorm"
)

// AutoMigrate runs database schema migrations for all models.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Employee{},
		&models.AttendanceRecord{},
		&models.SecurityConfig{},
		&models.Session{},
		&models.Notification{},
		&models.AccessLog{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	// At most one open shift per employee. AutoMigrate cannot express a
	// partial index, so it is created directly; this is the storage-level
	// guard behind the check-then-insert in the shift ledger.
	if err := db.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS uidx_attendance_open
		 ON attendance_records(employee_id) WHERE check_out IS NULL`,
	).Error; err != nil {
		return fmt.Errorf("create open-shift index: %w", err)
	}

	return nil
}
