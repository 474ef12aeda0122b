package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/faxingberling1/internal-crm-sub001/internal/config"
	"github.com/faxingberling1/internal-crm-sub001/internal/models"
)

// GetOrInitSecurityConfig returns the singleton security row, creating
// it with safe defaults (security disabled) on first read. Creation is
// an explicit operation here at the persistence boundary, not a hidden
// side effect inside a handler.
func GetOrInitSecurityConfig(db *gorm.DB, defaults config.OfficeConfig) (*models.SecurityConfig, error) {
	sec := models.SecurityConfig{
		ID: 1,
	}
	err := db.
		Where(models.SecurityConfig{ID: 1}).
		Attrs(models.SecurityConfig{
			OfficeIP:         defaults.DefaultIP,
			OfficeHoursStart: defaults.DefaultHoursStart,
			OfficeHoursEnd:   defaults.DefaultHoursEnd,
			SecurityEnabled:  false,
		}).
		FirstOrCreate(&sec).Error
	if err != nil {
		return nil, fmt.Errorf("load security config: %w", err)
	}
	return &sec, nil
}
