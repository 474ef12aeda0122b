package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/faxingberling1/internal-crm-sub001/internal/config"
	"github.com/faxingberling1/internal-crm-sub001/internal/models"
)

func TestGetOrInitSecurityConfig(t *testing.T) {
	db, err := Init(config.DatabaseConfig{
		Path: filepath.Join(t.TempDir(), "sec.db"),
	})
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))

	defaults := config.OfficeConfig{
		DefaultIP:         "203.0.113.9",
		DefaultHoursStart: "09:00",
		DefaultHoursEnd:   "18:00",
	}

	// first read creates the row with security disabled
	sec, err := GetOrInitSecurityConfig(db, defaults)
	require.NoError(t, err)
	require.False(t, sec.SecurityEnabled)
	require.Equal(t, "203.0.113.9", sec.OfficeIP)
	require.Equal(t, "09:00", sec.OfficeHoursStart)

	// second read returns the same row, no duplicates
	again, err := GetOrInitSecurityConfig(db, config.OfficeConfig{DefaultIP: "other"})
	require.NoError(t, err)
	require.Equal(t, sec.ID, again.ID)
	require.Equal(t, "203.0.113.9", again.OfficeIP)

	var count int64
	require.NoError(t, db.Model(&models.SecurityConfig{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}
