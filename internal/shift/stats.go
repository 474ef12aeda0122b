package shift

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/faxingberling1/internal-crm-sub001/internal/models"
)

// Summary holds completed worked hours per window, one decimal place.
// Open shifts contribute nothing until they are closed.
type Summary struct {
	Today       float64 `json:"today"`
	Weekly      float64 `json:"weekly"`
	Monthly     float64 `json:"monthly"`
	RecordCount int     `json:"record_count"`
}

// Stats derives worked-hour summaries from the attendance ledger. Day,
// ISO-week (Monday) and month boundaries are computed in office-local
// time, a fixed UTC offset.
type Stats struct {
	db          *gorm.DB
	offsetHours int
}

func NewStats(db *gorm.DB, offsetHours int) *Stats {
	return &Stats{db: db, offsetHours: offsetHours}
}

// Summary aggregates the employee's records from the start of the
// current month up to now.
func (s *Stats) Summary(employeeID uint, now time.Time) (*Summary, error) {
	loc := time.FixedZone("office", s.offsetHours*3600)
	local := now.In(loc)

	startOfDay := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	// Monday as first day of week
	daysSinceMonday := (int(local.Weekday()) + 6) % 7
	startOfWeek := startOfDay.AddDate(0, 0, -daysSinceMonday)
	startOfMonth := time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, loc)

	var records []models.AttendanceRecord
	if err := s.db.
		Where("employee_id = ? AND check_in >= ?", employeeID, startOfMonth.UTC()).
		Order("check_in ASC").
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("load attendance: %w", err)
	}

	var today, weekly, monthly time.Duration
	for _, rec := range records {
		worked := workedTime(&rec)
		if worked <= 0 {
			continue
		}
		monthly += worked
		if !rec.CheckIn.Before(startOfWeek) {
			weekly += worked
		}
		if !rec.CheckIn.Before(startOfDay) {
			today += worked
		}
	}

	return &Summary{
		Today:       roundHours(today),
		Weekly:      roundHours(weekly),
		Monthly:     roundHours(monthly),
		RecordCount: len(records),
	}, nil
}

// workedTime is check-out minus check-in with the completed break
// deducted. Open shifts count as zero.
func workedTime(rec *models.AttendanceRecord) time.Duration {
	if rec.CheckOut == nil {
		return 0
	}
	worked := rec.CheckOut.Sub(rec.CheckIn)
	if rec.BreakStart != nil && rec.BreakEnd != nil && rec.BreakEnd.After(*rec.BreakStart) {
		worked -= rec.BreakEnd.Sub(*rec.BreakStart)
	}
	return worked
}

func roundHours(d time.Duration) float64 {
	return decimal.NewFromFloat(d.Hours()).Round(1).InexactFloat64()
}
