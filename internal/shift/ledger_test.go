package shift

import (
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/faxingberling1/internal-crm-sub001/internal/config"
	"github.com/faxingberling1/internal-crm-sub001/internal/database"
	"github.com/faxingberling1/internal-crm-sub001/internal/models"
)

type noopNotifier struct{}

func (noopNotifier) NotifyAdmins(title, message, category, link string) {}

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Init(config.DatabaseConfig{
		Path: filepath.Join(t.TempDir(), "test.db"),
	})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	return db
}

func seedEmployee(t *testing.T, db *gorm.DB, email string) (*models.User, *models.Employee) {
	t.Helper()
	user := models.User{
		Email:        email,
		PasswordHash: "x",
		Name:         "Test User",
		Role:         models.RoleUser,
		IsApproved:   true,
	}
	require.NoError(t, db.Create(&user).Error)

	emp := models.Employee{
		Name:   user.Name,
		Email:  user.Email,
		UserID: &user.ID,
	}
	require.NoError(t, db.Create(&emp).Error)
	return &user, &emp
}

func countRecords(t *testing.T, db *gorm.DB, employeeID uint) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&models.AttendanceRecord{}).
		Where("employee_id = ?", employeeID).Count(&n).Error)
	return n
}

func TestLedger_FullCycle(t *testing.T) {
	db := testDB(t)
	ledger := NewLedger(db, noopNotifier{})
	user, emp := seedEmployee(t, db, "e1@example.com")

	state, _, err := ledger.State(emp.ID)
	require.NoError(t, err)
	require.Equal(t, StateIdle, state)

	rec, err := ledger.ClockIn(user, emp.ID)
	require.NoError(t, err)
	require.Nil(t, rec.CheckOut)
	require.Equal(t, models.StatusPresent, rec.Status)

	state, _, err = ledger.State(emp.ID)
	require.NoError(t, err)
	require.Equal(t, StateActive, state)

	// second clock-in must be rejected without a second record
	_, err = ledger.ClockIn(user, emp.ID)
	require.ErrorIs(t, err, ErrAlreadyClockedIn)
	require.EqualValues(t, 1, countRecords(t, db, emp.ID))

	rec, err = ledger.StartBreak(user, emp.ID)
	require.NoError(t, err)
	require.True(t, rec.IsOnBreak)
	require.NotNil(t, rec.BreakStart)

	state, _, err = ledger.State(emp.ID)
	require.NoError(t, err)
	require.Equal(t, StateOnBreak, state)

	_, err = ledger.StartBreak(user, emp.ID)
	require.ErrorIs(t, err, ErrAlreadyOnBreak)

	// clocking out while on break implicitly ends the break
	rec, err = ledger.ClockOut(user, emp.ID)
	require.NoError(t, err)
	require.NotNil(t, rec.CheckOut)
	require.NotNil(t, rec.BreakEnd)
	require.False(t, rec.IsOnBreak)

	state, _, err = ledger.State(emp.ID)
	require.NoError(t, err)
	require.Equal(t, StateIdle, state)
}

func TestLedger_BreakEndedExplicitly(t *testing.T) {
	db := testDB(t)
	ledger := NewLedger(db, noopNotifier{})
	user, emp := seedEmployee(t, db, "e2@example.com")

	_, err := ledger.ClockIn(user, emp.ID)
	require.NoError(t, err)
	_, err = ledger.StartBreak(user, emp.ID)
	require.NoError(t, err)

	rec, err := ledger.EndBreak(user, emp.ID)
	require.NoError(t, err)
	require.False(t, rec.IsOnBreak)
	require.NotNil(t, rec.BreakEnd)

	state, _, err := ledger.State(emp.ID)
	require.NoError(t, err)
	require.Equal(t, StateActive, state)
}

func TestLedger_RejectedTransitionsLeaveNoTrace(t *testing.T) {
	db := testDB(t)
	ledger := NewLedger(db, noopNotifier{})
	user, emp := seedEmployee(t, db, "e3@example.com")

	_, err := ledger.ClockOut(user, emp.ID)
	require.ErrorIs(t, err, ErrNoActiveShift)

	_, err = ledger.StartBreak(user, emp.ID)
	require.ErrorIs(t, err, ErrNoActiveShift)

	_, err = ledger.EndBreak(user, emp.ID)
	require.ErrorIs(t, err, ErrNoActiveBreak)

	require.EqualValues(t, 0, countRecords(t, db, emp.ID))

	// active but not on break: EndBreak still rejected, record untouched
	_, err = ledger.ClockIn(user, emp.ID)
	require.NoError(t, err)
	_, err = ledger.EndBreak(user, emp.ID)
	require.ErrorIs(t, err, ErrNoActiveBreak)

	open, err := ledger.Open(emp.ID)
	require.NoError(t, err)
	require.NotNil(t, open)
	require.Nil(t, open.BreakEnd)
	require.False(t, open.IsOnBreak)
}

func TestLedger_Authorization(t *testing.T) {
	db := testDB(t)
	ledger := NewLedger(db, noopNotifier{})
	user1, emp1 := seedEmployee(t, db, "owner@example.com")
	_, emp2 := seedEmployee(t, db, "other@example.com")

	admin := models.User{
		Email:        "admin@example.com",
		PasswordHash: "x",
		Role:         models.RoleAdmin,
		IsApproved:   true,
	}
	require.NoError(t, db.Create(&admin).Error)

	// a user may not act on someone else's employee
	_, err := ledger.ClockIn(user1, emp2.ID)
	require.ErrorIs(t, err, ErrForbidden)
	require.EqualValues(t, 0, countRecords(t, db, emp2.ID))

	// an admin may act on anyone
	_, err = ledger.ClockIn(&admin, emp1.ID)
	require.NoError(t, err)
	_, err = ledger.ClockOut(&admin, emp1.ID)
	require.NoError(t, err)

	// unknown employee
	_, err = ledger.ClockIn(&admin, 9999)
	require.ErrorIs(t, err, ErrEmployeeNotFound)
}

func TestLedger_ConcurrentClockIn(t *testing.T) {
	db := testDB(t)
	ledger := NewLedger(db, noopNotifier{})
	user, emp := seedEmployee(t, db, "race@example.com")

	const workers = 8
	results := make(chan error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := ledger.ClockIn(user, emp.ID)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var okCount, rejected int
	for err := range results {
		switch {
		case err == nil:
			okCount++
		default:
			require.ErrorIs(t, err, ErrAlreadyClockedIn)
			rejected++
		}
	}
	require.Equal(t, 1, okCount)
	require.Equal(t, workers-1, rejected)

	var open int64
	require.NoError(t, db.Model(&models.AttendanceRecord{}).
		Where("employee_id = ? AND check_out IS NULL", emp.ID).
		Count(&open).Error)
	require.EqualValues(t, 1, open)
}
