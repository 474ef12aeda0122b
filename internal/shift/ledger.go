package shift

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/faxingberling1/internal-crm-sub001/internal/models"
)

// Employee presence states, inferred from the latest attendance record.
type State string

const (
	StateIdle    State = "IDLE"
	StateActive  State = "ACTIVE"
	StateOnBreak State = "ON_BREAK"
)

// Notifier delivers transition notifications to the admin audience.
// Implementations must be best-effort: never block for long and never
// return delivery problems to the caller.
type Notifier interface {
	NotifyAdmins(title, message, category, link string)
}

// Ledger is the per-employee shift state machine. Transitions are
// serialized per employee with a keyed mutex so concurrent clock-ins
// report ErrAlreadyClockedIn cleanly; the partial unique index on open
// records remains the authoritative guard underneath.
type Ledger struct {
	db       *gorm.DB
	notifier Notifier

	mu    sync.Mutex
	locks map[uint]*sync.Mutex
}

func NewLedger(db *gorm.DB, notifier Notifier) *Ledger {
	return &Ledger{
		db:       db,
		notifier: notifier,
		locks:    map[uint]*sync.Mutex{},
	}
}

func (l *Ledger) lock(employeeID uint) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.locks[employeeID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[employeeID] = m
	}
	return m
}

// employee loads the target and checks that the caller may act on it:
// admins may act on anyone, everyone else only on their own record.
func (l *Ledger) employee(caller *models.User, employeeID uint) (*models.Employee, error) {
	var emp models.Employee
	if err := l.db.First(&emp, employeeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEmployeeNotFound
		}
		return nil, fmt.Errorf("load employee: %w", err)
	}

	if caller.Role != models.RoleAdmin {
		if emp.UserID == nil || *emp.UserID != caller.ID {
			return nil, ErrForbidden
		}
	}
	return &emp, nil
}

// Open returns the employee's open record, or nil when there is none.
func (l *Ledger) Open(employeeID uint) (*models.AttendanceRecord, error) {
	var rec models.AttendanceRecord
	err := l.db.
		Where("employee_id = ? AND check_out IS NULL", employeeID).
		First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query open shift: %w", err)
	}
	return &rec, nil
}

// State reports the employee's current presence state.
func (l *Ledger) State(employeeID uint) (State, *models.AttendanceRecord, error) {
	rec, err := l.Open(employeeID)
	if err != nil {
		return "", nil, err
	}
	switch {
	case rec == nil:
		return StateIdle, nil, nil
	case rec.IsOnBreak:
		return StateOnBreak, rec, nil
	default:
		return StateActive, rec, nil
	}
}

// ClockIn opens a new shift (IDLE -> ACTIVE).
func (l *Ledger) ClockIn(caller *models.User, employeeID uint) (*models.AttendanceRecord, error) {
	emp, err := l.employee(caller, employeeID)
	if err != nil {
		return nil, err
	}

	m := l.lock(emp.ID)
	m.Lock()
	defer m.Unlock()

	open, err := l.Open(emp.ID)
	if err != nil {
		return nil, err
	}
	if open != nil {
		return nil, ErrAlreadyClockedIn
	}

	rec := models.AttendanceRecord{
		EmployeeID: emp.ID,
		CheckIn:    time.Now().UTC(),
		Status:     models.StatusPresent,
	}
	if err := l.db.Create(&rec).Error; err != nil {
		// lost the race against another process: the open-shift index
		// rejected the second insert
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyClockedIn
		}
		return nil, fmt.Errorf("create shift: %w", err)
	}

	l.notifier.NotifyAdmins("Shift Started",
		fmt.Sprintf("%s clocked in", emp.Name), "attendance", "/attendance")
	return &rec, nil
}

// ClockOut closes the open shift (ACTIVE|ON_BREAK -> IDLE). An
// in-progress break is implicitly ended.
func (l *Ledger) ClockOut(caller *models.User, employeeID uint) (*models.AttendanceRecord, error) {
	emp, err := l.employee(caller, employeeID)
	if err != nil {
		return nil, err
	}

	m := l.lock(emp.ID)
	m.Lock()
	defer m.Unlock()

	rec, err := l.Open(emp.ID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrNoActiveShift
	}

	now := time.Now().UTC()
	rec.CheckOut = &now
	if rec.IsOnBreak {
		rec.IsOnBreak = false
		if rec.BreakEnd == nil {
			rec.BreakEnd = &now
		}
	}
	if err := l.db.Model(rec).Updates(map[string]interface{}{
		"check_out":   rec.CheckOut,
		"is_on_break": rec.IsOnBreak,
		"break_end":   rec.BreakEnd,
	}).Error; err != nil {
		return nil, fmt.Errorf("close shift: %w", err)
	}

	l.notifier.NotifyAdmins("Shift Ended",
		fmt.Sprintf("%s clocked out", emp.Name), "attendance", "/attendance")
	return rec, nil
}

// StartBreak moves ACTIVE -> ON_BREAK. A second StartBreak while on
// break is rejected rather than resetting the break start.
func (l *Ledger) StartBreak(caller *models.User, employeeID uint) (*models.AttendanceRecord, error) {
	emp, err := l.employee(caller, employeeID)
	if err != nil {
		return nil, err
	}

	m := l.lock(emp.ID)
	m.Lock()
	defer m.Unlock()

	rec, err := l.Open(emp.ID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrNoActiveShift
	}
	if rec.IsOnBreak {
		return nil, ErrAlreadyOnBreak
	}

	now := time.Now().UTC()
	rec.BreakStart = &now
	rec.IsOnBreak = true
	if err := l.db.Model(rec).Updates(map[string]interface{}{
		"break_start": rec.BreakStart,
		"is_on_break": true,
	}).Error; err != nil {
		return nil, fmt.Errorf("start break: %w", err)
	}

	l.notifier.NotifyAdmins("Break Started",
		fmt.Sprintf("%s started a break", emp.Name), "attendance", "/attendance")
	return rec, nil
}

// EndBreak moves ON_BREAK -> ACTIVE.
func (l *Ledger) EndBreak(caller *models.User, employeeID uint) (*models.AttendanceRecord, error) {
	emp, err := l.employee(caller, employeeID)
	if err != nil {
		return nil, err
	}

	m := l.lock(emp.ID)
	m.Lock()
	defer m.Unlock()

	rec, err := l.Open(emp.ID)
	if err != nil {
		return nil, err
	}
	if rec == nil || !rec.IsOnBreak {
		return nil, ErrNoActiveBreak
	}

	now := time.Now().UTC()
	rec.BreakEnd = &now
	rec.IsOnBreak = false
	if err := l.db.Model(rec).Updates(map[string]interface{}{
		"break_end":   rec.BreakEnd,
		"is_on_break": false,
	}).Error; err != nil {
		return nil, fmt.Errorf("end break: %w", err)
	}

	l.notifier.NotifyAdmins("Break Ended",
		fmt.Sprintf("%s ended a break", emp.Name), "attendance", "/attendance")
	return rec, nil
}
