package shift

import "errors"

// Business errors of the shift state machine. Handlers map these onto
// HTTP statuses; a rejected transition never mutates the ledger.
var (
	ErrAlreadyClockedIn = errors.New("employee already has an open shift")
	ErrNoActiveShift    = errors.New("employee has no open shift")
	ErrNoActiveBreak    = errors.New("employee is not on break")
	ErrAlreadyOnBreak   = errors.New("employee is already on break")
	ErrForbidden        = errors.New("caller may not act on this employee")
	ErrEmployeeNotFound = errors.New("employee not found")
)
