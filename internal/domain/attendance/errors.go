package attendance

import (
	"fmt"
	"time"

	"fieldforce/internal/domain/apperr"
)

var (
	ErrLocationRequired = apperr.Validation("location_required", "a valid location is required")
	ErrInvalidDecision  = apperr.Validation("invalid_decision", "decision must be approved or rejected")
	ErrInvalidRange     = apperr.Validation("invalid_range", "from date must not be after to date")

	ErrNoCheckIn         = apperr.Conflict("no_check_in", "you have not checked in today")
	ErrAlreadyCheckedIn  = apperr.Conflict("already_checked_in", "already checked in today")
	ErrAlreadyCheckedOut = apperr.Conflict("already_checked_out", "already checked out today")
	ErrAlreadyOnBreak    = apperr.Conflict("already_on_break", "a break is already in progress")
	ErrNoActiveBreak     = apperr.Conflict("no_active_break", "no break is in progress")
	ErrConcurrentUpdate  = apperr.Conflict("concurrent_update", "attendance record was modified concurrently")

	ErrNotSupervisor = apperr.Unauthorized("not_supervisor", "only managers and admins may do this")

	ErrRecordNotFound = apperr.NotFound("attendance_not_found", "attendance record not found")
)

// CheckedInError reports the existing check-in time alongside ErrAlreadyCheckedIn.
type CheckedInError struct {
	At time.Time
}

func (e *CheckedInError) Error() string {
	return fmt.Sprintf("already checked in today at %s", e.At.Format(time.Kitchen))
}

func (e *CheckedInError) Unwrap() error {
	return ErrAlreadyCheckedIn
}

// Details exposes the existing check-in time to API clients.
func (e *CheckedInError) Details() map[string]any {
	return map[string]any{"checkInTime": e.At.UTC().Format(time.RFC3339)}
}
