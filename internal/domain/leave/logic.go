package leave

import (
	"strings"
	"time"
)

const day = 24 * time.Hour

// CivilDate drops the time of day, keeping the calendar date t has in loc.
// The result is midnight UTC so date arithmetic is free of DST shifts.
func CivilDate(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DateOf keeps the calendar date t carries in its own zone, so a client's
// "2024-03-01T00:00:00+05:30" stays 1 March.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// CalculateDays returns the inclusive day count between two calendar dates.
func CalculateDays(start, end time.Time) (float64, error) {
	start, end = DateOf(start), DateOf(end)
	if end.Before(start) {
		return 0, ErrInvalidDateRange
	}
	return float64(end.Sub(start)/day) + 1, nil
}

// TotalDays applies the half-day rule: a single-day half-day request is 0.5.
// Half-day on a multi-day span has no effect.
func TotalDays(start, end time.Time, isHalfDay bool) (float64, error) {
	days, err := CalculateDays(start, end)
	if err != nil {
		return 0, err
	}
	if isHalfDay && days == 1 {
		return 0.5, nil
	}
	return days, nil
}

// RequiresAdmin reports whether the request escalates past the manager.
func RequiresAdmin(leaveType string, totalDays float64, urgent bool) bool {
	return totalDays > AdminEscalationDays || urgent || leaveType == TypeMaternity || leaveType == TypePaternity
}

// ValidateInput checks and normalises an application.
func ValidateInput(in ApplyInput) (ApplyInput, error) {
	in.LeaveType = strings.ToLower(strings.TrimSpace(in.LeaveType))
	in.Reason = strings.TrimSpace(in.Reason)
	if !IsValidType(in.LeaveType) {
		return in, ErrInvalidLeaveType
	}
	if in.StartDate.IsZero() || in.EndDate.IsZero() {
		return in, ErrDatesRequired
	}
	in.StartDate = DateOf(in.StartDate)
	in.EndDate = DateOf(in.EndDate)
	if in.EndDate.Before(in.StartDate) {
		return in, ErrInvalidDateRange
	}
	if in.Reason == "" {
		return in, ErrReasonRequired
	}
	if in.IsHalfDay {
		if in.HalfDayType == "" {
			in.HalfDayType = HalfDayFirst
		}
		if in.HalfDayType != HalfDayFirst && in.HalfDayType != HalfDaySecond {
			return in, ErrInvalidHalfDayType
		}
	} else {
		in.HalfDayType = ""
	}
	return in, nil
}
