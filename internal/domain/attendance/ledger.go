package attendance

import (
	"time"

	"fieldforce/internal/domain/directory"
)

// statusRule is one row of the classification table. Rows are checked in
// order and the first match wins; no match leaves the day "present".
type statusRule struct {
	status  string
	applies func(r Record, p ShiftPolicy) bool
}

var statusPriority = []statusRule{
	{StatusHalfDay, func(r Record, p ShiftPolicy) bool {
		return r.CheckOut != nil && r.WorkingHours < p.HalfDayHours
	}},
	{StatusEarlyDeparture, func(r Record, p ShiftPolicy) bool {
		return r.IsEarlyDeparture && r.EarlyByMinutes > p.EarlyGrace.Minutes()
	}},
	{StatusLate, func(r Record, p ShiftPolicy) bool {
		return r.IsLate && r.LateByMinutes > p.LateGrace.Minutes()
	}},
}

// Derive recomputes every derived field from the raw punches and breaks.
// Before check-out only lateness is known.
func Derive(r Record, p ShiftPolicy) Record {
	out := r.clone()
	out.TotalHours, out.TotalBreakMinutes, out.WorkingHours = 0, 0, 0
	out.IsLate, out.LateByMinutes = false, 0
	out.IsEarlyDeparture, out.EarlyByMinutes = false, 0

	if out.CheckIn != nil {
		standardIn := p.boundary(out.CheckIn.Time, p.Start)
		if out.CheckIn.Time.After(standardIn) {
			out.IsLate = true
			out.LateByMinutes = out.CheckIn.Time.Sub(standardIn).Minutes()
		}
	}

	for _, b := range out.Breaks {
		if !b.Open() {
			out.TotalBreakMinutes += b.DurationMinutes
		}
	}

	if out.CheckIn != nil && out.CheckOut != nil {
		out.TotalHours = out.CheckOut.Time.Sub(out.CheckIn.Time).Hours()
		out.WorkingHours = out.TotalHours - out.TotalBreakMinutes/60

		standardOut := p.boundary(out.CheckOut.Time, p.End)
		if out.CheckOut.Time.Before(standardOut) {
			out.IsEarlyDeparture = true
			out.EarlyByMinutes = standardOut.Sub(out.CheckOut.Time).Minutes()
		}
	}

	out.Status = StatusPresent
	for _, rule := range statusPriority {
		if rule.applies(out, p) {
			out.Status = rule.status
			break
		}
	}
	return out
}

// CheckIn opens the day. existing is today's record, if one was stored.
func CheckIn(existing *Record, id, employeeID string, in PunchInput, now time.Time, p ShiftPolicy) (Record, error) {
	if existing != nil && existing.CheckIn != nil {
		return *existing, &CheckedInError{At: existing.CheckIn.Time}
	}
	if !in.Location.Valid() {
		return Record{}, ErrLocationRequired
	}
	var r Record
	if existing != nil {
		r = existing.clone()
	} else {
		r = Record{
			ID:             id,
			EmployeeID:     employeeID,
			WorkDate:       p.WorkDate(now),
			Breaks:         []Break{},
			ApprovalStatus: ApprovalPending,
			CreatedAt:      now,
			Version:        0,
		}
	}
	r.CheckIn = &Punch{Time: now, Location: in.Location, Photo: in.Photo, Notes: in.Notes}
	r.UpdatedAt = now
	return Derive(r, p), nil
}

func StartBreak(r *Record, in PunchInput, reason string, now time.Time) (Record, error) {
	if err := requireOpenDay(r); err != nil {
		return Record{}, err
	}
	if _, open := r.OpenBreak(); open {
		return Record{}, ErrAlreadyOnBreak
	}
	if reason == "" {
		reason = DefaultBreakReason
	}
	out := r.clone()
	out.Breaks = append(out.Breaks, Break{
		Start:  Punch{Time: now, Location: in.Location, Notes: in.Notes},
		Reason: reason,
	})
	out.UpdatedAt = now
	return out, nil
}

func EndBreak(r *Record, in PunchInput, now time.Time) (Record, error) {
	if err := requireOpenDay(r); err != nil {
		return Record{}, err
	}
	idx, open := r.OpenBreak()
	if !open {
		return Record{}, ErrNoActiveBreak
	}
	out := r.clone()
	closeBreak(&out.Breaks[idx], Punch{Time: now, Location: in.Location, Notes: in.Notes})
	out.UpdatedAt = now
	return out, nil
}

// CheckOut closes the day and recomputes the derived fields. An open break
// is excluded from break time unless the policy closes it at check-out.
func CheckOut(r *Record, in PunchInput, now time.Time, p ShiftPolicy) (Record, error) {
	if r == nil || r.CheckIn == nil {
		return Record{}, ErrNoCheckIn
	}
	if r.CheckOut != nil {
		return Record{}, ErrAlreadyCheckedOut
	}
	if !in.Location.Valid() {
		return Record{}, ErrLocationRequired
	}
	out := r.clone()
	punch := Punch{Time: now, Location: in.Location, Photo: in.Photo, Notes: in.Notes}
	if idx, open := out.OpenBreak(); open && p.CloseOpenBreakOnCheckout {
		closeBreak(&out.Breaks[idx], punch)
	}
	out.CheckOut = &punch
	out.UpdatedAt = now
	return Derive(out, p), nil
}

// Review records a supervisor's sign-off. It never touches status.
func Review(r Record, reviewerID, decision, notes string, now time.Time) (Record, error) {
	if decision != ApprovalApproved && decision != ApprovalRejected {
		return Record{}, ErrInvalidDecision
	}
	out := r.clone()
	out.ApprovalStatus = decision
	out.ApprovedBy = reviewerID
	out.ApprovalNotes = notes
	out.UpdatedAt = now
	return out, nil
}

// DayState reports today's position in the check-in/break/check-out cycle.
func DayState(r *Record) DayStatus {
	if r == nil || r.CheckIn == nil {
		return DayStatus{Status: DayNotCheckedIn, Record: r}
	}
	if r.CheckOut != nil {
		return DayStatus{Status: DayCheckedOut, Record: r}
	}
	if idx, open := r.OpenBreak(); open {
		active := r.Breaks[idx]
		return DayStatus{Status: DayOnBreak, Record: r, ActiveBreak: &active}
	}
	return DayStatus{Status: DayCheckedIn, Record: r}
}

// Summarise counts the day's records against the active employee roster.
func Summarise(date time.Time, records []Record, roster []directory.User) TeamSummary {
	present := map[string]bool{}
	late := 0
	for _, r := range records {
		present[r.EmployeeID] = true
		if r.IsLate {
			late++
		}
	}
	summary := TeamSummary{Date: date, Records: records}
	for _, u := range roster {
		if !present[u.ID] {
			summary.Absent = append(summary.Absent, u)
		}
	}
	if summary.Absent == nil {
		summary.Absent = []directory.User{}
	}
	if summary.Records == nil {
		summary.Records = []Record{}
	}
	summary.Summary = SummaryCounts{
		Present: len(records),
		Absent:  len(summary.Absent),
		Late:    late,
		OnTime:  len(records) - late,
	}
	return summary
}

func requireOpenDay(r *Record) error {
	if r == nil || r.CheckIn == nil {
		return ErrNoCheckIn
	}
	if r.CheckOut != nil {
		return ErrAlreadyCheckedOut
	}
	return nil
}

func closeBreak(b *Break, end Punch) {
	b.End = &end
	b.DurationMinutes = end.Time.Sub(b.Start.Time).Minutes()
}
