package attendance

import "time"

// ShiftPolicy holds the standard shift boundaries used for classification.
type ShiftPolicy struct {
	Location *time.Location
	// Start and End are offsets from local midnight.
	Start                    time.Duration
	End                      time.Duration
	LateGrace                time.Duration
	EarlyGrace               time.Duration
	HalfDayHours             float64
	CloseOpenBreakOnCheckout bool
}

func DefaultPolicy() ShiftPolicy {
	return ShiftPolicy{
		Location:     time.UTC,
		Start:        9 * time.Hour,
		End:          18 * time.Hour,
		LateGrace:    30 * time.Minute,
		EarlyGrace:   30 * time.Minute,
		HalfDayHours: 4,
	}
}

func (p ShiftPolicy) location() *time.Location {
	if p.Location == nil {
		return time.UTC
	}
	return p.Location
}

// WorkDate is the shift-local calendar date of t, as midnight UTC.
func (p ShiftPolicy) WorkDate(t time.Time) time.Time {
	y, m, d := t.In(p.location()).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (p ShiftPolicy) boundary(t time.Time, offset time.Duration) time.Time {
	y, m, d := t.In(p.location()).Date()
	hour := int(offset / time.Hour)
	minute := int(offset % time.Hour / time.Minute)
	return time.Date(y, m, d, hour, minute, 0, 0, p.location())
}
