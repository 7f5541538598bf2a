package leave

import (
	"errors"
	"testing"
	"time"

	"fieldforce/internal/domain/apperr"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestTotalDays(t *testing.T) {
	cases := []struct {
		name    string
		start   time.Time
		end     time.Time
		halfDay bool
		want    float64
	}{
		{"single day", date(2024, 3, 1), date(2024, 3, 1), false, 1},
		{"single half day", date(2024, 3, 1), date(2024, 3, 1), true, 0.5},
		{"five days", date(2024, 3, 1), date(2024, 3, 5), false, 5},
		{"half day ignored on span", date(2024, 3, 1), date(2024, 3, 2), true, 2},
		{"across month end", date(2024, 2, 28), date(2024, 3, 1), false, 3},
		{"time of day ignored", time.Date(2024, 3, 1, 17, 30, 0, 0, time.UTC), time.Date(2024, 3, 2, 8, 0, 0, 0, time.UTC), false, 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := TotalDays(tc.start, tc.end, tc.halfDay)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestCalculateDaysInvalid(t *testing.T) {
	_, err := CalculateDays(date(2025, 2, 10), date(2025, 2, 9))
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCivilDateUsesLocation(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	instant := time.Date(2025, 3, 9, 20, 0, 0, 0, time.UTC)
	if got := CivilDate(instant, loc); !got.Equal(date(2025, 3, 10)) {
		t.Fatalf("expected 2025-03-10, got %v", got)
	}
	if got := CivilDate(instant, nil); !got.Equal(date(2025, 3, 9)) {
		t.Fatalf("expected 2025-03-09, got %v", got)
	}
}

func TestRequiresAdmin(t *testing.T) {
	cases := []struct {
		leaveType string
		days      float64
		urgent    bool
		want      bool
	}{
		{TypeCasual, 3, false, false},
		{TypeCasual, 4, false, true},
		{TypeSick, 1, true, true},
		{TypeMaternity, 1, false, true},
		{TypePaternity, 0.5, false, true},
	}
	for _, tc := range cases {
		if got := RequiresAdmin(tc.leaveType, tc.days, tc.urgent); got != tc.want {
			t.Fatalf("RequiresAdmin(%s,%v,%v) = %v, want %v", tc.leaveType, tc.days, tc.urgent, got, tc.want)
		}
	}
}

func TestValidateInput(t *testing.T) {
	base := ApplyInput{LeaveType: "Casual", StartDate: date(2025, 4, 1), EndDate: date(2025, 4, 2), Reason: " family "}
	got, err := ValidateInput(base)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.LeaveType != TypeCasual || got.Reason != "family" {
		t.Fatalf("expected normalised input, got %+v", got)
	}

	cases := []struct {
		name   string
		mutate func(*ApplyInput)
		want   error
	}{
		{"bad type", func(in *ApplyInput) { in.LeaveType = "vacation" }, ErrInvalidLeaveType},
		{"missing reason", func(in *ApplyInput) { in.Reason = "  " }, ErrReasonRequired},
		{"missing dates", func(in *ApplyInput) { in.StartDate = time.Time{} }, ErrDatesRequired},
		{"reversed", func(in *ApplyInput) { in.EndDate = date(2025, 3, 31) }, ErrInvalidDateRange},
		{"half day type", func(in *ApplyInput) { in.IsHalfDay = true; in.HalfDayType = "morning" }, ErrInvalidHalfDayType},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := base
			tc.mutate(&in)
			if _, err := ValidateInput(in); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestValidateInputKeepsClientCalendarDate(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	pst := time.FixedZone("PST", -8*3600)
	in := ApplyInput{
		LeaveType: TypeCasual,
		StartDate: time.Date(2024, 3, 1, 0, 0, 0, 0, ist),
		EndDate:   time.Date(2024, 3, 2, 23, 0, 0, 0, pst),
		Reason:    "trip",
	}
	got, err := ValidateInput(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.StartDate.Equal(date(2024, 3, 1)) || !got.EndDate.Equal(date(2024, 3, 2)) {
		t.Fatalf("expected 1-2 March, got %s to %s", got.StartDate, got.EndDate)
	}
	days, err := TotalDays(in.StartDate, in.EndDate, false)
	if err != nil || days != 2 {
		t.Fatalf("expected 2 days, got %v (%v)", days, err)
	}
}
