package attendance

import (
	"math"
	"time"

	"fieldforce/internal/domain/directory"
)

type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   string  `json:"address,omitempty"`
}

func (l Location) Valid() bool {
	if math.IsNaN(l.Latitude) || math.IsNaN(l.Longitude) {
		return false
	}
	return l.Latitude >= -90 && l.Latitude <= 90 && l.Longitude >= -180 && l.Longitude <= 180
}

type Punch struct {
	Time     time.Time `json:"time"`
	Location Location  `json:"location"`
	Photo    string    `json:"photo,omitempty"`
	Notes    string    `json:"notes,omitempty"`
}

type Break struct {
	Start           Punch   `json:"breakStart"`
	End             *Punch  `json:"breakEnd,omitempty"`
	Reason          string  `json:"reason"`
	DurationMinutes float64 `json:"duration"`
}

func (b Break) Open() bool { return b.End == nil }

type Record struct {
	ID                string    `json:"id"`
	EmployeeID        string    `json:"employeeId"`
	WorkDate          time.Time `json:"date"`
	CheckIn           *Punch    `json:"checkIn,omitempty"`
	CheckOut          *Punch    `json:"checkOut,omitempty"`
	Breaks            []Break   `json:"breaks"`
	TotalHours        float64   `json:"totalHours"`
	TotalBreakMinutes float64   `json:"totalBreakTime"`
	WorkingHours      float64   `json:"workingHours"`
	Status            string    `json:"status"`
	IsLate            bool      `json:"isLate"`
	LateByMinutes     float64   `json:"lateBy"`
	IsEarlyDeparture  bool      `json:"isEarlyDeparture"`
	EarlyByMinutes    float64   `json:"earlyBy"`
	ApprovalStatus    string    `json:"approvalStatus"`
	ApprovedBy        string    `json:"approvedBy,omitempty"`
	ApprovalNotes     string    `json:"approvalNotes,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
	Version           int       `json:"version"`
}

// OpenBreak returns the index of the unclosed break, if any.
func (r Record) OpenBreak() (int, bool) {
	for i := len(r.Breaks) - 1; i >= 0; i-- {
		if r.Breaks[i].Open() {
			return i, true
		}
	}
	return -1, false
}

func (r Record) clone() Record {
	out := r
	out.Breaks = append([]Break(nil), r.Breaks...)
	if r.CheckIn != nil {
		in := *r.CheckIn
		out.CheckIn = &in
	}
	if r.CheckOut != nil {
		o := *r.CheckOut
		out.CheckOut = &o
	}
	return out
}

type PunchInput struct {
	Location Location
	Photo    string
	Notes    string
}

type DayStatus struct {
	Status      string  `json:"status"`
	Record      *Record `json:"record,omitempty"`
	ActiveBreak *Break  `json:"activeBreak,omitempty"`
}

type SummaryCounts struct {
	Present int `json:"present"`
	Absent  int `json:"absent"`
	Late    int `json:"late"`
	OnTime  int `json:"onTime"`
}

type TeamSummary struct {
	Date    time.Time        `json:"date"`
	Records []Record         `json:"records"`
	Absent  []directory.User `json:"absentEmployees"`
	Summary SummaryCounts    `json:"summary"`
}

type HistoryFilter struct {
	From   time.Time
	To     time.Time
	Limit  int
	Offset int
}

type HistoryResult struct {
	Items []Record `json:"items"`
	Total int      `json:"total"`
}
