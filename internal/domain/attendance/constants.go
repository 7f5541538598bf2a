package attendance

const (
	StatusPresent        = "present"
	StatusAbsent         = "absent"
	StatusHalfDay        = "half-day"
	StatusLate           = "late"
	StatusEarlyDeparture = "early-departure"
)

const (
	ApprovalPending  = "pending"
	ApprovalApproved = "approved"
	ApprovalRejected = "rejected"
)

// Day states reported by TodayStatus.
const (
	DayNotCheckedIn = "not-checked-in"
	DayCheckedIn    = "checked-in"
	DayOnBreak      = "on-break"
	DayCheckedOut   = "checked-out"
)

const DefaultBreakReason = "Break"
