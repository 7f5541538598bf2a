package leave

const (
	TypeSick      = "sick"
	TypeCasual    = "casual"
	TypeAnnual    = "annual"
	TypeMaternity = "maternity"
	TypePaternity = "paternity"
	TypeEmergency = "emergency"
	TypeUnpaid    = "unpaid"
)

// Types lists leave types in display order.
var Types = []string{TypeCasual, TypeSick, TypeAnnual, TypeMaternity, TypePaternity, TypeEmergency, TypeUnpaid}

const (
	StatusPending   = "pending"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
	StatusCancelled = "cancelled"
)

const (
	HalfDayFirst  = "first-half"
	HalfDaySecond = "second-half"
)

const (
	ActionApprove = "approve"
	ActionReject  = "reject"
)

const (
	// AdminEscalationDays is the longest leave a manager may approve alone.
	AdminEscalationDays = 3
	MaxAttachments      = 5
	AutoApprovedComment = "auto-approved"
)

// DefaultEntitlements is the yearly allowance per leave type.
var DefaultEntitlements = map[string]float64{
	TypeCasual:    12,
	TypeSick:      12,
	TypeAnnual:    21,
	TypeMaternity: 180,
	TypePaternity: 15,
	TypeEmergency: 5,
	TypeUnpaid:    365,
}

func IsValidType(leaveType string) bool {
	_, ok := DefaultEntitlements[leaveType]
	return ok
}
