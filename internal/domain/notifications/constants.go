package notifications

const (
	TypeLeaveSubmitted     = "leave_submitted"
	TypeApprovalRequested  = "leave_approval_requested"
	TypeLeaveApproved      = "leave_approved"
	TypeLeaveRejected      = "leave_rejected"
	TypeLeaveCancelled     = "leave_cancelled"
	TypeAttendanceReviewed = "attendance_reviewed"
)
