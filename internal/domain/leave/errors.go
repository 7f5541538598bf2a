package leave

import "fieldforce/internal/domain/apperr"

var (
	ErrInvalidLeaveType   = apperr.Validation("invalid_leave_type", "leave type is not recognised")
	ErrReasonRequired     = apperr.Validation("reason_required", "reason is required")
	ErrDatesRequired      = apperr.Validation("dates_required", "start and end dates are required")
	ErrInvalidDateRange   = apperr.Validation("invalid_date_range", "end date must not be before start date")
	ErrInvalidHalfDayType = apperr.Validation("invalid_half_day_type", "half day type must be first-half or second-half")
	ErrInvalidAction      = apperr.Validation("invalid_action", "action must be approve or reject")
	ErrCancelWindowClosed = apperr.Validation("cancel_window_closed", "leave can only be cancelled before its start date")
	ErrTooManyAttachments = apperr.Validation("too_many_attachments", "a leave request holds at most 5 attachments")
	ErrAttachmentInvalid  = apperr.Validation("attachment_invalid", "attachment file name and reference are required")
	ErrHandoverNotFound   = apperr.Validation("handover_not_found", "handover employee does not exist")

	ErrNotPending       = apperr.Conflict("leave_not_pending", "leave request is no longer pending")
	ErrAlreadyActed     = apperr.Conflict("already_acted", "you have already acted on this request")
	ErrConcurrentUpdate = apperr.Conflict("concurrent_update", "leave request was modified concurrently")

	ErrNotCurrentApprover = apperr.Unauthorized("not_current_approver", "you are not the current approver for this request")
	ErrNotOwner           = apperr.Unauthorized("not_owner", "only the applicant may do this")
	ErrForbidden          = apperr.Unauthorized("forbidden", "not allowed to view this leave")

	ErrRequestNotFound = apperr.NotFound("leave_not_found", "leave request not found")
)
