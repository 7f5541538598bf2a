package leave

import (
	"fmt"
	"time"
)

// BuildHierarchy assembles the approval chain for an application. An empty
// chain becomes a single step approved by the applicant.
func BuildHierarchy(employeeID, managerID, adminID string, now time.Time) []ApprovalStep {
	var steps []ApprovalStep
	if managerID != "" && managerID != employeeID {
		steps = append(steps, ApprovalStep{ApproverID: managerID, Level: 1, Status: StatusPending})
	}
	if adminID != "" && adminID != employeeID && adminID != managerID {
		steps = append(steps, ApprovalStep{ApproverID: adminID, Level: len(steps) + 1, Status: StatusPending})
	}
	if len(steps) == 0 {
		at := now
		steps = append(steps, ApprovalStep{
			ApproverID: employeeID,
			Level:      1,
			Status:     StatusApproved,
			Comments:   AutoApprovedComment,
			ActionAt:   &at,
		})
	}
	return steps
}

// NewRequest builds a fresh request from validated input and its chain.
func NewRequest(id, employeeID string, in ApplyInput, hierarchy []ApprovalStep, now time.Time) (Request, error) {
	total, err := TotalDays(in.StartDate, in.EndDate, in.IsHalfDay)
	if err != nil {
		return Request{}, err
	}
	r := Request{
		ID:                   id,
		EmployeeID:           employeeID,
		LeaveType:            in.LeaveType,
		StartDate:            in.StartDate,
		EndDate:              in.EndDate,
		IsHalfDay:            in.IsHalfDay,
		HalfDayType:          in.HalfDayType,
		TotalDays:            total,
		Reason:               in.Reason,
		Attachments:          []Attachment{},
		ApprovalHierarchy:    hierarchy,
		CurrentApprovalLevel: 1,
		Status:               StatusPending,
		EmergencyContact:     in.EmergencyContact,
		HandoverTo:           in.HandoverTo,
		HandoverNotes:        in.HandoverNotes,
		IsUrgent:             in.IsUrgent,
		AppliedAt:            now,
		UpdatedAt:            now,
		Version:              1,
	}
	if len(hierarchy) == 1 && hierarchy[0].Status == StatusApproved {
		at := now
		r.Status = StatusApproved
		r.FinalApproverID = employeeID
		r.FinalApprovalAt = &at
		r.FinalComments = AutoApprovedComment
	}
	return r, nil
}

// Approve records the current approver's approval and either advances to the
// next level or finalises the request.
func Approve(r Request, actorID, comments string, now time.Time) (Request, error) {
	idx, err := actionableStep(r, actorID)
	if err != nil {
		return r, err
	}
	next := r.clone()
	at := now
	next.ApprovalHierarchy[idx].Status = StatusApproved
	next.ApprovalHierarchy[idx].Comments = comments
	next.ApprovalHierarchy[idx].ActionAt = &at
	next.UpdatedAt = now

	if idx+1 < len(next.ApprovalHierarchy) {
		next.CurrentApprovalLevel = next.ApprovalHierarchy[idx+1].Level
		return next, nil
	}
	next.Status = StatusApproved
	next.FinalApproverID = actorID
	next.FinalApprovalAt = &at
	next.FinalComments = comments
	return next, nil
}

// Reject halts the chain at the current level.
func Reject(r Request, actorID, comments string, now time.Time) (Request, error) {
	idx, err := actionableStep(r, actorID)
	if err != nil {
		return r, err
	}
	next := r.clone()
	at := now
	next.ApprovalHierarchy[idx].Status = StatusRejected
	next.ApprovalHierarchy[idx].Comments = comments
	next.ApprovalHierarchy[idx].ActionAt = &at
	next.Status = StatusRejected
	next.FinalApproverID = actorID
	next.FinalApprovalAt = &at
	next.FinalComments = comments
	next.UpdatedAt = now
	return next, nil
}

// Act dispatches an approve or reject action.
func Act(r Request, action, actorID, comments string, now time.Time) (Request, error) {
	switch action {
	case ActionApprove:
		return Approve(r, actorID, comments, now)
	case ActionReject:
		return Reject(r, actorID, comments, now)
	default:
		return r, ErrInvalidAction
	}
}

// Cancel withdraws a pending request. today is the caller's civil date; the
// leave must start strictly after it. The chain is left untouched.
func Cancel(r Request, actorID, reason string, today, now time.Time) (Request, error) {
	if r.EmployeeID != actorID {
		return r, ErrNotOwner
	}
	if !r.StartDate.After(CivilDate(today, time.UTC)) {
		return r, ErrCancelWindowClosed
	}
	if r.Status != StatusPending {
		return r, ErrNotPending
	}
	next := r.clone()
	at := now
	next.Status = StatusCancelled
	next.FinalComments = reason
	next.FinalApprovalAt = &at
	next.UpdatedAt = now
	return next, nil
}

// AddAttachment appends a file reference while the request is pending.
func AddAttachment(r Request, actorID string, att Attachment) (Request, error) {
	if r.EmployeeID != actorID {
		return r, ErrNotOwner
	}
	if r.Status != StatusPending {
		return r, ErrNotPending
	}
	if att.FileName == "" || att.StorageRef == "" {
		return r, ErrAttachmentInvalid
	}
	if len(r.Attachments) >= MaxAttachments {
		return r, ErrTooManyAttachments
	}
	next := r.clone()
	next.Attachments = append(next.Attachments, att)
	next.UpdatedAt = att.UploadedAt
	return next, nil
}

// CheckHierarchy verifies the chain shape for the request's status.
func CheckHierarchy(r Request) error {
	if len(r.ApprovalHierarchy) == 0 {
		return fmt.Errorf("leave %s: empty approval hierarchy", r.ID)
	}
	for i, step := range r.ApprovalHierarchy {
		if step.Level != i+1 {
			return fmt.Errorf("leave %s: level %d at position %d", r.ID, step.Level, i)
		}
	}
	if r.Status != StatusPending {
		return nil
	}
	for _, step := range r.ApprovalHierarchy {
		switch {
		case step.Level < r.CurrentApprovalLevel && step.Status != StatusApproved:
			return fmt.Errorf("leave %s: level %d below current is %s", r.ID, step.Level, step.Status)
		case step.Level >= r.CurrentApprovalLevel && step.Status != StatusPending:
			return fmt.Errorf("leave %s: level %d at or above current is %s", r.ID, step.Level, step.Status)
		}
	}
	if _, ok := r.CurrentStep(); !ok {
		return fmt.Errorf("leave %s: current level %d out of range", r.ID, r.CurrentApprovalLevel)
	}
	return nil
}

func actionableStep(r Request, actorID string) (int, error) {
	if r.Status != StatusPending {
		return -1, ErrNotPending
	}
	for i, step := range r.ApprovalHierarchy {
		if step.Level < r.CurrentApprovalLevel && step.ApproverID == actorID && step.Status != StatusPending {
			return -1, ErrAlreadyActed
		}
		if step.Level != r.CurrentApprovalLevel {
			continue
		}
		if step.ApproverID != actorID || step.Status != StatusPending {
			return -1, ErrNotCurrentApprover
		}
		return i, nil
	}
	return -1, ErrNotCurrentApprover
}
