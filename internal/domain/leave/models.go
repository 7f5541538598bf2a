package leave

import "time"

type Attachment struct {
	ID         string    `json:"id"`
	FileName   string    `json:"fileName"`
	StorageRef string    `json:"storageRef"`
	UploadedAt time.Time `json:"uploadedAt"`
}

type EmergencyContact struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Relation string `json:"relation"`
}

type ApprovalStep struct {
	ApproverID string     `json:"approverId"`
	Level      int        `json:"level"`
	Status     string     `json:"status"`
	Comments   string     `json:"comments,omitempty"`
	ActionAt   *time.Time `json:"actionAt,omitempty"`
}

type Request struct {
	ID                   string            `json:"id"`
	EmployeeID           string            `json:"employeeId"`
	LeaveType            string            `json:"leaveType"`
	StartDate            time.Time         `json:"startDate"`
	EndDate              time.Time         `json:"endDate"`
	IsHalfDay            bool              `json:"isHalfDay"`
	HalfDayType          string            `json:"halfDayType,omitempty"`
	TotalDays            float64           `json:"totalDays"`
	Reason               string            `json:"reason"`
	Attachments          []Attachment      `json:"attachments"`
	ApprovalHierarchy    []ApprovalStep    `json:"approvalHierarchy"`
	CurrentApprovalLevel int               `json:"currentApprovalLevel"`
	Status               string            `json:"status"`
	FinalApproverID      string            `json:"finalApproverId,omitempty"`
	FinalApprovalAt      *time.Time        `json:"finalApprovalAt,omitempty"`
	FinalComments        string            `json:"finalComments,omitempty"`
	EmergencyContact     *EmergencyContact `json:"emergencyContact,omitempty"`
	HandoverTo           string            `json:"handoverTo,omitempty"`
	HandoverNotes        string            `json:"handoverNotes,omitempty"`
	IsUrgent             bool              `json:"isUrgent"`
	AppliedAt            time.Time         `json:"appliedAt"`
	UpdatedAt            time.Time         `json:"updatedAt"`
	Version              int               `json:"version"`
}

// CurrentStep returns the step awaiting action, if any.
func (r Request) CurrentStep() (ApprovalStep, bool) {
	for _, step := range r.ApprovalHierarchy {
		if step.Level == r.CurrentApprovalLevel {
			return step, true
		}
	}
	return ApprovalStep{}, false
}

// CurrentApproverID is empty unless the request is pending.
func (r Request) CurrentApproverID() string {
	if r.Status != StatusPending {
		return ""
	}
	step, ok := r.CurrentStep()
	if !ok {
		return ""
	}
	return step.ApproverID
}

// InHierarchy reports whether userID appears anywhere in the approval chain.
func (r Request) InHierarchy(userID string) bool {
	for _, step := range r.ApprovalHierarchy {
		if step.ApproverID == userID {
			return true
		}
	}
	return false
}

func (r Request) clone() Request {
	out := r
	out.Attachments = append([]Attachment(nil), r.Attachments...)
	out.ApprovalHierarchy = append([]ApprovalStep(nil), r.ApprovalHierarchy...)
	if r.EmergencyContact != nil {
		contact := *r.EmergencyContact
		out.EmergencyContact = &contact
	}
	return out
}

type ApplyInput struct {
	LeaveType        string
	StartDate        time.Time
	EndDate          time.Time
	IsHalfDay        bool
	HalfDayType      string
	Reason           string
	EmergencyContact *EmergencyContact
	HandoverTo       string
	HandoverNotes    string
	IsUrgent         bool
}

type Balance struct {
	LeaveType string  `json:"leaveType"`
	Entitled  float64 `json:"entitled"`
	Used      float64 `json:"used"`
	Remaining float64 `json:"remaining"`
}

type ListFilter struct {
	Status string
	Limit  int
	Offset int
}

type ListResult struct {
	Items []Request `json:"items"`
	Total int       `json:"total"`
}
