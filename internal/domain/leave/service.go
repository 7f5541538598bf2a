package leave

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"fieldforce/internal/domain/apperr"
	"fieldforce/internal/domain/auth"
	"fieldforce/internal/domain/directory"
	"fieldforce/internal/domain/notifications"
	"fieldforce/internal/platform/clock"
	"fieldforce/internal/platform/lock"
	"fieldforce/internal/requestctx"
)

const entityType = "leave_request"

type Directory interface {
	Get(ctx context.Context, userID string) (directory.User, error)
	ManagerOf(ctx context.Context, userID string) (string, error)
}

type TxManager interface {
	WithinReadOnly(ctx context.Context, fn func(context.Context) error) error
	WithinReadWrite(ctx context.Context, fn func(context.Context) error) error
}

type Notifier interface {
	Notify(ctx context.Context, evt notifications.Event)
}

type Auditor interface {
	Record(ctx context.Context, actorID, action, entityType, entityID, requestID string, before, after any) error
}

type TransitionCounter interface {
	Transition(name string)
}

type Service struct {
	Store        StoreAPI
	Directory    Directory
	Admins       AdminResolver
	Tx           TxManager
	Locker       lock.Locker
	LockTTL      time.Duration
	Clock        clock.Clock
	Location     *time.Location
	Entitlements map[string]float64
	Notifier     Notifier
	Audit        Auditor
	Metrics      TransitionCounter
	NewID        func() string
	Logger       *slog.Logger
}

func NewService(store StoreAPI, dir Directory, admins AdminResolver) *Service {
	return &Service{
		Store:        store,
		Directory:    dir,
		Admins:       admins,
		LockTTL:      5 * time.Second,
		Clock:        clock.System{},
		Location:     time.UTC,
		Entitlements: DefaultEntitlements,
		NewID:        func() string { return uuid.NewString() },
	}
}

// Apply validates an application, assembles its approval chain and stores it.
func (s *Service) Apply(ctx context.Context, employeeID string, in ApplyInput) (Request, error) {
	in, err := ValidateInput(in)
	if err != nil {
		return Request{}, err
	}
	if in.HandoverTo != "" {
		if _, err := s.Directory.Get(ctx, in.HandoverTo); err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				return Request{}, ErrHandoverNotFound
			}
			return Request{}, err
		}
	}

	managerID, err := s.Directory.ManagerOf(ctx, employeeID)
	if err != nil {
		return Request{}, err
	}
	total, err := TotalDays(in.StartDate, in.EndDate, in.IsHalfDay)
	if err != nil {
		return Request{}, err
	}
	adminID := ""
	if RequiresAdmin(in.LeaveType, total, in.IsUrgent) && s.Admins != nil {
		if adminID, err = s.Admins.ResolveAdmin(ctx, employeeID); err != nil {
			return Request{}, fmt.Errorf("resolve admin approver: %w", err)
		}
	}

	now := s.now()
	r, err := NewRequest(s.NewID(), employeeID, in, BuildHierarchy(employeeID, managerID, adminID, now), now)
	if err != nil {
		return Request{}, err
	}
	if err := CheckHierarchy(r); err != nil {
		return Request{}, err
	}

	if err := s.tx().WithinReadWrite(ctx, func(ctx context.Context) error {
		return s.Store.Create(ctx, r)
	}); err != nil {
		return Request{}, err
	}

	s.record(ctx, employeeID, "leave.apply", r.ID, nil, r)
	s.count("leave.applied")
	if r.Status == StatusApproved {
		s.count("leave.auto_approved")
		s.notify(ctx, notifications.Event{
			Type: notifications.TypeLeaveApproved, UserID: employeeID, EntityID: r.ID,
			Title: "Leave approved", Body: fmt.Sprintf("Your %s leave from %s was approved automatically.", r.LeaveType, r.StartDate.Format(time.DateOnly)),
		})
	} else {
		s.notifyApprover(ctx, r)
	}
	slog.Info("leave applied", "leaveId", r.ID, "employeeId", employeeID, "days", r.TotalDays, "levels", len(r.ApprovalHierarchy))
	return r, nil
}

// Act applies an approve or reject action by the current-level approver.
func (s *Service) Act(ctx context.Context, id, actorID, action, comments string) (Request, error) {
	if action != ActionApprove && action != ActionReject {
		return Request{}, ErrInvalidAction
	}
	before, after, err := s.mutate(ctx, "act", id, func(r Request, now time.Time) (Request, error) {
		return Act(r, action, actorID, comments, now)
	})
	if err != nil {
		return Request{}, err
	}

	s.record(ctx, actorID, "leave."+action, id, before, after)
	switch {
	case after.Status == StatusApproved:
		s.count("leave.approved")
		s.notify(ctx, notifications.Event{
			Type: notifications.TypeLeaveApproved, UserID: after.EmployeeID, EntityID: id,
			Title: "Leave approved", Body: fmt.Sprintf("Your %s leave from %s was approved.", after.LeaveType, after.StartDate.Format(time.DateOnly)),
		})
	case after.Status == StatusRejected:
		s.count("leave.rejected")
		s.notify(ctx, notifications.Event{
			Type: notifications.TypeLeaveRejected, UserID: after.EmployeeID, EntityID: id,
			Title: "Leave rejected", Body: fmt.Sprintf("Your %s leave from %s was rejected: %s", after.LeaveType, after.StartDate.Format(time.DateOnly), comments),
		})
	default:
		s.count("leave.advanced")
		s.notifyApprover(ctx, after)
	}
	return after, nil
}

func (s *Service) Approve(ctx context.Context, id, actorID, comments string) (Request, error) {
	return s.Act(ctx, id, actorID, ActionApprove, comments)
}

func (s *Service) Reject(ctx context.Context, id, actorID, comments string) (Request, error) {
	return s.Act(ctx, id, actorID, ActionReject, comments)
}

// Cancel withdraws the owner's pending request before it starts.
func (s *Service) Cancel(ctx context.Context, id, employeeID, reason string) (Request, error) {
	var approverID string
	before, after, err := s.mutate(ctx, "cancel", id, func(r Request, now time.Time) (Request, error) {
		approverID = r.CurrentApproverID()
		return Cancel(r, employeeID, reason, CivilDate(now, s.location()), now)
	})
	if err != nil {
		return Request{}, err
	}
	s.record(ctx, employeeID, "leave.cancel", id, before, after)
	s.count("leave.cancelled")
	s.notify(ctx, notifications.Event{
		Type: notifications.TypeLeaveCancelled, UserID: approverID, EntityID: id,
		Title: "Leave cancelled", Body: fmt.Sprintf("A %s leave awaiting your approval was cancelled by the applicant.", after.LeaveType),
	})
	return after, nil
}

// AddAttachment records an uploaded file against a pending request.
func (s *Service) AddAttachment(ctx context.Context, id, employeeID, fileName, storageRef string) (Request, error) {
	before, after, err := s.mutate(ctx, "attach", id, func(r Request, now time.Time) (Request, error) {
		return AddAttachment(r, employeeID, Attachment{ID: s.NewID(), FileName: fileName, StorageRef: storageRef, UploadedAt: now})
	})
	if err != nil {
		return Request{}, err
	}
	s.record(ctx, employeeID, "leave.attach", id, before, after)
	return after, nil
}

// Get returns a request visible to its owner, its approvers and admins.
func (s *Service) Get(ctx context.Context, id string, actor auth.UserContext) (Request, error) {
	var r Request
	err := s.tx().WithinReadOnly(ctx, func(ctx context.Context) error {
		var err error
		r, err = s.Store.Get(ctx, id)
		return err
	})
	if err != nil {
		return Request{}, err
	}
	if r.EmployeeID != actor.UserID && !r.InHierarchy(actor.UserID) && actor.RoleName != auth.RoleAdmin {
		return Request{}, ErrForbidden
	}
	return r, nil
}

func (s *Service) ListMine(ctx context.Context, employeeID string, filter ListFilter) (ListResult, error) {
	if filter.Limit <= 0 {
		filter.Limit = 10
	}
	if filter.Status != "" && filter.Status != StatusPending && filter.Status != StatusApproved &&
		filter.Status != StatusRejected && filter.Status != StatusCancelled {
		return ListResult{}, apperr.Validation("invalid_status", "unknown leave status filter")
	}
	return s.Store.ListByEmployee(ctx, employeeID, filter)
}

// ListPendingApprovalsFor returns only the requests approverID can act on now.
func (s *Service) ListPendingApprovalsFor(ctx context.Context, approverID string) ([]Request, error) {
	rows, err := s.Store.ListPendingForApprover(ctx, approverID)
	if err != nil {
		return nil, err
	}
	out := make([]Request, 0, len(rows))
	for _, r := range rows {
		if r.CurrentApproverID() == approverID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *Service) ComputeBalance(ctx context.Context, employeeID string, year int) ([]Balance, error) {
	if year == 0 {
		year = s.now().In(s.location()).Year()
	}
	approved, err := s.Store.ListApprovedInYear(ctx, employeeID, year)
	if err != nil {
		return nil, err
	}
	return ComputeBalance(s.Entitlements, approved, year), nil
}

// Statement renders the balance ledger as a PDF.
func (s *Service) Statement(ctx context.Context, employeeID string, year int) ([]byte, error) {
	if year == 0 {
		year = s.now().In(s.location()).Year()
	}
	user, err := s.Directory.Get(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	balances, err := s.ComputeBalance(ctx, employeeID, year)
	if err != nil {
		return nil, err
	}
	return RenderStatement(user.Name, year, balances, s.now().In(s.location()))
}

// TeamCalendar lists approved leave overlapping the given month.
func (s *Service) TeamCalendar(ctx context.Context, actor auth.UserContext, month time.Month, year int) ([]Request, error) {
	if !actor.IsSupervisor() {
		return nil, ErrForbidden
	}
	if month < time.January || month > time.December || year < 1970 {
		return nil, apperr.Validation("invalid_month", "month must be 1-12 and year a valid calendar year")
	}
	from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, -1)
	return s.Store.ListApprovedOverlapping(ctx, from, to)
}

// mutate serialises a read-modify-write on one request. The optional lock
// keeps concurrent actors from queueing on the row; the version check in
// Update is what guarantees no lost update.
func (s *Service) mutate(ctx context.Context, op, id string, fn func(Request, time.Time) (Request, error)) (Request, Request, error) {
	var before, after Request
	err := lock.Guard(ctx, s.Locker, "leave:"+id, s.LockTTL, func(ctx context.Context) error {
		return s.tx().WithinReadWrite(ctx, func(ctx context.Context) error {
			current, err := s.Store.Get(ctx, id)
			if err != nil {
				return err
			}
			next, err := fn(current, s.now())
			if err != nil {
				return err
			}
			if err := CheckHierarchy(next); err != nil {
				return err
			}
			saved, err := s.Store.Update(ctx, next, current.Version)
			if err != nil {
				return err
			}
			before, after = current, saved
			return nil
		})
	})
	if errors.Is(err, lock.ErrNotAcquired) {
		err = ErrConcurrentUpdate
	}
	if err != nil {
		s.logFailure(ctx, op, err, "leaveId", id)
		return Request{}, Request{}, err
	}
	return before, after, nil
}

func (s *Service) logFailure(ctx context.Context, op string, err error, args ...any) {
	level := slog.LevelWarn
	kind := apperr.Kind(err)
	if kind == "unexpected" {
		level = slog.LevelError
	}
	s.logger().With("operation", op, "kind", kind).Log(ctx, level, "leave transition failed", append(args, "err", err)...)
}

func (s *Service) logger() *slog.Logger {
	l := s.Logger
	if l == nil {
		l = slog.Default()
	}
	return l.With("service", "leave")
}

func (s *Service) notifyApprover(ctx context.Context, r Request) {
	approverID := r.CurrentApproverID()
	if approverID == "" {
		return
	}
	s.notify(ctx, notifications.Event{
		Type: notifications.TypeApprovalRequested, UserID: approverID, EntityID: r.ID,
		Title: "Leave awaiting your approval",
		Body:  fmt.Sprintf("A %s leave request for %.1f day(s) from %s needs your decision.", r.LeaveType, r.TotalDays, r.StartDate.Format(time.DateOnly)),
	})
}

func (s *Service) notify(ctx context.Context, evt notifications.Event) {
	if s.Notifier == nil {
		return
	}
	s.Notifier.Notify(ctx, evt)
}

func (s *Service) record(ctx context.Context, actorID, action, id string, before, after any) {
	if s.Audit == nil {
		return
	}
	if err := s.Audit.Record(ctx, actorID, action, entityType, id, requestctx.GetRequestID(ctx), before, after); err != nil {
		slog.Warn("audit leave transition failed", "action", action, "leaveId", id, "err", err)
	}
}

func (s *Service) count(name string) {
	if s.Metrics != nil {
		s.Metrics.Transition(name)
	}
}

func (s *Service) tx() TxManager {
	if s.Tx == nil {
		return noTx{}
	}
	return s.Tx
}

func (s *Service) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now()
}

func (s *Service) location() *time.Location {
	if s.Location == nil {
		return time.UTC
	}
	return s.Location
}

type noTx struct{}

func (noTx) WithinReadOnly(ctx context.Context, fn func(context.Context) error) error { return fn(ctx) }
func (noTx) WithinReadWrite(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}
