package attendance

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

const entityType = "attendance_record"

type Directory interface {
	ActiveEmployees(ctx context.Context, role string) ([]directory.User, error)
	UpdatePresence(ctx context.Context, userID string, p directory.Presence) error
}

type TxManager interface {
	WithinReadOnly(ctx context.Context, fn func(context.Context) error) error
	WithinReadWrite(ctx context.Context, fn func(context.Context) error) error
}

type Auditor interface {
	Record(ctx context.Context, actorID, action, entityType, entityID, requestID string, before, after any) error
}

type Notifier interface {
	Notify(ctx context.Context, evt notifications.Event)
}

type TransitionCounter interface {
	Transition(name string)
}

type Service struct {
	Store     StoreAPI
	Directory Directory
	Tx        TxManager
	Locker    lock.Locker
	LockTTL   time.Duration
	Clock     clock.Clock
	Policy    ShiftPolicy
	Audit     Auditor
	Notifier  Notifier
	Metrics   TransitionCounter
	NewID     func() string
	Logger    *slog.Logger
}

func NewService(store StoreAPI, dir Directory, policy ShiftPolicy) *Service {
	return &Service{
		Store:     store,
		Directory: dir,
		LockTTL:   5 * time.Second,
		Clock:     clock.System{},
		Policy:    policy,
		NewID:     func() string { return uuid.NewString() },
	}
}

// CheckIn opens today's record. The check-in time is the server clock.
func (s *Service) CheckIn(ctx context.Context, employeeID string, in PunchInput) (Record, error) {
	now := s.now()
	workDate := s.Policy.WorkDate(now)

	var saved Record
	err := s.guard(ctx, "checkin", employeeID, workDate, func(ctx context.Context) error {
		existing, err := s.today(ctx, employeeID, workDate)
		if err != nil {
			return err
		}
		next, err := CheckIn(existing, s.NewID(), employeeID, in, now, s.Policy)
		if err != nil {
			return err
		}
		if existing == nil {
			saved, err = s.Store.Create(ctx, next)
			return err
		}
		saved, err = s.Store.Update(ctx, next, existing.Version)
		return err
	})
	if errors.Is(err, ErrAlreadyCheckedIn) {
		var checked *CheckedInError
		if !errors.As(err, &checked) {
			// lost the insert race; report the winner's time
			if current, getErr := s.Store.GetByEmployeeDate(ctx, employeeID, workDate); getErr == nil && current.CheckIn != nil {
				return Record{}, &CheckedInError{At: current.CheckIn.Time}
			}
		}
		return Record{}, err
	}
	if err != nil {
		return Record{}, err
	}

	s.presence(ctx, employeeID, in.Location, true, now)
	s.record(ctx, employeeID, "attendance.checkin", saved.ID, nil, saved)
	s.count("attendance.checkin")
	if saved.IsLate {
		s.count("attendance.late")
	}
	return saved, nil
}

func (s *Service) CheckOut(ctx context.Context, employeeID string, in PunchInput) (Record, error) {
	now := s.now()
	before, after, err := s.mutateToday(ctx, "checkout", employeeID, now, func(r *Record) (Record, error) {
		return CheckOut(r, in, now, s.Policy)
	})
	if err != nil {
		return Record{}, err
	}
	s.presence(ctx, employeeID, in.Location, false, now)
	s.record(ctx, employeeID, "attendance.checkout", after.ID, before, after)
	s.count("attendance.checkout")
	s.count("attendance.status." + after.Status)
	return after, nil
}

func (s *Service) StartBreak(ctx context.Context, employeeID string, in PunchInput, reason string) (Record, error) {
	now := s.now()
	before, after, err := s.mutateToday(ctx, "break_start", employeeID, now, func(r *Record) (Record, error) {
		return StartBreak(r, in, reason, now)
	})
	if err != nil {
		return Record{}, err
	}
	s.record(ctx, employeeID, "attendance.break_start", after.ID, before, after)
	s.count("attendance.break_start")
	return after, nil
}

func (s *Service) EndBreak(ctx context.Context, employeeID string, in PunchInput) (Record, error) {
	now := s.now()
	before, after, err := s.mutateToday(ctx, "break_end", employeeID, now, func(r *Record) (Record, error) {
		return EndBreak(r, in, now)
	})
	if err != nil {
		return Record{}, err
	}
	s.record(ctx, employeeID, "attendance.break_end", after.ID, before, after)
	s.count("attendance.break_end")
	return after, nil
}

func (s *Service) TodayStatus(ctx context.Context, employeeID string) (DayStatus, error) {
	var existing *Record
	err := s.tx().WithinReadOnly(ctx, func(ctx context.Context) error {
		var err error
		existing, err = s.today(ctx, employeeID, s.Policy.WorkDate(s.now()))
		return err
	})
	if err != nil {
		return DayStatus{}, err
	}
	return DayState(existing), nil
}

func (s *Service) History(ctx context.Context, employeeID string, filter HistoryFilter) (HistoryResult, error) {
	if !filter.From.IsZero() && !filter.To.IsZero() && filter.From.After(filter.To) {
		return HistoryResult{}, ErrInvalidRange
	}
	if filter.Limit <= 0 {
		filter.Limit = 30
	}
	return s.Store.History(ctx, employeeID, filter)
}

// TeamSummary reports the day's attendance against active employees.
// statusFilter narrows the returned records but never the counts.
func (s *Service) TeamSummary(ctx context.Context, actor auth.UserContext, date time.Time, statusFilter string) (TeamSummary, error) {
	if !actor.IsSupervisor() {
		return TeamSummary{}, ErrNotSupervisor
	}
	if date.IsZero() {
		date = s.Policy.WorkDate(s.now())
	} else {
		y, m, d := date.Date()
		date = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}

	records, err := s.Store.ListByDate(ctx, date)
	if err != nil {
		return TeamSummary{}, err
	}
	roster, err := s.Directory.ActiveEmployees(ctx, auth.RoleEmployee)
	if err != nil {
		return TeamSummary{}, err
	}
	summary := Summarise(date, records, roster)
	if statusFilter != "" {
		filtered := []Record{}
		for _, r := range summary.Records {
			if r.Status == statusFilter {
				filtered = append(filtered, r)
			}
		}
		summary.Records = filtered
	}
	return summary, nil
}

// ReviewRecord stores a supervisor's sign-off on any record.
func (s *Service) ReviewRecord(ctx context.Context, actor auth.UserContext, recordID, decision, notes string) (Record, error) {
	if !actor.IsSupervisor() {
		return Record{}, ErrNotSupervisor
	}
	var before, after Record
	err := lock.Guard(ctx, s.Locker, "attendance:"+recordID, s.LockTTL, func(ctx context.Context) error {
		return s.tx().WithinReadWrite(ctx, func(ctx context.Context) error {
			current, err := s.Store.Get(ctx, recordID)
			if err != nil {
				return err
			}
			next, err := Review(current, actor.UserID, decision, notes, s.now())
			if err != nil {
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
		return Record{}, ErrConcurrentUpdate
	}
	if err != nil {
		return Record{}, err
	}
	s.record(ctx, actor.UserID, "attendance.review", recordID, before, after)
	s.count("attendance.review." + decision)
	if s.Notifier != nil {
		s.Notifier.Notify(ctx, notifications.Event{
			Type: notifications.TypeAttendanceReviewed, UserID: after.EmployeeID, EntityID: recordID,
			Title: "Attendance reviewed",
			Body:  fmt.Sprintf("Your attendance for %s was %s.", after.WorkDate.Format(time.DateOnly), decision),
		})
	}
	return after, nil
}

func (s *Service) mutateToday(ctx context.Context, op, employeeID string, now time.Time, fn func(*Record) (Record, error)) (Record, Record, error) {
	workDate := s.Policy.WorkDate(now)
	var before, after Record
	err := s.guard(ctx, op, employeeID, workDate, func(ctx context.Context) error {
		existing, err := s.today(ctx, employeeID, workDate)
		if err != nil {
			return err
		}
		next, err := fn(existing)
		if err != nil {
			return err
		}
		saved, err := s.Store.Update(ctx, next, existing.Version)
		if err != nil {
			return err
		}
		before, after = *existing, saved
		return nil
	})
	if err != nil {
		return Record{}, Record{}, err
	}
	return before, after, nil
}

// guard serialises work on one (employee, date) record.
func (s *Service) guard(ctx context.Context, op, employeeID string, workDate time.Time, fn func(context.Context) error) error {
	key := "attendance:" + employeeID + ":" + workDate.Format(time.DateOnly)
	err := lock.Guard(ctx, s.Locker, key, s.LockTTL, func(ctx context.Context) error {
		return s.tx().WithinReadWrite(ctx, fn)
	})
	if errors.Is(err, lock.ErrNotAcquired) {
		err = ErrConcurrentUpdate
	}
	if err != nil {
		level := slog.LevelWarn
		kind := apperr.Kind(err)
		if kind == "unexpected" {
			level = slog.LevelError
		}
		s.logger().With("operation", op, "kind", kind).Log(ctx, level, "attendance transition failed",
			"employeeId", employeeID, "workDate", workDate.Format(time.DateOnly), "err", err)
	}
	return err
}

func (s *Service) logger() *slog.Logger {
	l := s.Logger
	if l == nil {
		l = slog.Default()
	}
	return l.With("service", "attendance")
}

func (s *Service) today(ctx context.Context, employeeID string, workDate time.Time) (*Record, error) {
	r, err := s.Store.GetByEmployeeDate(ctx, employeeID, workDate)
	if errors.Is(err, ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *Service) presence(ctx context.Context, employeeID string, loc Location, online bool, now time.Time) {
	if s.Directory == nil {
		return
	}
	err := s.Directory.UpdatePresence(ctx, employeeID, directory.Presence{
		Location:  directory.Location{Latitude: loc.Latitude, Longitude: loc.Longitude, Address: loc.Address},
		IsOnline:  online,
		UpdatedAt: now,
	})
	if err != nil {
		slog.Warn("presence update failed", "employeeId", employeeID, "err", err)
	}
}

func (s *Service) record(ctx context.Context, actorID, action, id string, before, after any) {
	if s.Audit == nil {
		return
	}
	if err := s.Audit.Record(ctx, actorID, action, entityType, id, requestctx.GetRequestID(ctx), before, after); err != nil {
		slog.Warn("audit attendance transition failed", "action", action, "recordId", id, "err", err)
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

type noTx struct{}

func (noTx) WithinReadOnly(ctx context.Context, fn func(context.Context) error) error { return fn(ctx) }
func (noTx) WithinReadWrite(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}
