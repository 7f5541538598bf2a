package leave

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"fieldforce/internal/platform/db"
)

type Store struct {
	DB db.Queryer
}

func NewStore(conn db.Queryer) *Store {
	return &Store{DB: conn}
}

const requestColumns = `id, employee_id, leave_type, start_date, end_date, is_half_day, half_day_type,
  total_days, reason, attachments, approval_hierarchy, current_approval_level, status,
  COALESCE(final_approver_id::text, ''), final_approval_at, final_comments, emergency_contact,
  COALESCE(handover_to::text, ''), handover_notes, is_urgent, applied_at, updated_at, version`

func (s *Store) Create(ctx context.Context, r Request) error {
	attachments, hierarchy, contact, err := encodeDocuments(r)
	if err != nil {
		return err
	}
	q := db.QueryerFromContext(ctx, s.DB)
	_, err = q.Exec(ctx, `
    INSERT INTO leave_requests (id, employee_id, leave_type, start_date, end_date, is_half_day, half_day_type,
      total_days, reason, attachments, approval_hierarchy, current_approval_level, current_approver_id, status,
      final_approver_id, final_approval_at, final_comments, emergency_contact, handover_to, handover_notes,
      is_urgent, applied_at, updated_at, version)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24)
  `, r.ID, r.EmployeeID, r.LeaveType, r.StartDate, r.EndDate, r.IsHalfDay, r.HalfDayType,
		r.TotalDays, r.Reason, attachments, hierarchy, r.CurrentApprovalLevel, nullIfEmpty(r.CurrentApproverID()), r.Status,
		nullIfEmpty(r.FinalApproverID), r.FinalApprovalAt, r.FinalComments, contact, nullIfEmpty(r.HandoverTo), r.HandoverNotes,
		r.IsUrgent, r.AppliedAt, r.UpdatedAt, r.Version)
	if err != nil {
		return fmt.Errorf("leave store: create: %w", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id string) (Request, error) {
	q := db.QueryerFromContext(ctx, s.DB)
	r, err := scanRequest(q.QueryRow(ctx, "SELECT "+requestColumns+" FROM leave_requests WHERE id = $1", id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Request{}, ErrRequestNotFound
	}
	if err != nil {
		return Request{}, fmt.Errorf("leave store: get: %w", err)
	}
	return r, nil
}

func (s *Store) Update(ctx context.Context, r Request, expectedVersion int) (Request, error) {
	attachments, hierarchy, _, err := encodeDocuments(r)
	if err != nil {
		return Request{}, err
	}
	q := db.QueryerFromContext(ctx, s.DB)
	tag, err := q.Exec(ctx, `
    UPDATE leave_requests
    SET status = $2, approval_hierarchy = $3, current_approval_level = $4, current_approver_id = $5,
        final_approver_id = $6, final_approval_at = $7, final_comments = $8, attachments = $9,
        updated_at = $10, version = version + 1
    WHERE id = $1 AND version = $11
  `, r.ID, r.Status, hierarchy, r.CurrentApprovalLevel, nullIfEmpty(r.CurrentApproverID()),
		nullIfEmpty(r.FinalApproverID), r.FinalApprovalAt, r.FinalComments, attachments,
		r.UpdatedAt, expectedVersion)
	if err != nil {
		return Request{}, fmt.Errorf("leave store: update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return Request{}, ErrConcurrentUpdate
	}
	r.Version = expectedVersion + 1
	return r, nil
}

func (s *Store) ListByEmployee(ctx context.Context, employeeID string, filter ListFilter) (ListResult, error) {
	q := db.QueryerFromContext(ctx, s.DB)
	where := "WHERE employee_id = $1"
	args := []any{employeeID}
	if filter.Status != "" {
		where += " AND status = $2"
		args = append(args, filter.Status)
	}

	var total int
	if err := q.QueryRow(ctx, "SELECT COUNT(1) FROM leave_requests "+where, args...).Scan(&total); err != nil {
		return ListResult{}, fmt.Errorf("leave store: count: %w", err)
	}

	query := fmt.Sprintf("SELECT %s FROM leave_requests %s ORDER BY applied_at DESC LIMIT $%d OFFSET $%d",
		requestColumns, where, len(args)+1, len(args)+2)
	args = append(args, filter.Limit, filter.Offset)
	items, err := s.list(ctx, q, query, args...)
	if err != nil {
		return ListResult{}, err
	}
	return ListResult{Items: items, Total: total}, nil
}

func (s *Store) ListPendingForApprover(ctx context.Context, approverID string) ([]Request, error) {
	q := db.QueryerFromContext(ctx, s.DB)
	return s.list(ctx, q, "SELECT "+requestColumns+`
    FROM leave_requests
    WHERE status = 'pending' AND current_approver_id = $1
    ORDER BY applied_at`, approverID)
}

func (s *Store) ListApprovedInYear(ctx context.Context, employeeID string, year int) ([]Request, error) {
	q := db.QueryerFromContext(ctx, s.DB)
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
	return s.list(ctx, q, "SELECT "+requestColumns+`
    FROM leave_requests
    WHERE employee_id = $1 AND status = 'approved' AND start_date BETWEEN $2 AND $3`, employeeID, from, to)
}

func (s *Store) ListApprovedOverlapping(ctx context.Context, from, to time.Time) ([]Request, error) {
	q := db.QueryerFromContext(ctx, s.DB)
	return s.list(ctx, q, "SELECT "+requestColumns+`
    FROM leave_requests
    WHERE status = 'approved' AND start_date <= $2 AND end_date >= $1
    ORDER BY start_date`, from, to)
}

func (s *Store) list(ctx context.Context, q db.Queryer, query string, args ...any) ([]Request, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("leave store: list: %w", err)
	}
	defer rows.Close()

	out := []Request{}
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("leave store: scan: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func scanRequest(row pgx.Row) (Request, error) {
	var r Request
	var attachments, hierarchy, contact []byte
	if err := row.Scan(&r.ID, &r.EmployeeID, &r.LeaveType, &r.StartDate, &r.EndDate, &r.IsHalfDay, &r.HalfDayType,
		&r.TotalDays, &r.Reason, &attachments, &hierarchy, &r.CurrentApprovalLevel, &r.Status,
		&r.FinalApproverID, &r.FinalApprovalAt, &r.FinalComments, &contact,
		&r.HandoverTo, &r.HandoverNotes, &r.IsUrgent, &r.AppliedAt, &r.UpdatedAt, &r.Version); err != nil {
		return Request{}, err
	}
	r.Attachments = []Attachment{}
	if len(attachments) > 0 {
		if err := json.Unmarshal(attachments, &r.Attachments); err != nil {
			return Request{}, err
		}
	}
	if len(hierarchy) > 0 {
		if err := json.Unmarshal(hierarchy, &r.ApprovalHierarchy); err != nil {
			return Request{}, err
		}
	}
	if len(contact) > 0 && string(contact) != "null" {
		r.EmergencyContact = &EmergencyContact{}
		if err := json.Unmarshal(contact, r.EmergencyContact); err != nil {
			return Request{}, err
		}
	}
	return r, nil
}

func encodeDocuments(r Request) (attachments, hierarchy, contact []byte, err error) {
	if r.Attachments == nil {
		r.Attachments = []Attachment{}
	}
	if attachments, err = json.Marshal(r.Attachments); err != nil {
		return nil, nil, nil, err
	}
	if hierarchy, err = json.Marshal(r.ApprovalHierarchy); err != nil {
		return nil, nil, nil, err
	}
	if r.EmergencyContact != nil {
		if contact, err = json.Marshal(r.EmergencyContact); err != nil {
			return nil, nil, nil, err
		}
	}
	return attachments, hierarchy, contact, nil
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}
