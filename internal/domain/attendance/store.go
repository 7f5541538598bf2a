package attendance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"fieldforce/internal/platform/db"
)

const uniqueViolation = "23505"

type Store struct {
	DB db.Queryer
}

func NewStore(conn db.Queryer) *Store {
	return &Store{DB: conn}
}

const recordColumns = `id, employee_id, work_date, check_in, check_out, breaks, total_hours, total_break_minutes,
  working_hours, status, is_late, late_by_minutes, is_early_departure, early_by_minutes, approval_status,
  COALESCE(approved_by::text, ''), approval_notes, created_at, updated_at, version`

func (s *Store) Get(ctx context.Context, id string) (Record, error) {
	q := db.QueryerFromContext(ctx, s.DB)
	return s.one(q.QueryRow(ctx, "SELECT "+recordColumns+" FROM attendance_records WHERE id = $1", id))
}

func (s *Store) GetByEmployeeDate(ctx context.Context, employeeID string, workDate time.Time) (Record, error) {
	q := db.QueryerFromContext(ctx, s.DB)
	return s.one(q.QueryRow(ctx, "SELECT "+recordColumns+" FROM attendance_records WHERE employee_id = $1 AND work_date = $2", employeeID, workDate))
}

func (s *Store) Create(ctx context.Context, r Record) (Record, error) {
	checkIn, checkOut, breaks, err := encodePunches(r)
	if err != nil {
		return Record{}, err
	}
	q := db.QueryerFromContext(ctx, s.DB)
	_, err = q.Exec(ctx, `
    INSERT INTO attendance_records (id, employee_id, work_date, check_in, check_out, breaks, total_hours,
      total_break_minutes, working_hours, status, is_late, late_by_minutes, is_early_departure, early_by_minutes,
      approval_status, approval_notes, created_at, updated_at, version)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,1)
  `, r.ID, r.EmployeeID, r.WorkDate, checkIn, checkOut, breaks, r.TotalHours,
		r.TotalBreakMinutes, r.WorkingHours, r.Status, r.IsLate, r.LateByMinutes, r.IsEarlyDeparture, r.EarlyByMinutes,
		r.ApprovalStatus, r.ApprovalNotes, r.CreatedAt, r.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return Record{}, ErrAlreadyCheckedIn
		}
		return Record{}, fmt.Errorf("attendance store: create: %w", err)
	}
	r.Version = 1
	return r, nil
}

func (s *Store) Update(ctx context.Context, r Record, expectedVersion int) (Record, error) {
	checkIn, checkOut, breaks, err := encodePunches(r)
	if err != nil {
		return Record{}, err
	}
	q := db.QueryerFromContext(ctx, s.DB)
	tag, err := q.Exec(ctx, `
    UPDATE attendance_records
    SET check_in = $2, check_out = $3, breaks = $4, total_hours = $5, total_break_minutes = $6,
        working_hours = $7, status = $8, is_late = $9, late_by_minutes = $10, is_early_departure = $11,
        early_by_minutes = $12, approval_status = $13, approved_by = $14, approval_notes = $15,
        updated_at = $16, version = version + 1
    WHERE id = $1 AND version = $17
  `, r.ID, checkIn, checkOut, breaks, r.TotalHours, r.TotalBreakMinutes,
		r.WorkingHours, r.Status, r.IsLate, r.LateByMinutes, r.IsEarlyDeparture,
		r.EarlyByMinutes, r.ApprovalStatus, nullIfEmpty(r.ApprovedBy), r.ApprovalNotes,
		r.UpdatedAt, expectedVersion)
	if err != nil {
		return Record{}, fmt.Errorf("attendance store: update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return Record{}, ErrConcurrentUpdate
	}
	r.Version = expectedVersion + 1
	return r, nil
}

func (s *Store) History(ctx context.Context, employeeID string, filter HistoryFilter) (HistoryResult, error) {
	q := db.QueryerFromContext(ctx, s.DB)
	where := "WHERE employee_id = $1"
	args := []any{employeeID}
	if !filter.From.IsZero() {
		args = append(args, filter.From)
		where += fmt.Sprintf(" AND work_date >= $%d", len(args))
	}
	if !filter.To.IsZero() {
		args = append(args, filter.To)
		where += fmt.Sprintf(" AND work_date <= $%d", len(args))
	}

	var total int
	if err := q.QueryRow(ctx, "SELECT COUNT(1) FROM attendance_records "+where, args...).Scan(&total); err != nil {
		return HistoryResult{}, fmt.Errorf("attendance store: count: %w", err)
	}

	query := fmt.Sprintf("SELECT %s FROM attendance_records %s ORDER BY work_date DESC LIMIT $%d OFFSET $%d",
		recordColumns, where, len(args)+1, len(args)+2)
	args = append(args, filter.Limit, filter.Offset)
	items, err := s.list(ctx, q, query, args...)
	if err != nil {
		return HistoryResult{}, err
	}
	return HistoryResult{Items: items, Total: total}, nil
}

func (s *Store) ListByDate(ctx context.Context, workDate time.Time) ([]Record, error) {
	q := db.QueryerFromContext(ctx, s.DB)
	return s.list(ctx, q, "SELECT "+recordColumns+" FROM attendance_records WHERE work_date = $1 ORDER BY created_at", workDate)
}

func (s *Store) one(row pgx.Row) (Record, error) {
	r, err := scanRecord(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, ErrRecordNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("attendance store: get: %w", err)
	}
	return r, nil
}

func (s *Store) list(ctx context.Context, q db.Queryer, query string, args ...any) ([]Record, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("attendance store: list: %w", err)
	}
	defer rows.Close()

	out := []Record{}
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("attendance store: scan: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func scanRecord(row pgx.Row) (Record, error) {
	var r Record
	var checkIn, checkOut, breaks []byte
	if err := row.Scan(&r.ID, &r.EmployeeID, &r.WorkDate, &checkIn, &checkOut, &breaks, &r.TotalHours, &r.TotalBreakMinutes,
		&r.WorkingHours, &r.Status, &r.IsLate, &r.LateByMinutes, &r.IsEarlyDeparture, &r.EarlyByMinutes, &r.ApprovalStatus,
		&r.ApprovedBy, &r.ApprovalNotes, &r.CreatedAt, &r.UpdatedAt, &r.Version); err != nil {
		return Record{}, err
	}
	var err error
	if r.CheckIn, err = decodePunch(checkIn); err != nil {
		return Record{}, err
	}
	if r.CheckOut, err = decodePunch(checkOut); err != nil {
		return Record{}, err
	}
	r.Breaks = []Break{}
	if len(breaks) > 0 {
		if err := json.Unmarshal(breaks, &r.Breaks); err != nil {
			return Record{}, err
		}
	}
	return r, nil
}

func decodePunch(raw []byte) (*Punch, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var p Punch
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func encodePunches(r Record) (checkIn, checkOut, breaks []byte, err error) {
	if r.CheckIn != nil {
		if checkIn, err = json.Marshal(r.CheckIn); err != nil {
			return nil, nil, nil, err
		}
	}
	if r.CheckOut != nil {
		if checkOut, err = json.Marshal(r.CheckOut); err != nil {
			return nil, nil, nil, err
		}
	}
	if r.Breaks == nil {
		r.Breaks = []Break{}
	}
	if breaks, err = json.Marshal(r.Breaks); err != nil {
		return nil, nil, nil, err
	}
	return checkIn, checkOut, breaks, nil
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}
