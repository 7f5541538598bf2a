package attendance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"

	"fieldforce/internal/domain/apperr"
)

var recordColumnNames = []string{"id", "employee_id", "work_date", "check_in", "check_out", "breaks", "total_hours",
	"total_break_minutes", "working_hours", "status", "is_late", "late_by_minutes", "is_early_departure",
	"early_by_minutes", "approval_status", "approved_by", "approval_notes", "created_at", "updated_at", "version"}

func TestStoreGetByEmployeeDateDecodes(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	rows := pgxmock.NewRows(recordColumnNames).AddRow(
		"rec-1", "emp", day,
		[]byte(`{"time":"2025-03-10T09:15:00Z","location":{"latitude":1,"longitude":2}}`), nil,
		[]byte(`[{"breakStart":{"time":"2025-03-10T13:00:00Z","location":{"latitude":1,"longitude":2}},"reason":"lunch","duration":0}]`),
		0.0, 0.0, 0.0, StatusPresent, true, 15.0, false, 0.0, ApprovalPending, "", "", day, day, 2,
	)
	mock.ExpectQuery("WHERE employee_id = \\$1 AND work_date = \\$2").WithArgs("emp", day).WillReturnRows(rows)

	r, err := NewStore(mock).GetByEmployeeDate(context.Background(), "emp", day)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.CheckIn == nil || r.CheckOut != nil || r.LateByMinutes != 15 {
		t.Fatalf("unexpected record: %+v", r)
	}
	if _, open := r.OpenBreak(); !open {
		t.Fatal("expected decoded open break")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestStoreGetNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery("FROM attendance_records WHERE id").WithArgs("nope").WillReturnError(pgx.ErrNoRows)
	if _, err := NewStore(mock).Get(context.Background(), "nope"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestStoreCreateUniqueViolation(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectExec("INSERT INTO attendance_records").WillReturnError(&pgconn.PgError{Code: "23505"})

	r := Record{ID: "rec-1", EmployeeID: "emp", CheckIn: &Punch{Time: at(9, 0)}}
	if _, err := NewStore(mock).Create(context.Background(), r); !errors.Is(err, ErrAlreadyCheckedIn) {
		t.Fatalf("expected already checked in, got %v", err)
	}
}

func TestStoreUpdateVersionMismatch(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectExec("UPDATE attendance_records").WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	if _, err := NewStore(mock).Update(context.Background(), Record{ID: "rec-1"}, 3); !errors.Is(err, ErrConcurrentUpdate) {
		t.Fatalf("expected concurrent update, got %v", err)
	}
}

func TestStoreHistoryBuildsRange(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	from := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT COUNT\\(1\\) FROM attendance_records WHERE employee_id = \\$1 AND work_date >= \\$2 AND work_date <= \\$3").
		WithArgs("emp", from, to).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery("ORDER BY work_date DESC LIMIT \\$4 OFFSET \\$5").
		WithArgs("emp", from, to, 30, 0).
		WillReturnRows(pgxmock.NewRows(recordColumnNames))

	res, err := NewStore(mock).History(context.Background(), "emp", HistoryFilter{From: from, To: to, Limit: 30})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Total != 0 || len(res.Items) != 0 {
		t.Fatalf("expected empty history, got %+v", res)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
