package directory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"

	"fieldforce/internal/domain/apperr"
)

func TestGetMapsNoRows(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery("SELECT id, name, email, role").WithArgs("missing").WillReturnError(pgx.ErrNoRows)

	_, err = NewStore(mock).Get(context.Background(), "missing")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestManagerOfAndAdmins(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery("LEFT JOIN users m").WithArgs("e1").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow("m1"))
	mock.ExpectQuery("role = 'admin'").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow("a1").AddRow("a2"))

	store := NewStore(mock)
	manager, err := store.ManagerOf(context.Background(), "e1")
	if err != nil || manager != "m1" {
		t.Fatalf("expected m1, got %q (%v)", manager, err)
	}
	admins, err := store.ActiveAdmins(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(admins) != 2 || admins[0] != "a1" {
		t.Fatalf("unexpected admins: %v", admins)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUpdatePresence(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	at := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	mock.ExpectExec("UPDATE users").
		WithArgs("e1", 12.9, 77.6, "Site A", true, at).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err = NewStore(mock).UpdatePresence(context.Background(), "e1", Presence{
		Location:  Location{Latitude: 12.9, Longitude: 77.6, Address: "Site A"},
		IsOnline:  true,
		UpdatedAt: at,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
