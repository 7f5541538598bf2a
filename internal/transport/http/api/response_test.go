package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"fieldforce/internal/domain/apperr"
)

type detailedErr struct{}

func (detailedErr) Error() string { return "already checked in" }
func (detailedErr) Unwrap() error { return apperr.Conflict("already_checked_in", "already checked in") }
func (detailedErr) Details() map[string]any {
	return map[string]any{"checkInTime": "2025-03-10T08:00:00Z"}
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var env Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return env
}

func TestFailErrorMapsKinds(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{apperr.Validation("reason_required", "reason is required"), http.StatusBadRequest, "reason_required"},
		{apperr.Conflict("not_pending", "not pending"), http.StatusConflict, "not_pending"},
		{apperr.Unauthorized("not_owner", "not owner"), http.StatusForbidden, "not_owner"},
		{apperr.NotFound("leave_not_found", "missing"), http.StatusNotFound, "leave_not_found"},
		{errors.New("boom"), http.StatusInternalServerError, "fallback"},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		FailError(rec, tc.err, "fallback", "req-1")
		if rec.Code != tc.status {
			t.Fatalf("%v: expected %d, got %d", tc.err, tc.status, rec.Code)
		}
		env := decode(t, rec)
		if env.Success || env.Error == nil || env.Error.Code != tc.code {
			t.Fatalf("%v: unexpected envelope %+v", tc.err, env)
		}
		if env.RequestID != "req-1" {
			t.Fatalf("expected request id, got %q", env.RequestID)
		}
	}
}

func TestFailErrorHidesUnexpectedMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	FailError(rec, errors.New("pq: connection refused"), "leave_failed", "")
	env := decode(t, rec)
	if env.Error.Message != "internal error" {
		t.Fatalf("expected generic message, got %q", env.Error.Message)
	}
}

func TestFailErrorIncludesDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	FailError(rec, detailedErr{}, "fallback", "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	env := decode(t, rec)
	if env.Error.Details["checkInTime"] != "2025-03-10T08:00:00Z" {
		t.Fatalf("expected details, got %+v", env.Error.Details)
	}
}
