package notificationshandler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"fieldforce/internal/domain/auth"
	"fieldforce/internal/domain/notifications"
	"fieldforce/internal/transport/http/middleware"
)

type stubNotifications struct {
	countErr error
	read     []string
}

func (s *stubNotifications) List(_ context.Context, userID string, limit, _ int) ([]notifications.Notification, error) {
	return []notifications.Notification{{ID: "n1", Type: notifications.TypeLeaveApproved, Title: "Leave approved"}}, nil
}

func (s *stubNotifications) Count(context.Context, string) (int, error) {
	return 4, s.countErr
}

func (s *stubNotifications) MarkRead(_ context.Context, userID, id string) error {
	s.read = append(s.read, userID+"/"+id)
	return nil
}

func do(h *Handler, user *auth.UserContext, method, target string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	req := httptest.NewRequest(method, target, nil)
	if user != nil {
		req = req.WithContext(middleware.WithUser(req.Context(), *user))
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestListNotifications(t *testing.T) {
	user := auth.UserContext{UserID: "u1", RoleName: auth.RoleEmployee}
	rec := do(NewHandler(&stubNotifications{}), &user, http.MethodGet, "/notifications/")
	if rec.Code != http.StatusOK || rec.Header().Get("X-Total-Count") != "4" {
		t.Fatalf("unexpected response %d total=%q", rec.Code, rec.Header().Get("X-Total-Count"))
	}
}

func TestListToleratesCountFailure(t *testing.T) {
	user := auth.UserContext{UserID: "u1", RoleName: auth.RoleEmployee}
	rec := do(NewHandler(&stubNotifications{countErr: errors.New("timeout")}), &user, http.MethodGet, "/notifications/")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestMarkRead(t *testing.T) {
	svc := &stubNotifications{}
	user := auth.UserContext{UserID: "u1", RoleName: auth.RoleManager}
	rec := do(NewHandler(svc), &user, http.MethodPost, "/notifications/n9/read")
	if rec.Code != http.StatusOK || len(svc.read) != 1 || svc.read[0] != "u1/n9" {
		t.Fatalf("unexpected response %d read=%v", rec.Code, svc.read)
	}
}

func TestNotificationsRequireAuth(t *testing.T) {
	rec := do(NewHandler(&stubNotifications{}), nil, http.MethodGet, "/notifications/")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
