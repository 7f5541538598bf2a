package attendancehandler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"fieldforce/internal/domain/attendance"
	"fieldforce/internal/domain/auth"
	"fieldforce/internal/transport/http/api"
	"fieldforce/internal/transport/http/middleware"
	"fieldforce/internal/transport/http/shared"
)

type Service interface {
	CheckIn(ctx context.Context, employeeID string, in attendance.PunchInput) (attendance.Record, error)
	CheckOut(ctx context.Context, employeeID string, in attendance.PunchInput) (attendance.Record, error)
	StartBreak(ctx context.Context, employeeID string, in attendance.PunchInput, reason string) (attendance.Record, error)
	EndBreak(ctx context.Context, employeeID string, in attendance.PunchInput) (attendance.Record, error)
	TodayStatus(ctx context.Context, employeeID string) (attendance.DayStatus, error)
	History(ctx context.Context, employeeID string, filter attendance.HistoryFilter) (attendance.HistoryResult, error)
	TeamSummary(ctx context.Context, actor auth.UserContext, date time.Time, statusFilter string) (attendance.TeamSummary, error)
	ReviewRecord(ctx context.Context, actor auth.UserContext, recordID, decision, notes string) (attendance.Record, error)
}

type Handler struct {
	Service Service
	Perms   middleware.PermissionStore
}

func NewHandler(service Service, perms middleware.PermissionStore) *Handler {
	return &Handler{Service: service, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/attendance", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequirePermission(auth.PermAttendanceSelf, h.Perms))
			r.Post("/checkin", h.handleCheckIn)
			r.Post("/checkout", h.handleCheckOut)
			r.Post("/break/start", h.handleBreakStart)
			r.Post("/break/end", h.handleBreakEnd)
			r.Get("/today", h.handleToday)
			r.Get("/history", h.handleHistory)
		})
		r.With(middleware.RequirePermission(auth.PermAttendanceTeam, h.Perms)).Get("/team", h.handleTeam)
		r.With(middleware.RequirePermission(auth.PermAttendanceApprove, h.Perms)).Put("/{recordID}/approve", h.handleReview)
	})
}

type punchRequest struct {
	Location *attendance.Location `json:"location"`
	Photo    string               `json:"photo"`
	Notes    string               `json:"notes"`
	Reason   string               `json:"reason"`
}

type reviewRequest struct {
	Status string `json:"status"`
	Notes  string `json:"notes"`
}

// decodePunch requires a location; the service validates its coordinates.
func decodePunch(w http.ResponseWriter, r *http.Request) (punchRequest, bool) {
	requestID := middleware.GetRequestID(r.Context())
	var payload punchRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return payload, false
	}
	if payload.Location == nil {
		api.FailError(w, attendance.ErrLocationRequired, "invalid_payload", requestID)
		return payload, false
	}
	return payload, true
}

func (p punchRequest) input() attendance.PunchInput {
	return attendance.PunchInput{Location: *p.Location, Photo: p.Photo, Notes: p.Notes}
}

func (h *Handler) handleCheckIn(w http.ResponseWriter, r *http.Request) {
	h.punch(w, r, true, func(ctx context.Context, userID string, p punchRequest) (attendance.Record, error) {
		return h.Service.CheckIn(ctx, userID, p.input())
	})
}

func (h *Handler) handleCheckOut(w http.ResponseWriter, r *http.Request) {
	h.punch(w, r, false, func(ctx context.Context, userID string, p punchRequest) (attendance.Record, error) {
		return h.Service.CheckOut(ctx, userID, p.input())
	})
}

func (h *Handler) handleBreakStart(w http.ResponseWriter, r *http.Request) {
	h.punch(w, r, false, func(ctx context.Context, userID string, p punchRequest) (attendance.Record, error) {
		return h.Service.StartBreak(ctx, userID, p.input(), p.Reason)
	})
}

func (h *Handler) handleBreakEnd(w http.ResponseWriter, r *http.Request) {
	h.punch(w, r, false, func(ctx context.Context, userID string, p punchRequest) (attendance.Record, error) {
		return h.Service.EndBreak(ctx, userID, p.input())
	})
}

func (h *Handler) punch(w http.ResponseWriter, r *http.Request, created bool, fn func(context.Context, string, punchRequest) (attendance.Record, error)) {
	user, _ := middleware.GetUser(r.Context())
	requestID := middleware.GetRequestID(r.Context())
	payload, ok := decodePunch(w, r)
	if !ok {
		return
	}
	record, err := fn(r.Context(), user.UserID, payload)
	if err != nil {
		api.FailError(w, err, "attendance_punch_failed", requestID)
		return
	}
	if created {
		api.Created(w, record, requestID)
		return
	}
	api.Success(w, record, requestID)
}

func (h *Handler) handleToday(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	requestID := middleware.GetRequestID(r.Context())
	status, err := h.Service.TodayStatus(r.Context(), user.UserID)
	if err != nil {
		api.FailError(w, err, "attendance_today_failed", requestID)
		return
	}
	api.Success(w, status, requestID)
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	requestID := middleware.GetRequestID(r.Context())
	page := shared.ParsePagination(r, 30, 366)

	v := shared.NewValidator()
	var from, to time.Time
	if raw := r.URL.Query().Get("from"); raw != "" {
		from, _ = v.Date("from", raw)
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		to, _ = v.Date("to", raw)
	}
	v.DateOrder("from", from, "to", to)
	if v.Reject(w, requestID) {
		return
	}

	result, err := h.Service.History(r.Context(), user.UserID, attendance.HistoryFilter{From: from, To: to, Limit: page.Limit, Offset: page.Offset})
	if err != nil {
		api.FailError(w, err, "attendance_history_failed", requestID)
		return
	}
	w.Header().Set("X-Total-Count", strconv.Itoa(result.Total))
	api.Success(w, result, requestID)
}

func (h *Handler) handleTeam(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	requestID := middleware.GetRequestID(r.Context())

	v := shared.NewValidator()
	var date time.Time
	if raw := r.URL.Query().Get("date"); raw != "" {
		date, _ = v.Date("date", raw)
	}
	status := r.URL.Query().Get("status")
	v.Enum("status", status, []string{
		attendance.StatusPresent, attendance.StatusLate, attendance.StatusHalfDay, attendance.StatusEarlyDeparture,
	}, "unknown attendance status")
	if v.Reject(w, requestID) {
		return
	}

	summary, err := h.Service.TeamSummary(r.Context(), user, date, status)
	if err != nil {
		api.FailError(w, err, "attendance_team_failed", requestID)
		return
	}
	api.Success(w, summary, requestID)
}

func (h *Handler) handleReview(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	requestID := middleware.GetRequestID(r.Context())

	var payload reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	record, err := h.Service.ReviewRecord(r.Context(), user, chi.URLParam(r, "recordID"), payload.Status, payload.Notes)
	if err != nil {
		api.FailError(w, err, "attendance_review_failed", requestID)
		return
	}
	api.Success(w, record, requestID)
}
