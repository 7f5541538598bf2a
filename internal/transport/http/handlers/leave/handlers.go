package leavehandler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"fieldforce/internal/domain/auth"
	"fieldforce/internal/domain/leave"
	"fieldforce/internal/transport/http/api"
	"fieldforce/internal/transport/http/middleware"
	"fieldforce/internal/transport/http/shared"
)

type Service interface {
	Apply(ctx context.Context, employeeID string, in leave.ApplyInput) (leave.Request, error)
	Act(ctx context.Context, id, actorID, action, comments string) (leave.Request, error)
	Cancel(ctx context.Context, id, employeeID, reason string) (leave.Request, error)
	AddAttachment(ctx context.Context, id, employeeID, fileName, storageRef string) (leave.Request, error)
	Get(ctx context.Context, id string, actor auth.UserContext) (leave.Request, error)
	ListMine(ctx context.Context, employeeID string, filter leave.ListFilter) (leave.ListResult, error)
	ListPendingApprovalsFor(ctx context.Context, approverID string) ([]leave.Request, error)
	ComputeBalance(ctx context.Context, employeeID string, year int) ([]leave.Balance, error)
	Statement(ctx context.Context, employeeID string, year int) ([]byte, error)
	TeamCalendar(ctx context.Context, actor auth.UserContext, month time.Month, year int) ([]leave.Request, error)
}

type Handler struct {
	Service Service
	Perms   middleware.PermissionStore
}

func NewHandler(service Service, perms middleware.PermissionStore) *Handler {
	return &Handler{Service: service, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/leave", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermLeaveApply, h.Perms)).Post("/apply", h.handleApply)
		r.With(middleware.RequirePermission(auth.PermLeaveRead, h.Perms)).Get("/my-leaves", h.handleMyLeaves)
		r.With(middleware.RequirePermission(auth.PermLeaveApprove, h.Perms)).Get("/pending-approvals", h.handlePendingApprovals)
		r.With(middleware.RequirePermission(auth.PermLeaveRead, h.Perms)).Get("/balance", h.handleBalance)
		r.With(middleware.RequirePermission(auth.PermLeaveRead, h.Perms)).Get("/balance/statement.pdf", h.handleStatement)
		r.With(middleware.RequirePermission(auth.PermLeaveTeamRead, h.Perms)).Get("/team-calendar", h.handleTeamCalendar)
		r.With(middleware.RequirePermission(auth.PermLeaveRead, h.Perms)).Get("/{leaveID}", h.handleGet)
		r.With(middleware.RequirePermission(auth.PermLeaveApprove, h.Perms)).Put("/{leaveID}/action", h.handleAction)
		r.With(middleware.RequirePermission(auth.PermLeaveApply, h.Perms)).Put("/{leaveID}/cancel", h.handleCancel)
		r.With(middleware.RequirePermission(auth.PermLeaveApply, h.Perms)).Post("/{leaveID}/attachments", h.handleAttach)
	})
}

type applyRequest struct {
	LeaveType        string                  `json:"leaveType"`
	StartDate        string                  `json:"startDate"`
	EndDate          string                  `json:"endDate"`
	IsHalfDay        bool                    `json:"isHalfDay"`
	HalfDayType      string                  `json:"halfDayType"`
	Reason           string                  `json:"reason"`
	EmergencyContact *leave.EmergencyContact `json:"emergencyContact"`
	HandoverTo       string                  `json:"handoverTo"`
	HandoverNotes    string                  `json:"handoverNotes"`
	IsUrgent         bool                    `json:"isUrgent"`
}

type actionRequest struct {
	Action   string `json:"action"`
	Comments string `json:"comments"`
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

type attachmentRequest struct {
	FileName   string `json:"fileName"`
	StorageRef string `json:"storageRef"`
}

func (h *Handler) handleApply(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	requestID := middleware.GetRequestID(r.Context())

	var payload applyRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	v := shared.NewValidator()
	v.Enum("leaveType", payload.LeaveType, leave.Types, "unknown leave type")
	start := optionalDate(v, "startDate", payload.StartDate)
	end := optionalDate(v, "endDate", payload.EndDate)
	v.DateOrder("startDate", start, "endDate", end)
	if v.Reject(w, requestID) {
		return
	}
	handoverTo := strings.TrimSpace(payload.HandoverTo)
	if handoverTo != "" {
		if _, err := uuid.Parse(handoverTo); err != nil {
			api.FailError(w, leave.ErrHandoverNotFound, "leave_apply_failed", requestID)
			return
		}
	}

	created, err := h.Service.Apply(r.Context(), user.UserID, leave.ApplyInput{
		LeaveType:        payload.LeaveType,
		StartDate:        start,
		EndDate:          end,
		IsHalfDay:        payload.IsHalfDay,
		HalfDayType:      payload.HalfDayType,
		Reason:           payload.Reason,
		EmergencyContact: payload.EmergencyContact,
		HandoverTo:       handoverTo,
		HandoverNotes:    payload.HandoverNotes,
		IsUrgent:         payload.IsUrgent,
	})
	if err != nil {
		api.FailError(w, err, "leave_apply_failed", requestID)
		return
	}
	api.Created(w, created, requestID)
}

func (h *Handler) handleMyLeaves(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	requestID := middleware.GetRequestID(r.Context())
	page := shared.ParsePagination(r, 10, 100)

	result, err := h.Service.ListMine(r.Context(), user.UserID, leave.ListFilter{
		Status: strings.ToLower(r.URL.Query().Get("status")),
		Limit:  page.Limit,
		Offset: page.Offset,
	})
	if err != nil {
		api.FailError(w, err, "leave_list_failed", requestID)
		return
	}
	w.Header().Set("X-Total-Count", strconv.Itoa(result.Total))
	api.Success(w, result, requestID)
}

func (h *Handler) handlePendingApprovals(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	requestID := middleware.GetRequestID(r.Context())
	items, err := h.Service.ListPendingApprovalsFor(r.Context(), user.UserID)
	if err != nil {
		api.FailError(w, err, "leave_pending_failed", requestID)
		return
	}
	api.Success(w, items, requestID)
}

func (h *Handler) handleBalance(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	requestID := middleware.GetRequestID(r.Context())
	year, ok := parseYear(w, r)
	if !ok {
		return
	}
	balances, err := h.Service.ComputeBalance(r.Context(), user.UserID, year)
	if err != nil {
		api.FailError(w, err, "leave_balance_failed", requestID)
		return
	}
	api.Success(w, balances, requestID)
}

func (h *Handler) handleStatement(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	requestID := middleware.GetRequestID(r.Context())
	year, ok := parseYear(w, r)
	if !ok {
		return
	}
	pdf, err := h.Service.Statement(r.Context(), user.UserID, year)
	if err != nil {
		api.FailError(w, err, "leave_statement_failed", requestID)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=leave-statement-%d.pdf", year))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}

func (h *Handler) handleTeamCalendar(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	requestID := middleware.GetRequestID(r.Context())

	now := time.Now().UTC()
	month, year := int(now.Month()), now.Year()
	v := shared.NewValidator()
	if raw := r.URL.Query().Get("month"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			v.Add("month", "must be a number")
		}
		month = parsed
	}
	if raw := r.URL.Query().Get("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			v.Add("year", "must be a number")
		}
		year = parsed
	}
	if v.Reject(w, requestID) {
		return
	}

	items, err := h.Service.TeamCalendar(r.Context(), user, time.Month(month), year)
	if err != nil {
		api.FailError(w, err, "leave_calendar_failed", requestID)
		return
	}
	api.Success(w, items, requestID)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	requestID := middleware.GetRequestID(r.Context())
	item, err := h.Service.Get(r.Context(), chi.URLParam(r, "leaveID"), user)
	if err != nil {
		api.FailError(w, err, "leave_get_failed", requestID)
		return
	}
	api.Success(w, item, requestID)
}

func (h *Handler) handleAction(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	requestID := middleware.GetRequestID(r.Context())

	var payload actionRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	v := shared.NewValidator()
	v.Required("action", payload.Action, "is required")
	v.Enum("action", payload.Action, []string{leave.ActionApprove, leave.ActionReject}, "must be approve or reject")
	if v.Reject(w, requestID) {
		return
	}

	updated, err := h.Service.Act(r.Context(), chi.URLParam(r, "leaveID"), user.UserID, strings.ToLower(strings.TrimSpace(payload.Action)), payload.Comments)
	if err != nil {
		api.FailError(w, err, "leave_action_failed", requestID)
		return
	}
	api.Success(w, updated, requestID)
}

func (h *Handler) handleCancel(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	requestID := middleware.GetRequestID(r.Context())

	var payload cancelRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
			return
		}
	}
	updated, err := h.Service.Cancel(r.Context(), chi.URLParam(r, "leaveID"), user.UserID, payload.Reason)
	if err != nil {
		api.FailError(w, err, "leave_cancel_failed", requestID)
		return
	}
	api.Success(w, updated, requestID)
}

func (h *Handler) handleAttach(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())
	requestID := middleware.GetRequestID(r.Context())

	var payload attachmentRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	v := shared.NewValidator()
	v.Required("fileName", payload.FileName, "is required")
	v.Required("storageRef", payload.StorageRef, "is required")
	if v.Reject(w, requestID) {
		return
	}
	updated, err := h.Service.AddAttachment(r.Context(), chi.URLParam(r, "leaveID"), user.UserID, payload.FileName, payload.StorageRef)
	if err != nil {
		api.FailError(w, err, "leave_attach_failed", requestID)
		return
	}
	api.Created(w, updated, requestID)
}

// optionalDate leaves missing dates zero so the workflow reports them.
func optionalDate(v *shared.Validator, field, raw string) time.Time {
	if strings.TrimSpace(raw) == "" {
		return time.Time{}
	}
	parsed, _ := v.Date(field, raw)
	return parsed
}

func parseYear(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("year")
	if raw == "" {
		return 0, true
	}
	year, err := strconv.Atoi(raw)
	if err != nil || year < 1970 || year > 9999 {
		shared.FailValidation(w, middleware.GetRequestID(r.Context()), []shared.ValidationIssue{{Field: "year", Reason: "must be a valid calendar year"}})
		return 0, false
	}
	return year, true
}
