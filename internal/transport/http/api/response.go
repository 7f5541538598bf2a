package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"fieldforce/internal/domain/apperr"
)

type Error struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

type Envelope struct {
	Success   bool   `json:"success"`
	Data      any    `json:"data,omitempty"`
	Error     *Error `json:"error,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, payload Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Warn("write json failed", "err", err)
	}
}

func Success(w http.ResponseWriter, data any, requestID string) {
	WriteJSON(w, http.StatusOK, Envelope{Success: true, Data: data, RequestID: requestID})
}

func Created(w http.ResponseWriter, data any, requestID string) {
	WriteJSON(w, http.StatusCreated, Envelope{Success: true, Data: data, RequestID: requestID})
}

func Fail(w http.ResponseWriter, status int, code, message, requestID string) {
	WriteJSON(w, status, Envelope{Success: false, Error: &Error{Code: code, Message: message}, RequestID: requestID})
}

func FailWithDetails(w http.ResponseWriter, status int, code, message string, details map[string]any, requestID string) {
	WriteJSON(w, status, Envelope{Success: false, Error: &Error{Code: code, Message: message, Details: details}, RequestID: requestID})
}

type detailer interface {
	Details() map[string]any
}

// StatusFor maps a domain error kind onto its HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, apperr.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperr.ErrStateConflict):
		return http.StatusConflict
	case errors.Is(err, apperr.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// FailError writes a domain error. Unexpected errors are logged and reported
// with the fallback code and a generic message.
func FailError(w http.ResponseWriter, err error, fallbackCode, requestID string) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "code", fallbackCode, "requestId", requestID, "err", err)
		Fail(w, status, fallbackCode, "internal error", requestID)
		return
	}
	var details map[string]any
	var d detailer
	if errors.As(err, &d) {
		details = d.Details()
	}
	FailWithDetails(w, status, apperr.Code(err, fallbackCode), err.Error(), details, requestID)
}
