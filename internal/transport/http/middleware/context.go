package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"fieldforce/internal/requestctx"
)

type ctxKey string

const (
	ctxKeyUser ctxKey = "user"

	RequestIDHeader = "X-Request-ID"
)

// RequestID propagates an inbound X-Request-ID or assigns a fresh one.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(RequestIDHeader))
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		ctx := requestctx.WithRequestID(r.Context(), id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func GetRequestID(ctx context.Context) string {
	return requestctx.GetRequestID(ctx)
}

// WithUser attaches an identity to ctx. Used by tests and internal callers.
func WithUser(ctx context.Context, user UserIdentity) context.Context {
	return context.WithValue(ctx, ctxKeyUser, user)
}
