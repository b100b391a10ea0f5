// Package middleware provides HTTP middleware for the page host.
package middleware

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/alkmst-xyz/sweetcorn-web/pkg/logger"
)

// RequestID tags each request with the inbound X-Request-Id header, or a new
// UUID when absent, and echoes it on the response.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(middleware.RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}

		ctx := context.WithValue(r.Context(), middleware.RequestIDKey, id)
		ctx = logger.ContextWithRequestID(ctx, id)

		w.Header().Set(middleware.RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
