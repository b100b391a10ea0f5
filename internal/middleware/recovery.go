package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/alkmst-xyz/sweetcorn-web/internal/httperr"
	"github.com/alkmst-xyz/sweetcorn-web/pkg/logger"
)

// Recovery returns a middleware that recovers from panics and logs the error.
func Recovery(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}

					log.WithContext(r.Context()).Error("panic recovered",
						"error", rec,
						"stack_trace", string(debug.Stack()),
						"method", r.Method,
						"path", r.URL.Path,
					)

					err := httperr.NewInternalError("an unexpected error occurred").
						WithRequestID(middleware.GetReqID(r.Context()))
					httperr.WriteError(w, err)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
