package middleware

import (
	"log/slog"
	"net/http"

	"github.com/paisa/paisa/internal/auth"
)

// RequireAdmin returns middleware that only lets admin accounts through.
// Must be applied after Auth middleware.
func RequireAdmin(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authCtx := auth.AuthFromContext(r.Context())
			if authCtx == nil {
				writeAuthError(w, "Authentication required")
				return
			}

			if !authCtx.IsAdmin {
				logger.Warn("admin access denied",
					slog.String("user_id", authCtx.UserID),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeError(w, http.StatusForbidden, "FORBIDDEN", "Admin access required")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
