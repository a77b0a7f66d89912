// Package auth provides the bearer-token middleware gating every
// user-scoped endpoint. Store queries must never trust client-supplied ids
// alone; this middleware is where the server-side identity enters the
// request context.
package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	id "vims/pkg/domain"
	dErrors "vims/pkg/domain-errors"
	"vims/pkg/platform/httputil"
	"vims/pkg/requestcontext"
)

// TokenValidator validates a signed access token and returns its claims.
type TokenValidator interface {
	ValidateToken(tokenString string) (*Claims, error)
}

// SessionChecker reports whether the session behind a token is still live.
// Logout revokes the session, which invalidates outstanding tokens.
type SessionChecker interface {
	IsSessionLive(ctx context.Context, sessionID string) (bool, error)
}

// Claims is the subset of token claims the middleware consumes.
type Claims struct {
	UserID    id.UserID
	SessionID string
}

// RequireAuth validates the Authorization bearer token, checks session
// liveness, and injects the user identity into the request context.
func RequireAuth(validator TokenValidator, sessions SessionChecker, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const bearerPrefix = "Bearer "
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, bearerPrefix) {
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "missing bearer token"))
				return
			}

			claims, err := validator.ValidateToken(strings.TrimPrefix(authHeader, bearerPrefix))
			if err != nil {
				httputil.WriteError(w, err)
				return
			}

			live, err := sessions.IsSessionLive(r.Context(), claims.SessionID)
			if err != nil {
				logger.ErrorContext(r.Context(), "session liveness check failed",
					"session_id", claims.SessionID,
					"error", err,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "session check failed"))
				return
			}
			if !live {
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "session is no longer active"))
				return
			}

			ctx := requestcontext.WithUserID(r.Context(), claims.UserID)
			ctx = requestcontext.WithSessionID(ctx, claims.SessionID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
