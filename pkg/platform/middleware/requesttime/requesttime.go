// Package requesttime captures a single "now" per HTTP request. Policy
// activity checks, frozen accident statuses, and audit timestamps within one
// request all observe the same instant.
package requesttime

import (
	"net/http"
	"time"

	"vims/pkg/requestcontext"
)

// Middleware stores the current time in the request context.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
