// Package requestid assigns a correlation ID to every request for log and
// audit trail stitching.
package requestid

import (
	"net/http"

	"github.com/google/uuid"

	"vims/pkg/requestcontext"
)

// Header carries the correlation ID to the client.
const Header = "X-Request-Id"

// Middleware reuses the inbound X-Request-Id when present, otherwise
// generates one, and echoes it on the response.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(Header)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(Header, requestID)
		ctx := requestcontext.WithRequestID(r.Context(), requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
