// Package httputil centralizes JSON encoding and domain error translation for
// HTTP handlers so every endpoint returns the same envelopes.
package httputil

import (
	"encoding/json"
	"net/http"

	dErrors "vims/pkg/domain-errors"
)

// ErrorResponse is the JSON envelope for all failed requests.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError translates a domain error into the JSON error envelope.
// Non-domain errors render as internal without leaking details.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	WriteJSON(w, dErrors.ToHTTPStatus(code), ErrorResponse{
		Error:   string(code),
		Message: dErrors.MessageOf(err),
	})
}

// Decode parses the JSON request body into dst, reporting malformed bodies
// as invalid input. Returns false when a response has already been written.
func Decode[T any](w http.ResponseWriter, r *http.Request, dst *T) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return false
	}
	return true
}
