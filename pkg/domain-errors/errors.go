// Package derrors defines the coded domain errors shared by services and
// transport. Stores return sentinel errors for infrastructure facts; services
// translate those into a coded error here so handlers can render a stable
// machine-readable code plus a human-readable reason.
package derrors

import (
	"errors"
	"net/http"
)

// Code identifies the kind of domain failure.
type Code string

const (
	// CodeInvalidInput covers missing or malformed fields: bad vehicle
	// number pattern, wrong VIN length, unknown policy type, bad dates.
	CodeInvalidInput Code = "invalid_input"

	// CodeNotFound covers missing entities. References to another user's
	// entities are reported with this same code: ownership scoping is not
	// distinguishable from absence.
	CodeNotFound Code = "not_found"

	// CodeDuplicate covers unique-constraint violations: policy number
	// collisions (retryable by re-requesting a number), duplicate vehicle
	// numbers, duplicate payment references, duplicate usernames.
	CodeDuplicate Code = "duplicate"

	// CodeAlreadyClaimed: an accident already exists for the policy.
	CodeAlreadyClaimed Code = "already_claimed"

	// CodePaymentExists: a payment already exists for the policy.
	CodePaymentExists Code = "payment_exists"

	// CodeNoAccident: payment requires a prior accident on the policy.
	CodeNoAccident Code = "no_accident"

	// CodePolicyNotActive: the policy was lapsed at the accident date.
	CodePolicyNotActive Code = "policy_not_active_at_accident"

	CodeUnauthorized Code = "unauthorized"
	CodeInternal     Code = "internal"
)

// Error is a coded domain error with a caller-facing message.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string { return string(e.Code) + ": " + e.Message }

// Unwrap exposes the underlying cause for errors.Is / errors.As chains.
func (e *Error) Unwrap() error { return e.cause }

// New constructs a coded domain error.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and caller-facing message to err while keeping the
// cause reachable through the error chain.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, cause: err}
}

// HasCode reports whether err is (or wraps) a domain error with the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// CodeOf extracts the code from err, defaulting to CodeInternal for
// non-domain errors so unexpected failures never leak internals.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// MessageOf extracts the caller-facing message from err.
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return "internal error"
}

// ToHTTPStatus maps a domain error code to its HTTP status.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeInvalidInput:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeDuplicate, CodeAlreadyClaimed, CodePaymentExists:
		return http.StatusConflict
	case CodeNoAccident, CodePolicyNotActive:
		return http.StatusUnprocessableEntity
	case CodeUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
