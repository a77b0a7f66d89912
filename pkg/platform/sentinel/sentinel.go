package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) so services can translate them into coded domain errors.
//
// These represent factual states about stored resources, not validation
// failures:
// - ErrNotFound: entity does not exist in the store (or is outside the
//   caller's ownership scope, which stores treat the same way)
// - ErrConflict: a uniqueness constraint rejected the write (policy number,
//   vehicle number, payment reference, one-accident/one-payment-per-policy)
// - ErrInvalidState: entity in wrong state for the requested operation
// - ErrUnavailable: backing service temporarily unavailable
//
// For validation errors (bad input, missing fields), use pkg/domain-errors
// directly.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)
