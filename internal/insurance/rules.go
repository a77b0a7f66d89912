package insurance

import (
	"time"

	dErrors "vims/pkg/domain-errors"
)

// This file is the eligibility rules engine: pure domain logic - no I/O, no
// side effects. Services gather the facts (policy, existing accident,
// existing payment) and the rules decide.

// StatusAt computes whether the policy covers date d. Active iff
// StartDate <= d <= EndDate, boundaries inclusive.
func StatusAt(p *Policy, d time.Time) PolicyStatus {
	day := DateOnly(d)
	if day.Before(DateOnly(p.StartDate)) || day.After(DateOnly(p.EndDate)) {
		return StatusLapsed
	}
	return StatusActive
}

// CanReportAccident gates the NoClaim -> Claimed transition. One claim per
// policy, permanently: a policy that already has an accident can never take
// another.
func CanReportAccident(hasAccident bool) error {
	if hasAccident {
		return dErrors.New(dErrors.CodeAlreadyClaimed, "policy has already been claimed")
	}
	return nil
}

// CanRecordPayment gates the Claimed -> Paid transition. Check order matters
// for the surfaced reason: an existing payment wins over a missing accident,
// which wins over the lapsed-at-accident check.
//
// The lapsed check trusts the accident's frozen status rather than
// recomputing from the policy window: the frozen value is the record of what
// was decided at claim time, and policies have no update path that could
// make the two diverge.
func CanRecordPayment(accident *Accident, hasPayment bool) error {
	if hasPayment {
		return dErrors.New(dErrors.CodePaymentExists, "payment already exists for this policy")
	}
	if accident == nil {
		return dErrors.New(dErrors.CodeNoAccident, "no accident reported for this policy")
	}
	if accident.PolicyStatus != StatusActive {
		return dErrors.New(dErrors.CodePolicyNotActive, "policy was not active at the time of accident")
	}
	return nil
}

// ClaimState is a policy's position in the claims workflow. Distinct from
// Active/Lapsed, which is a time-varying property of the policy's dates.
type ClaimState string

const (
	ClaimStateNone    ClaimState = "no_claim"
	ClaimStateClaimed ClaimState = "claimed"
	ClaimStatePaid    ClaimState = "paid"
)

// allowedTransitions is the claims workflow as a directed graph. Paid is
// terminal: the one-accident and one-payment rules leave nothing further to
// record.
var allowedTransitions = map[ClaimState][]ClaimState{
	ClaimStateNone:    {ClaimStateClaimed},
	ClaimStateClaimed: {ClaimStatePaid},
	ClaimStatePaid:    {},
}

// CanTransition reports whether from -> to is an allowed workflow step.
func CanTransition(from, to ClaimState) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ClaimStateOf derives the workflow state from the stored facts.
func ClaimStateOf(hasAccident, hasPayment bool) ClaimState {
	switch {
	case hasPayment:
		return ClaimStatePaid
	case hasAccident:
		return ClaimStateClaimed
	default:
		return ClaimStateNone
	}
}
