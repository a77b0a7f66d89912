package insurance

import (
	"regexp"
	"strconv"
)

// SeedPolicyNumber is issued when no usable prior number exists.
const SeedPolicyNumber = "POL1001"

var policyNumberPattern = regexp.MustCompile(`POL(\d+)`)

// NextPolicyNumber derives the next sequential policy number from the
// lexicographic maximum of existing numbers. Falls back to the seed when the
// store is empty or the maximum does not carry a POL<n> suffix.
//
// Not concurrency safe: two callers can observe the same maximum and derive
// the same candidate. The store's uniqueness constraint on policy_number is
// the safety net; callers must treat an insert conflict as retryable.
func NextPolicyNumber(maxExisting string) string {
	if maxExisting == "" {
		return SeedPolicyNumber
	}
	m := policyNumberPattern.FindStringSubmatch(maxExisting)
	if m == nil {
		return SeedPolicyNumber
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return SeedPolicyNumber
	}
	return "POL" + strconv.Itoa(n+1)
}
