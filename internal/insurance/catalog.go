package insurance

import (
	"sort"
	"time"
)

// PolicyOption fixes the term and premium for a recognized policy type.
type PolicyOption struct {
	TermMonths int
	Premium    int64
}

// PolicyCatalog is the closed set of sellable policy types.
var PolicyCatalog = map[string]PolicyOption{
	"Essential Cover (3 months)":  {TermMonths: 3, Premium: 3000},
	"Standard Shield (6 months)":  {TermMonths: 6, Premium: 5500},
	"Premium Protect (12 months)": {TermMonths: 12, Premium: 9000},
}

// LookupPolicyType returns the option for a catalog type, if recognized.
func LookupPolicyType(policyType string) (PolicyOption, bool) {
	opt, ok := PolicyCatalog[policyType]
	return opt, ok
}

// PolicyTypes lists catalog types in stable order for API responses.
func PolicyTypes() []string {
	types := make([]string, 0, len(PolicyCatalog))
	for t := range PolicyCatalog {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// PolicyEndDate derives the coverage end from the start date and term.
// Months are approximated as 30 days with a 10-day grace tail; this is the
// product definition, not a calendar calculation.
func PolicyEndDate(start time.Time, termMonths int) time.Time {
	return DateOnly(start).AddDate(0, 0, termMonths*30+10)
}
