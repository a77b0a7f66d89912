// Package insurance holds the vehicle-insurance domain: owners, vehicles,
// policies, accidents, and payments, plus the eligibility rules that govern
// the claim workflow. Rules are pure functions; persistence lives behind the
// Store interfaces and HTTP lives in handler.
package insurance

import (
	"time"

	id "vims/pkg/domain"
	dErrors "vims/pkg/domain-errors"
)

// PolicyStatus describes whether a policy's date range contains a reference
// date. It is a property of (policy, date), not of the policy alone.
type PolicyStatus string

const (
	StatusActive PolicyStatus = "Active"
	StatusLapsed PolicyStatus = "Lapsed"
)

// DateLayout is the wire format for all civil dates.
const DateLayout = "2006-01-02"

// DateOnly truncates t to a UTC civil date. All policy, accident, and payment
// dates flow through this so comparisons are calendar comparisons, never
// clock comparisons.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD wire date.
func ParseDate(s, field string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, dErrors.New(dErrors.CodeInvalidInput, "invalid "+field+" format, expected YYYY-MM-DD")
	}
	return t, nil
}

// Owner is a policyholder. Owners, their vehicles, and everything hanging off
// their policies belong to the user that created them.
type Owner struct {
	ID        id.OwnerID
	UserID    id.UserID
	Name      string
	Address   string
	Phone     string
	DOB       *time.Time
	CreatedAt time.Time
}

// DefaultVehicleTitle is used when a vehicle is registered without a title.
const DefaultVehicleTitle = "Unknown Vehicle"

// Vehicle belongs to exactly one Owner.
type Vehicle struct {
	ID            id.VehicleID
	UserID        id.UserID
	OwnerID       id.OwnerID
	Title         string
	VehicleNumber string
	ModelName     string
	ModelYear     int
	VehicleType   string
	VIN           string
	CreatedAt     time.Time
}

// Policy covers one Vehicle for one Owner over [StartDate, EndDate].
// Invariant: StartDate <= EndDate.
type Policy struct {
	ID           id.PolicyID
	UserID       id.UserID
	OwnerID      id.OwnerID
	VehicleID    id.VehicleID
	PolicyNumber string
	PolicyType   string
	StartDate    time.Time
	EndDate      time.Time
	Premium      int64
	CreatedAt    time.Time
}

// Accident is the single claim allowed against a Policy. PolicyStatus is
// frozen at creation from the accident date vs the policy window and never
// recomputed, even if policy dates were to change later.
type Accident struct {
	ID             id.AccidentID
	PolicyID       id.PolicyID
	OwnerID        id.OwnerID
	VehicleID      id.VehicleID
	DateOfAccident time.Time
	Location       string
	Description    string
	PolicyStatus   PolicyStatus
	ReportedAt     time.Time
}

// Payment settles a Policy's claim; at most one per Policy. PaymentRef is the
// caller-supplied unique business identifier.
type Payment struct {
	ID            id.PaymentID
	UserID        id.UserID
	PolicyID      id.PolicyID
	AccidentID    id.AccidentID
	OwnerID       id.OwnerID
	VehicleID     id.VehicleID
	PaymentRef    string
	Amount        int64
	PaymentDate   time.Time
	PaymentMethod string
}

// EntityCounts backs the dashboard.
type EntityCounts struct {
	Owners    int
	Vehicles  int
	Policies  int
	Accidents int
	Payments  int
}

// HasAllEntities reports whether the user has at least one of each entity
// kind; the dashboard stays hidden until then.
func (c EntityCounts) HasAllEntities() bool {
	return c.Owners > 0 && c.Vehicles > 0 && c.Policies > 0 && c.Accidents > 0 && c.Payments > 0
}
