package domain

import (
	"github.com/google/uuid"

	dErrors "vims/pkg/domain-errors"
)

// Typed entity identifiers. Distinct types keep an OwnerID from being passed
// where a PolicyID is expected; the compiler enforces the distinction.
//
// Usage: construct via the Parse* helpers at trust boundaries (handlers,
// store scans); direct casting bypasses validation.
type (
	UserID     uuid.UUID
	OwnerID    uuid.UUID
	VehicleID  uuid.UUID
	PolicyID   uuid.UUID
	AccidentID uuid.UUID
	PaymentID  uuid.UUID
)

func parseUUID(s, what string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, what+" id cannot be empty")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+what+" id")
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, what+" id cannot be nil")
	}
	return u, nil
}

// ParseUserID validates and converts a string into a UserID.
func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID(s, "user")
	return UserID(u), err
}

// ParseOwnerID validates and converts a string into an OwnerID.
func ParseOwnerID(s string) (OwnerID, error) {
	u, err := parseUUID(s, "owner")
	return OwnerID(u), err
}

// ParseVehicleID validates and converts a string into a VehicleID.
func ParseVehicleID(s string) (VehicleID, error) {
	u, err := parseUUID(s, "vehicle")
	return VehicleID(u), err
}

// ParsePolicyID validates and converts a string into a PolicyID.
func ParsePolicyID(s string) (PolicyID, error) {
	u, err := parseUUID(s, "policy")
	return PolicyID(u), err
}

// ParseAccidentID validates and converts a string into an AccidentID.
func ParseAccidentID(s string) (AccidentID, error) {
	u, err := parseUUID(s, "accident")
	return AccidentID(u), err
}

// ParsePaymentID validates and converts a string into a PaymentID.
func ParsePaymentID(s string) (PaymentID, error) {
	u, err := parseUUID(s, "payment")
	return PaymentID(u), err
}

func (id UserID) String() string     { return uuid.UUID(id).String() }
func (id OwnerID) String() string    { return uuid.UUID(id).String() }
func (id VehicleID) String() string  { return uuid.UUID(id).String() }
func (id PolicyID) String() string   { return uuid.UUID(id).String() }
func (id AccidentID) String() string { return uuid.UUID(id).String() }
func (id PaymentID) String() string  { return uuid.UUID(id).String() }

func (id UserID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }
func (id OwnerID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id VehicleID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }
func (id PolicyID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }
func (id AccidentID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id PaymentID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }

// NewUserID returns a fresh random UserID.
func NewUserID() UserID { return UserID(uuid.New()) }

// NewOwnerID returns a fresh random OwnerID.
func NewOwnerID() OwnerID { return OwnerID(uuid.New()) }

// NewVehicleID returns a fresh random VehicleID.
func NewVehicleID() VehicleID { return VehicleID(uuid.New()) }

// NewPolicyID returns a fresh random PolicyID.
func NewPolicyID() PolicyID { return PolicyID(uuid.New()) }

// NewAccidentID returns a fresh random AccidentID.
func NewAccidentID() AccidentID { return AccidentID(uuid.New()) }

// NewPaymentID returns a fresh random PaymentID.
func NewPaymentID() PaymentID { return PaymentID(uuid.New()) }
