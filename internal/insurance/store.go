package insurance

import (
	"context"

	id "vims/pkg/domain"
)

// Store is the persistence boundary for the insurance domain.
//
// Error Contract:
// - Return sentinel.ErrNotFound (wrapped) when an entity does not exist or
//   falls outside the given user's scope; the two cases are indistinguishable
//   on purpose.
// - Return sentinel.ErrConflict (wrapped) when a uniqueness rule rejects a
//   write: policy number, vehicle number, payment ref, or the one-accident /
//   one-payment-per-policy constraints.
// - Return nil for successful operations.
type Store interface {
	// Owners
	CreateOwner(ctx context.Context, o *Owner) error
	UpdateOwner(ctx context.Context, o *Owner) error
	// DeleteOwner cascades to the owner's vehicles, policies, accidents,
	// and payments.
	DeleteOwner(ctx context.Context, userID id.UserID, ownerID id.OwnerID) error
	FindOwner(ctx context.Context, userID id.UserID, ownerID id.OwnerID) (*Owner, error)
	// ListOwners filters by case-insensitive name substring when search is
	// non-empty.
	ListOwners(ctx context.Context, userID id.UserID, search string) ([]*Owner, error)

	// Vehicles
	CreateVehicle(ctx context.Context, v *Vehicle) error
	UpdateVehicle(ctx context.Context, v *Vehicle) error
	DeleteVehicle(ctx context.Context, userID id.UserID, vehicleID id.VehicleID) error
	FindVehicle(ctx context.Context, userID id.UserID, vehicleID id.VehicleID) (*Vehicle, error)
	// ListVehicles returns all the user's vehicles, or only one owner's
	// when ownerID is non-nil.
	ListVehicles(ctx context.Context, userID id.UserID, ownerID *id.OwnerID) ([]*Vehicle, error)

	// Policies
	CreatePolicy(ctx context.Context, p *Policy) error
	// DeletePolicy cascades to the policy's accident and payment.
	DeletePolicy(ctx context.Context, userID id.UserID, policyID id.PolicyID) error
	FindPolicy(ctx context.Context, userID id.UserID, policyID id.PolicyID) (*Policy, error)
	ListPolicies(ctx context.Context, userID id.UserID, ownerID *id.OwnerID) ([]*Policy, error)
	// MaxPolicyNumber returns the lexicographic maximum policy number
	// across ALL users (numbering is a global sequence), or "" when none
	// exist.
	MaxPolicyNumber(ctx context.Context) (string, error)

	// Accidents
	CreateAccident(ctx context.Context, a *Accident) error
	// FindAccidentByPolicy returns ErrNotFound when the policy has no
	// accident. Callers must have scoped the policy lookup first.
	FindAccidentByPolicy(ctx context.Context, policyID id.PolicyID) (*Accident, error)
	HasAccident(ctx context.Context, policyID id.PolicyID) (bool, error)
	ListAccidents(ctx context.Context, userID id.UserID) ([]*Accident, error)

	// Payments
	CreatePayment(ctx context.Context, p *Payment) error
	HasPayment(ctx context.Context, policyID id.PolicyID) (bool, error)
	ListPayments(ctx context.Context, userID id.UserID) ([]*Payment, error)

	// Counts backs the dashboard.
	Counts(ctx context.Context, userID id.UserID) (EntityCounts, error)
}
