package audit

import (
	"context"
	"time"

	id "vims/pkg/domain"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	ID        string
	Timestamp time.Time
	UserID    id.UserID
	// Subject names the entity acted on (policy number, vehicle number,
	// payment reference) when one exists.
	Subject string
	Action  string
	// Reason records why an attempt was rejected (already_claimed,
	// no_accident, ...); empty for successes.
	Reason string
	// Enrichment from request middleware.
	RequestID string
	ClientIP  string
	UserAgent string
}

// Action is the closed set of audited actions.
type Action string

const (
	// Auth events
	EventUserRegistered Action = "user_registered"
	EventLoginSucceeded Action = "login_succeeded"
	EventLoginFailed    Action = "login_failed"
	EventLogout         Action = "logout"

	// Entity lifecycle events
	EventOwnerCreated   Action = "owner_created"
	EventOwnerUpdated   Action = "owner_updated"
	EventOwnerDeleted   Action = "owner_deleted"
	EventVehicleCreated Action = "vehicle_created"
	EventVehicleUpdated Action = "vehicle_updated"
	EventVehicleDeleted Action = "vehicle_deleted"
	EventPolicyCreated  Action = "policy_created"
	EventPolicyDeleted  Action = "policy_deleted"

	// Claims workflow events
	EventAccidentReported Action = "accident_reported"
	EventAccidentRejected Action = "accident_rejected"
	EventPaymentRecorded  Action = "payment_recorded"
	EventPaymentRejected  Action = "payment_rejected"
)

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByUser(ctx context.Context, userID id.UserID) ([]Event, error)
}
