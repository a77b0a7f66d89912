package service

import (
	"context"
	"errors"
	"time"

	"vims/internal/insurance"
	id "vims/pkg/domain"
	dErrors "vims/pkg/domain-errors"
	audit "vims/pkg/platform/audit"
	"vims/pkg/platform/sentinel"
	"vims/pkg/requestcontext"
)

// PolicyInput carries the fields needed to sell a policy. Term, premium, and
// end date are derived from the catalog, never caller-supplied.
type PolicyInput struct {
	OwnerID    id.OwnerID
	VehicleID  id.VehicleID
	PolicyType string
	StartDate  time.Time
}

// CreatePolicy sells a catalog policy for one of the user's vehicles. The
// policy number is allocated from the global sequence; a concurrent
// allocation of the same number is retried once before surfacing a
// retryable duplicate to the caller.
func (s *Service) CreatePolicy(ctx context.Context, in PolicyInput) (*insurance.Policy, error) {
	ctx, span := s.tracer.Start(ctx, "insurance.CreatePolicy")
	defer span.End()
	start := time.Now()
	defer s.metrics.ObserveCreatePolicy(start)

	if err := requireOwnerID(in.OwnerID); err != nil {
		return nil, err
	}
	if err := requireVehicleID(in.VehicleID); err != nil {
		return nil, err
	}
	option, ok := insurance.LookupPolicyType(in.PolicyType)
	if !ok {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "unknown policy type")
	}
	if in.StartDate.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "start date is required")
	}

	userID := requestcontext.UserID(ctx)
	if _, err := s.store.FindOwner(ctx, userID, in.OwnerID); err != nil {
		return nil, notFoundOr(err, "owner")
	}
	vehicle, err := s.store.FindVehicle(ctx, userID, in.VehicleID)
	if err != nil {
		return nil, notFoundOr(err, "vehicle")
	}
	if vehicle.OwnerID != in.OwnerID {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "vehicle does not belong to this owner")
	}

	startDate := insurance.DateOnly(in.StartDate)
	policy := &insurance.Policy{
		ID:         id.NewPolicyID(),
		UserID:     userID,
		OwnerID:    in.OwnerID,
		VehicleID:  in.VehicleID,
		PolicyType: in.PolicyType,
		StartDate:  startDate,
		EndDate:    insurance.PolicyEndDate(startDate, option.TermMonths),
		Premium:    option.Premium,
		CreatedAt:  requestcontext.Now(ctx),
	}

	// Two attempts: the allocator can lose a race on the unique policy
	// number, in which case a fresh maximum yields a fresh candidate.
	for attempt := 0; ; attempt++ {
		maxNumber, err := s.store.MaxPolicyNumber(ctx)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not allocate policy number")
		}
		policy.PolicyNumber = insurance.NextPolicyNumber(maxNumber)

		err = s.store.CreatePolicy(ctx, policy)
		if err == nil {
			break
		}
		if errors.Is(err, sentinel.ErrConflict) && attempt == 0 {
			continue
		}
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeDuplicate, "policy number already exists, please try again")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not create policy")
	}

	s.metrics.IncrementEntityCreated("policy")
	s.emit(ctx, audit.EventPolicyCreated, policy.PolicyNumber, "")
	return policy, nil
}

// DeletePolicy removes a policy together with its accident and payment.
func (s *Service) DeletePolicy(ctx context.Context, policyID id.PolicyID) error {
	if err := requirePolicyID(policyID); err != nil {
		return err
	}
	userID := requestcontext.UserID(ctx)
	policy, err := s.store.FindPolicy(ctx, userID, policyID)
	if err != nil {
		return notFoundOr(err, "policy")
	}
	if err := s.store.DeletePolicy(ctx, userID, policyID); err != nil {
		return notFoundOr(err, "policy")
	}

	s.emit(ctx, audit.EventPolicyDeleted, policy.PolicyNumber, "")
	return nil
}

// GetPolicy fetches one of the current user's policies.
func (s *Service) GetPolicy(ctx context.Context, policyID id.PolicyID) (*insurance.Policy, error) {
	if err := requirePolicyID(policyID); err != nil {
		return nil, err
	}
	policy, err := s.store.FindPolicy(ctx, requestcontext.UserID(ctx), policyID)
	if err != nil {
		return nil, notFoundOr(err, "policy")
	}
	return policy, nil
}

// ListPolicies lists the current user's policies, optionally only one
// owner's.
func (s *Service) ListPolicies(ctx context.Context, ownerID *id.OwnerID) ([]*insurance.Policy, error) {
	policies, err := s.store.ListPolicies(ctx, requestcontext.UserID(ctx), ownerID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not list policies")
	}
	return policies, nil
}

// PreviewPolicyNumber returns the number the next policy would receive. The
// preview is advisory: the actual allocation happens inside CreatePolicy and
// can differ under concurrency.
func (s *Service) PreviewPolicyNumber(ctx context.Context) (string, error) {
	maxNumber, err := s.store.MaxPolicyNumber(ctx)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "could not read policy numbers")
	}
	return insurance.NextPolicyNumber(maxNumber), nil
}

// PolicyStatusReport answers the status check for one policy.
type PolicyStatusReport struct {
	PolicyNumber string
	AsOf         time.Time
	Status       insurance.PolicyStatus
	IsActive     bool
	HasAccident  bool
}

// CheckPolicyStatus reports whether a policy covers the given date. A zero
// asOf means the request time.
func (s *Service) CheckPolicyStatus(ctx context.Context, policyID id.PolicyID, asOf time.Time) (*PolicyStatusReport, error) {
	if err := requirePolicyID(policyID); err != nil {
		return nil, err
	}
	policy, err := s.store.FindPolicy(ctx, requestcontext.UserID(ctx), policyID)
	if err != nil {
		return nil, notFoundOr(err, "policy")
	}
	if asOf.IsZero() {
		asOf = requestcontext.Now(ctx)
	}
	hasAccident, err := s.store.HasAccident(ctx, policyID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not check policy claims")
	}

	status := insurance.StatusAt(policy, asOf)
	return &PolicyStatusReport{
		PolicyNumber: policy.PolicyNumber,
		AsOf:         insurance.DateOnly(asOf),
		Status:       status,
		IsActive:     status == insurance.StatusActive,
		HasAccident:  hasAccident,
	}, nil
}
