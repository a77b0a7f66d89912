package service

import (
	"context"
	"strings"
	"time"

	"vims/internal/insurance"
	id "vims/pkg/domain"
	dErrors "vims/pkg/domain-errors"
	audit "vims/pkg/platform/audit"
	"vims/pkg/requestcontext"
)

// OwnerInput carries the caller-editable owner fields.
type OwnerInput struct {
	Name    string
	Address string
	Phone   string
	DOB     *time.Time
}

func (in *OwnerInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "owner name is required")
	}
	return nil
}

// CreateOwner registers a new policyholder for the current user.
func (s *Service) CreateOwner(ctx context.Context, in OwnerInput) (*insurance.Owner, error) {
	ctx, span := s.tracer.Start(ctx, "insurance.CreateOwner")
	defer span.End()

	if err := in.validate(); err != nil {
		return nil, err
	}
	owner := &insurance.Owner{
		ID:        id.NewOwnerID(),
		UserID:    requestcontext.UserID(ctx),
		Name:      strings.TrimSpace(in.Name),
		Address:   in.Address,
		Phone:     in.Phone,
		DOB:       in.DOB,
		CreatedAt: requestcontext.Now(ctx),
	}
	if err := s.store.CreateOwner(ctx, owner); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not create owner")
	}

	s.metrics.IncrementEntityCreated("owner")
	s.emit(ctx, audit.EventOwnerCreated, owner.Name, "")
	return owner, nil
}

// UpdateOwner replaces the editable fields of an existing owner.
func (s *Service) UpdateOwner(ctx context.Context, ownerID id.OwnerID, in OwnerInput) (*insurance.Owner, error) {
	if err := requireOwnerID(ownerID); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	userID := requestcontext.UserID(ctx)
	owner, err := s.store.FindOwner(ctx, userID, ownerID)
	if err != nil {
		return nil, notFoundOr(err, "owner")
	}
	owner.Name = strings.TrimSpace(in.Name)
	owner.Address = in.Address
	owner.Phone = in.Phone
	owner.DOB = in.DOB
	if err := s.store.UpdateOwner(ctx, owner); err != nil {
		return nil, notFoundOr(err, "owner")
	}

	s.emit(ctx, audit.EventOwnerUpdated, owner.Name, "")
	return owner, nil
}

// DeleteOwner removes an owner and everything hanging off them: vehicles,
// policies, accidents, and payments.
func (s *Service) DeleteOwner(ctx context.Context, ownerID id.OwnerID) error {
	if err := requireOwnerID(ownerID); err != nil {
		return err
	}
	userID := requestcontext.UserID(ctx)
	owner, err := s.store.FindOwner(ctx, userID, ownerID)
	if err != nil {
		return notFoundOr(err, "owner")
	}
	if err := s.store.DeleteOwner(ctx, userID, ownerID); err != nil {
		return notFoundOr(err, "owner")
	}

	s.emit(ctx, audit.EventOwnerDeleted, owner.Name, "")
	return nil
}

// GetOwner fetches one of the current user's owners.
func (s *Service) GetOwner(ctx context.Context, ownerID id.OwnerID) (*insurance.Owner, error) {
	if err := requireOwnerID(ownerID); err != nil {
		return nil, err
	}
	owner, err := s.store.FindOwner(ctx, requestcontext.UserID(ctx), ownerID)
	if err != nil {
		return nil, notFoundOr(err, "owner")
	}
	return owner, nil
}

// ListOwners lists the current user's owners, optionally filtered by a
// case-insensitive name substring.
func (s *Service) ListOwners(ctx context.Context, search string) ([]*insurance.Owner, error) {
	owners, err := s.store.ListOwners(ctx, requestcontext.UserID(ctx), strings.TrimSpace(search))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not list owners")
	}
	return owners, nil
}
