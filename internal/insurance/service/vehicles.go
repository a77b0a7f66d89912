package service

import (
	"context"
	"errors"
	"strings"

	"vims/internal/insurance"
	id "vims/pkg/domain"
	dErrors "vims/pkg/domain-errors"
	audit "vims/pkg/platform/audit"
	"vims/pkg/platform/sentinel"
	"vims/pkg/requestcontext"
)

// VehicleInput carries the caller-editable vehicle fields.
type VehicleInput struct {
	OwnerID       id.OwnerID
	Title         string
	VehicleNumber string
	ModelName     string
	ModelYear     int
	VehicleType   string
	VIN           string
}

func (in *VehicleInput) validate() error {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		in.Title = insurance.DefaultVehicleTitle
	}
	if in.OwnerID.IsNil() {
		return dErrors.New(dErrors.CodeInvalidInput, "owner id is required")
	}
	if !insurance.IsValidVehicleNumber(in.VehicleNumber) {
		return dErrors.New(dErrors.CodeInvalidInput, "vehicle number must match the format KA-01-AB-1234")
	}
	if !insurance.IsValidVIN(in.VIN) {
		return dErrors.New(dErrors.CodeInvalidInput, "vin must be exactly 10 characters")
	}
	return nil
}

// CreateVehicle registers a vehicle under one of the current user's owners.
func (s *Service) CreateVehicle(ctx context.Context, in VehicleInput) (*insurance.Vehicle, error) {
	ctx, span := s.tracer.Start(ctx, "insurance.CreateVehicle")
	defer span.End()

	if err := in.validate(); err != nil {
		return nil, err
	}

	userID := requestcontext.UserID(ctx)
	if _, err := s.store.FindOwner(ctx, userID, in.OwnerID); err != nil {
		return nil, notFoundOr(err, "owner")
	}

	vehicle := &insurance.Vehicle{
		ID:            id.NewVehicleID(),
		UserID:        userID,
		OwnerID:       in.OwnerID,
		Title:         in.Title,
		VehicleNumber: in.VehicleNumber,
		ModelName:     in.ModelName,
		ModelYear:     in.ModelYear,
		VehicleType:   in.VehicleType,
		VIN:           in.VIN,
		CreatedAt:     requestcontext.Now(ctx),
	}
	if err := s.store.CreateVehicle(ctx, vehicle); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeDuplicate, "vehicle number already exists")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not create vehicle")
	}

	s.metrics.IncrementEntityCreated("vehicle")
	s.emit(ctx, audit.EventVehicleCreated, vehicle.VehicleNumber, "")
	return vehicle, nil
}

// UpdateVehicle replaces the editable fields of an existing vehicle. The
// vehicle may be moved to a different owner of the same user.
func (s *Service) UpdateVehicle(ctx context.Context, vehicleID id.VehicleID, in VehicleInput) (*insurance.Vehicle, error) {
	if err := requireVehicleID(vehicleID); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	userID := requestcontext.UserID(ctx)
	vehicle, err := s.store.FindVehicle(ctx, userID, vehicleID)
	if err != nil {
		return nil, notFoundOr(err, "vehicle")
	}
	if _, err := s.store.FindOwner(ctx, userID, in.OwnerID); err != nil {
		return nil, notFoundOr(err, "owner")
	}

	vehicle.OwnerID = in.OwnerID
	vehicle.Title = in.Title
	vehicle.VehicleNumber = in.VehicleNumber
	vehicle.ModelName = in.ModelName
	vehicle.ModelYear = in.ModelYear
	vehicle.VehicleType = in.VehicleType
	vehicle.VIN = in.VIN
	if err := s.store.UpdateVehicle(ctx, vehicle); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeDuplicate, "vehicle number already exists")
		}
		return nil, notFoundOr(err, "vehicle")
	}

	s.emit(ctx, audit.EventVehicleUpdated, vehicle.VehicleNumber, "")
	return vehicle, nil
}

// DeleteVehicle removes a vehicle together with its policies and their
// accidents and payments.
func (s *Service) DeleteVehicle(ctx context.Context, vehicleID id.VehicleID) error {
	if err := requireVehicleID(vehicleID); err != nil {
		return err
	}
	userID := requestcontext.UserID(ctx)
	vehicle, err := s.store.FindVehicle(ctx, userID, vehicleID)
	if err != nil {
		return notFoundOr(err, "vehicle")
	}
	if err := s.store.DeleteVehicle(ctx, userID, vehicleID); err != nil {
		return notFoundOr(err, "vehicle")
	}

	s.emit(ctx, audit.EventVehicleDeleted, vehicle.VehicleNumber, "")
	return nil
}

// GetVehicle fetches one of the current user's vehicles.
func (s *Service) GetVehicle(ctx context.Context, vehicleID id.VehicleID) (*insurance.Vehicle, error) {
	if err := requireVehicleID(vehicleID); err != nil {
		return nil, err
	}
	vehicle, err := s.store.FindVehicle(ctx, requestcontext.UserID(ctx), vehicleID)
	if err != nil {
		return nil, notFoundOr(err, "vehicle")
	}
	return vehicle, nil
}

// ListVehicles lists the current user's vehicles, optionally only one
// owner's.
func (s *Service) ListVehicles(ctx context.Context, ownerID *id.OwnerID) ([]*insurance.Vehicle, error) {
	vehicles, err := s.store.ListVehicles(ctx, requestcontext.UserID(ctx), ownerID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not list vehicles")
	}
	return vehicles, nil
}
