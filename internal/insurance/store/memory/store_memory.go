// Package memory provides the in-memory insurance store used by tests and
// local development. Uniqueness rules mirror the PostgreSQL constraints so
// service behavior matches between backends.
package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"vims/internal/insurance"
	id "vims/pkg/domain"
	"vims/pkg/platform/sentinel"
)

// Store keeps all insurance entities in memory guarded by one lock.
type Store struct {
	mu        sync.RWMutex
	owners    map[id.OwnerID]*insurance.Owner
	vehicles  map[id.VehicleID]*insurance.Vehicle
	policies  map[id.PolicyID]*insurance.Policy
	accidents map[id.AccidentID]*insurance.Accident
	payments  map[id.PaymentID]*insurance.Payment
}

// New constructs an empty in-memory insurance store.
func New() *Store {
	return &Store{
		owners:    make(map[id.OwnerID]*insurance.Owner),
		vehicles:  make(map[id.VehicleID]*insurance.Vehicle),
		policies:  make(map[id.PolicyID]*insurance.Policy),
		accidents: make(map[id.AccidentID]*insurance.Accident),
		payments:  make(map[id.PaymentID]*insurance.Payment),
	}
}

// ----------------------------------------------------------------- Owners

func (s *Store) CreateOwner(_ context.Context, o *insurance.Owner) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *o
	s.owners[o.ID] = &copied
	return nil
}

func (s *Store) UpdateOwner(_ context.Context, o *insurance.Owner) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.owners[o.ID]
	if !ok || existing.UserID != o.UserID {
		return fmt.Errorf("owner not found: %w", sentinel.ErrNotFound)
	}
	copied := *o
	copied.CreatedAt = existing.CreatedAt
	s.owners[o.ID] = &copied
	return nil
}

func (s *Store) DeleteOwner(_ context.Context, userID id.UserID, ownerID id.OwnerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	owner, ok := s.owners[ownerID]
	if !ok || owner.UserID != userID {
		return fmt.Errorf("owner not found: %w", sentinel.ErrNotFound)
	}
	delete(s.owners, ownerID)
	for vid, v := range s.vehicles {
		if v.OwnerID == ownerID {
			delete(s.vehicles, vid)
		}
	}
	for pid, p := range s.policies {
		if p.OwnerID == ownerID {
			s.deletePolicyCascadeLocked(pid)
		}
	}
	return nil
}

func (s *Store) FindOwner(_ context.Context, userID id.UserID, ownerID id.OwnerID) (*insurance.Owner, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	owner, ok := s.owners[ownerID]
	if !ok || owner.UserID != userID {
		return nil, fmt.Errorf("owner not found: %w", sentinel.ErrNotFound)
	}
	copied := *owner
	return &copied, nil
}

func (s *Store) ListOwners(_ context.Context, userID id.UserID, search string) ([]*insurance.Owner, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	needle := strings.ToLower(search)
	var out []*insurance.Owner
	for _, owner := range s.owners {
		if owner.UserID != userID {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(owner.Name), needle) {
			continue
		}
		copied := *owner
		out = append(out, &copied)
	}
	return out, nil
}

// --------------------------------------------------------------- Vehicles

func (s *Store) CreateVehicle(_ context.Context, v *insurance.Vehicle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.vehicleNumberTakenLocked(v.VehicleNumber, v.ID) {
		return fmt.Errorf("vehicle number %q taken: %w", v.VehicleNumber, sentinel.ErrConflict)
	}
	copied := *v
	s.vehicles[v.ID] = &copied
	return nil
}

func (s *Store) UpdateVehicle(_ context.Context, v *insurance.Vehicle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.vehicles[v.ID]
	if !ok || existing.UserID != v.UserID {
		return fmt.Errorf("vehicle not found: %w", sentinel.ErrNotFound)
	}
	if s.vehicleNumberTakenLocked(v.VehicleNumber, v.ID) {
		return fmt.Errorf("vehicle number %q taken: %w", v.VehicleNumber, sentinel.ErrConflict)
	}
	copied := *v
	copied.CreatedAt = existing.CreatedAt
	s.vehicles[v.ID] = &copied
	return nil
}

func (s *Store) DeleteVehicle(_ context.Context, userID id.UserID, vehicleID id.VehicleID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	vehicle, ok := s.vehicles[vehicleID]
	if !ok || vehicle.UserID != userID {
		return fmt.Errorf("vehicle not found: %w", sentinel.ErrNotFound)
	}
	delete(s.vehicles, vehicleID)
	for pid, p := range s.policies {
		if p.VehicleID == vehicleID {
			s.deletePolicyCascadeLocked(pid)
		}
	}
	return nil
}

func (s *Store) FindVehicle(_ context.Context, userID id.UserID, vehicleID id.VehicleID) (*insurance.Vehicle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	vehicle, ok := s.vehicles[vehicleID]
	if !ok || vehicle.UserID != userID {
		return nil, fmt.Errorf("vehicle not found: %w", sentinel.ErrNotFound)
	}
	copied := *vehicle
	return &copied, nil
}

func (s *Store) ListVehicles(_ context.Context, userID id.UserID, ownerID *id.OwnerID) ([]*insurance.Vehicle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*insurance.Vehicle
	for _, vehicle := range s.vehicles {
		if vehicle.UserID != userID {
			continue
		}
		if ownerID != nil && vehicle.OwnerID != *ownerID {
			continue
		}
		copied := *vehicle
		out = append(out, &copied)
	}
	return out, nil
}

func (s *Store) vehicleNumberTakenLocked(number string, self id.VehicleID) bool {
	for vid, v := range s.vehicles {
		if vid != self && v.VehicleNumber == number {
			return true
		}
	}
	return false
}

// --------------------------------------------------------------- Policies

func (s *Store) CreatePolicy(_ context.Context, p *insurance.Policy) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.policies {
		if existing.PolicyNumber == p.PolicyNumber {
			return fmt.Errorf("policy number %q taken: %w", p.PolicyNumber, sentinel.ErrConflict)
		}
	}
	copied := *p
	s.policies[p.ID] = &copied
	return nil
}

func (s *Store) DeletePolicy(_ context.Context, userID id.UserID, policyID id.PolicyID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	policy, ok := s.policies[policyID]
	if !ok || policy.UserID != userID {
		return fmt.Errorf("policy not found: %w", sentinel.ErrNotFound)
	}
	s.deletePolicyCascadeLocked(policyID)
	return nil
}

func (s *Store) deletePolicyCascadeLocked(policyID id.PolicyID) {
	delete(s.policies, policyID)
	for aid, a := range s.accidents {
		if a.PolicyID == policyID {
			delete(s.accidents, aid)
		}
	}
	for pid, p := range s.payments {
		if p.PolicyID == policyID {
			delete(s.payments, pid)
		}
	}
}

func (s *Store) FindPolicy(_ context.Context, userID id.UserID, policyID id.PolicyID) (*insurance.Policy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	policy, ok := s.policies[policyID]
	if !ok || policy.UserID != userID {
		return nil, fmt.Errorf("policy not found: %w", sentinel.ErrNotFound)
	}
	copied := *policy
	return &copied, nil
}

func (s *Store) ListPolicies(_ context.Context, userID id.UserID, ownerID *id.OwnerID) ([]*insurance.Policy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*insurance.Policy
	for _, policy := range s.policies {
		if policy.UserID != userID {
			continue
		}
		if ownerID != nil && policy.OwnerID != *ownerID {
			continue
		}
		copied := *policy
		out = append(out, &copied)
	}
	return out, nil
}

func (s *Store) MaxPolicyNumber(_ context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	max := ""
	for _, policy := range s.policies {
		if policy.PolicyNumber > max {
			max = policy.PolicyNumber
		}
	}
	return max, nil
}

// -------------------------------------------------------------- Accidents

func (s *Store) CreateAccident(_ context.Context, a *insurance.Accident) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.accidents {
		if existing.PolicyID == a.PolicyID {
			return fmt.Errorf("policy already has an accident: %w", sentinel.ErrConflict)
		}
	}
	copied := *a
	s.accidents[a.ID] = &copied
	return nil
}

func (s *Store) FindAccidentByPolicy(_ context.Context, policyID id.PolicyID) (*insurance.Accident, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, accident := range s.accidents {
		if accident.PolicyID == policyID {
			copied := *accident
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("accident not found: %w", sentinel.ErrNotFound)
}

func (s *Store) HasAccident(_ context.Context, policyID id.PolicyID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, accident := range s.accidents {
		if accident.PolicyID == policyID {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) ListAccidents(_ context.Context, userID id.UserID) ([]*insurance.Accident, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*insurance.Accident
	for _, accident := range s.accidents {
		policy, ok := s.policies[accident.PolicyID]
		if !ok || policy.UserID != userID {
			continue
		}
		copied := *accident
		out = append(out, &copied)
	}
	return out, nil
}

// --------------------------------------------------------------- Payments

func (s *Store) CreatePayment(_ context.Context, p *insurance.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.payments {
		if existing.PolicyID == p.PolicyID {
			return fmt.Errorf("policy already has a payment: %w", sentinel.ErrConflict)
		}
		if existing.PaymentRef == p.PaymentRef {
			return fmt.Errorf("payment ref %q taken: %w", p.PaymentRef, sentinel.ErrConflict)
		}
	}
	copied := *p
	s.payments[p.ID] = &copied
	return nil
}

func (s *Store) HasPayment(_ context.Context, policyID id.PolicyID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, payment := range s.payments {
		if payment.PolicyID == policyID {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) ListPayments(_ context.Context, userID id.UserID) ([]*insurance.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*insurance.Payment
	for _, payment := range s.payments {
		if payment.UserID != userID {
			continue
		}
		copied := *payment
		out = append(out, &copied)
	}
	return out, nil
}

// ---------------------------------------------------------------- Counts

func (s *Store) Counts(_ context.Context, userID id.UserID) (insurance.EntityCounts, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var c insurance.EntityCounts
	for _, o := range s.owners {
		if o.UserID == userID {
			c.Owners++
		}
	}
	for _, v := range s.vehicles {
		if v.UserID == userID {
			c.Vehicles++
		}
	}
	for _, p := range s.policies {
		if p.UserID == userID {
			c.Policies++
		}
	}
	for _, a := range s.accidents {
		if policy, ok := s.policies[a.PolicyID]; ok && policy.UserID == userID {
			c.Accidents++
		}
	}
	for _, p := range s.payments {
		if p.UserID == userID {
			c.Payments++
		}
	}
	return c, nil
}
