//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"vims/internal/insurance"
	id "vims/pkg/domain"
	"vims/pkg/platform/sentinel"
	"vims/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	pg     *containers.PostgresContainer
	store  *Store
	ctx    context.Context
	userID id.UserID
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.pg = containers.NewPostgresContainer(s.T())
	s.store = New(s.pg.DB)
	s.ctx = context.Background()
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.pg.TruncateAll(s.ctx))

	s.userID = id.NewUserID()
	_, err := s.pg.DB.ExecContext(s.ctx,
		`INSERT INTO users (id, username, password_hash) VALUES ($1, $2, 'x')`,
		uuid.UUID(s.userID), "user-"+s.userID.String())
	s.Require().NoError(err)
}

func (s *PostgresStoreSuite) seedGraph() (*insurance.Owner, *insurance.Vehicle, *insurance.Policy) {
	now := time.Now().UTC()

	owner := &insurance.Owner{ID: id.NewOwnerID(), UserID: s.userID, Name: "Ravi Kumar", Address: "12 MG Road", Phone: "9876543210", CreatedAt: now}
	s.Require().NoError(s.store.CreateOwner(s.ctx, owner))

	vehicle := &insurance.Vehicle{
		ID: id.NewVehicleID(), UserID: s.userID, OwnerID: owner.ID,
		Title: "Family Car", VehicleNumber: "KA-01-AB-1234",
		ModelName: "Swift", ModelYear: 2021, VehicleType: "Car", VIN: "ABCDEFGHIJ",
		CreatedAt: now,
	}
	s.Require().NoError(s.store.CreateVehicle(s.ctx, vehicle))

	policy := &insurance.Policy{
		ID: id.NewPolicyID(), UserID: s.userID, OwnerID: owner.ID, VehicleID: vehicle.ID,
		PolicyNumber: "POL1001", PolicyType: "Essential Cover (3 months)",
		StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 4, 10, 0, 0, 0, 0, time.UTC),
		Premium:   3000, CreatedAt: now,
	}
	s.Require().NoError(s.store.CreatePolicy(s.ctx, policy))
	return owner, vehicle, policy
}

func (s *PostgresStoreSuite) TestRoundTrip() {
	owner, vehicle, policy := s.seedGraph()

	gotOwner, err := s.store.FindOwner(s.ctx, s.userID, owner.ID)
	s.Require().NoError(err)
	s.Equal(owner.Name, gotOwner.Name)

	gotVehicle, err := s.store.FindVehicle(s.ctx, s.userID, vehicle.ID)
	s.Require().NoError(err)
	s.Equal(vehicle.VehicleNumber, gotVehicle.VehicleNumber)

	gotPolicy, err := s.store.FindPolicy(s.ctx, s.userID, policy.ID)
	s.Require().NoError(err)
	s.Equal(policy.PolicyNumber, gotPolicy.PolicyNumber)
	s.Equal(policy.StartDate, gotPolicy.StartDate)
	s.Equal(policy.EndDate, gotPolicy.EndDate)
}

func (s *PostgresStoreSuite) TestUniqueConstraints() {
	owner, vehicle, policy := s.seedGraph()

	dupVehicle := *vehicle
	dupVehicle.ID = id.NewVehicleID()
	s.ErrorIs(s.store.CreateVehicle(s.ctx, &dupVehicle), sentinel.ErrConflict)

	dupPolicy := *policy
	dupPolicy.ID = id.NewPolicyID()
	s.ErrorIs(s.store.CreatePolicy(s.ctx, &dupPolicy), sentinel.ErrConflict)

	_ = owner
}

func (s *PostgresStoreSuite) TestOneAccidentAndOnePaymentPerPolicy() {
	_, _, policy := s.seedGraph()

	accident := &insurance.Accident{
		ID: id.NewAccidentID(), PolicyID: policy.ID, OwnerID: policy.OwnerID, VehicleID: policy.VehicleID,
		DateOfAccident: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		Location:       "MG Road", Description: "collision",
		PolicyStatus: insurance.StatusActive, ReportedAt: time.Now().UTC(),
	}
	s.Require().NoError(s.store.CreateAccident(s.ctx, accident))

	second := *accident
	second.ID = id.NewAccidentID()
	s.ErrorIs(s.store.CreateAccident(s.ctx, &second), sentinel.ErrConflict)

	payment := &insurance.Payment{
		ID: id.NewPaymentID(), UserID: s.userID, PolicyID: policy.ID, AccidentID: accident.ID,
		OwnerID: policy.OwnerID, VehicleID: policy.VehicleID,
		PaymentRef: "PAY-001", Amount: 3000,
		PaymentDate: time.Date(2024, 2, 5, 0, 0, 0, 0, time.UTC), PaymentMethod: "UPI",
	}
	s.Require().NoError(s.store.CreatePayment(s.ctx, payment))

	dupPayment := *payment
	dupPayment.ID = id.NewPaymentID()
	dupPayment.PaymentRef = "PAY-002"
	s.ErrorIs(s.store.CreatePayment(s.ctx, &dupPayment), sentinel.ErrConflict)
}

func (s *PostgresStoreSuite) TestDeleteOwnerCascades() {
	owner, _, policy := s.seedGraph()

	accident := &insurance.Accident{
		ID: id.NewAccidentID(), PolicyID: policy.ID, OwnerID: owner.ID, VehicleID: policy.VehicleID,
		DateOfAccident: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		Location:       "MG Road", PolicyStatus: insurance.StatusActive, ReportedAt: time.Now().UTC(),
	}
	s.Require().NoError(s.store.CreateAccident(s.ctx, accident))

	s.Require().NoError(s.store.DeleteOwner(s.ctx, s.userID, owner.ID))

	counts, err := s.store.Counts(s.ctx, s.userID)
	s.Require().NoError(err)
	s.Equal(insurance.EntityCounts{}, counts)
}

func (s *PostgresStoreSuite) TestScopeMissesReadAsNotFound() {
	owner, _, _ := s.seedGraph()

	stranger := id.NewUserID()
	_, err := s.store.FindOwner(s.ctx, stranger, owner.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestMaxPolicyNumber() {
	max, err := s.store.MaxPolicyNumber(s.ctx)
	s.Require().NoError(err)
	s.Equal("", max)

	s.seedGraph()

	max, err = s.store.MaxPolicyNumber(s.ctx)
	s.Require().NoError(err)
	s.Equal("POL1001", max)
}
