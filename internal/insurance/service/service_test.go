package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"vims/internal/insurance"
	"vims/internal/insurance/store/memory"
	id "vims/pkg/domain"
	dErrors "vims/pkg/domain-errors"
	auditpublisher "vims/pkg/platform/audit/publisher"
	auditmemory "vims/pkg/platform/audit/store/memory"
	"vims/pkg/requestcontext"
)

// =============================================================================
// Insurance Service Test Suite
// =============================================================================
// The claims workflow (one accident, one payment, frozen policy status) and
// the ownership scoping rules live here, against the in-memory store that
// mirrors the PostgreSQL constraints.

type ServiceSuite struct {
	suite.Suite
	store   *memory.Store
	audits  *auditmemory.InMemoryStore
	service *Service

	userID id.UserID
	ctx    context.Context
	now    time.Time
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.store = memory.New()
	s.audits = auditmemory.NewInMemoryStore()
	s.service = NewService(s.store, auditpublisher.NewPublisher(s.audits), nil, nil)

	s.userID = id.NewUserID()
	s.now = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(requestcontext.WithUserID(context.Background(), s.userID), s.now)
}

func (s *ServiceSuite) ctxFor(userID id.UserID) context.Context {
	return requestcontext.WithTime(requestcontext.WithUserID(context.Background(), userID), s.now)
}

func date(str string) time.Time {
	t, err := time.Parse(insurance.DateLayout, str)
	if err != nil {
		panic(err)
	}
	return t
}

// seedOwnerVehicle creates an owner with one vehicle and returns both.
func (s *ServiceSuite) seedOwnerVehicle(ctx context.Context, plate string) (*insurance.Owner, *insurance.Vehicle) {
	owner, err := s.service.CreateOwner(ctx, OwnerInput{Name: "Ravi Kumar", Address: "12 MG Road", Phone: "9876543210"})
	s.Require().NoError(err)

	vehicle, err := s.service.CreateVehicle(ctx, VehicleInput{
		OwnerID:       owner.ID,
		Title:         "Family Car",
		VehicleNumber: plate,
		ModelName:     "Swift",
		ModelYear:     2021,
		VehicleType:   "Car",
		VIN:           "ABCDEFGHIJ",
	})
	s.Require().NoError(err)
	return owner, vehicle
}

func (s *ServiceSuite) seedPolicy(ctx context.Context, plate, startDate string) *insurance.Policy {
	owner, vehicle := s.seedOwnerVehicle(ctx, plate)
	policy, err := s.service.CreatePolicy(ctx, PolicyInput{
		OwnerID:    owner.ID,
		VehicleID:  vehicle.ID,
		PolicyType: "Essential Cover (3 months)",
		StartDate:  date(startDate),
	})
	s.Require().NoError(err)
	return policy
}

// =============================================================================
// Owner Tests
// =============================================================================

func (s *ServiceSuite) TestCreateOwner() {
	s.Run("requires a name", func() {
		_, err := s.service.CreateOwner(s.ctx, OwnerInput{Name: "   "})
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("creates and trims the name", func() {
		owner, err := s.service.CreateOwner(s.ctx, OwnerInput{Name: "  Meera Patel ", Phone: "9000000000"})
		s.NoError(err)
		s.Equal("Meera Patel", owner.Name)
		s.Equal(s.userID, owner.UserID)
	})
}

func (s *ServiceSuite) TestListOwnersSearch() {
	_, err := s.service.CreateOwner(s.ctx, OwnerInput{Name: "Ravi Kumar"})
	s.Require().NoError(err)
	_, err = s.service.CreateOwner(s.ctx, OwnerInput{Name: "Meera Patel"})
	s.Require().NoError(err)

	owners, err := s.service.ListOwners(s.ctx, "kum")
	s.NoError(err)
	s.Len(owners, 1)
	s.Equal("Ravi Kumar", owners[0].Name)

	owners, err = s.service.ListOwners(s.ctx, "")
	s.NoError(err)
	s.Len(owners, 2)
}

func (s *ServiceSuite) TestOwnerScoping() {
	owner, err := s.service.CreateOwner(s.ctx, OwnerInput{Name: "Ravi Kumar"})
	s.Require().NoError(err)

	otherCtx := s.ctxFor(id.NewUserID())

	s.Run("another user's owner reads as not found", func() {
		_, err := s.service.GetOwner(otherCtx, owner.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("another user cannot update it", func() {
		_, err := s.service.UpdateOwner(otherCtx, owner.ID, OwnerInput{Name: "Hijacked"})
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("another user cannot delete it", func() {
		err := s.service.DeleteOwner(otherCtx, owner.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

		_, err = s.service.GetOwner(s.ctx, owner.ID)
		s.NoError(err)
	})
}

func (s *ServiceSuite) TestDeleteOwnerCascades() {
	policy := s.seedPolicy(s.ctx, "KA-01-AB-1234", "2024-05-01")

	_, err := s.service.ReportAccident(s.ctx, AccidentInput{
		PolicyID:       policy.ID,
		DateOfAccident: date("2024-05-10"),
		Location:       "MG Road",
	})
	s.Require().NoError(err)

	err = s.service.DeleteOwner(s.ctx, policy.OwnerID)
	s.NoError(err)

	_, err = s.service.GetPolicy(s.ctx, policy.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	counts, err := s.service.Dashboard(s.ctx)
	s.NoError(err)
	s.Equal(insurance.EntityCounts{}, counts)
}

// =============================================================================
// Vehicle Tests
// =============================================================================

func (s *ServiceSuite) TestCreateVehicleValidation() {
	owner, err := s.service.CreateOwner(s.ctx, OwnerInput{Name: "Ravi Kumar"})
	s.Require().NoError(err)

	base := VehicleInput{
		OwnerID:       owner.ID,
		VehicleNumber: "KA-01-AB-1234",
		ModelName:     "Swift",
		ModelYear:     2021,
		VehicleType:   "Car",
		VIN:           "ABCDEFGHIJ",
	}

	s.Run("rejects a lowercase plate", func() {
		in := base
		in.VehicleNumber = "ka-01-ab-1234"
		_, err := s.service.CreateVehicle(s.ctx, in)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("rejects a short vin", func() {
		in := base
		in.VIN = "ABC"
		_, err := s.service.CreateVehicle(s.ctx, in)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("rejects an unknown owner", func() {
		in := base
		in.OwnerID = id.NewOwnerID()
		_, err := s.service.CreateVehicle(s.ctx, in)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("accepts a single-letter series plate", func() {
		in := base
		in.VehicleNumber = "KA-03-A-2882"
		_, err := s.service.CreateVehicle(s.ctx, in)
		s.NoError(err)
	})

	s.Run("defaults a blank title", func() {
		in := base
		in.VehicleNumber = "KA-04-CD-9001"
		in.Title = "  "
		vehicle, err := s.service.CreateVehicle(s.ctx, in)
		s.Require().NoError(err)
		s.Equal(insurance.DefaultVehicleTitle, vehicle.Title)
	})

	s.Run("rejects a duplicate plate", func() {
		_, err := s.service.CreateVehicle(s.ctx, base)
		s.Require().NoError(err)
		_, err = s.service.CreateVehicle(s.ctx, base)
		s.True(dErrors.HasCode(err, dErrors.CodeDuplicate))
	})
}

// =============================================================================
// Policy Tests
// =============================================================================

func (s *ServiceSuite) TestCreatePolicy() {
	owner, vehicle := s.seedOwnerVehicle(s.ctx, "KA-01-AB-1234")

	s.Run("rejects an unknown policy type", func() {
		_, err := s.service.CreatePolicy(s.ctx, PolicyInput{
			OwnerID: owner.ID, VehicleID: vehicle.ID,
			PolicyType: "Gold Plan", StartDate: date("2024-01-01"),
		})
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("rejects a vehicle that belongs to a different owner", func() {
		other, err := s.service.CreateOwner(s.ctx, OwnerInput{Name: "Meera Patel"})
		s.Require().NoError(err)
		_, err = s.service.CreatePolicy(s.ctx, PolicyInput{
			OwnerID: other.ID, VehicleID: vehicle.ID,
			PolicyType: "Essential Cover (3 months)", StartDate: date("2024-01-01"),
		})
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("derives number, dates, and premium", func() {
		policy, err := s.service.CreatePolicy(s.ctx, PolicyInput{
			OwnerID: owner.ID, VehicleID: vehicle.ID,
			PolicyType: "Essential Cover (3 months)", StartDate: date("2024-01-01"),
		})
		s.NoError(err)
		s.Equal("POL1001", policy.PolicyNumber)
		s.Equal(date("2024-01-01"), policy.StartDate)
		s.Equal(date("2024-04-10"), policy.EndDate)
		s.Equal(int64(3000), policy.Premium)
	})

	s.Run("numbers are sequential across users", func() {
		otherCtx := s.ctxFor(id.NewUserID())
		otherOwner, otherVehicle := s.seedOwnerVehicle(otherCtx, "MH-12-XY-0001")
		policy, err := s.service.CreatePolicy(otherCtx, PolicyInput{
			OwnerID: otherOwner.ID, VehicleID: otherVehicle.ID,
			PolicyType: "Standard Shield (6 months)", StartDate: date("2024-01-01"),
		})
		s.NoError(err)
		s.Equal("POL1002", policy.PolicyNumber)
	})
}

func (s *ServiceSuite) TestPreviewPolicyNumber() {
	number, err := s.service.PreviewPolicyNumber(s.ctx)
	s.NoError(err)
	s.Equal("POL1001", number)

	s.seedPolicy(s.ctx, "KA-01-AB-1234", "2024-01-01")

	number, err = s.service.PreviewPolicyNumber(s.ctx)
	s.NoError(err)
	s.Equal("POL1002", number)
}

func (s *ServiceSuite) TestCheckPolicyStatus() {
	policy := s.seedPolicy(s.ctx, "KA-01-AB-1234", "2024-01-01")

	s.Run("active inside the window", func() {
		report, err := s.service.CheckPolicyStatus(s.ctx, policy.ID, date("2024-04-10"))
		s.NoError(err)
		s.True(report.IsActive)
		s.Equal(insurance.StatusActive, report.Status)
		s.False(report.HasAccident)
	})

	s.Run("lapsed outside the window", func() {
		report, err := s.service.CheckPolicyStatus(s.ctx, policy.ID, date("2024-04-11"))
		s.NoError(err)
		s.False(report.IsActive)
	})

	s.Run("defaults to the request time", func() {
		// Request time is 2024-06-01, past the 2024-04-10 end.
		report, err := s.service.CheckPolicyStatus(s.ctx, policy.ID, time.Time{})
		s.NoError(err)
		s.False(report.IsActive)
		s.Equal(date("2024-06-01"), report.AsOf)
	})
}

// =============================================================================
// Claims Workflow Tests
// =============================================================================

func (s *ServiceSuite) TestReportAccident() {
	policy := s.seedPolicy(s.ctx, "KA-01-AB-1234", "2024-05-01")

	s.Run("freezes active status inside the window", func() {
		accident, err := s.service.ReportAccident(s.ctx, AccidentInput{
			PolicyID:       policy.ID,
			DateOfAccident: date("2024-05-15"),
			Location:       "MG Road",
			Description:    "rear-end collision",
		})
		s.NoError(err)
		s.Equal(insurance.StatusActive, accident.PolicyStatus)
	})

	s.Run("second report is rejected and the first is untouched", func() {
		first, err := s.store.FindAccidentByPolicy(s.ctx, policy.ID)
		s.Require().NoError(err)

		_, err = s.service.ReportAccident(s.ctx, AccidentInput{
			PolicyID:       policy.ID,
			DateOfAccident: date("2024-05-20"),
			Location:       "Ring Road",
		})
		s.True(dErrors.HasCode(err, dErrors.CodeAlreadyClaimed))

		unchanged, err := s.store.FindAccidentByPolicy(s.ctx, policy.ID)
		s.Require().NoError(err)
		s.Equal(first, unchanged)
	})
}

func (s *ServiceSuite) TestReportAccidentFreezesLapsedStatus() {
	policy := s.seedPolicy(s.ctx, "KA-01-AB-1234", "2024-01-01")

	accident, err := s.service.ReportAccident(s.ctx, AccidentInput{
		PolicyID:       policy.ID,
		DateOfAccident: date("2024-05-01"), // past the 2024-04-10 end
		Location:       "Highway 4",
	})
	s.NoError(err)
	s.Equal(insurance.StatusLapsed, accident.PolicyStatus)
}

func (s *ServiceSuite) TestRecordPayment() {
	policy := s.seedPolicy(s.ctx, "KA-01-AB-1234", "2024-05-01")

	s.Run("rejected before any accident", func() {
		_, err := s.service.RecordPayment(s.ctx, PaymentInput{
			PolicyID: policy.ID, PaymentRef: "PAY-001",
		})
		s.True(dErrors.HasCode(err, dErrors.CodeNoAccident))
	})

	_, err := s.service.ReportAccident(s.ctx, AccidentInput{
		PolicyID:       policy.ID,
		DateOfAccident: date("2024-05-15"),
		Location:       "MG Road",
	})
	s.Require().NoError(err)

	s.Run("requires a payment reference", func() {
		_, err := s.service.RecordPayment(s.ctx, PaymentInput{PolicyID: policy.ID})
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("zero amount defaults to the premium", func() {
		payment, err := s.service.RecordPayment(s.ctx, PaymentInput{
			PolicyID: policy.ID, PaymentRef: "PAY-001", PaymentMethod: "UPI",
		})
		s.NoError(err)
		s.Equal(int64(3000), payment.Amount)
		s.Equal(date("2024-06-01"), payment.PaymentDate)
	})

	s.Run("second payment is rejected", func() {
		_, err := s.service.RecordPayment(s.ctx, PaymentInput{
			PolicyID: policy.ID, PaymentRef: "PAY-002",
		})
		s.True(dErrors.HasCode(err, dErrors.CodePaymentExists))
	})
}

func (s *ServiceSuite) TestRecordPaymentLapsedAtAccident() {
	policy := s.seedPolicy(s.ctx, "KA-01-AB-1234", "2024-01-01")

	_, err := s.service.ReportAccident(s.ctx, AccidentInput{
		PolicyID:       policy.ID,
		DateOfAccident: date("2024-05-01"),
		Location:       "Highway 4",
	})
	s.Require().NoError(err)

	_, err = s.service.RecordPayment(s.ctx, PaymentInput{
		PolicyID: policy.ID, PaymentRef: "PAY-010",
	})
	s.True(dErrors.HasCode(err, dErrors.CodePolicyNotActive))
}

func (s *ServiceSuite) TestRecordPaymentDuplicateReference() {
	first := s.seedPolicy(s.ctx, "KA-01-AB-1234", "2024-05-01")
	second := s.seedPolicy(s.ctx, "KA-02-CD-5678", "2024-05-01")

	for _, policy := range []*insurance.Policy{first, second} {
		_, err := s.service.ReportAccident(s.ctx, AccidentInput{
			PolicyID:       policy.ID,
			DateOfAccident: date("2024-05-15"),
			Location:       "MG Road",
		})
		s.Require().NoError(err)
	}

	_, err := s.service.RecordPayment(s.ctx, PaymentInput{PolicyID: first.ID, PaymentRef: "PAY-001"})
	s.Require().NoError(err)

	_, err = s.service.RecordPayment(s.ctx, PaymentInput{PolicyID: second.ID, PaymentRef: "PAY-001"})
	s.True(dErrors.HasCode(err, dErrors.CodeDuplicate))
}

func (s *ServiceSuite) TestClaimsScoping() {
	policy := s.seedPolicy(s.ctx, "KA-01-AB-1234", "2024-05-01")
	otherCtx := s.ctxFor(id.NewUserID())

	_, err := s.service.ReportAccident(otherCtx, AccidentInput{
		PolicyID:       policy.ID,
		DateOfAccident: date("2024-05-15"),
		Location:       "MG Road",
	})
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	_, err = s.service.RecordPayment(otherCtx, PaymentInput{
		PolicyID: policy.ID, PaymentRef: "PAY-001",
	})
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

// =============================================================================
// End-to-End Workflow
// =============================================================================

func (s *ServiceSuite) TestFullClaimWorkflow() {
	policy := s.seedPolicy(s.ctx, "KA-01-AB-1234", "2024-05-01")

	accident, err := s.service.ReportAccident(s.ctx, AccidentInput{
		PolicyID:       policy.ID,
		DateOfAccident: date("2024-05-15"),
		Location:       "MG Road",
		Description:    "side swipe at junction",
	})
	s.Require().NoError(err)
	s.Equal(insurance.StatusActive, accident.PolicyStatus)

	payment, err := s.service.RecordPayment(s.ctx, PaymentInput{
		PolicyID:      policy.ID,
		PaymentRef:    "PAY-100",
		Amount:        2500,
		PaymentDate:   date("2024-05-20"),
		PaymentMethod: "Bank Transfer",
	})
	s.Require().NoError(err)
	s.Equal(accident.ID, payment.AccidentID)
	s.Equal(int64(2500), payment.Amount)

	counts, err := s.service.Dashboard(s.ctx)
	s.Require().NoError(err)
	s.Equal(insurance.EntityCounts{Owners: 1, Vehicles: 1, Policies: 1, Accidents: 1, Payments: 1}, counts)
	s.True(counts.HasAllEntities())

	events, err := s.audits.ListByUser(s.ctx, s.userID)
	s.Require().NoError(err)
	actions := make([]string, 0, len(events))
	for _, e := range events {
		actions = append(actions, e.Action)
	}
	s.Contains(actions, "policy_created")
	s.Contains(actions, "accident_reported")
	s.Contains(actions, "payment_recorded")
}
