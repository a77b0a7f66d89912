package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"vims/internal/insurance"
	id "vims/pkg/domain"
	dErrors "vims/pkg/domain-errors"
	audit "vims/pkg/platform/audit"
	"vims/pkg/platform/sentinel"
	"vims/pkg/requestcontext"
)

// AccidentInput carries an accident report.
type AccidentInput struct {
	PolicyID       id.PolicyID
	DateOfAccident time.Time
	Location       string
	Description    string
}

// ReportAccident files the single claim a policy can carry. The policy's
// Active/Lapsed status at the accident date is frozen onto the accident
// record and later drives payment eligibility.
func (s *Service) ReportAccident(ctx context.Context, in AccidentInput) (*insurance.Accident, error) {
	ctx, span := s.tracer.Start(ctx, "insurance.ReportAccident")
	defer span.End()

	if err := requirePolicyID(in.PolicyID); err != nil {
		return nil, err
	}
	if in.DateOfAccident.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "accident date is required")
	}

	userID := requestcontext.UserID(ctx)
	policy, err := s.store.FindPolicy(ctx, userID, in.PolicyID)
	if err != nil {
		return nil, notFoundOr(err, "policy")
	}

	hasAccident, err := s.store.HasAccident(ctx, in.PolicyID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not check policy claims")
	}
	if err := insurance.CanReportAccident(hasAccident); err != nil {
		s.metrics.IncrementAccidentOutcome("already_claimed")
		s.emit(ctx, audit.EventAccidentRejected, policy.PolicyNumber, string(dErrors.CodeAlreadyClaimed))
		return nil, err
	}

	accident := &insurance.Accident{
		ID:             id.NewAccidentID(),
		PolicyID:       policy.ID,
		OwnerID:        policy.OwnerID,
		VehicleID:      policy.VehicleID,
		DateOfAccident: insurance.DateOnly(in.DateOfAccident),
		Location:       strings.TrimSpace(in.Location),
		Description:    in.Description,
		PolicyStatus:   insurance.StatusAt(policy, in.DateOfAccident),
		ReportedAt:     requestcontext.Now(ctx),
	}
	if err := s.store.CreateAccident(ctx, accident); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			// Lost a race with a concurrent report for the same policy.
			s.metrics.IncrementAccidentOutcome("already_claimed")
			s.emit(ctx, audit.EventAccidentRejected, policy.PolicyNumber, string(dErrors.CodeAlreadyClaimed))
			return nil, dErrors.New(dErrors.CodeAlreadyClaimed, "policy has already been claimed")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not record accident")
	}

	s.metrics.IncrementAccidentOutcome("reported")
	s.metrics.IncrementEntityCreated("accident")
	s.emit(ctx, audit.EventAccidentReported, policy.PolicyNumber, "")
	return accident, nil
}

// ListAccidents lists accidents across the current user's policies.
func (s *Service) ListAccidents(ctx context.Context) ([]*insurance.Accident, error) {
	accidents, err := s.store.ListAccidents(ctx, requestcontext.UserID(ctx))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not list accidents")
	}
	return accidents, nil
}

// PaymentInput carries a claim settlement.
type PaymentInput struct {
	PolicyID      id.PolicyID
	PaymentRef    string
	Amount        int64
	PaymentDate   time.Time
	PaymentMethod string
}

// RecordPayment settles a policy's claim. Eligibility gates run in a fixed
// order so the surfaced rejection reason is deterministic: an existing
// payment, then a missing accident, then a policy lapsed at the accident
// date. A zero amount defaults to the policy premium.
func (s *Service) RecordPayment(ctx context.Context, in PaymentInput) (*insurance.Payment, error) {
	ctx, span := s.tracer.Start(ctx, "insurance.RecordPayment")
	defer span.End()

	if err := requirePolicyID(in.PolicyID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.PaymentRef) == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "payment reference is required")
	}
	if in.Amount < 0 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "amount must not be negative")
	}

	userID := requestcontext.UserID(ctx)
	policy, err := s.store.FindPolicy(ctx, userID, in.PolicyID)
	if err != nil {
		return nil, notFoundOr(err, "policy")
	}

	hasPayment, err := s.store.HasPayment(ctx, in.PolicyID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not check policy payments")
	}
	accident, err := s.store.FindAccidentByPolicy(ctx, in.PolicyID)
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not load policy accident")
	}
	if err := insurance.CanRecordPayment(accident, hasPayment); err != nil {
		reason := string(dErrors.CodeOf(err))
		s.metrics.IncrementPaymentOutcome(reason)
		s.emit(ctx, audit.EventPaymentRejected, policy.PolicyNumber, reason)
		return nil, err
	}

	amount := in.Amount
	if amount == 0 {
		amount = policy.Premium
	}
	paymentDate := in.PaymentDate
	if paymentDate.IsZero() {
		paymentDate = requestcontext.Now(ctx)
	}

	payment := &insurance.Payment{
		ID:            id.NewPaymentID(),
		UserID:        userID,
		PolicyID:      policy.ID,
		AccidentID:    accident.ID,
		OwnerID:       policy.OwnerID,
		VehicleID:     policy.VehicleID,
		PaymentRef:    strings.TrimSpace(in.PaymentRef),
		Amount:        amount,
		PaymentDate:   insurance.DateOnly(paymentDate),
		PaymentMethod: in.PaymentMethod,
	}
	if err := s.store.CreatePayment(ctx, payment); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			// Either a concurrent payment for the policy or a reused
			// payment reference; recheck to surface the right reason.
			if taken, checkErr := s.store.HasPayment(ctx, in.PolicyID); checkErr == nil && taken {
				s.metrics.IncrementPaymentOutcome(string(dErrors.CodePaymentExists))
				s.emit(ctx, audit.EventPaymentRejected, policy.PolicyNumber, string(dErrors.CodePaymentExists))
				return nil, dErrors.New(dErrors.CodePaymentExists, "payment already exists for this policy")
			}
			return nil, dErrors.New(dErrors.CodeDuplicate, "payment reference already exists")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not record payment")
	}

	s.metrics.IncrementPaymentOutcome("recorded")
	s.metrics.IncrementEntityCreated("payment")
	s.emit(ctx, audit.EventPaymentRecorded, payment.PaymentRef, "")
	return payment, nil
}

// ListPayments lists the current user's recorded payments.
func (s *Service) ListPayments(ctx context.Context) ([]*insurance.Payment, error) {
	payments, err := s.store.ListPayments(ctx, requestcontext.UserID(ctx))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not list payments")
	}
	return payments, nil
}
