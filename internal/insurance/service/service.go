// Package service orchestrates the insurance domain: entity lifecycle,
// policy numbering, and the claims workflow. All reads and writes are scoped
// to the authenticated user; an entity outside that scope is reported as not
// found.
package service

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"vims/internal/insurance"
	insmetrics "vims/internal/insurance/metrics"
	id "vims/pkg/domain"
	dErrors "vims/pkg/domain-errors"
	audit "vims/pkg/platform/audit"
	"vims/pkg/platform/sentinel"
	"vims/pkg/requestcontext"
)

// Auditor records insurance events.
type Auditor interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service implements the insurance operations over a Store.
type Service struct {
	store   insurance.Store
	auditor Auditor
	metrics *insmetrics.Metrics
	logger  *slog.Logger
	tracer  trace.Tracer
}

func NewService(store insurance.Store, auditor Auditor, m *insmetrics.Metrics, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:   store,
		auditor: auditor,
		metrics: m,
		logger:  logger,
		tracer:  otel.Tracer("vims/insurance"),
	}
}

// Dashboard returns the per-user entity counts. The UI hides the dashboard
// until the user has at least one of every entity kind.
func (s *Service) Dashboard(ctx context.Context) (insurance.EntityCounts, error) {
	counts, err := s.store.Counts(ctx, requestcontext.UserID(ctx))
	if err != nil {
		return insurance.EntityCounts{}, dErrors.Wrap(err, dErrors.CodeInternal, "could not load dashboard counts")
	}
	return counts, nil
}

func (s *Service) emit(ctx context.Context, action audit.Action, subject, reason string) {
	if s.auditor == nil {
		return
	}
	if err := s.auditor.Emit(ctx, audit.Event{
		UserID:  requestcontext.UserID(ctx),
		Action:  string(action),
		Subject: subject,
		Reason:  reason,
	}); err != nil {
		s.logger.Warn("audit emit failed", "action", action, "error", err)
	}
}

// notFoundOr translates a store read error: scope misses surface as the
// entity kind not existing, anything else is internal.
func notFoundOr(err error, kind string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, kind+" not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "could not load "+kind)
}

func requireOwnerID(ownerID id.OwnerID) error {
	if ownerID.IsNil() {
		return dErrors.New(dErrors.CodeInvalidInput, "owner id is required")
	}
	return nil
}

func requireVehicleID(vehicleID id.VehicleID) error {
	if vehicleID.IsNil() {
		return dErrors.New(dErrors.CodeInvalidInput, "vehicle id is required")
	}
	return nil
}

func requirePolicyID(policyID id.PolicyID) error {
	if policyID.IsNil() {
		return dErrors.New(dErrors.CodeInvalidInput, "policy id is required")
	}
	return nil
}
