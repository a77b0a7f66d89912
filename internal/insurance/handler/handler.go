// Package handler exposes the insurance domain over HTTP. All routes sit
// behind the auth middleware; the acting user comes from the request context.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"vims/internal/insurance"
	"vims/internal/insurance/service"
	id "vims/pkg/domain"
	"vims/pkg/platform/httputil"
)

// Service defines the insurance operations the handler needs.
type Service interface {
	CreateOwner(ctx context.Context, in service.OwnerInput) (*insurance.Owner, error)
	UpdateOwner(ctx context.Context, ownerID id.OwnerID, in service.OwnerInput) (*insurance.Owner, error)
	DeleteOwner(ctx context.Context, ownerID id.OwnerID) error
	GetOwner(ctx context.Context, ownerID id.OwnerID) (*insurance.Owner, error)
	ListOwners(ctx context.Context, search string) ([]*insurance.Owner, error)

	CreateVehicle(ctx context.Context, in service.VehicleInput) (*insurance.Vehicle, error)
	UpdateVehicle(ctx context.Context, vehicleID id.VehicleID, in service.VehicleInput) (*insurance.Vehicle, error)
	DeleteVehicle(ctx context.Context, vehicleID id.VehicleID) error
	GetVehicle(ctx context.Context, vehicleID id.VehicleID) (*insurance.Vehicle, error)
	ListVehicles(ctx context.Context, ownerID *id.OwnerID) ([]*insurance.Vehicle, error)

	CreatePolicy(ctx context.Context, in service.PolicyInput) (*insurance.Policy, error)
	DeletePolicy(ctx context.Context, policyID id.PolicyID) error
	GetPolicy(ctx context.Context, policyID id.PolicyID) (*insurance.Policy, error)
	ListPolicies(ctx context.Context, ownerID *id.OwnerID) ([]*insurance.Policy, error)
	PreviewPolicyNumber(ctx context.Context) (string, error)
	CheckPolicyStatus(ctx context.Context, policyID id.PolicyID, asOf time.Time) (*service.PolicyStatusReport, error)

	ReportAccident(ctx context.Context, in service.AccidentInput) (*insurance.Accident, error)
	ListAccidents(ctx context.Context) ([]*insurance.Accident, error)
	RecordPayment(ctx context.Context, in service.PaymentInput) (*insurance.Payment, error)
	ListPayments(ctx context.Context) ([]*insurance.Payment, error)

	Dashboard(ctx context.Context) (insurance.EntityCounts, error)
}

// Handler wires insurance endpoints to the insurance service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs an insurance handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts all insurance endpoints. Callers must wrap the router in
// the auth middleware.
func (h *Handler) Register(r chi.Router) {
	r.Route("/owners", func(r chi.Router) {
		r.Get("/", h.handleListOwners)
		r.Post("/", h.handleCreateOwner)
		r.Get("/{ownerID}", h.handleGetOwner)
		r.Put("/{ownerID}", h.handleUpdateOwner)
		r.Delete("/{ownerID}", h.handleDeleteOwner)
	})
	r.Route("/vehicles", func(r chi.Router) {
		r.Get("/", h.handleListVehicles)
		r.Post("/", h.handleCreateVehicle)
		r.Get("/{vehicleID}", h.handleGetVehicle)
		r.Put("/{vehicleID}", h.handleUpdateVehicle)
		r.Delete("/{vehicleID}", h.handleDeleteVehicle)
	})
	r.Route("/policies", func(r chi.Router) {
		r.Get("/", h.handleListPolicies)
		r.Post("/", h.handleCreatePolicy)
		r.Get("/types", h.handlePolicyTypes)
		r.Get("/next-number", h.handleNextPolicyNumber)
		r.Get("/{policyID}", h.handleGetPolicy)
		r.Delete("/{policyID}", h.handleDeletePolicy)
		r.Get("/{policyID}/status", h.handlePolicyStatus)
	})
	r.Route("/accidents", func(r chi.Router) {
		r.Get("/", h.handleListAccidents)
		r.Post("/", h.handleReportAccident)
	})
	r.Route("/payments", func(r chi.Router) {
		r.Get("/", h.handleListPayments)
		r.Post("/", h.handleRecordPayment)
	})
	r.Get("/dashboard", h.handleDashboard)
}

type dashboardResponse struct {
	Owners         int  `json:"owners"`
	Vehicles       int  `json:"vehicles"`
	Policies       int  `json:"policies"`
	Accidents      int  `json:"accidents"`
	Payments       int  `json:"payments"`
	HasAllEntities bool `json:"has_all_entities"`
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	counts, err := h.service.Dashboard(r.Context())
	if err != nil {
		if h.logger != nil {
			h.logger.ErrorContext(r.Context(), "dashboard load failed", "error", err)
		}
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, dashboardResponse{
		Owners:         counts.Owners,
		Vehicles:       counts.Vehicles,
		Policies:       counts.Policies,
		Accidents:      counts.Accidents,
		Payments:       counts.Payments,
		HasAllEntities: counts.HasAllEntities(),
	})
}
