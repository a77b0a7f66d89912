package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"vims/internal/insurance"
	"vims/internal/insurance/service"
	id "vims/pkg/domain"
	dErrors "vims/pkg/domain-errors"
	"vims/pkg/platform/httputil"
	"vims/pkg/requestcontext"
)

type policyRequest struct {
	OwnerID    string `json:"owner_id"`
	VehicleID  string `json:"vehicle_id"`
	PolicyType string `json:"policy_type"`
	StartDate  string `json:"start_date"`
}

type policyResponse struct {
	ID           string `json:"id"`
	OwnerID      string `json:"owner_id"`
	VehicleID    string `json:"vehicle_id"`
	PolicyNumber string `json:"policy_number"`
	PolicyType   string `json:"policy_type"`
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date"`
	Premium      int64  `json:"premium"`
	IsActive     bool   `json:"is_active"`
}

// renderPolicy annotates the policy with its activity as of now.
func renderPolicy(p *insurance.Policy, now time.Time) policyResponse {
	return policyResponse{
		ID:           p.ID.String(),
		OwnerID:      p.OwnerID.String(),
		VehicleID:    p.VehicleID.String(),
		PolicyNumber: p.PolicyNumber,
		PolicyType:   p.PolicyType,
		StartDate:    p.StartDate.Format(insurance.DateLayout),
		EndDate:      p.EndDate.Format(insurance.DateLayout),
		Premium:      p.Premium,
		IsActive:     insurance.StatusAt(p, now) == insurance.StatusActive,
	}
}

func policyIDParam(w http.ResponseWriter, r *http.Request) (id.PolicyID, bool) {
	policyID, err := id.ParsePolicyID(chi.URLParam(r, "policyID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid policy id"))
		return id.PolicyID{}, false
	}
	return policyID, true
}

func (h *Handler) handleCreatePolicy(w http.ResponseWriter, r *http.Request) {
	var req policyRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	ownerID, err := id.ParseOwnerID(req.OwnerID)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid owner id"))
		return
	}
	vehicleID, err := id.ParseVehicleID(req.VehicleID)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid vehicle id"))
		return
	}
	startDate, err := insurance.ParseDate(req.StartDate, "start_date")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	policy, err := h.service.CreatePolicy(r.Context(), service.PolicyInput{
		OwnerID:    ownerID,
		VehicleID:  vehicleID,
		PolicyType: req.PolicyType,
		StartDate:  startDate,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, renderPolicy(policy, requestcontext.Now(r.Context())))
}

func (h *Handler) handleDeletePolicy(w http.ResponseWriter, r *http.Request) {
	policyID, ok := policyIDParam(w, r)
	if !ok {
		return
	}
	if err := h.service.DeletePolicy(r.Context(), policyID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleGetPolicy(w http.ResponseWriter, r *http.Request) {
	policyID, ok := policyIDParam(w, r)
	if !ok {
		return
	}
	policy, err := h.service.GetPolicy(r.Context(), policyID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, renderPolicy(policy, requestcontext.Now(r.Context())))
}

func (h *Handler) handleListPolicies(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFilter(w, r)
	if !ok {
		return
	}
	policies, err := h.service.ListPolicies(r.Context(), owner)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	now := requestcontext.Now(r.Context())
	out := make([]policyResponse, 0, len(policies))
	for _, policy := range policies {
		out = append(out, renderPolicy(policy, now))
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

type policyTypeResponse struct {
	PolicyType string `json:"policy_type"`
	TermMonths int    `json:"term_months"`
	Premium    int64  `json:"premium"`
}

func (h *Handler) handlePolicyTypes(w http.ResponseWriter, r *http.Request) {
	types := insurance.PolicyTypes()
	out := make([]policyTypeResponse, 0, len(types))
	for _, t := range types {
		opt, _ := insurance.LookupPolicyType(t)
		out = append(out, policyTypeResponse{
			PolicyType: t,
			TermMonths: opt.TermMonths,
			Premium:    opt.Premium,
		})
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) handleNextPolicyNumber(w http.ResponseWriter, r *http.Request) {
	number, err := h.service.PreviewPolicyNumber(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"policy_number": number})
}

type policyStatusResponse struct {
	PolicyNumber string `json:"policy_number"`
	AsOf         string `json:"as_of"`
	Status       string `json:"status"`
	IsActive     bool   `json:"is_active"`
	HasAccident  bool   `json:"has_accident"`
}

// handlePolicyStatus answers GET /policies/{policyID}/status?as_of=YYYY-MM-DD.
// Without a date the status is evaluated at the request time.
func (h *Handler) handlePolicyStatus(w http.ResponseWriter, r *http.Request) {
	policyID, ok := policyIDParam(w, r)
	if !ok {
		return
	}
	var asOf time.Time
	if raw := r.URL.Query().Get("as_of"); raw != "" {
		parsed, err := insurance.ParseDate(raw, "as_of")
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		asOf = parsed
	}

	report, err := h.service.CheckPolicyStatus(r.Context(), policyID, asOf)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, policyStatusResponse{
		PolicyNumber: report.PolicyNumber,
		AsOf:         report.AsOf.Format(insurance.DateLayout),
		Status:       string(report.Status),
		IsActive:     report.IsActive,
		HasAccident:  report.HasAccident,
	})
}
