package handler

import (
	"net/http"

	"vims/internal/insurance"
	"vims/internal/insurance/service"
	id "vims/pkg/domain"
	dErrors "vims/pkg/domain-errors"
	"vims/pkg/platform/httputil"
)

type accidentRequest struct {
	PolicyID       string `json:"policy_id"`
	DateOfAccident string `json:"date_of_accident"`
	Location       string `json:"location"`
	Description    string `json:"description"`
}

type accidentResponse struct {
	ID             string `json:"id"`
	PolicyID       string `json:"policy_id"`
	DateOfAccident string `json:"date_of_accident"`
	Location       string `json:"location"`
	Description    string `json:"description"`
	PolicyStatus   string `json:"policy_status"`
}

func renderAccident(a *insurance.Accident) accidentResponse {
	return accidentResponse{
		ID:             a.ID.String(),
		PolicyID:       a.PolicyID.String(),
		DateOfAccident: a.DateOfAccident.Format(insurance.DateLayout),
		Location:       a.Location,
		Description:    a.Description,
		PolicyStatus:   string(a.PolicyStatus),
	}
}

func (h *Handler) handleReportAccident(w http.ResponseWriter, r *http.Request) {
	var req accidentRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	policyID, err := id.ParsePolicyID(req.PolicyID)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid policy id"))
		return
	}
	date, err := insurance.ParseDate(req.DateOfAccident, "date_of_accident")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	accident, err := h.service.ReportAccident(r.Context(), service.AccidentInput{
		PolicyID:       policyID,
		DateOfAccident: date,
		Location:       req.Location,
		Description:    req.Description,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, renderAccident(accident))
}

func (h *Handler) handleListAccidents(w http.ResponseWriter, r *http.Request) {
	accidents, err := h.service.ListAccidents(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	out := make([]accidentResponse, 0, len(accidents))
	for _, accident := range accidents {
		out = append(out, renderAccident(accident))
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

type paymentRequest struct {
	PolicyID      string `json:"policy_id"`
	PaymentRef    string `json:"payment_ref"`
	Amount        int64  `json:"amount"`
	PaymentDate   string `json:"payment_date"`
	PaymentMethod string `json:"payment_method"`
}

type paymentResponse struct {
	ID            string `json:"id"`
	PolicyID      string `json:"policy_id"`
	AccidentID    string `json:"accident_id"`
	PaymentRef    string `json:"payment_ref"`
	Amount        int64  `json:"amount"`
	PaymentDate   string `json:"payment_date"`
	PaymentMethod string `json:"payment_method"`
}

func renderPayment(p *insurance.Payment) paymentResponse {
	return paymentResponse{
		ID:            p.ID.String(),
		PolicyID:      p.PolicyID.String(),
		AccidentID:    p.AccidentID.String(),
		PaymentRef:    p.PaymentRef,
		Amount:        p.Amount,
		PaymentDate:   p.PaymentDate.Format(insurance.DateLayout),
		PaymentMethod: p.PaymentMethod,
	}
}

func (h *Handler) handleRecordPayment(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	policyID, err := id.ParsePolicyID(req.PolicyID)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid policy id"))
		return
	}
	in := service.PaymentInput{
		PolicyID:      policyID,
		PaymentRef:    req.PaymentRef,
		Amount:        req.Amount,
		PaymentMethod: req.PaymentMethod,
	}
	if req.PaymentDate != "" {
		date, err := insurance.ParseDate(req.PaymentDate, "payment_date")
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		in.PaymentDate = date
	}

	payment, err := h.service.RecordPayment(r.Context(), in)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, renderPayment(payment))
}

func (h *Handler) handleListPayments(w http.ResponseWriter, r *http.Request) {
	payments, err := h.service.ListPayments(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	out := make([]paymentResponse, 0, len(payments))
	for _, payment := range payments {
		out = append(out, renderPayment(payment))
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}
