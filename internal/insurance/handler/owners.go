package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"vims/internal/insurance"
	"vims/internal/insurance/service"
	id "vims/pkg/domain"
	dErrors "vims/pkg/domain-errors"
	"vims/pkg/platform/httputil"
)

type ownerRequest struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	DOB     string `json:"dob,omitempty"`
}

type ownerResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	DOB     string `json:"dob,omitempty"`
}

func renderOwner(o *insurance.Owner) ownerResponse {
	resp := ownerResponse{
		ID:      o.ID.String(),
		Name:    o.Name,
		Address: o.Address,
		Phone:   o.Phone,
	}
	if o.DOB != nil {
		resp.DOB = o.DOB.Format(insurance.DateLayout)
	}
	return resp
}

func (req *ownerRequest) toInput(w http.ResponseWriter) (service.OwnerInput, bool) {
	in := service.OwnerInput{
		Name:    req.Name,
		Address: req.Address,
		Phone:   req.Phone,
	}
	if req.DOB != "" {
		dob, err := insurance.ParseDate(req.DOB, "dob")
		if err != nil {
			httputil.WriteError(w, err)
			return service.OwnerInput{}, false
		}
		in.DOB = &dob
	}
	return in, true
}

func ownerIDParam(w http.ResponseWriter, r *http.Request) (id.OwnerID, bool) {
	ownerID, err := id.ParseOwnerID(chi.URLParam(r, "ownerID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid owner id"))
		return id.OwnerID{}, false
	}
	return ownerID, true
}

func (h *Handler) handleCreateOwner(w http.ResponseWriter, r *http.Request) {
	var req ownerRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	in, ok := req.toInput(w)
	if !ok {
		return
	}
	owner, err := h.service.CreateOwner(r.Context(), in)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, renderOwner(owner))
}

func (h *Handler) handleUpdateOwner(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := ownerIDParam(w, r)
	if !ok {
		return
	}
	var req ownerRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	in, ok := req.toInput(w)
	if !ok {
		return
	}
	owner, err := h.service.UpdateOwner(r.Context(), ownerID, in)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, renderOwner(owner))
}

func (h *Handler) handleDeleteOwner(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := ownerIDParam(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteOwner(r.Context(), ownerID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleGetOwner(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := ownerIDParam(w, r)
	if !ok {
		return
	}
	owner, err := h.service.GetOwner(r.Context(), ownerID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, renderOwner(owner))
}

func (h *Handler) handleListOwners(w http.ResponseWriter, r *http.Request) {
	owners, err := h.service.ListOwners(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	out := make([]ownerResponse, 0, len(owners))
	for _, owner := range owners {
		out = append(out, renderOwner(owner))
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}
