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

type vehicleRequest struct {
	OwnerID       string `json:"owner_id"`
	Title         string `json:"title"`
	VehicleNumber string `json:"vehicle_number"`
	ModelName     string `json:"model_name"`
	ModelYear     int    `json:"model_year"`
	VehicleType   string `json:"vehicle_type"`
	VIN           string `json:"vin"`
}

type vehicleResponse struct {
	ID            string `json:"id"`
	OwnerID       string `json:"owner_id"`
	Title         string `json:"title"`
	VehicleNumber string `json:"vehicle_number"`
	ModelName     string `json:"model_name"`
	ModelYear     int    `json:"model_year"`
	VehicleType   string `json:"vehicle_type"`
	VIN           string `json:"vin"`
}

func renderVehicle(v *insurance.Vehicle) vehicleResponse {
	return vehicleResponse{
		ID:            v.ID.String(),
		OwnerID:       v.OwnerID.String(),
		Title:         v.Title,
		VehicleNumber: v.VehicleNumber,
		ModelName:     v.ModelName,
		ModelYear:     v.ModelYear,
		VehicleType:   v.VehicleType,
		VIN:           v.VIN,
	}
}

func (req *vehicleRequest) toInput(w http.ResponseWriter) (service.VehicleInput, bool) {
	ownerID, err := id.ParseOwnerID(req.OwnerID)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid owner id"))
		return service.VehicleInput{}, false
	}
	return service.VehicleInput{
		OwnerID:       ownerID,
		Title:         req.Title,
		VehicleNumber: req.VehicleNumber,
		ModelName:     req.ModelName,
		ModelYear:     req.ModelYear,
		VehicleType:   req.VehicleType,
		VIN:           req.VIN,
	}, true
}

func vehicleIDParam(w http.ResponseWriter, r *http.Request) (id.VehicleID, bool) {
	vehicleID, err := id.ParseVehicleID(chi.URLParam(r, "vehicleID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid vehicle id"))
		return id.VehicleID{}, false
	}
	return vehicleID, true
}

// ownerFilter parses an optional owner_id query parameter.
func ownerFilter(w http.ResponseWriter, r *http.Request) (*id.OwnerID, bool) {
	raw := r.URL.Query().Get("owner_id")
	if raw == "" {
		return nil, true
	}
	ownerID, err := id.ParseOwnerID(raw)
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid owner id"))
		return nil, false
	}
	return &ownerID, true
}

func (h *Handler) handleCreateVehicle(w http.ResponseWriter, r *http.Request) {
	var req vehicleRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	in, ok := req.toInput(w)
	if !ok {
		return
	}
	vehicle, err := h.service.CreateVehicle(r.Context(), in)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, renderVehicle(vehicle))
}

func (h *Handler) handleUpdateVehicle(w http.ResponseWriter, r *http.Request) {
	vehicleID, ok := vehicleIDParam(w, r)
	if !ok {
		return
	}
	var req vehicleRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	in, ok := req.toInput(w)
	if !ok {
		return
	}
	vehicle, err := h.service.UpdateVehicle(r.Context(), vehicleID, in)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, renderVehicle(vehicle))
}

func (h *Handler) handleDeleteVehicle(w http.ResponseWriter, r *http.Request) {
	vehicleID, ok := vehicleIDParam(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteVehicle(r.Context(), vehicleID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleGetVehicle(w http.ResponseWriter, r *http.Request) {
	vehicleID, ok := vehicleIDParam(w, r)
	if !ok {
		return
	}
	vehicle, err := h.service.GetVehicle(r.Context(), vehicleID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, renderVehicle(vehicle))
}

func (h *Handler) handleListVehicles(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFilter(w, r)
	if !ok {
		return
	}
	vehicles, err := h.service.ListVehicles(r.Context(), owner)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	out := make([]vehicleResponse, 0, len(vehicles))
	for _, vehicle := range vehicles {
		out = append(out, renderVehicle(vehicle))
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}
