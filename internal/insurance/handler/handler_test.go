package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	"vims/internal/insurance/service"
	"vims/internal/insurance/store/memory"
	id "vims/pkg/domain"
	auditpublisher "vims/pkg/platform/audit/publisher"
	auditmemory "vims/pkg/platform/audit/store/memory"
	"vims/pkg/requestcontext"
)

// =============================================================================
// Insurance Handler Test Suite
// =============================================================================
// Routes the real service over the in-memory store; auth middleware is
// replaced by a test middleware that pins the user and the request time.

type HandlerSuite struct {
	suite.Suite
	server *httptest.Server
	userID id.UserID
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.userID = id.NewUserID()

	svc := service.NewService(memory.New(), auditpublisher.NewPublisher(auditmemory.NewInMemoryStore()), nil, nil)
	h := New(svc, nil)

	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := requestcontext.WithTime(requestcontext.WithUserID(req.Context(), s.userID), now)
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	h.Register(r)

	s.server = httptest.NewServer(r)
	s.T().Cleanup(s.server.Close)
}

func (s *HandlerSuite) do(method, path string, body any) (*http.Response, map[string]any) {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, s.server.URL+path, &buf)
	s.Require().NoError(err)
	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)

	var decoded map[string]any
	if resp.ContentLength != 0 && resp.StatusCode != http.StatusNoContent {
		_ = json.NewDecoder(resp.Body).Decode(&decoded)
	}
	resp.Body.Close()
	return resp, decoded
}

func (s *HandlerSuite) doList(method, path string) (*http.Response, []map[string]any) {
	req, err := http.NewRequest(method, s.server.URL+path, nil)
	s.Require().NoError(err)
	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	var decoded []map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&decoded)
	resp.Body.Close()
	return resp, decoded
}

func (s *HandlerSuite) createOwner(name string) string {
	resp, body := s.do(http.MethodPost, "/owners", map[string]any{
		"name": name, "address": "12 MG Road", "phone": "9876543210",
	})
	s.Require().Equal(http.StatusCreated, resp.StatusCode)
	return body["id"].(string)
}

func (s *HandlerSuite) createVehicle(ownerID, plate string) string {
	resp, body := s.do(http.MethodPost, "/vehicles", map[string]any{
		"owner_id": ownerID, "title": "Family Car", "vehicle_number": plate,
		"model_name": "Swift", "model_year": 2021, "vehicle_type": "Car", "vin": "ABCDEFGHIJ",
	})
	s.Require().Equal(http.StatusCreated, resp.StatusCode)
	return body["id"].(string)
}

func (s *HandlerSuite) createPolicy(ownerID, vehicleID, startDate string) map[string]any {
	resp, body := s.do(http.MethodPost, "/policies", map[string]any{
		"owner_id": ownerID, "vehicle_id": vehicleID,
		"policy_type": "Essential Cover (3 months)", "start_date": startDate,
	})
	s.Require().Equal(http.StatusCreated, resp.StatusCode)
	return body
}

func (s *HandlerSuite) TestOwnerLifecycle() {
	ownerID := s.createOwner("Ravi Kumar")

	resp, body := s.do(http.MethodGet, "/owners/"+ownerID, nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal("Ravi Kumar", body["name"])

	resp, _ = s.do(http.MethodPut, "/owners/"+ownerID, map[string]any{
		"name": "Ravi K", "address": "14 MG Road", "phone": "9876543210",
	})
	s.Equal(http.StatusOK, resp.StatusCode)

	resp, list := s.doList(http.MethodGet, "/owners/?search=ravi")
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Len(list, 1)

	resp, _ = s.do(http.MethodDelete, "/owners/"+ownerID, nil)
	s.Equal(http.StatusNoContent, resp.StatusCode)

	resp, body = s.do(http.MethodGet, "/owners/"+ownerID, nil)
	s.Equal(http.StatusNotFound, resp.StatusCode)
	s.Equal("not_found", body["error"])
}

func (s *HandlerSuite) TestVehicleValidationErrors() {
	ownerID := s.createOwner("Ravi Kumar")

	resp, body := s.do(http.MethodPost, "/vehicles", map[string]any{
		"owner_id": ownerID, "vehicle_number": "ka-01-ab-1234", "vin": "ABCDEFGHIJ",
	})
	s.Equal(http.StatusBadRequest, resp.StatusCode)
	s.Equal("invalid_input", body["error"])

	resp, body = s.do(http.MethodPost, "/vehicles", map[string]any{
		"owner_id": ownerID, "vehicle_number": "KA-01-AB-1234", "vin": "SHORT",
	})
	s.Equal(http.StatusBadRequest, resp.StatusCode)
	s.Equal("invalid_input", body["error"])
}

func (s *HandlerSuite) TestPolicyEndpoints() {
	ownerID := s.createOwner("Ravi Kumar")
	vehicleID := s.createVehicle(ownerID, "KA-01-AB-1234")

	resp, body := s.do(http.MethodGet, "/policies/next-number", nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal("POL1001", body["policy_number"])

	policy := s.createPolicy(ownerID, vehicleID, "2024-05-01")
	s.Equal("POL1001", policy["policy_number"])
	s.Equal("2024-08-09", policy["end_date"])
	s.Equal(float64(3000), policy["premium"])

	resp, types := s.doList(http.MethodGet, "/policies/types")
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Len(types, 3)

	resp, body = s.do(http.MethodGet, fmt.Sprintf("/policies/%s/status?as_of=2024-05-15", policy["id"]), nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal(true, body["is_active"])

	resp, body = s.do(http.MethodGet, fmt.Sprintf("/policies/%s/status?as_of=2024-09-01", policy["id"]), nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal(false, body["is_active"])
}

func (s *HandlerSuite) TestClaimWorkflowStatusCodes() {
	ownerID := s.createOwner("Ravi Kumar")
	vehicleID := s.createVehicle(ownerID, "KA-01-AB-1234")
	policy := s.createPolicy(ownerID, vehicleID, "2024-05-01")
	policyID := policy["id"].(string)

	// Payment before any accident: 422 no_accident.
	resp, body := s.do(http.MethodPost, "/payments", map[string]any{
		"policy_id": policyID, "payment_ref": "PAY-001",
	})
	s.Equal(http.StatusUnprocessableEntity, resp.StatusCode)
	s.Equal("no_accident", body["error"])

	resp, body = s.do(http.MethodPost, "/accidents", map[string]any{
		"policy_id": policyID, "date_of_accident": "2024-05-15", "location": "MG Road",
	})
	s.Equal(http.StatusCreated, resp.StatusCode)
	s.Equal("Active", body["policy_status"])

	// Second accident: 409 already_claimed.
	resp, body = s.do(http.MethodPost, "/accidents", map[string]any{
		"policy_id": policyID, "date_of_accident": "2024-05-20", "location": "Ring Road",
	})
	s.Equal(http.StatusConflict, resp.StatusCode)
	s.Equal("already_claimed", body["error"])

	resp, body = s.do(http.MethodPost, "/payments", map[string]any{
		"policy_id": policyID, "payment_ref": "PAY-001", "payment_method": "UPI",
	})
	s.Equal(http.StatusCreated, resp.StatusCode)
	s.Equal(float64(3000), body["amount"])

	// Second payment: 409 payment_exists.
	resp, body = s.do(http.MethodPost, "/payments", map[string]any{
		"policy_id": policyID, "payment_ref": "PAY-002",
	})
	s.Equal(http.StatusConflict, resp.StatusCode)
	s.Equal("payment_exists", body["error"])

	resp, body = s.do(http.MethodGet, "/dashboard", nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal(true, body["has_all_entities"])
}
