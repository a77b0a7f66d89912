package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"

	"github.com/cucumber/godog"
)

// TestContext carries per-scenario state: the auth token and the ids of the
// entities the Background creates.
type TestContext struct {
	baseURL string
	client  *http.Client

	token     string
	ownerID   string
	vehicleID string
	policyID  string

	lastStatus int
	lastBody   map[string]any
}

// NewTestContext builds a fresh context for one scenario.
func NewTestContext(baseURL string) *TestContext {
	return &TestContext{baseURL: baseURL, client: http.DefaultClient}
}

func (tc *TestContext) reset() {
	tc.token = ""
	tc.ownerID = ""
	tc.vehicleID = ""
	tc.policyID = ""
	tc.lastStatus = 0
	tc.lastBody = nil
}

// RegisterSteps wires all step definitions.
func RegisterSteps(ctx *godog.ScenarioContext, tc *TestContext) {
	ctx.Before(func(c context.Context, _ *godog.Scenario) (context.Context, error) {
		tc.reset()
		return c, nil
	})

	ctx.Given(`^a registered user is logged in$`, tc.aRegisteredUserIsLoggedIn)
	ctx.Given(`^an owner "([^"]*)" with vehicle "([^"]*)" exists$`, tc.anOwnerWithVehicleExists)
	ctx.Given(`^a "([^"]*)" policy starting "([^"]*)" exists$`, tc.aPolicyStartingExists)
	ctx.Step(`^an accident on "([^"]*)" at "([^"]*)" is reported$`, tc.anAccidentIsReported)
	ctx.Step(`^a payment with reference "([^"]*)" is recorded$`, tc.aPaymentIsRecorded)
	ctx.Then(`^the accident is recorded with policy status "([^"]*)"$`, tc.theAccidentIsRecordedWithStatus)
	ctx.Then(`^the payment is accepted$`, tc.thePaymentIsAccepted)
	ctx.Then(`^the request is rejected with error "([^"]*)"$`, tc.theRequestIsRejectedWithError)
}

func (tc *TestContext) post(path string, payload map[string]any) error {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPost, tc.baseURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if tc.token != "" {
		req.Header.Set("Authorization", "Bearer "+tc.token)
	}
	resp, err := tc.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	tc.lastStatus = resp.StatusCode
	tc.lastBody = map[string]any{}
	_ = json.NewDecoder(resp.Body).Decode(&tc.lastBody)
	return nil
}

func (tc *TestContext) aRegisteredUserIsLoggedIn() error {
	username := fmt.Sprintf("e2e-user-%d", rand.Int63())
	if err := tc.post("/auth/register", map[string]any{
		"username": username,
		"password": "e2e-password",
	}); err != nil {
		return err
	}
	if tc.lastStatus != http.StatusCreated {
		return fmt.Errorf("register failed with status %d", tc.lastStatus)
	}

	if err := tc.post("/auth/login", map[string]any{
		"username": username,
		"password": "e2e-password",
	}); err != nil {
		return err
	}
	if tc.lastStatus != http.StatusOK {
		return fmt.Errorf("login failed with status %d", tc.lastStatus)
	}
	tc.token, _ = tc.lastBody["token"].(string)
	if tc.token == "" {
		return fmt.Errorf("login response carried no token")
	}
	return nil
}

func (tc *TestContext) anOwnerWithVehicleExists(name, plate string) error {
	if err := tc.post("/owners", map[string]any{
		"name": name, "address": "12 MG Road", "phone": "9876543210",
	}); err != nil {
		return err
	}
	if tc.lastStatus != http.StatusCreated {
		return fmt.Errorf("create owner failed with status %d", tc.lastStatus)
	}
	tc.ownerID, _ = tc.lastBody["id"].(string)

	// Unique plate per scenario: the series digits come from the scenario
	// run so parallel scenarios never collide on the global uniqueness rule.
	unique := fmt.Sprintf("KA-%02d-ZZ-%04d", rand.Intn(99)+1, rand.Intn(9999)+1)
	_ = plate
	if err := tc.post("/vehicles", map[string]any{
		"owner_id": tc.ownerID, "title": "Family Car", "vehicle_number": unique,
		"model_name": "Swift", "model_year": 2021, "vehicle_type": "Car", "vin": "ABCDEFGHIJ",
	}); err != nil {
		return err
	}
	if tc.lastStatus != http.StatusCreated {
		return fmt.Errorf("create vehicle failed with status %d: %v", tc.lastStatus, tc.lastBody)
	}
	tc.vehicleID, _ = tc.lastBody["id"].(string)
	return nil
}

func (tc *TestContext) aPolicyStartingExists(policyType, startDate string) error {
	if err := tc.post("/policies", map[string]any{
		"owner_id": tc.ownerID, "vehicle_id": tc.vehicleID,
		"policy_type": policyType, "start_date": startDate,
	}); err != nil {
		return err
	}
	if tc.lastStatus != http.StatusCreated {
		return fmt.Errorf("create policy failed with status %d: %v", tc.lastStatus, tc.lastBody)
	}
	tc.policyID, _ = tc.lastBody["id"].(string)
	return nil
}

func (tc *TestContext) anAccidentIsReported(date, location string) error {
	return tc.post("/accidents", map[string]any{
		"policy_id": tc.policyID, "date_of_accident": date, "location": location,
	})
}

func (tc *TestContext) aPaymentIsRecorded(ref string) error {
	return tc.post("/payments", map[string]any{
		"policy_id": tc.policyID, "payment_ref": ref, "payment_method": "UPI",
	})
}

func (tc *TestContext) theAccidentIsRecordedWithStatus(status string) error {
	if tc.lastStatus != http.StatusCreated {
		return fmt.Errorf("expected 201, got %d: %v", tc.lastStatus, tc.lastBody)
	}
	if got, _ := tc.lastBody["policy_status"].(string); got != status {
		return fmt.Errorf("expected policy status %q, got %q", status, got)
	}
	return nil
}

func (tc *TestContext) thePaymentIsAccepted() error {
	if tc.lastStatus != http.StatusCreated {
		return fmt.Errorf("expected 201, got %d: %v", tc.lastStatus, tc.lastBody)
	}
	return nil
}

func (tc *TestContext) theRequestIsRejectedWithError(code string) error {
	if tc.lastStatus < 400 {
		return fmt.Errorf("expected an error status, got %d", tc.lastStatus)
	}
	if got, _ := tc.lastBody["error"].(string); got != code {
		return fmt.Errorf("expected error %q, got %q", code, got)
	}
	return nil
}
