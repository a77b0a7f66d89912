package e2e

import (
	"os"
	"testing"

	"github.com/cucumber/godog"
)

// TestFeatures runs the Gherkin suites against a live server. Set
// VIMS_E2E_URL to the server base URL; without it the suite is skipped.
func TestFeatures(t *testing.T) {
	baseURL := os.Getenv("VIMS_E2E_URL")
	if baseURL == "" {
		t.Skip("VIMS_E2E_URL not set, skipping e2e suite")
	}

	suite := godog.TestSuite{
		ScenarioInitializer: func(ctx *godog.ScenarioContext) {
			RegisterSteps(ctx, NewTestContext(baseURL))
		},
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features"},
			TestingT: t,
		},
	}
	if suite.Run() != 0 {
		t.Fatal("e2e feature suite failed")
	}
}
