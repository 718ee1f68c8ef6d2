package orchestrator

import (
	"os"
	"strings"
	"time"
)

// Timeout constants for different operations
var (
	// DefaultWorkflowTimeout is the standard timeout for workflow commands.
	// Generous because interactive prompts run inside the workflow.
	DefaultWorkflowTimeout = getTimeoutOrDefault("FLOWCTL_WORKFLOW_TIMEOUT", 60*time.Minute, 5*time.Second)
	// ShipWorkflowTimeout is the extended timeout for ship operations
	ShipWorkflowTimeout = getTimeoutOrDefault("FLOWCTL_SHIP_TIMEOUT", 120*time.Minute, 10*time.Second)
	// RollbackTimeout bounds rollback and branch-restore work after a failure
	RollbackTimeout = getTimeoutOrDefault("FLOWCTL_ROLLBACK_TIMEOUT", 10*time.Minute, 500*time.Millisecond)
)

// isTestEnvironment detects if we're running in a test environment
func isTestEnvironment() bool {
	// Check for testing flags
	for _, arg := range os.Args {
		if strings.Contains(arg, ".test") || strings.Contains(arg, "go test") {
			return true
		}
	}
	// Check for test environment variables
	return os.Getenv("GO_TEST") == "true" || os.Getenv("TEST_MODE") == "true"
}

// getTimeoutOrDefault returns production timeout or test timeout based on environment
func getTimeoutOrDefault(envVar string, prodDefault, testDefault time.Duration) time.Duration {
	if env := os.Getenv(envVar); env != "" {
		if duration, err := time.ParseDuration(env); err == nil {
			return duration
		}
	}
	if isTestEnvironment() {
		return testDefault
	}
	return prodDefault
}
