// Package testutil starts shared backing services for integration tests.
//
// Each container is started at most once per test binary and torn down with
// the test that first requested it. Tests are skipped under -short or when a
// container cannot be started (for example, without a Docker daemon).
package testutil

import "testing"

// RequireIntegration skips t when running with -short.
func RequireIntegration(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in -short mode")
	}
}

func skipOnError(t *testing.T, what string, err error) {
	t.Helper()
	if err != nil {
		t.Skipf("%s container unavailable: %v", what, err)
	}
}
