package testkit

import "testing"

// Swap replaces *target for the duration of t and restores it on cleanup
// Tests that swap package-level seams must not run in parallel
func Swap[T any](t *testing.T, target *T, replacement T) {
	t.Helper()
	orig := *target
	*target = replacement
	t.Cleanup(func() { *target = orig })
}
