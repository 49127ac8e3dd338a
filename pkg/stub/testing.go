package stub

import "testing"

// Verify fails the test at cleanup if r still has programmed entries.
func Verify(tb testing.TB, r *Registry) {
	tb.Helper()

	tb.Cleanup(func() {
		if err := r.AssertDrained(); err != nil {
			tb.Error(err)
		}
	})
}

// MustExpect programs r and fails the test immediately on error.
func MustExpect(tb testing.TB, err error) {
	tb.Helper()

	if err != nil {
		tb.Fatalf("Failed to program stub: %v", err)
	}
}
