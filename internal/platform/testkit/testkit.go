// Package testkit holds the assertions and seam swaps the package tests share
package testkit

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Epsilon is the tolerance MustNear uses for confidence arithmetic
const Epsilon = 1e-9

// MustPanic fails the test unless fn panics
func MustPanic(t *testing.T, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic, got none")
		}
	}()
	fn()
}

// MustContain fails unless haystack contains needle. The haystack is dumped to a
// temp file so long exports and reports can be read after a failure.
func MustContain(t *testing.T, haystack, needle string) {
	t.Helper()
	if strings.Contains(haystack, needle) {
		return
	}
	dump := filepath.Join(t.TempDir(), "haystack.txt")
	_ = os.WriteFile(dump, []byte(haystack), 0o600)
	t.Fatalf("missing %q, full output in %s", needle, dump)
}

// MustNear fails unless got is within Epsilon of want
func MustNear(t *testing.T, label string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > Epsilon {
		t.Fatalf("%s = %v, want %v", label, got, want)
	}
}

// Swap points a package-level seam at replacement until the test ends.
// Tests that swap must not run in parallel with tests reading the same seam.
func Swap[T any](t *testing.T, target *T, replacement T) {
	t.Helper()
	orig := *target
	*target = replacement
	t.Cleanup(func() { *target = orig })
}
