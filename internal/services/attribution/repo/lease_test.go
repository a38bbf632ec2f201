package repo

import (
	"fmt"
	"testing"

	perr "speakertag/internal/platform/errors"
)

func TestLeaseKey(t *testing.T) {
	a, err := leaseKey(7)
	if err != nil {
		t.Fatalf("leaseKey(7): %v", err)
	}
	b, err := leaseKey(7 + 1<<32)
	if err != nil {
		t.Fatalf("leaseKey(7+2^32): %v", err)
	}
	if a == b {
		t.Fatalf("ids 2^32 apart share lock key %d", a)
	}
	if a>>leaseIDBits != leaseSpace || a&(1<<leaseIDBits-1) != 7 {
		t.Fatalf("key %x does not carry space and id", a)
	}

	for _, id := range []int64{0, -3, 1 << leaseIDBits} {
		if _, err := leaseKey(id); !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
			t.Fatalf("leaseKey(%d) err = %v", id, err)
		}
	}
}

func TestIsRunHeld(t *testing.T) {
	if !IsRunHeld(fmt.Errorf("transcript 4: %w", ErrRunHeld)) || IsRunHeld(perr.InvalidArgf("x")) {
		t.Fatalf("IsRunHeld misclassified")
	}
	if !perr.IsCode(ErrRunHeld, perr.ErrorCodeConflict) {
		t.Fatalf("ErrRunHeld code = %v", perr.CodeOf(ErrRunHeld))
	}
}
