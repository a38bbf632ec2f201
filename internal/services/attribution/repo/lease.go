package repo

import (
	"context"
	"errors"

	perr "speakertag/internal/platform/errors"
)

// ErrRunHeld signals another run is committing the same transcript
var ErrRunHeld = perr.Conflictf("attribution run already in progress for this transcript")

const (
	// leaseSpace keeps transcript leases apart from other advisory lock users
	leaseSpace int64 = 0x5350
	leaseIDBits      = 48
)

// leaseKey packs the lease space into the top 16 bits of the bigint lock key, so every
// transcript id below 2^48 gets its own lock
func leaseKey(transcriptID int64) (int64, error) {
	if transcriptID <= 0 || transcriptID >= 1<<leaseIDBits {
		return 0, perr.InvalidArgf("transcript id %d out of lease range", transcriptID)
	}
	return leaseSpace<<leaseIDBits | transcriptID, nil
}

// Lease claims the transcript for the enclosing transaction with a Postgres advisory lock.
// The lock is released on commit or rollback, so callers must invoke it inside Tx
func (s *pg) Lease(ctx context.Context, transcriptID int64) error {
	key, err := leaseKey(transcriptID)
	if err != nil {
		return err
	}
	var claimed bool
	if err := s.q.QueryRow(ctx, `SELECT pg_try_advisory_xact_lock($1::bigint)`, key).Scan(&claimed); err != nil {
		return err
	}
	if !claimed {
		return ErrRunHeld
	}
	return nil
}

// IsRunHeld reports whether err came from a lost lease
func IsRunHeld(err error) bool { return errors.Is(err, ErrRunHeld) }
