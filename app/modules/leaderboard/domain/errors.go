package leaderboarddomain

import (
	"errors"
	"fmt"
)

// ErrMalformedRecord marks per-member parse failures. Records carrying it are
// skipped and logged; they never abort a cycle.
var ErrMalformedRecord = errors.New("malformed leaderboard record")

// RecordError describes a single unparseable member record.
type RecordError struct {
	MemberID string
	Reason   string
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("member %s: %s", e.MemberID, e.Reason)
}

func (e *RecordError) Is(target error) bool {
	return target == ErrMalformedRecord
}

// FetchError wraps a failed leaderboard fetch. Fetch failures skip the cycle
// and are retried on the next interval; they are never fatal to the process.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("leaderboard fetch %s: unexpected status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("leaderboard fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// StorageError wraps a snapshot load/save failure. A save failure after
// notifications were dispatched halts the scheduling loop: retrying blindly
// could re-announce already-notified slots.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("snapshot %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// DeliveryError records a single failed notification dispatch. Delivery
// failures do not block snapshot persistence; the achievement happened
// upstream regardless of whether the announcement landed.
type DeliveryError struct {
	Description string
	Err         error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("deliver %q: %v", e.Description, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }
