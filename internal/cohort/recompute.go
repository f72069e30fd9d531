package cohort

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/cohortpulse/cohortpulse/internal/record"
)

// ErrSuperseded is returned by Recompute when a newer filter change was
// issued while this one was computing. The stale result is returned alongside
// the error so the caller can still serve it, but it is never applied over
// the fresher one.
var ErrSuperseded = errors.New("recompute superseded by a newer filter change")

// ErrNoRecords is returned when neither a retained record set nor a fallback
// set is available.
var ErrNoRecords = errors.New("no retained record set")

// Recomputer re-runs waterfall aggregation against a retained in-memory
// claim set whenever the payer/service-type filter changes.
//
// Ordering is by intent, not by arrival: every call takes a monotonically
// increasing sequence number at issue time, and a completed result is applied
// only if no newer sequence number has been issued since. Concurrent calls
// may run in parallel; the retained set is never mutated, so no locking is
// needed around the aggregation itself.
type Recomputer struct {
	mu       sync.Mutex
	retained []record.ClaimPayment
	latest   *Matrix
	applied  uint64

	issued atomic.Uint64
}

// NewRecomputer creates a controller over the given retained record set.
// The slice is kept as-is and must not be mutated by the caller.
func NewRecomputer(retained []record.ClaimPayment) *Recomputer {
	return &Recomputer{retained: retained}
}

// Recompute aggregates the retained set under the given filter. If the
// result is stale by the time it completes, it is returned with
// ErrSuperseded and not applied. A filter matching no rows yields an empty
// matrix, not an error.
func (r *Recomputer) Recompute(filter Filter) (*Matrix, error) {
	return r.recompute(nil, filter)
}

// RecomputeWith behaves like Recompute but uses the supplied record set when
// no retained set is available, so a caller holding fresh rows never fails
// on a cold controller.
func (r *Recomputer) RecomputeWith(fallback []record.ClaimPayment, filter Filter) (*Matrix, error) {
	return r.recompute(fallback, filter)
}

func (r *Recomputer) recompute(fallback []record.ClaimPayment, filter Filter) (*Matrix, error) {
	seq := r.issued.Add(1)

	records := r.retained
	if len(records) == 0 {
		if len(fallback) == 0 {
			return nil, ErrNoRecords
		}
		records = fallback
	}

	return r.apply(seq, BuildMatrix(records, filter))
}

// apply installs a computed matrix if its sequence is still the newest
// issued. A superseded result is handed back to the caller but never stored,
// so the freshest filter always owns Latest.
func (r *Recomputer) apply(seq uint64, m *Matrix) (*Matrix, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if seq < r.issued.Load() {
		return m, ErrSuperseded
	}
	if seq > r.applied {
		r.applied = seq
		r.latest = m
	}
	return m, nil
}

// Latest returns the most recently applied matrix, or nil if no recompute
// has completed yet.
func (r *Recomputer) Latest() *Matrix {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.latest
}
