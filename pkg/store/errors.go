package store

import "errors"

var (
	// ErrJobNotFound: no job row for the composite (jobId, ruleKind) key.
	// Lookups never fall back to another kind's row for the same jobId.
	ErrJobNotFound = errors.New("job not found")

	// ErrDuplicateJob: the (jobId, ruleKind) pair already exists.
	// Re-submission is a hard conflict, never a silent overwrite.
	ErrDuplicateJob = errors.New("job already exists")

	// ErrInvalidTransition: the job is already terminal with a different
	// value than the requested transition.
	ErrInvalidTransition = errors.New("job already settled with a different value")

	// ErrOrphanResult: the result references a job that was never created.
	// An ordering bug upstream, surfaced rather than dropped.
	ErrOrphanResult = errors.New("result references unknown job")

	ErrResultNotFound = errors.New("result not found")

	// ErrResultPending: the job exists but the engine has not delivered a
	// result yet.
	ErrResultPending = errors.New("result not computed yet")

	// ErrJobFailed: the job exists but settled with an error, so no result
	// will ever arrive for it.
	ErrJobFailed = errors.New("job failed")
)

// InsertOutcome distinguishes a first insertion from an idempotent replay.
// AlreadyExists is success, not an error: the at-least-once transport may
// deliver the same message any number of times.
type InsertOutcome int

const (
	Inserted InsertOutcome = iota
	AlreadyExists
)

func (o InsertOutcome) String() string {
	if o == AlreadyExists {
		return "already-exists"
	}
	return "inserted"
}
