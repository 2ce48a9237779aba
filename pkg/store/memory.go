package store

import (
	"context"
	"sync"

	"github.com/benefitsys/rules-api/pkg/rules"
)

type compositeKey struct {
	id   string
	kind rules.RuleKind
}

// Memory keeps the same semantics as Postgres behind a single mutex. It
// backs tests and local development; the mutex stands in for the database
// transaction, so idempotence and atomicity laws hold identically.
type Memory struct {
	mu      sync.Mutex
	jobs    map[compositeKey]rules.Status
	results map[compositeKey]rules.Result
	usage   map[string]UsedDetermination
}

func NewMemory() *Memory {
	return &Memory{
		jobs:    make(map[compositeKey]rules.Status),
		results: make(map[compositeKey]rules.Result),
		usage:   make(map[string]UsedDetermination),
	}
}

func (s *Memory) CreateJob(_ context.Context, jobID string, kind rules.RuleKind) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := compositeKey{id: jobID, kind: kind}
	if _, ok := s.jobs[key]; ok {
		return ErrDuplicateJob
	}
	s.jobs[key] = rules.Pending()
	return nil
}

func (s *Memory) GetStatus(_ context.Context, jobID string, kind rules.RuleKind) (rules.Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	status, ok := s.jobs[compositeKey{id: jobID, kind: kind}]
	if !ok {
		return rules.Status{}, ErrJobNotFound
	}
	return status, nil
}

func (s *Memory) HasPending(ctx context.Context, jobID string, kind rules.RuleKind) (bool, error) {
	status, err := s.GetStatus(ctx, jobID, kind)
	if err != nil {
		return false, err
	}
	return status.State == rules.StatePending, nil
}

func (s *Memory) MarkDone(_ context.Context, jobID string, kind rules.RuleKind, resultID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settleLocked(jobID, kind, rules.Done(resultID))
}

func (s *Memory) MarkError(_ context.Context, jobID string, kind rules.RuleKind, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settleLocked(jobID, kind, rules.Failed(message))
}

func (s *Memory) settleLocked(jobID string, kind rules.RuleKind, target rules.Status) error {
	key := compositeKey{id: jobID, kind: kind}
	current, ok := s.jobs[key]
	if !ok {
		return ErrJobNotFound
	}
	if current.Terminal() {
		if current == target {
			return nil
		}
		return ErrInvalidTransition
	}
	s.jobs[key] = target
	return nil
}

func (s *Memory) InsertResult(_ context.Context, result rules.Result) (InsertOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	jobKey := compositeKey{id: result.JobID, kind: result.Kind}
	if _, ok := s.jobs[jobKey]; !ok {
		return Inserted, ErrOrphanResult
	}

	resultKey := compositeKey{id: result.ResultID, kind: result.Kind}
	if _, ok := s.results[resultKey]; ok {
		return AlreadyExists, nil
	}

	s.results[resultKey] = result
	if err := s.settleLocked(result.JobID, result.Kind, rules.Done(result.ResultID)); err != nil {
		delete(s.results, resultKey)
		return Inserted, err
	}
	return Inserted, nil
}

func (s *Memory) GetResult(_ context.Context, resultID string, kind rules.RuleKind) (rules.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, ok := s.results[compositeKey{id: resultID, kind: kind}]
	if !ok {
		return rules.Result{}, ErrResultNotFound
	}
	return result, nil
}

func (s *Memory) GetResultByJob(ctx context.Context, jobID string, kind rules.RuleKind) (rules.Result, error) {
	status, err := s.GetStatus(ctx, jobID, kind)
	if err != nil {
		return rules.Result{}, err
	}
	switch status.State {
	case rules.StatePending:
		return rules.Result{}, ErrResultPending
	case rules.StateError:
		return rules.Result{}, ErrJobFailed
	}
	return s.GetResult(ctx, status.ResultID, kind)
}

func (s *Memory) InsertUsedDetermination(_ context.Context, d UsedDetermination) (InsertOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.usage[d.ID]; ok {
		return AlreadyExists, nil
	}
	s.usage[d.ID] = d
	return Inserted, nil
}
