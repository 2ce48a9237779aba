package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/benefitsys/rules-api/pkg/rules"
)

func periodResult(t *testing.T, resultID, jobID string) rules.Result {
	t.Helper()
	now := time.Now().UTC()
	result, err := rules.NewPeriodResult(resultID, jobID, now, now,
		rules.PeriodFacts{ActorID: "actorId", DecisionID: 1, CalculationDate: now, IncomeID: "incomeId"},
		rules.PeriodOutcome{Weeks: 52})
	if err != nil {
		t.Fatalf("building result: %v", err)
	}
	return result
}

func TestCreateJobIsPending(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	if err := s.CreateJob(ctx, "behovId", rules.KindRate); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	status, err := s.GetStatus(ctx, "behovId", rules.KindRate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status.State != rules.StatePending {
		t.Fatalf("expected pending, got %s", status.State)
	}

	pending, err := s.HasPending(ctx, "behovId", rules.KindRate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !pending {
		t.Fatal("expected pending job")
	}
}

func TestCreateJobDuplicateConflicts(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	if err := s.CreateJob(ctx, "behovId", rules.KindRate); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.CreateJob(ctx, "behovId", rules.KindRate); !errors.Is(err, ErrDuplicateJob) {
		t.Fatalf("expected ErrDuplicateJob, got %v", err)
	}
	// Same correlation id under another kind is an independent job.
	if err := s.CreateJob(ctx, "behovId", rules.KindPeriod); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestGetStatusNeverFallsBackAcrossKinds(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	if err := s.CreateJob(ctx, "behovId", rules.KindRate); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := s.GetStatus(ctx, "behovId", rules.KindBasis); !errors.Is(err, ErrJobNotFound) {
		t.Fatalf("expected ErrJobNotFound for wrong kind, got %v", err)
	}
	if _, err := s.GetStatus(ctx, "notFound", rules.KindRate); !errors.Is(err, ErrJobNotFound) {
		t.Fatalf("expected ErrJobNotFound for unknown id, got %v", err)
	}
}

func TestInsertResultAdvancesJob(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	if err := s.CreateJob(ctx, "behovId", rules.KindPeriod); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result := periodResult(t, "subId", "behovId")
	outcome, err := s.InsertResult(ctx, result)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != Inserted {
		t.Fatalf("expected Inserted, got %s", outcome)
	}

	status, err := s.GetStatus(ctx, "behovId", rules.KindPeriod)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status.State != rules.StateDone || status.ResultID != "subId" {
		t.Fatalf("expected Done(subId), got %+v", status)
	}

	stored, err := s.GetResult(ctx, "subId", rules.KindPeriod)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored.Outcome.Period == nil || stored.Outcome.Period.Weeks != 52 {
		t.Fatalf("stored outcome mangled: %+v", stored.Outcome)
	}
}

func TestInsertResultOrphanRejected(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	_, err := s.InsertResult(ctx, periodResult(t, "subId", "unknownJob"))
	if !errors.Is(err, ErrOrphanResult) {
		t.Fatalf("expected ErrOrphanResult, got %v", err)
	}
}

func TestInsertResultIdempotent(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	if err := s.CreateJob(ctx, "behovId", rules.KindPeriod); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result := periodResult(t, "subId", "behovId")
	if _, err := s.InsertResult(ctx, result); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	outcome, err := s.InsertResult(ctx, result)
	if err != nil {
		t.Fatalf("unexpected error on duplicate: %v", err)
	}
	if outcome != AlreadyExists {
		t.Fatalf("expected AlreadyExists, got %s", outcome)
	}

	status, err := s.GetStatus(ctx, "behovId", rules.KindPeriod)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status.State != rules.StateDone || status.ResultID != "subId" {
		t.Fatalf("duplicate insert mutated job status: %+v", status)
	}
}

func TestInsertResultConcurrentDuplicates(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	if err := s.CreateJob(ctx, "behovId", rules.KindPeriod); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	result := periodResult(t, "subId", "behovId")

	const deliveries = 16
	outcomes := make([]InsertOutcome, deliveries)
	errs := make([]error, deliveries)
	var wg sync.WaitGroup
	for i := 0; i < deliveries; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			outcomes[i], errs[i] = s.InsertResult(ctx, result)
		}(i)
	}
	wg.Wait()

	inserted := 0
	for i := 0; i < deliveries; i++ {
		if errs[i] != nil {
			t.Fatalf("delivery %d failed: %v", i, errs[i])
		}
		if outcomes[i] == Inserted {
			inserted++
		}
	}
	if inserted != 1 {
		t.Fatalf("expected exactly one insertion, got %d", inserted)
	}

	status, err := s.GetStatus(ctx, "behovId", rules.KindPeriod)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status.State != rules.StateDone || status.ResultID != "subId" {
		t.Fatalf("race corrupted status: %+v", status)
	}
}

func TestResultCompositeKeyIsolation(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	if err := s.CreateJob(ctx, "behovId", rules.KindPeriod); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.CreateJob(ctx, "behovId", rules.KindRate); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	now := time.Now().UTC()
	periodRes := periodResult(t, "id", "behovId")
	rateRes, err := rules.NewRateResult("id", "behovId", now, now,
		rules.RateFacts{ActorID: "actorId", DecisionID: 1, CalculationDate: now},
		rules.RateOutcome{DayRate: 10, WeekRate: 50})
	if err != nil {
		t.Fatalf("building rate result: %v", err)
	}

	if _, err := s.InsertResult(ctx, periodRes); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := s.InsertResult(ctx, rateRes); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := s.GetResult(ctx, "id", rules.KindPeriod)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Kind != rules.KindPeriod {
		t.Fatalf("expected PERIOD result, got %s", got.Kind)
	}

	got, err = s.GetResult(ctx, "id", rules.KindRate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Kind != rules.KindRate {
		t.Fatalf("expected RATE result, got %s", got.Kind)
	}

	if _, err := s.GetResult(ctx, "id", rules.KindBasis); !errors.Is(err, ErrResultNotFound) {
		t.Fatalf("expected ErrResultNotFound for wrong kind, got %v", err)
	}
}

func TestGetResultByJob(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	if _, err := s.GetResultByJob(ctx, "behovId", rules.KindPeriod); !errors.Is(err, ErrJobNotFound) {
		t.Fatalf("expected ErrJobNotFound, got %v", err)
	}

	if err := s.CreateJob(ctx, "behovId", rules.KindPeriod); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := s.GetResultByJob(ctx, "behovId", rules.KindPeriod); !errors.Is(err, ErrResultPending) {
		t.Fatalf("expected ErrResultPending, got %v", err)
	}

	if _, err := s.InsertResult(ctx, periodResult(t, "subId", "behovId")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	result, err := s.GetResultByJob(ctx, "behovId", rules.KindPeriod)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ResultID != "subId" {
		t.Fatalf("expected subId, got %s", result.ResultID)
	}
}

func TestGetResultByJobFailedJob(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	if err := s.CreateJob(ctx, "behovId", rules.KindPeriod); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.MarkError(ctx, "behovId", rules.KindPeriod, "engine gave up"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := s.GetResultByJob(ctx, "behovId", rules.KindPeriod); !errors.Is(err, ErrJobFailed) {
		t.Fatalf("expected ErrJobFailed, got %v", err)
	}
}

func TestTerminalTransitions(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	if err := s.CreateJob(ctx, "behovId", rules.KindPeriod); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.MarkDone(ctx, "behovId", rules.KindPeriod, "subId"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Re-applying the same terminal value is a no-op.
	if err := s.MarkDone(ctx, "behovId", rules.KindPeriod, "subId"); err != nil {
		t.Fatalf("expected idempotent re-apply, got %v", err)
	}
	// A conflicting terminal value is rejected.
	if err := s.MarkDone(ctx, "behovId", rules.KindPeriod, "other"); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	if err := s.MarkError(ctx, "behovId", rules.KindPeriod, "boom"); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}

	pending, err := s.HasPending(ctx, "behovId", rules.KindPeriod)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pending {
		t.Fatal("terminal job must not be pending")
	}
}

func TestMarkErrorOnUnknownJob(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	if err := s.MarkError(ctx, "nope", rules.KindRate, "boom"); !errors.Is(err, ErrJobNotFound) {
		t.Fatalf("expected ErrJobNotFound, got %v", err)
	}
}

func TestInsertUsedDeterminationIdempotent(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	record := UsedDetermination{ID: "test", ProcessingID: "b", ArenaTimestamp: time.Now().UTC()}
	outcome, err := s.InsertUsedDetermination(ctx, record)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != Inserted {
		t.Fatalf("expected Inserted, got %s", outcome)
	}

	outcome, err = s.InsertUsedDetermination(ctx, record)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != AlreadyExists {
		t.Fatalf("expected AlreadyExists, got %s", outcome)
	}
}
