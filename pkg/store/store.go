package store

import (
	"context"
	"time"

	"github.com/benefitsys/rules-api/pkg/rules"
)

// JobStore tracks rule-evaluation jobs keyed by (jobId, ruleKind).
// Lifecycle: created Pending, settled exactly once to Done or Error,
// never deleted here.
type JobStore interface {
	CreateJob(ctx context.Context, jobID string, kind rules.RuleKind) error
	GetStatus(ctx context.Context, jobID string, kind rules.RuleKind) (rules.Status, error)
	HasPending(ctx context.Context, jobID string, kind rules.RuleKind) (bool, error)
	MarkDone(ctx context.Context, jobID string, kind rules.RuleKind, resultID string) error
	MarkError(ctx context.Context, jobID string, kind rules.RuleKind, message string) error
}

// ResultStore holds completed determinations keyed by (resultId, ruleKind).
// InsertResult atomically checks the referenced job, inserts, and advances
// the job to Done; a reader can never observe one without the other.
type ResultStore interface {
	InsertResult(ctx context.Context, result rules.Result) (InsertOutcome, error)
	GetResult(ctx context.Context, resultID string, kind rules.RuleKind) (rules.Result, error)
	GetResultByJob(ctx context.Context, jobID string, kind rules.RuleKind) (rules.Result, error)
}

// UsedDetermination is the canonical (v2) shape of a consulted-downstream
// notification; the legacy v1 shape lives in pkg/usage and is migrated here.
type UsedDetermination struct {
	ID             string    `json:"id"`
	ProcessingID   string    `json:"processingId"`
	ArenaTimestamp time.Time `json:"arenaTimestamp"`
}

// UsageStore deduplicates used-determination notifications keyed by id.
type UsageStore interface {
	InsertUsedDetermination(ctx context.Context, d UsedDetermination) (InsertOutcome, error)
}
