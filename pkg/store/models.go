package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/benefitsys/rules-api/pkg/rules"
	"gorm.io/datatypes"
)

type jobRow struct {
	JobID     string    `gorm:"primaryKey;column:job_id"`
	RuleKind  string    `gorm:"primaryKey;column:rule_kind"`
	Status    string    `gorm:"column:status"`
	ResultID  string    `gorm:"column:result_id"`
	Error     string    `gorm:"column:error"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (jobRow) TableName() string {
	return "rule_jobs"
}

func (r jobRow) status() rules.Status {
	switch rules.State(r.Status) {
	case rules.StateDone:
		return rules.Done(r.ResultID)
	case rules.StateError:
		return rules.Failed(r.Error)
	default:
		return rules.Pending()
	}
}

type resultRow struct {
	ResultID   string         `gorm:"primaryKey;column:result_id"`
	RuleKind   string         `gorm:"primaryKey;column:rule_kind"`
	JobID      string         `gorm:"column:job_id"`
	CreatedAt  time.Time      `gorm:"column:created_at"`
	ComputedAt time.Time      `gorm:"column:computed_at"`
	Facts      datatypes.JSON `gorm:"column:facts"`
	Outcome    datatypes.JSON `gorm:"column:outcome"`
}

func (resultRow) TableName() string {
	return "rule_results"
}

func newResultRow(result rules.Result) (resultRow, error) {
	facts, err := json.Marshal(result.Facts)
	if err != nil {
		return resultRow{}, fmt.Errorf("encoding facts: %w", err)
	}
	outcome, err := json.Marshal(result.Outcome)
	if err != nil {
		return resultRow{}, fmt.Errorf("encoding outcome: %w", err)
	}
	return resultRow{
		ResultID:   result.ResultID,
		RuleKind:   string(result.Kind),
		JobID:      result.JobID,
		CreatedAt:  result.CreatedAt,
		ComputedAt: result.ComputedAt,
		Facts:      datatypes.JSON(facts),
		Outcome:    datatypes.JSON(outcome),
	}, nil
}

func (r resultRow) toResult() (rules.Result, error) {
	result := rules.Result{
		ResultID:   r.ResultID,
		JobID:      r.JobID,
		Kind:       rules.RuleKind(r.RuleKind),
		CreatedAt:  r.CreatedAt,
		ComputedAt: r.ComputedAt,
	}
	if err := json.Unmarshal(r.Facts, &result.Facts); err != nil {
		return rules.Result{}, fmt.Errorf("decoding facts: %w", err)
	}
	if err := json.Unmarshal(r.Outcome, &result.Outcome); err != nil {
		return rules.Result{}, fmt.Errorf("decoding outcome: %w", err)
	}
	return result, nil
}

type usedDeterminationRow struct {
	ID             string    `gorm:"primaryKey;column:id"`
	ProcessingID   string    `gorm:"column:processing_id"`
	ArenaTimestamp time.Time `gorm:"column:arena_ts"`
	CreatedAt      time.Time `gorm:"column:created_at"`
}

func (usedDeterminationRow) TableName() string {
	return "used_determinations"
}
