package store

import (
	"context"
	"errors"
	"time"

	"github.com/benefitsys/rules-api/pkg/rules"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Postgres implements JobStore, ResultStore and UsageStore on a shared
// relational database, the single source of truth for cross-component
// coordination. Idempotence is enforced by the primary keys plus
// insert-or-ignore, never by check-then-insert.
type Postgres struct {
	db      *gorm.DB
	timeout time.Duration
}

func NewPostgres(db *gorm.DB, timeout time.Duration) *Postgres {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Postgres{db: db, timeout: timeout}
}

func (s *Postgres) AutoMigrate() error {
	return s.db.AutoMigrate(&jobRow{}, &resultRow{}, &usedDeterminationRow{})
}

func (s *Postgres) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

func (s *Postgres) CreateJob(ctx context.Context, jobID string, kind rules.RuleKind) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	now := time.Now().UTC()
	row := jobRow{
		JobID:     jobID,
		RuleKind:  string(kind),
		Status:    string(rules.StatePending),
		CreatedAt: now,
		UpdatedAt: now,
	}
	result := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrDuplicateJob
	}
	return nil
}

func (s *Postgres) GetStatus(ctx context.Context, jobID string, kind rules.RuleKind) (rules.Status, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	row, err := s.jobFor(s.db.WithContext(ctx), jobID, kind)
	if err != nil {
		return rules.Status{}, err
	}
	return row.status(), nil
}

func (s *Postgres) HasPending(ctx context.Context, jobID string, kind rules.RuleKind) (bool, error) {
	status, err := s.GetStatus(ctx, jobID, kind)
	if err != nil {
		return false, err
	}
	return status.State == rules.StatePending, nil
}

func (s *Postgres) MarkDone(ctx context.Context, jobID string, kind rules.RuleKind, resultID string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := s.jobForUpdate(tx, jobID, kind)
		if err != nil {
			return err
		}
		return settleJob(tx, row, rules.Done(resultID))
	})
}

func (s *Postgres) MarkError(ctx context.Context, jobID string, kind rules.RuleKind, message string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := s.jobForUpdate(tx, jobID, kind)
		if err != nil {
			return err
		}
		return settleJob(tx, row, rules.Failed(message))
	})
}

// InsertResult is one transaction covering the job existence check, the
// insert-or-ignore, and the job advance. A concurrent status poll sees
// either Pending with no result or Done with a retrievable result, nothing
// in between.
func (s *Postgres) InsertResult(ctx context.Context, result rules.Result) (InsertOutcome, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	row, err := newResultRow(result)
	if err != nil {
		return Inserted, err
	}

	outcome := Inserted
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		job, err := s.jobForUpdate(tx, result.JobID, result.Kind)
		if err != nil {
			if errors.Is(err, ErrJobNotFound) {
				return ErrOrphanResult
			}
			return err
		}

		insert := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
		if insert.Error != nil {
			return insert.Error
		}
		if insert.RowsAffected == 0 {
			outcome = AlreadyExists
			return nil
		}

		return settleJob(tx, job, rules.Done(result.ResultID))
	})
	if err != nil {
		return Inserted, err
	}
	return outcome, nil
}

func (s *Postgres) GetResult(ctx context.Context, resultID string, kind rules.RuleKind) (rules.Result, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var row resultRow
	result := s.db.WithContext(ctx).First(&row, "result_id = ? AND rule_kind = ?", resultID, string(kind))
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return rules.Result{}, ErrResultNotFound
	}
	if result.Error != nil {
		return rules.Result{}, result.Error
	}
	return row.toResult()
}

func (s *Postgres) GetResultByJob(ctx context.Context, jobID string, kind rules.RuleKind) (rules.Result, error) {
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

func (s *Postgres) InsertUsedDetermination(ctx context.Context, d UsedDetermination) (InsertOutcome, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	row := usedDeterminationRow{
		ID:             d.ID,
		ProcessingID:   d.ProcessingID,
		ArenaTimestamp: d.ArenaTimestamp,
		CreatedAt:      time.Now().UTC(),
	}
	result := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
	if result.Error != nil {
		return Inserted, result.Error
	}
	if result.RowsAffected == 0 {
		return AlreadyExists, nil
	}
	return Inserted, nil
}

func (s *Postgres) jobFor(tx *gorm.DB, jobID string, kind rules.RuleKind) (jobRow, error) {
	var row jobRow
	result := tx.First(&row, "job_id = ? AND rule_kind = ?", jobID, string(kind))
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return jobRow{}, ErrJobNotFound
	}
	return row, result.Error
}

func (s *Postgres) jobForUpdate(tx *gorm.DB, jobID string, kind rules.RuleKind) (jobRow, error) {
	var row jobRow
	result := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&row, "job_id = ? AND rule_kind = ?", jobID, string(kind))
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return jobRow{}, ErrJobNotFound
	}
	return row, result.Error
}

// settleJob applies a terminal transition. Re-applying the same terminal
// value is a no-op; a conflicting terminal value is rejected.
func settleJob(tx *gorm.DB, row jobRow, target rules.Status) error {
	current := row.status()
	if current.Terminal() {
		if current == target {
			return nil
		}
		return ErrInvalidTransition
	}

	return tx.Model(&jobRow{}).
		Where("job_id = ? AND rule_kind = ?", row.JobID, row.RuleKind).
		Updates(map[string]interface{}{
			"status":     string(target.State),
			"result_id":  target.ResultID,
			"error":      target.Message,
			"updated_at": time.Now().UTC(),
		}).Error
}
