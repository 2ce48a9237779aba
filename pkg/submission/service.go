package submission

import (
	"context"
	"fmt"

	"github.com/benefitsys/rules-api/pkg/common/logger"
	"github.com/benefitsys/rules-api/pkg/rules"
	"github.com/benefitsys/rules-api/pkg/store"
	"github.com/google/uuid"
)

// Producer is the outbound event boundary towards the external rule engine.
type Producer interface {
	Publish(ctx context.Context, key string, payload map[string]interface{}) error
}

type Service struct {
	jobs        store.JobStore
	producer    Producer
	contextType string
}

func NewService(jobs store.JobStore, producer Producer, contextType string) *Service {
	if contextType == "" {
		contextType = "decision"
	}
	return &Service{jobs: jobs, producer: producer, contextType: contextType}
}

// Submit records a Pending job and then publishes the request event under
// the same correlation id. The job row exists before the engine can observe
// the event, so a result can never arrive for an unknown job. A publish
// failure settles the job as Error so pollers are not left hanging.
func (s *Service) Submit(ctx context.Context, kind rules.RuleKind, req rules.Request) (string, error) {
	if !kind.IsValid() {
		return "", rules.NewValidationError(fmt.Errorf("unknown rule kind %q", kind))
	}
	if err := req.Validate(); err != nil {
		return "", err
	}

	jobID := uuid.New().String()
	if err := s.jobs.CreateJob(ctx, jobID, kind); err != nil {
		return "", fmt.Errorf("creating job: %w", err)
	}

	if err := s.producer.Publish(ctx, jobID, req.Packet(jobID, kind, s.contextType)); err != nil {
		if markErr := s.jobs.MarkError(ctx, jobID, kind, "publishing request event failed"); markErr != nil {
			logger.Log.WithError(markErr).WithField("job_id", jobID).Error("failed to settle job after publish failure")
		}
		return "", fmt.Errorf("publishing request event: %w", err)
	}

	logger.Log.WithFields(map[string]interface{}{
		"job_id":    jobID,
		"rule_kind": string(kind),
	}).Info("Rule evaluation submitted")

	return jobID, nil
}

func (s *Service) Status(ctx context.Context, jobID string, kind rules.RuleKind) (rules.Status, error) {
	return s.jobs.GetStatus(ctx, jobID, kind)
}
