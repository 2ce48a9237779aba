package ingestion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/benefitsys/rules-api/pkg/common/logger"
	"github.com/benefitsys/rules-api/pkg/rules"
	"github.com/benefitsys/rules-api/pkg/store"
)

// Handler ingests finished-result packets from the rule engine. Safe for
// concurrent invocation from multiple transport partitions: all coordination
// happens in the store transaction.
type Handler struct {
	jobs    store.JobStore
	results store.ResultStore
	catalog rules.Catalog
}

func NewHandler(jobs store.JobStore, results store.ResultStore, catalog rules.Catalog) *Handler {
	return &Handler{jobs: jobs, results: results, catalog: catalog}
}

// resultBody is the engine's result payload under the per-kind packet key.
type resultBody struct {
	ResultID   string          `json:"resultId"`
	CreatedAt  time.Time       `json:"createdAt"`
	ComputedAt time.Time       `json:"computedAt"`
	Facts      json.RawMessage `json:"facts"`
	Outcome    json.RawMessage `json:"outcome"`
}

// Handle processes one inbound packet. A problem packet settles the job as
// Error; otherwise the result is validated, stored idempotently, and the job
// advanced to Done. A duplicate delivery is success.
func (h *Handler) Handle(ctx context.Context, _, value []byte) error {
	packet, err := rules.ParsePacket(value)
	if err != nil {
		return err
	}

	jobID, err := packet.JobID()
	if err != nil {
		return err
	}
	kind, err := packet.RuleKind()
	if err != nil {
		return err
	}

	if packet.HasProblem() {
		if err := h.jobs.MarkError(ctx, jobID, kind, packet.Problem()); err != nil {
			return fmt.Errorf("settling failed job %s/%s: %w", jobID, kind, err)
		}
		logger.Log.WithFields(map[string]interface{}{
			"job_id":    jobID,
			"rule_kind": string(kind),
		}).Warn("Rule evaluation reported a problem")
		return nil
	}

	result, err := h.buildResult(packet, jobID, kind)
	if err != nil {
		return err
	}

	outcome, err := h.results.InsertResult(ctx, result)
	if err != nil {
		if errors.Is(err, store.ErrOrphanResult) {
			return fmt.Errorf("result %s/%s: %w", result.ResultID, kind, err)
		}
		return err
	}

	entry := logger.Log.WithFields(map[string]interface{}{
		"job_id":    jobID,
		"result_id": result.ResultID,
		"rule_kind": string(kind),
	})
	if outcome == store.AlreadyExists {
		entry.Debug("Result already stored, duplicate delivery ignored")
	} else {
		entry.Info("Result stored")
	}
	return nil
}

func (h *Handler) buildResult(packet rules.Packet, jobID string, kind rules.RuleKind) (rules.Result, error) {
	key, err := h.catalog.ResultKey(kind)
	if err != nil {
		return rules.Result{}, err
	}
	raw, err := packet.Payload(key)
	if err != nil {
		return rules.Result{}, err
	}

	var body resultBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return rules.Result{}, fmt.Errorf("decoding %s result body: %w", kind, err)
	}

	switch kind {
	case rules.KindRate:
		var facts rules.RateFacts
		var outcome rules.RateOutcome
		if err := decodeParts(body, &facts, &outcome); err != nil {
			return rules.Result{}, err
		}
		return rules.NewRateResult(body.ResultID, jobID, body.CreatedAt, body.ComputedAt, facts, outcome)
	case rules.KindBasis:
		var facts rules.BasisFacts
		var outcome rules.BasisOutcome
		if err := decodeParts(body, &facts, &outcome); err != nil {
			return rules.Result{}, err
		}
		return rules.NewBasisResult(body.ResultID, jobID, body.CreatedAt, body.ComputedAt, facts, outcome)
	case rules.KindPeriod:
		var facts rules.PeriodFacts
		var outcome rules.PeriodOutcome
		if err := decodeParts(body, &facts, &outcome); err != nil {
			return rules.Result{}, err
		}
		return rules.NewPeriodResult(body.ResultID, jobID, body.CreatedAt, body.ComputedAt, facts, outcome)
	case rules.KindMinimumIncome:
		var facts rules.MinimumIncomeFacts
		var outcome rules.MinimumIncomeOutcome
		if err := decodeParts(body, &facts, &outcome); err != nil {
			return rules.Result{}, err
		}
		return rules.NewMinimumIncomeResult(body.ResultID, jobID, body.CreatedAt, body.ComputedAt, facts, outcome)
	}
	return rules.Result{}, fmt.Errorf("unknown rule kind %q", kind)
}

func decodeParts(body resultBody, facts, outcome interface{}) error {
	if len(body.Facts) > 0 {
		if err := json.Unmarshal(body.Facts, facts); err != nil {
			return fmt.Errorf("decoding facts: %w", err)
		}
	}
	if len(body.Outcome) > 0 {
		if err := json.Unmarshal(body.Outcome, outcome); err != nil {
			return fmt.Errorf("decoding outcome: %w", err)
		}
	}
	return nil
}
