package rules

import (
	"fmt"
	"time"
)

// Request carries the client-supplied parameters for a rule submission. The
// first three fields are required for every kind; the rest only apply to
// some kinds and ride along as optional overrides.
type Request struct {
	ActorID          string `json:"actorId"`
	DecisionID       int    `json:"decisionId"`
	CalculationDate  string `json:"calculationDate"`
	NumberOfChildren int    `json:"numberOfChildren,omitempty"`
	MilitaryService  bool   `json:"militaryService,omitempty"`
	FishingIndustry  bool   `json:"fishingIndustry,omitempty"`
	ManualBasis      *int   `json:"manualBasis,omitempty"`
	PreviousBasis    *int   `json:"previousBasis,omitempty"`
}

func (r Request) Validate() error {
	if r.ActorID == "" {
		return NewValidationError(fmt.Errorf("actorId required"))
	}
	if r.DecisionID <= 0 {
		return NewValidationError(fmt.Errorf("decisionId must be positive"))
	}
	if _, err := time.Parse("2006-01-02", r.CalculationDate); err != nil {
		return NewValidationError(fmt.Errorf("calculationDate must be an ISO date: %w", err))
	}
	return nil
}

// Packet builds the outbound event for the external engine, keyed by the
// fixed vocabulary. jobID is the fresh correlation id; the caller has
// already created the Pending job for it.
func (r Request) Packet(jobID string, kind RuleKind, contextType string) map[string]interface{} {
	packet := map[string]interface{}{
		KeyJobID:           jobID,
		KeyRuleKind:        string(kind),
		KeyContextType:     contextType,
		KeyContextID:       fmt.Sprintf("%d", r.DecisionID),
		KeyActorID:         r.ActorID,
		KeyDecisionID:      r.DecisionID,
		KeyCalculationDate: r.CalculationDate,
	}

	switch kind {
	case KindRate:
		packet[KeyNumberOfChildren] = r.NumberOfChildren
		packet[KeyMilitaryService] = r.MilitaryService
	case KindBasis:
		if r.ManualBasis != nil {
			packet[KeyManualBasis] = *r.ManualBasis
		}
		if r.PreviousBasis != nil {
			packet[KeyPreviousBasis] = *r.PreviousBasis
		}
	case KindPeriod, KindMinimumIncome:
		packet[KeyMilitaryService] = r.MilitaryService
		packet[KeyFishingIndustry] = r.FishingIndustry
	}

	return packet
}
