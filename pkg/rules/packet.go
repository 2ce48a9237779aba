package rules

import (
	"encoding/json"
	"fmt"
)

// Fixed key vocabulary of the event contract shared with the external rule
// engine. The engine echoes jobId and ruleKind back on result packets; the
// remaining keys carry request facts outbound and result payloads inbound.
const (
	KeyJobID            = "jobId"
	KeyRuleKind         = "ruleKind"
	KeyContextType      = "contextType"
	KeyContextID        = "contextId"
	KeyActorID          = "actorId"
	KeyDecisionID       = "decisionId"
	KeyCalculationDate  = "calculationDate"
	KeyNumberOfChildren = "numberOfChildren"
	KeyMilitaryService  = "militaryService"
	KeyFishingIndustry  = "fishingIndustry"
	KeyManualBasis      = "manualBasis"
	KeyPreviousBasis    = "previousBasis"
	KeyIncomeID         = "incomeId"
	KeyUsedIncomePeriod = "usedIncomePeriod"
	KeyProblem          = "system_problem"
)

// Packet is one message on the rule event topics, a flat JSON object over
// the key vocabulary above.
type Packet map[string]interface{}

func ParsePacket(value []byte) (Packet, error) {
	var p Packet
	if err := json.Unmarshal(value, &p); err != nil {
		return nil, fmt.Errorf("parsing packet: %w", err)
	}
	return p, nil
}

func (p Packet) JobID() (string, error) {
	return p.stringValue(KeyJobID)
}

func (p Packet) RuleKind() (RuleKind, error) {
	raw, err := p.stringValue(KeyRuleKind)
	if err != nil {
		return "", err
	}
	return ParseRuleKind(raw)
}

// HasProblem reports whether the engine flagged the evaluation as failed.
func (p Packet) HasProblem() bool {
	_, ok := p[KeyProblem]
	return ok
}

func (p Packet) Problem() string {
	raw, ok := p[KeyProblem]
	if !ok {
		return ""
	}
	switch v := raw.(type) {
	case string:
		return v
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(b)
	}
}

// Payload re-marshals the value under key so callers can decode it into a
// typed result body.
func (p Packet) Payload(key string) (json.RawMessage, error) {
	raw, ok := p[key]
	if !ok {
		return nil, fmt.Errorf("packet missing %q", key)
	}
	b, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("re-encoding packet value %q: %w", key, err)
	}
	return b, nil
}

func (p Packet) stringValue(key string) (string, error) {
	raw, ok := p[key]
	if !ok {
		return "", fmt.Errorf("packet missing %q", key)
	}
	s, ok := raw.(string)
	if !ok || s == "" {
		return "", fmt.Errorf("packet value %q is not a string", key)
	}
	return s, nil
}
