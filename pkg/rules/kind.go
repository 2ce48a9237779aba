package rules

import "fmt"

// RuleKind identifies one of the benefit-eligibility computations. The set
// is closed; a job is keyed by (jobId, kind) so the same correlation id can
// track one job per kind.
type RuleKind string

const (
	KindRate          RuleKind = "RATE"
	KindBasis         RuleKind = "BASIS"
	KindPeriod        RuleKind = "PERIOD"
	KindMinimumIncome RuleKind = "MINIMUM_INCOME"
)

func Kinds() []RuleKind {
	return []RuleKind{KindRate, KindBasis, KindPeriod, KindMinimumIncome}
}

func (k RuleKind) IsValid() bool {
	switch k {
	case KindRate, KindBasis, KindPeriod, KindMinimumIncome:
		return true
	}
	return false
}

// Path is the URL segment the HTTP layer mounts the kind under.
func (k RuleKind) Path() string {
	switch k {
	case KindRate:
		return "rate"
	case KindBasis:
		return "basis"
	case KindPeriod:
		return "period"
	case KindMinimumIncome:
		return "minimum-income"
	}
	return ""
}

func ParseRuleKind(s string) (RuleKind, error) {
	k := RuleKind(s)
	if !k.IsValid() {
		return "", fmt.Errorf("unknown rule kind %q", s)
	}
	return k, nil
}
