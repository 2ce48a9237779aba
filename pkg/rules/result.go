package rules

import (
	"fmt"
	"time"
)

var (
	validIncomePeriods   = []int{1, 2, 3}
	validQualifyingWeeks = []int{26, 52, 104}
)

// IncomeEntry is one reported income line for the minimum-income rule.
// Period is constrained to the closed set {1, 2, 3}.
type IncomeEntry struct {
	Amount              int  `json:"amount"`
	Period              int  `json:"period"`
	NearFishingIndustry bool `json:"nearFishingIndustry"`
	Share               int  `json:"share"`
}

func NewIncomeEntry(amount, period int, nearFishingIndustry bool, share int) (IncomeEntry, error) {
	if !containsInt(validIncomePeriods, period) {
		return IncomeEntry{}, NewValidationError(
			fmt.Errorf("invalid income period %d, valid values are %v", period, validIncomePeriods))
	}
	return IncomeEntry{
		Amount:              amount,
		Period:              period,
		NearFishingIndustry: nearFishingIndustry,
		Share:               share,
	}, nil
}

// IncomePeriod is a month range already consumed by an earlier determination.
type IncomePeriod struct {
	FirstMonth string `json:"firstMonth"`
	LastMonth  string `json:"lastMonth"`
}

type RateFacts struct {
	ActorID          string    `json:"actorId"`
	DecisionID       int       `json:"decisionId"`
	CalculationDate  time.Time `json:"calculationDate"`
	NumberOfChildren int       `json:"numberOfChildren"`
	MilitaryService  bool      `json:"militaryService"`
}

type BasisFacts struct {
	ActorID         string    `json:"actorId"`
	DecisionID      int       `json:"decisionId"`
	CalculationDate time.Time `json:"calculationDate"`
	IncomeID        string    `json:"incomeId"`
	ManualBasis     *int      `json:"manualBasis,omitempty"`
	PreviousBasis   *int      `json:"previousBasis,omitempty"`
}

type PeriodFacts struct {
	ActorID          string        `json:"actorId"`
	DecisionID       int           `json:"decisionId"`
	CalculationDate  time.Time     `json:"calculationDate"`
	IncomeID         string        `json:"incomeId"`
	MilitaryService  bool          `json:"militaryService"`
	FishingIndustry  bool          `json:"fishingIndustry"`
	UsedIncomePeriod *IncomePeriod `json:"usedIncomePeriod,omitempty"`
}

type MinimumIncomeFacts struct {
	ActorID         string        `json:"actorId"`
	DecisionID      int           `json:"decisionId"`
	CalculationDate time.Time     `json:"calculationDate"`
	IncomeID        string        `json:"incomeId"`
	MilitaryService bool          `json:"militaryService"`
	FishingIndustry bool          `json:"fishingIndustry"`
	Incomes         []IncomeEntry `json:"incomes"`
}

type RateOutcome struct {
	DayRate           int  `json:"dayRate"`
	WeekRate          int  `json:"weekRate"`
	NinetyPercentRule bool `json:"ninetyPercentRule"`
}

type BasisOutcome struct {
	AdjustedBasis   int `json:"adjustedBasis"`
	UnadjustedBasis int `json:"unadjustedBasis"`
}

type PeriodOutcome struct {
	Weeks int `json:"weeks"`
}

// MinimumIncomeOutcome carries the qualifying period length only when the
// requirement is met; when present it must be one of {26, 52, 104} weeks.
type MinimumIncomeOutcome struct {
	MeetsMinimumIncome    bool `json:"meetsMinimumIncome"`
	QualifyingPeriodWeeks *int `json:"qualifyingPeriodWeeks,omitempty"`
}

func NewMinimumIncomeOutcome(meets bool, qualifyingPeriodWeeks *int) (MinimumIncomeOutcome, error) {
	if qualifyingPeriodWeeks != nil && !containsInt(validQualifyingWeeks, *qualifyingPeriodWeeks) {
		return MinimumIncomeOutcome{}, NewValidationError(
			fmt.Errorf("invalid qualifying period of %d weeks, valid values are %v",
				*qualifyingPeriodWeeks, validQualifyingWeeks))
	}
	return MinimumIncomeOutcome{MeetsMinimumIncome: meets, QualifyingPeriodWeeks: qualifyingPeriodWeeks}, nil
}

// Facts is the tagged union of per-kind input payloads; exactly one variant
// is set and it matches the owning Result's kind.
type Facts struct {
	Rate          *RateFacts          `json:"rate,omitempty"`
	Basis         *BasisFacts         `json:"basis,omitempty"`
	Period        *PeriodFacts        `json:"period,omitempty"`
	MinimumIncome *MinimumIncomeFacts `json:"minimumIncome,omitempty"`
}

// Outcome mirrors Facts for the computed payloads.
type Outcome struct {
	Rate          *RateOutcome          `json:"rate,omitempty"`
	Basis         *BasisOutcome         `json:"basis,omitempty"`
	Period        *PeriodOutcome        `json:"period,omitempty"`
	MinimumIncome *MinimumIncomeOutcome `json:"minimumIncome,omitempty"`
}

// Result is the completed determination for a job: the validated facts the
// engine computed from plus the computed outcome. Identified by
// (ResultID, Kind); JobID ties it back to the originating job.
type Result struct {
	ResultID   string    `json:"resultId"`
	JobID      string    `json:"jobId"`
	Kind       RuleKind  `json:"ruleKind"`
	CreatedAt  time.Time `json:"createdAt"`
	ComputedAt time.Time `json:"computedAt"`
	Facts      Facts     `json:"facts"`
	Outcome    Outcome   `json:"outcome"`
}

func NewRateResult(resultID, jobID string, createdAt, computedAt time.Time, facts RateFacts, outcome RateOutcome) (Result, error) {
	if err := validateEnvelope(resultID, jobID); err != nil {
		return Result{}, err
	}
	return Result{
		ResultID:   resultID,
		JobID:      jobID,
		Kind:       KindRate,
		CreatedAt:  createdAt,
		ComputedAt: computedAt,
		Facts:      Facts{Rate: &facts},
		Outcome:    Outcome{Rate: &outcome},
	}, nil
}

func NewBasisResult(resultID, jobID string, createdAt, computedAt time.Time, facts BasisFacts, outcome BasisOutcome) (Result, error) {
	if err := validateEnvelope(resultID, jobID); err != nil {
		return Result{}, err
	}
	return Result{
		ResultID:   resultID,
		JobID:      jobID,
		Kind:       KindBasis,
		CreatedAt:  createdAt,
		ComputedAt: computedAt,
		Facts:      Facts{Basis: &facts},
		Outcome:    Outcome{Basis: &outcome},
	}, nil
}

func NewPeriodResult(resultID, jobID string, createdAt, computedAt time.Time, facts PeriodFacts, outcome PeriodOutcome) (Result, error) {
	if err := validateEnvelope(resultID, jobID); err != nil {
		return Result{}, err
	}
	if outcome.Weeks < 0 {
		return Result{}, NewValidationError(fmt.Errorf("negative period of %d weeks", outcome.Weeks))
	}
	return Result{
		ResultID:   resultID,
		JobID:      jobID,
		Kind:       KindPeriod,
		CreatedAt:  createdAt,
		ComputedAt: computedAt,
		Facts:      Facts{Period: &facts},
		Outcome:    Outcome{Period: &outcome},
	}, nil
}

func NewMinimumIncomeResult(resultID, jobID string, createdAt, computedAt time.Time, facts MinimumIncomeFacts, outcome MinimumIncomeOutcome) (Result, error) {
	if err := validateEnvelope(resultID, jobID); err != nil {
		return Result{}, err
	}
	for _, entry := range facts.Incomes {
		if !containsInt(validIncomePeriods, entry.Period) {
			return Result{}, NewValidationError(
				fmt.Errorf("invalid income period %d, valid values are %v", entry.Period, validIncomePeriods))
		}
	}
	if _, err := NewMinimumIncomeOutcome(outcome.MeetsMinimumIncome, outcome.QualifyingPeriodWeeks); err != nil {
		return Result{}, err
	}
	return Result{
		ResultID:   resultID,
		JobID:      jobID,
		Kind:       KindMinimumIncome,
		CreatedAt:  createdAt,
		ComputedAt: computedAt,
		Facts:      Facts{MinimumIncome: &facts},
		Outcome:    Outcome{MinimumIncome: &outcome},
	}, nil
}

func validateEnvelope(resultID, jobID string) error {
	if resultID == "" {
		return NewValidationError(fmt.Errorf("result id required"))
	}
	if jobID == "" {
		return NewValidationError(fmt.Errorf("job id required"))
	}
	return nil
}

func containsInt(set []int, v int) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
