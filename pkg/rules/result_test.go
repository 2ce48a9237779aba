package rules

import (
	"testing"
	"time"
)

func TestNewIncomeEntryRejectsInvalidPeriod(t *testing.T) {
	for _, period := range []int{0, 4, -1, 100} {
		if _, err := NewIncomeEntry(1000, period, false, 50); err == nil {
			t.Fatalf("expected error for period %d", period)
		} else if !IsValidationError(err) {
			t.Fatalf("expected validation error for period %d, got %v", period, err)
		}
	}
}

func TestNewIncomeEntryAcceptsValidPeriods(t *testing.T) {
	for _, period := range []int{1, 2, 3} {
		entry, err := NewIncomeEntry(1000, period, true, 50)
		if err != nil {
			t.Fatalf("unexpected error for period %d: %v", period, err)
		}
		if entry.Period != period {
			t.Fatalf("expected period %d, got %d", period, entry.Period)
		}
	}
}

func TestNewMinimumIncomeOutcomeRejectsInvalidWeeks(t *testing.T) {
	for _, weeks := range []int{0, 25, 27, 53, 103, 105} {
		w := weeks
		if _, err := NewMinimumIncomeOutcome(true, &w); err == nil {
			t.Fatalf("expected error for %d weeks", weeks)
		}
	}
}

func TestNewMinimumIncomeOutcomeAcceptsValidWeeks(t *testing.T) {
	for _, weeks := range []int{26, 52, 104} {
		w := weeks
		outcome, err := NewMinimumIncomeOutcome(true, &w)
		if err != nil {
			t.Fatalf("unexpected error for %d weeks: %v", weeks, err)
		}
		if *outcome.QualifyingPeriodWeeks != weeks {
			t.Fatalf("expected %d weeks, got %d", weeks, *outcome.QualifyingPeriodWeeks)
		}
	}
}

func TestNewMinimumIncomeOutcomeAllowsAbsentWeeks(t *testing.T) {
	outcome, err := NewMinimumIncomeOutcome(false, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.QualifyingPeriodWeeks != nil {
		t.Fatal("expected no qualifying period")
	}
}

func TestNewMinimumIncomeResultValidatesIncomePeriods(t *testing.T) {
	now := time.Now()
	facts := MinimumIncomeFacts{
		ActorID:         "actor",
		DecisionID:      1,
		CalculationDate: now,
		IncomeID:        "income",
		Incomes:         []IncomeEntry{{Amount: 1000, Period: 7}},
	}
	_, err := NewMinimumIncomeResult("subId", "behovId", now, now, facts, MinimumIncomeOutcome{MeetsMinimumIncome: true})
	if err == nil {
		t.Fatal("expected error for out-of-set income period")
	}
	if !IsValidationError(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestNewResultRequiresIDs(t *testing.T) {
	now := time.Now()
	if _, err := NewRateResult("", "job", now, now, RateFacts{}, RateOutcome{}); err == nil {
		t.Fatal("expected error for empty result id")
	}
	if _, err := NewRateResult("res", "", now, now, RateFacts{}, RateOutcome{}); err == nil {
		t.Fatal("expected error for empty job id")
	}
}

func TestNewPeriodResultRejectsNegativeWeeks(t *testing.T) {
	now := time.Now()
	_, err := NewPeriodResult("res", "job", now, now, PeriodFacts{ActorID: "a"}, PeriodOutcome{Weeks: -1})
	if err == nil {
		t.Fatal("expected error for negative weeks")
	}
}

func TestResultCarriesMatchingVariant(t *testing.T) {
	now := time.Now()
	result, err := NewMinimumIncomeResult("subId", "behovId", now, now,
		MinimumIncomeFacts{ActorID: "actor", DecisionID: 1, CalculationDate: now, IncomeID: "income"},
		MinimumIncomeOutcome{MeetsMinimumIncome: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Kind != KindMinimumIncome {
		t.Fatalf("expected kind %s, got %s", KindMinimumIncome, result.Kind)
	}
	if result.Facts.MinimumIncome == nil || result.Outcome.MinimumIncome == nil {
		t.Fatal("expected minimum-income variant to be set")
	}
	if result.Facts.Rate != nil || result.Outcome.Rate != nil {
		t.Fatal("expected other variants to be empty")
	}
}
