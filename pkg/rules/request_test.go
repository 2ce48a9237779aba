package rules

import "testing"

func TestRequestValidate(t *testing.T) {
	valid := Request{ActorID: "9000000028204", DecisionID: 1, CalculationDate: "2019-01-08"}
	if err := valid.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cases := map[string]Request{
		"missing actor":    {DecisionID: 1, CalculationDate: "2019-01-08"},
		"missing decision": {ActorID: "a", CalculationDate: "2019-01-08"},
		"bad date":         {ActorID: "a", DecisionID: 1, CalculationDate: "08.01.2019"},
	}
	for name, req := range cases {
		if err := req.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", name)
		} else if !IsValidationError(err) {
			t.Fatalf("%s: expected validation error, got %v", name, err)
		}
	}
}

func TestRequestPacketVocabulary(t *testing.T) {
	req := Request{ActorID: "actor", DecisionID: 7, CalculationDate: "2019-01-08", NumberOfChildren: 2, MilitaryService: true}
	packet := req.Packet("job-1", KindRate, "decision")

	if packet[KeyJobID] != "job-1" {
		t.Fatalf("expected jobId job-1, got %v", packet[KeyJobID])
	}
	if packet[KeyRuleKind] != string(KindRate) {
		t.Fatalf("expected ruleKind RATE, got %v", packet[KeyRuleKind])
	}
	if packet[KeyContextType] != "decision" {
		t.Fatalf("expected contextType decision, got %v", packet[KeyContextType])
	}
	if packet[KeyContextID] != "7" {
		t.Fatalf("expected contextId 7, got %v", packet[KeyContextID])
	}
	if packet[KeyNumberOfChildren] != 2 {
		t.Fatalf("expected numberOfChildren 2, got %v", packet[KeyNumberOfChildren])
	}
	if _, ok := packet[KeyFishingIndustry]; ok {
		t.Fatal("rate packet must not carry fishing-industry key")
	}
}

func TestRequestPacketBasisOverrides(t *testing.T) {
	manual := 250000
	req := Request{ActorID: "actor", DecisionID: 7, CalculationDate: "2019-01-08", ManualBasis: &manual}
	packet := req.Packet("job-1", KindBasis, "decision")

	if packet[KeyManualBasis] != manual {
		t.Fatalf("expected manualBasis %d, got %v", manual, packet[KeyManualBasis])
	}
	if _, ok := packet[KeyPreviousBasis]; ok {
		t.Fatal("previousBasis must be omitted when unset")
	}
}
