package rules

import "testing"

func TestParsePacketExtractsIdentity(t *testing.T) {
	raw := []byte(`{"jobId":"behovId","ruleKind":"PERIOD","actorId":"actor"}`)
	packet, err := ParsePacket(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	jobID, err := packet.JobID()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if jobID != "behovId" {
		t.Fatalf("expected jobId behovId, got %s", jobID)
	}

	kind, err := packet.RuleKind()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if kind != KindPeriod {
		t.Fatalf("expected PERIOD, got %s", kind)
	}
}

func TestParsePacketRejectsMalformedJSON(t *testing.T) {
	if _, err := ParsePacket([]byte(`{"jobId":`)); err == nil {
		t.Fatal("expected error for malformed packet")
	}
}

func TestPacketMissingKeys(t *testing.T) {
	packet, err := ParsePacket([]byte(`{"actorId":"actor"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := packet.JobID(); err == nil {
		t.Fatal("expected error for missing jobId")
	}
	if _, err := packet.RuleKind(); err == nil {
		t.Fatal("expected error for missing ruleKind")
	}
}

func TestPacketUnknownRuleKind(t *testing.T) {
	packet, err := ParsePacket([]byte(`{"jobId":"j","ruleKind":"BOGUS"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := packet.RuleKind(); err == nil {
		t.Fatal("expected error for unknown rule kind")
	}
}

func TestPacketProblem(t *testing.T) {
	packet, err := ParsePacket([]byte(`{"jobId":"j","system_problem":"engine blew up"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !packet.HasProblem() {
		t.Fatal("expected problem flag")
	}
	if packet.Problem() != "engine blew up" {
		t.Fatalf("unexpected problem text %q", packet.Problem())
	}

	clean, _ := ParsePacket([]byte(`{"jobId":"j"}`))
	if clean.HasProblem() {
		t.Fatal("expected no problem flag")
	}
}

func TestPacketPayloadRoundTrip(t *testing.T) {
	packet, err := ParsePacket([]byte(`{"jobId":"j","periodResult":{"resultId":"r","outcome":{"weeks":52}}}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	raw, err := packet.Payload("periodResult")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(raw) == 0 {
		t.Fatal("expected payload bytes")
	}

	if _, err := packet.Payload("rateResult"); err == nil {
		t.Fatal("expected error for missing payload key")
	}
}
