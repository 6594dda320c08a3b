package scan

import (
	"testing"
	"time"

	"scanbridge/internal/domain"
)

func scanAt(code string, timestampMs int64) domain.ScanResult {
	return domain.ScanResult{
		RawData:     code,
		ProductCode: code,
		Kind:        domain.PayloadPlain,
		TimestampMs: timestampMs,
	}
}

func TestSubmitFirstScanEmits(t *testing.T) {
	s := NewSession(0)
	d := s.Submit(scanAt("8991002101234", 1000))
	if d.Kind != DecisionEmit {
		t.Fatalf("first scan must emit, got %v", d.Kind)
	}
	if d.Multiplier != 1 {
		t.Fatalf("multiplier = %d, want 1", d.Multiplier)
	}
}

func TestSubmitRepeatInsideWindowPrompts(t *testing.T) {
	s := NewSession(2 * time.Second)

	if d := s.Submit(scanAt("CODE-A", 1000)); d.Kind != DecisionEmit {
		t.Fatalf("first scan should emit")
	}
	d := s.Submit(scanAt("CODE-A", 1500))
	if d.Kind != DecisionMultiplierPrompt {
		t.Fatalf("repeat at +500ms should prompt, got %v", d.Kind)
	}

	res, ok := s.ConsumePrompt()
	if !ok || res.Code() != "CODE-A" {
		t.Fatalf("prompt scan = %+v ok=%v", res, ok)
	}
	if _, ok := s.ConsumePrompt(); ok {
		t.Fatalf("prompt must be consumable only once")
	}
}

func TestSubmitRepeatOutsideWindowEmitsTwice(t *testing.T) {
	s := NewSession(2 * time.Second)

	if d := s.Submit(scanAt("CODE-A", 1000)); d.Kind != DecisionEmit {
		t.Fatalf("first scan should emit")
	}
	if d := s.Submit(scanAt("CODE-A", 6000)); d.Kind != DecisionEmit {
		t.Fatalf("repeat at +5000ms should emit, got %v", d.Kind)
	}
}

func TestSubmitDifferentCodeEmits(t *testing.T) {
	s := NewSession(2 * time.Second)
	s.Submit(scanAt("CODE-A", 1000))
	if d := s.Submit(scanAt("CODE-B", 1200)); d.Kind != DecisionEmit {
		t.Fatalf("different code inside window should still emit")
	}
}

func TestArmAppliesToNextEmitOnly(t *testing.T) {
	s := NewSession(2 * time.Second)
	s.Arm(6)

	d := s.Submit(scanAt("CODE-A", 1000))
	if d.Kind != DecisionEmit || d.Multiplier != 6 {
		t.Fatalf("armed multiplier should apply: %+v", d)
	}

	d = s.Submit(scanAt("CODE-B", 5000))
	if d.Multiplier != 1 {
		t.Fatalf("multiplier must reset after one use, got %d", d.Multiplier)
	}
}

func TestArmClampsToOne(t *testing.T) {
	s := NewSession(2 * time.Second)
	s.Arm(0)
	d := s.Submit(scanAt("CODE-A", 1000))
	if d.Multiplier != 1 {
		t.Fatalf("multiplier = %d, want 1", d.Multiplier)
	}
}

func TestResetClearsDedupState(t *testing.T) {
	s := NewSession(2 * time.Second)
	s.Submit(scanAt("CODE-A", 1000))
	s.Reset()

	// Same code right after reset is a fresh scan, not a repeat.
	if d := s.Submit(scanAt("CODE-A", 1100)); d.Kind != DecisionEmit {
		t.Fatalf("scan after reset should emit, got %v", d.Kind)
	}
}
