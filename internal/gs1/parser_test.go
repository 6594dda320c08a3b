package gs1

import "testing"

func TestParseTypicalElementString(t *testing.T) {
	p := Parse("(01)09506000134352(17)251231(10)ABC123")
	if p.GTIN != "09506000134352" {
		t.Fatalf("gtin = %q", p.GTIN)
	}
	if p.ExpiryDate != "2025-12-31" {
		t.Fatalf("expiry = %q", p.ExpiryDate)
	}
	if p.Batch != "ABC123" {
		t.Fatalf("batch = %q", p.Batch)
	}
}

func TestParseWeightAndDimensions(t *testing.T) {
	p := Parse("(01)02000001000017(3102)001234")
	if p.NetWeight != "12.34" {
		t.Fatalf("net weight = %q, want 12.34", p.NetWeight)
	}

	p = Parse("(3100)000500")
	if p.NetWeight != "500" {
		t.Fatalf("zero-decimal weight = %q, want 500", p.NetWeight)
	}
}

func TestParseMonetaryFields(t *testing.T) {
	p := Parse("(3922)0500")
	if p.Price != "5.00" {
		t.Fatalf("price = %q, want 5.00", p.Price)
	}
	if p.Currency != "" {
		t.Fatalf("AI 392n carries no currency, got %q", p.Currency)
	}

	p = Parse("(3932)9780500")
	if p.Price != "5.00" {
		t.Fatalf("currency price = %q, want 5.00", p.Price)
	}
	if p.Currency != "978" {
		t.Fatalf("currency = %q, want 978", p.Currency)
	}

	p = Parse("(3912)8400500")
	if p.AmountPayable != "5.00" || p.Currency != "840" {
		t.Fatalf("amount = %q currency = %q", p.AmountPayable, p.Currency)
	}

	p = Parse("(8005)000150")
	if p.PricePerUnit != "1.50" {
		t.Fatalf("price per unit = %q, want 1.50", p.PricePerUnit)
	}
}

func TestParseQuantityFields(t *testing.T) {
	p := Parse("(30)012")
	if p.Quantity != "12" {
		t.Fatalf("quantity = %q, want 12", p.Quantity)
	}

	p = Parse("(37)24")
	if p.ContainedCount != "24" {
		t.Fatalf("contained count = %q, want 24", p.ContainedCount)
	}

	// Non-numeric quantity is dropped, not propagated.
	p = Parse("(30)1X")
	if p.Quantity != "" {
		t.Fatalf("invalid quantity should be dropped, got %q", p.Quantity)
	}
}

func TestParseDates(t *testing.T) {
	p := Parse("(11)000101")
	if p.ProductionDate != "2000-01-01" {
		t.Fatalf("production date = %q", p.ProductionDate)
	}

	// Month 13 is invalid; the field is skipped and the rest still parses.
	p = Parse("(17)251331(10)OK")
	if p.ExpiryDate != "" {
		t.Fatalf("invalid date should be dropped, got %q", p.ExpiryDate)
	}
	if p.Batch != "OK" {
		t.Fatalf("batch = %q", p.Batch)
	}
}

func TestParseFNC1Separator(t *testing.T) {
	p := Parse("(10)AB12\x1d(21)XYZ99")
	if p.Batch != "AB12" {
		t.Fatalf("batch = %q, want AB12", p.Batch)
	}
	if p.Serial != "XYZ99" {
		t.Fatalf("serial = %q, want XYZ99", p.Serial)
	}
}

func TestParseVariableFieldBoundary(t *testing.T) {
	// Without FNC1, the next recognized AI token bounds the batch value.
	p := Parse("(10)LOT42(01)09506000134352")
	if p.Batch != "LOT42" {
		t.Fatalf("batch = %q, want LOT42", p.Batch)
	}
	if p.GTIN != "09506000134352" {
		t.Fatalf("gtin = %q", p.GTIN)
	}
}

// TestParseAmbiguousBoundary pins the known limitation of the no-FNC1
// heuristic: a variable value that itself contains a digit group matching a
// known AI gets split at that group.
func TestParseAmbiguousBoundary(t *testing.T) {
	p := Parse("(10)AB(21)X")
	if p.Batch != "AB" {
		t.Fatalf("batch = %q", p.Batch)
	}
	if p.Serial != "X" {
		t.Fatalf("serial = %q", p.Serial)
	}
}

func TestParseNoRecognizableAI(t *testing.T) {
	for _, raw := range []string{"HELLO12345", "", "8991002101234", "(99)123", "(01"} {
		p := Parse(raw)
		if !p.IsEmpty() {
			t.Fatalf("%q should yield an empty payload, got %+v", raw, p)
		}
	}
}

func TestParseTruncatedFixedField(t *testing.T) {
	p := Parse("(01)123")
	if p.GTIN != "" {
		t.Fatalf("truncated gtin should be dropped, got %q", p.GTIN)
	}
}

func TestPointDecimal(t *testing.T) {
	cases := []struct {
		value  string
		digits int
		want   string
	}{
		{"001234", 2, "12.34"},
		{"0500", 2, "5.00"},
		{"000001", 3, "0.001"},
		{"1234", 0, "1234"},
		{"000000", 2, "0.00"},
	}
	for _, tc := range cases {
		got, ok := pointDecimal(tc.value, tc.digits)
		if !ok || got != tc.want {
			t.Fatalf("pointDecimal(%q, %d) = %q (%v), want %q", tc.value, tc.digits, got, ok, tc.want)
		}
	}
	if _, ok := pointDecimal("12a4", 2); ok {
		t.Fatalf("non-digit value must not convert")
	}
}
