package scan

import (
	"testing"

	"scanbridge/internal/domain"
)

func TestClassifyEAN13(t *testing.T) {
	res := Classify("8991002101234", "ean_13", domain.ChannelCamera, 1000)
	if res.Kind != domain.PayloadPlain {
		t.Fatalf("kind = %q", res.Kind)
	}
	if res.Symbology != domain.SymbologyEAN13 {
		t.Fatalf("symbology = %q", res.Symbology)
	}
	if res.ProductCode != "8991002101234" || res.GTIN != "8991002101234" {
		t.Fatalf("product code = %q gtin = %q", res.ProductCode, res.GTIN)
	}
}

func TestClassifyGS1ElementString(t *testing.T) {
	res := Classify("(01)09506000134352(17)251231(10)ABC123", "qr_code", domain.ChannelCamera, 1000)
	if res.Kind != domain.PayloadGS1 {
		t.Fatalf("kind = %q", res.Kind)
	}
	if res.GS1 == nil {
		t.Fatalf("gs1 payload missing")
	}
	if res.ProductCode != "09506000134352" {
		t.Fatalf("product code = %q", res.ProductCode)
	}
	if res.GS1.ExpiryDate != "2025-12-31" || res.GS1.Batch != "ABC123" {
		t.Fatalf("payload = %+v", res.GS1)
	}
}

func TestClassifySentinelTokens(t *testing.T) {
	cases := []struct {
		raw   string
		field string
		value string
	}{
		{"CUSTOMER:C-0042", "customerCode", "C-0042"},
		{"COUPON:SAVE10", "couponCode", "SAVE10"},
		{"CUFE:abc123def", "cufe", "abc123def"},
		{"AUTH:tok-9", "authCode", "tok-9"},
	}
	for _, tc := range cases {
		res := Classify(tc.raw, "QR", domain.ChannelCamera, 1000)
		if res.Kind != domain.PayloadSentinel {
			t.Fatalf("%q: kind = %q", tc.raw, res.Kind)
		}
		if res.Sentinel == nil || res.Sentinel.Field != tc.field || res.Sentinel.Value != tc.value {
			t.Fatalf("%q: sentinel = %+v", tc.raw, res.Sentinel)
		}
	}
}

func TestClassifyJSONPayload(t *testing.T) {
	res := Classify(`{"productCode":"SKU-MIE-01","qty":2,"fresh":true,"nested":{"x":1}}`, "QR", domain.ChannelCamera, 1000)
	if res.Kind != domain.PayloadJSON {
		t.Fatalf("kind = %q", res.Kind)
	}
	if res.ProductCode != "SKU-MIE-01" {
		t.Fatalf("product code = %q", res.ProductCode)
	}
	if res.JSON["qty"] != "2" {
		t.Fatalf("qty = %q", res.JSON["qty"])
	}
	if res.JSON["fresh"] != "true" {
		t.Fatalf("fresh = %q", res.JSON["fresh"])
	}
	if _, ok := res.JSON["nested"]; ok {
		t.Fatalf("nested values should be dropped")
	}
}

func TestClassifyMalformedJSONFallsBack(t *testing.T) {
	res := Classify("{not json", "QR", domain.ChannelCamera, 1000)
	if res.Kind != domain.PayloadPlain {
		t.Fatalf("kind = %q", res.Kind)
	}
	if res.ProductCode != "{not json" {
		t.Fatalf("product code = %q", res.ProductCode)
	}
}

func TestClassifyOpaqueFallback(t *testing.T) {
	res := Classify("HELLO12345", "code_39", domain.ChannelKeyboard, 1000)
	if res.Kind != domain.PayloadPlain {
		t.Fatalf("kind = %q", res.Kind)
	}
	if res.ProductCode != "HELLO12345" || res.GTIN != "" {
		t.Fatalf("product code = %q gtin = %q", res.ProductCode, res.GTIN)
	}
	if res.Channel != domain.ChannelKeyboard {
		t.Fatalf("channel = %q", res.Channel)
	}
}

func TestNormalizeSymbology(t *testing.T) {
	cases := map[string]string{
		"ean_13":          domain.SymbologyEAN13,
		"EAN-13":          domain.SymbologyEAN13,
		"qr_code":         domain.SymbologyQR,
		"QR":              domain.SymbologyQR,
		"gs1-128":         domain.SymbologyCode128,
		"code128":         domain.SymbologyCode128,
		"GS1 DataMatrix":  domain.SymbologyDataMatrix,
		"pdf417":          domain.SymbologyPDF417,
		"aztec":           domain.SymbologyAztec,
		"something_weird": domain.SymbologyUnknown,
		"":                domain.SymbologyUnknown,
	}
	for format, want := range cases {
		if got := NormalizeSymbology(format); got != want {
			t.Fatalf("NormalizeSymbology(%q) = %q, want %q", format, got, want)
		}
	}
}
