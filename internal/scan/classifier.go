// Package scan turns raw decoder output into normalized scan results and
// decides what each result means for the session: fresh scan, deliberate
// re-scan, or keystroke noise.
package scan

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"scanbridge/internal/domain"
	"scanbridge/internal/gs1"
)

// sentinelPrefixes are self-describing tokens generated by our own QR codes
// (invoices, customer cards, coupons, pairing codes). First match wins.
var sentinelPrefixes = []struct {
	prefix string
	field  string
}{
	{"CUFE:", "cufe"},
	{"CUSTOMER:", "customerCode"},
	{"COUPON:", "couponCode"},
	{"AUTH:", "authCode"},
}

// Classify normalizes one decode into a ScanResult. Decision order: JSON
// payload, sentinel prefix, bare EAN, GS1 element string, opaque code. The
// last branch is unconditional, so every input yields a result.
func Classify(raw string, decoderFormat string, channel string, timestampMs int64) domain.ScanResult {
	res := domain.ScanResult{
		RawData:     raw,
		Symbology:   NormalizeSymbology(decoderFormat),
		Channel:     channel,
		TimestampMs: timestampMs,
	}

	if fields, ok := parseJSONPayload(raw); ok {
		res.Kind = domain.PayloadJSON
		res.JSON = fields
		res.ProductCode = fields["productCode"]
		return res
	}

	for _, s := range sentinelPrefixes {
		if strings.HasPrefix(raw, s.prefix) {
			res.Kind = domain.PayloadSentinel
			res.Sentinel = &domain.SentinelField{Field: s.field, Value: raw[len(s.prefix):]}
			return res
		}
	}

	// EAN payloads are the product code itself; no AI structure to parse.
	if res.Symbology == domain.SymbologyEAN13 || res.Symbology == domain.SymbologyEAN8 {
		res.Kind = domain.PayloadPlain
		res.ProductCode = raw
		res.GTIN = raw
		return res
	}

	if payload := gs1.Parse(raw); !payload.IsEmpty() {
		res.Kind = domain.PayloadGS1
		res.GS1 = &payload
		res.ProductCode = payload.GTIN
		res.GTIN = payload.GTIN
		return res
	}

	res.Kind = domain.PayloadPlain
	res.ProductCode = raw
	return res
}

// parseJSONPayload accepts a top-level JSON object and flattens its scalar
// values to strings. Nested values are ignored.
func parseJSONPayload(raw string) (map[string]string, bool) {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "{") {
		return nil, false
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(trimmed), &obj); err != nil {
		return nil, false
	}
	fields := make(map[string]string, len(obj))
	for key, val := range obj {
		switch v := val.(type) {
		case string:
			fields[key] = v
		case float64:
			fields[key] = strconv.FormatFloat(v, 'f', -1, 64)
		case bool:
			fields[key] = fmt.Sprintf("%t", v)
		}
	}
	return fields, true
}

// NormalizeSymbology maps decoder-reported format strings ("ean_13",
// "EAN-13", "qr_code", ...) to the canonical symbology tags.
func NormalizeSymbology(decoderFormat string) string {
	key := strings.ToUpper(decoderFormat)
	key = strings.NewReplacer("-", "", "_", "", " ", "").Replace(key)
	switch key {
	case "QR", "QRCODE":
		return domain.SymbologyQR
	case "EAN13", "EAN":
		return domain.SymbologyEAN13
	case "EAN8":
		return domain.SymbologyEAN8
	case "CODE128", "GS1128", "UCCEAN128":
		return domain.SymbologyCode128
	case "CODE39":
		return domain.SymbologyCode39
	case "DATAMATRIX", "GS1DATAMATRIX":
		return domain.SymbologyDataMatrix
	case "PDF417":
		return domain.SymbologyPDF417
	case "AZTEC":
		return domain.SymbologyAztec
	default:
		return domain.SymbologyUnknown
	}
}
