package gs1

import (
	"strings"
)

// fnc1 is the GS (group separator) character decoders substitute for the FNC1
// symbol character in GS1-128 and GS1 Data Matrix payloads.
const fnc1 = '\x1d'

// Payload is the decoded field set of one GS1 element string. A zero value in
// any field means the corresponding AI was not present in the symbol; absence
// is not an error. Dates are ISO 8601 strings, decimal fields are already
// pointed ("12.34"), Currency is the 3-digit ISO 4217 numeric code.
type Payload struct {
	GTIN           string `json:"gtin,omitempty"`
	ContentGTIN    string `json:"content_gtin,omitempty"`
	Batch          string `json:"batch,omitempty"`
	Serial         string `json:"serial,omitempty"`
	ProductionDate string `json:"production_date,omitempty"`
	PackagingDate  string `json:"packaging_date,omitempty"`
	BestBeforeDate string `json:"best_before_date,omitempty"`
	SellByDate     string `json:"sell_by_date,omitempty"`
	ExpiryDate     string `json:"expiry_date,omitempty"`
	Quantity       string `json:"quantity,omitempty"`
	ContainedCount string `json:"contained_count,omitempty"`
	NetWeight      string `json:"net_weight,omitempty"`
	Length         string `json:"length,omitempty"`
	Width          string `json:"width,omitempty"`
	Height         string `json:"height,omitempty"`
	Area           string `json:"area,omitempty"`
	NetVolume      string `json:"net_volume,omitempty"`
	AmountPayable  string `json:"amount_payable,omitempty"`
	Price          string `json:"price,omitempty"`
	Currency       string `json:"currency,omitempty"`
	PricePerUnit   string `json:"price_per_unit,omitempty"`
}

// IsEmpty reports whether no AI was decoded at all.
func (p Payload) IsEmpty() bool {
	return p == Payload{}
}

// Parse decodes a GS1 element string in human-readable form, e.g.
// "(01)09506000134352(17)251231(10)AB123". It never fails: content that does
// not match any known AI is skipped, and a string with no recognizable AIs
// yields an empty payload so the caller can fall back to treating the raw
// string as an opaque code.
//
// Variable-length values are terminated by an FNC1/GS character when the
// decoder passed one through; otherwise the next recognized "(AI)" token
// bounds the value. The heuristic mis-splits a value that itself contains a
// parenthesized digit group matching a known AI; see TestParseAmbiguousBoundary.
func Parse(raw string) Payload {
	var p Payload
	i := 0
	for i < len(raw) {
		if raw[i] == fnc1 {
			i++
			continue
		}
		if raw[i] != '(' {
			next := strings.IndexByte(raw[i:], '(')
			if next < 0 {
				break
			}
			i += next
			continue
		}
		end := strings.IndexByte(raw[i:], ')')
		if end < 0 {
			break
		}
		code := raw[i+1 : i+end]
		i += end + 1
		def, ok := ResolveExact(code)
		if !ok {
			continue
		}
		value, consumed := extractValue(raw[i:], def)
		i += consumed
		if value == "" {
			continue
		}
		assign(&p, def, value)
	}
	return p
}

// extractValue pulls the value for def from the head of rest and returns it
// together with the number of bytes consumed.
func extractValue(rest string, def Definition) (string, int) {
	if def.Length > 0 {
		if len(rest) < def.Length {
			// Truncated fixed-length field: drop it rather than guess.
			return "", len(rest)
		}
		return rest[:def.Length], def.Length
	}
	end := len(rest)
	for j := 0; j < len(rest); j++ {
		if rest[j] == fnc1 {
			end = j
			break
		}
		if rest[j] == '(' && startsRecognizedAI(rest[j:]) {
			end = j
			break
		}
	}
	return rest[:end], end
}

// startsRecognizedAI reports whether s begins with "(NN)"..."(NNNN)" for a
// known AI code.
func startsRecognizedAI(s string) bool {
	if len(s) < 4 || s[0] != '(' {
		return false
	}
	end := strings.IndexByte(s, ')')
	if end < 3 || end > 5 {
		return false
	}
	_, ok := ResolveExact(s[1:end])
	return ok
}

func assign(p *Payload, def Definition, value string) {
	var currency string
	switch def.Kind {
	case KindDate:
		v, ok := expandDate(value)
		if !ok {
			return
		}
		value = v
	case KindDecimal:
		v, ok := pointDecimal(value, def.DecimalDigits)
		if !ok {
			return
		}
		value = v
	case KindCurrencyAmount:
		if len(value) < 4 || !allDigits(value) {
			return
		}
		currency = value[:3]
		v, ok := pointDecimal(value[3:], def.DecimalDigits)
		if !ok {
			return
		}
		value = v
	case KindString:
		if def.Field == FieldQuantity || def.Field == FieldContainedCount {
			if !allDigits(value) {
				return
			}
			value = trimLeadingZeros(value)
		}
	}

	switch def.Field {
	case FieldGTIN:
		p.GTIN = value
	case FieldContentGTIN:
		p.ContentGTIN = value
	case FieldBatch:
		p.Batch = value
	case FieldSerial:
		p.Serial = value
	case FieldProductionDate:
		p.ProductionDate = value
	case FieldPackagingDate:
		p.PackagingDate = value
	case FieldBestBeforeDate:
		p.BestBeforeDate = value
	case FieldSellByDate:
		p.SellByDate = value
	case FieldExpiryDate:
		p.ExpiryDate = value
	case FieldQuantity:
		p.Quantity = value
	case FieldContainedCount:
		p.ContainedCount = value
	case FieldNetWeight:
		p.NetWeight = value
	case FieldLength:
		p.Length = value
	case FieldWidth:
		p.Width = value
	case FieldHeight:
		p.Height = value
	case FieldArea:
		p.Area = value
	case FieldNetVolume:
		p.NetVolume = value
	case FieldAmountPayable:
		p.AmountPayable = value
		if currency != "" {
			p.Currency = currency
		}
	case FieldPrice:
		p.Price = value
		if currency != "" {
			p.Currency = currency
		}
	case FieldPricePerUnit:
		p.PricePerUnit = value
	}
}

// expandDate turns a YYMMDD value into "20YY-MM-DD". The century pivot is
// fixed at 20; two-digit years are never windowed, so dates outside 2000-2099
// cannot be represented.
func expandDate(value string) (string, bool) {
	if len(value) != 6 || !allDigits(value) {
		return "", false
	}
	month := (value[2]-'0')*10 + (value[3] - '0')
	day := (value[4]-'0')*10 + (value[5] - '0')
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return "", false
	}
	return "20" + value[:2] + "-" + value[2:4] + "-" + value[4:6], true
}

// pointDecimal divides an all-digit value by 10^digits and formats it with
// exactly that many fractional digits: ("001234", 2) -> "12.34".
func pointDecimal(value string, digits int) (string, bool) {
	if !allDigits(value) || digits < 0 || digits > len(value)+15 {
		return "", false
	}
	if digits == 0 {
		return trimLeadingZeros(value), true
	}
	for len(value) <= digits {
		value = "0" + value
	}
	whole := trimLeadingZeros(value[:len(value)-digits])
	return whole + "." + value[len(value)-digits:], true
}

func trimLeadingZeros(s string) string {
	trimmed := strings.TrimLeft(s, "0")
	if trimmed == "" {
		return "0"
	}
	return trimmed
}
