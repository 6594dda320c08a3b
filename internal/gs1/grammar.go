package gs1

// ValueKind describes how the raw digits/characters of an AI value are decoded.
type ValueKind int

const (
	KindString ValueKind = iota
	// KindDate is a 6-digit YYMMDD value expanded to an ISO 8601 date.
	KindDate
	// KindDecimal is an all-digit value with an implied decimal point.
	KindDecimal
	// KindCurrencyAmount is a 3-digit ISO 4217 numeric currency code followed
	// by an amount with an implied decimal point.
	KindCurrencyAmount
)

// Field is the semantic name an Application Identifier maps to.
type Field string

const (
	FieldGTIN           Field = "gtin"
	FieldContentGTIN    Field = "contentGtin"
	FieldBatch          Field = "batch"
	FieldProductionDate Field = "productionDate"
	FieldPackagingDate  Field = "packagingDate"
	FieldBestBeforeDate Field = "bestBeforeDate"
	FieldSellByDate     Field = "sellByDate"
	FieldExpiryDate     Field = "expiryDate"
	FieldSerial         Field = "serial"
	FieldQuantity       Field = "quantity"
	FieldContainedCount Field = "containedCount"
	FieldNetWeight      Field = "netWeight"
	FieldLength         Field = "length"
	FieldWidth          Field = "width"
	FieldHeight         Field = "height"
	FieldArea           Field = "area"
	FieldNetVolume      Field = "netVolume"
	FieldAmountPayable  Field = "amountPayable"
	FieldPrice          Field = "price"
	FieldPricePerUnit   Field = "pricePerUnit"
)

// Definition is one row of the AI grammar. Length 0 means the value is
// variable-length, terminated by FNC1/GS, the next recognized AI token, or
// end of string.
type Definition struct {
	Code          string
	Field         Field
	Length        int
	Kind          ValueKind
	DecimalDigits int
}

// literals are AIs whose code is matched verbatim.
var literals = map[string]Definition{
	"01":   {Code: "01", Field: FieldGTIN, Length: 14, Kind: KindString},
	"02":   {Code: "02", Field: FieldContentGTIN, Length: 14, Kind: KindString},
	"10":   {Code: "10", Field: FieldBatch, Kind: KindString},
	"11":   {Code: "11", Field: FieldProductionDate, Length: 6, Kind: KindDate},
	"13":   {Code: "13", Field: FieldPackagingDate, Length: 6, Kind: KindDate},
	"15":   {Code: "15", Field: FieldBestBeforeDate, Length: 6, Kind: KindDate},
	"16":   {Code: "16", Field: FieldSellByDate, Length: 6, Kind: KindDate},
	"17":   {Code: "17", Field: FieldExpiryDate, Length: 6, Kind: KindDate},
	"21":   {Code: "21", Field: FieldSerial, Kind: KindString},
	"30":   {Code: "30", Field: FieldQuantity, Kind: KindString},
	"37":   {Code: "37", Field: FieldContainedCount, Kind: KindString},
	"8005": {Code: "8005", Field: FieldPricePerUnit, Length: 6, Kind: KindDecimal, DecimalDigits: 2},
}

// families are AIs where the fourth digit of the code itself encodes the
// decimal-point position of the value (e.g. 3102 = net weight, 2 decimals).
var families = map[string]Definition{
	"310": {Code: "310", Field: FieldNetWeight, Length: 6, Kind: KindDecimal},
	"311": {Code: "311", Field: FieldLength, Length: 6, Kind: KindDecimal},
	"312": {Code: "312", Field: FieldWidth, Length: 6, Kind: KindDecimal},
	"313": {Code: "313", Field: FieldHeight, Length: 6, Kind: KindDecimal},
	"314": {Code: "314", Field: FieldArea, Length: 6, Kind: KindDecimal},
	"315": {Code: "315", Field: FieldNetVolume, Length: 6, Kind: KindDecimal},
	"316": {Code: "316", Field: FieldNetVolume, Length: 6, Kind: KindDecimal},
	"390": {Code: "390", Field: FieldAmountPayable, Kind: KindDecimal},
	"391": {Code: "391", Field: FieldAmountPayable, Kind: KindCurrencyAmount},
	"392": {Code: "392", Field: FieldPrice, Kind: KindDecimal},
	"393": {Code: "393", Field: FieldPrice, Kind: KindCurrencyAmount},
}

// Resolve looks up the Application Identifier at the start of digits,
// preferring the longest known code. Family AIs (310n-316n, 390n-393n) match a
// 3-digit prefix plus one trailing decimal-count digit. The second return
// value reports whether a definition was found; the returned definition's Code
// holds the exact digits that were consumed.
func Resolve(digits string) (Definition, bool) {
	for size := 4; size >= 2; size-- {
		if len(digits) < size {
			continue
		}
		code := digits[:size]
		if !allDigits(code) {
			continue
		}
		if size == 4 {
			if def, ok := families[code[:3]]; ok {
				def.Code = code
				def.DecimalDigits = int(code[3] - '0')
				return def, true
			}
		}
		if def, ok := literals[code]; ok {
			return def, true
		}
	}
	return Definition{}, false
}

// ResolveExact is Resolve restricted to codes that consume the whole input,
// for parenthesized AIs where the code boundary is explicit.
func ResolveExact(code string) (Definition, bool) {
	def, ok := Resolve(code)
	if !ok || len(def.Code) != len(code) {
		return Definition{}, false
	}
	return def, ok
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
