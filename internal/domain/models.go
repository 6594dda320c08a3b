package domain

import (
	"time"

	"scanbridge/internal/gs1"
)

// Symbology tags normalized from decoder-reported formats.
const (
	SymbologyQR         = "QR"
	SymbologyEAN13      = "EAN13"
	SymbologyEAN8       = "EAN8"
	SymbologyCode128    = "CODE128"
	SymbologyCode39     = "CODE39"
	SymbologyDataMatrix = "DATAMATRIX"
	SymbologyPDF417     = "PDF417"
	SymbologyAztec      = "AZTEC"
	SymbologyUnknown    = "UNKNOWN"
)

// Input channels a scan can arrive on.
const (
	ChannelCamera   = "camera"
	ChannelKeyboard = "keyboard-wedge"
)

// PayloadKind tags which structural family a scan payload belongs to, so
// downstream consumers can match exhaustively instead of probing unknown keys.
type PayloadKind string

const (
	PayloadPlain    PayloadKind = "plain"
	PayloadGS1      PayloadKind = "gs1"
	PayloadSentinel PayloadKind = "sentinel"
	PayloadJSON     PayloadKind = "json"
)

// SentinelField is the single semantic field carried by a prefixed sentinel
// token such as "CUSTOMER:C-0042".
type SentinelField struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// ScanResult is the normalized output of the symbology classifier. RawData is
// always present and authoritative; exactly one payload branch is populated
// according to Kind.
type ScanResult struct {
	RawData     string            `json:"raw_data"`
	Symbology   string            `json:"symbology"`
	Channel     string            `json:"channel"`
	TimestampMs int64             `json:"timestamp_ms"`
	Kind        PayloadKind       `json:"kind"`
	ProductCode string            `json:"product_code,omitempty"`
	GTIN        string            `json:"gtin,omitempty"`
	GS1         *gs1.Payload      `json:"gs1,omitempty"`
	Sentinel    *SentinelField    `json:"sentinel,omitempty"`
	JSON        map[string]string `json:"json,omitempty"`
}

// Code returns the deduplication key for the scan: the normalized product
// code when one was extracted, otherwise the raw decoded string.
func (r ScanResult) Code() string {
	if r.ProductCode != "" {
		return r.ProductCode
	}
	return r.RawData
}

type Product struct {
	SKU          string `json:"sku"`
	Name         string `json:"name"`
	Category     string `json:"category"`
	PriceCents   int64  `json:"price_cents"`
	Barcode      string `json:"barcode,omitempty"`
	GTIN         string `json:"gtin,omitempty"`
	SoldByWeight bool   `json:"sold_by_weight"`
	Active       bool   `json:"active"`
}

type ProductCreateRequest struct {
	SKU          string `json:"sku"`
	Name         string `json:"name"`
	Category     string `json:"category"`
	PriceCents   int64  `json:"price_cents"`
	Barcode      string `json:"barcode,omitempty"`
	GTIN         string `json:"gtin,omitempty"`
	SoldByWeight bool   `json:"sold_by_weight"`
}

type ProductUpdateRequest struct {
	Name         *string `json:"name,omitempty"`
	Category     *string `json:"category,omitempty"`
	PriceCents   *int64  `json:"price_cents,omitempty"`
	Barcode      *string `json:"barcode,omitempty"`
	GTIN         *string `json:"gtin,omitempty"`
	SoldByWeight *bool   `json:"sold_by_weight,omitempty"`
	Active       *bool   `json:"active,omitempty"`
}

// LotMetadata is display-only annotation extracted from a GS1 payload. It
// never participates in price or quantity computation.
type LotMetadata struct {
	Batch          string `json:"batch,omitempty"`
	Serial         string `json:"serial,omitempty"`
	ExpiryDate     string `json:"expiry_date,omitempty"`
	PackagingDate  string `json:"packaging_date,omitempty"`
	ProductionDate string `json:"production_date,omitempty"`
}

// CartCommand is the cart adapter's resolved instruction: which product to
// add, how much of it, and with what pricing/annotation.
type CartCommand struct {
	Product            Product
	Quantity           float64
	PriceOverrideCents *int64
	Lot                *LotMetadata
}

// Cart mutation actions.
const (
	CartActionCreate = "create"
	CartActionMerge  = "merge"
	CartActionUpdate = "update"
)

// CartMutation describes one applied change to a cart line, for the UI layer.
type CartMutation struct {
	Action          string       `json:"action"`
	SKU             string       `json:"sku"`
	Name            string       `json:"name"`
	Quantity        float64      `json:"quantity"`
	UnitPriceCents  int64        `json:"unit_price_cents"`
	PriceOverridden bool         `json:"price_overridden"`
	Lot             *LotMetadata `json:"lot,omitempty"`
}

type CartLine struct {
	SKU             string       `json:"sku"`
	Name            string       `json:"name"`
	Quantity        float64      `json:"quantity"`
	UnitPriceCents  int64        `json:"unit_price_cents"`
	PriceOverridden bool         `json:"price_overridden"`
	DiscountPercent float64      `json:"discount_percent"`
	SoldByWeight    bool         `json:"sold_by_weight"`
	Lot             *LotMetadata `json:"lot,omitempty"`
}

// Scan outcome statuses returned to the submitting client.
const (
	ScanStatusAccepted            = "accepted"
	ScanStatusMultiplierRequested = "multiplier_requested"
	ScanStatusProductNotFound     = "product_not_found"
	ScanStatusMultiplierArmed     = "multiplier_armed"
)

// ScanOutcome is the synchronous response for one submitted scan.
type ScanOutcome struct {
	Status   string        `json:"status"`
	Code     string        `json:"code,omitempty"`
	Scan     *ScanResult   `json:"scan,omitempty"`
	Mutation *CartMutation `json:"mutation,omitempty"`
}

// ScanEvent is the persisted history row for diagnostics. Scans that fail
// product resolution are kept here even though they never reach the cart.
type ScanEvent struct {
	ID          string    `json:"id"`
	SurfaceID   string    `json:"surface_id"`
	TerminalID  string    `json:"terminal_id"`
	Channel     string    `json:"channel"`
	Symbology   string    `json:"symbology"`
	RawData     string    `json:"raw_data"`
	ProductCode string    `json:"product_code,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// Scan surface kinds. Each open surface owns its own dedup state; a product
// scanner and a customer scanner never share it.
const (
	SurfaceKindProduct  = "product"
	SurfaceKindCustomer = "customer"
)

type SurfaceInfo struct {
	ID         string    `json:"id"`
	TerminalID string    `json:"terminal_id"`
	Kind       string    `json:"kind"`
	OpenedAt   time.Time `json:"opened_at"`
}

// Event types pushed to WebSocket subscribers.
const (
	EventScanAccepted        = "scan.accepted"
	EventScanRejected        = "scan.rejected"
	EventMultiplierRequested = "scan.multiplier_requested"
	EventCartMutation        = "cart.mutation"
)

// Event is the envelope broadcast on the event stream.
type Event struct {
	Type       string        `json:"type"`
	SurfaceID  string        `json:"surface_id,omitempty"`
	TerminalID string        `json:"terminal_id,omitempty"`
	Code       string        `json:"code,omitempty"`
	Reason     string        `json:"reason,omitempty"`
	Scan       *ScanResult   `json:"scan,omitempty"`
	Mutation   *CartMutation `json:"mutation,omitempty"`
	At         time.Time     `json:"at"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	Role        string `json:"role"`
	ExpiresAt   string `json:"expires_at"`
}

type Actor struct {
	Username string
	Role     string
}

type CashierCreateRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type CashierUser struct {
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// UserAccount is an internal persistence model for auth credentials.
type UserAccount struct {
	Username  string
	Password  string
	Role      string
	Active    bool
	CreatedAt time.Time
}
