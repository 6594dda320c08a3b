package cart

import (
	"context"
	"errors"
	"testing"
	"time"

	"scanbridge/internal/domain"
	"scanbridge/internal/gs1"
	"scanbridge/internal/scan"
	"scanbridge/internal/store/memory"
)

func newTestAdapter() *Adapter {
	return NewAdapter(memory.NewSeeded(), nil, time.Second)
}

func TestResolvePlainBarcode(t *testing.T) {
	adapter := newTestAdapter()
	res := scan.Classify("8991002101234", "ean_13", domain.ChannelCamera, 1000)

	cmd, err := adapter.Resolve(context.Background(), res, 1)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if cmd.Product.SKU != "SKU-MIE-01" {
		t.Fatalf("sku = %q", cmd.Product.SKU)
	}
	if cmd.Quantity != 1 || cmd.PriceOverrideCents != nil || cmd.Lot != nil {
		t.Fatalf("cmd = %+v", cmd)
	}
}

func TestResolveGS1GTINFallback(t *testing.T) {
	adapter := newTestAdapter()
	// GTIN-14 with leading zero; catalog stores the 13-digit barcode.
	res := scan.Classify("(01)08991002101234(10)LOT77", "gs1_datamatrix", domain.ChannelCamera, 1000)

	cmd, err := adapter.Resolve(context.Background(), res, 1)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if cmd.Product.SKU != "SKU-MIE-01" {
		t.Fatalf("sku = %q", cmd.Product.SKU)
	}
	if cmd.Lot == nil || cmd.Lot.Batch != "LOT77" {
		t.Fatalf("lot = %+v", cmd.Lot)
	}
}

func TestResolveWeightQuantity(t *testing.T) {
	adapter := newTestAdapter()
	res := scan.Classify("(01)02000001000017(3102)001250", "gs1_datamatrix", domain.ChannelCamera, 1000)

	cmd, err := adapter.Resolve(context.Background(), res, 1)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if cmd.Product.SKU != "SKU-DAGING-01" {
		t.Fatalf("sku = %q", cmd.Product.SKU)
	}
	if cmd.Quantity != 12.5 {
		t.Fatalf("quantity = %v, want 12.5 (net weight)", cmd.Quantity)
	}
}

func TestResolveGS1QuantityWithMultiplier(t *testing.T) {
	adapter := newTestAdapter()
	res := scan.Classify("(01)08991002101234(30)03", "gs1_128", domain.ChannelCamera, 1000)

	cmd, err := adapter.Resolve(context.Background(), res, 2)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	// GS1 quantity first, caller multiplier last: 3 * 2.
	if cmd.Quantity != 6 {
		t.Fatalf("quantity = %v, want 6", cmd.Quantity)
	}
}

func TestResolvePriceOverridePrecedence(t *testing.T) {
	adapter := newTestAdapter()

	// Explicit item price (392n) wins over amount payable (390n).
	res := scan.Classify("(01)08991002101234(3922)0500(3902)0999", "gs1_128", domain.ChannelCamera, 1000)
	cmd, err := adapter.Resolve(context.Background(), res, 1)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if cmd.PriceOverrideCents == nil || *cmd.PriceOverrideCents != 500 {
		t.Fatalf("override = %v, want 500", cmd.PriceOverrideCents)
	}

	// Amount payable alone still overrides.
	res = scan.Classify("(01)08991002101234(3902)0999", "gs1_128", domain.ChannelCamera, 1000)
	cmd, err = adapter.Resolve(context.Background(), res, 1)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if cmd.PriceOverrideCents == nil || *cmd.PriceOverrideCents != 999 {
		t.Fatalf("override = %v, want 999", cmd.PriceOverrideCents)
	}
}

func TestResolveUnknownProduct(t *testing.T) {
	adapter := newTestAdapter()
	res := scan.Classify("0000000000000", "ean_13", domain.ChannelCamera, 1000)

	_, err := adapter.Resolve(context.Background(), res, 1)
	if !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("err = %v, want ErrProductNotFound", err)
	}
}

func TestPriceOverrideNilPayload(t *testing.T) {
	if got := priceOverride(nil); got != nil {
		t.Fatalf("nil payload should yield nil override")
	}
	if got := priceOverride(&gs1.Payload{}); got != nil {
		t.Fatalf("empty payload should yield nil override")
	}
}

func TestDecimalToCents(t *testing.T) {
	cases := []struct {
		value string
		want  int64
	}{
		{"5.00", 500},
		{"12.34", 1234},
		{"7", 700},
		{"0.5", 50},
		{"0.999", 99},
	}
	for _, tc := range cases {
		got, ok := decimalToCents(tc.value)
		if !ok || got != tc.want {
			t.Fatalf("decimalToCents(%q) = %d (%v), want %d", tc.value, got, ok, tc.want)
		}
	}
	if _, ok := decimalToCents("abc"); ok {
		t.Fatalf("non-numeric value must not convert")
	}
}
