// Package cart maps scan results onto cart line mutations: product
// resolution, quantity and price-override computation, and the merge policy.
package cart

import (
	"context"
	"errors"
	"log"
	"strconv"
	"strings"
	"time"

	"scanbridge/internal/cache"
	"scanbridge/internal/domain"
	"scanbridge/internal/gs1"
	"scanbridge/internal/store"
)

// ErrProductNotFound is surfaced to the caller for user-visible feedback; the
// scan is discarded from the cart but stays in scan history.
var ErrProductNotFound = errors.New("product not found")

type Adapter struct {
	repo     store.Repository
	lookups  cache.ProductLookupCache
	cacheTTL time.Duration
}

func NewAdapter(repo store.Repository, lookups cache.ProductLookupCache, cacheTTL time.Duration) *Adapter {
	if lookups == nil {
		lookups = cache.NoopProductLookupCache{}
	}
	if cacheTTL <= 0 {
		cacheTTL = 30 * time.Second
	}
	return &Adapter{repo: repo, lookups: lookups, cacheTTL: cacheTTL}
}

// Resolve turns one scan result into a cart command. The caller-supplied
// multiplier (quick-quantity mode) is applied last, after any GS1 quantity or
// weight override.
func (a *Adapter) Resolve(ctx context.Context, res domain.ScanResult, multiplier int) (domain.CartCommand, error) {
	product, err := a.resolveProduct(ctx, res)
	if err != nil {
		return domain.CartCommand{}, err
	}

	qty := 1.0
	if res.GS1 != nil {
		if res.GS1.Quantity != "" {
			if n, err := strconv.ParseFloat(res.GS1.Quantity, 64); err == nil && n > 0 {
				qty = n
			}
		}
		if product.SoldByWeight && res.GS1.NetWeight != "" {
			if w, err := strconv.ParseFloat(res.GS1.NetWeight, 64); err == nil && w > 0 {
				qty = w
			}
		}
	}
	if multiplier > 1 {
		qty *= float64(multiplier)
	}

	cmd := domain.CartCommand{
		Product:            *product,
		Quantity:           qty,
		PriceOverrideCents: priceOverride(res.GS1),
		Lot:                lotMetadata(res.GS1),
	}
	return cmd, nil
}

// resolveProduct matches the scanned code against the catalog: exact code
// (SKU or retail barcode) first, then the GS1 GTIN, which may differ from the
// catalog's primary code.
func (a *Adapter) resolveProduct(ctx context.Context, res domain.ScanResult) (*domain.Product, error) {
	code := res.Code()

	if cached, hit, err := a.lookups.Get(ctx, code); err == nil && hit {
		return cached, nil
	} else if err != nil {
		log.Printf("[cart] WARN: lookup cache get failed code=%s: %v", code, err)
	}

	product, err := a.repo.GetProductByCode(ctx, code)
	if err != nil && errors.Is(err, store.ErrNotFound) && res.GTIN != "" {
		product, err = a.repo.GetProductByGTIN(ctx, res.GTIN)
	}
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	if err := a.lookups.Set(ctx, code, product, a.cacheTTL); err != nil {
		log.Printf("[cart] WARN: lookup cache set failed code=%s: %v", code, err)
	}
	return product, nil
}

// priceOverride picks the effective unit-price override from a GS1 payload:
// explicit item price first, then price-per-unit, then the currency-coded
// amount. Nil means the catalog price stands.
func priceOverride(payload *gs1.Payload) *int64 {
	if payload == nil {
		return nil
	}
	for _, candidate := range []string{payload.Price, payload.PricePerUnit, payload.AmountPayable} {
		if candidate == "" {
			continue
		}
		if cents, ok := decimalToCents(candidate); ok {
			return &cents
		}
	}
	return nil
}

func lotMetadata(payload *gs1.Payload) *domain.LotMetadata {
	if payload == nil {
		return nil
	}
	expiry := payload.ExpiryDate
	if expiry == "" {
		expiry = payload.BestBeforeDate
	}
	lot := domain.LotMetadata{
		Batch:          payload.Batch,
		Serial:         payload.Serial,
		ExpiryDate:     expiry,
		PackagingDate:  payload.PackagingDate,
		ProductionDate: payload.ProductionDate,
	}
	if lot == (domain.LotMetadata{}) {
		return nil
	}
	return &lot
}

// decimalToCents converts a pointed decimal string ("12.34") to cents,
// truncating past two fractional digits.
func decimalToCents(value string) (int64, bool) {
	whole, frac, _ := strings.Cut(value, ".")
	cents, err := strconv.ParseInt(whole, 10, 64)
	if err != nil || cents < 0 {
		return 0, false
	}
	cents *= 100
	if frac != "" {
		if len(frac) > 2 {
			frac = frac[:2]
		}
		for len(frac) < 2 {
			frac += "0"
		}
		f, err := strconv.ParseInt(frac, 10, 64)
		if err != nil {
			return 0, false
		}
		cents += f
	}
	return cents, true
}
