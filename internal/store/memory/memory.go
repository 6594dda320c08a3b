package memory

import (
	"context"
	"log"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"scanbridge/internal/domain"
	"scanbridge/internal/store"
	"scanbridge/internal/xid"
)

type Store struct {
	mu              sync.RWMutex
	products        map[string]domain.Product
	byBarcode       map[string]string
	byGTIN          map[string]string
	scanEvents      []domain.ScanEvent
	usersByUsername map[string]domain.UserAccount
}

// seedUsers builds the initial in-memory user accounts for dev/demo mode.
// Credentials come from SEED_ADMIN_PASSWORD and SEED_CASHIER_PASSWORD; the
// hardcoded defaults are for development only (production deployments use
// PostgreSQL via DATABASE_URL).
func seedUsers() map[string]domain.UserAccount {
	adminPwd := envOr("SEED_ADMIN_PASSWORD", "admin123")
	cashierPwd := envOr("SEED_CASHIER_PASSWORD", "cashier123")
	if os.Getenv("SEED_ADMIN_PASSWORD") == "" || os.Getenv("SEED_CASHIER_PASSWORD") == "" {
		log.Println("[memory-store] WARNING: using default dev credentials. Set SEED_ADMIN_PASSWORD and SEED_CASHIER_PASSWORD to override.")
	}

	now := time.Now().UTC()
	users := map[string]domain.UserAccount{}
	for _, u := range []struct {
		username string
		password string
		role     string
	}{
		{"admin", adminPwd, "admin"},
		{"cashier", cashierPwd, "cashier"},
	} {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("[memory-store] failed to hash seed password for %s: %v", u.username, err)
		}
		users[u.username] = domain.UserAccount{
			Username:  u.username,
			Password:  string(hash),
			Role:      u.role,
			Active:    true,
			CreatedAt: now,
		}
	}
	return users
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func NewSeeded() *Store {
	products := []domain.Product{
		{SKU: "SKU-MIE-01", Name: "Mie Goreng Instan", Category: "grocery", PriceCents: 3500, Barcode: "8991002101234", GTIN: "08991002101234", Active: true},
		{SKU: "SKU-TELUR-01", Name: "Telur 10 Butir", Category: "grocery", PriceCents: 26500, Barcode: "8991002102347", Active: true},
		{SKU: "SKU-SUSU-01", Name: "Susu UHT 1L", Category: "dairy", PriceCents: 18900, Barcode: "8991002103450", GTIN: "08991002103450", Active: true},
		{SKU: "SKU-ROTI-01", Name: "Roti Tawar", Category: "bakery", PriceCents: 17800, Barcode: "8991002104563", Active: true},
		{SKU: "SKU-KOPI-01", Name: "Kopi Sachet", Category: "beverage", PriceCents: 2600, Barcode: "8991002105676", Active: true},
		{SKU: "SKU-AIR-01", Name: "Air Mineral 600ml", Category: "beverage", PriceCents: 3900, Barcode: "8991002106789", Active: true},
		{SKU: "SKU-DAGING-01", Name: "Daging Sapi Segar", Category: "fresh", PriceCents: 1450000, Barcode: "2000001000017", GTIN: "02000001000017", SoldByWeight: true, Active: true},
		{SKU: "SKU-KEJU-01", Name: "Keju Cheddar 180g", Category: "dairy", PriceCents: 24300, Barcode: "8991002108892", GTIN: "08991002108892", Active: true},
	}

	productMap := make(map[string]domain.Product, len(products))
	byBarcode := make(map[string]string, len(products))
	byGTIN := make(map[string]string, len(products))
	for _, p := range products {
		productMap[p.SKU] = p
		if p.Barcode != "" {
			byBarcode[p.Barcode] = p.SKU
		}
		if p.GTIN != "" {
			byGTIN[p.GTIN] = p.SKU
		}
	}

	return &Store{
		products:        productMap,
		byBarcode:       byBarcode,
		byGTIN:          byGTIN,
		scanEvents:      make([]domain.ScanEvent, 0, 128),
		usersByUsername: seedUsers(),
	}
}

func (s *Store) ListProducts(_ context.Context) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	products := make([]domain.Product, 0, len(s.products))
	for _, p := range s.products {
		if !p.Active {
			continue
		}
		products = append(products, p)
	}

	slices.SortFunc(products, func(a, b domain.Product) int {
		if a.Category == b.Category {
			return strings.Compare(a.Name, b.Name)
		}
		return strings.Compare(a.Category, b.Category)
	})
	return products, nil
}

func (s *Store) CreateProduct(_ context.Context, product domain.Product) (*domain.Product, error) {
	if product.SKU == "" || product.Name == "" || product.PriceCents < 1 {
		return nil, store.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.products[product.SKU]; exists {
		return nil, store.ErrInvalidInput
	}
	if product.Barcode != "" {
		if _, taken := s.byBarcode[product.Barcode]; taken {
			return nil, store.ErrInvalidInput
		}
	}

	product.Active = true
	s.products[product.SKU] = product
	if product.Barcode != "" {
		s.byBarcode[product.Barcode] = product.SKU
	}
	if product.GTIN != "" {
		s.byGTIN[product.GTIN] = product.SKU
	}

	created := product
	return &created, nil
}

func (s *Store) UpdateProduct(_ context.Context, product domain.Product) (*domain.Product, error) {
	if product.SKU == "" || product.Name == "" || product.PriceCents < 1 {
		return nil, store.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.products[product.SKU]
	if !exists {
		return nil, store.ErrNotFound
	}

	if existing.Barcode != "" && existing.Barcode != product.Barcode {
		delete(s.byBarcode, existing.Barcode)
	}
	if existing.GTIN != "" && existing.GTIN != product.GTIN {
		delete(s.byGTIN, existing.GTIN)
	}
	s.products[product.SKU] = product
	if product.Barcode != "" {
		s.byBarcode[product.Barcode] = product.SKU
	}
	if product.GTIN != "" {
		s.byGTIN[product.GTIN] = product.SKU
	}

	updated := product
	return &updated, nil
}

func (s *Store) GetProductBySKU(_ context.Context, sku string) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.productLocked(sku)
}

func (s *Store) GetProductByCode(_ context.Context, code string) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if p, err := s.productLocked(code); err == nil {
		return p, nil
	}
	if sku, ok := s.byBarcode[code]; ok {
		return s.productLocked(sku)
	}
	return nil, store.ErrNotFound
}

func (s *Store) GetProductByGTIN(_ context.Context, gtin string) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if sku, ok := s.byGTIN[gtin]; ok {
		return s.productLocked(sku)
	}
	// Retail barcodes are GTINs too; tolerate a match against the barcode
	// column with or without the GTIN-14 leading zero.
	if sku, ok := s.byBarcode[gtin]; ok {
		return s.productLocked(sku)
	}
	if sku, ok := s.byBarcode[strings.TrimLeft(gtin, "0")]; ok {
		return s.productLocked(sku)
	}
	return nil, store.ErrNotFound
}

func (s *Store) productLocked(sku string) (*domain.Product, error) {
	p, ok := s.products[sku]
	if !ok || !p.Active {
		return nil, store.ErrNotFound
	}
	copied := p
	return &copied, nil
}

func (s *Store) CreateScanEvent(_ context.Context, event domain.ScanEvent) error {
	if event.ID == "" {
		event.ID = xid.New("scan")
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	s.scanEvents = append(s.scanEvents, event)
	s.mu.Unlock()
	return nil
}

func (s *Store) ListScanEvents(_ context.Context, terminalID string, limit int) ([]domain.ScanEvent, error) {
	if limit < 1 {
		limit = 50
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	events := make([]domain.ScanEvent, 0, limit)
	for i := len(s.scanEvents) - 1; i >= 0 && len(events) < limit; i-- {
		ev := s.scanEvents[i]
		if terminalID != "" && ev.TerminalID != terminalID {
			continue
		}
		events = append(events, ev)
	}
	return events, nil
}

func (s *Store) CreateUser(_ context.Context, user domain.UserAccount) error {
	username := strings.ToLower(strings.TrimSpace(user.Username))
	if username == "" {
		return store.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.usersByUsername[username]; exists {
		return store.ErrInvalidInput
	}
	user.Username = username
	s.usersByUsername[username] = user
	return nil
}

func (s *Store) ListUsers(_ context.Context) ([]domain.UserAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]domain.UserAccount, 0, len(s.usersByUsername))
	for _, u := range s.usersByUsername {
		users = append(users, u)
	}
	return users, nil
}

func (s *Store) UpdateUserPassword(_ context.Context, username string, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, exists := s.usersByUsername[username]
	if !exists {
		return store.ErrNotFound
	}
	user.Password = password
	s.usersByUsername[username] = user
	return nil
}
