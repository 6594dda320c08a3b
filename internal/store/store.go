package store

import (
	"context"
	"errors"

	"scanbridge/internal/domain"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
)

type Repository interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	CreateProduct(ctx context.Context, product domain.Product) (*domain.Product, error)
	UpdateProduct(ctx context.Context, product domain.Product) (*domain.Product, error)
	GetProductBySKU(ctx context.Context, sku string) (*domain.Product, error)
	// GetProductByCode resolves a scanned code against SKU and retail barcode.
	GetProductByCode(ctx context.Context, code string) (*domain.Product, error)
	// GetProductByGTIN resolves the GTIN carried under AI 01, which may differ
	// from the catalog's primary code.
	GetProductByGTIN(ctx context.Context, gtin string) (*domain.Product, error)
	CreateScanEvent(ctx context.Context, event domain.ScanEvent) error
	ListScanEvents(ctx context.Context, terminalID string, limit int) ([]domain.ScanEvent, error)
	CreateUser(ctx context.Context, user domain.UserAccount) error
	ListUsers(ctx context.Context) ([]domain.UserAccount, error)
	UpdateUserPassword(ctx context.Context, username string, password string) error
}
