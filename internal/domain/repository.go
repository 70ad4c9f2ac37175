package domain

import (
	"context"
)

// CatalogStore defines the operations of the hosted products table.
// Lookups return ErrProductNotFound when nothing matches; every other
// failure is a store failure.
type CatalogStore interface {
	Create(ctx context.Context, product *Product) (*Product, error)
	Update(ctx context.Context, id string, product *Product) error
	Delete(ctx context.Context, id string) error
	FindBySKU(ctx context.Context, sku string) (*Product, error)
	FindByNameVariant(ctx context.Context, name, variant string) (*Product, error)
	// ListAll returns every product, newest first
	ListAll(ctx context.Context) ([]Product, error)
	// ReplaceAll deletes the catalog and inserts products
	ReplaceAll(ctx context.Context, products []Product) error
	// UpsertBySKU updates records sharing a non-sentinel SKU and inserts the rest
	UpsertBySKU(ctx context.Context, products []Product) error
}

// BlobStore is an opaque key-value store used for device-local state
// such as the scratch export list.
type BlobStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// BarcodeDecoder produces decoded barcode text from a live source.
// The returned channel is closed when the source ends or ctx is done.
// A decoder can only be started once.
type BarcodeDecoder interface {
	Codes(ctx context.Context) (<-chan string, error)
}
