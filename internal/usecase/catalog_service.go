package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Cupcake005/sku-app/internal/domain"
	"github.com/Cupcake005/sku-app/internal/logging"
)

// CatalogServiceConfig holds configuration for the catalog service
type CatalogServiceConfig struct {
	// Uppercase upper-cases every text field before validation, which
	// makes the gatekeeper's exact comparisons case-insensitive in practice.
	Uppercase bool
}

// CatalogService runs catalog writes through the gatekeeper and moves the
// catalog in and out of the CSV format.
type CatalogService struct {
	store      domain.CatalogStore
	gatekeeper *Gatekeeper
	uppercase  bool
}

// NewCatalogService creates a new catalog service with dependencies
func NewCatalogService(store domain.CatalogStore, config CatalogServiceConfig) *CatalogService {
	return &CatalogService{
		store:      store,
		gatekeeper: NewGatekeeper(store),
		uppercase:  config.Uppercase,
	}
}

// Gatekeeper returns the gatekeeper the service validates with
func (s *CatalogService) Gatekeeper() *Gatekeeper {
	return s.gatekeeper
}

// Create validates and stores a new product
func (s *CatalogService) Create(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	candidate, err := s.prepare(product)
	if err != nil {
		return nil, err
	}

	if err := s.gatekeeper.Validate(ctx, candidate, ""); err != nil {
		return nil, err
	}

	created, err := s.store.Create(ctx, candidate)
	if err != nil {
		return nil, storeError(err)
	}

	logging.FromContext(ctx).Info("product created", "id", created.ID, "sku", created.SKU)
	return created, nil
}

// Update validates and replaces every field of product id except id and
// created_at. The record never collides with itself.
func (s *CatalogService) Update(ctx context.Context, id string, product *domain.Product) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("%w: id is required", domain.ErrInvalidRequest)
	}

	candidate, err := s.prepare(product)
	if err != nil {
		return err
	}

	if err := s.gatekeeper.Validate(ctx, candidate, id); err != nil {
		return err
	}

	if err := s.store.Update(ctx, id, candidate); err != nil {
		return storeError(err)
	}

	logging.FromContext(ctx).Info("product updated", "id", id, "sku", candidate.SKU)
	return nil
}

// Delete removes product id
func (s *CatalogService) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("%w: id is required", domain.ErrInvalidRequest)
	}

	if err := s.store.Delete(ctx, id); err != nil {
		return storeError(err)
	}

	logging.FromContext(ctx).Info("product deleted", "id", id)
	return nil
}

// LookupBySKU finds the product carrying sku
func (s *CatalogService) LookupBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	sku = s.normalizeText(sku)
	if domain.IsSentinelSKU(sku) {
		return nil, fmt.Errorf("%w: sku is required", domain.ErrInvalidRequest)
	}

	p, err := s.store.FindBySKU(ctx, sku)
	if err != nil {
		return nil, storeError(err)
	}
	return p, nil
}

// List returns the catalog newest first. A non-empty query keeps only
// products whose name or SKU contains it, ignoring case.
func (s *CatalogService) List(ctx context.Context, query string) ([]domain.Product, error) {
	products, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, storeError(err)
	}

	return FilterProducts(products, query), nil
}

// NextVariantSKU derives the first free letter-suffixed sibling of base
func (s *CatalogService) NextVariantSKU(ctx context.Context, base string) (string, error) {
	return s.gatekeeper.DeriveNextVariantSKU(ctx, s.normalizeText(base))
}

// ExportCSV writes the whole catalog, newest first, and returns the
// number of product rows written. An empty catalog writes nothing and
// returns ErrNothingToExport.
func (s *CatalogService) ExportCSV(ctx context.Context, w io.Writer) (int, error) {
	products, err := s.store.ListAll(ctx)
	if err != nil {
		return 0, storeError(err)
	}
	if len(products) == 0 {
		return 0, domain.ErrNothingToExport
	}

	if err := SerializeCatalog(w, products); err != nil {
		return 0, err
	}
	return len(products), nil
}

// Import parses a catalog file and writes it with mode. Rows are
// normalized like form input but are not checked by the gatekeeper.
// Replace is a delete followed by an insert; on stores without
// transactions a failure in between leaves the catalog empty.
func (s *CatalogService) Import(ctx context.Context, r io.Reader, mode domain.ImportMode) (*domain.ImportReport, error) {
	if mode != domain.ImportUpsert && mode != domain.ImportReplace {
		return nil, fmt.Errorf("%w: unknown import mode %q", domain.ErrInvalidRequest, mode)
	}
	logger := logging.WithFields(ctx, "mode", string(mode))

	parsed, err := ParseCatalog(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err)
	}

	report := &domain.ImportReport{
		Mode:    mode,
		Parsed:  len(parsed.Products),
		Dropped: parsed.Dropped,
	}
	if parsed.Dropped > 0 {
		logger.Warn("import dropped malformed rows", "dropped", parsed.Dropped)
	}
	if len(parsed.Products) == 0 {
		return report, domain.ErrNothingToImport
	}

	products := make([]domain.Product, 0, len(parsed.Products))
	for i := range parsed.Products {
		products = append(products, s.normalize(parsed.Products[i]))
	}

	switch mode {
	case domain.ImportReplace:
		err = s.store.ReplaceAll(ctx, products)
	default:
		products = DedupeBySKU(products)
		err = s.store.UpsertBySKU(ctx, products)
	}
	if err != nil {
		logger.Error("import failed", "error", err)
		return nil, storeError(err)
	}

	report.Written = len(products)
	logger.Info("import completed", "parsed", report.Parsed, "dropped", report.Dropped, "written", report.Written)
	return report, nil
}

// prepare normalizes a form submission and checks the required fields
func (s *CatalogService) prepare(product *domain.Product) (*domain.Product, error) {
	if product == nil {
		return nil, domain.ErrInvalidRequest
	}

	p := s.normalize(*product)
	if p.ItemName == "" {
		return nil, fmt.Errorf("%w: item name is required", domain.ErrInvalidRequest)
	}
	if p.Price.IsNegative() {
		return nil, fmt.Errorf("%w: price must not be negative", domain.ErrInvalidRequest)
	}
	return &p, nil
}

// normalize trims every text field, applies the "-" defaults and, when
// configured, upper-cases text. ID and CreatedAt are left untouched.
func (s *CatalogService) normalize(p domain.Product) domain.Product {
	p.SKU = s.normalizeText(p.SKU)
	p.ItemName = s.normalizeText(p.ItemName)
	p.Category = s.normalizeText(p.Category)
	p.BrandName = s.normalizeText(p.BrandName)
	p.VariantName = s.normalizeText(p.VariantName)

	if p.SKU == "" {
		p.SKU = domain.SentinelSKU
	}
	if p.BrandName == "" {
		p.BrandName = domain.DefaultBrand
	}
	return p
}

func (s *CatalogService) normalizeText(v string) string {
	v = strings.TrimSpace(v)
	if s.uppercase {
		v = strings.ToUpper(v)
	}
	return v
}

// FilterProducts keeps products whose item name or SKU contains query,
// case-insensitively. An empty query keeps everything.
func FilterProducts(products []domain.Product, query string) []domain.Product {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return products
	}

	filtered := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.ItemName), query) ||
			strings.Contains(strings.ToLower(p.SKU), query) {
			filtered = append(filtered, p)
		}
	}
	return filtered
}

// DedupeBySKU collapses rows sharing a non-sentinel SKU, keeping the last
// occurrence in the position of the first. Sentinel rows are all kept.
func DedupeBySKU(products []domain.Product) []domain.Product {
	index := make(map[string]int, len(products))
	result := make([]domain.Product, 0, len(products))

	for _, p := range products {
		if domain.IsSentinelSKU(p.SKU) {
			result = append(result, p)
			continue
		}
		if i, ok := index[p.SKU]; ok {
			result[i] = p
			continue
		}
		index[p.SKU] = len(result)
		result = append(result, p)
	}
	return result
}

// storeError passes domain errors through and marks everything else as a
// store failure
func storeError(err error) error {
	switch {
	case errors.Is(err, domain.ErrProductNotFound),
		errors.Is(err, domain.ErrStoreUnavailable),
		errors.Is(err, domain.ErrDuplicateSKU),
		errors.Is(err, domain.ErrDuplicateNameVariant),
		errors.Is(err, domain.ErrInvalidRequest),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
}
