package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Cupcake005/sku-app/internal/domain"
	"github.com/Cupcake005/sku-app/internal/logging"
)

// ScanService resolves decoded barcodes against the catalog and can
// append known products to the export list.
type ScanService struct {
	catalog    *CatalogService
	exportList *ExportListService
}

// NewScanService creates a new scan service with dependencies.
// exportList may be nil when scans never add to the list.
func NewScanService(catalog *CatalogService, exportList *ExportListService) *ScanService {
	return &ScanService{
		catalog:    catalog,
		exportList: exportList,
	}
}

// Lookup resolves one code. An unknown code is not an error: the result
// has Found=false so the caller can offer the new-product form. When
// addToList is set a found product is added to the export list; an item
// already listed is reported as found but not added.
func (s *ScanService) Lookup(ctx context.Context, code string, addToList bool) (*domain.ScanResult, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, fmt.Errorf("%w: code is required", domain.ErrInvalidRequest)
	}

	result := &domain.ScanResult{Code: code}

	product, err := s.catalog.LookupBySKU(ctx, code)
	if errors.Is(err, domain.ErrProductNotFound) {
		return result, nil
	}
	if err != nil {
		return nil, err
	}
	result.Found = true
	result.Product = product

	if addToList && s.exportList != nil {
		_, err := s.exportList.Add(ctx, *product, false)
		switch {
		case err == nil:
			result.AddedToList = true
		case errors.Is(err, domain.ErrAlreadyInExportList):
			logging.FromContext(ctx).Debug("scan skipped duplicate list entry", "sku", product.SKU)
		default:
			return nil, err
		}
	}

	return result, nil
}

// Consume drains decoder, resolving each code and passing the result to
// fn. It returns when the stream ends, ctx is done, a lookup fails, or
// fn returns an error.
func (s *ScanService) Consume(
	ctx context.Context,
	decoder domain.BarcodeDecoder,
	addToList bool,
	fn func(*domain.ScanResult) error,
) error {
	codes, err := decoder.Codes(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrDecoderUnavailable) {
			return err
		}
		return fmt.Errorf("%w: %v", domain.ErrDecoderUnavailable, err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case code, ok := <-codes:
			if !ok {
				return nil
			}
			if strings.TrimSpace(code) == "" {
				continue
			}

			result, err := s.Lookup(ctx, code, addToList)
			if err != nil {
				return err
			}
			if err := fn(result); err != nil {
				return err
			}
		}
	}
}
