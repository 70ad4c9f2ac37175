package usecase

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jszwec/csvutil"

	"github.com/Cupcake005/sku-app/internal/domain"
)

// DefaultExportListKey is the blob key the scratch list is stored under
const DefaultExportListKey = "export_list"

// ExportListServiceConfig holds configuration for the export list service
type ExportListServiceConfig struct {
	Key string
	// Now returns the scan time for new entries; defaults to time.Now
	Now func() time.Time
}

// ExportListService manages the scratch export list: products copied
// at scan time, kept most recent first, stored as one JSON blob.
type ExportListService struct {
	blobs domain.BlobStore
	key   string
	now   func() time.Time

	// serializes read-modify-write cycles on the blob
	mu sync.Mutex
}

// NewExportListService creates a new export list service with dependencies
func NewExportListService(blobs domain.BlobStore, config ExportListServiceConfig) *ExportListService {
	key := config.Key
	if key == "" {
		key = DefaultExportListKey
	}
	now := config.Now
	if now == nil {
		now = time.Now
	}

	return &ExportListService{
		blobs: blobs,
		key:   key,
		now:   now,
	}
}

// List returns the entries, most recent first
func (s *ExportListService) List(ctx context.Context) ([]domain.ExportListEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.load(ctx)
}

// Add copies product to the front of the list. A non-sentinel SKU that
// is already listed is refused with ErrAlreadyInExportList unless force
// is set; the guard is advisory.
func (s *ExportListService) Add(ctx context.Context, product domain.Product, force bool) (*domain.ExportListEntry, error) {
	if strings.TrimSpace(product.ItemName) == "" {
		return nil, fmt.Errorf("%w: item name is required", domain.ErrInvalidRequest)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	if !force && !domain.IsSentinelSKU(product.SKU) {
		for _, e := range entries {
			if e.SKU == product.SKU {
				return nil, fmt.Errorf("%w: %s", domain.ErrAlreadyInExportList, product.SKU)
			}
		}
	}

	entry := domain.ExportListEntry{
		Product:  product,
		EntryID:  uuid.NewString(),
		ScanTime: s.now(),
	}
	entries = append([]domain.ExportListEntry{entry}, entries...)

	if err := s.save(ctx, entries); err != nil {
		return nil, err
	}
	return &entry, nil
}

// Remove deletes one entry by its entry id
func (s *ExportListService) Remove(ctx context.Context, entryID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load(ctx)
	if err != nil {
		return err
	}

	for i, e := range entries {
		if e.EntryID == entryID {
			entries = append(entries[:i], entries[i+1:]...)
			return s.save(ctx, entries)
		}
	}
	return domain.ErrEntryNotFound
}

// RemoveBySKU deletes every entry carrying sku and returns how many went
func (s *ExportListService) RemoveBySKU(ctx context.Context, sku string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load(ctx)
	if err != nil {
		return 0, err
	}

	kept := entries[:0]
	for _, e := range entries {
		if e.SKU != sku {
			kept = append(kept, e)
		}
	}
	removed := len(entries) - len(kept)
	if removed == 0 {
		return 0, nil
	}

	return removed, s.save(ctx, kept)
}

// Clear empties the list
func (s *ExportListService) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.blobs.Delete(ctx, s.key); err != nil && !errors.Is(err, domain.ErrBlobNotFound) {
		return fmt.Errorf("failed to clear export list: %w", err)
	}
	return nil
}

// ExportCSV writes the list in the catalog format and returns the row count
func (s *ExportListService) ExportCSV(ctx context.Context, w io.Writer) (int, error) {
	entries, err := s.List(ctx)
	if err != nil {
		return 0, err
	}
	if len(entries) == 0 {
		return 0, domain.ErrNothingToExport
	}

	products := make([]domain.Product, len(entries))
	for i := range entries {
		products[i] = entries[i].Product
	}

	if err := SerializeCatalog(w, products); err != nil {
		return 0, err
	}
	return len(entries), nil
}

// scanLogRow is one line of the scan log export
type scanLogRow struct {
	SKU         string `csv:"SKU"`
	ItemName    string `csv:"Item Name"`
	Category    string `csv:"Category"`
	VariantName string `csv:"Variant Name"`
	Price       string `csv:"Price"`
	ScanTime    string `csv:"Scan Time"`
}

// ExportScanLog writes the list with the time each item was scanned
func (s *ExportListService) ExportScanLog(ctx context.Context, w io.Writer) (int, error) {
	entries, err := s.List(ctx)
	if err != nil {
		return 0, err
	}
	if len(entries) == 0 {
		return 0, domain.ErrNothingToExport
	}

	rows := make([]scanLogRow, len(entries))
	for i, e := range entries {
		rows[i] = scanLogRow{
			SKU:         e.SKU,
			ItemName:    e.ItemName,
			Category:    e.Category,
			VariantName: e.VariantName,
			Price:       FormatPrice(e.Price),
			ScanTime:    e.ScanTime.Format(time.RFC3339),
		}
	}

	cw := csv.NewWriter(w)
	if err := csvutil.NewEncoder(cw).Encode(rows); err != nil {
		return 0, fmt.Errorf("failed to encode scan log: %w", err)
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return 0, fmt.Errorf("failed to write scan log: %w", err)
	}
	return len(rows), nil
}

func (s *ExportListService) load(ctx context.Context) ([]domain.ExportListEntry, error) {
	data, err := s.blobs.Get(ctx, s.key)
	if errors.Is(err, domain.ErrBlobNotFound) {
		return []domain.ExportListEntry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read export list: %w", err)
	}

	var entries []domain.ExportListEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode export list: %w", err)
	}
	if entries == nil {
		entries = []domain.ExportListEntry{}
	}
	return entries, nil
}

func (s *ExportListService) save(ctx context.Context, entries []domain.ExportListEntry) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to encode export list: %w", err)
	}
	if err := s.blobs.Put(ctx, s.key, data); err != nil {
		return fmt.Errorf("failed to write export list: %w", err)
	}
	return nil
}
