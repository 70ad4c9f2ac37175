package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// SentinelSKU marks a product that has no barcode assigned. It is
	// exempt from SKU uniqueness.
	SentinelSKU = "-"

	// DefaultBrand is stored when no brand name was given
	DefaultBrand = "-"
)

// Product is one catalog record. ID and CreatedAt are assigned by the store.
type Product struct {
	ID          string          `json:"id,omitempty"`
	SKU         string          `json:"sku"`
	ItemName    string          `json:"item_name"`
	Category    string          `json:"category"`
	BrandName   string          `json:"brand_name"`
	VariantName string          `json:"variant_name"`
	Price       decimal.Decimal `json:"price"`
	CreatedAt   time.Time       `json:"created_at"`
}

// IsSentinelSKU reports whether sku means "no barcode". Empty counts too,
// since it is stored as the sentinel.
func IsSentinelSKU(sku string) bool {
	sku = strings.TrimSpace(sku)
	return sku == "" || sku == SentinelSKU
}

// DisplayName returns the item name with its variant, e.g. "INDOMIE GORENG (PCS)".
func (p *Product) DisplayName() string {
	if p.VariantName == "" {
		return p.ItemName
	}
	return p.ItemName + " (" + p.VariantName + ")"
}

// ExportListEntry is a copy of a product taken when the operator added it
// to the scratch export list.
type ExportListEntry struct {
	Product
	EntryID  string    `json:"entry_id"`
	ScanTime time.Time `json:"scan_time"`
}

// ScanResult is what a single decoded barcode resolved to.
type ScanResult struct {
	Code        string   `json:"code"`
	Found       bool     `json:"found"`
	Product     *Product `json:"product,omitempty"`
	AddedToList bool     `json:"added_to_list"`
}

// ImportMode selects how an uploaded catalog is written.
type ImportMode string

const (
	// ImportUpsert updates rows with a matching SKU and inserts the rest
	ImportUpsert ImportMode = "upsert"
	// ImportReplace deletes the whole catalog before inserting
	ImportReplace ImportMode = "replace"
)

// ParseImportMode maps a query value to an ImportMode. Empty means upsert.
func ParseImportMode(s string) (ImportMode, error) {
	switch ImportMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ImportUpsert:
		return ImportUpsert, nil
	case ImportReplace:
		return ImportReplace, nil
	default:
		return "", ErrInvalidRequest
	}
}

// ImportReport summarizes one import run
type ImportReport struct {
	Mode    ImportMode `json:"mode"`
	Parsed  int        `json:"parsed"`
	Dropped int        `json:"dropped"`
	Written int        `json:"written"`
}
