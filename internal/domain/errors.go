package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrProductNotFound is returned when no catalog record matches a lookup
	ErrProductNotFound = errors.New("product not found")

	// ErrDuplicateSKU is returned when another record already uses the SKU
	ErrDuplicateSKU = errors.New("sku already used by another product")

	// ErrDuplicateNameVariant is returned when another record already has the same name and variant
	ErrDuplicateNameVariant = errors.New("name and variant already used by another product")

	// ErrNoFreeVariantSKU is returned when every A..Z suffix of a base SKU is taken
	ErrNoFreeVariantSKU = errors.New("no free variant sku for base")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrNothingToExport is returned when an export would only contain the header
	ErrNothingToExport = errors.New("nothing to export")

	// ErrNothingToImport is returned when an uploaded file yields no product rows
	ErrNothingToImport = errors.New("nothing to import")

	// ErrStoreUnavailable is returned when the catalog store request fails
	ErrStoreUnavailable = errors.New("catalog store unavailable")

	// ErrDecoderUnavailable is returned when the barcode source cannot be started
	ErrDecoderUnavailable = errors.New("barcode decoder unavailable")

	// ErrAlreadyInExportList is returned when the SKU is already on the scratch list
	ErrAlreadyInExportList = errors.New("sku already in export list")

	// ErrEntryNotFound is returned when an export list entry does not exist
	ErrEntryNotFound = errors.New("export list entry not found")

	// ErrBlobNotFound is returned when a blob key has never been written
	ErrBlobNotFound = errors.New("blob not found")
)

// ConflictReason names which uniqueness rule a candidate product broke.
type ConflictReason string

const (
	ReasonDuplicateSKU         ConflictReason = "DuplicateSku"
	ReasonDuplicateNameVariant ConflictReason = "DuplicateNameVariant"
)

// ConflictError is returned by the gatekeeper when a candidate collides
// with a record already in the catalog. Conflicting is the record it
// collided with, so callers can show "already used by X".
type ConflictError struct {
	Reason      ConflictReason
	Conflicting *Product
}

func (e *ConflictError) Error() string {
	if e.Conflicting == nil {
		return e.sentinel().Error()
	}
	return fmt.Sprintf("%s: %s", e.sentinel(), e.Conflicting.DisplayName())
}

// Is lets errors.Is match a ConflictError against ErrDuplicateSKU or
// ErrDuplicateNameVariant.
func (e *ConflictError) Is(target error) bool {
	return target == e.sentinel()
}

func (e *ConflictError) sentinel() error {
	if e.Reason == ReasonDuplicateNameVariant {
		return ErrDuplicateNameVariant
	}
	return ErrDuplicateSKU
}
