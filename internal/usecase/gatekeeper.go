package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Cupcake005/sku-app/internal/domain"
)

// variantSuffixes are tried in order when deriving a sibling variant SKU
const variantSuffixes = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// Gatekeeper enforces the catalog uniqueness rules before a write.
//
// The check and the following write are two separate store round trips,
// so two sessions submitting the same SKU at once can both pass.
type Gatekeeper struct {
	store domain.CatalogStore
}

// NewGatekeeper creates a gatekeeper reading from store
func NewGatekeeper(store domain.CatalogStore) *Gatekeeper {
	return &Gatekeeper{store: store}
}

// Validate decides whether candidate may be written. editingID is the id
// of the record being replaced, or "" when creating. A nil result means
// accept; a rejection is a *domain.ConflictError.
//
// Comparisons are exact and case-sensitive on trimmed values.
func (g *Gatekeeper) Validate(ctx context.Context, candidate *domain.Product, editingID string) error {
	if candidate == nil {
		return domain.ErrInvalidRequest
	}

	sku := strings.TrimSpace(candidate.SKU)
	if !domain.IsSentinelSKU(sku) {
		existing, err := g.lookup(ctx, func() (*domain.Product, error) {
			return g.store.FindBySKU(ctx, sku)
		})
		if err != nil {
			return err
		}
		if collides(existing, editingID) {
			return &domain.ConflictError{Reason: domain.ReasonDuplicateSKU, Conflicting: existing}
		}
	}

	name := strings.TrimSpace(candidate.ItemName)
	variant := strings.TrimSpace(candidate.VariantName)
	existing, err := g.lookup(ctx, func() (*domain.Product, error) {
		return g.store.FindByNameVariant(ctx, name, variant)
	})
	if err != nil {
		return err
	}
	if collides(existing, editingID) {
		return &domain.ConflictError{Reason: domain.ReasonDuplicateNameVariant, Conflicting: existing}
	}

	return nil
}

// DeriveNextVariantSKU returns the first of base+"A" .. base+"Z" that no
// catalog record uses. Probing is sequential and stops at the first free
// suffix.
func (g *Gatekeeper) DeriveNextVariantSKU(ctx context.Context, base string) (string, error) {
	base = strings.TrimSpace(base)
	if domain.IsSentinelSKU(base) {
		return "", fmt.Errorf("%w: base sku is required", domain.ErrInvalidRequest)
	}

	for _, suffix := range variantSuffixes {
		candidate := base + string(suffix)
		existing, err := g.lookup(ctx, func() (*domain.Product, error) {
			return g.store.FindBySKU(ctx, candidate)
		})
		if err != nil {
			return "", err
		}
		if existing == nil {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("%w: %s", domain.ErrNoFreeVariantSKU, base)
}

// lookup runs a store query, turning "not found" into a nil record and
// anything else into a store failure.
func (g *Gatekeeper) lookup(ctx context.Context, find func() (*domain.Product, error)) (*domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p, err := find()
	if errors.Is(err, domain.ErrProductNotFound) {
		return nil, nil
	}
	if err != nil {
		if errors.Is(err, domain.ErrStoreUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return p, nil
}

// collides reports whether existing is a different record than the one
// being edited
func collides(existing *domain.Product, editingID string) bool {
	if existing == nil {
		return false
	}
	return editingID == "" || existing.ID != editingID
}
