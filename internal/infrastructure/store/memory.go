package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Cupcake005/sku-app/internal/domain"
)

// memoryRecord is a stored product plus its insertion order, which breaks
// created_at ties when listing
type memoryRecord struct {
	product domain.Product
	seq     uint64
}

// MemoryStore is a thread-safe in-memory catalog. Like the hosted table
// it enforces no uniqueness of its own.
type MemoryStore struct {
	data  map[string]memoryRecord
	seq   uint64
	now   func() time.Time
	mutex sync.RWMutex
}

// NewMemoryStore creates an empty in-memory catalog
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string]memoryRecord),
		now:  time.Now,
	}
}

// SetClock replaces the clock used for created_at
func (s *MemoryStore) SetClock(now func() time.Time) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.now = now
}

// Create stores a copy of product with a fresh id and created_at
func (s *MemoryStore) Create(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	p := s.insertLocked(*product)
	return &p, nil
}

// Update replaces every field of record id except id and created_at
func (s *MemoryStore) Update(ctx context.Context, id string, product *domain.Product) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	rec, ok := s.data[id]
	if !ok {
		return domain.ErrProductNotFound
	}

	updated := *product
	updated.ID = rec.product.ID
	updated.CreatedAt = rec.product.CreatedAt
	rec.product = updated
	s.data[id] = rec
	return nil
}

// Delete removes record id
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, ok := s.data[id]; !ok {
		return domain.ErrProductNotFound
	}
	delete(s.data, id)
	return nil
}

// FindBySKU returns the newest record with sku
func (s *MemoryStore) FindBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	return s.findFirst(ctx, func(p *domain.Product) bool {
		return p.SKU == sku
	})
}

// FindByNameVariant returns the newest record with the exact name and variant
func (s *MemoryStore) FindByNameVariant(ctx context.Context, name, variant string) (*domain.Product, error) {
	return s.findFirst(ctx, func(p *domain.Product) bool {
		return p.ItemName == name && p.VariantName == variant
	})
}

// ListAll returns every record, newest first
func (s *MemoryStore) ListAll(ctx context.Context) ([]domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return s.sortedLocked(), nil
}

// ReplaceAll drops the catalog and inserts products
func (s *MemoryStore) ReplaceAll(ctx context.Context, products []domain.Product) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.data = make(map[string]memoryRecord, len(products))
	for _, p := range products {
		s.insertLocked(p)
	}
	return nil
}

// UpsertBySKU updates records sharing a non-sentinel SKU in place and
// inserts everything else
func (s *MemoryStore) UpsertBySKU(ctx context.Context, products []domain.Product) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	for _, p := range products {
		if !domain.IsSentinelSKU(p.SKU) {
			if id, ok := s.idBySKULocked(p.SKU); ok {
				rec := s.data[id]
				p.ID = rec.product.ID
				p.CreatedAt = rec.product.CreatedAt
				rec.product = p
				s.data[id] = rec
				continue
			}
		}
		s.insertLocked(p)
	}
	return nil
}

// Size returns the number of stored records
func (s *MemoryStore) Size() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.data)
}

func (s *MemoryStore) insertLocked(p domain.Product) domain.Product {
	p.ID = uuid.NewString()
	p.CreatedAt = s.now().UTC()
	s.seq++
	s.data[p.ID] = memoryRecord{product: p, seq: s.seq}
	return p
}

func (s *MemoryStore) idBySKULocked(sku string) (string, bool) {
	for _, p := range s.sortedLocked() {
		if p.SKU == sku {
			return p.ID, true
		}
	}
	return "", false
}

func (s *MemoryStore) findFirst(ctx context.Context, match func(*domain.Product) bool) (*domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mutex.RLock()
	defer s.mutex.RUnlock()

	for _, p := range s.sortedLocked() {
		if match(&p) {
			found := p
			return &found, nil
		}
	}
	return nil, domain.ErrProductNotFound
}

func (s *MemoryStore) sortedLocked() []domain.Product {
	records := make([]memoryRecord, 0, len(s.data))
	for _, rec := range s.data {
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if !a.product.CreatedAt.Equal(b.product.CreatedAt) {
			return a.product.CreatedAt.After(b.product.CreatedAt)
		}
		return a.seq > b.seq
	})

	products := make([]domain.Product, len(records))
	for i, rec := range records {
		products[i] = rec.product
	}
	return products
}
