package usecase

import (
	"context"
	"fmt"
	"sync"

	"github.com/Cupcake005/sku-app/internal/domain"
)

// MockCatalogStore is a mock implementation of domain.CatalogStore.
// Records are kept newest first.
type MockCatalogStore struct {
	products []domain.Product
	nextID   int

	findError  error
	writeError error

	findCalls    int
	replaceCalls int
	upsertCalls  int
	lastUpsert   []domain.Product
}

func NewMockCatalogStore(seed ...domain.Product) *MockCatalogStore {
	m := &MockCatalogStore{}
	// seed is given oldest first
	for _, p := range seed {
		m.insert(p)
	}
	return m
}

func (m *MockCatalogStore) insert(p domain.Product) domain.Product {
	if p.ID == "" {
		m.nextID++
		p.ID = fmt.Sprintf("p%d", m.nextID)
	}
	m.products = append([]domain.Product{p}, m.products...)
	return p
}

func (m *MockCatalogStore) Create(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	if m.writeError != nil {
		return nil, m.writeError
	}
	created := m.insert(*product)
	return &created, nil
}

func (m *MockCatalogStore) Update(ctx context.Context, id string, product *domain.Product) error {
	if m.writeError != nil {
		return m.writeError
	}
	for i := range m.products {
		if m.products[i].ID == id {
			updated := *product
			updated.ID = id
			updated.CreatedAt = m.products[i].CreatedAt
			m.products[i] = updated
			return nil
		}
	}
	return domain.ErrProductNotFound
}

func (m *MockCatalogStore) Delete(ctx context.Context, id string) error {
	if m.writeError != nil {
		return m.writeError
	}
	for i := range m.products {
		if m.products[i].ID == id {
			m.products = append(m.products[:i], m.products[i+1:]...)
			return nil
		}
	}
	return domain.ErrProductNotFound
}

func (m *MockCatalogStore) FindBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	return m.find(func(p *domain.Product) bool { return p.SKU == sku })
}

func (m *MockCatalogStore) FindByNameVariant(ctx context.Context, name, variant string) (*domain.Product, error) {
	return m.find(func(p *domain.Product) bool { return p.ItemName == name && p.VariantName == variant })
}

func (m *MockCatalogStore) find(match func(*domain.Product) bool) (*domain.Product, error) {
	m.findCalls++
	if m.findError != nil {
		return nil, m.findError
	}
	for i := range m.products {
		if match(&m.products[i]) {
			p := m.products[i]
			return &p, nil
		}
	}
	return nil, domain.ErrProductNotFound
}

func (m *MockCatalogStore) ListAll(ctx context.Context) ([]domain.Product, error) {
	if m.findError != nil {
		return nil, m.findError
	}
	out := make([]domain.Product, len(m.products))
	copy(out, m.products)
	return out, nil
}

func (m *MockCatalogStore) ReplaceAll(ctx context.Context, products []domain.Product) error {
	m.replaceCalls++
	if m.writeError != nil {
		return m.writeError
	}
	m.products = nil
	for _, p := range products {
		m.insert(p)
	}
	return nil
}

func (m *MockCatalogStore) UpsertBySKU(ctx context.Context, products []domain.Product) error {
	m.upsertCalls++
	m.lastUpsert = products
	if m.writeError != nil {
		return m.writeError
	}
	for _, p := range products {
		if !domain.IsSentinelSKU(p.SKU) {
			if existing, err := m.FindBySKU(ctx, p.SKU); err == nil {
				_ = m.Update(ctx, existing.ID, &p)
				continue
			}
		}
		m.insert(p)
	}
	return nil
}

// MockBlobStore is a mock implementation of domain.BlobStore
type MockBlobStore struct {
	mu       sync.Mutex
	data     map[string][]byte
	getError error
	putError error
}

func NewMockBlobStore() *MockBlobStore {
	return &MockBlobStore{data: make(map[string][]byte)}
}

func (m *MockBlobStore) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getError != nil {
		return nil, m.getError
	}
	v, ok := m.data[key]
	if !ok {
		return nil, domain.ErrBlobNotFound
	}
	return v, nil
}

func (m *MockBlobStore) Put(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.putError != nil {
		return m.putError
	}
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *MockBlobStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[key]; !ok {
		return domain.ErrBlobNotFound
	}
	delete(m.data, key)
	return nil
}

// MockDecoder is a mock implementation of domain.BarcodeDecoder
type MockDecoder struct {
	codes []string
	err   error
}

func (m *MockDecoder) Codes(ctx context.Context) (<-chan string, error) {
	if m.err != nil {
		return nil, m.err
	}
	ch := make(chan string, len(m.codes))
	for _, c := range m.codes {
		ch <- c
	}
	close(ch)
	return ch, nil
}
