// Package memory provides in-process repositories backed by the embedded
// seed data. They are used when no database is configured.
package memory

import (
	"context"
	"slices"
	"strconv"
	"sync"

	"github.com/xenking/robobuild/db"
	"github.com/xenking/robobuild/internal/domain/auth"
	"github.com/xenking/robobuild/internal/domain/inquiry"
	"github.com/xenking/robobuild/internal/domain/part"
	"github.com/xenking/robobuild/internal/domain/product"
	"github.com/xenking/robobuild/internal/domain/quote"
	"github.com/xenking/robobuild/internal/seed"
)

var (
	_ part.Source        = (*CatalogSource)(nil)
	_ product.Repository = (*ProductRepository)(nil)
	_ quote.Repository   = (*QuoteRepository)(nil)
	_ auth.Repository    = (*APIKeyRepository)(nil)
	_ inquiry.Repository = (*InquiryRepository)(nil)
)

// CatalogSource serves part categories from JSON.
type CatalogSource struct {
	data []byte
}

// NewCatalogSource returns a source over the embedded parts seed.
func NewCatalogSource() *CatalogSource {
	return &CatalogSource{data: db.Parts}
}

// LoadCategories decodes the categories.
func (s *CatalogSource) LoadCategories(_ context.Context) ([]part.Category, error) {
	return seed.Categories(s.data)
}

// ProductRepository serves shop products from memory.
type ProductRepository struct {
	products []product.Product
}

// NewProductRepository decodes the embedded products seed.
func NewProductRepository() (*ProductRepository, error) {
	products, err := seed.Products(db.Products)
	if err != nil {
		return nil, err
	}
	return &ProductRepository{products: products}, nil
}

// List returns all products ordered by ID.
func (r *ProductRepository) List(_ context.Context) ([]product.Product, error) {
	out := slices.Clone(r.products)
	slices.SortFunc(out, func(a, b product.Product) int { return a.ID - b.ID })
	return out, nil
}

// GetByID returns a single product by its identifier.
func (r *ProductRepository) GetByID(_ context.Context, id int) (*product.Product, error) {
	i := slices.IndexFunc(r.products, func(p product.Product) bool { return p.ID == id })
	if i < 0 {
		return nil, product.ErrNotFound
	}
	p := r.products[i]
	return &p, nil
}

// QuoteRepository keeps submitted quotes for the process lifetime.
type QuoteRepository struct {
	mu     sync.RWMutex
	quotes map[string]quote.Quote
}

// NewQuoteRepository returns an empty QuoteRepository.
func NewQuoteRepository() *QuoteRepository {
	return &QuoteRepository{quotes: make(map[string]quote.Quote)}
}

// Create stores a copy of q.
func (r *QuoteRepository) Create(_ context.Context, q *quote.Quote) error {
	stored := *q
	stored.Lines = slices.Clone(q.Lines)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.quotes[q.ID] = stored
	return nil
}

// GetByID returns a copy of the stored quote.
func (r *QuoteRepository) GetByID(_ context.Context, id string) (*quote.Quote, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	q, ok := r.quotes[id]
	if !ok {
		return nil, quote.ErrNotFound
	}
	q.Lines = slices.Clone(q.Lines)
	return &q, nil
}

// InquiryRepository keeps submitted service requests and contact messages for
// the process lifetime.
type InquiryRepository struct {
	mu       sync.RWMutex
	requests map[string]inquiry.ServiceRequest
	messages map[string]inquiry.ContactMessage
}

// NewInquiryRepository returns an empty InquiryRepository.
func NewInquiryRepository() *InquiryRepository {
	return &InquiryRepository{
		requests: make(map[string]inquiry.ServiceRequest),
		messages: make(map[string]inquiry.ContactMessage),
	}
}

// CreateServiceRequest stores a copy of r.
func (r *InquiryRepository) CreateServiceRequest(_ context.Context, req *inquiry.ServiceRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests[req.ID] = *req
	return nil
}

// ServiceRequests returns the stored service requests ordered by creation
// time.
func (r *InquiryRepository) ServiceRequests() []inquiry.ServiceRequest {
	r.mu.RLock()
	out := make([]inquiry.ServiceRequest, 0, len(r.requests))
	for _, req := range r.requests {
		out = append(out, req)
	}
	r.mu.RUnlock()

	slices.SortFunc(out, func(a, b inquiry.ServiceRequest) int { return a.CreatedAt.Compare(b.CreatedAt) })
	return out
}

// CreateContactMessage stores a copy of m.
func (r *InquiryRepository) CreateContactMessage(_ context.Context, m *inquiry.ContactMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages[m.ID] = *m
	return nil
}

// APIKeyRepository holds statically configured API keys.
type APIKeyRepository struct {
	byHash map[string]*auth.APIKeyInfo
}

// NewAPIKeyRepository hashes each raw key with pepper and grants it scopes.
func NewAPIKeyRepository(pepper []byte, rawKeys []string, scopes ...string) *APIKeyRepository {
	r := &APIKeyRepository{byHash: make(map[string]*auth.APIKeyInfo, len(rawKeys))}
	for i, k := range rawKeys {
		if k == "" {
			continue
		}
		hash := auth.HashKey(pepper, k)
		r.byHash[hash] = &auth.APIKeyInfo{
			ID:      "static-" + strconv.Itoa(i),
			KeyHash: hash,
			Name:    "Static key",
			Scopes:  slices.Clone(scopes),
		}
	}
	return r
}

// FindByHash looks up a key by its HMAC hash.
func (r *APIKeyRepository) FindByHash(_ context.Context, hash string) (*auth.APIKeyInfo, error) {
	info, ok := r.byHash[hash]
	if !ok {
		return nil, auth.ErrKeyNotFound
	}
	return info, nil
}
