package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/simaogato/investfolio-backend/internal/domain"
)

// GetProduct returns a snapshot of the product
func (s *Store) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return nil, fmt.Errorf("product %d not found: %w", id, domain.ErrNotFound)
	}
	return &p, nil
}

// SaveProduct inserts or replaces a catalog entry
func (s *Store) SaveProduct(ctx context.Context, product *domain.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.products[product.ID] = *product
	return nil
}

// ListProducts returns the catalog ordered by ID
func (s *Store) ListProducts(ctx context.Context) ([]*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	products := make([]*domain.Product, 0, len(s.products))
	for _, p := range s.products {
		p := p
		products = append(products, &p)
	}
	sort.Slice(products, func(i, j int) bool { return products[i].ID < products[j].ID })
	return products, nil
}
