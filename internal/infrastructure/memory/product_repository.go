package memory

import (
	"context"
	"sync"
	"time"

	domain "github.com/Zhima-Mochi/minishop-orders/internal/domain/catalog"
)

// ProductRepository is the in-memory catalog adapter. Conditional stock
// mutations run under one lock, which is the document-store equivalent of
// `stock -= q WHERE stock >= q`.
type ProductRepository struct {
	mu       sync.RWMutex
	products map[string]*domain.Product
}

func NewProductRepository() *ProductRepository {
	return &ProductRepository{
		products: make(map[string]*domain.Product),
	}
}

func (r *ProductRepository) Get(ctx context.Context, productID string) (*domain.Product, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[productID]
	if !ok {
		return nil, &domain.NotFoundError{ProductID: productID}
	}
	return cloneProduct(product), nil
}

func (r *ProductRepository) GetMany(ctx context.Context, productIDs []string) (map[string]*domain.Product, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	found := make(map[string]*domain.Product, len(productIDs))
	for _, id := range productIDs {
		if product, ok := r.products[id]; ok {
			found[id] = cloneProduct(product)
		}
	}
	return found, nil
}

func (r *ProductRepository) Upsert(ctx context.Context, product *domain.Product) error {
	_ = ctx
	if product == nil {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.products[product.ID] = cloneProduct(product)
	return nil
}

// DecrementStock reserves quantity units atomically. It fails without any
// effect when fewer than quantity units remain, so stock never goes negative.
func (r *ProductRepository) DecrementStock(ctx context.Context, productID string, quantity int) error {
	_ = ctx
	if quantity <= 0 {
		return domain.ErrInvalidQuantity
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.products[productID]
	if !ok {
		return &domain.NotFoundError{ProductID: productID}
	}
	if product.Stock < quantity {
		return &domain.InsufficientStockError{ProductID: productID, Available: product.Stock}
	}
	product.Stock -= quantity
	product.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *ProductRepository) IncrementStock(ctx context.Context, productID string, quantity int) error {
	_ = ctx
	if quantity <= 0 {
		return domain.ErrInvalidQuantity
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.products[productID]
	if !ok {
		return &domain.NotFoundError{ProductID: productID}
	}
	product.Stock += quantity
	product.UpdatedAt = time.Now().UTC()
	return nil
}

func cloneProduct(product *domain.Product) *domain.Product {
	if product == nil {
		return nil
	}
	clone := *product
	return &clone
}
