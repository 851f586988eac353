package catalog

import "context"

// Repository is the catalog port. Stock mutations are conditional and atomic:
// DecrementStock either reserves the full quantity or fails without any
// partial effect, so concurrent checkouts can never drive stock negative.
type Repository interface {
	Get(ctx context.Context, productID string) (*Product, error)
	GetMany(ctx context.Context, productIDs []string) (map[string]*Product, error)
	Upsert(ctx context.Context, product *Product) error
	DecrementStock(ctx context.Context, productID string, quantity int) error
	IncrementStock(ctx context.Context, productID string, quantity int) error
}
