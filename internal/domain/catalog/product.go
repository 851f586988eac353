package catalog

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrNotFound          = errors.New("catalog: product not found")
	ErrInvalidQuantity   = errors.New("catalog: quantity must be greater than zero")
	ErrInsufficientStock = errors.New("catalog: insufficient stock")
)

// NotFoundError identifies which product was missing from the catalog.
type NotFoundError struct {
	ProductID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("catalog: product %s not found", e.ProductID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// InsufficientStockError carries the remaining stock so callers can report
// how many units were actually available.
type InsufficientStockError struct {
	ProductID string
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("catalog: insufficient stock for product %s (available %d)", e.ProductID, e.Available)
}

func (e *InsufficientStockError) Is(target error) bool { return target == ErrInsufficientStock }

type Product struct {
	ID        string
	Name      string
	Price     float64
	Cost      float64
	Stock     int
	UpdatedAt time.Time
}

func NewProduct(id, name string, price, cost float64, stock int) (*Product, error) {
	if stock < 0 {
		return nil, ErrInvalidQuantity
	}
	return &Product{
		ID:        id,
		Name:      name,
		Price:     price,
		Cost:      cost,
		Stock:     stock,
		UpdatedAt: time.Now().UTC(),
	}, nil
}
