package cart

import (
	"context"
	"errors"
	"fmt"

	domcart "github.com/Zhima-Mochi/minishop-orders/internal/domain/cart"
	domcatalog "github.com/Zhima-Mochi/minishop-orders/internal/domain/catalog"
	"github.com/Zhima-Mochi/minishop-orders/internal/domain/order"
	"github.com/Zhima-Mochi/minishop-orders/internal/observability"
	"github.com/Zhima-Mochi/minishop-orders/internal/observability/logctx"
)

const componentCartService = "cart_service"

// Service manages the per-user staging cart. Mutations for one user are
// last-write-wins; the order assembler performs the authoritative checks.
type Service struct {
	carts    domcart.Repository
	products domcatalog.Repository
	currency string
	log      observability.Logger
}

func NewService(carts domcart.Repository, products domcatalog.Repository, currency string, logger observability.Logger) *Service {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &Service{
		carts:    carts,
		products: products,
		currency: currency,
		log:      logger.With(observability.F("component", componentCartService)),
	}
}

type Summary struct {
	Items     []domcart.Item
	ItemCount int
	Subtotal  float64
	Currency  string
}

func (s *Service) summarize(c *domcart.Cart) *Summary {
	return &Summary{
		Items:     append([]domcart.Item(nil), c.Items...),
		ItemCount: c.ItemCount(),
		Subtotal:  order.Round2(c.Subtotal()),
		Currency:  s.currency,
	}
}

// Get returns the cart summary; a user without a cart gets an empty one.
func (s *Service) Get(ctx context.Context, userID string) (*Summary, error) {
	c, err := s.carts.Get(ctx, userID)
	if errors.Is(err, domcart.ErrNotFound) {
		c = domcart.New(userID)
	} else if err != nil {
		return nil, fmt.Errorf("cart: load: %w", err)
	}
	return s.summarize(c), nil
}

// AddOrUpdate stages quantity units of a product. An existing line is
// replaced, not summed, and its price snapshot is refreshed: latest price
// wins.
func (s *Service) AddOrUpdate(ctx context.Context, userID, productID string, quantity int) (*Summary, error) {
	logger := logctx.FromOr(ctx, s.log)

	if quantity < 1 {
		return nil, domcart.ErrInvalidQuantity
	}

	product, err := s.products.Get(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product.Stock < quantity {
		return nil, &domcatalog.InsufficientStockError{ProductID: productID, Available: product.Stock}
	}

	c, err := s.carts.Get(ctx, userID)
	if errors.Is(err, domcart.ErrNotFound) {
		c = domcart.New(userID)
	} else if err != nil {
		return nil, fmt.Errorf("cart: load: %w", err)
	}

	c.Put(domcart.Item{
		ProductID:     productID,
		Name:          product.Name,
		Quantity:      quantity,
		PriceSnapshot: product.Price,
	})

	if err := s.carts.Save(ctx, c); err != nil {
		logger.Error("cart_save_failed",
			observability.F("user_id", userID),
			observability.F("error", err.Error()),
		)
		return nil, fmt.Errorf("cart: save: %w", err)
	}
	return s.summarize(c), nil
}

// Remove drops a line. Removing an absent product is a successful no-op.
func (s *Service) Remove(ctx context.Context, userID, productID string) (*Summary, error) {
	c, err := s.carts.Get(ctx, userID)
	if errors.Is(err, domcart.ErrNotFound) {
		return s.summarize(domcart.New(userID)), nil
	}
	if err != nil {
		return nil, fmt.Errorf("cart: load: %w", err)
	}

	c.Remove(productID)
	if err := s.carts.Save(ctx, c); err != nil {
		return nil, fmt.Errorf("cart: save: %w", err)
	}
	return s.summarize(c), nil
}

// GuestItem is one line of a client-held guest cart.
type GuestItem struct {
	ProductID string
	Quantity  int
}

// MergeGuest folds a guest cart into the authenticated user's cart at login.
// Duplicate products are summed, quantities are clamped to current stock, and
// unknown products are dropped silently.
func (s *Service) MergeGuest(ctx context.Context, userID string, guest []GuestItem) (*Summary, error) {
	logger := logctx.FromOr(ctx, s.log)

	c, err := s.carts.Get(ctx, userID)
	if errors.Is(err, domcart.ErrNotFound) {
		c = domcart.New(userID)
	} else if err != nil {
		return nil, fmt.Errorf("cart: load: %w", err)
	}

	// Sum duplicate products in the guest payload first.
	merged := make(map[string]int)
	var ordered []string
	for _, item := range guest {
		if item.Quantity < 1 {
			continue
		}
		if _, seen := merged[item.ProductID]; !seen {
			ordered = append(ordered, item.ProductID)
		}
		merged[item.ProductID] += item.Quantity
	}

	for _, productID := range ordered {
		quantity := merged[productID]
		if existing, ok := c.Find(productID); ok {
			quantity += existing.Quantity
		}

		product, err := s.products.Get(ctx, productID)
		if errors.Is(err, domcatalog.ErrNotFound) {
			logger.Debug("guest_item_dropped", observability.F("product_id", productID))
			continue
		}
		if err != nil {
			return nil, err
		}

		if quantity > product.Stock {
			quantity = product.Stock
		}
		if quantity < 1 {
			continue
		}

		c.Put(domcart.Item{
			ProductID:     productID,
			Name:          product.Name,
			Quantity:      quantity,
			PriceSnapshot: product.Price,
		})
	}

	if err := s.carts.Save(ctx, c); err != nil {
		return nil, fmt.Errorf("cart: save: %w", err)
	}
	return s.summarize(c), nil
}

// Clear removes the user's cart entirely.
func (s *Service) Clear(ctx context.Context, userID string) error {
	return s.carts.Delete(ctx, userID)
}
