package cart

import (
	"errors"
	"time"
)

var (
	ErrNotFound        = errors.New("cart: not found")
	ErrInvalidQuantity = errors.New("cart: quantity must be greater than zero")
)

// Item is a staged line with the price captured when it was added.
type Item struct {
	ProductID     string
	Name          string
	Quantity      int
	PriceSnapshot float64
}

// Cart is the per-user staging list. It is advisory: real stock enforcement
// happens when an order is assembled.
type Cart struct {
	UserID    string
	Items     []Item
	UpdatedAt time.Time
}

func New(userID string) *Cart {
	return &Cart{
		UserID:    userID,
		UpdatedAt: time.Now().UTC(),
	}
}

// Put replaces the line for the product if one exists, otherwise appends it.
// Replacement is deliberate: the latest quantity and the latest price win.
func (c *Cart) Put(item Item) {
	for i := range c.Items {
		if c.Items[i].ProductID == item.ProductID {
			c.Items[i] = item
			c.touch()
			return
		}
	}
	c.Items = append(c.Items, item)
	c.touch()
}

// Remove drops the line for the product. Removing an absent line is a no-op.
func (c *Cart) Remove(productID string) {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			c.touch()
			return
		}
	}
}

func (c *Cart) Find(productID string) (Item, bool) {
	for _, item := range c.Items {
		if item.ProductID == productID {
			return item, true
		}
	}
	return Item{}, false
}

func (c *Cart) Subtotal() float64 {
	var total float64
	for _, item := range c.Items {
		total += item.PriceSnapshot * float64(item.Quantity)
	}
	return total
}

func (c *Cart) ItemCount() int {
	var count int
	for _, item := range c.Items {
		count += item.Quantity
	}
	return count
}

func (c *Cart) IsEmpty() bool { return len(c.Items) == 0 }

func (c *Cart) Clone() *Cart {
	if c == nil {
		return nil
	}
	clone := *c
	clone.Items = append([]Item(nil), c.Items...)
	return &clone
}

func (c *Cart) touch() { c.UpdatedAt = time.Now().UTC() }
