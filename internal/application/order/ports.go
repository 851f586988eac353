package order

// IDGenerator produces ids for new orders.
type IDGenerator interface {
	NewID() string
}

// Pricing supplies the amounts added on top of the cart subtotal.
type Pricing struct {
	TaxRate     float64
	ShippingFee float64
}
