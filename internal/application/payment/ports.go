package payment

import (
	"github.com/Zhima-Mochi/minishop-orders/internal/domain/identity"
	"github.com/Zhima-Mochi/minishop-orders/internal/domain/order"
)

type IDGenerator interface {
	NewID() string
}

// InvoiceRenderer turns a paid order into the invoice document.
type InvoiceRenderer interface {
	Render(o *order.Order, billedTo identity.Identity) ([]byte, error)
}
