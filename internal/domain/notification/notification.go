package notification

import (
	"context"

	"github.com/Zhima-Mochi/minishop-orders/internal/domain/order"
)

// Mailer is the notification port. Delivery is best-effort: callers log
// failures and carry on.
type Mailer interface {
	SendInvoice(ctx context.Context, to string, o *order.Order, pdf []byte) error
	SendRefundNotice(ctx context.Context, to string, orderID string, amount float64, reason string) error
}
