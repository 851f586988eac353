package email

import (
	"context"

	"github.com/Zhima-Mochi/minishop-orders/internal/domain/order"
	"github.com/Zhima-Mochi/minishop-orders/internal/observability"
	"github.com/Zhima-Mochi/minishop-orders/internal/observability/logctx"
)

const componentMailer = "mailer"

// LogMailer is the local notification adapter: it records what would have
// been sent instead of talking to a real delivery gateway.
type LogMailer struct {
	log observability.Logger
}

func NewLogMailer(logger observability.Logger) *LogMailer {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &LogMailer{log: logger.With(observability.F("component", componentMailer))}
}

func (m *LogMailer) SendInvoice(ctx context.Context, to string, o *order.Order, pdf []byte) error {
	logctx.FromOr(ctx, m.log).Info("invoice_email_sent",
		observability.F("to", to),
		observability.F("order_id", o.ID),
		observability.F("invoice_number", o.InvoiceNumber),
		observability.F("pdf_bytes", len(pdf)),
	)
	return nil
}

func (m *LogMailer) SendRefundNotice(ctx context.Context, to string, orderID string, amount float64, reason string) error {
	logctx.FromOr(ctx, m.log).Info("refund_email_sent",
		observability.F("to", to),
		observability.F("order_id", orderID),
		observability.F("amount", amount),
		observability.F("reason", reason),
	)
	return nil
}
