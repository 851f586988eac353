package worker

import (
	"context"

	"github.com/Zhima-Mochi/minishop-orders/internal/domain/notification"
	domorder "github.com/Zhima-Mochi/minishop-orders/internal/domain/order"
	domoutbox "github.com/Zhima-Mochi/minishop-orders/internal/domain/outbox"
	"github.com/Zhima-Mochi/minishop-orders/internal/observability"
	"github.com/Zhima-Mochi/minishop-orders/internal/observability/logctx"
)

const componentNotificationWorker = "notification_worker"

// Worker delivers customer notifications off the event bus. Refund notices
// are fire-and-forget; a delivery failure is logged and the event dropped.
type Worker struct {
	subscriber domoutbox.Subscriber
	mailer     notification.Mailer
	log        observability.Logger
}

func New(subscriber domoutbox.Subscriber, mailer notification.Mailer, logger observability.Logger) *Worker {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &Worker{
		subscriber: subscriber,
		mailer:     mailer,
		log:        logger.With(observability.F("component", componentNotificationWorker)),
	}
}

func (w *Worker) Start() {
	w.subscriber.Subscribe(domorder.OrderRefundedEvent{}.EventName(), w.handleOrderRefunded)
}

func (w *Worker) handleOrderRefunded(ctx context.Context, e domoutbox.Event) error {
	logger := logctx.FromOr(ctx, w.log)

	evt, ok := e.(domorder.OrderRefundedEvent)
	if !ok {
		return nil
	}
	if evt.Email == "" {
		logger.Debug("refund_notice_skipped_no_email", observability.F("order_id", evt.OrderID))
		return nil
	}

	if err := w.mailer.SendRefundNotice(ctx, evt.Email, evt.OrderID, evt.Amount, evt.Reason); err != nil {
		logger.Warn("refund_notice_failed",
			observability.F("order_id", evt.OrderID),
			observability.F("error", err.Error()),
		)
		return err
	}

	logger.Info("refund_notice_sent", observability.F("order_id", evt.OrderID))
	return nil
}
