package refund

import (
	"context"
	"fmt"
	"time"

	domcatalog "github.com/Zhima-Mochi/minishop-orders/internal/domain/catalog"
	domain "github.com/Zhima-Mochi/minishop-orders/internal/domain/order"
	domoutbox "github.com/Zhima-Mochi/minishop-orders/internal/domain/outbox"
	"github.com/Zhima-Mochi/minishop-orders/internal/observability"
	"github.com/Zhima-Mochi/minishop-orders/internal/observability/logctx"
)

const componentRefundService = "refund_service"

// Service handles the customer-initiated, item-level refund path: a request
// on a delivered order waits for manager resolution; only approval moves
// stock or money.
type Service struct {
	orders   domain.Repository
	products domcatalog.Repository
	events   domoutbox.Publisher
	log      observability.Logger
}

func NewService(orders domain.Repository, products domcatalog.Repository, events domoutbox.Publisher, logger observability.Logger) *Service {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &Service{
		orders:   orders,
		products: products,
		events:   events,
		log:      logger.With(observability.F("component", componentRefundService)),
	}
}

// Request opens a refund request for a subset of a delivered order's items.
func (s *Service) Request(ctx context.Context, userID, orderID string, selections []domain.ItemSelection, reason string) (*domain.Order, error) {
	entity, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if entity.UserID != userID {
		return nil, domain.ErrNotOwner
	}
	if err := entity.OpenRefundRequest(time.Now().UTC(), selections, reason); err != nil {
		return nil, err
	}
	if err := s.orders.Update(ctx, entity); err != nil {
		return nil, fmt.Errorf("refund: update order: %w", err)
	}

	logctx.FromOr(ctx, s.log).Info("refund_requested",
		observability.F("order_id", entity.ID),
		observability.F("amount", entity.RefundRequestAmount),
		observability.F("items", len(entity.RefundRequestedItems)),
	)
	return entity, nil
}

// Pending lists orders with an unresolved refund request, newest first.
func (s *Service) Pending(ctx context.Context) ([]*domain.Order, error) {
	return s.orders.FindPendingRefundRequests(ctx)
}

// Approve resolves a pending request in the customer's favour: the selected
// quantities go back to stock and the order is cancelled.
func (s *Service) Approve(ctx context.Context, orderID string) (*domain.Order, error) {
	logger := logctx.FromOr(ctx, s.log)

	entity, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := entity.ApproveRefundRequest(time.Now().UTC()); err != nil {
		return nil, err
	}
	if err := s.orders.Update(ctx, entity); err != nil {
		return nil, fmt.Errorf("refund: update order: %w", err)
	}

	for _, line := range entity.RefundRequestedItems {
		if err := s.products.IncrementStock(ctx, line.ProductID, line.Quantity); err != nil {
			logger.Error("refund_restock_failed",
				observability.F("order_id", entity.ID),
				observability.F("product_id", line.ProductID),
				observability.F("error", err.Error()),
			)
		}
	}

	s.publish(ctx, domain.NewOrderRefundedEvent(entity))
	logger.Info("refund_approved",
		observability.F("order_id", entity.ID),
		observability.F("amount", entity.RefundAmount),
	)
	return entity, nil
}

// Reject resolves a pending request without touching stock or the order's
// money fields.
func (s *Service) Reject(ctx context.Context, orderID string) (*domain.Order, error) {
	entity, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := entity.DeclineRefundRequest(); err != nil {
		return nil, err
	}
	if err := s.orders.Update(ctx, entity); err != nil {
		return nil, fmt.Errorf("refund: update order: %w", err)
	}

	logctx.FromOr(ctx, s.log).Info("refund_rejected", observability.F("order_id", entity.ID))
	return entity, nil
}

func (s *Service) publish(ctx context.Context, e domoutbox.Event) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, e); err != nil {
		logctx.FromOr(ctx, s.log).Warn("event_publish_failed",
			observability.F("event", e.EventName()),
			observability.F("error", err.Error()),
		)
	}
}
