package payment

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	domcart "github.com/Zhima-Mochi/minishop-orders/internal/domain/cart"
	domcatalog "github.com/Zhima-Mochi/minishop-orders/internal/domain/catalog"
	"github.com/Zhima-Mochi/minishop-orders/internal/domain/identity"
	"github.com/Zhima-Mochi/minishop-orders/internal/domain/notification"
	domain "github.com/Zhima-Mochi/minishop-orders/internal/domain/order"
	domoutbox "github.com/Zhima-Mochi/minishop-orders/internal/domain/outbox"
	dompayment "github.com/Zhima-Mochi/minishop-orders/internal/domain/payment"
	"github.com/Zhima-Mochi/minishop-orders/internal/observability"
	"github.com/Zhima-Mochi/minishop-orders/internal/observability/logctx"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	componentPaymentService = "payment_service"
	useCaseCheckout         = "payment.checkout"
	amountTolerance         = 0.01
	publishTimeout          = 300 * time.Millisecond
)

// Service captures payment for an assembled order. Card validation is
// format-only; there is no gateway behind it.
type Service struct {
	orders   domain.Repository
	carts    domcart.Repository
	products domcatalog.Repository
	renderer InvoiceRenderer
	mailer   notification.Mailer
	events   domoutbox.Publisher
	idGen    IDGenerator

	tel        observability.Observability
	log        observability.Logger
	reqCounter observability.Counter
	durHist    observability.Histogram
	emailCount observability.Counter
}

func NewService(
	orders domain.Repository,
	carts domcart.Repository,
	products domcatalog.Repository,
	renderer InvoiceRenderer,
	mailer notification.Mailer,
	events domoutbox.Publisher,
	idGen IDGenerator,
	tel observability.Observability,
) *Service {
	if tel == nil {
		tel = observability.Nop()
	}
	return &Service{
		orders:     orders,
		carts:      carts,
		products:   products,
		renderer:   renderer,
		mailer:     mailer,
		events:     events,
		idGen:      idGen,
		tel:        tel,
		log:        tel.Logger().With(observability.F("component", componentPaymentService)),
		reqCounter: tel.Metrics().Counter(observability.MUsecaseRequests),
		durHist:    tel.Metrics().Histogram(observability.MUsecaseDuration),
		emailCount: tel.Metrics().Counter(observability.MEmailsSent),
	}
}

type CheckoutInput struct {
	OrderID string
	Card    dompayment.Card
	Amount  float64
}

type CheckoutResult struct {
	TransactionID string
	OrderID       string
	Amount        float64
	InvoiceNumber string
	InvoicePDF    []byte
	EmailSent     bool
}

// Checkout validates and captures payment.
//
// The paid flag is claimed through an atomic conditional update on the order
// repository, so two racing attempts cannot both capture. Failures after the
// ownership check delete the still-unpaid order and return its stock
// reservation (saga-style compensation); the CAS loser's ALREADY_PAID is the
// one late failure that must NOT compensate, since the order is paid.
func (s *Service) Checkout(ctx context.Context, ident identity.Identity, input CheckoutInput) (_ *CheckoutResult, err error) {
	logger := logctx.FromOr(ctx, s.log).With(
		observability.F("use_case", useCaseCheckout),
		observability.F("order_id", input.OrderID),
	)

	ctx, span := s.tel.Tracer().Start(ctx, "UC.Checkout",
		attribute.String("use_case", useCaseCheckout),
		attribute.String("order.id", input.OrderID),
	)
	start := time.Now()
	defer func() {
		outcome := "success"
		if err != nil {
			outcome = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "OK")
		}
		span.End()

		s.reqCounter.Add(1,
			observability.L("use_case", useCaseCheckout),
			observability.L("outcome", outcome),
		)
		s.durHist.Observe(time.Since(start).Seconds(),
			observability.L("use_case", useCaseCheckout),
		)
	}()

	entity, err := s.orders.Get(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}
	if entity.UserID != ident.UserID {
		return nil, domain.ErrNotOwner
	}
	if entity.PaidAt != nil {
		return nil, domain.ErrAlreadyPaid
	}

	if err := input.Card.Validate(time.Now().UTC()); err != nil {
		s.compensate(ctx, entity)
		return nil, err
	}
	if math.Abs(entity.Total-input.Amount) > amountTolerance {
		s.compensate(ctx, entity)
		return nil, fmt.Errorf("%w: expected %.2f", dompayment.ErrAmountMismatch, entity.Total)
	}

	paid, err := s.orders.ClaimPayment(ctx, entity.ID, time.Now().UTC())
	if err != nil {
		// A concurrent attempt won the claim; the order is paid, leave it be.
		if errors.Is(err, domain.ErrAlreadyPaid) {
			return nil, domain.ErrAlreadyPaid
		}
		return nil, err
	}

	// Invoice rendering and email are best-effort from here on; payment is
	// already captured and none of this rolls it back.
	var invoicePDF []byte
	if s.renderer != nil {
		invoicePDF, err = s.renderer.Render(paid, ident)
		if err != nil {
			logger.Warn("invoice_render_failed", observability.F("error", err.Error()))
			invoicePDF, err = nil, nil
		}
	}

	emailSent := false
	if s.mailer != nil && ident.Email != "" {
		if mailErr := s.mailer.SendInvoice(ctx, ident.Email, paid, invoicePDF); mailErr != nil {
			logger.Warn("invoice_email_failed", observability.F("error", mailErr.Error()))
		} else {
			emailSent = true
		}
	}
	s.emailCount.Add(1,
		observability.L("kind", "invoice"),
		observability.L("outcome", boolOutcome(emailSent)),
	)

	if err := s.carts.Delete(ctx, paid.UserID); err != nil {
		logger.Warn("cart_clear_failed", observability.F("error", err.Error()))
	}

	s.publish(ctx, domain.NewOrderPaidEvent(paid))

	logger.Info("payment_captured",
		observability.F("invoice_number", paid.InvoiceNumber),
		observability.F("amount", paid.Total),
		observability.F("email_sent", emailSent),
	)

	return &CheckoutResult{
		TransactionID: s.idGen.NewID(),
		OrderID:       paid.ID,
		Amount:        paid.Total,
		InvoiceNumber: paid.InvoiceNumber,
		InvoicePDF:    invoicePDF,
		EmailSent:     emailSent,
	}, nil
}

// compensate deletes a failed, still-unpaid order and returns its stock
// reservation so no dangling processing order survives a failed payment.
func (s *Service) compensate(ctx context.Context, entity *domain.Order) {
	logger := logctx.FromOr(ctx, s.log)
	if err := s.orders.Delete(ctx, entity.ID); err != nil {
		logger.Error("compensation_delete_failed",
			observability.F("order_id", entity.ID),
			observability.F("error", err.Error()),
		)
		return
	}
	for _, line := range entity.Items {
		if err := s.products.IncrementStock(ctx, line.ProductID, line.Quantity); err != nil {
			logger.Error("compensation_restock_failed",
				observability.F("order_id", entity.ID),
				observability.F("product_id", line.ProductID),
				observability.F("error", err.Error()),
			)
		}
	}
	logger.Info("order_compensated", observability.F("order_id", entity.ID))
}

// Refund is the manager-initiated full reversal of a paid order. Stock goes
// back to the catalog and the customer is notified through the event bus.
func (s *Service) Refund(ctx context.Context, orderID, reason string) (*domain.Order, error) {
	logger := logctx.FromOr(ctx, s.log)

	entity, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := entity.FullRefund(time.Now().UTC(), reason); err != nil {
		return nil, err
	}
	if err := s.orders.Update(ctx, entity); err != nil {
		return nil, fmt.Errorf("payment: update order: %w", err)
	}

	for _, line := range entity.Items {
		if err := s.products.IncrementStock(ctx, line.ProductID, line.Quantity); err != nil {
			logger.Error("refund_restock_failed",
				observability.F("order_id", entity.ID),
				observability.F("product_id", line.ProductID),
				observability.F("error", err.Error()),
			)
		}
	}

	s.publish(ctx, domain.NewOrderRefundedEvent(entity))
	logger.Info("order_refunded",
		observability.F("order_id", entity.ID),
		observability.F("amount", entity.RefundAmount),
	)
	return entity, nil
}

// InvoicesByDateRange lists paid orders whose paidAt falls inside the
// inclusive day boundaries.
func (s *Service) InvoicesByDateRange(ctx context.Context, start, end time.Time) ([]*domain.Order, error) {
	return s.orders.FindPaidBetween(ctx, start, end)
}

// InvoicePDF re-exports the invoice for a paid order, reusing its number.
func (s *Service) InvoicePDF(ctx context.Context, orderID string, ident identity.Identity) ([]byte, error) {
	entity, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if entity.PaidAt == nil {
		return nil, domain.ErrNotPaid
	}
	if s.renderer == nil {
		return nil, errors.New("payment: no invoice renderer configured")
	}
	return s.renderer.Render(entity, ident)
}

// RevenueReport aggregates money movement across paid orders in a range.
type RevenueReport struct {
	Revenue    float64
	Cost       float64
	Profit     float64
	Refunded   float64
	OrderCount int
}

// Revenue sums revenue, product cost and profit for paid orders in the range.
// Refunded amounts reduce revenue.
func (s *Service) Revenue(ctx context.Context, start, end time.Time) (*RevenueReport, error) {
	orders, err := s.orders.FindPaidBetween(ctx, start, end)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0)
	seen := make(map[string]bool)
	for _, o := range orders {
		for _, line := range o.Items {
			if !seen[line.ProductID] {
				seen[line.ProductID] = true
				ids = append(ids, line.ProductID)
			}
		}
	}
	products, err := s.products.GetMany(ctx, ids)
	if err != nil {
		return nil, err
	}

	report := &RevenueReport{OrderCount: len(orders)}
	for _, o := range orders {
		report.Revenue += o.Total
		report.Refunded += o.RefundAmount
		for _, line := range o.Items {
			if product, ok := products[line.ProductID]; ok {
				report.Cost += product.Cost * float64(line.Quantity)
			}
		}
	}
	report.Revenue = domain.Round2(report.Revenue - report.Refunded)
	report.Cost = domain.Round2(report.Cost)
	report.Refunded = domain.Round2(report.Refunded)
	report.Profit = domain.Round2(report.Revenue - report.Cost)
	return report, nil
}

func (s *Service) publish(ctx context.Context, e domoutbox.Event) {
	if s.events == nil {
		return
	}
	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	if err := s.events.Publish(pubCtx, e); err != nil {
		logctx.FromOr(ctx, s.log).Warn("event_publish_failed",
			observability.F("event", e.EventName()),
			observability.F("error", err.Error()),
		)
	}
}

func boolOutcome(ok bool) string {
	if ok {
		return "success"
	}
	return "error"
}
