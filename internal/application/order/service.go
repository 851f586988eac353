package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	domcart "github.com/Zhima-Mochi/minishop-orders/internal/domain/cart"
	domcatalog "github.com/Zhima-Mochi/minishop-orders/internal/domain/catalog"
	domain "github.com/Zhima-Mochi/minishop-orders/internal/domain/order"
	"github.com/Zhima-Mochi/minishop-orders/internal/observability"
	"github.com/Zhima-Mochi/minishop-orders/internal/observability/logctx"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var ErrEmptyCart = errors.New("order: cart is empty")

const (
	componentOrderService = "order_service"
	useCaseOrderCreate    = "order.create"
)

// Service is the order assembler: it freezes a cart into an immutable order
// and reserves stock through the catalog's atomic conditional decrement.
type Service struct {
	orders   domain.Repository
	carts    domcart.Repository
	products domcatalog.Repository
	idGen    IDGenerator
	pricing  Pricing

	tel          observability.Observability
	log          observability.Logger
	reqCounter   observability.Counter
	durHist      observability.Histogram
	reserveCount observability.Counter
}

func NewService(
	orders domain.Repository,
	carts domcart.Repository,
	products domcatalog.Repository,
	idGen IDGenerator,
	pricing Pricing,
	tel observability.Observability,
) *Service {
	if tel == nil {
		tel = observability.Nop()
	}
	return &Service{
		orders:       orders,
		carts:        carts,
		products:     products,
		idGen:        idGen,
		pricing:      pricing,
		tel:          tel,
		log:          tel.Logger().With(observability.F("component", componentOrderService)),
		reqCounter:   tel.Metrics().Counter(observability.MUsecaseRequests),
		durHist:      tel.Metrics().Histogram(observability.MUsecaseDuration),
		reserveCount: tel.Metrics().Counter(observability.MStockReservations),
	}
}

type CreateInput struct {
	Address   domain.Address
	Notes     string
	Email     string
	ClearCart bool
}

// Create assembles an order from the user's cart.
//
// Stock is reserved exactly once, here, via the catalog's conditional
// decrement. All-or-nothing: the first shortfall releases every reservation
// already taken for this order and fails the whole checkout.
func (s *Service) Create(ctx context.Context, userID string, input CreateInput) (_ *domain.Order, err error) {
	logger := logctx.FromOr(ctx, s.log).With(observability.F("use_case", useCaseOrderCreate))

	ctx, span := s.tel.Tracer().Start(ctx, "UC.CreateOrder",
		attribute.String("use_case", useCaseOrderCreate),
		attribute.String("order.user_id", userID),
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
			observability.L("use_case", useCaseOrderCreate),
			observability.L("outcome", outcome),
		)
		s.durHist.Observe(time.Since(start).Seconds(),
			observability.L("use_case", useCaseOrderCreate),
		)
	}()

	c, err := s.carts.Get(ctx, userID)
	if errors.Is(err, domcart.ErrNotFound) {
		return nil, ErrEmptyCart
	}
	if err != nil {
		return nil, fmt.Errorf("order: load cart: %w", err)
	}
	if c.IsEmpty() {
		return nil, ErrEmptyCart
	}

	if err := input.Address.Validate(); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(c.Items))
	for _, item := range c.Items {
		ids = append(ids, item.ProductID)
	}
	products, err := s.products.GetMany(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("order: load products: %w", err)
	}
	for _, item := range c.Items {
		if _, ok := products[item.ProductID]; !ok {
			return nil, &domcatalog.NotFoundError{ProductID: item.ProductID}
		}
	}

	reserved, err := s.reserve(ctx, c.Items)
	if err != nil {
		return nil, err
	}

	lines := make([]domain.Line, 0, len(c.Items))
	for _, item := range c.Items {
		product := products[item.ProductID]
		unitPrice := item.PriceSnapshot
		if unitPrice == 0 {
			unitPrice = product.Price
		}
		lines = append(lines, domain.Line{
			ProductID: item.ProductID,
			Name:      product.Name,
			Quantity:  item.Quantity,
			UnitPrice: unitPrice,
			LineTotal: domain.Round2(unitPrice * float64(item.Quantity)),
		})
	}

	var subtotal float64
	for _, line := range lines {
		subtotal += line.LineTotal
	}
	tax := domain.Round2(subtotal * s.pricing.TaxRate)

	entity, err := domain.New(s.idGen.NewID(), userID, lines, tax, s.pricing.ShippingFee, input.Address, input.Notes)
	if err != nil {
		s.release(ctx, reserved)
		return nil, err
	}
	entity.CustomerEmail = input.Email

	if err := s.orders.Insert(ctx, entity); err != nil {
		s.release(ctx, reserved)
		logger.Error("order_insert_failed",
			observability.F("order_id", entity.ID),
			observability.F("error", err.Error()),
		)
		return nil, fmt.Errorf("order: insert: %w", err)
	}

	// Clearing is opt-in; by default the cart survives until payment succeeds.
	if input.ClearCart {
		if err := s.carts.Delete(ctx, userID); err != nil {
			logger.Warn("cart_clear_failed",
				observability.F("user_id", userID),
				observability.F("error", err.Error()),
			)
		}
	}

	logger.Info("order_created",
		observability.F("order_id", entity.ID),
		observability.F("total", entity.Total),
		observability.F("items", len(entity.Items)),
	)
	span.SetAttributes(attribute.String("order.id", entity.ID))
	return entity, nil
}

// reserve decrements stock for every cart line, undoing earlier decrements as
// soon as one line cannot be covered.
func (s *Service) reserve(ctx context.Context, items []domcart.Item) ([]domain.ItemSelection, error) {
	reserved := make([]domain.ItemSelection, 0, len(items))
	for _, item := range items {
		if err := s.products.DecrementStock(ctx, item.ProductID, item.Quantity); err != nil {
			s.reserveCount.Add(1, observability.L("outcome", "rejected"))
			s.release(ctx, reserved)
			return nil, err
		}
		reserved = append(reserved, domain.ItemSelection{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	s.reserveCount.Add(1, observability.L("outcome", "reserved"))
	return reserved, nil
}

func (s *Service) release(ctx context.Context, reserved []domain.ItemSelection) {
	logger := logctx.FromOr(ctx, s.log)
	for _, sel := range reserved {
		if err := s.products.IncrementStock(ctx, sel.ProductID, sel.Quantity); err != nil {
			logger.Error("stock_release_failed",
				observability.F("product_id", sel.ProductID),
				observability.F("quantity", sel.Quantity),
				observability.F("error", err.Error()),
			)
		}
	}
}

// Restock returns every line of an order to the catalog. Used by
// cancellation, payment compensation, and the refund paths.
func (s *Service) Restock(ctx context.Context, lines []domain.Line) {
	selections := make([]domain.ItemSelection, 0, len(lines))
	for _, line := range lines {
		selections = append(selections, domain.ItemSelection{ProductID: line.ProductID, Quantity: line.Quantity})
	}
	s.release(ctx, selections)
}

// MyOrders lists the user's orders, newest first.
func (s *Service) MyOrders(ctx context.Context, userID string) ([]*domain.Order, error) {
	return s.orders.FindByUser(ctx, userID)
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Order, error) {
	return s.orders.Get(ctx, id)
}

// Cancel reverses an unpaid order and releases its stock reservation.
func (s *Service) Cancel(ctx context.Context, userID, orderID string) (*domain.Order, error) {
	logger := logctx.FromOr(ctx, s.log)

	entity, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if entity.UserID != userID {
		return nil, domain.ErrNotOwner
	}
	if err := entity.Cancel(); err != nil {
		return nil, err
	}
	if err := s.orders.Update(ctx, entity); err != nil {
		return nil, fmt.Errorf("order: update: %w", err)
	}

	s.Restock(ctx, entity.Items)
	logger.Info("order_cancelled", observability.F("order_id", entity.ID))
	return entity, nil
}

// UpdateStatus moves a paid order along the fulfillment pipeline
// (paid -> in-transit -> delivered). Manager-only at the transport layer.
func (s *Service) UpdateStatus(ctx context.Context, orderID string, status domain.Status) (*domain.Order, error) {
	entity, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := entity.SetFulfillment(status); err != nil {
		return nil, err
	}
	if err := s.orders.Update(ctx, entity); err != nil {
		return nil, fmt.Errorf("order: update: %w", err)
	}
	return entity, nil
}

// Deliveries lists orders waiting on fulfillment.
func (s *Service) Deliveries(ctx context.Context) ([]*domain.Order, error) {
	return s.orders.FindByStatus(ctx, domain.StatusPaid, domain.StatusInTransit)
}
