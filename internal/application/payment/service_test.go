package payment_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apppayment "github.com/Zhima-Mochi/minishop-orders/internal/application/payment"
	domcatalog "github.com/Zhima-Mochi/minishop-orders/internal/domain/catalog"
	"github.com/Zhima-Mochi/minishop-orders/internal/domain/identity"
	domain "github.com/Zhima-Mochi/minishop-orders/internal/domain/order"
	domoutbox "github.com/Zhima-Mochi/minishop-orders/internal/domain/outbox"
	dompayment "github.com/Zhima-Mochi/minishop-orders/internal/domain/payment"
	"github.com/Zhima-Mochi/minishop-orders/internal/infrastructure/id"
	"github.com/Zhima-Mochi/minishop-orders/internal/infrastructure/memory"
)

type stubRenderer struct{ fail bool }

func (r *stubRenderer) Render(o *domain.Order, _ identity.Identity) ([]byte, error) {
	if r.fail {
		return nil, errors.New("render failed")
	}
	return []byte("pdf:" + o.InvoiceNumber), nil
}

type stubMailer struct {
	mu       sync.Mutex
	fail     bool
	invoices []string
	refunds  []string
}

func (m *stubMailer) SendInvoice(_ context.Context, to string, _ *domain.Order, _ []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errors.New("smtp down")
	}
	m.invoices = append(m.invoices, to)
	return nil
}

func (m *stubMailer) SendRefundNotice(_ context.Context, to string, _ string, _ float64, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refunds = append(m.refunds, to)
	return nil
}

type stubPublisher struct {
	mu     sync.Mutex
	events []domoutbox.Event
}

func (p *stubPublisher) Publish(_ context.Context, e domoutbox.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *stubPublisher) names() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.EventName())
	}
	return out
}

type fixture struct {
	svc      *apppayment.Service
	orders   *memory.OrderRepository
	carts    *memory.CartRepository
	products *memory.ProductRepository
	renderer *stubRenderer
	mailer   *stubMailer
	events   *stubPublisher
}

func setup(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		orders:   memory.NewOrderRepository(),
		carts:    memory.NewCartRepository(),
		products: memory.NewProductRepository(),
		renderer: &stubRenderer{},
		mailer:   &stubMailer{},
		events:   &stubPublisher{},
	}
	f.svc = apppayment.NewService(f.orders, f.carts, f.products, f.renderer, f.mailer, f.events, id.NewUUIDGenerator(), nil)
	return f
}

func (f *fixture) seedProduct(t *testing.T, productID string, price, cost float64, stock int) {
	t.Helper()
	p, err := domcatalog.NewProduct(productID, "Product "+productID, price, cost, stock)
	require.NoError(t, err)
	require.NoError(t, f.products.Upsert(context.Background(), p))
}

// placeOrder inserts a processing order for userID and reserves its stock,
// mirroring what order assembly does.
func (f *fixture) placeOrder(t *testing.T, userID string, lines ...domain.Line) *domain.Order {
	t.Helper()
	entity, err := domain.New(fmt.Sprintf("ord-%s-%d", userID, time.Now().UnixNano()), userID, lines, 0, 0, domain.Address{
		FullName:     "Jane Doe",
		AddressLine1: "1 Main Street",
		City:         "Springfield",
		Country:      "US",
		PostalCode:   "12345",
	}, "")
	require.NoError(t, err)
	entity.CustomerEmail = userID + "@example.com"
	for _, line := range lines {
		require.NoError(t, f.products.DecrementStock(context.Background(), line.ProductID, line.Quantity))
	}
	require.NoError(t, f.orders.Insert(context.Background(), entity))
	return entity
}

func (f *fixture) stockOf(t *testing.T, productID string) int {
	t.Helper()
	p, err := f.products.Get(context.Background(), productID)
	require.NoError(t, err)
	return p.Stock
}

func line(productID string, qty int, unitPrice float64) domain.Line {
	return domain.Line{
		ProductID: productID,
		Name:      "Product " + productID,
		Quantity:  qty,
		UnitPrice: unitPrice,
		LineTotal: domain.Round2(unitPrice * float64(qty)),
	}
}

func customer(userID string) identity.Identity {
	return identity.Identity{UserID: userID, Name: "Jane Doe", Email: userID + "@example.com", Role: identity.RoleCustomer}
}

func validCard() dompayment.Card {
	return dompayment.Card{
		Number:      "4242424242424242",
		CVV:         "123",
		Holder:      "Jane Doe",
		ExpiryMonth: 12,
		ExpiryYear:  time.Now().Year() + 2,
	}
}

func TestCheckoutHappyPath(t *testing.T) {
	f := setup(t)
	f.seedProduct(t, "p1", 25.00, 10.00, 3)
	entity := f.placeOrder(t, "u1", line("p1", 1, 25.00))

	result, err := f.svc.Checkout(context.Background(), customer("u1"), apppayment.CheckoutInput{
		OrderID: entity.ID,
		Amount:  25.00,
		Card:    validCard(),
	})

	require.NoError(t, err)
	assert.NotEmpty(t, result.TransactionID)
	assert.Equal(t, entity.ID, result.OrderID)
	assert.InDelta(t, 25.00, result.Amount, 0.001)
	assert.Equal(t, domain.InvoiceNumberFor(entity.ID), result.InvoiceNumber)
	assert.Regexp(t, `^INV-[A-Z0-9-]{1,6}$`, result.InvoiceNumber)
	assert.NotEmpty(t, result.InvoicePDF)
	assert.True(t, result.EmailSent)

	paid, err := f.orders.Get(context.Background(), entity.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPaid, paid.Status)
	require.NotNil(t, paid.PaidAt)

	assert.Equal(t, 2, f.stockOf(t, "p1"), "payment never decrements stock again")
	assert.Equal(t, []string{"u1@example.com"}, f.mailer.invoices)
	assert.Equal(t, []string{"order.paid"}, f.events.names())
}

func TestCheckoutEmailFailureStillCaptures(t *testing.T) {
	f := setup(t)
	f.seedProduct(t, "p1", 25.00, 10.00, 3)
	entity := f.placeOrder(t, "u1", line("p1", 1, 25.00))
	f.mailer.fail = true

	result, err := f.svc.Checkout(context.Background(), customer("u1"), apppayment.CheckoutInput{
		OrderID: entity.ID,
		Amount:  25.00,
		Card:    validCard(),
	})

	require.NoError(t, err)
	assert.False(t, result.EmailSent)

	paid, err := f.orders.Get(context.Background(), entity.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPaid, paid.Status)
}

func TestCheckoutInvalidCardCompensates(t *testing.T) {
	f := setup(t)
	f.seedProduct(t, "p1", 25.00, 10.00, 3)
	entity := f.placeOrder(t, "u1", line("p1", 2, 25.00))
	require.Equal(t, 1, f.stockOf(t, "p1"))

	_, err := f.svc.Checkout(context.Background(), customer("u1"), apppayment.CheckoutInput{
		OrderID: entity.ID,
		Amount:  50.00,
		Card:    dompayment.Card{Number: "1234", CVV: "123", Holder: "Jane", ExpiryMonth: 1, ExpiryYear: time.Now().Year() + 1},
	})

	require.ErrorIs(t, err, dompayment.ErrInvalidCard)

	_, err = f.orders.Get(context.Background(), entity.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound, "failed order is deleted")
	assert.Equal(t, 3, f.stockOf(t, "p1"), "reservation returned")
	assert.Empty(t, f.events.names())
}

func TestCheckoutAmountMismatchCompensates(t *testing.T) {
	f := setup(t)
	f.seedProduct(t, "p1", 25.00, 10.00, 3)
	entity := f.placeOrder(t, "u1", line("p1", 1, 25.00))

	_, err := f.svc.Checkout(context.Background(), customer("u1"), apppayment.CheckoutInput{
		OrderID: entity.ID,
		Amount:  20.00,
		Card:    validCard(),
	})

	require.ErrorIs(t, err, dompayment.ErrAmountMismatch)
	_, err = f.orders.Get(context.Background(), entity.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, 3, f.stockOf(t, "p1"))
}

func TestCheckoutAmountWithinTolerance(t *testing.T) {
	f := setup(t)
	f.seedProduct(t, "p1", 25.00, 10.00, 3)
	entity := f.placeOrder(t, "u1", line("p1", 1, 25.00))

	_, err := f.svc.Checkout(context.Background(), customer("u1"), apppayment.CheckoutInput{
		OrderID: entity.ID,
		Amount:  25.005,
		Card:    validCard(),
	})
	require.NoError(t, err)
}

func TestCheckoutNotOwner(t *testing.T) {
	f := setup(t)
	f.seedProduct(t, "p1", 25.00, 10.00, 3)
	entity := f.placeOrder(t, "u1", line("p1", 1, 25.00))

	_, err := f.svc.Checkout(context.Background(), customer("intruder"), apppayment.CheckoutInput{
		OrderID: entity.ID,
		Amount:  25.00,
		Card:    validCard(),
	})

	require.ErrorIs(t, err, domain.ErrNotOwner)
	_, err = f.orders.Get(context.Background(), entity.ID)
	require.NoError(t, err, "ownership failures never compensate")
	assert.Equal(t, 2, f.stockOf(t, "p1"))
}

func TestCheckoutAlreadyPaid(t *testing.T) {
	f := setup(t)
	f.seedProduct(t, "p1", 25.00, 10.00, 3)
	entity := f.placeOrder(t, "u1", line("p1", 1, 25.00))

	_, err := f.svc.Checkout(context.Background(), customer("u1"), apppayment.CheckoutInput{
		OrderID: entity.ID, Amount: 25.00, Card: validCard(),
	})
	require.NoError(t, err)

	_, err = f.svc.Checkout(context.Background(), customer("u1"), apppayment.CheckoutInput{
		OrderID: entity.ID, Amount: 25.00, Card: validCard(),
	})
	require.ErrorIs(t, err, domain.ErrAlreadyPaid)

	paid, err := f.orders.Get(context.Background(), entity.ID)
	require.NoError(t, err, "paid orders survive a repeated attempt")
	assert.Equal(t, domain.StatusPaid, paid.Status)
}

func TestCheckoutConcurrentSingleCapture(t *testing.T) {
	f := setup(t)
	f.seedProduct(t, "p1", 25.00, 10.00, 50)
	entity := f.placeOrder(t, "u1", line("p1", 1, 25.00))

	const attempts = 16
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.Checkout(context.Background(), customer("u1"), apppayment.CheckoutInput{
				OrderID: entity.ID, Amount: 25.00, Card: validCard(),
			})
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
		} else {
			assert.ErrorIs(t, err, domain.ErrAlreadyPaid)
		}
	}
	assert.Equal(t, 1, successes, "exactly one attempt captures")

	paid, err := f.orders.Get(context.Background(), entity.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPaid, paid.Status)
	assert.Equal(t, 49, f.stockOf(t, "p1"))
}

func TestRefundFullReversal(t *testing.T) {
	f := setup(t)
	f.seedProduct(t, "p1", 25.00, 10.00, 5)
	entity := f.placeOrder(t, "u1", line("p1", 2, 25.00))
	_, err := f.svc.Checkout(context.Background(), customer("u1"), apppayment.CheckoutInput{
		OrderID: entity.ID, Amount: 50.00, Card: validCard(),
	})
	require.NoError(t, err)
	require.Equal(t, 3, f.stockOf(t, "p1"))

	refunded, err := f.svc.Refund(context.Background(), entity.ID, "damaged in transit")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, refunded.Status)
	assert.InDelta(t, 50.00, refunded.RefundAmount, 0.001)
	assert.Equal(t, "damaged in transit", refunded.RefundReason)
	assert.Equal(t, 5, f.stockOf(t, "p1"), "full refund returns stock")
	assert.Contains(t, f.events.names(), "order.refunded")

	_, err = f.svc.Refund(context.Background(), entity.ID, "again")
	assert.ErrorIs(t, err, domain.ErrRefundConflict)
}

func TestRefundBlockedWhilePartialRequestPending(t *testing.T) {
	f := setup(t)
	f.seedProduct(t, "p1", 25.00, 10.00, 5)
	entity := f.placeOrder(t, "u1", line("p1", 2, 25.00))

	now := time.Now().UTC()
	require.NoError(t, entity.MarkPaid(now))
	require.NoError(t, entity.SetFulfillment(domain.StatusInTransit))
	require.NoError(t, entity.SetFulfillment(domain.StatusDelivered))
	require.NoError(t, entity.OpenRefundRequest(now, []domain.ItemSelection{{ProductID: "p1", Quantity: 1}}, "one arrived broken"))
	require.NoError(t, f.orders.Update(context.Background(), entity))
	require.Equal(t, 3, f.stockOf(t, "p1"))

	// A full reversal and an approved request would both restock the same
	// units. The pending request wins; the manager path must step back.
	_, err := f.svc.Refund(context.Background(), entity.ID, "customer escalated")
	assert.ErrorIs(t, err, domain.ErrRefundConflict)
	assert.Equal(t, 3, f.stockOf(t, "p1"))

	stored, err := f.orders.Get(context.Background(), entity.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RefundRequestPending, stored.RefundRequestStatus)
	require.NoError(t, stored.ApproveRefundRequest(time.Now().UTC()))
	assert.InDelta(t, 25.00, stored.RefundAmount, 0.001)
}

func TestRefundRequiresPayment(t *testing.T) {
	f := setup(t)
	f.seedProduct(t, "p1", 25.00, 10.00, 5)
	entity := f.placeOrder(t, "u1", line("p1", 1, 25.00))

	_, err := f.svc.Refund(context.Background(), entity.ID, "nope")
	assert.ErrorIs(t, err, domain.ErrNotPaid)
}

func TestInvoicePDFRequiresPayment(t *testing.T) {
	f := setup(t)
	f.seedProduct(t, "p1", 25.00, 10.00, 5)
	entity := f.placeOrder(t, "u1", line("p1", 1, 25.00))

	_, err := f.svc.InvoicePDF(context.Background(), entity.ID, customer("u1"))
	assert.ErrorIs(t, err, domain.ErrNotPaid)

	_, err = f.svc.Checkout(context.Background(), customer("u1"), apppayment.CheckoutInput{
		OrderID: entity.ID, Amount: 25.00, Card: validCard(),
	})
	require.NoError(t, err)

	pdf, err := f.svc.InvoicePDF(context.Background(), entity.ID, customer("u1"))
	require.NoError(t, err)
	assert.NotEmpty(t, pdf)
}

func TestRevenueReport(t *testing.T) {
	f := setup(t)
	f.seedProduct(t, "p1", 25.00, 10.00, 20)
	f.seedProduct(t, "p2", 100.00, 60.00, 20)

	pay := func(userID string, amount float64, lines ...domain.Line) *domain.Order {
		entity := f.placeOrder(t, userID, lines...)
		_, err := f.svc.Checkout(context.Background(), customer(userID), apppayment.CheckoutInput{
			OrderID: entity.ID, Amount: amount, Card: validCard(),
		})
		require.NoError(t, err)
		return entity
	}

	pay("u1", 50.00, line("p1", 2, 25.00))
	refunded := pay("u2", 100.00, line("p2", 1, 100.00))

	_, err := f.svc.Refund(context.Background(), refunded.ID, "returned")
	require.NoError(t, err)

	now := time.Now().UTC()
	report, err := f.svc.Revenue(context.Background(), now.Add(-time.Hour), now.Add(time.Hour))
	require.NoError(t, err)

	assert.Equal(t, 2, report.OrderCount)
	assert.InDelta(t, 100.00, report.Refunded, 0.001)
	assert.InDelta(t, 50.00, report.Revenue, 0.001, "150 gross - 100 refunded")
	assert.InDelta(t, 80.00, report.Cost, 0.001, "2x10 + 1x60")
	assert.InDelta(t, -30.00, report.Profit, 0.001)

	empty, err := f.svc.Revenue(context.Background(), now.Add(time.Hour), now.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Zero(t, empty.OrderCount)
	assert.Zero(t, empty.Revenue)
}

func TestInvoicesByDateRange(t *testing.T) {
	f := setup(t)
	f.seedProduct(t, "p1", 25.00, 10.00, 20)

	entity := f.placeOrder(t, "u1", line("p1", 1, 25.00))
	_, err := f.svc.Checkout(context.Background(), customer("u1"), apppayment.CheckoutInput{
		OrderID: entity.ID, Amount: 25.00, Card: validCard(),
	})
	require.NoError(t, err)

	unpaid := f.placeOrder(t, "u2", line("p1", 1, 25.00))

	now := time.Now().UTC()
	invoices, err := f.svc.InvoicesByDateRange(context.Background(), now.Add(-time.Hour), now.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, invoices, 1)
	assert.Equal(t, entity.ID, invoices[0].ID)
	assert.NotEqual(t, unpaid.ID, invoices[0].ID)
}
