package order

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAddress() Address {
	return Address{
		FullName:     "Jane Doe",
		AddressLine1: "1 Main Street",
		City:         "Springfield",
		Country:      "US",
		PostalCode:   "12345",
	}
}

func testOrder(t *testing.T) *Order {
	t.Helper()
	entity, err := New("order-abc123", "u1", []Line{
		{ProductID: "p1", Name: "Mouse", Quantity: 2, UnitPrice: 25.00, LineTotal: 50.00},
		{ProductID: "p2", Name: "Keyboard", Quantity: 1, UnitPrice: 89.90, LineTotal: 89.90},
	}, 13.99, 5.00, testAddress(), "leave at door")
	require.NoError(t, err)
	return entity
}

func TestNewComputesTotalsOnce(t *testing.T) {
	entity := testOrder(t)

	assert.Equal(t, StatusProcessing, entity.Status)
	assert.InDelta(t, 139.90, entity.Subtotal, 0.001)
	assert.InDelta(t, 13.99, entity.Tax, 0.001)
	assert.InDelta(t, 5.00, entity.Shipping, 0.001)
	assert.InDelta(t, 158.89, entity.Total, 0.001)
}

func TestNewValidation(t *testing.T) {
	_, err := New("id", "u1", nil, 0, 0, testAddress(), "")
	assert.ErrorIs(t, err, ErrEmptyItems)

	_, err = New("id", "u1", []Line{{ProductID: "p1", Quantity: 1}}, 0, 0, Address{City: "X"}, "")
	assert.ErrorIs(t, err, ErrInvalidAddress)
}

func TestMarkPaidAssignsInvoiceNumberOnce(t *testing.T) {
	entity := testOrder(t)
	now := time.Now().UTC()

	require.NoError(t, entity.MarkPaid(now))
	assert.Equal(t, StatusPaid, entity.Status)
	require.NotNil(t, entity.PaidAt)
	assert.Equal(t, "INV-ABC123", entity.InvoiceNumber)

	assert.ErrorIs(t, entity.MarkPaid(now), ErrAlreadyPaid)
	assert.Equal(t, "INV-ABC123", entity.InvoiceNumber)
}

func TestInvoiceNumberFor(t *testing.T) {
	assert.Equal(t, "INV-ABC123", InvoiceNumberFor("order-abc123"))
	assert.Equal(t, "INV-AB", InvoiceNumberFor("ab"))
}

func TestCancelOnlyWhileProcessing(t *testing.T) {
	entity := testOrder(t)
	require.NoError(t, entity.Cancel())
	assert.Equal(t, StatusCancelled, entity.Status)
	assert.ErrorIs(t, entity.Cancel(), ErrNotCancellable)

	paid := testOrder(t)
	require.NoError(t, paid.MarkPaid(time.Now().UTC()))
	assert.ErrorIs(t, paid.Cancel(), ErrNotCancellable)
}

func TestSetFulfillment(t *testing.T) {
	entity := testOrder(t)

	assert.ErrorIs(t, entity.SetFulfillment(StatusInTransit), ErrNotPaid)

	require.NoError(t, entity.MarkPaid(time.Now().UTC()))
	assert.ErrorIs(t, entity.SetFulfillment(StatusCancelled), ErrInvalidStatus)

	require.NoError(t, entity.SetFulfillment(StatusInTransit))
	assert.ErrorIs(t, entity.SetFulfillment(StatusInTransit), ErrInvalidStatus)

	require.NoError(t, entity.SetFulfillment(StatusDelivered))
	assert.ErrorIs(t, entity.SetFulfillment(StatusDelivered), ErrInvalidStatus)
}

func TestFulfillmentSkipsInTransit(t *testing.T) {
	entity := testOrder(t)
	require.NoError(t, entity.MarkPaid(time.Now().UTC()))
	require.NoError(t, entity.SetFulfillment(StatusDelivered))
	assert.Equal(t, StatusDelivered, entity.Status)
}

func TestFullRefund(t *testing.T) {
	entity := testOrder(t)
	assert.ErrorIs(t, entity.FullRefund(time.Now().UTC(), "x"), ErrNotPaid)

	require.NoError(t, entity.MarkPaid(time.Now().UTC()))
	require.NoError(t, entity.FullRefund(time.Now().UTC(), "damaged"))

	assert.Equal(t, StatusCancelled, entity.Status)
	assert.InDelta(t, entity.Total, entity.RefundAmount, 0.001)
	assert.Equal(t, "damaged", entity.RefundReason)

	assert.ErrorIs(t, entity.FullRefund(time.Now().UTC(), "again"), ErrRefundConflict)
}

func TestOpenRefundRequestRecomputesLineTotals(t *testing.T) {
	entity := testOrder(t)
	require.NoError(t, entity.MarkPaid(time.Now().UTC()))
	require.NoError(t, entity.SetFulfillment(StatusDelivered))

	require.NoError(t, entity.OpenRefundRequest(time.Now().UTC(), []ItemSelection{
		{ProductID: "p1", Quantity: 1},
	}, "one broke"))

	assert.Equal(t, RefundRequestPending, entity.RefundRequestStatus)
	require.Len(t, entity.RefundRequestedItems, 1)
	assert.InDelta(t, 25.00, entity.RefundRequestedItems[0].LineTotal, 0.001, "half of the two-unit line")
	assert.InDelta(t, 25.00, entity.RefundRequestAmount, 0.001)
}

func TestRefundPathsAreMutuallyExclusive(t *testing.T) {
	entity := testOrder(t)
	require.NoError(t, entity.MarkPaid(time.Now().UTC()))
	require.NoError(t, entity.SetFulfillment(StatusDelivered))
	require.NoError(t, entity.OpenRefundRequest(time.Now().UTC(), []ItemSelection{
		{ProductID: "p1", Quantity: 1},
	}, "one broke"))

	assert.ErrorIs(t, entity.FullRefund(time.Now().UTC(), "override"), ErrRefundConflict)
	assert.Equal(t, RefundRequestPending, entity.RefundRequestStatus)

	require.NoError(t, entity.ApproveRefundRequest(time.Now().UTC()))
	assert.ErrorIs(t, entity.ApproveRefundRequest(time.Now().UTC()), ErrRefundConflict)
	assert.ErrorIs(t, entity.FullRefund(time.Now().UTC(), "again"), ErrRefundConflict)
}

func TestParseStatus(t *testing.T) {
	status, err := ParseStatus("in-transit")
	require.NoError(t, err)
	assert.Equal(t, StatusInTransit, status)

	_, err = ParseStatus("teleported")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestRound2(t *testing.T) {
	assert.InDelta(t, 0.3, Round2(0.1+0.2), 1e-9)
	assert.InDelta(t, 2.68, Round2(2.675000001), 1e-9)
	assert.InDelta(t, -1.05, Round2(-1.054), 1e-9)
}

func TestCloneIsDeep(t *testing.T) {
	entity := testOrder(t)
	require.NoError(t, entity.MarkPaid(time.Now().UTC()))

	clone := entity.Clone()
	clone.Items[0].Quantity = 99
	*clone.PaidAt = clone.PaidAt.Add(time.Hour)

	assert.Equal(t, 2, entity.Items[0].Quantity)
	assert.NotEqual(t, entity.PaidAt.Unix(), clone.PaidAt.Unix())
}
