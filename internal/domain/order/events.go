package order

import "time"

// OrderPaidEvent is emitted after a successful payment capture.
type OrderPaidEvent struct {
	OrderID       string
	UserID        string
	Email         string
	Amount        float64
	InvoiceNumber string
	OccurredAt    time.Time
}

func (OrderPaidEvent) EventName() string { return "order.paid" }

func NewOrderPaidEvent(o *Order) OrderPaidEvent {
	return OrderPaidEvent{
		OrderID:       o.ID,
		UserID:        o.UserID,
		Email:         o.CustomerEmail,
		Amount:        o.Total,
		InvoiceNumber: o.InvoiceNumber,
		OccurredAt:    time.Now().UTC(),
	}
}

// OrderRefundedEvent is emitted when money goes back to the customer, either
// through a manager-initiated full refund or an approved refund request.
type OrderRefundedEvent struct {
	OrderID    string
	UserID     string
	Email      string
	Amount     float64
	Reason     string
	OccurredAt time.Time
}

func (OrderRefundedEvent) EventName() string { return "order.refunded" }

func NewOrderRefundedEvent(o *Order) OrderRefundedEvent {
	return OrderRefundedEvent{
		OrderID:    o.ID,
		UserID:     o.UserID,
		Email:      o.CustomerEmail,
		Amount:     o.RefundAmount,
		Reason:     o.RefundReason,
		OccurredAt: time.Now().UTC(),
	}
}
