package order

import (
	"errors"
	"math"
	"strings"
	"time"
)

var (
	ErrNotFound       = errors.New("order: not found")
	ErrNotOwner       = errors.New("order: not owned by user")
	ErrAlreadyPaid    = errors.New("order: already paid")
	ErrNotPaid        = errors.New("order: not paid")
	ErrNotCancellable = errors.New("order: can only be cancelled while processing")
	ErrNotDelivered   = errors.New("order: refund requests require a delivered order")
	ErrRefundConflict = errors.New("order: refund request already resolved or pending")
	ErrNoRefundItems  = errors.New("order: refund request must select at least one item")
	ErrItemNotInOrder = errors.New("order: selected item is not part of the order")
	ErrInvalidStatus  = errors.New("order: invalid status transition")
	ErrEmptyItems     = errors.New("order: at least one item is required")
)

type Status string

const (
	StatusProcessing Status = "processing"
	StatusPaid       Status = "paid"
	StatusCancelled  Status = "cancelled"
	StatusInTransit  Status = "in-transit"
	StatusDelivered  Status = "delivered"
)

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusProcessing, StatusPaid, StatusCancelled, StatusInTransit, StatusDelivered:
		return Status(s), nil
	}
	return "", ErrInvalidStatus
}

type RefundRequestStatus string

const (
	RefundRequestPending  RefundRequestStatus = "pending"
	RefundRequestApproved RefundRequestStatus = "approved"
	RefundRequestDeclined RefundRequestStatus = "declined"
)

// Line is an immutable snapshot of one purchased position. Prices are frozen
// at order creation and never track later catalog changes.
type Line struct {
	ProductID string
	Name      string
	Quantity  int
	UnitPrice float64
	LineTotal float64
}

type Order struct {
	ID            string
	UserID        string
	CustomerEmail string
	Items         []Line
	Subtotal        float64
	Tax             float64
	Shipping        float64
	Total           float64
	Status          Status
	ShippingAddress Address
	Notes           string

	PaidAt        *time.Time
	InvoiceNumber string

	RefundedAt   *time.Time
	RefundAmount float64
	RefundReason string

	RefundRequestedAt    *time.Time
	RefundRequestStatus  RefundRequestStatus
	RefundRequestedItems []Line
	RefundRequestAmount  float64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// New assembles an immutable order from priced lines. Subtotal, tax, shipping
// and total are computed once and fixed for the lifetime of the order.
func New(id, userID string, items []Line, tax, shipping float64, address Address, notes string) (*Order, error) {
	if len(items) == 0 {
		return nil, ErrEmptyItems
	}
	if err := address.Validate(); err != nil {
		return nil, err
	}

	var subtotal float64
	for _, line := range items {
		subtotal += line.LineTotal
	}
	subtotal = Round2(subtotal)

	now := time.Now().UTC()
	return &Order{
		ID:              id,
		UserID:          userID,
		Items:           append([]Line(nil), items...),
		Subtotal:        subtotal,
		Tax:             Round2(tax),
		Shipping:        Round2(shipping),
		Total:           Round2(subtotal + tax + shipping),
		Status:          StatusProcessing,
		ShippingAddress: address,
		Notes:           notes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// MarkPaid records payment capture. The invoice number is assigned exactly
// once and reused on later exports.
func (o *Order) MarkPaid(at time.Time) error {
	if o.PaidAt != nil {
		return ErrAlreadyPaid
	}
	if o.Status != StatusProcessing {
		return ErrInvalidStatus
	}
	paidAt := at.UTC()
	o.PaidAt = &paidAt
	o.Status = StatusPaid
	if o.InvoiceNumber == "" {
		o.InvoiceNumber = InvoiceNumberFor(o.ID)
	}
	o.touch()
	return nil
}

// Cancel is the customer-initiated reversal, permitted only before payment.
func (o *Order) Cancel() error {
	if o.Status != StatusProcessing {
		return ErrNotCancellable
	}
	o.Status = StatusCancelled
	o.touch()
	return nil
}

// SetFulfillment moves a paid order through the delivery pipeline.
func (o *Order) SetFulfillment(status Status) error {
	if o.PaidAt == nil {
		return ErrNotPaid
	}
	switch status {
	case StatusInTransit:
		if o.Status != StatusPaid {
			return ErrInvalidStatus
		}
	case StatusDelivered:
		if o.Status != StatusPaid && o.Status != StatusInTransit {
			return ErrInvalidStatus
		}
	default:
		return ErrInvalidStatus
	}
	o.Status = status
	o.touch()
	return nil
}

// FullRefund reverses the whole sale. The order must have been paid, not
// already refunded, and must not have a refund request awaiting resolution:
// resolving the request and reversing the sale both restock, so only one
// path may run.
func (o *Order) FullRefund(at time.Time, reason string) error {
	if o.PaidAt == nil {
		return ErrNotPaid
	}
	if o.RefundedAt != nil || o.RefundRequestStatus == RefundRequestPending {
		return ErrRefundConflict
	}
	refundedAt := at.UTC()
	o.RefundedAt = &refundedAt
	o.RefundAmount = o.Total
	o.RefundReason = reason
	o.Status = StatusCancelled
	o.touch()
	return nil
}

// ItemSelection names a subset of an order's lines for a refund request.
type ItemSelection struct {
	ProductID string
	Quantity  int
}

// OpenRefundRequest stages a customer refund request for manager resolution.
// Only delivered orders qualify, and a resolved request cannot be re-opened.
func (o *Order) OpenRefundRequest(at time.Time, selections []ItemSelection, reason string) error {
	if o.Status != StatusDelivered {
		return ErrNotDelivered
	}
	if o.RefundRequestStatus != "" {
		return ErrRefundConflict
	}
	if len(selections) == 0 {
		return ErrNoRefundItems
	}

	selected := make([]Line, 0, len(selections))
	var amount float64
	for _, sel := range selections {
		line, ok := o.findLine(sel.ProductID)
		if !ok {
			return ErrItemNotInOrder
		}
		if sel.Quantity < 1 || sel.Quantity > line.Quantity {
			return ErrItemNotInOrder
		}
		picked := Line{
			ProductID: line.ProductID,
			Name:      line.Name,
			Quantity:  sel.Quantity,
			UnitPrice: line.UnitPrice,
			LineTotal: Round2(line.UnitPrice * float64(sel.Quantity)),
		}
		selected = append(selected, picked)
		amount += picked.LineTotal
	}

	requestedAt := at.UTC()
	o.RefundRequestedAt = &requestedAt
	o.RefundRequestStatus = RefundRequestPending
	o.RefundRequestedItems = selected
	o.RefundRequestAmount = Round2(amount)
	o.RefundReason = reason
	o.touch()
	return nil
}

// ApproveRefundRequest resolves a pending request in the customer's favour.
func (o *Order) ApproveRefundRequest(at time.Time) error {
	if o.RefundRequestStatus != RefundRequestPending || o.RefundedAt != nil {
		return ErrRefundConflict
	}
	refundedAt := at.UTC()
	o.RefundRequestStatus = RefundRequestApproved
	o.RefundedAt = &refundedAt
	o.RefundAmount = o.RefundRequestAmount
	o.Status = StatusCancelled
	o.touch()
	return nil
}

// DeclineRefundRequest resolves a pending request without touching stock or money.
func (o *Order) DeclineRefundRequest() error {
	if o.RefundRequestStatus != RefundRequestPending {
		return ErrRefundConflict
	}
	o.RefundRequestStatus = RefundRequestDeclined
	o.touch()
	return nil
}

func (o *Order) findLine(productID string) (Line, bool) {
	for _, line := range o.Items {
		if line.ProductID == productID {
			return line, true
		}
	}
	return Line{}, false
}

func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	clone := *o
	clone.Items = append([]Line(nil), o.Items...)
	clone.RefundRequestedItems = append([]Line(nil), o.RefundRequestedItems...)
	if o.PaidAt != nil {
		t := *o.PaidAt
		clone.PaidAt = &t
	}
	if o.RefundedAt != nil {
		t := *o.RefundedAt
		clone.RefundedAt = &t
	}
	if o.RefundRequestedAt != nil {
		t := *o.RefundRequestedAt
		clone.RefundRequestedAt = &t
	}
	return &clone
}

func (o *Order) touch() { o.UpdatedAt = time.Now().UTC() }

// InvoiceNumberFor derives the deterministic invoice number from the order id.
func InvoiceNumberFor(orderID string) string {
	suffix := orderID
	if len(suffix) > 6 {
		suffix = suffix[len(suffix)-6:]
	}
	return "INV-" + strings.ToUpper(suffix)
}

// Round2 rounds monetary values to cents.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
