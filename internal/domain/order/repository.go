package order

import (
	"context"
	"time"
)

// Repository is the order document-store port.
//
// ClaimPayment is the atomic "claim for payment" primitive: it marks the
// order paid only if no concurrent attempt got there first, so two racing
// checkouts on the same order cannot both capture.
type Repository interface {
	Insert(ctx context.Context, order *Order) error
	Get(ctx context.Context, id string) (*Order, error)
	Update(ctx context.Context, order *Order) error
	Delete(ctx context.Context, id string) error

	FindByUser(ctx context.Context, userID string) ([]*Order, error)
	FindByStatus(ctx context.Context, statuses ...Status) ([]*Order, error)
	FindPaidBetween(ctx context.Context, start, end time.Time) ([]*Order, error)
	FindPendingRefundRequests(ctx context.Context) ([]*Order, error)

	ClaimPayment(ctx context.Context, id string, at time.Time) (*Order, error)
}
