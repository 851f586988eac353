package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	domain "github.com/Zhima-Mochi/minishop-orders/internal/domain/order"
)

type OrderRepository struct {
	mu     sync.RWMutex
	orders map[string]*domain.Order
}

func NewOrderRepository() *OrderRepository {
	return &OrderRepository{
		orders: make(map[string]*domain.Order),
	}
}

func (r *OrderRepository) Insert(ctx context.Context, order *domain.Order) error {
	_ = ctx
	if order == nil || order.ID == "" {
		return fmt.Errorf("order repository: id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.orders[order.ID]; exists {
		return fmt.Errorf("order repository: duplicate id %s", order.ID)
	}
	r.orders[order.ID] = order.Clone()
	return nil
}

func (r *OrderRepository) Get(ctx context.Context, id string) (*domain.Order, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return order.Clone(), nil
}

func (r *OrderRepository) Update(ctx context.Context, order *domain.Order) error {
	_ = ctx
	if order == nil || order.ID == "" {
		return fmt.Errorf("order repository: id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.orders[order.ID]; !exists {
		return domain.ErrNotFound
	}
	r.orders[order.ID] = order.Clone()
	return nil
}

func (r *OrderRepository) Delete(ctx context.Context, id string) error {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.orders, id)
	return nil
}

func (r *OrderRepository) FindByUser(ctx context.Context, userID string) ([]*domain.Order, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	var found []*domain.Order
	for _, order := range r.orders {
		if order.UserID == userID {
			found = append(found, order.Clone())
		}
	}
	sortNewestFirst(found)
	return found, nil
}

func (r *OrderRepository) FindByStatus(ctx context.Context, statuses ...domain.Status) ([]*domain.Order, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	var found []*domain.Order
	for _, order := range r.orders {
		for _, status := range statuses {
			if order.Status == status {
				found = append(found, order.Clone())
				break
			}
		}
	}
	sortNewestFirst(found)
	return found, nil
}

func (r *OrderRepository) FindPaidBetween(ctx context.Context, start, end time.Time) ([]*domain.Order, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	var found []*domain.Order
	for _, order := range r.orders {
		if order.PaidAt == nil {
			continue
		}
		if order.PaidAt.Before(start) || order.PaidAt.After(end) {
			continue
		}
		found = append(found, order.Clone())
	}
	sortNewestFirst(found)
	return found, nil
}

func (r *OrderRepository) FindPendingRefundRequests(ctx context.Context) ([]*domain.Order, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	var found []*domain.Order
	for _, order := range r.orders {
		if order.RefundRequestStatus == domain.RefundRequestPending {
			found = append(found, order.Clone())
		}
	}
	sortNewestFirst(found)
	return found, nil
}

// ClaimPayment atomically marks the order paid. Under the write lock only one
// of several racing attempts can observe the unpaid order, so double capture
// is impossible.
func (r *OrderRepository) ClaimPayment(ctx context.Context, id string, at time.Time) (*domain.Order, error) {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if err := order.MarkPaid(at); err != nil {
		return nil, err
	}
	return order.Clone(), nil
}

func sortNewestFirst(orders []*domain.Order) {
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
}
