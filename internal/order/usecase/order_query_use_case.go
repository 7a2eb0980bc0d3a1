package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/errors"
)

type OrderReader interface {
	FindByID(ctx context.Context, id string) (*domain.Order, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]domain.Order, error)
}

type OrderWithItems struct {
	Order domain.Order
	Items []domain.OrderItem
}

// OrderQueryUseCase serves a shopper's own orders.
type OrderQueryUseCase struct {
	orderRepo OrderReader
	itemRepo  OrderItemRepository
	logger    *zap.Logger
}

func NewOrderQueryUseCase(orderRepo OrderReader, itemRepo OrderItemRepository, logger *zap.Logger) *OrderQueryUseCase {
	return &OrderQueryUseCase{orderRepo: orderRepo, itemRepo: itemRepo, logger: logger}
}

func (uc *OrderQueryUseCase) ListMine(ctx context.Context, session *domain.Session, limit int) ([]OrderWithItems, error) {
	if session == nil {
		return nil, errors.NewUnauthorizedError("authentication required")
	}

	orders, err := uc.orderRepo.ListByUser(ctx, session.UserID, limit)
	if err != nil {
		return nil, err
	}

	out := make([]OrderWithItems, 0, len(orders))
	for _, o := range orders {
		items, err := uc.itemRepo.ListByOrderID(ctx, o.ID)
		if err != nil {
			return nil, fmt.Errorf("loading items of order %s: %w", o.ID, err)
		}
		out = append(out, OrderWithItems{Order: o, Items: items})
	}
	return out, nil
}

// GetMine returns an order the caller owns. Orders of other users are
// reported as not found.
func (uc *OrderQueryUseCase) GetMine(ctx context.Context, session *domain.Session, orderID string) (*OrderWithItems, error) {
	if session == nil {
		return nil, errors.NewUnauthorizedError("authentication required")
	}

	order, err := uc.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID == nil || *order.UserID != session.UserID {
		uc.logger.Warn("order lookup by non-owner", zap.String("orderId", orderID), zap.String("userId", session.UserID))
		return nil, errors.NewNotFoundError("order not found")
	}

	items, err := uc.itemRepo.ListByOrderID(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("loading order items: %w", err)
	}

	return &OrderWithItems{Order: *order, Items: items}, nil
}
