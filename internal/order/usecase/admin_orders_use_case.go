package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/errors"
	"storefront/internal/order/repository"
)

type AdminOrderRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Order, error)
	List(ctx context.Context, f repository.ListFilter) ([]domain.Order, error)
	UpdateFulfillmentStatus(ctx context.Context, id string, from string, to string) error
}

type RoleRepository interface {
	HasRole(ctx context.Context, userID string, role string) (bool, error)
}

// AdminOrdersUseCase is the back-office view over every order.
type AdminOrdersUseCase struct {
	orderRepo AdminOrderRepository
	roleRepo  RoleRepository
	logger    *zap.Logger
}

func NewAdminOrdersUseCase(orderRepo AdminOrderRepository, roleRepo RoleRepository, logger *zap.Logger) *AdminOrdersUseCase {
	return &AdminOrdersUseCase{orderRepo: orderRepo, roleRepo: roleRepo, logger: logger}
}

func (uc *AdminOrdersUseCase) List(ctx context.Context, session *domain.Session, filter repository.ListFilter) ([]domain.Order, error) {
	if err := uc.requireAdmin(ctx, session); err != nil {
		return nil, err
	}
	if filter.PaymentStatus != "" &&
		filter.PaymentStatus != domain.PaymentStatusPending &&
		filter.PaymentStatus != domain.PaymentStatusPaid &&
		filter.PaymentStatus != domain.PaymentStatusFailed {
		return nil, errors.NewValidationError("unknown payment status", errors.ValidationDetail{
			Field:   "payment_status",
			Message: "payment_status must be pending, paid or failed",
		})
	}
	return uc.orderRepo.List(ctx, filter)
}

// AdvanceFulfillment moves an order one or more steps forward in the
// fulfillment pipeline. Payment status is never touched here.
func (uc *AdminOrdersUseCase) AdvanceFulfillment(ctx context.Context, session *domain.Session, orderID string, to string) (*domain.Order, error) {
	if err := uc.requireAdmin(ctx, session); err != nil {
		return nil, err
	}
	if !domain.IsValidFulfillmentStatus(to) {
		return nil, errors.NewValidationError("unknown fulfillment status", errors.ValidationDetail{
			Field:   "status",
			Message: fmt.Sprintf("%q is not a fulfillment status", to),
		})
	}

	order, err := uc.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !domain.CanAdvanceFulfillment(order.FulfillmentStatus, to) {
		return nil, errors.NewConflictError(fmt.Sprintf("cannot move fulfillment from %s to %s", order.FulfillmentStatus, to))
	}

	if err := uc.orderRepo.UpdateFulfillmentStatus(ctx, orderID, order.FulfillmentStatus, to); err != nil {
		return nil, err
	}

	uc.logger.Info("fulfillment advanced",
		zap.String("orderId", orderID),
		zap.String("from", order.FulfillmentStatus),
		zap.String("to", to),
		zap.String("adminId", session.UserID),
	)

	return uc.orderRepo.FindByID(ctx, orderID)
}

func (uc *AdminOrdersUseCase) requireAdmin(ctx context.Context, session *domain.Session) error {
	if session == nil {
		return errors.NewUnauthorizedError("authentication required")
	}
	ok, err := uc.roleRepo.HasRole(ctx, session.UserID, domain.RoleAdmin)
	if err != nil {
		return err
	}
	if !ok {
		return errors.NewForbiddenError("admin role required")
	}
	return nil
}
