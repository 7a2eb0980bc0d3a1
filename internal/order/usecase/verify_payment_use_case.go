package usecase

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/errors"
	"storefront/internal/events"
	"storefront/internal/money"
	"storefront/internal/order/repository"
	"storefront/internal/payment/paystack"
)

type OrderRepository interface {
	FindByID(ctx context.Context, id string) (*domain.Order, error)
	UpdatePaymentStatus(ctx context.Context, id string, patch repository.PaymentPatch, scopeUserID *string) (*domain.Order, error)
}

type OrderItemRepository interface {
	ListByOrderID(ctx context.Context, orderID string) ([]domain.OrderItem, error)
	CountByOrderID(ctx context.Context, orderID string) (int, error)
}

type PaymentGateway interface {
	VerifyTransaction(ctx context.Context, reference string) (*paystack.Verification, error)
}

type VerifyInput struct {
	Reference string
	OrderID   string
}

type VerifyResult struct {
	Order   *domain.Order
	Items   []domain.OrderItem
	Payment json.RawMessage
}

type VerifyPaymentUseCase struct {
	orderRepo        OrderRepository
	itemRepo         OrderItemRepository
	gateway          PaymentGateway
	publisher        events.Publisher
	currency         string
	logger           *zap.Logger
	maxWriteAttempts int
	now              func() time.Time
}

func NewVerifyPaymentUseCase(
	orderRepo OrderRepository,
	itemRepo OrderItemRepository,
	gateway PaymentGateway,
	publisher events.Publisher,
	currency string,
	logger *zap.Logger,
) *VerifyPaymentUseCase {
	return &VerifyPaymentUseCase{
		orderRepo:        orderRepo,
		itemRepo:         itemRepo,
		gateway:          gateway,
		publisher:        publisher,
		currency:         currency,
		logger:           logger,
		maxWriteAttempts: 3,
		now:              time.Now,
	}
}

// Verify confirms reference with the gateway and marks the order paid. Only
// a gateway-confirmed, amount-matching payment ever moves an order to paid.
func (uc *VerifyPaymentUseCase) Verify(ctx context.Context, in VerifyInput, session *domain.Session) (*VerifyResult, error) {
	if session == nil || strings.TrimSpace(session.UserID) == "" {
		return nil, errors.NewUnauthorizedError("authentication required")
	}

	reference := strings.TrimSpace(in.Reference)
	orderID := strings.TrimSpace(in.OrderID)
	if err := validateVerifyInput(reference, orderID); err != nil {
		return nil, err
	}

	logger := uc.logger.With(
		zap.String("orderId", orderID),
		zap.String("reference", reference),
		zap.String("userId", session.UserID),
	)
	logger.Info("payment verification started")

	// Bloque 1: load and authorize the order before talking to the gateway
	order, err := uc.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		if _, ok := errors.IsNotFoundError(err); ok {
			return nil, errors.NewNotFoundError("order not found")
		}
		return nil, fmt.Errorf("loading order: %w", err)
	}
	if !order.OwnedBy(session.UserID) {
		logger.Warn("verification attempted on an order the caller does not own")
		return nil, errors.NewNotFoundError("order not found")
	}
	if !domain.IsImmediateSettlement(order.PaymentMethod) {
		return nil, errors.NewConflictError(fmt.Sprintf("order is settled by %s, not online", order.PaymentMethod))
	}

	// Bloque 2: orders that can no longer become paid with this reference
	if !domain.CanTransitionPayment(order.PaymentStatus, domain.PaymentStatusPaid) && !order.IsPaidWith(reference) {
		uc.checkStrandedPayment(ctx, order, reference, logger)
		return nil, errors.NewConflictError(fmt.Sprintf("order is already %s", order.PaymentStatus))
	}

	itemCount, err := uc.itemRepo.CountByOrderID(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("counting order items: %w", err)
	}
	if itemCount == 0 {
		logger.Warn("verification attempted on an order without items")
		return nil, errors.NewConflictError("order has no items")
	}

	// Bloque 3: gateway verdict
	verification, err := uc.gateway.VerifyTransaction(ctx, reference)
	if err != nil {
		logger.Warn("payment gateway unavailable", zap.Error(err))
		if _, ok := errors.IsGatewayUnavailableError(err); ok {
			return nil, err
		}
		return nil, errors.NewGatewayUnavailableError("verifying payment", err)
	}
	if err := uc.checkVerification(order, reference, verification); err != nil {
		logger.Warn("payment not confirmed", zap.Error(err), zap.String("gatewayStatus", verification.Transaction.Status))
		return nil, err
	}

	// Bloque 4: guarded write
	updated, err := uc.markPaidWithRetry(ctx, order, reference, session.UserID, logger)
	if err != nil {
		if _, ok := errors.IsNotFoundError(err); ok {
			return nil, err
		}
		reason := "order update failed"
		if _, ok := errors.IsConflictError(err); ok {
			reason = "order changed state during verification"
		}
		logger.Error("payment confirmed but order not marked paid",
			zap.Bool("reconciliation_gap", true),
			zap.Int64("amount", verification.Transaction.Amount),
			zap.Error(err),
		)
		uc.publish(ctx, events.TopicReconciliationGap, order.ID, events.ReconciliationGapPayload{
			OrderID:     order.ID,
			Reference:   reference,
			Amount:      verification.Transaction.Amount,
			OrderStatus: order.PaymentStatus,
			Reason:      reason,
		}, logger)
		if _, ok := errors.IsConflictError(err); ok {
			return nil, err
		}
		return nil, errors.NewOrderWriteError(order.ID, reference, err)
	}

	uc.publish(ctx, events.TopicPaymentVerified, updated.ID, events.PaymentVerifiedPayload{
		OrderID:   updated.ID,
		Reference: reference,
		Amount:    verification.Transaction.Amount,
		Currency:  verification.Transaction.Currency,
	}, logger)

	items, err := uc.itemRepo.ListByOrderID(ctx, updated.ID)
	if err != nil {
		logger.Warn("order items not loaded for response", zap.Error(err))
		items = nil
	}

	logger.Info("payment verified, order marked paid")

	return &VerifyResult{Order: updated, Items: items, Payment: verification.Raw}, nil
}

func validateVerifyInput(reference, orderID string) error {
	var details []errors.ValidationDetail
	if reference == "" {
		details = append(details, errors.ValidationDetail{Field: "reference", Message: "reference is required"})
	}
	if orderID == "" {
		details = append(details, errors.ValidationDetail{Field: "orderId", Message: "orderId is required"})
	}
	if len(details) > 0 {
		return errors.NewValidationError("missing reference or orderId", details...)
	}

	if !domain.ReferenceBelongsTo(reference, orderID) {
		return errors.NewValidationError("reference does not belong to order", errors.ValidationDetail{
			Field:   "reference",
			Message: "reference was not issued for this order",
		})
	}
	return nil
}

func (uc *VerifyPaymentUseCase) checkVerification(order *domain.Order, reference string, v *paystack.Verification) error {
	if !v.Succeeded {
		detail := v.Message
		if v.Transaction.GatewayResponse != "" {
			detail = v.Transaction.GatewayResponse
		}
		return errors.NewPaymentVerificationError("payment verification failed", detail)
	}

	if v.Transaction.Reference != "" && v.Transaction.Reference != reference {
		return errors.NewPaymentVerificationError("payment reference mismatch",
			fmt.Sprintf("gateway returned reference %s", v.Transaction.Reference))
	}

	paid, err := money.FromMinor(v.Transaction.Amount)
	if err != nil || paid != order.TotalAmount {
		return errors.NewPaymentVerificationError("payment amount does not match order total",
			fmt.Sprintf("expected %d, gateway reported %d", money.ToMinor(order.TotalAmount), v.Transaction.Amount))
	}

	if uc.currency != "" && v.Transaction.Currency != "" && !strings.EqualFold(v.Transaction.Currency, uc.currency) {
		return errors.NewPaymentVerificationError("payment currency does not match",
			fmt.Sprintf("expected %s, gateway reported %s", uc.currency, v.Transaction.Currency))
	}

	return nil
}

// checkStrandedPayment looks for money that moved against an order which can
// no longer be paid, and records it for support.
func (uc *VerifyPaymentUseCase) checkStrandedPayment(ctx context.Context, order *domain.Order, reference string, logger *zap.Logger) {
	v, err := uc.gateway.VerifyTransaction(ctx, reference)
	if err != nil || !v.Succeeded {
		logger.Info("verification rejected for settled order", zap.String("paymentStatus", order.PaymentStatus))
		return
	}

	logger.Error("payment received for an order that cannot be paid",
		zap.Bool("reconciliation_gap", true),
		zap.String("paymentStatus", order.PaymentStatus),
		zap.Int64("amount", v.Transaction.Amount),
	)
	uc.publish(ctx, events.TopicReconciliationGap, order.ID, events.ReconciliationGapPayload{
		OrderID:     order.ID,
		Reference:   reference,
		Amount:      v.Transaction.Amount,
		OrderStatus: order.PaymentStatus,
		Reason:      "payment received for a settled order",
	}, logger)
}

func (uc *VerifyPaymentUseCase) markPaidWithRetry(ctx context.Context, order *domain.Order, reference string, userID string, logger *zap.Logger) (*domain.Order, error) {
	// Backoff intervals: attempt 1 (0ms), attempt 2 (100ms), attempt 3 (200ms)
	backoffs := []time.Duration{0, 100 * time.Millisecond, 200 * time.Millisecond}

	patch := repository.PaymentPatch{
		Status:    domain.PaymentStatusPaid,
		Reference: reference,
		UpdatedAt: uc.now(),
	}

	var lastErr error
	for attempt := 1; attempt <= uc.maxWriteAttempts; attempt++ {
		updated, err := uc.orderRepo.UpdatePaymentStatus(ctx, order.ID, patch, &userID)
		if err == nil {
			return updated, nil
		}
		lastErr = err

		if !isDeadlockError(err) || attempt == uc.maxWriteAttempts {
			break
		}

		base := backoffs[min(attempt, len(backoffs)-1)]
		jitter := time.Duration(float64(base) * (rand.Float64()*0.4 - 0.2))
		logger.Warn("deadlock on order update, retrying", zap.Int("attempt", attempt), zap.Int("maxAttempts", uc.maxWriteAttempts))

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(base + jitter):
		}
	}

	return nil, lastErr
}

func (uc *VerifyPaymentUseCase) publish(ctx context.Context, eventType, orderID string, payload any, logger *zap.Logger) {
	if err := uc.publisher.Publish(ctx, eventType, orderID, payload); err != nil {
		logger.Warn("event not published", zap.String("eventType", eventType), zap.Error(err))
	}
}

func isDeadlockError(err error) bool {
	var mysqlErr *mysql.MySQLError
	if stderrors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1213 || mysqlErr.Number == 1205
	}
	return false
}
