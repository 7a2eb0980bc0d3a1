package usecase

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/errors"
	"storefront/internal/events"
	"storefront/internal/order/repository"
	"storefront/internal/payment/paystack"
)

const (
	testOrderID   = "6f1c2a9e-0000-4000-8000-000000000001"
	testReference = testOrderID + ".attempt1"
)

func strPtr(s string) *string { return &s }

type mockOrderRepository struct {
	FindByIDFunc            func(ctx context.Context, id string) (*domain.Order, error)
	UpdatePaymentStatusFunc func(ctx context.Context, id string, patch repository.PaymentPatch, scopeUserID *string) (*domain.Order, error)
	updates                 int
}

func (m *mockOrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	return m.FindByIDFunc(ctx, id)
}

func (m *mockOrderRepository) UpdatePaymentStatus(ctx context.Context, id string, patch repository.PaymentPatch, scopeUserID *string) (*domain.Order, error) {
	m.updates++
	return m.UpdatePaymentStatusFunc(ctx, id, patch, scopeUserID)
}

type mockOrderItemRepository struct {
	ListByOrderIDFunc  func(ctx context.Context, orderID string) ([]domain.OrderItem, error)
	CountByOrderIDFunc func(ctx context.Context, orderID string) (int, error)
}

func (m *mockOrderItemRepository) ListByOrderID(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	return m.ListByOrderIDFunc(ctx, orderID)
}

func (m *mockOrderItemRepository) CountByOrderID(ctx context.Context, orderID string) (int, error) {
	if m.CountByOrderIDFunc == nil {
		return 1, nil
	}
	return m.CountByOrderIDFunc(ctx, orderID)
}

type mockGateway struct {
	VerifyTransactionFunc func(ctx context.Context, reference string) (*paystack.Verification, error)
	calls                 int
}

func (m *mockGateway) VerifyTransaction(ctx context.Context, reference string) (*paystack.Verification, error) {
	m.calls++
	return m.VerifyTransactionFunc(ctx, reference)
}

func pendingOrder() *domain.Order {
	return &domain.Order{
		ID:            testOrderID,
		UserID:        strPtr("user-1"),
		PaymentStatus: domain.PaymentStatusPending,
		PaymentMethod: domain.PaymentMethodCard,
		TotalAmount:   36000,
	}
}

func successfulVerification(amount int64) *paystack.Verification {
	return &paystack.Verification{
		Succeeded: true,
		Message:   "Verification successful",
		Transaction: paystack.Transaction{
			Status:    paystack.StatusSuccess,
			Reference: testReference,
			Amount:    amount,
			Currency:  "XOF",
		},
		Raw: json.RawMessage(`{"status":"success","amount":3600000}`),
	}
}

type verifyFixture struct {
	orders    *mockOrderRepository
	items     *mockOrderItemRepository
	gateway   *mockGateway
	publisher *events.Recorder
	uc        *VerifyPaymentUseCase
	stored    *domain.Order
}

func newVerifyFixture(order *domain.Order) *verifyFixture {
	f := &verifyFixture{stored: order, publisher: &events.Recorder{}}
	f.orders = &mockOrderRepository{
		FindByIDFunc: func(ctx context.Context, id string) (*domain.Order, error) {
			if f.stored == nil || f.stored.ID != id {
				return nil, errors.NewNotFoundError("order with id " + id + " not found")
			}
			o := *f.stored
			return &o, nil
		},
		UpdatePaymentStatusFunc: func(ctx context.Context, id string, patch repository.PaymentPatch, scopeUserID *string) (*domain.Order, error) {
			if f.stored.PaymentStatus != domain.PaymentStatusPending && !f.stored.IsPaidWith(patch.Reference) {
				return nil, errors.NewConflictError("order is already " + f.stored.PaymentStatus)
			}
			f.stored.PaymentStatus = patch.Status
			f.stored.PaymentReference = strPtr(patch.Reference)
			f.stored.UpdatedAt = patch.UpdatedAt
			o := *f.stored
			return &o, nil
		},
	}
	f.items = &mockOrderItemRepository{ListByOrderIDFunc: func(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
		return []domain.OrderItem{{OrderID: orderID, ProductID: "wax-print-6y", ProductPrice: 18000, Quantity: 1}}, nil
	}}
	f.gateway = &mockGateway{VerifyTransactionFunc: func(ctx context.Context, reference string) (*paystack.Verification, error) {
		return successfulVerification(3600000), nil
	}}
	f.uc = NewVerifyPaymentUseCase(f.orders, f.items, f.gateway, f.publisher, "XOF", zap.NewNop())
	return f
}

var session = &domain.Session{UserID: "user-1", Email: "awa@example.com"}

func TestVerify_Success(t *testing.T) {
	f := newVerifyFixture(pendingOrder())

	res, err := f.uc.Verify(context.Background(), VerifyInput{Reference: testReference, OrderID: testOrderID}, session)
	require.NoError(t, err)

	assert.Equal(t, domain.PaymentStatusPaid, res.Order.PaymentStatus)
	assert.Equal(t, testReference, *res.Order.PaymentReference)
	assert.JSONEq(t, `{"status":"success","amount":3600000}`, string(res.Payment))
	assert.Len(t, res.Items, 1)
	assert.Equal(t, []string{events.TopicPaymentVerified}, f.publisher.Types())
}

func TestVerify_IdempotentReplay(t *testing.T) {
	f := newVerifyFixture(pendingOrder())
	in := VerifyInput{Reference: testReference, OrderID: testOrderID}

	first, err := f.uc.Verify(context.Background(), in, session)
	require.NoError(t, err)
	second, err := f.uc.Verify(context.Background(), in, session)
	require.NoError(t, err)

	assert.Equal(t, first.Order.PaymentStatus, second.Order.PaymentStatus)
	assert.Equal(t, *first.Order.PaymentReference, *second.Order.PaymentReference)
	assert.Equal(t, domain.PaymentStatusPaid, f.stored.PaymentStatus)
}

func TestVerify_Unauthorized(t *testing.T) {
	f := newVerifyFixture(pendingOrder())

	for _, s := range []*domain.Session{nil, {UserID: " "}} {
		_, err := f.uc.Verify(context.Background(), VerifyInput{Reference: testReference, OrderID: testOrderID}, s)

		_, ok := errors.IsUnauthorizedError(err)
		assert.True(t, ok)
	}
	assert.Equal(t, 0, f.gateway.calls)
}

func TestVerify_MissingFields(t *testing.T) {
	f := newVerifyFixture(pendingOrder())

	_, err := f.uc.Verify(context.Background(), VerifyInput{Reference: "", OrderID: " "}, session)

	ve, ok := errors.IsValidationError(err)
	require.True(t, ok)
	assert.Len(t, ve.Details, 2)
	assert.Equal(t, 0, f.gateway.calls)
}

func TestVerify_ReferenceForAnotherOrder(t *testing.T) {
	f := newVerifyFixture(pendingOrder())

	_, err := f.uc.Verify(context.Background(), VerifyInput{
		Reference: "6f1c2a9e-0000-4000-8000-000000000002.attempt1",
		OrderID:   testOrderID,
	}, session)

	_, ok := errors.IsValidationError(err)
	assert.True(t, ok)
	assert.Equal(t, 0, f.gateway.calls)
	assert.Equal(t, 0, f.orders.updates)
}

func TestVerify_OrderNotFound(t *testing.T) {
	f := newVerifyFixture(nil)

	_, err := f.uc.Verify(context.Background(), VerifyInput{Reference: testReference, OrderID: testOrderID}, session)

	_, ok := errors.IsNotFoundError(err)
	assert.True(t, ok)
	assert.Equal(t, 0, f.gateway.calls)
}

func TestVerify_AnotherUsersOrder(t *testing.T) {
	order := pendingOrder()
	order.UserID = strPtr("user-2")
	f := newVerifyFixture(order)

	_, err := f.uc.Verify(context.Background(), VerifyInput{Reference: testReference, OrderID: testOrderID}, session)

	_, ok := errors.IsNotFoundError(err)
	assert.True(t, ok)
	assert.Equal(t, 0, f.orders.updates)
	assert.Equal(t, domain.PaymentStatusPending, f.stored.PaymentStatus)
}

func TestVerify_Abandoned(t *testing.T) {
	f := newVerifyFixture(pendingOrder())
	f.gateway.VerifyTransactionFunc = func(ctx context.Context, reference string) (*paystack.Verification, error) {
		return &paystack.Verification{
			Succeeded:   false,
			Message:     "Verification successful",
			Transaction: paystack.Transaction{Status: "abandoned", GatewayResponse: "The transaction was not completed"},
		}, nil
	}

	_, err := f.uc.Verify(context.Background(), VerifyInput{Reference: testReference, OrderID: testOrderID}, session)

	pve, ok := errors.IsPaymentVerificationError(err)
	require.True(t, ok)
	assert.Equal(t, "The transaction was not completed", pve.GatewayMessage)
	assert.Equal(t, 0, f.orders.updates)
	assert.Equal(t, domain.PaymentStatusPending, f.stored.PaymentStatus)
}

func TestVerify_AmountMismatch(t *testing.T) {
	f := newVerifyFixture(pendingOrder())
	f.gateway.VerifyTransactionFunc = func(ctx context.Context, reference string) (*paystack.Verification, error) {
		return successfulVerification(100), nil
	}

	_, err := f.uc.Verify(context.Background(), VerifyInput{Reference: testReference, OrderID: testOrderID}, session)

	pve, ok := errors.IsPaymentVerificationError(err)
	require.True(t, ok)
	assert.Equal(t, "payment amount does not match order total", pve.Message)
	assert.Equal(t, 0, f.orders.updates)
}

func TestVerify_CurrencyMismatch(t *testing.T) {
	f := newVerifyFixture(pendingOrder())
	f.gateway.VerifyTransactionFunc = func(ctx context.Context, reference string) (*paystack.Verification, error) {
		v := successfulVerification(3600000)
		v.Transaction.Currency = "NGN"
		return v, nil
	}

	_, err := f.uc.Verify(context.Background(), VerifyInput{Reference: testReference, OrderID: testOrderID}, session)

	_, ok := errors.IsPaymentVerificationError(err)
	assert.True(t, ok)
}

func TestVerify_GatewayUnavailable(t *testing.T) {
	f := newVerifyFixture(pendingOrder())
	f.gateway.VerifyTransactionFunc = func(ctx context.Context, reference string) (*paystack.Verification, error) {
		return nil, errors.NewGatewayUnavailableError("payment gateway unreachable", stderrors.New("dial tcp: timeout"))
	}

	_, err := f.uc.Verify(context.Background(), VerifyInput{Reference: testReference, OrderID: testOrderID}, session)

	_, ok := errors.IsGatewayUnavailableError(err)
	assert.True(t, ok)
	assert.True(t, errors.IsRetryable(err))
	assert.Equal(t, 0, f.orders.updates)
}

func TestVerify_AlreadyPaidWithOtherReference(t *testing.T) {
	order := pendingOrder()
	order.PaymentStatus = domain.PaymentStatusPaid
	order.PaymentReference = strPtr(testOrderID + ".attempt0")
	f := newVerifyFixture(order)

	_, err := f.uc.Verify(context.Background(), VerifyInput{Reference: testReference, OrderID: testOrderID}, session)

	_, ok := errors.IsConflictError(err)
	require.True(t, ok)
	assert.Equal(t, 0, f.orders.updates)
	assert.Equal(t, testOrderID+".attempt0", *f.stored.PaymentReference)
	assert.Equal(t, []string{events.TopicReconciliationGap}, f.publisher.Types())
}

func TestVerify_FailedOrder(t *testing.T) {
	order := pendingOrder()
	order.PaymentStatus = domain.PaymentStatusFailed
	f := newVerifyFixture(order)
	f.gateway.VerifyTransactionFunc = func(ctx context.Context, reference string) (*paystack.Verification, error) {
		return &paystack.Verification{Succeeded: false}, nil
	}

	_, err := f.uc.Verify(context.Background(), VerifyInput{Reference: testReference, OrderID: testOrderID}, session)

	_, ok := errors.IsConflictError(err)
	require.True(t, ok)
	assert.Empty(t, f.publisher.Events)
	assert.Equal(t, domain.PaymentStatusFailed, f.stored.PaymentStatus)
}

func TestVerify_OrderWriteFailed(t *testing.T) {
	f := newVerifyFixture(pendingOrder())
	f.orders.UpdatePaymentStatusFunc = func(ctx context.Context, id string, patch repository.PaymentPatch, scopeUserID *string) (*domain.Order, error) {
		return nil, stderrors.New("connection reset")
	}

	_, err := f.uc.Verify(context.Background(), VerifyInput{Reference: testReference, OrderID: testOrderID}, session)

	owe, ok := errors.IsOrderWriteError(err)
	require.True(t, ok)
	assert.Equal(t, testReference, owe.Reference)
	assert.Equal(t, testOrderID, owe.OrderID)
	assert.Equal(t, 1, f.orders.updates)
	assert.Equal(t, []string{events.TopicReconciliationGap}, f.publisher.Types())
}

func TestVerify_DeadlockRetried(t *testing.T) {
	f := newVerifyFixture(pendingOrder())
	succeed := f.orders.UpdatePaymentStatusFunc
	f.orders.UpdatePaymentStatusFunc = func(ctx context.Context, id string, patch repository.PaymentPatch, scopeUserID *string) (*domain.Order, error) {
		if f.orders.updates == 1 {
			return nil, &mysql.MySQLError{Number: 1213, Message: "Deadlock found"}
		}
		return succeed(ctx, id, patch, scopeUserID)
	}

	res, err := f.uc.Verify(context.Background(), VerifyInput{Reference: testReference, OrderID: testOrderID}, session)
	require.NoError(t, err)

	assert.Equal(t, domain.PaymentStatusPaid, res.Order.PaymentStatus)
	assert.Equal(t, 2, f.orders.updates)
}

func TestVerify_ScopesUpdateToCaller(t *testing.T) {
	f := newVerifyFixture(pendingOrder())
	succeed := f.orders.UpdatePaymentStatusFunc
	f.orders.UpdatePaymentStatusFunc = func(ctx context.Context, id string, patch repository.PaymentPatch, scopeUserID *string) (*domain.Order, error) {
		require.NotNil(t, scopeUserID)
		assert.Equal(t, "user-1", *scopeUserID)
		assert.Equal(t, domain.PaymentStatusPaid, patch.Status)
		return succeed(ctx, id, patch, scopeUserID)
	}

	_, err := f.uc.Verify(context.Background(), VerifyInput{Reference: testReference, OrderID: testOrderID}, session)
	require.NoError(t, err)
}

func TestVerify_GuestOrderIsNotFound(t *testing.T) {
	guest := pendingOrder()
	guest.UserID = nil
	guest.PaymentMethod = domain.PaymentMethodCash
	guest.CustomerEmail = "guest@example.com"
	f := newVerifyFixture(guest)
	stranger := &domain.Session{UserID: "user-2", Email: "kofi@example.com"}

	res, err := f.uc.Verify(context.Background(), VerifyInput{Reference: testReference, OrderID: testOrderID}, stranger)

	assert.Nil(t, res)
	_, ok := errors.IsNotFoundError(err)
	assert.True(t, ok)
	assert.Equal(t, 0, f.gateway.calls)
	assert.Equal(t, 0, f.orders.updates)
	assert.Equal(t, domain.PaymentStatusPending, f.stored.PaymentStatus)
}

func TestVerify_PaidGuestOrderDoesNotRevealStatus(t *testing.T) {
	guest := pendingOrder()
	guest.UserID = nil
	guest.PaymentStatus = domain.PaymentStatusPaid
	guest.PaymentReference = strPtr(testOrderID + ".other")
	f := newVerifyFixture(guest)

	_, err := f.uc.Verify(context.Background(), VerifyInput{Reference: testReference, OrderID: testOrderID}, session)

	_, ok := errors.IsNotFoundError(err)
	assert.True(t, ok)
	assert.Empty(t, f.publisher.Types())
}

func TestVerify_DeferredSettlementOrderRejected(t *testing.T) {
	order := pendingOrder()
	order.PaymentMethod = domain.PaymentMethodPickupPay
	f := newVerifyFixture(order)

	_, err := f.uc.Verify(context.Background(), VerifyInput{Reference: testReference, OrderID: testOrderID}, session)

	_, ok := errors.IsConflictError(err)
	assert.True(t, ok)
	assert.Equal(t, 0, f.gateway.calls)
	assert.Equal(t, domain.PaymentStatusPending, f.stored.PaymentStatus)
}

func TestVerify_OrderWithoutItemsRejected(t *testing.T) {
	f := newVerifyFixture(pendingOrder())
	f.items.CountByOrderIDFunc = func(ctx context.Context, orderID string) (int, error) {
		return 0, nil
	}

	_, err := f.uc.Verify(context.Background(), VerifyInput{Reference: testReference, OrderID: testOrderID}, session)

	ce, ok := errors.IsConflictError(err)
	require.True(t, ok)
	assert.Equal(t, "order has no items", ce.Message)
	assert.Equal(t, 0, f.gateway.calls)
}

func TestVerify_FractionalAmountRejected(t *testing.T) {
	f := newVerifyFixture(pendingOrder())
	f.gateway.VerifyTransactionFunc = func(ctx context.Context, reference string) (*paystack.Verification, error) {
		return successfulVerification(3600050), nil
	}

	_, err := f.uc.Verify(context.Background(), VerifyInput{Reference: testReference, OrderID: testOrderID}, session)

	pve, ok := errors.IsPaymentVerificationError(err)
	require.True(t, ok)
	assert.Equal(t, "payment amount does not match order total", pve.Message)
	assert.Equal(t, 0, f.orders.updates)
}
