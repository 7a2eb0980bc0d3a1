package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/errors"
	"storefront/internal/order/repository"
)

type mockOrderReader struct {
	FindByIDFunc   func(ctx context.Context, id string) (*domain.Order, error)
	ListByUserFunc func(ctx context.Context, userID string, limit int) ([]domain.Order, error)
}

func (m *mockOrderReader) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	return m.FindByIDFunc(ctx, id)
}

func (m *mockOrderReader) ListByUser(ctx context.Context, userID string, limit int) ([]domain.Order, error) {
	return m.ListByUserFunc(ctx, userID, limit)
}

func newQueryUseCase(orders map[string]domain.Order) *OrderQueryUseCase {
	reader := &mockOrderReader{
		FindByIDFunc: func(ctx context.Context, id string) (*domain.Order, error) {
			o, ok := orders[id]
			if !ok {
				return nil, errors.NewNotFoundError("order not found")
			}
			return &o, nil
		},
		ListByUserFunc: func(ctx context.Context, userID string, limit int) ([]domain.Order, error) {
			var out []domain.Order
			for _, o := range orders {
				if o.UserID != nil && *o.UserID == userID {
					out = append(out, o)
				}
			}
			return out, nil
		},
	}
	items := &mockOrderItemRepository{ListByOrderIDFunc: func(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
		return []domain.OrderItem{
			{OrderID: orderID, ProductName: "Wax print", ProductPrice: 18000, Quantity: 1},
			{OrderID: orderID, ProductName: "Shea butter", ProductPrice: 9000, Quantity: 2},
		}, nil
	}}
	return NewOrderQueryUseCase(reader, items, zap.NewNop())
}

func TestOrderQuery_ListMine(t *testing.T) {
	uc := newQueryUseCase(map[string]domain.Order{
		"o1": {ID: "o1", UserID: strPtr("user-1")},
		"o2": {ID: "o2", UserID: strPtr("user-2")},
	})

	orders, err := uc.ListMine(context.Background(), session, 20)
	require.NoError(t, err)

	require.Len(t, orders, 1)
	assert.Equal(t, "o1", orders[0].Order.ID)
	assert.Len(t, orders[0].Items, 2)
}

func TestOrderQuery_GetMine_OtherUser(t *testing.T) {
	uc := newQueryUseCase(map[string]domain.Order{
		"o2": {ID: "o2", UserID: strPtr("user-2")},
		"g1": {ID: "g1"},
	})

	for _, id := range []string{"o2", "g1", "missing"} {
		_, err := uc.GetMine(context.Background(), session, id)
		_, ok := errors.IsNotFoundError(err)
		assert.True(t, ok, id)
	}
}

func TestOrderQuery_RequiresSession(t *testing.T) {
	uc := newQueryUseCase(nil)

	_, err := uc.ListMine(context.Background(), nil, 0)
	_, ok := errors.IsUnauthorizedError(err)
	assert.True(t, ok)
}

func TestInvoice_Render(t *testing.T) {
	uc := NewInvoiceUseCase(newQueryUseCase(map[string]domain.Order{
		"6f1c2a9e-aaaa": {
			ID:             "6f1c2a9e-aaaa",
			UserID:         strPtr("user-1"),
			CustomerEmail:  "awa@example.com",
			PaymentMethod:  domain.PaymentMethodCard,
			PaymentStatus:  domain.PaymentStatusPaid,
			PromoCode:      strPtr("WELCOME10"),
			DiscountAmount: 3600,
			TotalAmount:    32400,
			CreatedAt:      time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC),
		},
	}), "XOF")

	html, err := uc.Render(context.Background(), session, "6f1c2a9e-aaaa")
	require.NoError(t, err)

	body := string(html)
	assert.Contains(t, body, "Invoice #6f1c2a9e")
	assert.Contains(t, body, "14/03/2026")
	assert.Contains(t, body, "36 000 XOF")
	assert.Contains(t, body, "WELCOME10")
	assert.Contains(t, body, "32 400 XOF")
}

func TestInvoice_EscapesCustomerInput(t *testing.T) {
	html, err := RenderInvoice(domain.Order{ID: "o1", CustomerEmail: "<script>x</script>"}, nil, "XOF")
	require.NoError(t, err)

	assert.NotContains(t, string(html), "<script>x</script>")
}

type mockAdminOrderRepository struct {
	FindByIDFunc                func(ctx context.Context, id string) (*domain.Order, error)
	ListFunc                    func(ctx context.Context, f repository.ListFilter) ([]domain.Order, error)
	UpdateFulfillmentStatusFunc func(ctx context.Context, id string, from string, to string) error
}

func (m *mockAdminOrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	return m.FindByIDFunc(ctx, id)
}

func (m *mockAdminOrderRepository) List(ctx context.Context, f repository.ListFilter) ([]domain.Order, error) {
	return m.ListFunc(ctx, f)
}

func (m *mockAdminOrderRepository) UpdateFulfillmentStatus(ctx context.Context, id string, from string, to string) error {
	return m.UpdateFulfillmentStatusFunc(ctx, id, from, to)
}

type mockRoleRepository struct {
	HasRoleFunc func(ctx context.Context, userID string, role string) (bool, error)
}

func (m *mockRoleRepository) HasRole(ctx context.Context, userID string, role string) (bool, error) {
	return m.HasRoleFunc(ctx, userID, role)
}

func newAdminUseCase(isAdmin bool, order *domain.Order) *AdminOrdersUseCase {
	repo := &mockAdminOrderRepository{
		FindByIDFunc: func(ctx context.Context, id string) (*domain.Order, error) {
			o := *order
			return &o, nil
		},
		ListFunc: func(ctx context.Context, f repository.ListFilter) ([]domain.Order, error) {
			return []domain.Order{*order}, nil
		},
		UpdateFulfillmentStatusFunc: func(ctx context.Context, id string, from string, to string) error {
			if order.FulfillmentStatus != from {
				return errors.NewConflictError("changed concurrently")
			}
			order.FulfillmentStatus = to
			return nil
		},
	}
	roles := &mockRoleRepository{HasRoleFunc: func(ctx context.Context, userID string, role string) (bool, error) {
		return isAdmin && role == domain.RoleAdmin, nil
	}}
	return NewAdminOrdersUseCase(repo, roles, zap.NewNop())
}

func TestAdmin_List(t *testing.T) {
	uc := newAdminUseCase(true, &domain.Order{ID: "o1", PaymentStatus: domain.PaymentStatusPaid})

	orders, err := uc.List(context.Background(), session, repository.ListFilter{PaymentStatus: domain.PaymentStatusPaid})
	require.NoError(t, err)
	assert.Len(t, orders, 1)

	_, err = uc.List(context.Background(), session, repository.ListFilter{PaymentStatus: "refunded"})
	_, ok := errors.IsValidationError(err)
	assert.True(t, ok)
}

func TestAdmin_RequiresAdminRole(t *testing.T) {
	uc := newAdminUseCase(false, &domain.Order{ID: "o1"})

	_, err := uc.List(context.Background(), session, repository.ListFilter{})
	_, ok := errors.IsForbiddenError(err)
	assert.True(t, ok)

	_, err = uc.List(context.Background(), nil, repository.ListFilter{})
	_, ok = errors.IsUnauthorizedError(err)
	assert.True(t, ok)
}

func TestAdmin_AdvanceFulfillment(t *testing.T) {
	order := &domain.Order{ID: "o1", FulfillmentStatus: domain.FulfillmentPending, PaymentStatus: domain.PaymentStatusPaid}
	uc := newAdminUseCase(true, order)

	updated, err := uc.AdvanceFulfillment(context.Background(), session, "o1", domain.FulfillmentShipped)
	require.NoError(t, err)
	assert.Equal(t, domain.FulfillmentShipped, updated.FulfillmentStatus)
	assert.Equal(t, domain.PaymentStatusPaid, updated.PaymentStatus)

	_, err = uc.AdvanceFulfillment(context.Background(), session, "o1", domain.FulfillmentConfirmed)
	_, ok := errors.IsConflictError(err)
	assert.True(t, ok)

	_, err = uc.AdvanceFulfillment(context.Background(), session, "o1", "lost")
	_, ok = errors.IsValidationError(err)
	assert.True(t, ok)
}
