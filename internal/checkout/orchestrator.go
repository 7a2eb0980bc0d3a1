// Package checkout turns a cart into an order and, for card and mobile-money
// payments, drives the gateway session through to server-side verification.
//
// The cart is cleared only once the order is paid, or placed with a method
// settled on delivery. Every other exit leaves it untouched.
package checkout

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"storefront/internal/domain"
	apperrors "storefront/internal/errors"
	"storefront/internal/events"
	"storefront/internal/money"
)

type Outcome string

const (
	OutcomePaid   Outcome = "paid"
	OutcomePlaced Outcome = "placed"
)

type Contact struct {
	Email string
	Phone string
}

type Request struct {
	Contact         Contact
	DeliveryMethod  string
	DeliveryAddress string
	PaymentMethod   string
	PromoCode       string
}

type Result struct {
	Order     *domain.Order
	Items     []domain.OrderItem
	Outcome   Outcome
	Reference string
	Payment   json.RawMessage
}

type Deps struct {
	Orders    OrderStore
	Items     ItemStore
	Promos    PromoLookup
	Cart      Cart
	Popup     Popup
	Verifier  Verifier
	Publisher events.Publisher
	Currency  string
	Logger    *zap.Logger
}

type Orchestrator struct {
	orders     OrderStore
	items      ItemStore
	promos     PromoLookup
	cart       Cart
	popup      Popup
	verifier   Verifier
	publisher  events.Publisher
	currency   string
	logger     *zap.Logger
	newAttempt func() string
}

func NewOrchestrator(d Deps) *Orchestrator {
	publisher := d.Publisher
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &Orchestrator{
		orders:    d.Orders,
		items:     d.Items,
		promos:    d.Promos,
		cart:      d.Cart,
		popup:     d.Popup,
		verifier:  d.Verifier,
		publisher: publisher,
		currency:  d.Currency,
		logger:    d.Logger,
		newAttempt: func() string {
			return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
		},
	}
}

// InitiateCheckout places an order for the current cart. session may be nil
// for guests, who must then provide contact details and pay on delivery.
func (o *Orchestrator) InitiateCheckout(ctx context.Context, session *domain.Session, req Request) (*Result, error) {
	cartItems := o.cart.Items()
	if err := validate(session, req, len(cartItems)); err != nil {
		return nil, err
	}

	snapshots := make([]domain.OrderItem, 0, len(cartItems))
	for _, it := range cartItems {
		snapshot := domain.OrderItem{
			ProductID:    it.ProductID,
			ProductName:  it.Name,
			ProductPrice: it.Price,
			Quantity:     it.Quantity,
		}
		if it.VendorID != "" {
			vendorID := it.VendorID
			snapshot.VendorID = &vendorID
		}
		snapshots = append(snapshots, snapshot)
	}
	subtotal := domain.Subtotal(snapshots)

	order := domain.Order{
		PaymentMethod:  req.PaymentMethod,
		DeliveryMethod: req.DeliveryMethod,
		CustomerEmail:  strings.TrimSpace(req.Contact.Email),
		CustomerPhone:  strings.TrimSpace(req.Contact.Phone),
		TotalAmount:    subtotal,
	}
	if session != nil {
		userID := session.UserID
		order.UserID = &userID
		if order.CustomerEmail == "" {
			order.CustomerEmail = session.Email
		}
	}
	if req.DeliveryMethod == domain.DeliveryMethodHome {
		addr := strings.TrimSpace(req.DeliveryAddress)
		order.DeliveryAddress = &addr
	}

	if code := strings.TrimSpace(req.PromoCode); code != "" {
		promo, err := o.promos.FindActive(ctx, code)
		if err != nil {
			if _, ok := apperrors.IsNotFoundError(err); ok {
				return nil, ErrInvalidPromo
			}
			return nil, fmt.Errorf("looking up promo code: %w", err)
		}
		normalized := promo.Code
		order.PromoCode = &normalized
		order.DiscountAmount = money.PercentageOf(subtotal, promo.DiscountPercentage)
		order.TotalAmount = subtotal - order.DiscountAmount
	}
	if order.TotalAmount <= 0 {
		return nil, apperrors.NewValidationError("order total must be positive",
			apperrors.ValidationDetail{Field: "totalAmount", Message: "order total must be positive"})
	}

	created, err := o.orders.Insert(ctx, order)
	if err != nil {
		return nil, fmt.Errorf("creating order: %w", err)
	}
	logger := o.logger.With(zap.String("order_id", created.ID))

	if err := o.items.InsertBatch(ctx, created.ID, snapshots); err != nil {
		logger.Error("order items insert failed, order left without items", zap.Error(err))
		return nil, fmt.Errorf("order %s: %w: %w", created.ID, ErrOrderItemsFailed, err)
	}

	if err := o.publisher.Publish(ctx, events.TopicOrderPlaced, created.ID, events.OrderPlacedPayload{
		OrderID:       created.ID,
		UserID:        derefString(created.UserID),
		PaymentMethod: created.PaymentMethod,
		TotalAmount:   created.TotalAmount,
		ItemCount:     len(snapshots),
	}); err != nil {
		logger.Warn("order.placed event not published", zap.Error(err))
	}

	if domain.IsDeferredSettlement(created.PaymentMethod) {
		o.clearCart(ctx, logger)
		logger.Info("order placed, payment on delivery", zap.String("payment_method", created.PaymentMethod))
		return &Result{Order: created, Items: snapshots, Outcome: OutcomePlaced}, nil
	}

	res, err := o.pay(ctx, created, logger)
	if err != nil {
		return nil, err
	}
	res.Items = snapshots
	return res, nil
}

// RetryPayment reopens the gateway for a pending order with a fresh reference.
func (o *Orchestrator) RetryPayment(ctx context.Context, order *domain.Order) (*Result, error) {
	if order == nil {
		return nil, apperrors.NewValidationError("order is required")
	}
	if order.PaymentStatus != domain.PaymentStatusPending || !domain.IsImmediateSettlement(order.PaymentMethod) {
		return nil, fmt.Errorf("order %s is %s via %s: %w", order.ID, order.PaymentStatus, order.PaymentMethod, ErrNotPayable)
	}

	return o.pay(ctx, order, o.logger.With(zap.String("order_id", order.ID)))
}

func (o *Orchestrator) pay(ctx context.Context, order *domain.Order, logger *zap.Logger) (*Result, error) {
	reference := domain.NewPaymentReference(order.ID, o.newAttempt())
	logger = logger.With(zap.String("reference", reference))

	if err := o.orders.RecordAttempt(ctx, order.ID, reference); err != nil {
		logger.Error("payment attempt could not be recorded", zap.Error(err))
		return nil, &PaymentError{Order: order, Reference: reference, Err: err}
	}

	outcome, err := o.popup.Open(ctx, OpenRequest{
		Reference: reference,
		Amount:    money.ToMinor(order.TotalAmount),
		Currency:  o.currency,
		Email:     order.CustomerEmail,
		Metadata: map[string]string{
			"order_id":       order.ID,
			"customer_phone": order.CustomerPhone,
		},
	})
	if err != nil {
		logger.Warn("payment gateway could not be opened", zap.Error(err))
		if _, ok := apperrors.IsGatewayUnavailableError(err); !ok {
			err = apperrors.NewGatewayUnavailableError("opening payment gateway", err)
		}
		return nil, &PaymentError{Order: order, Reference: reference, Err: err}
	}

	if outcome.Cancelled {
		logger.Info("payment cancelled by shopper")
		return nil, &PaymentError{Order: order, Reference: reference, Err: ErrPaymentCancelled}
	}
	if outcome.Reference != "" {
		reference = outcome.Reference
	}

	verified, err := o.verifier.Verify(ctx, reference, order.ID)
	if err != nil {
		if owe, ok := apperrors.IsOrderWriteError(err); ok {
			logger.Error("payment confirmed but order not updated",
				zap.Bool("reconciliation_gap", true),
				zap.String("gateway_reference", owe.Reference),
				zap.Error(err),
			)
		} else {
			logger.Warn("payment verification failed", zap.Error(err))
		}
		return nil, &PaymentError{Order: order, Reference: reference, Err: err}
	}

	o.clearCart(ctx, logger)
	paid := verified.Order
	logger.Info("order paid")

	return &Result{Order: &paid, Outcome: OutcomePaid, Reference: reference, Payment: verified.Payment}, nil
}

func (o *Orchestrator) clearCart(ctx context.Context, logger *zap.Logger) {
	if err := o.cart.Clear(ctx); err != nil {
		logger.Error("order completed but cart could not be cleared", zap.Error(err))
	}
}

func validate(session *domain.Session, req Request, itemCount int) error {
	var details []apperrors.ValidationDetail

	if itemCount == 0 {
		details = append(details, apperrors.ValidationDetail{Field: "cart", Message: "cart is empty"})
	}
	if session == nil {
		if strings.TrimSpace(req.Contact.Email) == "" {
			details = append(details, apperrors.ValidationDetail{Field: "email", Message: "email is required for guest checkout"})
		}
		if strings.TrimSpace(req.Contact.Phone) == "" {
			details = append(details, apperrors.ValidationDetail{Field: "phone", Message: "phone is required for guest checkout"})
		}
		if domain.IsImmediateSettlement(req.PaymentMethod) {
			details = append(details, apperrors.ValidationDetail{Field: "paymentMethod", Message: "sign in to pay online"})
		}
	}
	if !domain.IsValidDeliveryMethod(req.DeliveryMethod) {
		details = append(details, apperrors.ValidationDetail{Field: "deliveryMethod", Message: "unknown delivery method"})
	} else if req.DeliveryMethod == domain.DeliveryMethodHome && strings.TrimSpace(req.DeliveryAddress) == "" {
		details = append(details, apperrors.ValidationDetail{Field: "deliveryAddress", Message: "delivery address is required for home delivery"})
	}
	if !domain.IsValidPaymentMethod(req.PaymentMethod) {
		details = append(details, apperrors.ValidationDetail{Field: "paymentMethod", Message: "unknown payment method"})
	}

	if len(details) > 0 {
		return apperrors.NewValidationError(details[0].Message, details...)
	}
	return nil
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// IsRetryable reports whether the shopper can try paying the same order again.
func IsRetryable(err error) bool {
	var pe *PaymentError
	if !stderrors.As(err, &pe) {
		return false
	}
	if stderrors.Is(err, ErrPaymentCancelled) {
		return true
	}
	return apperrors.IsRetryable(err)
}
