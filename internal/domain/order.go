package domain

import "time"

type Order struct {
	ID                string
	UserID            *string
	PaymentStatus     string
	PaymentReference  *string
	PaymentMethod     string
	DeliveryMethod    string
	DeliveryAddress   *string
	FulfillmentStatus string
	CustomerEmail     string
	CustomerPhone     string
	PromoCode         *string
	DiscountAmount    int64
	TotalAmount       int64
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

const (
	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
	PaymentStatusFailed  = "failed"
)

const (
	PaymentMethodCard        = "card"
	PaymentMethodMobileMoney = "mobile-money"
	PaymentMethodCash        = "cash"
	PaymentMethodPickupPay   = "pickup-pay"
)

const (
	DeliveryMethodHome   = "home"
	DeliveryMethodPickup = "pickup"
)

// IsImmediateSettlement reports whether the payment method goes through the
// hosted gateway at checkout time.
func IsImmediateSettlement(method string) bool {
	return method == PaymentMethodCard || method == PaymentMethodMobileMoney
}

// IsDeferredSettlement reports whether the payment method is collected at
// fulfillment time (cash on delivery, pay in store).
func IsDeferredSettlement(method string) bool {
	return method == PaymentMethodCash || method == PaymentMethodPickupPay
}

func IsValidPaymentMethod(method string) bool {
	return IsImmediateSettlement(method) || IsDeferredSettlement(method)
}

func IsValidDeliveryMethod(method string) bool {
	return method == DeliveryMethodHome || method == DeliveryMethodPickup
}

// CanTransitionPayment enforces the forward-only payment lifecycle:
// pending may become paid or failed, nothing leaves paid or failed.
func CanTransitionPayment(from, to string) bool {
	if from != PaymentStatusPending {
		return false
	}
	return to == PaymentStatusPaid || to == PaymentStatusFailed
}

// OwnedBy reports whether the order belongs to userID. Guest orders have no
// owner and match nobody.
func (o Order) OwnedBy(userID string) bool {
	return o.UserID != nil && userID != "" && *o.UserID == userID
}

// IsPaidWith reports whether the order already reached paid with reference.
func (o Order) IsPaidWith(reference string) bool {
	return o.PaymentStatus == PaymentStatusPaid &&
		o.PaymentReference != nil &&
		*o.PaymentReference == reference
}

// PaymentAttempt is the last gateway reference issued for a pending order.
type PaymentAttempt struct {
	OrderID     string
	Reference   string
	TotalAmount int64
}
