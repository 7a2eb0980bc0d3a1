package checkout

import (
	"errors"
	"fmt"

	"storefront/internal/domain"
	apperrors "storefront/internal/errors"
)

var (
	ErrInvalidPromo     = errors.New("invalid promo code")
	ErrOrderItemsFailed = errors.New("order items could not be saved")
	ErrPaymentCancelled = errors.New("payment cancelled")
	ErrNotPayable       = errors.New("order cannot be paid")
)

// PaymentError reports a payment attempt that did not end with a paid order.
// The order stays pending and can be retried with RetryPayment.
type PaymentError struct {
	Order     *domain.Order
	Reference string
	Err       error
}

func (e *PaymentError) Error() string {
	return fmt.Sprintf("payment for order %s (reference %s): %v", e.Order.ID, e.Reference, e.Err)
}

func (e *PaymentError) Unwrap() error {
	return e.Err
}

// UserMessage turns a checkout error into the text shown to the shopper.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if owe, ok := apperrors.IsOrderWriteError(err); ok {
		return fmt.Sprintf("payment received but order could not be updated; contact support with reference %s", owe.Reference)
	}
	switch {
	case errors.Is(err, ErrPaymentCancelled):
		return "payment cancelled, retry or choose another method"
	case errors.Is(err, ErrInvalidPromo):
		return "invalid promo code"
	case errors.Is(err, ErrOrderItemsFailed):
		return "your order could not be saved, please try again"
	}
	if _, ok := apperrors.IsPaymentVerificationError(err); ok {
		return "we could not confirm your payment, please retry"
	}
	if _, ok := apperrors.IsGatewayUnavailableError(err); ok {
		return "the payment service is unavailable, please retry"
	}
	if ve, ok := apperrors.IsValidationError(err); ok {
		return ve.Message
	}
	if _, ok := apperrors.IsUnauthorizedError(err); ok {
		return "please sign in again"
	}
	return "something went wrong while placing your order"
}
