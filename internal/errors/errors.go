package errors

import (
	stderrors "errors"
	"fmt"
)

type ValidationDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ValidationError struct {
	Message string
	Details []ValidationDetail
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(message string, details ...ValidationDetail) *ValidationError {
	return &ValidationError{
		Message: message,
		Details: details,
	}
}

func IsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if stderrors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

type UnauthorizedError struct {
	Message string
}

func (e *UnauthorizedError) Error() string {
	return e.Message
}

func NewUnauthorizedError(message string) *UnauthorizedError {
	return &UnauthorizedError{Message: message}
}

func IsUnauthorizedError(err error) (*UnauthorizedError, bool) {
	var ue *UnauthorizedError
	if stderrors.As(err, &ue) {
		return ue, true
	}
	return nil, false
}

type ForbiddenError struct {
	Message string
}

func (e *ForbiddenError) Error() string {
	return e.Message
}

func NewForbiddenError(message string) *ForbiddenError {
	return &ForbiddenError{Message: message}
}

func IsForbiddenError(err error) (*ForbiddenError, bool) {
	var fe *ForbiddenError
	if stderrors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string {
	return e.Message
}

func NewNotFoundError(message string) *NotFoundError {
	return &NotFoundError{Message: message}
}

func IsNotFoundError(err error) (*NotFoundError, bool) {
	var nfe *NotFoundError
	if stderrors.As(err, &nfe) {
		return nfe, true
	}
	return nil, false
}

type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

func NewConflictError(message string) *ConflictError {
	return &ConflictError{Message: message}
}

func IsConflictError(err error) (*ConflictError, bool) {
	var ce *ConflictError
	if stderrors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// PaymentVerificationError means the gateway answered but did not confirm a
// successful transaction. GatewayMessage carries the gateway's own wording.
type PaymentVerificationError struct {
	Message        string
	GatewayMessage string
}

func (e *PaymentVerificationError) Error() string {
	if e.GatewayMessage != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.GatewayMessage)
	}
	return e.Message
}

func NewPaymentVerificationError(message string, gatewayMessage string) *PaymentVerificationError {
	return &PaymentVerificationError{
		Message:        message,
		GatewayMessage: gatewayMessage,
	}
}

func IsPaymentVerificationError(err error) (*PaymentVerificationError, bool) {
	var pve *PaymentVerificationError
	if stderrors.As(err, &pve) {
		return pve, true
	}
	return nil, false
}

// GatewayUnavailableError covers network failures, gateway 5xx responses and
// missing gateway configuration. Callers may retry.
type GatewayUnavailableError struct {
	Message string
	Cause   error
}

func (e *GatewayUnavailableError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *GatewayUnavailableError) Unwrap() error {
	return e.Cause
}

func NewGatewayUnavailableError(message string, cause error) *GatewayUnavailableError {
	return &GatewayUnavailableError{
		Message: message,
		Cause:   cause,
	}
}

func IsGatewayUnavailableError(err error) (*GatewayUnavailableError, bool) {
	var gue *GatewayUnavailableError
	if stderrors.As(err, &gue) {
		return gue, true
	}
	return nil, false
}

// OrderWriteError is raised when the gateway confirmed a payment but the order
// row could not be marked paid. Reference is kept for manual reconciliation.
type OrderWriteError struct {
	OrderID   string
	Reference string
	Cause     error
}

func (e *OrderWriteError) Error() string {
	return fmt.Sprintf("order %s not updated after payment %s: %v", e.OrderID, e.Reference, e.Cause)
}

func (e *OrderWriteError) Unwrap() error {
	return e.Cause
}

func NewOrderWriteError(orderID string, reference string, cause error) *OrderWriteError {
	return &OrderWriteError{
		OrderID:   orderID,
		Reference: reference,
		Cause:     cause,
	}
}

func IsOrderWriteError(err error) (*OrderWriteError, bool) {
	var owe *OrderWriteError
	if stderrors.As(err, &owe) {
		return owe, true
	}
	return nil, false
}

type InternalError struct {
	Message string
	Cause   error
}

func (e *InternalError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *InternalError) Unwrap() error {
	return e.Cause
}

func NewInternalError(message string, cause error) *InternalError {
	return &InternalError{
		Message: message,
		Cause:   cause,
	}
}

// IsRetryable reports whether the caller may safely retry the same request.
func IsRetryable(err error) bool {
	if _, ok := IsGatewayUnavailableError(err); ok {
		return true
	}
	if _, ok := IsPaymentVerificationError(err); ok {
		return true
	}
	return false
}
