package dto

import "time"

// ErrorResponse is the body of every non-2xx answer. Error carries the
// machine-readable code, Details the gateway's own message or field errors.
type ErrorResponse struct {
	TraceID   string    `json:"traceId"`
	Status    int       `json:"status"`
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	Reference string    `json:"reference,omitempty"`
	Details   any       `json:"details,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

const (
	CodeValidation         = "BAD_REQUEST"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeForbidden          = "FORBIDDEN"
	CodeNotFound           = "NOT_FOUND"
	CodeConflict           = "CONFLICT"
	CodeVerificationFailed = "PAYMENT_VERIFICATION_FAILED"
	CodeGatewayUnavailable = "GATEWAY_UNAVAILABLE"
	CodeOrderWriteFailed   = "ORDER_WRITE_FAILED"
	CodeInternal           = "INTERNAL_ERROR"
)
