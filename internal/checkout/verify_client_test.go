package checkout

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain"
	"storefront/internal/dto"
	apperrors "storefront/internal/errors"
)

func TestHTTPVerifier_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer token-1", r.Header.Get("Authorization"))

		var req dto.VerifyPaymentRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "order-1.a", req.Reference)

		ref := req.Reference
		_ = json.NewEncoder(w).Encode(dto.VerifyPaymentResponse{
			Success: true,
			Order:   dto.NewOrderResponse(domain.Order{ID: req.OrderID, PaymentStatus: domain.PaymentStatusPaid, PaymentReference: &ref}, nil),
			Payment: json.RawMessage(`{"status":"success"}`),
		})
	}))
	defer srv.Close()

	v, err := NewHTTPVerifier(srv.URL, "token-1", time.Second).Verify(context.Background(), "order-1.a", "order-1")
	require.NoError(t, err)

	assert.Equal(t, domain.PaymentStatusPaid, v.Order.PaymentStatus)
	assert.JSONEq(t, `{"status":"success"}`, string(v.Payment))
}

func TestHTTPVerifier_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   dto.ErrorResponse
		check  func(t *testing.T, err error)
	}{
		{
			name:   "verification failed",
			status: http.StatusUnprocessableEntity,
			body:   dto.ErrorResponse{Error: dto.CodeVerificationFailed, Message: "payment verification failed", Details: "Abandoned"},
			check: func(t *testing.T, err error) {
				pve, ok := apperrors.IsPaymentVerificationError(err)
				require.True(t, ok)
				assert.Equal(t, "Abandoned", pve.GatewayMessage)
			},
		},
		{
			name:   "gateway unavailable",
			status: http.StatusBadGateway,
			body:   dto.ErrorResponse{Error: dto.CodeGatewayUnavailable, Message: "payment gateway unreachable"},
			check: func(t *testing.T, err error) {
				_, ok := apperrors.IsGatewayUnavailableError(err)
				assert.True(t, ok)
			},
		},
		{
			name:   "order write failed",
			status: http.StatusInternalServerError,
			body:   dto.ErrorResponse{Error: dto.CodeOrderWriteFailed, Message: "contact support", Reference: "order-1.a"},
			check: func(t *testing.T, err error) {
				owe, ok := apperrors.IsOrderWriteError(err)
				require.True(t, ok)
				assert.Equal(t, "order-1.a", owe.Reference)
			},
		},
		{
			name:   "unauthorized",
			status: http.StatusUnauthorized,
			body:   dto.ErrorResponse{Error: dto.CodeUnauthorized, Message: "invalid session"},
			check: func(t *testing.T, err error) {
				_, ok := apperrors.IsUnauthorizedError(err)
				assert.True(t, ok)
			},
		},
		{
			name:   "conflict",
			status: http.StatusConflict,
			body:   dto.ErrorResponse{Error: dto.CodeConflict, Message: "order already paid"},
			check: func(t *testing.T, err error) {
				_, ok := apperrors.IsConflictError(err)
				assert.True(t, ok)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_ = json.NewEncoder(w).Encode(tt.body)
			}))
			defer srv.Close()

			_, err := NewHTTPVerifier(srv.URL, "t", time.Second).Verify(context.Background(), "order-1.a", "order-1")
			tt.check(t, err)
		})
	}
}

func TestHTTPVerifier_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	_, err := NewHTTPVerifier(srv.URL, "t", time.Second).Verify(context.Background(), "order-1.a", "order-1")

	_, ok := apperrors.IsGatewayUnavailableError(err)
	assert.True(t, ok)
}
