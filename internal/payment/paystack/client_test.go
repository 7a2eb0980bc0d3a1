package paystack

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "storefront/internal/errors"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewClient(Options{BaseURL: srv.URL, SecretKey: "sk_test_secret"}, zap.NewNop())
}

func TestVerifyTransaction_Success(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/transaction/verify/order-1.abc", r.URL.Path)
		assert.Equal(t, "Bearer sk_test_secret", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":true,"message":"Verification successful","data":{"id":42,"status":"success","reference":"order-1.abc","amount":3600000,"currency":"XOF","gateway_response":"Successful"}}`))
	})

	v, err := client.VerifyTransaction(context.Background(), "order-1.abc")
	require.NoError(t, err)

	assert.True(t, v.Succeeded)
	assert.Equal(t, int64(3600000), v.Transaction.Amount)
	assert.Equal(t, "XOF", v.Transaction.Currency)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(v.Raw, &raw))
	assert.Equal(t, "success", raw["status"])
}

func TestVerifyTransaction_Abandoned(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":true,"message":"Verification successful","data":{"status":"abandoned","gateway_response":"The transaction was not completed"}}`))
	})

	v, err := client.VerifyTransaction(context.Background(), "order-1.abc")
	require.NoError(t, err)

	assert.False(t, v.Succeeded)
	assert.Equal(t, "abandoned", v.Transaction.Status)
}

func TestVerifyTransaction_ReferenceNotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"status":false,"message":"Transaction reference not found"}`))
	})

	v, err := client.VerifyTransaction(context.Background(), "bogus")
	require.NoError(t, err)

	assert.False(t, v.Succeeded)
	assert.Equal(t, "Transaction reference not found", v.Message)
}

func TestVerifyTransaction_ServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.VerifyTransaction(context.Background(), "order-1.abc")

	_, ok := apperrors.IsGatewayUnavailableError(err)
	assert.True(t, ok)
}

func TestVerifyTransaction_MalformedBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>maintenance</html>`))
	})

	_, err := client.VerifyTransaction(context.Background(), "order-1.abc")

	_, ok := apperrors.IsGatewayUnavailableError(err)
	assert.True(t, ok)
}

func TestVerifyTransaction_NoVerdictIsUnavailable(t *testing.T) {
	tests := map[string]struct {
		status int
		body   string
	}{
		"rate limited":         {http.StatusTooManyRequests, `{"status":false,"message":"Too many requests"}`},
		"forbidden":            {http.StatusForbidden, `{"status":false,"message":"Forbidden"}`},
		"html not found":       {http.StatusNotFound, `<html>not found</html>`},
		"empty client error":   {http.StatusBadRequest, `{}`},
		"empty success":        {http.StatusOK, `{"status":false}`},
		"null data no message": {http.StatusOK, `{"status":true,"data":null}`},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			v, err := client.VerifyTransaction(context.Background(), "order-1.abc")

			assert.Nil(t, v)
			_, ok := apperrors.IsGatewayUnavailableError(err)
			assert.True(t, ok)
			assert.True(t, apperrors.IsRetryable(err))
		})
	}
}

func TestVerifyTransaction_MissingSecretKey(t *testing.T) {
	client := NewClient(Options{BaseURL: "http://127.0.0.1:1"}, zap.NewNop())

	_, err := client.VerifyTransaction(context.Background(), "order-1.abc")

	gue, ok := apperrors.IsGatewayUnavailableError(err)
	require.True(t, ok)
	assert.Equal(t, "payment gateway not configured", gue.Message)
}

func TestVerifyTransaction_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	client := NewClient(Options{BaseURL: srv.URL, SecretKey: "sk"}, zap.NewNop())

	_, err := client.VerifyTransaction(context.Background(), "order-1.abc")

	_, ok := apperrors.IsGatewayUnavailableError(err)
	assert.True(t, ok)
}

func TestInitialize(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/transaction/initialize", r.URL.Path)

		var req InitializeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, int64(3600000), req.Amount)
		assert.Equal(t, "order-1.abc", req.Reference)
		assert.Equal(t, "order-1", req.Metadata["order_id"])

		_, _ = w.Write([]byte(`{"status":true,"message":"Authorization URL created","data":{"authorization_url":"https://checkout.paystack.com/abc","access_code":"abc","reference":"order-1.abc"}}`))
	})

	res, err := client.Initialize(context.Background(), InitializeRequest{
		Email:     "awa@example.com",
		Amount:    3600000,
		Currency:  "XOF",
		Reference: "order-1.abc",
		Metadata:  map[string]string{"order_id": "order-1"},
	})
	require.NoError(t, err)
	assert.Equal(t, "https://checkout.paystack.com/abc", res.AuthorizationURL)
}

func TestInitialize_Rejected(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"status":false,"message":"Duplicate Transaction Reference"}`))
	})

	_, err := client.Initialize(context.Background(), InitializeRequest{Reference: "dup"})

	pve, ok := apperrors.IsPaymentVerificationError(err)
	require.True(t, ok)
	assert.Equal(t, "Duplicate Transaction Reference", pve.GatewayMessage)
}
