package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"storefront/internal/identity"
	"storefront/internal/order"
	"storefront/internal/order/controller"
	"storefront/internal/product"
	"storefront/internal/product/repository"
	"storefront/internal/review"
	"storefront/internal/vendor"
)

const testCatalog = `
products:
  - id: wax-print-6y
    name: Wax print
    price: 18000
    category: textiles
`

func newTestRouter(t *testing.T) (http.Handler, *identity.TokenService) {
	t.Helper()

	repo, err := repository.ParseYAMLRepository([]byte(testCatalog))
	require.NoError(t, err)
	logger := zap.NewNop()
	productCtrl := product.NewController(product.NewSearchUseCase(product.NewService(repo), "XOF"), logger)

	orders := &order.Module{
		Verify: controller.NewVerifyPaymentController(nil, logger),
		Orders: controller.NewOrderController(nil, nil, logger),
		Admin:  controller.NewAdminOrderController(nil, logger),
	}
	tokens := identity.NewTokenService("router-test-secret", time.Hour)
	return NewRouter(productCtrl, orders, vendor.NewController(nil, logger), review.NewController(nil, logger), tokens, logger), tokens
}

func TestRouter_Healthz(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestRouter_ListProducts(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "wax-print-6y")
}

func TestRouter_VerifyPaymentRequiresSession(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/verify-payment", strings.NewReader(`{"reference":"a.b","orderId":"a"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_VerifyPaymentWithBearerToken(t *testing.T) {
	router, tokens := newTestRouter(t)
	token, err := tokens.Issue("user-1", "ama@example.com")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/verify-payment", strings.NewReader(`{broken`))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	// past authentication, rejected by body decoding
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_UnknownMethod(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/verify-payment", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRouter_VendorAndReviewRoutes(t *testing.T) {
	router, tokens := newTestRouter(t)
	token, err := tokens.Issue("user-1", "ama@example.com")
	require.NoError(t, err)

	for _, path := range []string{"/vendors", "/products/wax-print-6y/reviews"} {
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(`{broken`))
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/admin/vendors/v1/status", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
