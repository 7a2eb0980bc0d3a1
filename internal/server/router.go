package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"storefront/internal/identity"
	"storefront/internal/order"
	"storefront/internal/product"
	"storefront/internal/review"
	"storefront/internal/vendor"
)

func NewRouter(productCtrl *product.Controller, orders *order.Module, vendors *vendor.Controller, reviews *review.Controller, tokens *identity.TokenService, logger *zap.Logger) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)
	r.Use(middleware.Timeout(15 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/products", productCtrl.HandleListProducts)
	r.Post("/products/search", productCtrl.HandleSearchProducts)

	r.Group(func(r chi.Router) {
		r.Use(identity.Authenticate(tokens, logger))

		r.Post("/verify-payment", orders.Verify.VerifyPayment)

		r.Get("/orders", orders.Orders.ListOrders)
		r.Get("/orders/{orderId}", orders.Orders.GetOrder)
		r.Get("/orders/{orderId}/invoice", orders.Orders.GetInvoice)

		r.Get("/admin/orders", orders.Admin.ListOrders)
		r.Patch("/admin/orders/{orderId}/fulfillment", orders.Admin.UpdateFulfillment)

		r.Get("/products/{productId}/reviews", reviews.List)
		r.Post("/products/{productId}/reviews", reviews.Submit)

		r.Post("/vendors", vendors.Apply)
		r.Get("/vendors/me", vendors.Mine)
		r.Get("/vendors/me/dashboard", vendors.Dashboard)
		r.Get("/admin/vendors", vendors.List)
		r.Patch("/admin/vendors/{vendorId}/status", vendors.ChangeStatus)
	})

	return r
}
