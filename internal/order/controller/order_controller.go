package controller

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/dto"
	"storefront/internal/httpx"
	"storefront/internal/identity"
	"storefront/internal/order/usecase"
)

type OrderQueryUseCase interface {
	ListMine(ctx context.Context, session *domain.Session, limit int) ([]usecase.OrderWithItems, error)
	GetMine(ctx context.Context, session *domain.Session, orderID string) (*usecase.OrderWithItems, error)
}

type InvoiceRenderer interface {
	Render(ctx context.Context, session *domain.Session, orderID string) ([]byte, error)
}

type OrderController struct {
	queries  OrderQueryUseCase
	invoices InvoiceRenderer
	logger   *zap.Logger
}

func NewOrderController(queries OrderQueryUseCase, invoices InvoiceRenderer, logger *zap.Logger) *OrderController {
	return &OrderController{queries: queries, invoices: invoices, logger: logger}
}

// ListOrders handles GET /orders.
func (c *OrderController) ListOrders(w http.ResponseWriter, r *http.Request) {
	traceID := httpx.NewTraceID()
	logger := c.logger.With(zap.String("traceId", traceID))

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			httpx.WriteValidationError(w, traceID, "invalid limit", logger)
			return
		}
		limit = n
	}

	orders, err := c.queries.ListMine(r.Context(), identity.SessionFrom(r.Context()), limit)
	if err != nil {
		httpx.HandleUseCaseError(w, traceID, err, logger)
		return
	}

	resp := dto.OrderListResponse{TraceID: traceID, Orders: make([]dto.OrderResponse, 0, len(orders))}
	for _, o := range orders {
		resp.Orders = append(resp.Orders, dto.NewOrderResponse(o.Order, o.Items))
	}
	httpx.WriteJSON(w, http.StatusOK, resp, logger)
}

// GetOrder handles GET /orders/{orderId}.
func (c *OrderController) GetOrder(w http.ResponseWriter, r *http.Request) {
	traceID := httpx.NewTraceID()
	logger := c.logger.With(zap.String("traceId", traceID))

	o, err := c.queries.GetMine(r.Context(), identity.SessionFrom(r.Context()), chi.URLParam(r, "orderId"))
	if err != nil {
		httpx.HandleUseCaseError(w, traceID, err, logger)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, dto.NewOrderResponse(o.Order, o.Items), logger)
}

// GetInvoice handles GET /orders/{orderId}/invoice.
func (c *OrderController) GetInvoice(w http.ResponseWriter, r *http.Request) {
	traceID := httpx.NewTraceID()
	logger := c.logger.With(zap.String("traceId", traceID))

	html, err := c.invoices.Render(r.Context(), identity.SessionFrom(r.Context()), chi.URLParam(r, "orderId"))
	if err != nil {
		httpx.HandleUseCaseError(w, traceID, err, logger)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(html); err != nil {
		logger.Error("failed to write invoice", zap.Error(err))
	}
}
