package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/dto"
	apperrors "storefront/internal/errors"
	"storefront/internal/httpx"
	"storefront/internal/identity"
	"storefront/internal/order/repository"
)

type AdminOrdersUseCase interface {
	List(ctx context.Context, session *domain.Session, filter repository.ListFilter) ([]domain.Order, error)
	AdvanceFulfillment(ctx context.Context, session *domain.Session, orderID string, to string) (*domain.Order, error)
}

type AdminOrderController struct {
	useCase AdminOrdersUseCase
	logger  *zap.Logger
}

func NewAdminOrderController(useCase AdminOrdersUseCase, logger *zap.Logger) *AdminOrderController {
	return &AdminOrderController{useCase: useCase, logger: logger}
}

// ListOrders handles GET /admin/orders?payment_status=&limit=&offset=.
func (c *AdminOrderController) ListOrders(w http.ResponseWriter, r *http.Request) {
	traceID := httpx.NewTraceID()
	logger := c.logger.With(zap.String("traceId", traceID))

	q := r.URL.Query()
	filter := repository.ListFilter{PaymentStatus: q.Get("payment_status")}
	var details []apperrors.ValidationDetail
	for field, dst := range map[string]*int{"limit": &filter.Limit, "offset": &filter.Offset} {
		raw := q.Get(field)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			details = append(details, apperrors.ValidationDetail{Field: field, Message: field + " must be a non-negative integer"})
			continue
		}
		*dst = n
	}
	if len(details) > 0 {
		httpx.WriteValidationError(w, traceID, "validation failed", logger, details...)
		return
	}

	orders, err := c.useCase.List(r.Context(), identity.SessionFrom(r.Context()), filter)
	if err != nil {
		httpx.HandleUseCaseError(w, traceID, err, logger)
		return
	}

	resp := dto.OrderListResponse{TraceID: traceID, Orders: make([]dto.OrderResponse, 0, len(orders))}
	for _, o := range orders {
		resp.Orders = append(resp.Orders, dto.NewOrderResponse(o, nil))
	}
	httpx.WriteJSON(w, http.StatusOK, resp, logger)
}

// UpdateFulfillment handles PATCH /admin/orders/{orderId}/fulfillment.
func (c *AdminOrderController) UpdateFulfillment(w http.ResponseWriter, r *http.Request) {
	traceID := httpx.NewTraceID()
	logger := c.logger.With(zap.String("traceId", traceID))

	var req dto.UpdateFulfillmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		httpx.WriteValidationError(w, traceID, "invalid JSON body", logger, apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	order, err := c.useCase.AdvanceFulfillment(r.Context(), identity.SessionFrom(r.Context()), chi.URLParam(r, "orderId"), req.Status)
	if err != nil {
		httpx.HandleUseCaseError(w, traceID, err, logger)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, dto.NewOrderResponse(*order, nil), logger)
}
