package controller

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/dto"
	apperrors "storefront/internal/errors"
	"storefront/internal/events"
	"storefront/internal/httpx"
	"storefront/internal/identity"
	"storefront/internal/order/usecase"
)

type VerifyPaymentUseCase interface {
	Verify(ctx context.Context, in usecase.VerifyInput, session *domain.Session) (*usecase.VerifyResult, error)
}

type VerifyPaymentController struct {
	useCase VerifyPaymentUseCase
	logger  *zap.Logger
}

func NewVerifyPaymentController(useCase VerifyPaymentUseCase, logger *zap.Logger) *VerifyPaymentController {
	return &VerifyPaymentController{
		useCase: useCase,
		logger:  logger,
	}
}

// VerifyPayment handles POST /verify-payment.
func (c *VerifyPaymentController) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	traceID := httpx.NewTraceID()
	logger := c.logger.With(zap.String("traceId", traceID))

	session := identity.SessionFrom(r.Context())
	if session == nil {
		httpx.WriteError(w, traceID, http.StatusUnauthorized, dto.CodeUnauthorized, "authentication required", nil, logger)
		return
	}

	var req dto.VerifyPaymentRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		httpx.WriteValidationError(w, traceID, "invalid JSON body", logger, apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	ctx := events.WithTraceID(r.Context(), traceID)
	result, err := c.useCase.Verify(ctx, usecase.VerifyInput{Reference: req.Reference, OrderID: req.OrderID}, session)
	if err != nil {
		httpx.HandleUseCaseError(w, traceID, err, logger)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, dto.VerifyPaymentResponse{
		Success: true,
		TraceID: traceID,
		Order:   dto.NewOrderResponse(*result.Order, result.Items),
		Payment: result.Payment,
	}, logger)
}
