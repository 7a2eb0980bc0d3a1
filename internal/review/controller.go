package review

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/dto"
	apperrors "storefront/internal/errors"
	"storefront/internal/httpx"
	"storefront/internal/identity"
)

const maxBodyBytes = 8 << 10

type UseCase interface {
	Submit(ctx context.Context, session *domain.Session, productID string, in SubmitInput) (*domain.Review, error)
	List(ctx context.Context, productID string) (*ProductReviews, error)
}

type Controller struct {
	useCase UseCase
	logger  *zap.Logger
}

func NewController(useCase UseCase, logger *zap.Logger) *Controller {
	return &Controller{useCase: useCase, logger: logger}
}

// Submit handles POST /products/{productId}/reviews.
func (c *Controller) Submit(w http.ResponseWriter, r *http.Request) {
	traceID := httpx.NewTraceID()
	logger := c.logger.With(zap.String("traceId", traceID))

	var req dto.ReviewRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		httpx.WriteValidationError(w, traceID, "invalid JSON body", logger, apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return
	}

	rv, err := c.useCase.Submit(r.Context(), identity.SessionFrom(r.Context()), chi.URLParam(r, "productId"), SubmitInput{
		Rating:  req.Rating,
		Comment: req.Comment,
		OrderID: req.OrderID,
	})
	if err != nil {
		httpx.HandleUseCaseError(w, traceID, err, logger)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, dto.NewReviewResponse(*rv), logger)
}

// List handles GET /products/{productId}/reviews.
func (c *Controller) List(w http.ResponseWriter, r *http.Request) {
	traceID := httpx.NewTraceID()
	logger := c.logger.With(zap.String("traceId", traceID))

	productID := chi.URLParam(r, "productId")
	pr, err := c.useCase.List(r.Context(), productID)
	if err != nil {
		httpx.HandleUseCaseError(w, traceID, err, logger)
		return
	}

	resp := dto.ProductReviewsResponse{
		TraceID:   traceID,
		ProductID: productID,
		Summary:   dto.NewRatingSummaryResponse(pr.Summary),
		Reviews:   make([]dto.ReviewResponse, 0, len(pr.Reviews)),
	}
	for _, rv := range pr.Reviews {
		resp.Reviews = append(resp.Reviews, dto.NewReviewResponse(rv))
	}
	httpx.WriteJSON(w, http.StatusOK, resp, logger)
}
