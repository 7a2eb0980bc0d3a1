// Package review collects star ratings for catalog products.
package review

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/errors"
)

type Repository interface {
	Insert(ctx context.Context, rv domain.Review) (*domain.Review, error)
	ListByProduct(ctx context.Context, productID string) ([]domain.Review, error)
}

type ProductLookup interface {
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
}

type OrderLookup interface {
	FindByID(ctx context.Context, id string) (*domain.Order, error)
}

type OrderItemLookup interface {
	ListByOrderID(ctx context.Context, orderID string) ([]domain.OrderItem, error)
}

type SubmitInput struct {
	Rating  int
	Comment string
	OrderID *string
}

type ProductReviews struct {
	Summary domain.RatingSummary
	Reviews []domain.Review
}

type Service struct {
	repo     Repository
	products ProductLookup
	orders   OrderLookup
	items    OrderItemLookup
	logger   *zap.Logger
}

func NewService(repo Repository, products ProductLookup, orders OrderLookup, items OrderItemLookup, logger *zap.Logger) *Service {
	return &Service{repo: repo, products: products, orders: orders, items: items, logger: logger}
}

// Submit records the caller's review of productID. When an order is named it
// must belong to the caller and contain the product.
func (s *Service) Submit(ctx context.Context, session *domain.Session, productID string, in SubmitInput) (*domain.Review, error) {
	if session == nil {
		return nil, errors.NewUnauthorizedError("authentication required")
	}

	comment := strings.TrimSpace(in.Comment)
	var details []errors.ValidationDetail
	if in.Rating < domain.MinRating || in.Rating > domain.MaxRating {
		details = append(details, errors.ValidationDetail{
			Field:   "rating",
			Message: fmt.Sprintf("rating must be between %d and %d", domain.MinRating, domain.MaxRating),
		})
	}
	if utf8.RuneCountInString(comment) > domain.MaxReviewComment {
		details = append(details, errors.ValidationDetail{
			Field:   "comment",
			Message: fmt.Sprintf("comment must be at most %d characters", domain.MaxReviewComment),
		})
	}
	if len(details) > 0 {
		return nil, errors.NewValidationError("validation failed", details...)
	}

	if _, err := s.products.GetProduct(ctx, productID); err != nil {
		return nil, err
	}

	var orderID *string
	if in.OrderID != nil && *in.OrderID != "" {
		if err := s.checkPurchase(ctx, session, *in.OrderID, productID); err != nil {
			return nil, err
		}
		id := *in.OrderID
		orderID = &id
	}

	created, err := s.repo.Insert(ctx, domain.Review{
		UserID:    session.UserID,
		ProductID: productID,
		OrderID:   orderID,
		Rating:    in.Rating,
		Comment:   comment,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("review submitted",
		zap.String("reviewId", created.ID),
		zap.String("productId", productID),
		zap.Int("rating", created.Rating),
	)
	return created, nil
}

func (s *Service) checkPurchase(ctx context.Context, session *domain.Session, orderID string, productID string) error {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return err
	}
	if !order.OwnedBy(session.UserID) {
		return errors.NewNotFoundError(fmt.Sprintf("order %s not found", orderID))
	}

	items, err := s.items.ListByOrderID(ctx, orderID)
	if err != nil {
		return err
	}
	for _, it := range items {
		if it.ProductID == productID {
			return nil
		}
	}
	return errors.NewValidationError("product is not part of this order", errors.ValidationDetail{
		Field:   "orderId",
		Message: "order does not contain this product",
	})
}

func (s *Service) List(ctx context.Context, productID string) (*ProductReviews, error) {
	if _, err := s.products.GetProduct(ctx, productID); err != nil {
		return nil, err
	}

	reviews, err := s.repo.ListByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	return &ProductReviews{Summary: domain.SummarizeRatings(reviews), Reviews: reviews}, nil
}
