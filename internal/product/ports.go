package product

import (
	"context"

	"storefront/internal/domain"
)

type SearchUseCase interface {
	SearchProducts(ctx context.Context, req SearchProductsRequest) (*SearchProductsResponse, error)
	ListProducts(ctx context.Context, category string) (*ListProductsResponse, error)
}

type Service interface {
	GetProductsByIDs(ctx context.Context, ids []string) (found []domain.Product, notFoundIDs []string, err error)
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	ListActive(ctx context.Context, category string) ([]domain.Product, error)
}

type Repository interface {
	FindByIDs(ctx context.Context, ids []string) ([]domain.Product, error)
	ListActive(ctx context.Context, category string) ([]domain.Product, error)
}
