package product

import (
	"context"

	"storefront/internal/domain"
	"storefront/internal/money"
)

type searchUseCase struct {
	service  Service
	currency string
}

func NewSearchUseCase(service Service, currency string) SearchUseCase {
	return &searchUseCase{service: service, currency: currency}
}

func (uc *searchUseCase) SearchProducts(ctx context.Context, req SearchProductsRequest) (*SearchProductsResponse, error) {
	found, notFoundIDs, err := uc.service.GetProductsByIDs(ctx, req.ProductIDs)
	if err != nil {
		return nil, err
	}

	if notFoundIDs == nil {
		notFoundIDs = []string{}
	}

	return &SearchProductsResponse{
		Products: uc.toDTOs(found),
		NotFound: notFoundIDs,
	}, nil
}

func (uc *searchUseCase) ListProducts(ctx context.Context, category string) (*ListProductsResponse, error) {
	products, err := uc.service.ListActive(ctx, category)
	if err != nil {
		return nil, err
	}
	return &ListProductsResponse{Products: uc.toDTOs(products)}, nil
}

func (uc *searchUseCase) toDTOs(products []domain.Product) []ProductDTO {
	out := make([]ProductDTO, 0, len(products))
	for _, p := range products {
		out = append(out, ProductDTO{
			ID:             p.ID,
			Name:           p.Name,
			Description:    p.Description,
			Price:          p.Price,
			FormattedPrice: money.Format(p.Price, uc.currency),
			Category:       p.Category,
			ImageURL:       p.ImageURL,
		})
	}
	return out
}
