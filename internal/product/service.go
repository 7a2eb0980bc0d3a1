package product

import (
	"context"
	"fmt"

	"storefront/internal/domain"
	"storefront/internal/errors"
)

type productService struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &productService{repo: repo}
}

func (s *productService) GetProductsByIDs(ctx context.Context, ids []string) ([]domain.Product, []string, error) {
	found, err := s.repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, nil, err
	}

	foundSet := make(map[string]struct{}, len(found))
	for _, p := range found {
		foundSet[p.ID] = struct{}{}
	}

	var notFoundIDs []string
	for _, id := range ids {
		if _, ok := foundSet[id]; !ok {
			notFoundIDs = append(notFoundIDs, id)
		}
	}

	return found, notFoundIDs, nil
}

func (s *productService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	found, err := s.repo.FindByIDs(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, errors.NewNotFoundError(fmt.Sprintf("product %s not found", id))
	}
	return &found[0], nil
}

func (s *productService) ListActive(ctx context.Context, category string) ([]domain.Product, error) {
	return s.repo.ListActive(ctx, category)
}
