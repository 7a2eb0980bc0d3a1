package product

import (
	"go.uber.org/zap"

	"storefront/internal/product/repository"
)

// Module bundles the catalog pieces other modules depend on.
type Module struct {
	Controller *Controller
	Service    Service
}

func NewModule(catalogPath string, currency string, logger *zap.Logger) (*Module, error) {
	repo, err := repository.LoadYAMLRepository(catalogPath)
	if err != nil {
		return nil, err
	}
	svc := NewService(repo)
	uc := NewSearchUseCase(svc, currency)
	return &Module{
		Controller: NewController(uc, logger),
		Service:    svc,
	}, nil
}
