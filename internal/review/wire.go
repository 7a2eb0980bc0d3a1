package review

import (
	"database/sql"

	"go.uber.org/zap"

	orderrepo "storefront/internal/order/repository"
	"storefront/internal/product"
)

func NewModule(db *sql.DB, products product.Service, logger *zap.Logger) *Controller {
	svc := NewService(
		NewMySQLRepository(db),
		products,
		orderrepo.NewMySQLOrderRepository(db),
		orderrepo.NewMySQLOrderItemRepository(db),
		logger,
	)
	return NewController(svc, logger)
}
