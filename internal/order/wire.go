package order

import (
	"database/sql"

	"go.uber.org/zap"

	"storefront/internal/config"
	"storefront/internal/events"
	"storefront/internal/order/controller"
	orderrepo "storefront/internal/order/repository"
	"storefront/internal/order/service"
	"storefront/internal/order/usecase"
	"storefront/internal/payment/paystack"
)

// Module holds the HTTP handlers of the order domain.
type Module struct {
	Verify *controller.VerifyPaymentController
	Orders *controller.OrderController
	Admin  *controller.AdminOrderController
}

func NewModule(db *sql.DB, gateway *paystack.Client, publisher events.Publisher, cfg *config.Config, logger *zap.Logger) *Module {
	orderRepo := orderrepo.NewMySQLOrderRepository(db)
	orderItemRepo := orderrepo.NewMySQLOrderItemRepository(db)
	roleRepo := orderrepo.NewMySQLRoleRepository(db)

	verifyUC := usecase.NewVerifyPaymentUseCase(
		orderRepo,
		orderItemRepo,
		gateway,
		publisher,
		cfg.Payment.Currency,
		logger,
	)
	queryUC := usecase.NewOrderQueryUseCase(orderRepo, orderItemRepo, logger)
	invoiceUC := usecase.NewInvoiceUseCase(queryUC, cfg.Payment.Currency)
	adminUC := usecase.NewAdminOrdersUseCase(orderRepo, roleRepo, logger)

	return &Module{
		Verify: controller.NewVerifyPaymentController(verifyUC, logger),
		Orders: controller.NewOrderController(queryUC, invoiceUC, logger),
		Admin:  controller.NewAdminOrderController(adminUC, logger),
	}
}

// NewSweeper builds the maintenance sweep run by storefrontctl.
func NewSweeper(db *sql.DB, gateway *paystack.Client, cfg *config.Config, logger *zap.Logger) *service.SweepService {
	return service.NewSweepService(
		db,
		orderrepo.NewMySQLOrderRepository(db),
		gateway,
		logger,
		cfg.Order.PendingTTL,
		cfg.Order.TxTimeout,
	)
}
