package transaction

import (
	"database/sql"

	"go.uber.org/zap"

	buyerrepo "courier/internal/buyer/repository"
	"courier/internal/config"
	orderrepo "courier/internal/order/repository"
	"courier/internal/transaction/controller"
	txnrepo "courier/internal/transaction/repository"
	"courier/internal/transaction/service"
)

func NewModule(db *sql.DB, cfg *config.Config, emitter service.EventEmitter, logger *zap.Logger) *controller.TransactionController {
	ledger := service.NewLedgerService(
		txnrepo.NewMySQLTransactionRepository(db),
		orderrepo.NewMySQLOrderRepository(db),
		buyerrepo.NewMySQLBuyerRepository(db),
		emitter,
		service.Options{
			DefaultCurrency:   cfg.Ledger.DefaultCurrency,
			NumberMaxAttempts: cfg.Ledger.NumberMaxAttempts,
			WriteMaxAttempts:  cfg.Order.WriteMaxAttempts,
		},
		logger,
	)
	return controller.NewTransactionController(ledger, logger)
}
