package partner

import (
	"database/sql"

	"go.uber.org/zap"

	"courier/internal/config"
	"courier/internal/partner/controller"
	"courier/internal/partner/repository"
	"courier/internal/partner/service"
)

// NewModule also returns the service so the order module can search partners
// through it.
func NewModule(db *sql.DB, cfg *config.Config, fees service.FeeCalculator, logger *zap.Logger) (*controller.PartnerController, *service.PartnerService) {
	repo := repository.NewMySQLPartnerRepository(db)
	svc := service.NewPartnerService(repo, fees, cfg.Matching.DefaultSearchRadiusKm, logger)
	return controller.NewPartnerController(svc, logger), svc
}
