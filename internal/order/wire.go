package order

import (
	"database/sql"

	"go.uber.org/zap"

	buyerrepo "courier/internal/buyer/repository"
	"courier/internal/config"
	"courier/internal/matching"
	"courier/internal/order/controller"
	orderrepo "courier/internal/order/repository"
	"courier/internal/order/service"
	partnerrepo "courier/internal/partner/repository"
	travelerrepo "courier/internal/traveler/repository"
)

func NewModule(
	db *sql.DB,
	cfg *config.Config,
	fees service.FeeCalculator,
	searcher service.PartnerSearcher,
	emitter service.EventEmitter,
	logger *zap.Logger,
) *controller.OrderController {
	svc := service.NewOrderService(service.Dependencies{
		Orders:    orderrepo.NewMySQLOrderRepository(db),
		Buyers:    buyerrepo.NewMySQLBuyerRepository(db),
		Travelers: travelerrepo.NewMySQLTravelerRepository(db),
		Partners:  partnerrepo.NewMySQLPartnerRepository(db),
		Searcher:  searcher,
		Matcher:   matching.NewTravelerMatcher(cfg.Matching.RecentDepartureWindow, cfg.Matching.MaxTravelerCandidates),
		Fees:      fees,
		Events:    emitter,
	}, service.Options{
		Currency:             cfg.Ledger.DefaultCurrency,
		MaxPartnerCandidates: cfg.Matching.MaxPartnerCandidates,
		MaxRequestPartners:   cfg.Matching.MaxRequestPartners,
		SearchRadiusKm:       cfg.Matching.DefaultSearchRadiusKm,
		NumberMaxAttempts:    cfg.Order.NumberMaxAttempts,
		WriteMaxAttempts:     cfg.Order.WriteMaxAttempts,
		WriteTimeout:         cfg.Order.WriteTimeout,
	}, logger)

	return controller.NewOrderController(svc, logger)
}
