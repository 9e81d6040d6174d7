// Package app wires the catalog, pricing, allotment and booking services
// from shared clients so the API server and inventoryctl build them the same
// way.
package app

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"

	"github.com/tripdesk/backoffice/internal/allotment"
	"github.com/tripdesk/backoffice/internal/booking"
	"github.com/tripdesk/backoffice/internal/catalog"
	"github.com/tripdesk/backoffice/internal/pricing"
	"github.com/tripdesk/backoffice/pkg/config"
	"github.com/tripdesk/backoffice/pkg/db"
	"github.com/tripdesk/backoffice/pkg/logger"
	"github.com/tripdesk/backoffice/pkg/metrics"
	"github.com/tripdesk/backoffice/pkg/redis"
)

type ServiceParams struct {
	Config *config.Config
	Logger *logger.Logger
	DB     *db.Client
	// Redis is optional unless the lock guard is configured.
	Redis *redis.Client
	// Registerer is optional; metrics are dropped when nil.
	Registerer prometheus.Registerer
}

type Services struct {
	Catalog *catalog.Repository
	Pricing pricing.Service
	Checker *allotment.Checker
	Booking booking.Service
	Guard   booking.Guard
}

func NewServices(params ServiceParams) (*Services, error) {
	if params.Config == nil {
		return nil, errors.New("config is required")
	}
	if params.DB == nil {
		return nil, errors.New("database client is required")
	}

	cfg := params.Config
	logg := params.Logger

	var (
		pricingMetrics   *metrics.PricingMetrics
		allotmentMetrics *metrics.AllotmentMetrics
		bookingMetrics   *metrics.BookingMetrics
	)
	if params.Registerer != nil {
		pricingMetrics = metrics.NewPricingMetrics(params.Registerer)
		allotmentMetrics = metrics.NewAllotmentMetrics(params.Registerer)
		bookingMetrics = metrics.NewBookingMetrics(params.Registerer)
	}

	catalogRepo := catalog.NewRepository(params.DB.DB())

	resolver := pricing.NewResolver(catalogRepo, logg, pricingMetrics)
	pricingService, err := pricing.NewService(catalogRepo, resolver, pricing.RatesFromConfig(cfg.Pricing))
	if err != nil {
		return nil, fmt.Errorf("pricing service: %w", err)
	}

	checker := allotment.NewChecker(catalogRepo, logg, allotmentMetrics)

	var locks booking.LockStore
	if params.Redis != nil {
		locks = params.Redis
	}
	guard, err := booking.NewGuard(cfg.Allotment, params.DB, locks, logg)
	if err != nil {
		return nil, fmt.Errorf("allotment guard: %w", err)
	}

	bookingService, err := booking.NewService(
		params.DB,
		booking.NewRepository(params.DB.DB()),
		catalogRepo,
		Ledger(catalogRepo),
		checker,
		pricingService,
		guard,
		cfg.Allotment.Policy,
		logg,
		bookingMetrics,
	)
	if err != nil {
		return nil, fmt.Errorf("booking service: %w", err)
	}

	return &Services{
		Catalog: catalogRepo,
		Pricing: pricingService,
		Checker: checker,
		Booking: bookingService,
		Guard:   guard,
	}, nil
}

// Ledger binds allotment reads to the guard's transaction when there is one.
func Ledger(repo *catalog.Repository) booking.LedgerFunc {
	return func(tx *gorm.DB) allotment.Store {
		if tx == nil {
			return repo
		}
		return repo.WithTx(tx)
	}
}
