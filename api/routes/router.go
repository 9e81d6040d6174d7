package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tripdesk/backoffice/api/controllers"
	"github.com/tripdesk/backoffice/api/middleware"
	"github.com/tripdesk/backoffice/internal/allotment"
	"github.com/tripdesk/backoffice/internal/booking"
	"github.com/tripdesk/backoffice/internal/pricing"
	"github.com/tripdesk/backoffice/pkg/config"
	"github.com/tripdesk/backoffice/pkg/db"
	"github.com/tripdesk/backoffice/pkg/logger"
	"github.com/tripdesk/backoffice/pkg/redis"
)

// NewRouter mounts the ops surface. redisClient and idempotencyStore may be
// nil; the readiness probe and replay protection then skip redis.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient redis.Pinger,
	idempotencyStore middleware.IdempotencyStore,
	gatherer prometheus.Gatherer,
	pricingService pricing.Service,
	checker *allotment.Checker,
	bookingService booking.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	deps := map[string]controllers.Pinger{"db": dbP}
	if redisClient != nil {
		deps["redis"] = redisClient
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps))
	})

	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	idempotent := middleware.Idempotency(idempotencyStore, logg)
	allotmentCheck := controllers.AllotmentCheck(nil, logg)
	if checker != nil {
		allotmentCheck = controllers.AllotmentCheck(checker, logg)
	}

	r.Route("/v1", func(r chi.Router) {
		r.Route("/variants/{variantID}", func(r chi.Router) {
			r.Get("/quote", controllers.VariantQuote(pricingService, logg))
			r.Get("/stay-quote", controllers.VariantStayQuote(pricingService, logg))
		})

		r.Get("/partners/{partnerID}/variants/{variantID}/allotment", allotmentCheck)

		r.Route("/reservations", func(r chi.Router) {
			r.Get("/", controllers.ReservationList(bookingService, logg))
			r.With(idempotent).Post("/", controllers.ReservationCreate(bookingService, logg))
			r.Get("/{reservationID}", controllers.ReservationGet(bookingService, logg))
			r.With(idempotent).Delete("/{reservationID}", controllers.ReservationCancel(bookingService, logg))
		})
	})

	return r
}
