package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/idoblon/vendorrs-backend/api/controllers"
	analyticscontrollers "github.com/idoblon/vendorrs-backend/api/controllers/analytics"
	ordercontrollers "github.com/idoblon/vendorrs-backend/api/controllers/orders"
	"github.com/idoblon/vendorrs-backend/api/middleware"
	"github.com/idoblon/vendorrs-backend/internal/analytics"
	"github.com/idoblon/vendorrs-backend/internal/orders"
	"github.com/idoblon/vendorrs-backend/pkg/config"
	"github.com/idoblon/vendorrs-backend/pkg/enums"
	"github.com/idoblon/vendorrs-backend/pkg/logger"
	"github.com/idoblon/vendorrs-backend/pkg/redis"
)

// Deps carries everything the HTTP surface needs. Nil services answer 500;
// nil pingers are skipped by the readiness probe.
type Deps struct {
	Config      *config.Config
	Logger      *logger.Logger
	DB          controllers.Pinger
	Redis       controllers.Pinger
	Idempotency redis.IdempotencyStore
	Gatherer    prometheus.Gatherer
	Orders      orders.Service
	Analytics   analytics.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSAllowedOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, map[string]controllers.Pinger{
			"db":    deps.DB,
			"redis": deps.Redis,
		}, logg))
	})

	if deps.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(deps.Idempotency, cfg.Eventing.IdempotencyKeyTTL, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Post("/quote", ordercontrollers.Quote(deps.Orders, logg))
			r.With(middleware.RequireRole(logg, enums.UserRoleVendor, enums.UserRoleAdmin)).
				Post("/", ordercontrollers.Create(deps.Orders, logg))
			r.Get("/", ordercontrollers.List(deps.Orders, logg))
			r.Get("/{orderId}", ordercontrollers.Detail(deps.Orders, logg))
			r.Patch("/{orderId}/status", ordercontrollers.Transition(deps.Orders, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(logg, enums.UserRoleAdmin))
				r.Patch("/{orderId}/payment", ordercontrollers.Payment(deps.Orders, logg))
				r.Delete("/{orderId}", ordercontrollers.Delete(deps.Orders, logg))
			})
		})

		r.Route("/analytics", func(r chi.Router) {
			r.Use(middleware.RequireRole(logg, enums.UserRoleAdmin))
			r.Get("/centers/top", analyticscontrollers.TopCenters(deps.Analytics, logg))
			r.Get("/overview", analyticscontrollers.Overview(deps.Analytics, logg))
		})
	})

	return r
}
