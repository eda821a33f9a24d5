package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mercatohq/mercato-backend/api/controllers"
	"github.com/mercatohq/mercato-backend/api/middleware"
	"github.com/mercatohq/mercato-backend/internal/orders"
	"github.com/mercatohq/mercato-backend/internal/products"
	"github.com/mercatohq/mercato-backend/internal/tax"
	"github.com/mercatohq/mercato-backend/pkg/config"
	"github.com/mercatohq/mercato-backend/pkg/db"
	"github.com/mercatohq/mercato-backend/pkg/logger"
	"github.com/mercatohq/mercato-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	registry *prometheus.Registry,
	taxService tax.Service,
	ordersService orders.Service,
	productsService products.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Idempotency(redisClient, logg))
		r.Use(middleware.RateLimit(redisClient, middleware.RateLimitPolicy{
			Limit:  cfg.RateLimit.Limit,
			Window: cfg.RateLimit.Window,
		}, logg))

		r.Route("/tax", func(r chi.Router) {
			r.Post("/quote", controllers.TaxQuote(taxService, logg))
			r.Post("/setup", controllers.TaxSetup(taxService, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", controllers.CreateOrder(ordersService, logg))
			r.Get("/", controllers.ListOrders(ordersService, logg))
			r.Get("/{orderId}", controllers.OrderDetail(ordersService, logg))
			r.Post("/{orderId}/transitions", controllers.OrderTransition(ordersService, logg))
			r.Get("/{orderId}/transitions", controllers.OrderValidTransitions(ordersService, logg))
		})

		r.Route("/products", func(r chi.Router) {
			r.Post("/validate-delete", controllers.ValidateBulkProductDelete(productsService, logg))
			r.Get("/{productId}/validate-delete", controllers.ValidateProductDelete(productsService, logg))
			r.Delete("/{productId}", controllers.DeleteProduct(productsService, logg))
		})
	})

	return r
}
