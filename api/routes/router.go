package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mitaxdev/litescripts/api/controllers"
	webhookcontrollers "github.com/mitaxdev/litescripts/api/controllers/webhooks"
	"github.com/mitaxdev/litescripts/api/middleware"
	"github.com/mitaxdev/litescripts/internal/cart"
	"github.com/mitaxdev/litescripts/internal/orders"
	"github.com/mitaxdev/litescripts/internal/products"
	"github.com/mitaxdev/litescripts/internal/users"
	tebexwebhook "github.com/mitaxdev/litescripts/internal/webhooks/tebex"
	"github.com/mitaxdev/litescripts/pkg/config"
	"github.com/mitaxdev/litescripts/pkg/db"
	"github.com/mitaxdev/litescripts/pkg/logger"
	"github.com/mitaxdev/litescripts/pkg/metrics"
	"github.com/mitaxdev/litescripts/pkg/redis"
)

// Deps carries everything the HTTP surface needs.
type Deps struct {
	Config       *config.Config
	Logger       *logger.Logger
	DB           db.Pinger
	Redis        *redis.Client
	Catalog      products.Catalog
	Users        *users.Repository
	CartService  cart.Service
	OrderService orders.Service
	WebhookSvc   *tebexwebhook.Service
	Verifier     *tebexwebhook.Verifier
	WebhookGuard *tebexwebhook.IdempotencyGuard
	Pipeline     *metrics.PipelineMetrics
	Gatherer     prometheus.Gatherer
}

// NewRouter assembles the public API: health probes and the webhook receiver
// stay unauthenticated, everything under /api/v1 except products and webhooks
// requires a bearer token.
func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.Frontend.URL),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, deps.Redis))
	})

	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/tebex", webhookcontrollers.TebexWebhook(deps.WebhookSvc, deps.Verifier, deps.WebhookGuard, logg, deps.Pipeline))
	})

	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", controllers.ProductsList(deps.Catalog, logg))
		r.Get("/{productId}", controllers.ProductDetail(deps.Catalog, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Route("/auth", func(r chi.Router) {
			r.Get("/me", controllers.AuthMe(deps.Users, logg))
			r.Post("/license", controllers.AuthLinkLicense(deps.Users, logg))
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartFetch(deps.CartService, logg))
			r.Post("/items", controllers.CartAddItem(deps.CartService, logg))
			r.Delete("/items/{productId}", controllers.CartRemoveItem(deps.CartService, logg))
			r.Delete("/", controllers.CartClear(deps.CartService, logg))
			r.Post("/checkout", controllers.CartCheckout(deps.CartService, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.OrdersList(deps.OrderService, logg))
			r.Get("/{orderId}", controllers.OrderDetail(deps.OrderService, logg))
		})
	})

	return r
}
