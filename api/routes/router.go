package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/toychauz/toycha-backend/api/controllers"
	"github.com/toychauz/toycha-backend/api/middleware"
	"github.com/toychauz/toycha-backend/internal/auth"
	category "github.com/toychauz/toycha-backend/internal/categories"
	"github.com/toychauz/toycha-backend/internal/chat"
	deliver "github.com/toychauz/toycha-backend/internal/delivers"
	"github.com/toychauz/toycha-backend/internal/limits"
	market "github.com/toychauz/toycha-backend/internal/markets"
	"github.com/toychauz/toycha-backend/internal/orders"
	product "github.com/toychauz/toycha-backend/internal/products"
	"github.com/toychauz/toycha-backend/pkg/auth/session"
	"github.com/toychauz/toycha-backend/pkg/config"
	"github.com/toychauz/toycha-backend/pkg/db"
	"github.com/toychauz/toycha-backend/pkg/enums"
	"github.com/toychauz/toycha-backend/pkg/logger"
	"github.com/toychauz/toycha-backend/pkg/metrics"
	"github.com/toychauz/toycha-backend/pkg/redis"
)

// Services bundles everything the router wires into handlers.
type Services struct {
	Auth       auth.Service
	Orders     orders.Service
	Products   product.Service
	Categories category.Service
	Markets    market.Service
	Delivers   deliver.Service
	Limits     limits.Service
	Chat       chat.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	sessions session.AccessSessionChecker,
	httpMetrics *metrics.HTTPMetrics,
	promRegistry *prometheus.Registry,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(httpMetrics),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginPhoneLimit,
	)

	// Redis is optional in tests; skip the middleware that depends on it
	// rather than handing typed-nil interfaces down.
	rateLimited := func(next http.Handler) http.Handler { return next }
	idempotency := func(next http.Handler) http.Handler { return next }
	var redisPinger redis.Pinger
	if redisClient != nil {
		rateLimited = middleware.AuthRateLimit(loginPolicy, redisClient, logg)
		idempotency = middleware.Idempotency(redisClient, logg)
		redisPinger = redisClient
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisPinger))
	})

	if promRegistry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(promRegistry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(rateLimited).Post("/market-login", controllers.MarketLogin(svcs.Auth, cfg.JWT, logg))
		r.With(rateLimited).Post("/deliver-login", controllers.DeliverLogin(svcs.Auth, cfg.JWT, logg))
		r.Post("/refresh", controllers.AuthRefresh(svcs.Auth, cfg.JWT, logg))
		r.With(middleware.Auth(cfg.JWT, sessions, logg)).
			Post("/logout", controllers.AuthLogout(svcs.Auth, cfg.JWT, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessions, logg))
		r.Use(idempotency)

		// Market-facing surface.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(string(enums.RoleMarket), logg))

			r.Route("/orders", func(r chi.Router) {
				r.Post("/", controllers.OrderCreate(svcs.Orders, logg))
				r.Get("/", controllers.OrderListForMarket(svcs.Orders, logg))
				r.Get("/products", controllers.MarketCatalog(svcs.Products, logg))
				r.Get("/{id}", controllers.OrderGet(svcs.Orders, logg))
				r.Patch("/{id}", controllers.OrderReplaceLines(svcs.Orders, logg))
				r.Delete("/{id}", controllers.OrderCancel(svcs.Orders, logg))
			})

			r.Get("/contact/chat", controllers.MarketChatThread(svcs.Chat, logg))
			r.Post("/contact", controllers.MarketChatSend(svcs.Chat, logg))
		})

		// Staff-facing surface.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(string(enums.RoleDeliver), logg))

			r.Route("/deliver", func(r chi.Router) {
				// Staff accounts.
				r.Post("/", controllers.DeliverCreate(svcs.Delivers, logg))
				r.Get("/", controllers.DeliverList(svcs.Delivers, logg))

				// Order workflow.
				r.Get("/orders", controllers.DeliverOrderList(svcs.Orders, logg))
				r.Patch("/{id}/accept-order", controllers.DeliverOrderAccept(svcs.Orders, logg))
				r.Patch("/{id}/reject-order", controllers.DeliverOrderReject(svcs.Orders, logg))
				r.Patch("/{id}/delivered-order", controllers.DeliverOrderDelivered(svcs.Orders, logg))
				r.Patch("/order/{id}", controllers.DeliverOrderReplaceLines(svcs.Orders, logg))
				r.Delete("/order/{id}", controllers.DeliverOrderDelete(svcs.Orders, logg))

				// Chat.
				r.Get("/chat/{marketId}", controllers.DeliverChatThread(svcs.Chat, logg))
				r.Post("/send-message/{marketId}", controllers.DeliverChatSend(svcs.Chat, logg))

				// Staff accounts, keyed routes last so static segments win.
				r.Get("/{id}", controllers.DeliverGet(svcs.Delivers, logg))
				r.Patch("/{id}", controllers.DeliverUpdate(svcs.Delivers, logg))
				r.Delete("/{id}", controllers.DeliverDelete(svcs.Delivers, logg))
			})

			r.Route("/markets", func(r chi.Router) {
				r.Post("/", controllers.MarketCreate(svcs.Markets, logg))
				r.Get("/", controllers.MarketList(svcs.Markets, logg))
				r.Get("/{id}", controllers.MarketGet(svcs.Markets, logg))
				r.Patch("/{id}", controllers.MarketUpdate(svcs.Markets, logg))
				r.Delete("/{id}", controllers.MarketDelete(svcs.Markets, logg))
			})

			r.Route("/products", func(r chi.Router) {
				r.Post("/", controllers.ProductCreate(svcs.Products, logg))
				r.Get("/", controllers.ProductList(svcs.Products, logg))
				r.Get("/{id}", controllers.ProductGet(svcs.Products, logg))
				r.Patch("/{id}", controllers.ProductUpdate(svcs.Products, logg))
				r.Delete("/{id}", controllers.ProductDelete(svcs.Products, logg))
			})

			r.Route("/product-category", func(r chi.Router) {
				r.Post("/", controllers.CategoryCreate(svcs.Categories, logg))
				r.Get("/", controllers.CategoryList(svcs.Categories, logg))
				r.Patch("/{id}", controllers.CategoryUpdate(svcs.Categories, logg))
				r.Delete("/{id}", controllers.CategoryDelete(svcs.Categories, logg))
			})

			r.Route("/product-limit", func(r chi.Router) {
				r.Post("/", controllers.LimitSet(svcs.Limits, logg))
				r.Get("/", controllers.LimitList(svcs.Limits, logg))
				r.Get("/{id}", controllers.LimitGet(svcs.Limits, logg))
				r.Patch("/{id}", controllers.LimitUpdate(svcs.Limits, logg))
				r.Delete("/{id}", controllers.LimitDelete(svcs.Limits, logg))
			})
		})
	})

	return r
}
