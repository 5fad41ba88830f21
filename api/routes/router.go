package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/backoffice/api/controllers"
	"github.com/angelmondragon/backoffice/api/middleware"
	"github.com/angelmondragon/backoffice/internal/access"
	"github.com/angelmondragon/backoffice/internal/auth"
	"github.com/angelmondragon/backoffice/internal/inventory"
	"github.com/angelmondragon/backoffice/internal/orders"
	"github.com/angelmondragon/backoffice/internal/overview"
	"github.com/angelmondragon/backoffice/internal/products"
	"github.com/angelmondragon/backoffice/internal/reviews"
	"github.com/angelmondragon/backoffice/internal/users"
	"github.com/angelmondragon/backoffice/pkg/config"
	"github.com/angelmondragon/backoffice/pkg/db/models"
	"github.com/angelmondragon/backoffice/pkg/enums"
	"github.com/angelmondragon/backoffice/pkg/logger"
	"github.com/angelmondragon/backoffice/pkg/metrics"
	pkgredis "github.com/angelmondragon/backoffice/pkg/redis"
)

type categoryLister interface {
	List(ctx context.Context) ([]models.Category, error)
}

// redisStore is what the router needs from Redis. It stays nil when Redis is
// not configured.
type redisStore interface {
	pkgredis.RateLimiter
	pkgredis.IdempotencyStore
}

// Dependencies carries everything the router wires into handlers.
type Dependencies struct {
	Config     *config.Config
	Logger     *logger.Logger
	Metrics    *metrics.HTTPMetrics
	Redis      redisStore
	Readiness  map[string]controllers.Pinger
	Guard      access.Authorizer
	Auth       auth.Service
	Products   products.Service
	Inventory  inventory.Service
	Orders     orders.Service
	Reviews    reviews.Service
	Users      users.Service
	Overview   overview.Service
	Categories categoryLister
}

func NewRouter(deps Dependencies) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	// An untyped nil keeps the optional Redis middlewares disabled.
	var rateStore pkgredis.RateLimiter
	var idemStore pkgredis.IdempotencyStore
	if deps.Redis != nil {
		rateStore = deps.Redis
		idemStore = deps.Redis
	}

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS),
		deps.Metrics.Middleware,
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	cookies := controllers.NewSessionCookies(cfg.JWT, cfg.App)
	require := func(perm enums.Permission) func(http.Handler) http.Handler {
		return middleware.RequirePermission(deps.Guard, logg, perm)
	}
	idempotent := middleware.Idempotency(idemStore, logg, cfg.Media.MaxUploadBytes())

	productsHandler := controllers.NewProductsHandler(deps.Products, logg, cfg.Media.MaxUploadBytes())
	inventoryHandler := controllers.NewInventoryHandler(deps.Inventory, logg)
	usersHandler := controllers.NewUsersHandler(deps.Users, cookies, logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg.App.Env))
		r.Get("/ready", controllers.HealthReady(cfg.App.Env, deps.Readiness, logg))
	})
	r.Handle("/metrics", deps.Metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.AuthRateLimit(registerPolicy, rateStore, logg)).Post("/register", controllers.AuthRegister(deps.Auth, cookies, logg))
			r.With(middleware.AuthRateLimit(loginPolicy, rateStore, logg)).Post("/login", controllers.AuthLogin(deps.Auth, cookies, logg))
			r.Post("/logout", controllers.AuthLogout(cookies))
			r.With(middleware.Auth(cfg.JWT, logg)).Get("/me", controllers.AuthMe(logg))
		})

		r.Get("/categories", controllers.CategoriesList(deps.Categories, logg))
		r.Get("/reviews/products/{productId}", controllers.ProductReviews(deps.Reviews, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))

			r.Get("/overview", controllers.Overview(deps.Overview, logg))

			r.Route("/products", func(r chi.Router) {
				r.Get("/", productsHandler.List)
				r.Get("/{id}", productsHandler.Get)
				r.With(require(enums.PermissionManageProducts), idempotent).Post("/", productsHandler.Create)
				r.With(require(enums.PermissionManageProducts)).Patch("/{id}", productsHandler.Patch)
				r.With(require(enums.PermissionManageProducts)).Delete("/{id}", productsHandler.Delete)
			})

			r.Route("/inventory", func(r chi.Router) {
				r.Get("/", inventoryHandler.List)
				r.Get("/count", inventoryHandler.Count)
				r.Get("/{productId}", inventoryHandler.Get)
				r.With(require(enums.PermissionManageInventory), idempotent).Post("/", inventoryHandler.BulkUpdate)
			})

			r.Get("/orders", controllers.OrdersList(deps.Orders, logg))
			r.Get("/orders/{productId}", controllers.OrdersForProduct(deps.Orders, logg))
			r.Get("/reviews", controllers.ReviewsList(deps.Reviews, logg))

			r.Route("/users", func(r chi.Router) {
				r.With(require(enums.PermissionManageUsers)).Get("/", usersHandler.List)
				r.With(require(enums.PermissionManageUsers)).Post("/", usersHandler.Create)
				r.With(require(enums.PermissionManageUsers)).Patch("/{id}/permissions", usersHandler.UpdatePermissions)
				r.With(require(enums.PermissionManageUsers)).Delete("/{id}", usersHandler.Delete)
				r.Patch("/{id}", usersHandler.UpdateOwnName)
			})
		})
	})

	return r
}
