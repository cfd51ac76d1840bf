// Package routes assembles the HTTP surface: middleware stack, public auth
// endpoints, and the authenticated POS API.
package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/syed-hamad/Retail-POS-sub001/api/controllers"
	"github.com/syed-hamad/Retail-POS-sub001/api/middleware"
	"github.com/syed-hamad/Retail-POS-sub001/internal/analytics"
	"github.com/syed-hamad/Retail-POS-sub001/internal/catalog"
	"github.com/syed-hamad/Retail-POS-sub001/internal/customers"
	"github.com/syed-hamad/Retail-POS-sub001/internal/orders"
	"github.com/syed-hamad/Retail-POS-sub001/internal/profile"
	"github.com/syed-hamad/Retail-POS-sub001/internal/staff"
	"github.com/syed-hamad/Retail-POS-sub001/pkg/auth/session"
	"github.com/syed-hamad/Retail-POS-sub001/pkg/config"
	"github.com/syed-hamad/Retail-POS-sub001/pkg/enums"
	"github.com/syed-hamad/Retail-POS-sub001/pkg/logger"
	"github.com/syed-hamad/Retail-POS-sub001/pkg/redis"
)

// Params groups everything the router needs.
type Params struct {
	Config   *config.Config
	Logger   *logger.Logger
	Redis    *redis.Client
	Sessions *session.Manager
	Registry *prometheus.Registry

	// Readiness probes, keyed by dependency name.
	Pingers map[string]controllers.Pinger

	Staff     staff.Service
	Orders    orders.Service
	Catalog   catalog.Service
	Customers customers.Service
	Analytics analytics.Service
	Profile   profile.Service
}

// NewRouter builds the chi handler tree.
func NewRouter(p Params) http.Handler {
	cfg := p.Config
	logg := p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginNameLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterNameLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, p.Pingers))
	})

	if p.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(p.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, p.Redis, logg)).Post("/login", controllers.AuthLogin(p.Staff, p.Sessions, cfg.JWT, logg))
		r.With(middleware.AuthRateLimit(registerPolicy, p.Redis, logg)).Post("/register", controllers.AuthRegister(p.Staff, p.Sessions, cfg.JWT, logg))
		r.Post("/logout", controllers.AuthLogout(p.Sessions, cfg.JWT, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, p.Sessions, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.OrdersList(p.Orders, logg))
			r.Post("/", controllers.OrdersPlace(p.Orders, logg))
			r.Get("/stream", controllers.OrdersStream(p.Orders, logg))
			r.Get("/grouped", controllers.OrdersGrouped(p.Orders, logg))

			r.Route("/{orderId}", func(r chi.Router) {
				r.Get("/", controllers.OrdersGet(p.Orders, logg))
				r.Post("/status", controllers.OrdersUpdateStatus(p.Orders, logg))
				r.Post("/items/serve", controllers.OrdersServeItem(p.Orders, logg))
				r.Post("/items/add", controllers.OrdersAddItem(p.Orders, logg))
				r.Post("/items/remove", controllers.OrdersRemoveItem(p.Orders, logg))
				r.With(middleware.RequirePermission(enums.PermissionOrdersDiscount, logg)).Post("/discount", controllers.OrdersSetDiscount(p.Orders, logg))
				r.Post("/checkout", controllers.OrdersCheckout(p.Orders, logg))
				r.With(middleware.RequirePermission(enums.PermissionOrdersDelete, logg)).Post("/cancel", controllers.OrdersCancel(p.Orders, logg))
				r.Get("/receipt", controllers.OrdersReceipt(p.Orders, p.Profile, cfg.Printing, logg))
				r.Get("/kot", controllers.OrdersKOT(p.Orders, p.Profile, cfg.Printing, logg))
			})
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ProductsList(p.Catalog, logg))
			r.With(middleware.RequirePermission(enums.PermissionCatalogWrite, logg)).Post("/", controllers.ProductsCreate(p.Catalog, logg))
			r.Route("/{productId}", func(r chi.Router) {
				r.Get("/", controllers.ProductsGet(p.Catalog, logg))
				r.With(middleware.RequirePermission(enums.PermissionCatalogWrite, logg)).Patch("/", controllers.ProductsUpdate(p.Catalog, logg))
				r.With(middleware.RequirePermission(enums.PermissionCatalogWrite, logg)).Delete("/", controllers.ProductsDelete(p.Catalog, logg))
				r.With(middleware.RequirePermission(enums.PermissionCatalogWrite, logg)).Post("/stock", controllers.ProductsAdjustStock(p.Catalog, logg))
			})
		})

		r.Route("/customers", func(r chi.Router) {
			r.Get("/", controllers.CustomersList(p.Customers, logg))
			r.Post("/", controllers.CustomersCreate(p.Customers, logg))
			r.Get("/lookup", controllers.CustomersLookup(p.Customers, logg))
			r.Route("/{customerId}", func(r chi.Router) {
				r.Get("/", controllers.CustomersGet(p.Customers, logg))
				r.Patch("/", controllers.CustomersUpdate(p.Customers, logg))
				r.Delete("/", controllers.CustomersDelete(p.Customers, logg))
			})
		})

		r.Get("/analytics/summary", controllers.AnalyticsSummary(p.Analytics, logg))

		r.Route("/profile", func(r chi.Router) {
			r.Get("/", controllers.ProfileGet(p.Profile, logg))
			r.Put("/", controllers.ProfileUpdate(p.Profile, logg))
			r.Put("/tables", controllers.ProfileUpdateTables(p.Profile, logg))
		})

		r.Route("/staff", func(r chi.Router) {
			r.Get("/", controllers.StaffList(p.Staff, logg))
			r.With(middleware.RequirePermission(enums.PermissionSettingsWrite, logg)).Post("/", controllers.StaffCreate(p.Staff, logg))
			r.With(middleware.RequirePermission(enums.PermissionSettingsWrite, logg)).Post("/{staffId}/active", controllers.StaffSetActive(p.Staff, logg))
		})
	})

	return r
}
