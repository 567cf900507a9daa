package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/linkcart/b2b-backend/api/controllers"
	"github.com/linkcart/b2b-backend/api/middleware"
	"github.com/linkcart/b2b-backend/internal/auth"
	"github.com/linkcart/b2b-backend/internal/companies"
	"github.com/linkcart/b2b-backend/internal/employees"
	"github.com/linkcart/b2b-backend/internal/identity"
	"github.com/linkcart/b2b-backend/internal/links"
	"github.com/linkcart/b2b-backend/internal/products"
	"github.com/linkcart/b2b-backend/pkg/auth/session"
	"github.com/linkcart/b2b-backend/pkg/config"
	"github.com/linkcart/b2b-backend/pkg/db"
	"github.com/linkcart/b2b-backend/pkg/enums"
	"github.com/linkcart/b2b-backend/pkg/logger"
	"github.com/linkcart/b2b-backend/pkg/metrics"
	"github.com/linkcart/b2b-backend/pkg/redis"
)

type sessionManager interface {
	session.AccessSessionChecker
	Rotate(context.Context, string, string) (string, string, error)
	Revoke(context.Context, string) error
}

// Deps bundles the wired services the router composes.
type Deps struct {
	Config          *config.Config
	Logger          *logger.Logger
	DB              db.Pinger
	Redis           *redis.Client
	SessionManager  sessionManager
	Metrics         *metrics.HTTPMetrics
	Gatherer        prometheus.Gatherer
	AuthService     auth.Service
	IdentityService identity.Service
	CompanyService  companies.Service
	EmployeeService employees.Service
	LinkService     links.Service
	ProductService  products.Service
}

// NewRouter assembles the HTTP surface. Guard order is fixed: Auth
// resolves the credential, Tenant resolves the authorization context,
// then the per-route guards narrow access; the database policies narrow
// it again independently inside each tenant transaction.
func NewRouter(d Deps) http.Handler {
	cfg := d.Config
	logg := d.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(d.Metrics),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, d.DB, d.Redis))
	})

	if d.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/login", controllers.AuthLogin(d.AuthService, logg))
		r.Post("/logout", controllers.AuthLogout(d.SessionManager, cfg.JWT, logg))
		r.Post("/refresh", controllers.AuthRefresh(d.SessionManager, cfg.JWT, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, d.SessionManager, logg))
		r.Use(middleware.Tenant(d.IdentityService, logg))

		r.Route("/companies", func(r chi.Router) {
			r.With(middleware.RequireRole(enums.UserRolePlatformAdmin, d.Metrics, logg)).
				Post("/", controllers.CompanyCreate(d.CompanyService, logg))
			r.With(middleware.RequireRole(enums.UserRoleCompanyAdmin, d.Metrics, logg)).
				Get("/", controllers.CompanyList(d.CompanyService, logg))

			r.Route("/{id}", func(r chi.Router) {
				r.Use(middleware.RequireCompanyAccess(d.Metrics, logg))

				r.With(middleware.RequireRole(enums.UserRoleCompanyAdmin, d.Metrics, logg)).
					Get("/", controllers.CompanyDetail(d.CompanyService, logg))
				r.With(middleware.RequireRole(enums.UserRoleCompanyAdmin, d.Metrics, logg)).
					Patch("/", controllers.CompanyUpdate(d.CompanyService, logg))

				r.Route("/employees", func(r chi.Router) {
					r.Get("/", controllers.CompanyEmployees(d.EmployeeService, logg))
					r.With(middleware.RequireRole(enums.UserRoleCompanyAdmin, d.Metrics, logg)).
						Post("/", controllers.CompanyEmployeeCreate(d.EmployeeService, logg))
				})

				r.Get("/products", controllers.CompanyProducts(d.ProductService, logg))

				r.Route("/stores", func(r chi.Router) {
					r.With(middleware.RequireRole(enums.UserRoleStoreAdmin, d.Metrics, logg)).
						Get("/", controllers.CompanyStores(d.LinkService, logg))
					r.With(middleware.RequireRole(enums.UserRoleCompanyAdmin, d.Metrics, logg)).
						Post("/", controllers.CompanyStoreLink(d.LinkService, logg))
					r.With(middleware.RequireRole(enums.UserRoleCompanyAdmin, d.Metrics, logg)).
						Delete("/", controllers.CompanyStoreUnlink(d.LinkService, logg))
				})
			})
		})

		r.Route("/stores/{id}/products", func(r chi.Router) {
			r.Use(middleware.RequireStoreAccess(d.LinkService, d.Metrics, logg))
			r.Get("/", controllers.StoreProducts(d.ProductService, logg))
		})

		r.Route("/products/{id}/stores", func(r chi.Router) {
			r.Use(middleware.RequireRole(enums.UserRoleCompanyAdmin, d.Metrics, logg))
			r.Get("/", controllers.ProductStores(d.LinkService, logg))
			r.Post("/", controllers.ProductStoreLink(d.LinkService, logg))
			r.Delete("/", controllers.ProductStoreUnlink(d.LinkService, logg))
		})
	})

	return r
}
