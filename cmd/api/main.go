package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/linkcart/b2b-backend/api/routes"
	"github.com/linkcart/b2b-backend/internal/auth"
	"github.com/linkcart/b2b-backend/internal/companies"
	"github.com/linkcart/b2b-backend/internal/employees"
	"github.com/linkcart/b2b-backend/internal/identity"
	"github.com/linkcart/b2b-backend/internal/links"
	"github.com/linkcart/b2b-backend/internal/products"
	"github.com/linkcart/b2b-backend/internal/stores"
	"github.com/linkcart/b2b-backend/pkg/auth/session"
	"github.com/linkcart/b2b-backend/pkg/config"
	"github.com/linkcart/b2b-backend/pkg/db"
	"github.com/linkcart/b2b-backend/pkg/logger"
	"github.com/linkcart/b2b-backend/pkg/metrics"
	"github.com/linkcart/b2b-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	httpMetrics := metrics.NewHTTPMetrics(registry)

	conn := dbClient.DB()
	identityRepo := identity.NewRepository(conn)
	linkRepo := links.NewRepository(conn)
	companyRepo := companies.NewRepository(conn)
	storeRepo := stores.NewRepository(conn)
	productRepo := products.NewRepository(conn)
	employeeRepo := employees.NewRepository(conn)

	identityService, err := identity.NewService(identityRepo, linkRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create identity service", err)
		os.Exit(1)
	}
	linkService, err := links.NewService(dbClient, linkRepo, companyRepo, storeRepo, productRepo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create link service", err)
		os.Exit(1)
	}
	companyService, err := companies.NewService(dbClient, companyRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create company service", err)
		os.Exit(1)
	}
	employeeService, err := employees.NewService(dbClient, employeeRepo, identityService, cfg.Password, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create employee service", err)
		os.Exit(1)
	}
	productService, err := products.NewService(dbClient, productRepo, linkRepo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create product service", err)
		os.Exit(1)
	}
	authService, err := auth.NewService(auth.ServiceParams{
		TenantRunner:   dbClient,
		Customers:      employeeRepo,
		Identity:       identityService,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:          cfg,
			Logger:          logg,
			DB:              dbClient,
			Redis:           redisClient,
			SessionManager:  sessionManager,
			Metrics:         httpMetrics,
			Gatherer:        registry,
			AuthService:     authService,
			IdentityService: identityService,
			CompanyService:  companyService,
			EmployeeService: employeeService,
			LinkService:     linkService,
			ProductService:  productService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
