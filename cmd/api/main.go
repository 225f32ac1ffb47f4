package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/toychauz/toycha-backend/api/routes"
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
	"github.com/toychauz/toycha-backend/pkg/logger"
	"github.com/toychauz/toycha-backend/pkg/metrics"
	"github.com/toychauz/toycha-backend/pkg/migrate"
	"github.com/toychauz/toycha-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		fatal(logg, "failed to load config", err)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		fatal(logg, "failed to bootstrap database", err)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		fatal(logg, "failed to run dev migrations", err)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		fatal(logg, "failed to bootstrap redis", err)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		fatal(logg, "failed to create session manager", err)
	}

	gormDB := dbClient.DB()
	marketRepo := market.NewRepository(gormDB)
	deliverRepo := deliver.NewRepository(gormDB)
	categoryRepo := category.NewRepository(gormDB)
	productRepo := product.NewRepository(gormDB)
	limitRepo := limits.NewRepository(gormDB)
	orderRepo := orders.NewRepository(gormDB)
	chatRepo := chat.NewRepository(gormDB)

	categoryService, err := category.NewService(categoryRepo)
	if err != nil {
		fatal(logg, "failed to create category service", err)
	}
	productService, err := product.NewService(productRepo, categoryService)
	if err != nil {
		fatal(logg, "failed to create product service", err)
	}
	marketService, err := market.NewService(marketRepo, cfg.Password)
	if err != nil {
		fatal(logg, "failed to create market service", err)
	}
	deliverService, err := deliver.NewService(deliverRepo, cfg.Password)
	if err != nil {
		fatal(logg, "failed to create deliver service", err)
	}
	limitService, err := limits.NewService(limitRepo)
	if err != nil {
		fatal(logg, "failed to create limits service", err)
	}
	orderService, err := orders.NewService(orders.ServiceParams{
		Repo:     orderRepo,
		Tx:       dbClient,
		Products: productService,
		Limits:   limitService,
	})
	if err != nil {
		fatal(logg, "failed to create orders service", err)
	}
	chatService, err := chat.NewService(chatRepo)
	if err != nil {
		fatal(logg, "failed to create chat service", err)
	}
	authService, err := auth.NewService(auth.ServiceParams{
		Markets:        marketRepo,
		Delivers:       deliverRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
	})
	if err != nil {
		fatal(logg, "failed to create auth service", err)
	}

	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := metrics.NewHTTPMetrics(promRegistry)

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
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, sessionManager, httpMetrics, promRegistry, routes.Services{
			Auth:       authService,
			Orders:     orderService,
			Products:   productService,
			Categories: categoryService,
			Markets:    marketService,
			Delivers:   deliverService,
			Limits:     limitService,
			Chat:       chatService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func fatal(logg *logger.Logger, msg string, err error) {
	logg.Error(context.Background(), msg, err)
	os.Exit(1)
}
