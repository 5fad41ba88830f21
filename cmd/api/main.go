package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/angelmondragon/backoffice/api/controllers"
	"github.com/angelmondragon/backoffice/api/routes"
	"github.com/angelmondragon/backoffice/internal/access"
	"github.com/angelmondragon/backoffice/internal/auth"
	"github.com/angelmondragon/backoffice/internal/categories"
	"github.com/angelmondragon/backoffice/internal/companies"
	"github.com/angelmondragon/backoffice/internal/inventory"
	"github.com/angelmondragon/backoffice/internal/orders"
	"github.com/angelmondragon/backoffice/internal/overview"
	"github.com/angelmondragon/backoffice/internal/products"
	"github.com/angelmondragon/backoffice/internal/reviews"
	"github.com/angelmondragon/backoffice/internal/users"
	"github.com/angelmondragon/backoffice/pkg/config"
	"github.com/angelmondragon/backoffice/pkg/db"
	"github.com/angelmondragon/backoffice/pkg/instance"
	"github.com/angelmondragon/backoffice/pkg/logger"
	"github.com/angelmondragon/backoffice/pkg/metrics"
	"github.com/angelmondragon/backoffice/pkg/migrate"
	"github.com/angelmondragon/backoffice/pkg/redis"
	"github.com/angelmondragon/backoffice/pkg/storage/gcs"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	requireResource(context.Background(), logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Environment: cfg.App.Env,
		Instance:    instance.GetID(),
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	requireResource(ctx, logg, "database", err)

	err = migrate.MaybeRunDev(ctx, cfg, logg, dbClient)
	requireResource(ctx, logg, "dev migrations", err)

	readiness := map[string]controllers.Pinger{"database": dbClient}
	closers := []func() error{dbClient.Close}

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(ctx, cfg.Redis, logg)
		requireResource(ctx, logg, "redis", err)
		readiness["redis"] = redisClient
		closers = append(closers, redisClient.Close)
	} else {
		logg.Warn(ctx, "redis not configured; auth rate limiting and idempotency are disabled")
	}

	var images products.ImageUploader
	if cfg.GCS.Enabled() {
		gcsClient, err := gcs.NewClient(ctx, cfg.GCS, cfg.GCP, logg)
		requireResource(ctx, logg, "gcs", err)
		images = gcsClient
	} else {
		logg.Warn(ctx, "gcs not configured; image uploads are disabled")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	conn := dbClient.DB()
	userRepo := users.NewRepository(conn)
	companyRepo := companies.NewRepository(conn)
	categoryRepo := categories.NewRepository(conn)
	productRepo := products.NewRepository(conn)
	orderRepo := orders.NewRepository(conn)

	guard, err := access.NewGuard(userRepo)
	requireResource(ctx, logg, "authorization guard", err)

	authService, err := auth.NewService(auth.ServiceParams{
		DB:             dbClient,
		Users:          userRepo,
		Companies:      companyRepo,
		PasswordConfig: cfg.Password,
		JWTConfig:      cfg.JWT,
	})
	requireResource(ctx, logg, "auth service", err)

	userService, err := users.NewService(users.ServiceParams{
		Repo:           userRepo,
		Companies:      companyRepo,
		PasswordConfig: cfg.Password,
		JWTConfig:      cfg.JWT,
	})
	requireResource(ctx, logg, "users service", err)

	productService, err := products.NewService(products.ServiceParams{
		DB:            dbClient,
		Repo:          productRepo,
		Categories:    categoryRepo,
		Images:        images,
		Logger:        logg,
		MaxImageCount: cfg.Media.MaxImageCount,
	})
	requireResource(ctx, logg, "products service", err)

	inventoryService, err := inventory.NewService(inventory.ServiceParams{
		DB:       dbClient,
		Repo:     inventory.NewRepository(conn),
		Orders:   orderRepo,
		Metrics:  metrics.NewInventoryMetrics(registry),
		Logger:   logg,
		MaxItems: cfg.Inventory.BulkMaxItems,
	})
	requireResource(ctx, logg, "inventory service", err)

	orderService, err := orders.NewService(orderRepo)
	requireResource(ctx, logg, "orders service", err)

	reviewService, err := reviews.NewService(reviews.NewRepository(conn))
	requireResource(ctx, logg, "reviews service", err)

	overviewService, err := overview.NewService(productRepo, orderRepo)
	requireResource(ctx, logg, "overview service", err)

	deps := routes.Dependencies{
		Config:     cfg,
		Logger:     logg,
		Metrics:    metrics.NewHTTPMetrics(registry),
		Readiness:  readiness,
		Guard:      guard,
		Auth:       authService,
		Products:   productService,
		Inventory:  inventoryService,
		Orders:     orderService,
		Reviews:    reviewService,
		Users:      userService,
		Overview:   overviewService,
		Categories: categoryRepo,
	}
	if redisClient != nil {
		deps.Redis = redisClient
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	serverCtx := logg.WithField(ctx, "addr", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logg.Info(serverCtx, "starting api server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	exitCode := 0
	select {
	case err := <-serveErr:
		if err != nil {
			logg.Error(serverCtx, "api server stopped unexpectedly", err)
			exitCode = 1
		}
	case <-ctx.Done():
		logg.Info(serverCtx, "shutdown signal received")
	}

	if err := shutdown(server, cfg.App.ShutdownWait, closers); err != nil {
		logg.Error(serverCtx, "shutdown finished with errors", err)
		exitCode = 1
	}
	os.Exit(exitCode)
}

// shutdown drains the server, then closes resources in reverse order of acquisition.
func shutdown(server *http.Server, wait time.Duration, closers []func() error) error {
	if wait <= 0 {
		wait = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), wait)
	defer cancel()

	err := server.Shutdown(ctx)
	for i := len(closers) - 1; i >= 0; i-- {
		err = multierr.Append(err, closers[i]())
	}
	return err
}

func requireResource(ctx context.Context, logg *logger.Logger, name string, err error) {
	if err == nil {
		return
	}
	logg.Error(logg.WithField(ctx, "resource", name), "failed to initialize "+name, err)
	os.Exit(1)
}
