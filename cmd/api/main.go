package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/syed-hamad/Retail-POS-sub001/api/controllers"
	"github.com/syed-hamad/Retail-POS-sub001/api/routes"
	"github.com/syed-hamad/Retail-POS-sub001/internal/analytics"
	"github.com/syed-hamad/Retail-POS-sub001/internal/catalog"
	"github.com/syed-hamad/Retail-POS-sub001/internal/customers"
	"github.com/syed-hamad/Retail-POS-sub001/internal/orders"
	"github.com/syed-hamad/Retail-POS-sub001/internal/profile"
	"github.com/syed-hamad/Retail-POS-sub001/internal/staff"
	"github.com/syed-hamad/Retail-POS-sub001/pkg/auth/session"
	"github.com/syed-hamad/Retail-POS-sub001/pkg/config"
	"github.com/syed-hamad/Retail-POS-sub001/pkg/db"
	"github.com/syed-hamad/Retail-POS-sub001/pkg/docstore"
	"github.com/syed-hamad/Retail-POS-sub001/pkg/logger"
	"github.com/syed-hamad/Retail-POS-sub001/pkg/metrics"
	"github.com/syed-hamad/Retail-POS-sub001/pkg/redis"
)

const shutdownGrace = 15 * time.Second

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

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "api server exited with error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		closeErr := dbClient.Close()
		return multierr.Append(err, closeErr)
	}

	notifier := docstore.NewRedisNotifier(redisClient, cfg.Docstore.NotifyChannelPrefix, logg)
	store, err := docstore.New(dbClient.DB(), notifier,
		orders.CollectionSpec(),
		catalog.CollectionSpec(),
		customers.CollectionSpec(),
		profile.CollectionSpec(),
		staff.CollectionSpec(),
	)
	if err != nil {
		return multierr.Combine(err, redisClient.Close(), dbClient.Close())
	}

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		return multierr.Combine(err, redisClient.Close(), dbClient.Close())
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	services, err := buildServices(cfg, logg, store, redisClient, registry)
	if err != nil {
		return multierr.Combine(err, redisClient.Close(), dbClient.Close())
	}

	router := routes.NewRouter(routes.Params{
		Config:   cfg,
		Logger:   logg,
		Redis:    redisClient,
		Sessions: sessionManager,
		Registry: registry,
		Pingers: map[string]controllers.Pinger{
			"postgres": dbClient,
			"redis":    redisClient,
		},
		Staff:     services.staff,
		Orders:    services.orders,
		Catalog:   services.catalog,
		Customers: services.customers,
		Analytics: services.analytics,
		Profile:   services.profile,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	server := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		startCtx := logg.WithFields(context.Background(), map[string]any{
			"env":  cfg.App.Env,
			"addr": server.Addr,
		})
		logg.Info(startCtx, "starting api server")
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if err != nil && err != http.ErrServerClosed {
			return multierr.Combine(err, redisClient.Close(), dbClient.Close())
		}
	case <-ctx.Done():
		logg.Info(context.Background(), "shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()

	var errs error
	if err := server.Shutdown(shutdownCtx); err != nil {
		errs = multierr.Append(errs, err)
	}
	if err := redisClient.Close(); err != nil {
		errs = multierr.Append(errs, err)
	}
	if err := dbClient.Close(); err != nil {
		errs = multierr.Append(errs, err)
	}
	if errs == nil {
		logg.Info(context.Background(), "api server stopped cleanly")
	}
	return errs
}

type serviceSet struct {
	staff     staff.Service
	orders    orders.Service
	catalog   catalog.Service
	customers customers.Service
	analytics analytics.Service
	profile   profile.Service
}

func buildServices(cfg *config.Config, logg *logger.Logger, store *docstore.Store, redisClient *redis.Client, registry *prometheus.Registry) (serviceSet, error) {
	staffSvc, err := staff.NewService(staff.NewRepository(store))
	if err != nil {
		return serviceSet{}, err
	}

	catalogSvc, err := catalog.NewService(catalog.NewRepository(store))
	if err != nil {
		return serviceSet{}, err
	}

	customerSvc, err := customers.NewService(customers.NewRepository(store))
	if err != nil {
		return serviceSet{}, err
	}

	profileSvc, err := profile.NewService(profile.NewRepository(store))
	if err != nil {
		return serviceSet{}, err
	}

	ordersRepo := orders.NewRepository(store)
	feed, err := orders.NewFeed(ordersRepo, metrics.NewFeedMetrics(registry))
	if err != nil {
		return serviceSet{}, err
	}
	orderSvc, err := orders.NewService(orders.ServiceParams{
		Repo:          ordersRepo,
		Feed:          feed,
		Bills:         redisClient,
		Charges:       profileSvc,
		Customers:     customerSvc,
		Logger:        logg,
		SnapshotLimit: cfg.Docstore.SnapshotLimit,
	})
	if err != nil {
		return serviceSet{}, err
	}

	analyticsSvc, err := analytics.NewService(orderSvc)
	if err != nil {
		return serviceSet{}, err
	}

	return serviceSet{
		staff:     staffSvc,
		orders:    orderSvc,
		catalog:   catalogSvc,
		customers: customerSvc,
		analytics: analyticsSvc,
		profile:   profileSvc,
	}, nil
}
