package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/idoblon/vendorrs-backend/internal/cron"
	"github.com/idoblon/vendorrs-backend/internal/inventory"
	"github.com/idoblon/vendorrs-backend/internal/orders"
	"github.com/idoblon/vendorrs-backend/internal/pricing"
	"github.com/idoblon/vendorrs-backend/pkg/config"
	"github.com/idoblon/vendorrs-backend/pkg/db"
	"github.com/idoblon/vendorrs-backend/pkg/instance"
	"github.com/idoblon/vendorrs-backend/pkg/logger"
	"github.com/idoblon/vendorrs-backend/pkg/metrics"
	"github.com/idoblon/vendorrs-backend/pkg/outbox"
	"github.com/idoblon/vendorrs-backend/pkg/redis"
)

const serviceName = "cron-worker"

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: serviceName})

	_ = godotenv.Load()

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)
	cfg.Service.Kind = serviceName

	logg = logger.New(logger.Options{
		ServiceName: serviceName,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
	})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(ctx, "failed to close database", err)
		}
	}()

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	requireResource(ctx, logg, "redis", err)
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(ctx, "failed to close redis client", err)
		}
	}()

	workerMetrics := metrics.NewWorkerMetrics(prometheus.DefaultRegisterer)
	outboxRepo := outbox.NewRepository(dbClient.DB())

	registry := cron.NewRegistry()
	retentionJob, err := cron.NewOutboxRetentionJob(cron.OutboxRetentionJobParams{
		Logger:     logg,
		Repository: outboxRepo,
		Retention:  cfg.Cron.OutboxRetention,
	})
	requireResource(ctx, logg, "outbox retention job", err)
	registry.Register(retentionJob)

	if actorID := strings.TrimSpace(cfg.Cron.SystemActorID); actorID != "" {
		systemActor, err := uuid.Parse(actorID)
		requireResource(ctx, logg, "cron system actor", err)

		orderService, err := orders.NewService(orders.ServiceParams{
			Repo:      orders.NewRepository(dbClient.DB()),
			Tx:        dbClient,
			Outbox:    outbox.NewService(outboxRepo, logg),
			Inventory: inventory.NewManager(dbClient.DB()),
			Pricer:    pricing.NewCalculator(cfg.Pricing.DefaultShipping()),
			Metrics:   metrics.NewOrderMetrics(prometheus.DefaultRegisterer),
			Logger:    logg,
		})
		requireResource(ctx, logg, "orders service", err)

		expiryJob, err := cron.NewOrderExpiryJob(cron.OrderExpiryJobParams{
			Logger:  logg,
			Orders:  orderService,
			ActorID: systemActor,
			TTL:     cfg.Cron.PendingOrderTTL,
		})
		requireResource(ctx, logg, "order expiry job", err)
		registry.Register(expiryJob)
	} else {
		logg.Warn(ctx, "cron system actor not configured, pending order expiry disabled")
	}

	lock, err := redis.NewLease(redisClient, serviceName, instance.ID(), 0)
	requireResource(ctx, logg, "cron lock", err)

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: registry,
		Lock:     lock,
		Metrics:  workerMetrics,
		Interval: cfg.Cron.Interval,
	})
	requireResource(ctx, logg, "cron service", err)

	runCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	runCtx = logg.WithFields(runCtx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
		"interval":    cfg.Cron.Interval.String(),
	})
	logg.Info(runCtx, "cron worker ready")

	if err := service.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(runCtx, "cron worker failed", err)
		os.Exit(1)
	}
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
