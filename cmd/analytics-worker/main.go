package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/idoblon/vendorrs-backend/internal/analytics/router"
	"github.com/idoblon/vendorrs-backend/internal/analytics/worker"
	"github.com/idoblon/vendorrs-backend/internal/analytics/writer"
	"github.com/idoblon/vendorrs-backend/pkg/bigquery"
	"github.com/idoblon/vendorrs-backend/pkg/config"
	"github.com/idoblon/vendorrs-backend/pkg/logger"
	"github.com/idoblon/vendorrs-backend/pkg/outbox/idempotency"
	"github.com/idoblon/vendorrs-backend/pkg/outbox/registry"
	"github.com/idoblon/vendorrs-backend/pkg/pubsub"
	"github.com/idoblon/vendorrs-backend/pkg/redis"
)

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: worker.ConsumerName})

	_ = godotenv.Load()

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	cfg.Service.Kind = worker.ConsumerName

	logg = logger.New(logger.Options{
		ServiceName: worker.ConsumerName,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
	})

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	requireResource(ctx, logg, "redis", err)
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(ctx, "failed to close redis client", err)
		}
	}()

	pubsubClient, err := pubsub.NewClient(ctx, cfg.GCP, cfg.PubSub, logg)
	requireResource(ctx, logg, "pubsub", err)
	defer func() {
		if err := pubsubClient.Close(); err != nil {
			logg.Error(ctx, "failed to close pubsub client", err)
		}
	}()

	bqClient, err := bigquery.NewClient(ctx, cfg.GCP, cfg.BigQuery, logg)
	requireResource(ctx, logg, "bigquery client", err)
	defer func() {
		if err := bqClient.Close(); err != nil {
			logg.Error(ctx, "failed to close bigquery client", err)
		}
	}()

	subscription := pubsubClient.OrdersSubscription()
	if subscription == nil {
		requireResource(ctx, logg, "orders subscription", errors.New("subscription not configured"))
	}

	eventRegistry, err := registry.NewEventRegistry(cfg.PubSub)
	requireResource(ctx, logg, "event registry", err)

	manager, err := idempotency.NewManager(redisClient, cfg.Eventing.OutboxIdempotencyTTL)
	requireResource(ctx, logg, "idempotency manager", err)

	revenueWriter, err := writer.New(bqClient, writer.Config{RevenueTable: bqClient.RevenueTable()})
	requireResource(ctx, logg, "revenue bigquery writer", err)

	revenueRouter, err := router.NewRouter(revenueWriter, logg)
	requireResource(ctx, logg, "revenue router", err)

	service, err := worker.NewService(worker.Params{
		Subscription: subscription,
		Registry:     eventRegistry,
		Handler:      revenueRouter,
		Manager:      manager,
		Flusher:      revenueWriter,
		Logger:       logg,
	})
	requireResource(ctx, logg, "analytics worker service", err)

	runCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	runCtx = logg.WithFields(runCtx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
	})
	logg.Info(runCtx, "analytics worker ready")

	if err := service.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(runCtx, "analytics worker failed", err)
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
