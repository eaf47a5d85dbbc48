package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/arcticshore/pickups/config"
	"github.com/arcticshore/pickups/internal/bootstrap"
	"github.com/arcticshore/pickups/internal/cache"
	"github.com/arcticshore/pickups/internal/domain"
	"github.com/arcticshore/pickups/internal/fetch"
	"github.com/arcticshore/pickups/internal/kafka"
	"github.com/arcticshore/pickups/internal/normalize"
	"github.com/arcticshore/pickups/internal/repository"
	"github.com/arcticshore/pickups/internal/service/pickup"
	"github.com/arcticshore/pickups/internal/upstream"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		logrus.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		logrus.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	bookingCache := cache.NewBookingCache(cfg.Redis, time.Duration(cfg.Pickup.CacheTTLHours)*time.Hour)
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	client := upstream.NewClient(cfg.Upstream.BaseURL, upstream.Credentials{
		AccessKey: cfg.Upstream.AccessKey,
		SecretKey: cfg.Upstream.SecretKey,
	})
	fetcher := fetch.NewFetcher(client, bookingCache, normalize.New(), cfg.Pickup.RetentionDays, cfg.Pickup.CreationLookbackDays)
	overrides := repository.NewOverrideStore(pool)

	guides := make([]domain.Guide, 0, len(cfg.Pickup.Guides))
	for _, g := range cfg.Pickup.Guides {
		guides = append(guides, domain.Guide{ID: g.ID, Name: g.Name})
	}

	service := pickup.NewService(
		fetcher,
		overrides,
		guides,
		cfg.Pickup.CurrentGuideID,
		cfg.Pickup.MaxPassengersPerVehicle,
		pickup.WithProducer(producer, cfg.Kafka.PickupEventsTopic),
		pickup.WithSecondaryLoadTimeout(time.Duration(cfg.Pickup.SecondaryLoadTimeoutSecs)*time.Second),
	)

	if err := bootstrap.Run(ctx, cfg, service); err != nil {
		logrus.Fatalf("server error: %v", err)
	}
}
