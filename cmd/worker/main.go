package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/arcticshore/pickups/config"
	"github.com/arcticshore/pickups/internal/cache"
	"github.com/arcticshore/pickups/internal/fetch"
	"github.com/arcticshore/pickups/internal/kafka"
	"github.com/arcticshore/pickups/internal/normalize"
	"github.com/arcticshore/pickups/internal/notify"
	"github.com/arcticshore/pickups/internal/upstream"
)

// The worker consumes pickup events for guide notification and keeps the
// booking cache warm for today, so the fallback strategies have something to
// fall back to once the date slips into the past.
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

	bookingCache := cache.NewBookingCache(cfg.Redis, time.Duration(cfg.Pickup.CacheTTLHours)*time.Hour)
	client := upstream.NewClient(cfg.Upstream.BaseURL, upstream.Credentials{
		AccessKey: cfg.Upstream.AccessKey,
		SecretKey: cfg.Upstream.SecretKey,
	})
	fetcher := fetch.NewFetcher(client, bookingCache, normalize.New(), cfg.Pickup.RetentionDays, cfg.Pickup.CreationLookbackDays)

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.PickupEventsTopic)
	defer consumer.Close()

	notifier := notify.NewNotifier()

	go func() {
		if err := consumer.Consume(ctx, notifier.Notify); err != nil {
			logrus.WithError(err).Info("consumer stopped")
		}
	}()

	warmTicker := time.NewTicker(time.Duration(cfg.Worker.WarmSweepMinutes) * time.Minute)
	defer warmTicker.Stop()

	for {
		select {
		case <-warmTicker.C:
			if _, err := fetcher.BookingsForDate(ctx, time.Now()); err != nil {
				logrus.WithError(err).Warn("cache warm sweep failed")
			}
		case <-ctx.Done():
			logrus.Info("shutting down")
			return
		}
	}
}
