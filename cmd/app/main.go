package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/siddardh-293001/Flight-Booker-Simulator/config"
	"github.com/siddardh-293001/Flight-Booker-Simulator/internal/bookingapi"
	"github.com/siddardh-293001/Flight-Booker-Simulator/internal/bootstrap"
	"github.com/siddardh-293001/Flight-Booker-Simulator/internal/cache"
	"github.com/siddardh-293001/Flight-Booker-Simulator/internal/kafka"
	"github.com/siddardh-293001/Flight-Booker-Simulator/internal/metrics"
	"github.com/siddardh-293001/Flight-Booker-Simulator/internal/pkg/logger"
	"github.com/siddardh-293001/Flight-Booker-Simulator/internal/repository"
	"github.com/siddardh-293001/Flight-Booker-Simulator/internal/service/catalog"
	"github.com/siddardh-293001/Flight-Booker-Simulator/internal/service/checkout"
	"github.com/siddardh-293001/Flight-Booker-Simulator/internal/service/flights"
	"github.com/siddardh-293001/Flight-Booker-Simulator/internal/service/payment"
	"github.com/siddardh-293001/Flight-Booker-Simulator/internal/service/reservation"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	zl, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer zl.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Database.MigrationsAuto {
		if err := repository.RunMigrations(cfg.Database.MigrateURL()); err != nil {
			zl.Fatal("run migrations", zap.Error(err))
		}
	}

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		zl.Fatal("connect postgres", zap.Error(err))
	}
	defer pool.Close()

	redisCache := cache.NewRedisCache(
		cfg.Redis,
		time.Duration(cfg.Checkout.FlightsCacheTTL)*time.Second,
		time.Duration(cfg.Checkout.SeatCatalogTTL)*time.Second,
	)

	producer := kafka.NewProducer(cfg.Kafka.Brokers, zl)
	defer producer.Close()
	if err := producer.CheckConnection(ctx); err != nil {
		zl.Warn("kafka unavailable, checkout events will be dropped", zap.Error(err))
	}

	m := metrics.New()

	client := bookingapi.NewClient(
		cfg.BookingAPI.BaseURL,
		cfg.BookingAPI.Timeout(),
		bookingapi.WithRateLimit(cfg.BookingAPI.RequestsPerSecond, cfg.BookingAPI.Burst),
		bookingapi.WithLogger(zl.Named("bookingapi")),
	)

	flightService := flights.NewFlightService(client, redisCache, zl.Named("flights"))
	catalogService := catalog.NewService(client, redisCache, zl.Named("catalog"))
	orchestrator := reservation.NewOrchestrator(
		client,
		reservation.WithMaxParallel(cfg.BookingAPI.MaxParallelReservations),
		reservation.WithMetrics(m),
		reservation.WithLogger(zl.Named("reservation")),
	)
	coordinator := payment.NewCoordinator(client, m, zl.Named("payment"))

	registry := checkout.NewRegistry(time.Duration(cfg.Checkout.SessionIdleMinutes)*time.Minute, m, zl.Named("sessions"))
	go registry.Run(ctx, time.Duration(cfg.Checkout.SessionSweepMinutes)*time.Minute)

	checkoutService := checkout.NewService(
		registry,
		flightService,
		catalogService,
		orchestrator,
		coordinator,
		checkout.WithReceiptStore(repository.NewReceiptRepository(pool)),
		checkout.WithPublisher(producer, cfg.Kafka.CheckoutEventsTopic, cfg.Kafka.NotificationsTopic),
		checkout.WithFollowUpTimeout(time.Duration(cfg.Checkout.FollowUpTimeoutSec)*time.Second),
		checkout.WithMetrics(m),
		checkout.WithLogger(zl.Named("checkout")),
	)

	if err := bootstrap.Run(ctx, cfg, bootstrap.Deps{
		Flights:  flightService,
		Checkout: checkoutService,
		Metrics:  m,
		Logger:   zl.Named("http"),
	}); err != nil {
		zl.Fatal("server error", zap.Error(err))
	}
}
