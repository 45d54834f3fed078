package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/siddardh-293001/Flight-Booker-Simulator/config"
	"github.com/siddardh-293001/Flight-Booker-Simulator/internal/email"
	"github.com/siddardh-293001/Flight-Booker-Simulator/internal/kafka"
	"github.com/siddardh-293001/Flight-Booker-Simulator/internal/pkg/logger"
)

// The worker turns checkout notifications into passenger e-mails.
func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if cfg.Kafka.NotificationsTopic == "" {
		log.Fatalf("kafka.notifications_topic is required for the worker")
	}

	zl, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer zl.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic, zl.Named("consumer"))
	defer consumer.Close()

	sender := email.NewSender(email.NewLogTransport(zl.Named("mail")), zl.Named("email"))

	zl.Info("worker started", zap.String("topic", cfg.Kafka.NotificationsTopic))
	err = consumer.ConsumeEvents(ctx, func(ctx context.Context, event kafka.CheckoutEvent) error {
		if err := sender.Send(ctx, event); err != nil {
			// one undeliverable mail must not stop the worker
			zl.Error("notification failed", zap.String("type", event.Type), zap.String("session_id", event.SessionID), zap.Error(err))
		}
		return nil
	})
	if err != nil && ctx.Err() == nil {
		zl.Error("consumer stopped", zap.Error(err))
	}
	zl.Info("worker stopped")
}
