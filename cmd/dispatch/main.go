package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go-crmhub/internal/boot"
	"go-crmhub/internal/config"
	"go-crmhub/internal/consumer/dispatch"
	"go-crmhub/internal/logging"
	"go-crmhub/internal/repository/postgres"

	"go.uber.org/zap"
)

// dispatch worker：消费访问日志与投递事件并落库
func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "configs/config.dev.yaml"
	}
	if _, err := os.Stat(cfgPath); err != nil {
		cfgPath = "configs/config.example.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	db, err := postgres.New(postgres.Config{DSN: cfg.Postgres.DSN, MaxOpen: cfg.Postgres.MaxOpen, MaxIdle: cfg.Postgres.MaxIdle, AutoMigrate: cfg.Postgres.AutoMigrate})
	if err != nil {
		logger.Error("db_open_failed", zap.Error(err))
		os.Exit(1)
	}
	if cfg.Postgres.AutoMigrate {
		if err := postgres.AutoMigrateModels(db, boot.Models()...); err != nil {
			logger.Error("auto_migrate_failed", zap.Error(err))
		}
	}

	c := dispatch.NewConsumer(dispatch.Config{
		Brokers:       cfg.Kafka.Brokers,
		DispatchTopic: cfg.Kafka.DispatchTopic,
		AccessTopic:   cfg.Kafka.AccessTopic,
		GroupID:       cfg.Kafka.GroupID,
	}, db)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("dispatch_consumer_start", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("group", cfg.Kafka.GroupID))
	if err := c.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Error("dispatch_consumer_error", zap.Error(err))
	}
	_ = c.Close()
	logger.Info("dispatch_consumer_stopped")
}
