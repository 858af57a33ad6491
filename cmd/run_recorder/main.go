package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/parabank-conformance/internal/config"
	"github.com/parabank-conformance/internal/data/postgres"
	"github.com/parabank-conformance/internal/logger"
	"github.com/parabank-conformance/internal/platform/messaging/consumers"
	"github.com/parabank-conformance/internal/platform/persistence"
	"github.com/parabank-conformance/internal/run_recorder"
)

func main() {
	// Create base context with cancellation
	appCtx, cancelAppCtx := context.WithCancel(context.Background())
	defer cancelAppCtx()

	// Initialize configuration
	cfg, err := config.LoadConfig("run_recorder")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewLogger(cfg)

	if !cfg.Kafka.Enabled || !cfg.Postgres.Enabled {
		log.Error("Run recorder needs KAFKA_ENABLED and POSTGRES_ENABLED")
		os.Exit(1)
	}

	postgresDB, err := persistence.NewPostgresDB(appCtx, log, &cfg.Postgres)
	if err != nil {
		log.Error("Failed to initialize PostgreSQL", "error", err)
		os.Exit(1)
	}

	handler := run_recorder.NewRunEventHandler(log, postgres.NewRunRepository(log, postgresDB))
	kafkaConsumer := consumers.NewKafkaConsumer(log, &cfg.Kafka)

	log.Info("Starting run recorder",
		"topic", cfg.Kafka.ResultsTopic,
		"group", cfg.Kafka.ConsumerGroup,
	)
	kafkaConsumer.Subscribe(appCtx, handler.HandleMessage)

	// Set up signal handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case <-kafkaConsumer.Done():
		log.Warn("Consumer stopped unexpectedly")
	}

	// Cancel the application context and wait for the consume loop
	cancelAppCtx()
	select {
	case <-kafkaConsumer.Done():
	case <-time.After(30 * time.Second):
		log.Warn("Shutdown timeout reached, forcing exit")
	}

	if err := kafkaConsumer.Close(); err != nil {
		log.Error("Error closing Kafka consumer", "error", err)
	}
	postgresDB.Close()

	log.Info("Run recorder stopped")
}
