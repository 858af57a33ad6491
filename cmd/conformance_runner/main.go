package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/parabank-conformance/internal/config"
	"github.com/parabank-conformance/internal/data/mongo"
	"github.com/parabank-conformance/internal/data/postgres"
	"github.com/parabank-conformance/internal/ledger_client"
	"github.com/parabank-conformance/internal/logger"
	"github.com/parabank-conformance/internal/platform/messaging/producers"
	"github.com/parabank-conformance/internal/platform/persistence"
	"github.com/parabank-conformance/internal/reconciler"
	"github.com/parabank-conformance/internal/scenario"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Cancel the suite on SIGINT/SIGTERM; in-flight scenarios see the cancelled context
	appCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize configuration
	cfg, err := config.LoadConfig("conformance_runner")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		return 1
	}

	// Initialize logger
	log := logger.NewLogger(cfg)

	log.Info("Starting conformance run",
		"ledger", cfg.Ledger.BaseURL,
		"customer_id", cfg.Scenario.CustomerID,
		"account_id", cfg.Scenario.AccountID,
	)

	// Initialize the optional report sinks
	sinks, closeSinks, err := openSinks(appCtx, log, cfg)
	if err != nil {
		log.Error("Failed to initialize report sinks", "error", err)
		return 1
	}
	defer closeSinks()

	// Initialize ledger client and reconciler
	client := ledger_client.NewClient(&cfg.Ledger, log)
	rec := reconciler.New(client, cfg.Scenario.ReconcileTolerance, log)

	runner, err := scenario.NewRunner(client, rec, scenario.RunnerConfig{
		PoolSize: cfg.WorkerPool.Size,
		Timeout:  cfg.Scenario.Timeout,
	}, log, sinks...)
	if err != nil {
		log.Error("Failed to initialize scenario runner", "error", err)
		return 1
	}
	defer runner.Shutdown()

	runs := runner.Run(appCtx, scenario.DefaultSuite(&cfg.Scenario))
	summary := scenario.LogSummary(log, runs)

	if !summary.OK() {
		log.Error("Conformance run found problems", "failed", summary.Failed, "errored", summary.Errored)
		return 1
	}
	log.Info("Conformance run passed")
	return 0
}

// openSinks connects every enabled sink. The returned func closes them all.
func openSinks(ctx context.Context, log *slog.Logger, cfg *config.Config) ([]scenario.Sink, func(), error) {
	var sinks []scenario.Sink
	var closers []func()
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if cfg.Postgres.Enabled {
		postgresDB, err := persistence.NewPostgresDB(ctx, log, &cfg.Postgres)
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("failed to initialize PostgreSQL: %w", err)
		}
		closers = append(closers, postgresDB.Close)
		sinks = append(sinks, scenario.RunRepositorySink{Repo: postgres.NewRunRepository(log, postgresDB)})
	}

	if cfg.MongoDB.Enabled {
		mongoDB, err := persistence.NewMongoDB(ctx, log, &cfg.MongoDB)
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("failed to initialize MongoDB: %w", err)
		}
		closers = append(closers, func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), cfg.MongoDB.Timeout)
			defer cancel()
			if err := mongoDB.Close(closeCtx); err != nil {
				log.Error("Error closing MongoDB connection", "error", err)
			}
		})

		snapshotRepo := mongo.NewSnapshotRepository(log, mongoDB.Database())
		if err := snapshotRepo.EnsureIndexes(ctx); err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("failed to prepare snapshot collection: %w", err)
		}
		sinks = append(sinks, scenario.SnapshotSink{Repo: snapshotRepo})
	}

	if cfg.Kafka.Enabled {
		publisher, err := producers.NewRunPublisher(log, &cfg.Kafka)
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("failed to initialize Kafka run publisher: %w", err)
		}
		closers = append(closers, func() {
			if err := publisher.Close(); err != nil {
				log.Error("Error closing Kafka run publisher", "error", err)
			}
		})
		sinks = append(sinks, scenario.PublisherSink{Publisher: publisher})
	}

	log.Info("Report sinks ready", "count", len(sinks))
	return sinks, closeAll, nil
}
