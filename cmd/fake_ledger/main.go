package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/parabank-conformance/internal/config"
	"github.com/parabank-conformance/internal/fake_ledger"
	"github.com/parabank-conformance/internal/fake_ledger/service"
	"github.com/parabank-conformance/internal/logger"
)

func main() {
	// Initialize configuration
	cfg, err := config.LoadConfig("fake_ledger")
	if err != nil {
		// logger is not initialized yet, so we use fmt
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewLogger(cfg)

	ledger, err := service.NewSeededLedger(log, &cfg.FakeLedger)
	if err != nil {
		log.Error("Failed to seed fake ledger", "error", err)
		os.Exit(1)
	}

	server := fake_ledger.NewServer(log, cfg, ledger)
	log.Info("Fake ledger initialized",
		"base_path", cfg.Server.BasePath,
		"allow_overdraft", cfg.FakeLedger.AllowOverdraft,
		"accounts", cfg.FakeLedger.SeedAccountIDs,
	)

	// Create error channel for server errors
	errChan := make(chan error, 1)

	// Start server in goroutine
	go func() {
		if err := server.Start(); err != nil {
			errChan <- err
		}
	}()

	// Set up signal handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Wait for a shutdown signal or error
	var serverErr error
	select {
	case <-quit:
		log.Info("Shutdown signal received")
	case serverErr = <-errChan:
		log.Error("Server error occurred", "error", serverErr)
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()

	if err := server.Stop(shutdownCtx); err != nil {
		log.Error("Error during server shutdown", "error", err)
		serverErr = err
	}

	if serverErr != nil {
		log.Error("Fake ledger stopped with errors")
		os.Exit(1)
	}
	log.Info("Fake ledger stopped")
}
