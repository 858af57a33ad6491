// Package config provides configuration structures and validation for the harness.
// It handles environment-based configuration for the ledger client, the scenario
// suite, the fake ledger server, and the optional report sinks.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Config holds the complete application configuration with settings for all components.
// Sink sections are only validated when the sink is enabled.
type Config struct {
	Application ApplicationConfig
	Logging     LoggingConfig
	Server      ServerConfig
	Ledger      LedgerConfig
	Scenario    ScenarioConfig
	FakeLedger  FakeLedgerConfig
	Kafka       KafkaConfig
	Postgres    PostgresConfig
	MongoDB     MongoDBConfig
	WorkerPool  WorkerPoolConfig
}

// ApplicationConfig contains general application configuration
type ApplicationConfig struct {
	Env  string
	Name string
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level string
}

// ServerConfig contains HTTP server configuration for the fake ledger
type ServerConfig struct {
	Port            int           // Port to listen on
	BasePath        string        // Route prefix, mirrors the remote ledger's service path
	ShutdownTimeout time.Duration // Grace period for server shutdown
	ReadTimeout     time.Duration // Maximum duration for reading entire request
	WriteTimeout    time.Duration // Maximum duration for writing response
	IdleTimeout     time.Duration // Maximum duration to wait for next request
}

// LedgerConfig describes how to reach the ledger under test
type LedgerConfig struct {
	BaseURL string
	Timeout time.Duration
	Accept  string
}

// ScenarioConfig parameterizes the default scenario suite
type ScenarioConfig struct {
	CustomerID          string
	AccountID           string
	OverdraftAccountID  string
	TargetBalance       decimal.Decimal
	DepositAmount       decimal.Decimal
	WithdrawAmount      decimal.Decimal
	OverdraftMargin     decimal.Decimal
	ReconcileTolerance  decimal.Decimal
	Timeout             time.Duration // Deadline applied to each scenario
	AllowCreditAccounts bool
}

// FakeLedgerConfig seeds the in-memory ledger
type FakeLedgerConfig struct {
	AllowOverdraft bool
	SeedCustomerID string
	SeedAccountIDs []string
	SeedBalance    decimal.Decimal
}

// KafkaConfig contains Kafka configuration for publishing scenario runs
type KafkaConfig struct {
	Enabled           bool
	Brokers           string
	ResultsTopic      string
	NumPartitions     int // Number of partitions for topics
	ReplicationFactor int // Replication factor for topics
	WriteTimeout      time.Duration
	ConsumerGroup     string        // Group used by the run recorder
	MinBytes          int           // Minimum fetch size for the run recorder
	MaxBytes          int           // Maximum fetch size for the run recorder
	MaxWait           time.Duration // Maximum time the reader waits for MinBytes
}

// PostgresConfig contains PostgreSQL configuration
type PostgresConfig struct {
	Enabled         bool
	URL             string        // Database connection string
	MaxConns        int32         // Maximum number of open connections
	MinConns        int32         // Maximum number of idle connections
	ConnMaxLifetime time.Duration // Maximum lifetime of a connection
	ConnMaxIdleTime time.Duration // Maximum idle time of a connection
	MigrationsPath  string        // Path to migration files
}

// MongoDBConfig contains MongoDB configuration
type MongoDBConfig struct {
	Enabled         bool
	URI             string
	Database        string
	Timeout         time.Duration
	MaxPoolSize     uint64
	MinPoolSize     uint64
	MaxConnIdleTime time.Duration
}

// WorkerPoolConfig contains worker pool configuration
type WorkerPoolConfig struct {
	Size int // Maximum number of scenario partitions run at once
}

// validate performs validation of all configuration values,
// collecting every problem instead of stopping at the first one
func (c *Config) validate() error {
	var validationErrors []string

	// Validate Server config
	if c.Server.Port <= 0 {
		validationErrors = append(validationErrors, "SERVER_PORT must be greater than 0")
	}
	if c.Server.ShutdownTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_SHUTDOWN_TIMEOUT must be greater than 0")
	}
	if c.Server.ReadTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_READ_TIMEOUT must be greater than 0")
	}
	if c.Server.WriteTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_WRITE_TIMEOUT must be greater than 0")
	}
	if c.Server.IdleTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_IDLE_TIMEOUT must be greater than 0")
	}

	// Validate Ledger config
	if c.Ledger.BaseURL == "" {
		validationErrors = append(validationErrors, "LEDGER_BASE_URL is required")
	}
	if c.Ledger.Timeout <= 0 {
		validationErrors = append(validationErrors, "LEDGER_TIMEOUT must be greater than 0")
	}
	if c.Ledger.Accept == "" {
		validationErrors = append(validationErrors, "LEDGER_ACCEPT is required")
	}

	// Validate Scenario config
	if c.Scenario.CustomerID == "" {
		validationErrors = append(validationErrors, "SCENARIO_CUSTOMER_ID is required")
	}
	if c.Scenario.AccountID == "" {
		validationErrors = append(validationErrors, "SCENARIO_ACCOUNT_ID is required")
	}
	if c.Scenario.TargetBalance.IsNegative() {
		validationErrors = append(validationErrors, "SCENARIO_TARGET_BALANCE must not be negative")
	}
	if !c.Scenario.DepositAmount.IsPositive() {
		validationErrors = append(validationErrors, "SCENARIO_DEPOSIT_AMOUNT must be greater than 0")
	}
	if !c.Scenario.WithdrawAmount.IsPositive() {
		validationErrors = append(validationErrors, "SCENARIO_WITHDRAW_AMOUNT must be greater than 0")
	}
	if !c.Scenario.OverdraftMargin.IsPositive() {
		validationErrors = append(validationErrors, "SCENARIO_OVERDRAFT_MARGIN must be greater than 0")
	}
	if !c.Scenario.ReconcileTolerance.IsPositive() {
		validationErrors = append(validationErrors, "SCENARIO_RECONCILE_TOLERANCE must be greater than 0")
	}
	if c.Scenario.Timeout <= 0 {
		validationErrors = append(validationErrors, "SCENARIO_TIMEOUT must be greater than 0")
	}

	// Validate Kafka config
	if c.Kafka.Enabled {
		if c.Kafka.Brokers == "" {
			validationErrors = append(validationErrors, "KAFKA_BROKERS is required")
		}
		if c.Kafka.ResultsTopic == "" {
			validationErrors = append(validationErrors, "KAFKA_RESULTS_TOPIC is required")
		}
		if c.Kafka.WriteTimeout <= 0 {
			validationErrors = append(validationErrors, "KAFKA_WRITE_TIMEOUT must be greater than 0")
		}
		if c.Kafka.ConsumerGroup == "" {
			validationErrors = append(validationErrors, "KAFKA_CONSUMER_GROUP is required")
		}
		if c.Kafka.MinBytes <= 0 || c.Kafka.MaxBytes < c.Kafka.MinBytes {
			validationErrors = append(validationErrors, "KAFKA_MIN_BYTES must be greater than 0 and not above KAFKA_MAX_BYTES")
		}
	}

	// Validate PostgreSQL config
	if c.Postgres.Enabled {
		if c.Postgres.URL == "" {
			validationErrors = append(validationErrors, "POSTGRES_URL is required")
		}
		if c.Postgres.MaxConns <= 0 {
			validationErrors = append(validationErrors, "POSTGRES_MAX_CONNS must be greater than 0")
		}
		if c.Postgres.MinConns <= 0 {
			validationErrors = append(validationErrors, "POSTGRES_MIN_CONNS must be greater than 0")
		}
		if c.Postgres.ConnMaxLifetime <= 0 {
			validationErrors = append(validationErrors, "POSTGRES_MAX_CONN_LIFETIME must be greater than 0")
		}
		if c.Postgres.ConnMaxIdleTime <= 0 {
			validationErrors = append(validationErrors, "POSTGRES_MAX_CONN_IDLE_TIME must be greater than 0")
		}
	}

	// Validate MongoDB config
	if c.MongoDB.Enabled {
		if c.MongoDB.URI == "" {
			validationErrors = append(validationErrors, "MONGO_URI is required")
		}
		if c.MongoDB.Database == "" {
			validationErrors = append(validationErrors, "MONGO_DATABASE is required")
		}
		if c.MongoDB.Timeout <= 0 {
			validationErrors = append(validationErrors, "MONGO_TIMEOUT must be greater than 0")
		}
		if c.MongoDB.MaxPoolSize <= 0 {
			validationErrors = append(validationErrors, "MONGO_MAX_POOL_SIZE must be greater than 0")
		}
	}

	// Validate WorkerPool config
	if c.WorkerPool.Size <= 0 {
		validationErrors = append(validationErrors, "WORKER_POOL_SIZE must be greater than 0")
	}

	if len(validationErrors) > 0 {
		return errors.New(strings.Join(validationErrors, ", "))
	}

	return nil
}
