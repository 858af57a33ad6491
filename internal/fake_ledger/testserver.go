package fake_ledger

import (
	"fmt"
	"log/slog"
	"net/http/httptest"
	"time"

	"github.com/parabank-conformance/internal/config"
	"github.com/parabank-conformance/internal/fake_ledger/service"
)

// DefaultBasePath mirrors the reference deployment's service path
const DefaultBasePath = "/parabank/services/bank"

// TestServer is a seeded fake ledger running on a local httptest listener
type TestServer struct {
	*httptest.Server
	Ledger *service.MemoryLedger
}

// BaseURL is the ledger root a client should be pointed at
func (ts *TestServer) BaseURL() string {
	return ts.URL + DefaultBasePath
}

// NewTestServer starts a fake ledger seeded from seed. Callers must Close it.
func NewTestServer(logger *slog.Logger, seed config.FakeLedgerConfig) (*TestServer, error) {
	ledger, err := service.NewSeededLedger(logger, &seed)
	if err != nil {
		return nil, fmt.Errorf("failed to seed fake ledger: %w", err)
	}

	cfg := &config.Config{
		Application: config.ApplicationConfig{Env: "test"},
		Server: config.ServerConfig{
			BasePath:     DefaultBasePath,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 5 * time.Second,
			IdleTimeout:  5 * time.Second,
		},
	}
	srv := NewServer(logger, cfg, ledger)

	return &TestServer{
		Server: httptest.NewServer(srv.Handler()),
		Ledger: ledger,
	}, nil
}
