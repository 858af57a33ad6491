// Package run_recorder stores run events consumed from Kafka in the run repository.
package run_recorder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/parabank-conformance/internal/domain/report"
)

// RunEventHandler turns run events into stored runs
type RunEventHandler struct {
	repo   report.RunRepository
	logger *slog.Logger
}

// NewRunEventHandler creates a new handler
func NewRunEventHandler(logger *slog.Logger, repo report.RunRepository) *RunEventHandler {
	return &RunEventHandler{
		repo:   repo,
		logger: logger,
	}
}

// HandleMessage stores one run event. Undecodable or invalid events are logged
// and dropped so they never block the partition; storage failures are returned
// so the offset is not committed.
func (h *RunEventHandler) HandleMessage(ctx context.Context, key []byte, value []byte) error {
	var event report.RunEvent
	if err := json.Unmarshal(value, &event); err != nil {
		h.logger.Error("Dropping undecodable run event", "message_key", string(key), "error", err)
		return nil
	}
	if err := event.Validate(); err != nil {
		h.logger.Error("Dropping invalid run event", "message_key", string(key), "error", err)
		return nil
	}

	logger := h.logger.With("run_id", event.RunID.String(), "scenario", event.Scenario)

	// Redelivered events are already stored
	_, err := h.repo.GetByID(ctx, event.RunID)
	switch {
	case err == nil:
		logger.Info("Run already recorded, skipping")
		return nil
	case !errors.Is(err, report.ErrRunNotFound{}):
		return fmt.Errorf("failed to look up run %s: %w", event.RunID, err)
	}

	if err := h.repo.Save(ctx, event.Run()); err != nil {
		logger.Error("Failed to record run", "error", err)
		return fmt.Errorf("failed to record run %s: %w", event.RunID, err)
	}

	logger.Info("Recorded run",
		"resource", event.Resource,
		"status", event.Status,
		"known_unsafe", event.KnownUnsafe,
	)
	return nil
}
