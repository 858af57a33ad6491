package scenario

import (
	"context"
	"fmt"

	"github.com/parabank-conformance/internal/domain/report"
)

// Sink receives every finished run together with its snapshots
type Sink interface {
	Name() string
	Record(ctx context.Context, run *report.Run, snapshots []report.Snapshot) error
}

// RunPublisher publishes finished runs to a message broker
type RunPublisher interface {
	PublishRun(ctx context.Context, run *report.Run) error
}

// RunRepositorySink stores runs and their checks
type RunRepositorySink struct {
	Repo report.RunRepository
}

func (s RunRepositorySink) Name() string { return "run_repository" }

func (s RunRepositorySink) Record(ctx context.Context, run *report.Run, _ []report.Snapshot) error {
	if err := s.Repo.Save(ctx, run); err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	return nil
}

// SnapshotSink stores the ledger snapshots captured during a run
type SnapshotSink struct {
	Repo report.SnapshotRepository
}

func (s SnapshotSink) Name() string { return "snapshot_repository" }

func (s SnapshotSink) Record(ctx context.Context, _ *report.Run, snapshots []report.Snapshot) error {
	for i := range snapshots {
		if err := s.Repo.Save(ctx, &snapshots[i]); err != nil {
			return fmt.Errorf("failed to save snapshot %s: %w", snapshots[i].Stage, err)
		}
	}
	return nil
}

// PublisherSink publishes each run as an event
type PublisherSink struct {
	Publisher RunPublisher
}

func (s PublisherSink) Name() string { return "run_publisher" }

func (s PublisherSink) Record(ctx context.Context, run *report.Run, _ []report.Snapshot) error {
	return s.Publisher.PublishRun(ctx, run)
}
