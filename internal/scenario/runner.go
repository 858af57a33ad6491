package scenario

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/parabank-conformance/internal/domain/report"
	"github.com/parabank-conformance/internal/invariant"
	"github.com/parabank-conformance/internal/ledger_client"
	"github.com/parabank-conformance/internal/reconciler"
)

// defaultSinkTimeout bounds delivery of one run to one sink
const defaultSinkTimeout = 10 * time.Second

// RunnerConfig sizes the worker pool and bounds each scenario
type RunnerConfig struct {
	PoolSize    int
	Timeout     time.Duration // Deadline applied to each scenario
	SinkTimeout time.Duration // Deadline for each sink delivery; defaults to 10s
}

// Runner executes scenarios on an ants worker pool. Scenarios that share a
// resource form one partition and run sequentially on a single worker.
type Runner struct {
	ledger     ledger_client.Ledger
	reconciler *reconciler.Reconciler
	pool        *ants.Pool
	timeout     time.Duration
	sinkTimeout time.Duration
	sinks       []Sink
	logger     *slog.Logger
}

// NewRunner creates a Runner; sinks receive every finished run
func NewRunner(
	ledger ledger_client.Ledger,
	rec *reconciler.Reconciler,
	cfg RunnerConfig,
	logger *slog.Logger,
	sinks ...Sink,
) (*Runner, error) {
	pool, err := ants.NewPool(cfg.PoolSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create worker pool: %w", err)
	}

	sinkTimeout := cfg.SinkTimeout
	if sinkTimeout <= 0 {
		sinkTimeout = defaultSinkTimeout
	}

	return &Runner{
		ledger:      ledger,
		reconciler:  rec,
		pool:        pool,
		timeout:     cfg.Timeout,
		sinkTimeout: sinkTimeout,
		sinks:       sinks,
		logger:      logger,
	}, nil
}

// Run executes all scenarios and returns their runs in suite order.
// Scenario failures are reported in the runs, never as an error.
func (r *Runner) Run(ctx context.Context, scenarios []Scenario) []*report.Run {
	runs := make([]*report.Run, len(scenarios))
	partitions := Partition(scenarios)

	r.logger.Info("Submitting scenarios to worker pool",
		"scenarios", len(scenarios),
		"partitions", len(partitions),
		"capacity", r.pool.Cap(),
	)

	var wg sync.WaitGroup
	for _, partition := range partitions {
		wg.Add(1)
		err := r.pool.Submit(func() {
			defer wg.Done()
			for _, i := range partition {
				runs[i] = r.execute(ctx, scenarios[i])
			}
		})
		if err != nil {
			wg.Done()
			r.logger.Error("Failed to submit partition to worker pool", "error", err)
			for _, i := range partition {
				run := newRun(scenarios[i])
				run.Finish(nil, fmt.Errorf("failed to schedule scenario: %w", err))
				runs[i] = run
				r.record(ctx, run, nil)
			}
		}
	}
	wg.Wait()

	return runs
}

func newRun(sc Scenario) *report.Run {
	run := report.NewRun(sc.Name(), strings.Join(sc.Resources(), ","))
	run.KnownUnsafe = sc.KnownUnsafe()
	return run
}

// execute runs one scenario under its deadline and hands the result to the sinks
func (r *Runner) execute(ctx context.Context, sc Scenario) *report.Run {
	run := newRun(sc)
	logger := r.logger.With("run_id", run.ID.String(), "scenario", sc.Name())
	logger.Info("scenario started", "resource", run.Resource)

	scenarioCtx := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		scenarioCtx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	env := &Env{
		Ledger:     r.ledger,
		Reconciler: r.reconciler,
		Logger:     logger,
		runID:      run.ID,
		scenario:   sc.Name(),
	}
	check := invariant.NewChecker(sc.Name())

	err := runSafely(scenarioCtx, sc, env, check)
	if err == nil {
		err = check.Err()
	}
	run.Finish(check.Results(), err)

	attrs := []any{
		"status", run.Status,
		"checks", len(run.Checks),
		"duration", run.Duration(),
	}
	if run.KnownUnsafe {
		attrs = append(attrs, "known_unsafe", true)
	}
	switch run.Status {
	case report.StatusPassed:
		logger.Info("scenario finished", attrs...)
	case report.StatusFailed:
		logger.Warn("scenario finished", append(attrs, "failed_checks", run.FailedChecks())...)
	default:
		logger.Error("scenario finished", append(attrs, "error", err)...)
	}

	r.record(ctx, run, env.Snapshots())
	return run
}

// runSafely turns a scenario panic into an error so one scenario cannot take down the pool
func runSafely(ctx context.Context, sc Scenario, env *Env, check *invariant.Checker) (err error) {
	defer func() {
		if p := recover(); p != nil {
			env.Logger.Error("Panic recovered in scenario", "error", p, "stack", string(debug.Stack()))
			err = fmt.Errorf("scenario %s panicked: %v", sc.Name(), p)
		}
	}()
	return sc.Run(ctx, env, check)
}

// record delivers a run to every sink; sink failures are logged and do not change the run.
// Delivery outlives cancellation of ctx so runs finished during shutdown are still stored.
func (r *Runner) record(ctx context.Context, run *report.Run, snapshots []report.Snapshot) {
	for _, sink := range r.sinks {
		if err := r.deliver(ctx, sink, run, snapshots); err != nil {
			r.logger.Error("failed to record scenario run",
				"sink", sink.Name(),
				"run_id", run.ID.String(),
				"error", err,
			)
		}
	}
}

func (r *Runner) deliver(ctx context.Context, sink Sink, run *report.Run, snapshots []report.Snapshot) error {
	sinkCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.sinkTimeout)
	defer cancel()
	return sink.Record(sinkCtx, run, snapshots)
}

// Shutdown releases the worker pool
func (r *Runner) Shutdown() {
	r.logger.Info("Shutting down worker pool", "running_workers", r.pool.Running())
	r.pool.Release()
}

// Running returns the number of running workers in the pool
func (r *Runner) Running() int {
	return r.pool.Running()
}

// Capacity returns the capacity of the worker pool
func (r *Runner) Capacity() int {
	return r.pool.Cap()
}

// LogSummary writes one line per run followed by the totals
func LogSummary(logger *slog.Logger, runs []*report.Run) report.Summary {
	for _, run := range runs {
		attrs := []any{
			"scenario", run.Scenario,
			"resource", run.Resource,
			"status", run.Status,
			"duration", run.Duration(),
		}
		if failed := run.FailedChecks(); len(failed) > 0 {
			attrs = append(attrs, "failed_checks", failed)
		}
		if run.Error != "" {
			attrs = append(attrs, "error", run.Error)
		}
		if run.KnownUnsafe {
			attrs = append(attrs, "known_unsafe", true)
		}
		logger.Info("scenario result", attrs...)
	}

	summary := report.Summarize(runs)
	logger.Info("conformance summary",
		"total", summary.Total,
		"passed", summary.Passed,
		"failed", summary.Failed,
		"errored", summary.Errored,
		"known_unsafe", summary.KnownUnsafe,
	)
	return summary
}
