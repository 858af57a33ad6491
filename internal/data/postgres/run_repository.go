// Package postgres stores scenario runs and their check results in PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/parabank-conformance/internal/domain/report"
	"github.com/parabank-conformance/internal/platform/persistence"
)

// defaultListLimit caps ListByResource when the caller passes no limit
const defaultListLimit = 50

// RunRepository implements the report.RunRepository interface for PostgreSQL
type RunRepository struct {
	db     persistence.TxQuerier
	logger *slog.Logger
}

// NewRunRepository creates a new PostgreSQL run repository
func NewRunRepository(logger *slog.Logger, db *persistence.PostgresDB) report.RunRepository {
	return &RunRepository{
		db:     db.Pool(),
		logger: logger,
	}
}

// Save stores a finished run and its checks atomically
func (r *RunRepository) Save(ctx context.Context, run *report.Run) error {
	runQuery := `
		INSERT INTO scenario_runs (id, scenario, resource, status, known_unsafe, error, started_at, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	checkQuery := `
		INSERT INTO check_results (run_id, position, name, passed, detail)
		VALUES ($1, $2, $3, $4, $5)
	`

	err := persistence.WithinTx(ctx, r.db, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, runQuery,
			run.ID,
			run.Scenario,
			run.Resource,
			string(run.Status),
			run.KnownUnsafe,
			run.Error,
			run.StartedAt,
			run.FinishedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert run: %w", err)
		}

		for i, check := range run.Checks {
			if _, err := tx.Exec(ctx, checkQuery, run.ID, i, check.Name, check.Passed, check.Detail); err != nil {
				return fmt.Errorf("failed to insert check %s: %w", check.Name, err)
			}
		}
		return nil
	})
	if err != nil {
		r.logger.Error("Failed to save scenario run", "run_id", run.ID.String(), "error", err)
		return fmt.Errorf("failed to save scenario run: %w", err)
	}

	r.logger.Debug("Saved scenario run", "run_id", run.ID.String(), "checks", len(run.Checks))
	return nil
}

// GetByID retrieves a run with its checks in recorded order
func (r *RunRepository) GetByID(ctx context.Context, id uuid.UUID) (*report.Run, error) {
	query := `
		SELECT id, scenario, resource, status, known_unsafe, error, started_at, finished_at
		FROM scenario_runs
		WHERE id = $1
	`

	run, err := scanRun(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, report.ErrRunNotFound{RunID: id}
		}
		r.logger.Error("Failed to get scenario run", "run_id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get scenario run: %w", err)
	}

	if run.Checks, err = r.getChecks(ctx, id); err != nil {
		return nil, err
	}
	return run, nil
}

// ListByResource returns the most recent runs touching resource, newest first
func (r *RunRepository) ListByResource(ctx context.Context, resource string, limit int) ([]*report.Run, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	query := `
		SELECT id, scenario, resource, status, known_unsafe, error, started_at, finished_at
		FROM scenario_runs
		WHERE resource = $1
		ORDER BY started_at DESC
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, resource, limit)
	if err != nil {
		r.logger.Error("Failed to list scenario runs", "resource", resource, "error", err)
		return nil, fmt.Errorf("failed to list scenario runs: %w", err)
	}

	var runs []*report.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			rows.Close()
			r.logger.Error("Failed to scan scenario run", "error", err)
			return nil, fmt.Errorf("failed to scan scenario run: %w", err)
		}
		runs = append(runs, run)
	}
	rows.Close()

	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating over scenario runs", "error", err)
		return nil, fmt.Errorf("error iterating over scenario runs: %w", err)
	}

	for _, run := range runs {
		if run.Checks, err = r.getChecks(ctx, run.ID); err != nil {
			return nil, err
		}
	}
	return runs, nil
}

func (r *RunRepository) getChecks(ctx context.Context, runID uuid.UUID) ([]report.CheckResult, error) {
	query := `
		SELECT name, passed, detail
		FROM check_results
		WHERE run_id = $1
		ORDER BY position ASC
	`

	rows, err := r.db.Query(ctx, query, runID)
	if err != nil {
		r.logger.Error("Failed to get check results", "run_id", runID.String(), "error", err)
		return nil, fmt.Errorf("failed to get check results: %w", err)
	}
	defer rows.Close()

	checks := []report.CheckResult{}
	for rows.Next() {
		var check report.CheckResult
		if err := rows.Scan(&check.Name, &check.Passed, &check.Detail); err != nil {
			return nil, fmt.Errorf("failed to scan check result: %w", err)
		}
		checks = append(checks, check)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over check results: %w", err)
	}
	return checks, nil
}

func scanRun(row pgx.Row) (*report.Run, error) {
	var run report.Run
	var status string
	err := row.Scan(
		&run.ID,
		&run.Scenario,
		&run.Resource,
		&status,
		&run.KnownUnsafe,
		&run.Error,
		&run.StartedAt,
		&run.FinishedAt,
	)
	if err != nil {
		return nil, err
	}
	run.Status = report.Status(status)
	return &run, nil
}
