package postgres

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/parabank-conformance/internal/domain/report"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

var runColumns = []string{"id", "scenario", "resource", "status", "known_unsafe", "error", "started_at", "finished_at"}

func newFinishedRun() *report.Run {
	started := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	return &report.Run{
		ID:         uuid.New(),
		Scenario:   "deposit",
		Resource:   "14898",
		Status:     report.StatusFailed,
		Checks:     []report.CheckResult{{Name: "reconciled_to_target", Passed: true, Detail: "balance 1000.00, target 1000"}, {Name: "after_deposit.balance_delta", Passed: false, Detail: "before 1000.00, after 1000.00, expected 1125"}},
		Error:      "invariant violation in deposit: after_deposit.balance_delta",
		StartedAt:  started,
		FinishedAt: started.Add(250 * time.Millisecond),
	}
}

func runRow(run *report.Run) *pgxmock.Rows {
	return pgxmock.NewRows(runColumns).
		AddRow(run.ID, run.Scenario, run.Resource, string(run.Status), run.KnownUnsafe, run.Error, run.StartedAt, run.FinishedAt)
}

func checkRows(checks []report.CheckResult) *pgxmock.Rows {
	rows := pgxmock.NewRows([]string{"name", "passed", "detail"})
	for _, c := range checks {
		rows.AddRow(c.Name, c.Passed, c.Detail)
	}
	return rows
}

func TestRunRepository_Save(t *testing.T) {
	ctx := context.Background()
	run := newFinishedRun()

	t.Run("success", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()
		repo := &RunRepository{db: mock, logger: newTestLogger()}

		mock.ExpectBegin()
		mock.ExpectExec(`INSERT INTO scenario_runs`).
			WithArgs(run.ID, run.Scenario, run.Resource, "FAILED", false, run.Error, run.StartedAt, run.FinishedAt).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mock.ExpectExec(`INSERT INTO check_results`).
			WithArgs(run.ID, 0, "reconciled_to_target", true, run.Checks[0].Detail).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mock.ExpectExec(`INSERT INTO check_results`).
			WithArgs(run.ID, 1, "after_deposit.balance_delta", false, run.Checks[1].Detail).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mock.ExpectCommit()

		assert.NoError(t, repo.Save(ctx, run))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("check insert fails rolls back", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()
		repo := &RunRepository{db: mock, logger: newTestLogger()}

		dbErr := errors.New("value too long")
		mock.ExpectBegin()
		mock.ExpectExec(`INSERT INTO scenario_runs`).WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mock.ExpectExec(`INSERT INTO check_results`).WillReturnError(dbErr)
		mock.ExpectRollback()

		err = repo.Save(ctx, run)
		assert.ErrorIs(t, err, dbErr)
		assert.Contains(t, err.Error(), "failed to save scenario run")
		assert.Contains(t, err.Error(), "failed to insert check reconciled_to_target")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("run insert fails", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()
		repo := &RunRepository{db: mock, logger: newTestLogger()}

		mock.ExpectBegin()
		mock.ExpectExec(`INSERT INTO scenario_runs`).WillReturnError(errors.New("duplicate key"))
		mock.ExpectRollback()

		err = repo.Save(ctx, run)
		assert.ErrorContains(t, err, "failed to insert run")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRunRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	run := newFinishedRun()

	t.Run("success", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()
		repo := &RunRepository{db: mock, logger: newTestLogger()}

		mock.ExpectQuery(`FROM scenario_runs\s+WHERE id = \$1`).WithArgs(run.ID).WillReturnRows(runRow(run))
		mock.ExpectQuery(`FROM check_results`).WithArgs(run.ID).WillReturnRows(checkRows(run.Checks))

		got, err := repo.GetByID(ctx, run.ID)
		require.NoError(t, err)
		assert.Equal(t, run, got)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()
		repo := &RunRepository{db: mock, logger: newTestLogger()}

		mock.ExpectQuery(`FROM scenario_runs`).WithArgs(run.ID).WillReturnError(pgx.ErrNoRows)

		got, err := repo.GetByID(ctx, run.ID)
		assert.Nil(t, got)
		var notFound report.ErrRunNotFound
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, run.ID, notFound.RunID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("checks query fails", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()
		repo := &RunRepository{db: mock, logger: newTestLogger()}

		mock.ExpectQuery(`FROM scenario_runs`).WithArgs(run.ID).WillReturnRows(runRow(run))
		mock.ExpectQuery(`FROM check_results`).WithArgs(run.ID).WillReturnError(errors.New("connection reset"))

		got, err := repo.GetByID(ctx, run.ID)
		assert.Nil(t, got)
		assert.ErrorContains(t, err, "failed to get check results")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRunRepository_ListByResource(t *testing.T) {
	ctx := context.Background()
	newer := newFinishedRun()
	newer.StartedAt = newer.StartedAt.Add(time.Hour)
	newer.FinishedAt = newer.FinishedAt.Add(time.Hour)
	older := newFinishedRun()
	older.Status = report.StatusPassed
	older.Error = ""
	older.Checks = []report.CheckResult{}

	t.Run("success", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()
		repo := &RunRepository{db: mock, logger: newTestLogger()}

		rows := pgxmock.NewRows(runColumns).
			AddRow(newer.ID, newer.Scenario, newer.Resource, string(newer.Status), newer.KnownUnsafe, newer.Error, newer.StartedAt, newer.FinishedAt).
			AddRow(older.ID, older.Scenario, older.Resource, string(older.Status), older.KnownUnsafe, older.Error, older.StartedAt, older.FinishedAt)
		mock.ExpectQuery(`WHERE resource = \$1\s+ORDER BY started_at DESC\s+LIMIT \$2`).WithArgs("14898", 10).WillReturnRows(rows)
		mock.ExpectQuery(`FROM check_results`).WithArgs(newer.ID).WillReturnRows(checkRows(newer.Checks))
		mock.ExpectQuery(`FROM check_results`).WithArgs(older.ID).WillReturnRows(checkRows(nil))

		runs, err := repo.ListByResource(ctx, "14898", 10)
		require.NoError(t, err)
		assert.Equal(t, []*report.Run{newer, older}, runs)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("default limit", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()
		repo := &RunRepository{db: mock, logger: newTestLogger()}

		mock.ExpectQuery(`FROM scenario_runs`).WithArgs("14898", defaultListLimit).WillReturnRows(pgxmock.NewRows(runColumns))

		runs, err := repo.ListByResource(ctx, "14898", 0)
		assert.NoError(t, err)
		assert.Empty(t, runs)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("query fails", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()
		repo := &RunRepository{db: mock, logger: newTestLogger()}

		mock.ExpectQuery(`FROM scenario_runs`).WillReturnError(errors.New("db error"))

		runs, err := repo.ListByResource(ctx, "14898", 5)
		assert.Nil(t, runs)
		assert.ErrorContains(t, err, "failed to list scenario runs")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
