// Package runlog persists stage runner invocations in PostgreSQL.
package runlog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"

	postgres "github.com/heartmarshall/spiral-worksheets/internal/adapter/postgres"
	"github.com/heartmarshall/spiral-worksheets/internal/domain"
)

const (
	runsTable = "pipeline_runs"
	entity    = "pipeline_run"

	// MaxLimit caps Recent.
	MaxLimit = 200
)

var (
	psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	runColumns = []string{
		"id", "stage", "operator", "status", "counts", "errors", "message", "started_at", "finished_at",
	}
)

// runRow is the scan target for pipeline_runs.
type runRow struct {
	ID         uuid.UUID `db:"id"`
	Stage      string    `db:"stage"`
	Operator   string    `db:"operator"`
	Status     string    `db:"status"`
	Counts     []byte    `db:"counts"`
	Errors     []byte    `db:"errors"`
	Message    string    `db:"message"`
	StartedAt  time.Time `db:"started_at"`
	FinishedAt time.Time `db:"finished_at"`
}

// Repo provides run log persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new run log repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// Record inserts a finished run.
func (r *Repo) Record(ctx context.Context, run domain.Run) error {
	counts := run.Counts
	if counts == nil {
		counts = map[string]int{}
	}
	countsJSON, err := json.Marshal(counts)
	if err != nil {
		return fmt.Errorf("%s marshal counts: %w", entity, err)
	}

	itemErrors := run.Errors
	if itemErrors == nil {
		itemErrors = []domain.ItemError{}
	}
	errorsJSON, err := json.Marshal(itemErrors)
	if err != nil {
		return fmt.Errorf("%s marshal errors: %w", entity, err)
	}

	query, args, err := psql.Insert(runsTable).
		Columns(runColumns...).
		Values(
			run.ID, run.Stage, run.Operator, run.Status.String(),
			countsJSON, errorsJSON, run.Message,
			run.StartedAt, run.FinishedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert %s: %w", entity, err)
	}

	if _, err := postgres.QuerierFromCtx(ctx, r.db).Exec(ctx, query, args...); err != nil {
		return postgres.MapError(fmt.Sprintf("record %s %s", entity, run.ID), err)
	}
	return nil
}

// Prune deletes runs started before the given time and returns how many
// were removed.
func (r *Repo) Prune(ctx context.Context, before time.Time) (int64, error) {
	query, args, err := psql.Delete(runsTable).
		Where(squirrel.Lt{"started_at": before}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build delete %s: %w", entity, err)
	}

	tag, err := postgres.QuerierFromCtx(ctx, r.db).Exec(ctx, query, args...)
	if err != nil {
		return 0, postgres.MapError("prune "+entity, err)
	}
	return tag.RowsAffected(), nil
}

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// Recent returns the latest runs, newest first. limit is clamped to
// [1, MaxLimit].
func (r *Repo) Recent(ctx context.Context, limit int) ([]domain.Run, error) {
	limit = max(1, min(limit, MaxLimit))

	query, args, err := psql.Select(runColumns...).
		From(runsTable).
		OrderBy("started_at DESC", "id").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select %s: %w", entity, err)
	}

	var rows []runRow
	if err := pgxscan.Select(ctx, postgres.QuerierFromCtx(ctx, r.db), &rows, query, args...); err != nil {
		return nil, postgres.MapError("list "+entity, err)
	}

	runs := make([]domain.Run, len(rows))
	for i, row := range rows {
		run, err := toDomainRun(row)
		if err != nil {
			return nil, err
		}
		runs[i] = run
	}
	return runs, nil
}

// ---------------------------------------------------------------------------
// Mapping helpers
// ---------------------------------------------------------------------------

func toDomainRun(row runRow) (domain.Run, error) {
	run := domain.Run{
		ID:         row.ID,
		Stage:      row.Stage,
		Operator:   row.Operator,
		Status:     domain.RunStatus(row.Status),
		Message:    row.Message,
		StartedAt:  row.StartedAt,
		FinishedAt: row.FinishedAt,
	}

	if len(row.Counts) > 0 {
		if err := json.Unmarshal(row.Counts, &run.Counts); err != nil {
			return domain.Run{}, fmt.Errorf("%s %s unmarshal counts: %w", entity, row.ID, err)
		}
	}
	if len(row.Errors) > 0 {
		if err := json.Unmarshal(row.Errors, &run.Errors); err != nil {
			return domain.Run{}, fmt.Errorf("%s %s unmarshal errors: %w", entity, row.ID, err)
		}
	}
	if len(run.Errors) == 0 {
		run.Errors = nil
	}

	return run, nil
}
