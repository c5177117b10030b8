package testhelper

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SeedRun inserts a finished pipeline run started at startedAt and returns its ID.
func SeedRun(t *testing.T, pool *pgxpool.Pool, stage string, startedAt time.Time) uuid.UUID {
	t.Helper()

	id := uuid.New()
	_, err := pool.Exec(context.Background(),
		`INSERT INTO pipeline_runs (id, stage, operator, status, started_at, finished_at)
		 VALUES ($1, $2, 'seed', 'ok', $3, $3)`,
		id, stage, startedAt.UTC().Truncate(time.Microsecond),
	)
	if err != nil {
		t.Fatalf("testhelper: seed run: %v", err)
	}
	return id
}
