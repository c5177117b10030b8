package runlog_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/spiral-worksheets/internal/adapter/postgres"
	"github.com/heartmarshall/spiral-worksheets/internal/adapter/postgres/runlog"
	"github.com/heartmarshall/spiral-worksheets/internal/adapter/postgres/testhelper"
	"github.com/heartmarshall/spiral-worksheets/internal/domain"
)

func TestRepo_Integration_RecordRecentPrune(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	repo := runlog.New(pool)
	tx := postgres.NewTxManager(pool)
	ctx := context.Background()

	stage := "it-" + uuid.NewString()[:8]
	old := testhelper.SeedRun(t, pool, stage, time.Now().Add(-48*time.Hour))

	run := sampleRun()
	run.Stage = stage
	run.StartedAt = time.Now().UTC().Truncate(time.Microsecond)
	run.FinishedAt = run.StartedAt.Add(time.Second)

	err := tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := repo.Record(ctx, run); err != nil {
			return err
		}
		_, err := repo.Prune(ctx, time.Now().Add(-24*time.Hour))
		return err
	})
	require.NoError(t, err)

	got, err := repo.Recent(ctx, runlog.MaxLimit)
	require.NoError(t, err)

	var found *domain.Run
	for i := range got {
		assert.NotEqual(t, old, got[i].ID, "pruned run is still listed")
		if got[i].ID == run.ID {
			found = &got[i]
		}
	}
	require.NotNil(t, found, "recorded run not listed")
	assert.Equal(t, run.Counts, found.Counts)
	assert.Equal(t, run.Errors, found.Errors)
	assert.True(t, run.StartedAt.Equal(found.StartedAt))
}

func TestRepo_Integration_RollbackDiscardsRecord(t *testing.T) {
	pool := testhelper.SetupTestDB(t)
	repo := runlog.New(pool)
	tx := postgres.NewTxManager(pool)
	ctx := context.Background()

	run := sampleRun()
	run.StartedAt = time.Now().UTC().Truncate(time.Microsecond)

	err := tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := repo.Record(ctx, run); err != nil {
			return err
		}
		return domain.ErrConflict
	})
	require.ErrorIs(t, err, domain.ErrConflict)

	got, err := repo.Recent(ctx, runlog.MaxLimit)
	require.NoError(t, err)
	for _, r := range got {
		assert.NotEqual(t, run.ID, r.ID, "rolled back run is listed")
	}
}
