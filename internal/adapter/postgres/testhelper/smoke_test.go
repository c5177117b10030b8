package testhelper

import (
	"context"
	"testing"
	"time"
)

func TestSetupTestDB_Isolated(t *testing.T) {
	first := SetupTestDB(t)
	second := SetupTestDB(t)

	id := SeedRun(t, first, "import", time.Now())

	var stage string
	if err := first.QueryRow(context.Background(),
		`SELECT stage FROM pipeline_runs WHERE id = $1`, id,
	).Scan(&stage); err != nil {
		t.Fatalf("seeded run not found: %v", err)
	}
	if stage != "import" {
		t.Errorf("stage = %q, want import", stage)
	}

	var n int
	if err := second.QueryRow(context.Background(), `SELECT count(*) FROM pipeline_runs`).Scan(&n); err != nil {
		t.Fatalf("count runs: %v", err)
	}
	if n != 0 {
		t.Errorf("second database has %d runs, want 0", n)
	}
}

func TestWithDatabase(t *testing.T) {
	got, err := withDatabase("postgres://u:p@localhost:5432/postgres?sslmode=disable", "runlog_abc")
	if err != nil {
		t.Fatalf("withDatabase: %v", err)
	}
	if want := "postgres://u:p@localhost:5432/runlog_abc?sslmode=disable"; got != want {
		t.Errorf("withDatabase = %q, want %q", got, want)
	}
}
