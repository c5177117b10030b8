// Package pipeline runs the sheet stages in order and records each
// invocation in the optional run log.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/heartmarshall/spiral-worksheets/internal/domain"
	"github.com/heartmarshall/spiral-worksheets/internal/service/intake"
	"github.com/heartmarshall/spiral-worksheets/internal/service/promotion"
	"github.com/heartmarshall/spiral-worksheets/internal/service/questions"
)

// Stage names accepted by Run.
const (
	StageImport    = "import"
	StageQuestions = "questions"
	StagePromote   = "promote"
	StageAll       = "all"
)

// Stages lists the runnable stages in execution order.
var Stages = []string{StageImport, StageQuestions, StagePromote}

type importer interface {
	Run(ctx context.Context) (intake.Result, error)
}

type questionGenerator interface {
	Run(ctx context.Context) (questions.Result, error)
}

type promoter interface {
	Run(ctx context.Context) (promotion.Result, error)
}

type runLog interface {
	Record(ctx context.Context, run domain.Run) error
	Prune(ctx context.Context, before time.Time) (int64, error)
	Recent(ctx context.Context, limit int) ([]domain.Run, error)
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Runner executes stages. At most one invocation runs at a time within a
// process; a second concurrent call fails with domain.ErrConflict. Other
// processes editing the same spreadsheet are not guarded against.
type Runner struct {
	importer  importer
	questions questionGenerator
	promoter  promoter
	runs      runLog
	tx        txManager
	retention time.Duration
	busy      atomic.Bool
	now       func() time.Time
	log       *slog.Logger
}

// NewRunner creates a stage runner without a run log.
func NewRunner(log *slog.Logger, imp importer, qg questionGenerator, pr promoter) *Runner {
	return &Runner{
		importer:  imp,
		questions: qg,
		promoter:  pr,
		now:       time.Now,
		log:       log.With("service", "pipeline"),
	}
}

// WithRunLog enables run recording. Runs older than retention are pruned
// in the same transaction as each new record; a zero retention keeps all.
func (r *Runner) WithRunLog(runs runLog, tx txManager, retention time.Duration) *Runner {
	r.runs = runs
	r.tx = tx
	r.retention = retention
	return r
}

// HasRunLog reports whether runs are recorded.
func (r *Runner) HasRunLog() bool { return r.runs != nil }

// RecentRuns lists the latest recorded runs.
func (r *Runner) RecentRuns(ctx context.Context, limit int) ([]domain.Run, error) {
	if r.runs == nil {
		return nil, fmt.Errorf("run log is not configured: %w", domain.ErrNotFound)
	}
	return r.runs.Recent(ctx, limit)
}

// ParseStage validates a stage name.
func ParseStage(s string) (string, error) {
	switch s {
	case StageImport, StageQuestions, StagePromote, StageAll:
		return s, nil
	}
	return "", domain.NewValidationError("stage", fmt.Sprintf("unknown stage %q, want import, questions, promote or all", s))
}
