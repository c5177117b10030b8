package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/spiral-worksheets/internal/domain"
	"github.com/heartmarshall/spiral-worksheets/pkg/ctxutil"
)

// StageReport is the outcome of one stage.
type StageReport struct {
	Stage  string             `json:"stage"`
	Counts map[string]int     `json:"counts"`
	Errors []domain.ItemError `json:"errors,omitempty"`
	Error  string             `json:"error,omitempty"`
}

// Report is the outcome of one Run invocation.
type Report struct {
	RunID  uuid.UUID        `json:"run_id"`
	Stage  string           `json:"stage"`
	Status domain.RunStatus `json:"status"`
	Stages []StageReport    `json:"stages"`
}

// Run executes stage, or every stage in order for StageAll. Stage "all"
// stops at the first stage that returns an error.
//
// The returned error is the stage error, unchanged; the report is filled
// in either way. Status is partial when a stage stopped midway or when
// any item failed, and failed when a stage could not run at all.
func (r *Runner) Run(ctx context.Context, stage string) (Report, error) {
	stage, err := ParseStage(stage)
	if err != nil {
		return Report{}, err
	}

	if !r.busy.CompareAndSwap(false, true) {
		return Report{}, fmt.Errorf("a pipeline run is already in progress: %w", domain.ErrConflict)
	}
	defer r.busy.Store(false)

	report := Report{RunID: uuid.New(), Stage: stage}
	started := r.now()

	log := r.log.With(slog.String("run_id", report.RunID.String()), slog.String("stage", stage))
	log.InfoContext(ctx, "pipeline run started")

	stages := []string{stage}
	if stage == StageAll {
		stages = Stages
	}

	var runErr error
	for _, name := range stages {
		sr, err := r.runStage(ctx, name)
		if err != nil {
			sr.Error = err.Error()
		}
		report.Stages = append(report.Stages, sr)
		log.InfoContext(ctx, "stage finished",
			slog.String("name", name),
			slog.Any("counts", sr.Counts),
			slog.Int("item_errors", len(sr.Errors)),
		)
		if err != nil {
			runErr = err
			break
		}
	}

	report.Status = status(report, runErr)
	if runErr != nil {
		log.ErrorContext(ctx, "pipeline run stopped",
			slog.String("status", report.Status.String()),
			slog.String("error", runErr.Error()),
		)
	} else {
		log.InfoContext(ctx, "pipeline run finished", slog.String("status", report.Status.String()))
	}

	r.record(ctx, report, started, runErr)

	return report, runErr
}

func (r *Runner) runStage(ctx context.Context, name string) (StageReport, error) {
	sr := StageReport{Stage: name}
	switch name {
	case StageImport:
		res, err := r.importer.Run(ctx)
		sr.Counts, sr.Errors = res.Counts(), res.Errors
		return sr, err
	case StageQuestions:
		res, err := r.questions.Run(ctx)
		sr.Counts, sr.Errors = res.Counts(), res.Errors
		return sr, err
	case StagePromote:
		res, err := r.promoter.Run(ctx)
		sr.Counts, sr.Errors = res.Counts(), res.Errors
		return sr, err
	}
	return sr, fmt.Errorf("stage %q: %w", name, domain.ErrValidation)
}

func status(report Report, err error) domain.RunStatus {
	switch {
	case domain.IsPartial(err):
		return domain.RunPartial
	case err != nil:
		return domain.RunFailed
	}
	for _, s := range report.Stages {
		if len(s.Errors) > 0 {
			return domain.RunPartial
		}
	}
	return domain.RunOK
}

// record writes the run log entry. A run log failure is logged and never
// changes the outcome of the run.
func (r *Runner) record(ctx context.Context, report Report, started time.Time, runErr error) {
	if r.runs == nil {
		return
	}

	operator, _ := ctxutil.OperatorFromCtx(ctx)
	run := domain.Run{
		ID:         report.RunID,
		Stage:      report.Stage,
		Operator:   operator,
		Status:     report.Status,
		Counts:     map[string]int{},
		StartedAt:  started,
		FinishedAt: r.now(),
	}
	for _, s := range report.Stages {
		for k, v := range s.Counts {
			if report.Stage == StageAll {
				k = s.Stage + "." + k
			}
			run.Counts[k] = v
		}
		run.Errors = append(run.Errors, s.Errors...)
	}
	if runErr != nil {
		run.Message = runErr.Error()
	}

	// The run happened even if the caller went away.
	ctx = context.WithoutCancel(ctx)
	err := r.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := r.runs.Record(ctx, run); err != nil {
			return err
		}
		if r.retention > 0 {
			if _, err := r.runs.Prune(ctx, started.Add(-r.retention)); err != nil {
				return fmt.Errorf("prune runs: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		r.log.WarnContext(ctx, "failed to record pipeline run",
			slog.String("run_id", run.ID.String()),
			slog.String("error", err.Error()),
		)
	}
}
