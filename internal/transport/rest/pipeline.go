package rest

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/heartmarshall/spiral-worksheets/internal/domain"
	"github.com/heartmarshall/spiral-worksheets/internal/service/pipeline"
)

type stageRunner interface {
	Run(ctx context.Context, stage string) (pipeline.Report, error)
	RecentRuns(ctx context.Context, limit int) ([]domain.Run, error)
}

// PipelineHandler serves stage runs and the run log.
type PipelineHandler struct {
	runner stageRunner
	log    *slog.Logger
}

// NewPipelineHandler creates a PipelineHandler.
func NewPipelineHandler(runner stageRunner, logger *slog.Logger) *PipelineHandler {
	return &PipelineHandler{
		runner: runner,
		log:    logger.With("handler", "pipeline"),
	}
}

// runResponse wraps a report with the error that stopped the run, if any.
type runResponse struct {
	pipeline.Report
	Error string `json:"error,omitempty"`
}

// RunStage runs one stage, or all of them.
// POST /api/stages/{stage}
//
// A partial outcome answers 207 with the report; a run that could not
// start or stopped on a fatal error answers with the mapped error status.
func (h *PipelineHandler) RunStage(w http.ResponseWriter, r *http.Request) {
	report, err := h.runner.Run(r.Context(), r.PathValue("stage"))

	switch {
	case err == nil && report.Status == domain.RunOK:
		writeJSON(w, http.StatusOK, runResponse{Report: report})
	case err == nil || domain.IsPartial(err):
		resp := runResponse{Report: report}
		if err != nil {
			resp.Error = err.Error()
		}
		writeJSON(w, http.StatusMultiStatus, resp)
	default:
		handleError(w, r, h.log, err)
	}
}

// Runs lists recent run log entries.
// GET /api/runs?limit=20
func (h *PipelineHandler) Runs(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	runs, err := h.runner.RecentRuns(r.Context(), limit)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, runs)
}
