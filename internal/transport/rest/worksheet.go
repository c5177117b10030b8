package rest

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/heartmarshall/spiral-worksheets/internal/domain"
	"github.com/heartmarshall/spiral-worksheets/internal/service/worksheet"
)

// PartialStepHeader names the step that failed when a worksheet bundle is
// returned with 207.
const PartialStepHeader = "X-Partial-Step"

type worksheetRenderer interface {
	Render(ctx context.Context, f worksheet.Filter) (worksheet.Bundle, error)
}

// WorksheetHandler serves worksheet downloads.
type WorksheetHandler struct {
	renderer worksheetRenderer
	log      *slog.Logger
}

// NewWorksheetHandler creates a WorksheetHandler.
func NewWorksheetHandler(renderer worksheetRenderer, logger *slog.Logger) *WorksheetHandler {
	return &WorksheetHandler{
		renderer: renderer,
		log:      logger.With("handler", "worksheet"),
	}
}

// Render renders the worksheets selected by the JSON filter body and
// returns a PDF or a ZIP of PDFs.
// POST /api/worksheets
func (h *WorksheetHandler) Render(w http.ResponseWriter, r *http.Request) {
	var f worksheet.Filter
	if err := decodeJSON(w, r, &f); err != nil {
		handleError(w, r, h.log, err)
		return
	}

	bundle, err := h.renderer.Render(r.Context(), f)
	status := http.StatusOK
	if err != nil {
		var pe *domain.PartialError
		if !errors.As(err, &pe) || len(bundle.Data) == 0 {
			handleError(w, r, h.log, err)
			return
		}
		h.log.WarnContext(r.Context(), "worksheets rendered but not logged", slog.String("error", err.Error()))
		w.Header().Set(PartialStepHeader, pe.Step)
		status = http.StatusMultiStatus
	}

	w.Header().Set("Content-Type", bundle.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+bundle.Filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(bundle.Data)))
	w.Header().Set("X-Worksheet-Count", strconv.Itoa(bundle.Count))
	w.WriteHeader(status)
	w.Write(bundle.Data) //nolint:errcheck
}
