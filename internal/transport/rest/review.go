package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/heartmarshall/spiral-worksheets/internal/service/review"
)

type reviewService interface {
	SetDecisions(ctx context.Context, decision string) (review.DecisionResult, error)
	Dashboard(ctx context.Context) (review.Dashboard, error)
}

// ReviewHandler serves the review desk endpoints.
type ReviewHandler struct {
	svc reviewService
	log *slog.Logger
}

// NewReviewHandler creates a ReviewHandler.
func NewReviewHandler(svc reviewService, logger *slog.Logger) *ReviewHandler {
	return &ReviewHandler{
		svc: svc,
		log: logger.With("handler", "review"),
	}
}

type decisionRequest struct {
	Decision string `json:"decision"`
}

// SetDecisions writes one decision into every pending Review row.
// POST /api/review/decisions
func (h *ReviewHandler) SetDecisions(w http.ResponseWriter, r *http.Request) {
	var req decisionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, h.log, err)
		return
	}

	result, err := h.svc.SetDecisions(r.Context(), req.Decision)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Dashboard returns row counts per table and state.
// GET /api/dashboard
func (h *ReviewHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.svc.Dashboard(r.Context())
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, d)
}
