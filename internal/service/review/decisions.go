package review

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/heartmarshall/spiral-worksheets/internal/domain"
	"github.com/heartmarshall/spiral-worksheets/internal/table"
)

// DecisionResult summarises a bulk decision update.
type DecisionResult struct {
	Decision string `json:"decision"`
	Updated  int    `json:"updated"`
	Skipped  int    `json:"skipped"`
}

// SetDecisions sets every pending Review row to decision in one update.
// Rows that already carry a decision, including unrecognised ones, are
// left alone.
func (s *Service) SetDecisions(ctx context.Context, decision string) (DecisionResult, error) {
	d, err := domain.ParseDecision(decision)
	if err != nil {
		return DecisionResult{}, err
	}
	if d == domain.DecisionUnset {
		return DecisionResult{}, domain.NewValidationError("decision", "required")
	}

	result := DecisionResult{Decision: d.String()}

	review, err := table.Load(ctx, s.store, s.sheets.Review, table.ReviewSchema)
	if err != nil {
		return result, fmt.Errorf("load review: %w", err)
	}

	var cells []table.Cell
	for _, r := range review.Rows {
		item, err := table.DecodeReview(r)
		if err != nil || !item.Decision.IsPending() {
			result.Skipped++
			continue
		}
		cells = append(cells, review.Cell(r.Number, table.ColDecision, d.String()))
	}

	if len(cells) > 0 {
		if err := s.store.UpdateCells(ctx, s.sheets.Review, cells...); err != nil {
			return result, fmt.Errorf("write decisions: %w", err)
		}
	}
	result.Updated = len(cells)

	s.log.InfoContext(ctx, "decisions set",
		slog.String("decision", d.String()),
		slog.Int("updated", result.Updated),
		slog.Int("skipped", result.Skipped),
	)

	return result, nil
}
