// Package questions implements the question-generation stage: for every
// Review row that asks for a next-week question type, the language model
// writes a question and answer back into the row.
package questions

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/heartmarshall/spiral-worksheets/internal/domain"
	"github.com/heartmarshall/spiral-worksheets/internal/llm"
	"github.com/heartmarshall/spiral-worksheets/internal/prompt"
	"github.com/heartmarshall/spiral-worksheets/internal/table"
)

// Result summarises one question-generation run.
type Result struct {
	Processed int                `json:"processed"`
	Skipped   int                `json:"skipped"`
	Failed    int                `json:"failed"`
	Errors    []domain.ItemError `json:"errors"`
}

// Counts returns the numeric fields keyed by their JSON names.
func (r Result) Counts() map[string]int {
	return map[string]int{
		"processed": r.Processed,
		"skipped":   r.Skipped,
		"failed":    r.Failed,
	}
}

// Service runs the question-generation stage.
type Service struct {
	store       table.Store
	llm         llm.Completer
	sheet       string
	temperature float64
	log         *slog.Logger
}

// NewService creates a new question-generation stage over the Review sheet.
func NewService(
	log *slog.Logger,
	store table.Store,
	completer llm.Completer,
	reviewSheet string,
	temperature float64,
) *Service {
	return &Service{
		store:       store,
		llm:         completer,
		sheet:       reviewSheet,
		temperature: temperature,
		log:         log.With("service", "questions"),
	}
}

// Run generates questions for every eligible row. A failed row is
// counted and the batch continues; a failed sheet write stops the run.
func (s *Service) Run(ctx context.Context) (Result, error) {
	result := Result{Errors: []domain.ItemError{}}

	review, err := table.Load(ctx, s.store, s.sheet, table.ReviewSchema)
	if err != nil {
		return result, fmt.Errorf("load review: %w", err)
	}

	for _, r := range review.Rows {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		// The decision column plays no part here.
		item, _ := table.DecodeReview(r)
		if !item.NeedsQuestion() {
			result.Skipped++
			continue
		}

		qa, err := s.generate(ctx, item)
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, domain.ItemError{Row: item.Row, Item: item.Word, Reason: err.Error()})
			s.log.WarnContext(ctx, "question generation failed",
				slog.Int("row", item.Row),
				slog.String("word", item.Word),
				slog.String("type", item.NextType.String()),
				slog.String("error", err.Error()),
			)
			continue
		}

		err = s.store.UpdateCells(ctx, s.sheet,
			review.Cell(item.Row, table.ColNextQuestion, domain.MarkGenerated(qa.Question)),
			review.Cell(item.Row, table.ColNextAnswer, qa.Answer),
		)
		if err != nil {
			werr := fmt.Errorf("write row %d: %w", item.Row, err)
			if result.Processed == 0 {
				return result, werr
			}
			return result, &domain.PartialError{
				Step:      "write questions",
				Completed: []string{fmt.Sprintf("wrote %d questions", result.Processed)},
				Err:       werr,
			}
		}
		result.Processed++
	}

	s.log.InfoContext(ctx, "question generation completed",
		slog.Int("processed", result.Processed),
		slog.Int("skipped", result.Skipped),
		slog.Int("failed", result.Failed),
	)

	return result, nil
}

func (s *Service) generate(ctx context.Context, item domain.ReviewItem) (prompt.QA, error) {
	full := domain.RebuildSentence(item.Sentence, item.Word)

	reply, err := s.llm.Complete(ctx, llm.Request{
		Prompt:      prompt.Question(item.NextType, item.Word, full),
		Temperature: s.temperature,
		JSON:        true,
	})
	if err != nil {
		return prompt.QA{}, err
	}

	obj := reply.JSON
	if obj == nil {
		if obj, err = llm.DecodeObject(reply.Text); err != nil {
			return prompt.QA{}, err
		}
	}
	return prompt.ParseQuestion(obj)
}
