package intake

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/heartmarshall/spiral-worksheets/internal/domain"
	"github.com/heartmarshall/spiral-worksheets/internal/llm"
	"github.com/heartmarshall/spiral-worksheets/internal/prompt"
	"github.com/heartmarshall/spiral-worksheets/internal/table"
)

// Run imports every unprocessed submission. A submission is all or
// nothing: when any of its words cannot be resolved, none of its rows are
// written and it stays unprocessed. Rows of all resolved submissions are
// appended in one call, and only then are the submissions marked done.
func (s *Service) Run(ctx context.Context) (Result, error) {
	result := Result{Errors: []domain.ItemError{}}

	intake, err := table.Load(ctx, s.store, s.sheets.Intake, table.IntakeSchema)
	if err != nil {
		return result, fmt.Errorf("load intake: %w", err)
	}
	ref, err := table.Load(ctx, s.store, s.sheets.Reference, table.ReferenceSchema)
	if err != nil {
		return result, fmt.Errorf("load reference: %w", err)
	}
	review, err := table.LoadOrInit(ctx, s.store, s.sheets.Review, table.ReviewSchema)
	if err != nil {
		return result, fmt.Errorf("load review: %w", err)
	}

	bank := table.SentenceBank(ref)

	var (
		rows [][]string
		done []table.Cell
	)
	for _, sub := range table.Submissions(intake) {
		if sub.Status.IsDone() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return result, err
		}

		items, fromBank, err := s.resolve(ctx, sub, bank)
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, domain.ItemError{
				Row:    sub.Row,
				Item:   sub.School,
				Reason: err.Error(),
			})
			s.log.WarnContext(ctx, "submission skipped",
				slog.Int("row", sub.Row),
				slog.String("school", sub.School),
				slog.String("error", err.Error()),
			)
			continue
		}

		for _, item := range items {
			rows = append(rows, table.EncodeReview(review, item))
		}
		done = append(done, intake.Cell(sub.Row, table.ColStatus, string(domain.StatusDone)))

		result.Submissions++
		result.Words += len(items)
		result.FromBank += fromBank
		result.Generated += len(items) - fromBank
	}

	if len(done) == 0 {
		s.log.InfoContext(ctx, "no new submissions")
		return result, nil
	}

	if len(rows) > 0 {
		if err := s.store.Append(ctx, s.sheets.Review, rows); err != nil {
			return result, fmt.Errorf("append review rows: %w", err)
		}
	}
	if err := s.store.UpdateCells(ctx, s.sheets.Intake, done...); err != nil {
		return result, &domain.PartialError{
			Step:      "mark submissions done",
			Completed: []string{fmt.Sprintf("appended %d review rows", len(rows))},
			Err:       err,
		}
	}

	s.log.InfoContext(ctx, "import completed",
		slog.Int("submissions", result.Submissions),
		slog.Int("words", result.Words),
		slog.Int("from_bank", result.FromBank),
		slog.Int("generated", result.Generated),
		slog.Int("failed", result.Failed),
	)

	return result, nil
}

// resolve turns one submission into Review items. It stops at the first
// word that cannot be resolved.
func (s *Service) resolve(ctx context.Context, sub domain.Submission, bank map[string]string) ([]domain.ReviewItem, int, error) {
	words := sub.Words()
	items := make([]domain.ReviewItem, 0, len(words))
	fromBank := 0

	for _, word := range words {
		sentence, ok := bank[word]
		if ok && strings.TrimSpace(sentence) != "" {
			fromBank++
		} else {
			generated, err := s.generate(ctx, word)
			if err != nil {
				return nil, 0, err
			}
			sentence = generated
		}

		items = append(items, domain.ReviewItem{
			Timestamp: sub.Timestamp,
			School:    sub.School,
			Word:      word,
			Sentence:  sentence,
		})
	}

	return items, fromBank, nil
}

// generate asks the model for a sentence containing word and applies the
// missing-word policy. The returned sentence carries the marker.
func (s *Service) generate(ctx context.Context, word string) (string, error) {
	attempts := 1
	if s.cfg.Policy == PolicyRetry {
		attempts = s.cfg.Attempts
	}

	req := llm.Request{
		Prompt:      prompt.Sentence(word, s.cfg.Audience),
		Temperature: s.cfg.Temperature,
	}

	for attempt := 1; attempt <= attempts; attempt++ {
		reply, err := s.llm.Complete(ctx, req)
		if err != nil {
			return "", fmt.Errorf("generate sentence for %q: %w", word, err)
		}

		sentence := strings.TrimSpace(domain.StripMarker(reply.Text))
		if sentence == "" {
			return "", fmt.Errorf("generate sentence for %q: %w", word, llm.ErrNoChoices)
		}
		if s.cfg.Policy == PolicyAccept || domain.ContainsWord(sentence, word) {
			return domain.MarkGenerated(sentence), nil
		}

		s.log.WarnContext(ctx, "generated sentence misses the word",
			slog.String("word", word),
			slog.Int("attempt", attempt),
			slog.String("sentence", sentence),
		)
	}

	return "", fmt.Errorf("%q after %d attempt(s): %w", word, attempts, ErrWordMissing)
}
