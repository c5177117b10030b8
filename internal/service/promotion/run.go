package promotion

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/heartmarshall/spiral-worksheets/internal/domain"
	"github.com/heartmarshall/spiral-worksheets/internal/table"
)

// Result summarises one promotion run.
type Result struct {
	// Promoted counts Review rows moved to Standby.
	Promoted int                `json:"promoted"`
	Ready    int                `json:"ready"`
	Waiting  int                `json:"waiting"`
	HeldBack int                `json:"held_back"`
	Invalid  int                `json:"invalid"`
	Banked   int                `json:"banked"`
	Errors   []domain.ItemError `json:"errors"`
}

// Counts returns the numeric fields keyed by their JSON names.
func (r Result) Counts() map[string]int {
	return map[string]int{
		"promoted":  r.Promoted,
		"ready":     r.Ready,
		"waiting":   r.Waiting,
		"held_back": r.HeldBack,
		"invalid":   r.Invalid,
		"banked":    r.Banked,
	}
}

// Run promotes every eligible Review row. Standby rows are appended in
// one call before the source rows are removed; any failure after that
// append is returned as a *domain.PartialError.
func (s *Service) Run(ctx context.Context) (Result, error) {
	result := Result{Errors: []domain.ItemError{}}

	review, err := table.Load(ctx, s.store, s.sheets.Review, table.ReviewSchema)
	if err != nil {
		return result, fmt.Errorf("load review: %w", err)
	}
	standby, err := table.LoadOrInit(ctx, s.store, s.sheets.Standby, table.StandbySchema)
	if err != nil {
		return result, fmt.Errorf("load standby: %w", err)
	}

	var (
		ref  *table.Table
		bank map[string]string
	)
	if s.cfg.SaveToBank {
		ref, err = table.Load(ctx, s.store, s.sheets.Reference, table.ReferenceSchema)
		if err != nil {
			return result, fmt.Errorf("load reference: %w", err)
		}
		bank = table.SentenceBank(ref)
	}

	now := s.now()
	token := runTokens.next(now)
	created := now.In(s.cfg.Location).Format(s.cfg.DateFormat)

	var (
		standbyRows [][]string
		bankRows    [][]string
		source      []int
	)
	for _, r := range review.Rows {
		item, err := table.DecodeReview(r)
		if err != nil {
			result.Invalid++
			result.Errors = append(result.Errors, domain.ItemError{Row: r.Number, Item: item.Word, Reason: err.Error()})
			s.log.WarnContext(ctx, "invalid review row", slog.Int("row", r.Number), slog.String("error", err.Error()))
			continue
		}
		if reason := item.PromotionBlocker(); reason != "" {
			result.HeldBack++
			s.log.DebugContext(ctx, "row held back", slog.Int("row", item.Row), slog.String("reason", reason))
			continue
		}

		for _, sb := range derive(item, token, created) {
			standbyRows = append(standbyRows, table.EncodeStandby(standby, sb))
			if sb.State == domain.StandbyReady {
				result.Ready++
			} else {
				result.Waiting++
			}
		}
		source = append(source, item.Row)
		result.Promoted++

		if bank != nil {
			key := domain.NormalizeText(item.Word)
			if _, known := bank[key]; !known {
				sentence := domain.FillBlanks(domain.StripMarker(item.Sentence), item.Word)
				bank[key] = sentence
				bankRows = append(bankRows, table.EncodeSentence(ref, domain.SentenceRecord{Word: item.Word, Sentence: sentence}))
			}
		}
	}

	if len(standbyRows) == 0 {
		s.log.InfoContext(ctx, "nothing to promote", slog.Int("held_back", result.HeldBack), slog.Int("invalid", result.Invalid))
		return result, nil
	}

	if err := s.store.Append(ctx, s.sheets.Standby, standbyRows); err != nil {
		return result, fmt.Errorf("append standby rows: %w", err)
	}
	completed := []string{fmt.Sprintf("appended %d standby rows", len(standbyRows))}

	if err := s.remove(ctx, source); err != nil {
		return result, &domain.PartialError{Step: "remove review rows", Completed: completed, Err: err}
	}
	completed = append(completed, fmt.Sprintf("removed %d review rows", len(source)))

	if len(bankRows) > 0 {
		if err := s.store.Append(ctx, s.sheets.Reference, bankRows); err != nil {
			return result, &domain.PartialError{Step: "append reference rows", Completed: completed, Err: err}
		}
		result.Banked = len(bankRows)
	}

	s.log.InfoContext(ctx, "promotion completed",
		slog.Int("promoted", result.Promoted),
		slog.Int("ready", result.Ready),
		slog.Int("waiting", result.Waiting),
		slog.Int("held_back", result.HeldBack),
		slog.Int("invalid", result.Invalid),
		slog.Int("banked", result.Banked),
		slog.String("removal", s.cfg.Removal),
	)

	return result, nil
}

func (s *Service) remove(ctx context.Context, rows []int) error {
	if s.cfg.Removal == RemovalClear {
		return s.store.ClearRows(ctx, s.sheets.Review, rows)
	}
	return s.store.DeleteRows(ctx, s.sheets.Review, rows)
}

// derive builds the this-week cloze item and, when a next-week question
// exists, the waiting next-week item.
func derive(item domain.ReviewItem, token int64, created string) []domain.StandbyItem {
	base := fmt.Sprintf("%s_%d_%d", item.School, token, item.Row)

	out := []domain.StandbyItem{{
		ID:          base + domain.SuffixThisWeek,
		School:      item.School,
		Word:        item.Word,
		Type:        domain.QuestionCloze,
		Question:    item.Sentence,
		Answer:      item.Word,
		State:       domain.StandbyReady,
		CreatedDate: created,
	}}
	if item.HasNextWeek() {
		out = append(out, domain.StandbyItem{
			ID:          base + domain.SuffixNextWeek,
			School:      item.School,
			Word:        item.Word,
			Type:        item.NextType,
			Question:    item.NextQuestion,
			Answer:      item.NextAnswer,
			State:       domain.StandbyWaiting,
			CreatedDate: created,
		})
	}
	return out
}
