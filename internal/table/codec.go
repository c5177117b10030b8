package table

import (
	"fmt"

	"github.com/heartmarshall/spiral-worksheets/internal/domain"
)

// Submissions decodes an intake table.
func Submissions(t *Table) []domain.Submission {
	out := make([]domain.Submission, 0, len(t.Rows))
	for _, r := range t.Rows {
		out = append(out, domain.Submission{
			Row:       r.Number,
			Timestamp: r.Get(ColTimestamp),
			School:    r.Get(ColSchool),
			WordList:  r.Get(ColWords),
			Status:    domain.SubmissionStatus(r.Get(ColStatus)),
		})
	}
	return out
}

// SentenceBank decodes a reference table into a word → sentence map keyed
// by domain.NormalizeText, the form SplitWords produces. The first
// occurrence of a word wins.
func SentenceBank(t *Table) map[string]string {
	bank := make(map[string]string, len(t.Rows))
	for _, r := range t.Rows {
		word := domain.NormalizeText(r.Get(ColWord))
		if word == "" {
			continue
		}
		if _, ok := bank[word]; !ok {
			bank[word] = r.Get(ColSentence)
		}
	}
	return bank
}

// EncodeSentence lays out a reference table row.
func EncodeSentence(t *Table, rec domain.SentenceRecord) []string {
	return t.Encode(map[string]string{
		ColWord:     rec.Word,
		ColSentence: rec.Sentence,
	})
}

// DecodeReview decodes one Review row. An unrecognised decision value is
// returned as a validation error naming the sheet row.
func DecodeReview(r Row) (domain.ReviewItem, error) {
	item := domain.ReviewItem{
		Row:          r.Number,
		Timestamp:    r.Get(ColTimestamp),
		School:       r.Get(ColSchool),
		Word:         r.Get(ColWord),
		Sentence:     r.Get(ColSentence),
		NextType:     domain.QuestionType(r.Get(ColNextType)),
		NextQuestion: r.Get(ColNextQuestion),
		NextAnswer:   r.Get(ColNextAnswer),
	}
	d, err := domain.ParseDecision(r.Get(ColDecision))
	if err != nil {
		return item, fmt.Errorf("row %d: %w", r.Number, err)
	}
	item.Decision = d
	return item, nil
}

// EncodeReview lays out a Review row.
func EncodeReview(t *Table, item domain.ReviewItem) []string {
	return t.Encode(map[string]string{
		ColTimestamp:    item.Timestamp,
		ColSchool:       item.School,
		ColWord:         item.Word,
		ColSentence:     item.Sentence,
		ColNextType:     item.NextType.String(),
		ColNextQuestion: item.NextQuestion,
		ColNextAnswer:   item.NextAnswer,
		ColDecision:     item.Decision.String(),
	})
}

// DecodeStandby decodes one Standby row.
func DecodeStandby(r Row) (domain.StandbyItem, error) {
	item := domain.StandbyItem{
		ID:          r.Get(ColID),
		School:      r.Get(ColSchool),
		Word:        r.Get(ColWord),
		Type:        domain.QuestionType(r.Get(ColType)),
		Question:    r.Get(ColQuestion),
		Answer:      r.Get(ColAnswer),
		CreatedDate: r.Get(ColCreated),
	}
	st, err := domain.ParseStandbyState(r.Get(ColState))
	if err != nil {
		return item, fmt.Errorf("row %d: %w", r.Number, err)
	}
	item.State = st
	return item, nil
}

// EncodeStandby lays out a Standby row.
func EncodeStandby(t *Table, item domain.StandbyItem) []string {
	return t.Encode(map[string]string{
		ColID:       item.ID,
		ColSchool:   item.School,
		ColWord:     item.Word,
		ColType:     item.Type.String(),
		ColQuestion: item.Question,
		ColAnswer:   item.Answer,
		ColState:    item.State.String(),
		ColCreated:  item.CreatedDate,
	})
}

// DecodeWorksheet decodes one worksheet log row.
func DecodeWorksheet(r Row) domain.WorksheetRecord {
	return domain.WorksheetRecord{
		ID:            r.Get(ColID),
		School:        r.Get(ColSchool),
		Word:          r.Get(ColWord),
		Type:          domain.QuestionType(r.Get(ColType)),
		Question:      r.Get(ColQuestion),
		Answer:        r.Get(ColAnswer),
		GeneratedDate: r.Get(ColGenerated),
	}
}

// EncodeWorksheet lays out a worksheet log row.
func EncodeWorksheet(t *Table, rec domain.WorksheetRecord) []string {
	return t.Encode(map[string]string{
		ColID:        rec.ID,
		ColSchool:    rec.School,
		ColWord:      rec.Word,
		ColType:      rec.Type.String(),
		ColQuestion:  rec.Question,
		ColAnswer:    rec.Answer,
		ColGenerated: rec.GeneratedDate,
	})
}
