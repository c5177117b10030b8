package domain

import "strings"

// ReviewItem is one word-level row of the Review table.
type ReviewItem struct {
	Row          int
	Timestamp    string
	School       string
	Word         string
	Sentence     string
	NextType     QuestionType
	NextQuestion string
	NextAnswer   string
	Decision     Decision
}

// NeedsQuestion reports whether the item is eligible for question generation:
// word, sentence and requested type are present, no question has been
// generated yet, and the sentence itself is not machine-generated.
func (r ReviewItem) NeedsQuestion() bool {
	if blank(r.Word) || blank(r.Sentence) || blank(string(r.NextType)) {
		return false
	}
	if !blank(r.NextQuestion) {
		return false
	}
	return !IsGenerated(r.Sentence)
}

// PromotionBlocker returns the reason the item cannot be promoted,
// or an empty string when it is eligible.
func (r ReviewItem) PromotionBlocker() string {
	switch {
	case blank(r.School):
		return "missing school"
	case blank(r.Word):
		return "missing word"
	case blank(r.Sentence):
		return "missing sentence"
	case !r.Decision.IsAccepting():
		return "decision not accepting"
	case !blank(string(r.NextType)) && blank(r.NextQuestion):
		return "next-week question pending"
	}
	return ""
}

// HasNextWeek reports whether a next-week variant exists for the item.
func (r ReviewItem) HasNextWeek() bool {
	return !blank(r.NextQuestion)
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }
