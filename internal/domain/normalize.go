package domain

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

var (
	wordSeparators = regexp.MustCompile(`[,，\s、]+`)
	blankSegments  = regexp.MustCompile(`_+|＿+|【.*?】`)
	blankRuns      = regexp.MustCompile(`_+|＿+|【\s*】`)
)

// ClozeBlank replaces the answer word on printed cloze questions.
const ClozeBlank = "＿＿＿＿"

// NormalizeText prepares free text typed into a form for tokenising:
//   - full-width ASCII and the ideographic space are folded to their narrow forms
//   - the result is NFC-composed
//   - leading/trailing whitespace is trimmed
//
// CJK ideographs and CJK punctuation such as 、 are preserved.
func NormalizeText(text string) string {
	text = width.Fold.String(text)
	text = norm.NFC.String(text)
	return strings.TrimSpace(text)
}

// SplitWords splits a raw word list on commas (half- and full-width),
// whitespace and the ideographic comma. Empty tokens are dropped.
func SplitWords(raw string) []string {
	raw = NormalizeText(raw)
	if raw == "" {
		return nil
	}
	parts := wordSeparators.Split(raw, -1)
	words := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			words = append(words, p)
		}
	}
	return words
}

// RebuildSentence puts word back into a partially blanked sentence.
// Underscore runs (half- or full-width) and 【...】 segments are replaced.
// Only the question prompts use it; stored sentences go through FillBlanks.
func RebuildSentence(sentence, word string) string {
	return blankSegments.ReplaceAllLiteralString(sentence, word)
}

// FillBlanks puts word into underscore runs and empty 【】 pairs.
// Bracketed text such as 【陳大文】 is a proper noun and stays as written.
func FillBlanks(sentence, word string) string {
	return blankRuns.ReplaceAllLiteralString(sentence, word)
}

// BlankCloze turns a stored sentence into a printed cloze question: every
// occurrence of word and every existing blank becomes ClozeBlank.
func BlankCloze(sentence, word string) string {
	return blankRuns.ReplaceAllLiteralString(BlankWord(sentence, word), ClozeBlank)
}

// ContainsWord reports whether sentence contains word, ignoring the marker.
// Both sides are compared in NormalizeText form.
func ContainsWord(sentence, word string) bool {
	word = NormalizeText(word)
	if word == "" {
		return false
	}
	return strings.Contains(NormalizeText(StripMarker(sentence)), word)
}

// BlankWord replaces every occurrence of word in text with ClozeBlank.
func BlankWord(text, word string) string {
	word = strings.TrimSpace(word)
	if word == "" {
		return text
	}
	return strings.ReplaceAll(text, word, ClozeBlank)
}
