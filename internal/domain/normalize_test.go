package domain

import (
	"reflect"
	"testing"
)

func TestSplitWords(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want []string
	}{
		{name: "ascii comma and space", in: "happy, sad", want: []string{"happy", "sad"}},
		{name: "full-width comma", in: "快樂，傷心", want: []string{"快樂", "傷心"}},
		{name: "ideographic comma", in: "快樂、傷心", want: []string{"快樂", "傷心"}},
		{name: "ideographic space", in: "快樂　傷心", want: []string{"快樂", "傷心"}},
		{name: "mixed with runs", in: " 快樂 ,, 傷心\n\t高興、", want: []string{"快樂", "傷心", "高興"}},
		{name: "full-width latin folded", in: "ＡＢＣ", want: []string{"ABC"}},
		{name: "empty", in: "", want: nil},
		{name: "only separators", in: " ,，、 ", want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := SplitWords(tt.in)
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitWords(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestRebuildSentence(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		sentence string
		word     string
		want     string
	}{
		{name: "underscores", sentence: "我今天很___。", word: "開心", want: "我今天很開心。"},
		{name: "full-width blanks", sentence: "我今天很＿＿。", word: "開心", want: "我今天很開心。"},
		{name: "bracket segment", sentence: "我今天很【開心】。", word: "開心", want: "我今天很開心。"},
		{name: "two brackets non-greedy", sentence: "【甲】和【乙】", word: "丙", want: "丙和丙"},
		{name: "untouched", sentence: "I am happy today.", word: "happy", want: "I am happy today."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := RebuildSentence(tt.sentence, tt.word); got != tt.want {
				t.Errorf("RebuildSentence(%q, %q) = %q, want %q", tt.sentence, tt.word, got, tt.want)
			}
		})
	}
}

func TestContainsWordAndBlankWord(t *testing.T) {
	t.Parallel()

	if !ContainsWord(Marker+"我很開心。", "開心") {
		t.Error("ContainsWord should find the word behind the marker")
	}
	if ContainsWord("我很高興。", "開心") {
		t.Error("ContainsWord reported a missing word")
	}
	if ContainsWord("anything", " ") {
		t.Error("blank word should never be contained")
	}
	if !ContainsWord(Marker+"今天學第２課。", "第2課") {
		t.Error("ContainsWord should compare width-folded forms")
	}
	if got := BlankWord("我很開心，你也開心。", "開心"); got != "我很＿＿＿＿，你也＿＿＿＿。" {
		t.Errorf("BlankWord = %q", got)
	}
}

func TestFillBlanks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		sentence string
		want     string
	}{
		{name: "underscores", sentence: "他很___。", want: "他很勇敢。"},
		{name: "full-width blanks", sentence: "他很＿＿。", want: "他很勇敢。"},
		{name: "empty brackets", sentence: "他很【】。", want: "他很勇敢。"},
		{name: "proper noun kept", sentence: "【陳大文】很勇敢。", want: "【陳大文】很勇敢。"},
		{name: "proper noun and blank", sentence: "【陳大文】很＿＿。", want: "【陳大文】很勇敢。"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := FillBlanks(tt.sentence, "勇敢"); got != tt.want {
				t.Errorf("FillBlanks(%q) = %q, want %q", tt.sentence, got, tt.want)
			}
		})
	}
}

func TestBlankCloze(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		sentence string
		want     string
	}{
		{name: "word", sentence: "他很勇敢。", want: "他很" + ClozeBlank + "。"},
		{name: "existing blank", sentence: "他很__。", want: "他很" + ClozeBlank + "。"},
		{name: "proper noun kept", sentence: "【陳大文】很勇敢。", want: "【陳大文】很" + ClozeBlank + "。"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := BlankCloze(tt.sentence, "勇敢"); got != tt.want {
				t.Errorf("BlankCloze(%q) = %q, want %q", tt.sentence, got, tt.want)
			}
		})
	}
}

func TestMarker(t *testing.T) {
	t.Parallel()

	marked := MarkGenerated("  我很開心。 ")
	if marked != "🟨 我很開心。" {
		t.Errorf("MarkGenerated = %q", marked)
	}
	if MarkGenerated(marked) != marked {
		t.Error("MarkGenerated should not double-mark")
	}
	if !IsGenerated(" " + marked) {
		t.Error("IsGenerated should ignore leading space")
	}
	if IsGenerated("我很開心。🟨") {
		t.Error("a trailing glyph is not a leading marker")
	}
	if got := StripMarker(marked); got != "我很開心。" {
		t.Errorf("StripMarker = %q", got)
	}
}
