// Package prompt builds the instructions sent to the language model and
// validates its structured replies.
package prompt

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/heartmarshall/spiral-worksheets/internal/domain"
	"github.com/heartmarshall/spiral-worksheets/internal/llm"
)

// DefaultAudience is used when Sentence is called with an empty audience.
const DefaultAudience = "香港小學生"

// genericRule is used for question types without dedicated rules.
const genericRule = "請製作一道適合小學生程度的題目。"

// Sentence returns the instruction for synthesising one example sentence
// that contains word.
func Sentence(word, audience string) string {
	if strings.TrimSpace(audience) == "" {
		audience = DefaultAudience
	}
	return fmt.Sprintf(
		"請用「%s」造一個適合%s的句子。句子中必須包含「%s」。只需回傳句子本身，不要加上其他文字。",
		word, audience, word,
	)
}

// Question returns the instruction for generating a question of type qt
// from a full sentence. The reply must be a JSON object with "question"
// and "answer" keys. Unknown types get a generic instruction.
func Question(qt domain.QuestionType, word, sentence string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "任務：根據句子「%s」及關鍵詞「%s」，製作一道「%s」題目。\n", sentence, word, qt)
	b.WriteString(`回傳格式：JSON 物件 {"question": "...", "answer": "..."}。`)
	b.WriteString("\n\n")
	b.WriteString(rules(qt, word, sentence))
	return b.String()
}

func rules(qt domain.QuestionType, word, sentence string) string {
	switch qt {
	case domain.QuestionReorder:
		return strings.Join([]string{
			"1. 把句子拆成 6 至 10 個短語區塊。",
			"2. 每個區塊以 2 至 5 個字為宜。",
			"3. 標點符號附在所屬分句的最後一個區塊，或獨立成為一個區塊。",
			"4. 專名號【】內的內容必須保持完整，不可拆開。",
			`5. "question" 中的區塊以 " / " 分隔，並打亂次序。`,
			`6. "answer" 為完整原句。`,
		}, "\n")
	case domain.QuestionPunctuation:
		return strings.Join([]string{
			`1. 刪去句子中所有標點符號，作為 "question"。`,
			`2. "answer" 為標點正確的完整句子。`,
		}, "\n")
	case domain.QuestionAntonym:
		return strings.Join([]string{
			fmt.Sprintf(`1. "question" 格式：「%s」\n請寫出句子中「%s」的反義詞。`, sentence, word),
			`2. "answer" 為該反義詞。`,
		}, "\n")
	case domain.QuestionSynonym:
		return strings.Join([]string{
			fmt.Sprintf(`1. "question" 格式：「%s」\n請寫出句子中「%s」的近義詞。`, sentence, word),
			`2. "answer" 為該近義詞。`,
		}, "\n")
	case domain.QuestionDiscrimination:
		return strings.Join([]string{
			fmt.Sprintf("1. 為「%s」找出兩個字形相近或讀音相近的干擾選項。", word),
			`2. "question" 顯示原句，把關鍵詞挖空，並在句後附上 (A)(B)(C) 三個選項。`,
			`3. "answer" 只寫正確選項的代號及詞語，例如 "(B) ` + word + `"。`,
		}, "\n")
	case domain.QuestionComposition:
		return strings.Join([]string{
			fmt.Sprintf(`1. "question" 要求學生用「%s」自行造句，可附一個簡短提示。`, word),
			`2. "answer" 為一個示範句子。`,
		}, "\n")
	case domain.QuestionContinuation:
		return strings.Join([]string{
			fmt.Sprintf(`1. "question" 給出句子的開首部分（須包含「%s」），要求學生續寫。`, word),
			`2. "answer" 為一個合理的完整句子。`,
		}, "\n")
	default:
		return genericRule
	}
}

// QA is a validated question/answer pair.
type QA struct {
	Question string
	Answer   string
}

// ParseQuestion validates a structured reply. The question must be a
// non-empty string. The answer must be present; values that are not
// strings are re-encoded as JSON text.
func ParseQuestion(obj map[string]any) (QA, error) {
	q, ok := obj["question"].(string)
	if !ok || strings.TrimSpace(q) == "" {
		return QA{}, fmt.Errorf("%w: question", llm.ErrMissingField)
	}

	raw, ok := obj["answer"]
	if !ok || raw == nil {
		return QA{}, fmt.Errorf("%w: answer", llm.ErrMissingField)
	}

	var answer string
	switch v := raw.(type) {
	case string:
		answer = v
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return QA{}, fmt.Errorf("%w: answer: %v", llm.ErrMalformedJSON, err)
		}
		answer = string(data)
	}
	if strings.TrimSpace(answer) == "" {
		return QA{}, fmt.Errorf("%w: answer", llm.ErrMissingField)
	}

	return QA{Question: strings.TrimSpace(q), Answer: strings.TrimSpace(answer)}, nil
}
