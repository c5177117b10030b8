package table

// Column keys shared by the schemas below.
const (
	ColTimestamp    = "timestamp"
	ColSchool       = "school"
	ColWords        = "words"
	ColStatus       = "status"
	ColWord         = "word"
	ColSentence     = "sentence"
	ColNextType     = "next_type"
	ColNextQuestion = "next_question"
	ColNextAnswer   = "next_answer"
	ColDecision     = "decision"
	ColID           = "id"
	ColType         = "type"
	ColQuestion     = "question"
	ColAnswer       = "answer"
	ColState        = "state"
	ColCreated      = "created_date"
	ColGenerated    = "generated_date"
)

// IntakeSchema is the parent submission form.
var IntakeSchema = Schema{
	Name:    "intake",
	Version: 1,
	Columns: []Column{
		{Key: ColTimestamp, Header: "Timestamp", Aliases: []string{"時間戳記"}},
		{Key: ColSchool, Header: "學校", Prefix: true},
		{Key: ColWords, Header: "請輸入詞語", Prefix: true},
		{Key: ColStatus, Header: "狀態"},
	},
}

// ReviewSchema is the reviewer worklist.
var ReviewSchema = Schema{
	Name:    "review",
	Version: 1,
	Columns: []Column{
		{Key: ColTimestamp, Header: "Timestamp", Aliases: []string{"時間戳記"}},
		{Key: ColSchool, Header: "學校"},
		{Key: ColWord, Header: "詞語"},
		{Key: ColSentence, Header: "句子 (本週題目)", Aliases: []string{"句子"}},
		{Key: ColNextType, Header: "下週題型"},
		{Key: ColNextQuestion, Header: "下週題目 (AI)", Aliases: []string{"下週題目"}},
		{Key: ColNextAnswer, Header: "下週答案 (AI)", Aliases: []string{"下週答案"}},
		{Key: ColDecision, Header: "決策"},
	},
}

// ReferenceSchema is the sentence bank consulted before generating a sentence.
var ReferenceSchema = Schema{
	Name:    "reference",
	Version: 1,
	Columns: []Column{
		{Key: ColWord, Header: "詞語"},
		{Key: ColSentence, Header: "句子"},
	},
}

// StandbySchema holds promoted quiz items.
var StandbySchema = Schema{
	Name:    "standby",
	Version: 1,
	Columns: []Column{
		{Key: ColID, Header: "ID"},
		{Key: ColSchool, Header: "學校"},
		{Key: ColWord, Header: "詞語"},
		{Key: ColType, Header: "題型"},
		{Key: ColQuestion, Header: "題目"},
		{Key: ColAnswer, Header: "答案"},
		{Key: ColState, Header: "狀態"},
		{Key: ColCreated, Header: "創建日期"},
	},
}

// WorksheetLogSchema records every rendered worksheet.
var WorksheetLogSchema = Schema{
	Name:    "worksheet_log",
	Version: 1,
	Columns: []Column{
		{Key: ColID, Header: "ID"},
		{Key: ColSchool, Header: "學校"},
		{Key: ColWord, Header: "詞語"},
		{Key: ColType, Header: "題型"},
		{Key: ColQuestion, Header: "題目"},
		{Key: ColAnswer, Header: "答案"},
		{Key: ColGenerated, Header: "生成日期"},
	},
}
